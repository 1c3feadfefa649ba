package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	// Errs is consumed one per call; nil entries mean success.
	Errs     []error
	ProvName string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if n := len(m.Calls); n <= len(m.Errs) && m.Errs[n-1] != nil {
		return nil, m.Errs[n-1]
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func TestRetryProviderSucceedsFirstTry(t *testing.T) {
	mock := NewMockProvider("mock")
	p := NewRetryProvider(mock, time.Second)

	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "안녕"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "mock response" {
		t.Errorf("unexpected content: %q", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetryProviderRetriesOnce(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.Errs = []error{errors.New("transient")}
	p := NewRetryProvider(mock, time.Second)

	resp, err := p.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if resp == nil || resp.Content != "mock response" {
		t.Error("expected canned response after retry")
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryProviderGivesUpAfterSecondFailure(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.Errs = []error{errors.New("boom"), errors.New("boom again")}
	p := NewRetryProvider(mock, time.Second)

	_, err := p.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatal("expected error after two failures")
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected exactly 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryProviderHonoursCancelledContext(t *testing.T) {
	mock := NewMockProvider("mock")
	mock.Errs = []error{context.Canceled}
	p := NewRetryProvider(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, CompletionRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() > 1 {
		t.Errorf("must not retry a cancelled call, got %d calls", mock.CallCount())
	}
}

func TestRateLimitedProviderAllowsWithinBudget(t *testing.T) {
	mock := NewMockProvider("mock")
	p := NewRateLimitedProvider(mock, 60)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := p.Complete(ctx, CompletionRequest{}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if mock.CallCount() != 5 {
		t.Errorf("expected 5 calls, got %d", mock.CallCount())
	}
}

func TestRateLimitedProviderRespectsContext(t *testing.T) {
	mock := NewMockProvider("mock")
	p := NewRateLimitedProvider(mock, 1)

	ctx := context.Background()
	if _, err := p.Complete(ctx, CompletionRequest{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Bucket is now empty; a cancelled context should abort the wait.
	cancelled, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.Complete(cancelled, CompletionRequest{}); err == nil {
		t.Error("expected context deadline error while throttled")
	}
}

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider("watson", "x"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
