package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/jwhyun/finbot/internal/llm"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
}

func (f *fakeProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestNormalizeDropsChitchatWithOthers(t *testing.T) {
	intents := Normalize("내 정보 알려주고 예금 추천해줘", []string{"chitchat", "profile_summary", "financial_recommendation"})
	for _, i := range intents {
		if i == Chitchat {
			t.Fatalf("chitchat must be dropped when other intents match: %v", intents)
		}
	}
	if len(intents) != 2 {
		t.Fatalf("expected 2 intents, got %v", intents)
	}
}

func TestNormalizeDefaultsToChitchat(t *testing.T) {
	intents := Normalize("오늘 날씨 어때", nil)
	if len(intents) != 1 || intents[0] != Chitchat {
		t.Fatalf("expected chitchat default, got %v", intents)
	}
}

func TestNormalizeForceRecommendationTrigger(t *testing.T) {
	// Model answered chitchat, but the trigger phrase overrides it.
	intents := Normalize("20대에게 맞는 금융 상품 알려줘", []string{"chitchat"})
	found := false
	for _, i := range intents {
		if i == Recommendation {
			found = true
		}
		if i == Chitchat {
			t.Fatalf("chitchat must yield to the forced intent: %v", intents)
		}
	}
	if !found {
		t.Fatalf("expected forced recommendation, got %v", intents)
	}
}

func TestNormalizeRealtimeRefusal(t *testing.T) {
	intents := Normalize("삼성전자 실시간 시세 알려줘", []string{"specific_stock_lookup"})
	found := false
	for _, i := range intents {
		if i == RealtimeQuoteRefusal {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected realtime refusal intent, got %v", intents)
	}
}

func TestNormalizeDropsUnknownLabels(t *testing.T) {
	intents := Normalize("질문", []string{"stock_tips", "profile_summary"})
	if len(intents) != 1 || intents[0] != ProfileSummary {
		t.Fatalf("unknown labels must be dropped, got %v", intents)
	}
}

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	cases := []struct {
		query string
		want  Intent
	}{
		{"내 프로필 요약해줘", ProfileSummary},
		{"PBR 1 미만 주식 찾아줘", StockScreener},
		{"삼성전자 주가 알려줘", StockLookup},
		{"신한은행 예금 추천해줘", Recommendation},
		{"안녕하세요", Chitchat},
	}

	for _, tc := range cases {
		intents, err := c.Classify(ctx, tc.query)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tc.query, err)
		}
		if intents[0] != tc.want {
			t.Errorf("Classify(%q) = %v, want leading %s", tc.query, intents, tc.want)
		}
	}
}

func TestKeywordScreenerBeatsLookup(t *testing.T) {
	c := NewKeywordClassifier()
	intents, _ := c.Classify(context.Background(), "PBR 가장 낮은 주식 주가 알려줘")
	for _, i := range intents {
		if i == StockLookup {
			t.Fatalf("screener query must not also resolve lookup: %v", intents)
		}
	}
}

func TestModelClassifierParsesLabels(t *testing.T) {
	p := &fakeProvider{content: "profile_summary, financial_recommendation"}
	c := NewModelClassifier(p, "test-model")

	intents, err := c.Classify(context.Background(), "내 정보 기반으로 상품 골라줘")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(intents) != 2 || intents[0] != ProfileSummary || intents[1] != Recommendation {
		t.Fatalf("unexpected intents %v", intents)
	}
}

func TestModelClassifierFallsBackOnError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	c := NewModelClassifier(p, "test-model")

	intents, err := c.Classify(context.Background(), "삼성전자 주가 알려줘")
	if err != nil {
		t.Fatalf("fallback must not surface the provider error: %v", err)
	}
	if intents[0] != StockLookup {
		t.Fatalf("expected keyword fallback lookup, got %v", intents)
	}
}

func TestHybridSkipsModelForKeywordHits(t *testing.T) {
	p := &fakeProvider{content: "chitchat"}
	c := NewHybridClassifier(p, "test-model")

	intents, err := c.Classify(context.Background(), "PBR 낮은 주식 찾아줘")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if intents[0] != StockScreener {
		t.Fatalf("expected screener, got %v", intents)
	}
	if p.calls != 0 {
		t.Errorf("keyword hit must not reach the model, got %d calls", p.calls)
	}
}

func TestHybridConsultsModelForAmbiguousQueries(t *testing.T) {
	p := &fakeProvider{content: "financial_recommendation"}
	c := NewHybridClassifier(p, "test-model")

	intents, err := c.Classify(context.Background(), "사회초년생인데 뭘 하면 좋을까")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if intents[0] != Recommendation {
		t.Fatalf("expected model answer, got %v", intents)
	}
	if p.calls != 1 {
		t.Errorf("expected exactly one model call, got %d", p.calls)
	}
}
