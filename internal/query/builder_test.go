package query

import (
	"context"
	"errors"
	"testing"

	"github.com/jwhyun/finbot/internal/llm"
	"github.com/jwhyun/finbot/internal/products"
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

func TestTopN(t *testing.T) {
	b := NewBuilder(nil, "", 5, 50)

	cases := map[string]int{
		"상위 10개 보여줘":        10,
		"top 3 주식":          3,
		"주식 7개 추천해줘":        7,
		"저평가 주식 찾아줘":        5,
		"상위 200개":           50,
		"상위 0개":             1,
	}
	for query, want := range cases {
		if got := b.TopN(query); got != want {
			t.Errorf("TopN(%q) = %d, want %d", query, got, want)
		}
	}
}

func TestBuildSortFromModel(t *testing.T) {
	p := &fakeProvider{content: `{"field": "pbr", "order": "asc"}`}
	b := NewBuilder(p, "test-model", 5, 50)

	sq := b.Build(context.Background(), "PBR이 가장 낮은 주식 알려줘")
	if sq.Sort == nil {
		t.Fatal("expected a sort")
	}
	if sq.Sort.Field != "pbr" || sq.Sort.Direction != products.SortAsc {
		t.Fatalf("unexpected sort %+v", sq.Sort)
	}
}

func TestBuildNoSuperlativeNoSort(t *testing.T) {
	p := &fakeProvider{content: `{"field": "pbr", "order": "asc"}`}
	b := NewBuilder(p, "test-model", 5, 50)

	sq := b.Build(context.Background(), "괜찮은 주식 추천해줘")
	if sq.Sort != nil {
		t.Fatalf("no superlative language must mean no sort, got %+v", sq.Sort)
	}
	if p.calls != 0 {
		t.Errorf("model must not be consulted without superlative language, got %d calls", p.calls)
	}
}

func TestBuildSortFallbackOnModelError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	b := NewBuilder(p, "test-model", 5, 50)

	sq := b.Build(context.Background(), "PBR이 가장 낮은 주식")
	if sq.Sort == nil || sq.Sort.Field != "pbr" || sq.Sort.Direction != products.SortAsc {
		t.Fatalf("expected deterministic fallback sort, got %+v", sq.Sort)
	}
}

func TestBuildSortFallbackOnMalformedAnswer(t *testing.T) {
	p := &fakeProvider{content: "pbr ascending please"}
	b := NewBuilder(p, "test-model", 5, 50)

	sq := b.Build(context.Background(), "수익률이 가장 높은 연금")
	if sq.Sort == nil || sq.Sort.Field != "yield" || sq.Sort.Direction != products.SortDesc {
		t.Fatalf("expected yield desc fallback, got %+v", sq.Sort)
	}
}

func TestBuildNormalizesOverseasFieldName(t *testing.T) {
	p := &fakeProvider{content: `{"field": "pbrx", "order": "asc"}`}
	b := NewBuilder(p, "test-model", 5, 50)

	sq := b.Build(context.Background(), "해외 주식 중에 PBR 가장 낮은 거")
	if sq.Sort == nil || sq.Sort.Field != "pbr" {
		t.Fatalf("overseas field name must normalize to pbr, got %+v", sq.Sort)
	}
}

func TestBuildUndervaluedRule(t *testing.T) {
	b := NewBuilder(nil, "", 5, 50)

	sq := b.Build(context.Background(), "저평가 국내주식 찾아줘")

	var sawLower, sawUpper bool
	for _, f := range sq.Filters {
		if f.Field == "pbr" && f.Op == products.OpGTE && f.Value == 0 {
			sawLower = true
		}
		if f.Field == "pbr" && f.Op == products.OpLT && f.Value == 1.0 {
			sawUpper = true
		}
	}
	if !sawLower || !sawUpper {
		t.Fatalf("저평가 must map to PBR [0,1): %+v", sq.Filters)
	}
}

func TestBuildCategoryFilter(t *testing.T) {
	b := NewBuilder(nil, "", 5, 50)

	sq := b.Build(context.Background(), "연금 상품 알려줘")
	found := false
	for _, f := range sq.Filters {
		if f.Field == "category" && f.Op == products.OpTerm && f.Term == string(products.CategoryAnnuity) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected annuity category filter, got %+v", sq.Filters)
	}

	// An ambiguous stock query maps to two categories and gets no term filter.
	sq = b.Build(context.Background(), "주식 추천해줘")
	for _, f := range sq.Filters {
		if f.Field == "category" {
			t.Fatalf("ambiguous category must not filter, got %+v", sq.Filters)
		}
	}
}
