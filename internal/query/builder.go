package query

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/jwhyun/finbot/internal/llm"
	"github.com/jwhyun/finbot/internal/products"
)

// Builder translates a natural-language query into a StructuredQuery:
// semantic text, term/range filters, an optional sort, and a top-k bound.
// Everything except sort-direction inference is deterministic; the sort
// contract goes through the model only when superlative language is present.
type Builder struct {
	provider    llm.Provider
	model       string
	defaultTopK int
	maxTopK     int
}

// NewBuilder creates a query builder. provider may be nil, in which case
// sort inference always uses the deterministic fallback.
func NewBuilder(provider llm.Provider, model string, defaultTopK, maxTopK int) *Builder {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	if maxTopK <= 0 {
		maxTopK = 50
	}
	return &Builder{provider: provider, model: model, defaultTopK: defaultTopK, maxTopK: maxTopK}
}

var (
	topNRe  = regexp.MustCompile(`(?i)(상위|top)\s*(\d+)`)
	countRe = regexp.MustCompile(`(\d+)\s*개`)
	jsonRe  = regexp.MustCompile(`\{.*\}`)

	superlatives = []string{"가장", "제일", "최고", "최저"}
)

// sortPrompt is the fixed JSON contract for sort inference.
const sortPrompt = `사용자 질문에서 정렬 기준을 추출하여 JSON으로만 답하세요.
형식: {"field": "<pbr|per|eps|price|yield>", "order": "<asc|desc>"}
'가장 낮은'은 asc, '가장 높은'은 desc입니다. 정렬 기준이 없으면 {}를 반환하세요.

[질문]: `

// TopN extracts the requested result count: "상위 N" or "N개" patterns,
// clamped to [1, max], defaulting when absent.
func (b *Builder) TopN(query string) int {
	if m := topNRe.FindStringSubmatch(query); m != nil {
		return clamp(atoi(m[2]), 1, b.maxTopK)
	}
	if m := countRe.FindStringSubmatch(query); m != nil {
		return clamp(atoi(m[1]), 1, b.maxTopK)
	}
	return b.defaultTopK
}

// Build produces the structured query for a natural-language request. A
// normalization failure never fails the call; the result degrades to a
// semantic-only query.
func (b *Builder) Build(ctx context.Context, query string) products.StructuredQuery {
	sq := products.StructuredQuery{
		SemanticQuery: query,
		TopK:          b.TopN(query),
	}

	if cats := products.DetectCategories(query); len(cats) == 1 {
		sq.Filters = append(sq.Filters, products.Filter{
			Field: "category", Op: products.OpTerm, Term: string(cats[0]),
		})
	}

	// 저평가 is a fixed domain rule, not a model decision: PBR in [0, 1).
	if strings.Contains(query, "저평가") {
		sq.Filters = append(sq.Filters,
			products.Filter{Field: "pbr", Op: products.OpGTE, Value: 0},
			products.Filter{Field: "pbr", Op: products.OpLT, Value: 1.0},
		)
	}

	sq.Sort = b.inferSort(ctx, query)
	return sq
}

// inferSort resolves an explicit sort from superlative language. Without a
// superlative there is no sort and ranking stays semantic.
func (b *Builder) inferSort(ctx context.Context, query string) *products.Sort {
	if !containsAny(strings.ToLower(query), superlatives...) {
		return nil
	}

	if b.provider != nil {
		if s := b.modelSort(ctx, query); s != nil {
			return s
		}
	}
	return fallbackSort(query)
}

func (b *Builder) modelSort(ctx context.Context, query string) *products.Sort {
	resp, err := b.provider.Complete(ctx, llm.CompletionRequest{
		Model: b.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: sortPrompt + query},
		},
		Temperature: 0,
		MaxTokens:   50,
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("query: sort inference failed, using fallback: %v", err)
		return nil
	}

	raw := jsonRe.FindString(resp.Content)
	if raw == "" {
		return nil
	}
	var parsed struct {
		Field string `json:"field"`
		Order string `json:"order"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("query: malformed sort answer %q: %v", resp.Content, err)
		return nil
	}

	field, ok := products.NormalizeField(parsed.Field)
	if !ok {
		return nil
	}
	switch parsed.Order {
	case "asc":
		return &products.Sort{Field: field, Direction: products.SortAsc}
	case "desc":
		return &products.Sort{Field: field, Direction: products.SortDesc}
	}
	return nil
}

// fallbackSort is the deterministic path when the model is unavailable or
// answered outside the contract.
func fallbackSort(query string) *products.Sort {
	q := strings.ToLower(query)

	var field string
	switch {
	case strings.Contains(q, "pbr"):
		field = "pbr"
	case strings.Contains(q, "per"):
		field = "per"
	case strings.Contains(q, "eps"):
		field = "eps"
	case strings.Contains(q, "수익률"):
		field = "yield"
	case strings.Contains(q, "가격") || strings.Contains(q, "현재가"):
		field = "price"
	default:
		return nil
	}

	dir := products.SortDesc
	if strings.Contains(q, "낮") || strings.Contains(q, "최저") || strings.Contains(q, "싼") {
		dir = products.SortAsc
	}
	return &products.Sort{Field: field, Direction: dir}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
