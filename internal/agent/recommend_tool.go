package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jwhyun/finbot/internal/llm"
	"github.com/jwhyun/finbot/internal/products"
	"github.com/jwhyun/finbot/internal/query"
)

const categoryPrompt = `사용자 질문에 가장 적합한 금융 상품 종류를 아래 목록에서 1~3개 골라
쉼표(,)로 구분하여 나열하세요. 목록에 없는 단어는 절대 사용하지 마세요.

[목록]: 예금, 적금, 연금, 국내주식, 해외주식
[질문]: `

// riskCategoryFallback maps a risk tolerance to a default category set,
// used when nothing else pins the search down.
var riskCategoryFallback = map[string][]products.Category{
	"낮음": {products.CategoryDeposit, products.CategorySavings},
	"중간": {products.CategorySavings, products.CategoryAnnuity, products.CategoryDomesticStock},
	"높음": {products.CategoryDomesticStock, products.CategoryOverseasStock},
}

// recommender answers product recommendation queries: resolve target
// categories, search each, then synthesize one answer grounded in the hits.
type recommender struct {
	provider llm.Provider
	model    string
	index    products.Index
	builder  *query.Builder
}

func (r *recommender) run(ctx context.Context, q, riskTolerance string) string {
	categories := products.DetectCategories(q)
	if len(categories) == 0 {
		categories = r.askCategories(ctx, q)
	}
	if len(categories) == 0 {
		categories = riskCategoryFallback[riskTolerance]
	}
	if len(categories) == 0 {
		categories = riskCategoryFallback["중간"]
	}

	sq := r.builder.Build(ctx, q)

	var hits []products.Hit
	for _, cat := range categories {
		catQuery := sq
		catQuery.Filters = withCategory(sq.Filters, cat)
		found, err := r.index.Search(ctx, catQuery)
		if err != nil {
			log.Printf("agent: recommend search %s: %v", cat, err)
			continue
		}
		hits = append(hits, found...)
	}

	if len(hits) == 0 {
		return "죄송하지만, 문의하신 조건에 맞는 정보를 찾을 수 없었습니다."
	}

	if answer := r.synthesize(ctx, q, hits); answer != "" {
		return answer
	}
	return formatHits(hits)
}

// askCategories has the model pick categories from the fixed allow-list.
// Answers are validated against known synonyms; anything else is dropped.
func (r *recommender) askCategories(ctx context.Context, q string) []products.Category {
	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: categoryPrompt + q},
		},
		Temperature: 0,
		MaxTokens:   30,
	})
	if err != nil {
		log.Printf("agent: category decision failed: %v", err)
		return nil
	}

	var out []products.Category
	seen := map[products.Category]bool{}
	for _, raw := range strings.Split(resp.Content, ",") {
		c, ok := products.NormalizeCategory(raw)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// synthesize asks the model to ground an answer in the retrieved records.
// Returns "" on failure so the caller can fall back to plain formatting.
func (r *recommender) synthesize(ctx context.Context, q string, hits []products.Hit) string {
	var sb strings.Builder
	categories := map[products.Category]bool{}
	for _, h := range hits {
		categories[h.Document.Category] = true
		sb.WriteString("- ")
		sb.WriteString(h.Document.Text)
		writeMetrics(&sb, h.Document)
		sb.WriteString("\n")
	}

	var schema strings.Builder
	for cat, fields := range products.FieldDescriptions {
		if !categories[cat] {
			continue
		}
		fmt.Fprintf(&schema, "--- [%s 필드 설명] ---\n", cat)
		for field, desc := range fields {
			fmt.Fprintf(&schema, "- %s: %s\n", field, desc)
		}
	}

	prompt := fmt.Sprintf(`당신은 금융상담사입니다.
아래 검색 결과를 바탕으로 사용자의 질문에 답하세요.
- 항목별로 핵심만 2~3문장씩 정리
- '왜 이 상품이 적합한지'를 간단히 근거 제시
- 숫자는 원문에 있는 값만 사용(추정 금지)

[필드설명]
%s
[검색결과]
%s
[사용자질문]
%s`, schema.String(), sb.String(), q)

	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
	})
	if err != nil {
		log.Printf("agent: recommendation synthesis failed: %v", err)
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

// formatHits is the deterministic answer used when synthesis is
// unavailable.
func formatHits(hits []products.Hit) string {
	lines := []string{"조건에 맞는 상품을 찾았습니다:"}
	for _, h := range hits {
		var sb strings.Builder
		sb.WriteString("- ")
		sb.WriteString(h.Document.Text)
		writeMetrics(&sb, h.Document)
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func writeMetrics(sb *strings.Builder, d products.Document) {
	for _, field := range []string{"price", "pbr", "per", "eps", "yield"} {
		if v, ok := d.Metrics[field]; ok {
			fmt.Fprintf(sb, " %s=%s", field, trimFloat(v))
		}
	}
}

func withCategory(filters []products.Filter, cat products.Category) []products.Filter {
	out := make([]products.Filter, 0, len(filters)+1)
	out = append(out, products.Filter{Field: "category", Op: products.OpTerm, Term: string(cat)})
	for _, f := range filters {
		if f.Field == "category" {
			continue
		}
		out = append(out, f)
	}
	return out
}
