package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jwhyun/finbot/internal/products"
)

// screenerPreset is one fixed screening strategy: a keyword trigger set, the
// numeric filters it imposes, the field ranking results, and the header
// shown above the list.
type screenerPreset struct {
	keywords []string
	header   string
	filters  []products.Filter
	sort     products.Sort
}

var screenerPresets = []screenerPreset{
	{
		// Long-horizon, low-volatility preference: profitable companies in a
		// sane valuation band, distressed and high-flyer names excluded.
		keywords: []string{"장기", "안정", "보수", "defensive", "바이앤홀드", "리스크 낮", "변동성 낮"},
		header:   "장기·안정 선호 기준으로 스크리닝한 후보입니다:",
		filters: []products.Filter{
			{Field: "eps", Op: products.OpGT, Value: 0},
			{Field: "pbr", Op: products.OpGTE, Value: 0.5},
			{Field: "pbr", Op: products.OpLTE, Value: 2.0},
			{Field: "per", Op: products.OpGTE, Value: 5},
			{Field: "per", Op: products.OpLTE, Value: 20},
		},
		sort: products.Sort{Field: "pbr", Direction: products.SortAsc},
	},
	{
		keywords: []string{"가치", "저평가", "pbr 1", "낮은 pbr", "value"},
		header:   "가치(저평가) 기준으로 스크리닝한 후보입니다:",
		filters: []products.Filter{
			{Field: "pbr", Op: products.OpGTE, Value: 0},
			{Field: "pbr", Op: products.OpLT, Value: 1.0},
			{Field: "eps", Op: products.OpGT, Value: 0},
		},
		sort: products.Sort{Field: "pbr", Direction: products.SortAsc},
	},
	{
		// Growth names carry a valuation premium but still need earnings.
		keywords: []string{"성장", "growth", "모멘텀"},
		header:   "성장 선호 기준으로 스크리닝한 후보입니다:",
		filters: []products.Filter{
			{Field: "eps", Op: products.OpGT, Value: 0},
			{Field: "per", Op: products.OpGTE, Value: 15},
			{Field: "per", Op: products.OpLTE, Value: 40},
		},
		sort: products.Sort{Field: "per", Direction: products.SortAsc},
	},
}

var defaultPreset = screenerPreset{
	header: "조건 기반으로 스크리닝한 상위 후보입니다:",
	filters: []products.Filter{
		{Field: "pbr", Op: products.OpGTE, Value: 0},
	},
	sort: products.Sort{Field: "pbr", Direction: products.SortAsc},
}

var overseasMarkers = []string{"해외", "미국", "nasdaq", "us", "나스닥"}

// presetFor picks the screening strategy for a query by keyword rule.
func presetFor(query string) screenerPreset {
	q := strings.ToLower(query)
	for _, p := range screenerPresets {
		if containsAny(q, p.keywords...) {
			return p
		}
	}
	return defaultPreset
}

// screenerMarket infers which stock universe to screen.
func screenerMarket(query string) products.Category {
	if containsAny(strings.ToLower(query), overseasMarkers...) {
		return products.CategoryOverseasStock
	}
	return products.CategoryDomesticStock
}

// stockScreener builds and runs a ranked filter query over the stock
// universe and formats the hits as a list under a preset header.
func stockScreener(ctx context.Context, index products.Index, query string, topN int) string {
	preset := presetFor(query)
	category := screenerMarket(query)

	sort := preset.sort
	sq := products.StructuredQuery{
		SemanticQuery: query,
		TopK:          topN,
		Sort:          &sort,
		Filters: append([]products.Filter{
			{Field: "category", Op: products.OpTerm, Term: string(category)},
		}, preset.filters...),
	}

	hits, err := index.Search(ctx, sq)
	if err != nil {
		log.Printf("agent: screener search: %v", err)
		return "죄송합니다, 지금은 종목 검색이 어렵습니다. 잠시 후 다시 시도해주세요."
	}
	if len(hits) == 0 {
		return "조건에 맞는 종목을 찾지 못했습니다. (필터가 너무 엄격할 수 있어요)"
	}

	lines := []string{preset.header}
	for _, h := range hits {
		d := h.Document
		lines = append(lines, fmt.Sprintf("- %s(%s) | PBR %s, PER %s, EPS %s",
			d.Company, d.Code,
			metricOrDash(d, "pbr"), metricOrDash(d, "per"), metricOrDash(d, "eps")))
	}
	return strings.Join(lines, "\n")
}

func metricOrDash(d products.Document, field string) string {
	v, ok := d.Metrics[field]
	if !ok {
		return "-"
	}
	return trimFloat(v)
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
