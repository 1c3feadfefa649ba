package products

import "strings"

// categorySynonyms maps user-facing spellings (Korean variants and English
// aliases) to canonical category labels. Lookup is case-insensitive.
var categorySynonyms = map[string]Category{
	"예금":     CategoryDeposit,
	"정기예금":   CategoryDeposit,
	"deposit": CategoryDeposit,
	"적금":     CategorySavings,
	"정기적금":   CategorySavings,
	"자유적금":   CategorySavings,
	"saving":  CategorySavings,
	"savings": CategorySavings,
	"연금":     CategoryAnnuity,
	"연금저축":   CategoryAnnuity,
	"연금보험":   CategoryAnnuity,
	"퇴직연금":   CategoryAnnuity,
	"irp":     CategoryAnnuity,
	"annuity": CategoryAnnuity,
	"국내주식":   CategoryDomesticStock,
	"국내 주식":  CategoryDomesticStock,
	"해외주식":   CategoryOverseasStock,
	"해외 주식":  CategoryOverseasStock,
	"미국주식":   CategoryOverseasStock,
	"미국 주식":  CategoryOverseasStock,
	"나스닥":    CategoryOverseasStock,
	"nasdaq":  CategoryOverseasStock,
}

// NormalizeCategory maps a raw label to its canonical category.
// Unrecognized labels return false and must be dropped by callers.
func NormalizeCategory(raw string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := categorySynonyms[s]; ok {
		return c, true
	}
	// Accept already-canonical labels.
	for _, c := range AllCategories {
		if s == strings.ToLower(string(c)) {
			return c, true
		}
	}
	return "", false
}

// DetectCategories scans a free-form query for explicit product categories.
// A bare "주식" without a market qualifier expands to both stock categories.
// Returns nil when the query names no category.
func DetectCategories(query string) []Category {
	q := strings.ToLower(query)

	var out []Category
	seen := map[Category]bool{}
	add := func(c Category) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	if strings.Contains(q, "연금") || strings.Contains(q, "irp") || strings.Contains(q, "annuity") {
		add(CategoryAnnuity)
	}
	if strings.Contains(q, "예금") || strings.Contains(q, "deposit") {
		add(CategoryDeposit)
	}
	if strings.Contains(q, "적금") || strings.Contains(q, "saving") {
		add(CategorySavings)
	}

	if strings.Contains(q, "주식") || strings.Contains(q, "nasdaq") || strings.Contains(q, "나스닥") {
		switch {
		case containsAny(q, "해외", "미국", "나스닥", "nasdaq"):
			add(CategoryOverseasStock)
		case strings.Contains(q, "국내"):
			add(CategoryDomesticStock)
		default:
			add(CategoryDomesticStock)
			add(CategoryOverseasStock)
		}
	}

	return out
}

// canonicalFields maps market-specific metric field names (the overseas feed
// suffixes metrics with x, and each feed names price differently) to the
// canonical names used in Document.Metrics.
var canonicalFields = map[string]string{
	"pbr":           "pbr",
	"pbrx":          "pbr",
	"per":           "per",
	"perx":          "per",
	"eps":           "eps",
	"epsx":          "eps",
	"price":         "price",
	"stck_prpr":     "price",
	"last":          "price",
	"yield":         "yield",
	"avg_prft_rate": "yield",
}

// NormalizeField maps a market-specific metric name to its canonical form.
// Unknown fields return false.
func NormalizeField(raw string) (string, bool) {
	f, ok := canonicalFields[strings.ToLower(strings.TrimSpace(raw))]
	return f, ok
}

// MarketOf returns the market a stock category belongs to, and whether the
// category is a stock category at all.
func MarketOf(c Category) (Market, bool) {
	switch c {
	case CategoryDomesticStock:
		return MarketDomestic, true
	case CategoryOverseasStock:
		return MarketOverseas, true
	default:
		return "", false
	}
}

// StockCategoryFor is the inverse of MarketOf.
func StockCategoryFor(m Market) Category {
	if m == MarketOverseas {
		return CategoryOverseasStock
	}
	return CategoryDomesticStock
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
