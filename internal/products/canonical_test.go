package products

import "testing"

func TestNormalizeCategorySynonyms(t *testing.T) {
	cases := []struct {
		raw  string
		want Category
	}{
		{"예금", CategoryDeposit},
		{"정기예금", CategoryDeposit},
		{"Deposit", CategoryDeposit},
		{"적금", CategorySavings},
		{"savings", CategorySavings},
		{"연금저축", CategoryAnnuity},
		{"IRP", CategoryAnnuity},
		{"국내주식", CategoryDomesticStock},
		{"나스닥", CategoryOverseasStock},
		{" 해외주식 ", CategoryOverseasStock},
	}

	for _, tc := range cases {
		got, ok := NormalizeCategory(tc.raw)
		if !ok {
			t.Errorf("NormalizeCategory(%q): expected match", tc.raw)
			continue
		}
		if got != tc.want {
			t.Errorf("NormalizeCategory(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeCategoryDropsUnknown(t *testing.T) {
	for _, raw := range []string{"부동산", "coin", "", "채권"} {
		if _, ok := NormalizeCategory(raw); ok {
			t.Errorf("NormalizeCategory(%q): expected no match", raw)
		}
	}
}

func TestDetectCategories(t *testing.T) {
	cases := []struct {
		query string
		want  []Category
	}{
		{"신한은행 예금 추천해줘", []Category{CategoryDeposit}},
		{"연금 상품 알려줘", []Category{CategoryAnnuity}},
		{"해외 주식 추천", []Category{CategoryOverseasStock}},
		{"국내 주식 뭐가 좋아?", []Category{CategoryDomesticStock}},
		{"주식 추천해줘", []Category{CategoryDomesticStock, CategoryOverseasStock}},
		{"오늘 날씨 어때", nil},
	}

	for _, tc := range cases {
		got := DetectCategories(tc.query)
		if len(got) != len(tc.want) {
			t.Errorf("DetectCategories(%q) = %v, want %v", tc.query, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("DetectCategories(%q)[%d] = %s, want %s", tc.query, i, got[i], tc.want[i])
			}
		}
	}
}

func TestNormalizeField(t *testing.T) {
	cases := map[string]string{
		"pbr":       "pbr",
		"pbrx":      "pbr",
		"PERX":      "per",
		"epsx":      "eps",
		"stck_prpr": "price",
		"last":      "price",
	}
	for raw, want := range cases {
		got, ok := NormalizeField(raw)
		if !ok || got != want {
			t.Errorf("NormalizeField(%q) = %q/%v, want %q", raw, got, ok, want)
		}
	}
	if _, ok := NormalizeField("dividend_yield_ttm"); ok {
		t.Error("expected unknown field to be rejected")
	}
}
