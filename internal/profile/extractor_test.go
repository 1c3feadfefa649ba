package profile

import "testing"

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"2억 3천만원", 230_000_000},
		{"300만원", 3_000_000},
		{"3,000,000원", 3_000_000},
		{"5000", 5000},
		{"2억", 200_000_000},
		{"1억 5천만원", 150_000_000},
		{"50만원 정도요", 500_000},
	}

	for _, tc := range cases {
		got, ok := ParseCurrency(tc.text)
		if !ok {
			t.Errorf("ParseCurrency(%q): expected a value", tc.text)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseCurrency(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestParseCurrencyNoDigits(t *testing.T) {
	if _, ok := ParseCurrency("잘 몰라요"); ok {
		t.Error("expected no value for text without digits")
	}
}

func TestExtractAge(t *testing.T) {
	for _, text := range []string{"저는 30살입니다", "제 나이는 30세예요"} {
		fields := Extract(text, "")
		if fields["age"] != "30" {
			t.Errorf("Extract(%q): age = %q, want 30", text, fields["age"])
		}
	}
}

func TestExtractRiskTolerance(t *testing.T) {
	cases := map[string]string{
		"안전한 게 좋아요":  "낮음",
		"보수적으로 할래요":  "낮음",
		"공격적으로 투자해요": "높음",
		"중간 정도요":     "중간",
		"보통이에요":      "중간",
	}
	for text, want := range cases {
		fields := Extract(text, "")
		if fields["risk_tolerance"] != want {
			t.Errorf("Extract(%q): risk_tolerance = %q, want %q", text, fields["risk_tolerance"], want)
		}
	}
}

func TestExtractIncomeStability(t *testing.T) {
	if got := Extract("안정적이에요", "")["income_stability"]; got != "안정적" {
		t.Errorf("expected 안정적, got %q", got)
	}
	// 불안정 contains 안정 and must win.
	if got := Extract("수입이 불안정해요", "")["income_stability"]; got != "불안정" {
		t.Errorf("expected 불안정, got %q", got)
	}
}

func TestExtractNumericNeedsContext(t *testing.T) {
	// A bare number with no matching last-asked question maps to nothing.
	if fields := Extract("5000", ""); len(fields) != 0 {
		t.Errorf("expected no fields without context, got %v", fields)
	}

	fields := Extract("5000", "monthly_income")
	if fields["monthly_income"] != "5000" {
		t.Errorf("expected monthly_income=5000, got %v", fields)
	}

	// Context never leaks onto unrelated keys.
	fields = Extract("300만원이요", "expected_loss")
	if fields["expected_loss"] != "3000000" {
		t.Errorf("expected expected_loss=3000000, got %v", fields)
	}
	if _, ok := fields["monthly_income"]; ok {
		t.Error("value must not land on a key that was not asked")
	}
}

func TestExtractFreeText(t *testing.T) {
	cases := []struct {
		text     string
		lastKey  string
		accepted bool
	}{
		{"노후 대비", "investment_purpose", true},
		{"네", "investment_purpose", false},
		{"12345", "investment_purpose", false},
		{"회사 월급", "income_sources", true},
		{"몰라", "income_sources", false},
		{"손실이 걱정돼요", "investment_concern", true},
		{"왜요?", "investment_concern", true},
		{"글쎄", "investment_concern", false},
		{"지금 시작해도 늦지 않았을까 싶어요", "investment_concern", true},
	}

	for _, tc := range cases {
		fields := Extract(tc.text, tc.lastKey)
		_, got := fields[tc.lastKey]
		if got != tc.accepted {
			t.Errorf("Extract(%q, %s): accepted=%v, want %v", tc.text, tc.lastKey, got, tc.accepted)
		}
	}
}

func TestDetectConflicts(t *testing.T) {
	current := map[string]string{"age": "30", "risk_tolerance": "중간"}

	conflicts := DetectConflicts(current, map[string]string{"age": "25"})
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	c := conflicts[0]
	if c.Field != "age" || c.Existing != "30" || c.Proposed != "25" {
		t.Errorf("unexpected conflict %+v", c)
	}

	// Same value or new field: no conflict.
	if got := DetectConflicts(current, map[string]string{"age": "30"}); len(got) != 0 {
		t.Errorf("identical value must not conflict, got %v", got)
	}
	if got := DetectConflicts(current, map[string]string{"monthly_income": "3000000"}); len(got) != 0 {
		t.Errorf("new field must not conflict, got %v", got)
	}
}

func TestNextMissingOrder(t *testing.T) {
	fields := map[string]string{"age": "30"}
	next, ok := NextMissing(fields)
	if !ok || next.Key != "risk_tolerance" {
		t.Fatalf("expected risk_tolerance next, got %v", next.Key)
	}

	full := make(map[string]string)
	for _, f := range RequiredFields {
		full[f.Key] = "x"
	}
	if !IsComplete(full) {
		t.Error("expected complete profile")
	}
}
