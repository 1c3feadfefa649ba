package profile

import (
	"regexp"
	"strconv"
	"strings"
)

// Field classes. Numeric and free-text fields only resolve against the
// question that was last asked, so a stray number in an unrelated answer
// never lands on the wrong key.
var (
	numericKeys = map[string]bool{
		"monthly_income":        true,
		"investment_horizon":    true,
		"expected_return":       true,
		"expected_loss":         true,
		"asset_allocation_type": true,
		"value_growth":          true,
		"risk_acceptance_level": true,
	}
	freeTextKeys = map[string]bool{
		"income_sources":     true,
		"investment_purpose": true,
		"investment_concern": true,
	}
)

var (
	ageRe        = regexp.MustCompile(`(\d+)\s*(살|세)`)
	firstIntRe   = regexp.MustCompile(`\d+`)
	numericOnlyRe = regexp.MustCompile(`^[\d\s.,%원]+$`)

	currencyUnits = []struct {
		re   *regexp.Regexp
		mult int64
	}{
		{regexp.MustCompile(`(\d+)\s*억`), 100_000_000},
		{regexp.MustCompile(`(\d+)\s*천만`), 10_000_000},
		{regexp.MustCompile(`(\d+)\s*백만`), 1_000_000},
		{regexp.MustCompile(`(\d+)\s*십만`), 100_000},
		{regexp.MustCompile(`(\d+)\s*만`), 10_000},
	}
)

// trivialTokens are answers that carry no field content on their own.
var trivialTokens = map[string]bool{
	"네": true, "아니오": true, "아니요": true,
	"모름": true, "몰라": true, "몰라요": true, "잘 몰라요": true,
}

// concernSignals mark an answer as a genuine investment concern even when
// it is short.
var concernSignals = []string{
	"고민", "걱정", "불안", "궁금", "어렵", "손실", "리스크", "추천",
	"수익", "손해", "떨어", "하락", "변동", "불확실", "공포",
}

// ParseCurrency converts Korean money shorthand to won: "2억 3천만원",
// "300만원", "3,000,000원". Without a magnitude unit it falls back to the
// digits in the text, so a bare "5000" parses as 5000.
func ParseCurrency(text string) (int64, bool) {
	s := strings.ReplaceAll(text, ",", "")

	var total int64
	matched := false
	for _, u := range currencyUnits {
		m := u.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		total += n * u.mult
		matched = true
		// Consume the match so "3천만" is not re-read as "3만".
		s = strings.Replace(s, m[0], "", 1)
	}
	if matched {
		return total, true
	}

	digits := firstIntRe.FindAllString(s, -1)
	if len(digits) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.Join(digits, ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Extract pulls profile field values out of a free-form answer. Only fields
// the rules are confident about appear in the result; a miss omits the key
// entirely. lastAsked scopes numeric and free-text answers to the question
// they respond to.
func Extract(text, lastAsked string) map[string]string {
	fields := make(map[string]string)
	lower := strings.ToLower(text)

	if m := ageRe.FindStringSubmatch(lower); m != nil {
		fields["age"] = m[1]
	}

	switch {
	case containsAny(lower, "안전", "보수적", "낮음"):
		fields["risk_tolerance"] = "낮음"
	case containsAny(lower, "적극적", "높음", "공격적"):
		fields["risk_tolerance"] = "높음"
	case containsAny(lower, "중간", "보통"):
		fields["risk_tolerance"] = "중간"
	}

	// 불안정 contains 안정, so the negative check runs first.
	if strings.Contains(lower, "불안") {
		fields["income_stability"] = "불안정"
	} else if strings.Contains(lower, "안정") {
		fields["income_stability"] = "안정적"
	}

	if numericKeys[lastAsked] {
		if v, ok := ParseCurrency(text); ok {
			fields[lastAsked] = strconv.FormatInt(v, 10)
		}
	}

	if freeTextKeys[lastAsked] {
		if v, ok := acceptFreeText(text, lastAsked); ok {
			fields[lastAsked] = v
		}
	}

	return fields
}

// acceptFreeText decides whether an answer is a usable value for a
// free-text field. Trivial tokens and purely numeric answers are rejected.
// A concern answer additionally needs a concern keyword, a question mark,
// or enough length to be a real sentence.
func acceptFreeText(text, key string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" || trivialTokens[s] {
		return "", false
	}
	if numericOnlyRe.MatchString(s) {
		return "", false
	}

	if key == "investment_concern" {
		if containsAny(s, concernSignals...) || strings.Contains(s, "?") || len([]rune(s)) >= 6 {
			return s, true
		}
		return "", false
	}

	if len([]rune(s)) >= 2 {
		return s, true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
