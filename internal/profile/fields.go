package profile

// Field is one required profile slot with its Korean question prompt.
type Field struct {
	Key      string
	Question string
}

// RequiredFields lists every profile slot in the fixed order the dialogue
// asks them. The order is part of the conversation contract and must not
// change between sessions.
var RequiredFields = []Field{
	{Key: "age", Question: "나이를 알려주세요."},
	{Key: "risk_tolerance", Question: "위험 허용 정도는 어느 수준인가요? (낮음/중간/높음)"},
	{Key: "monthly_income", Question: "월 소득은 얼마인가요? (원 단위 숫자)"},
	{Key: "income_stability", Question: "소득 안정성은 어떤가요? (안정적/불안정)"},
	{Key: "income_sources", Question: "주요 소득원은 무엇인가요?"},
	{Key: "investment_horizon", Question: "투자 기간은 얼마나 계획하시나요? (일 단위 숫자)"},
	{Key: "expected_return", Question: "기대 수익 금액은 어느 정도인가요? (원)"},
	{Key: "expected_loss", Question: "허용 가능한 예상 손실 금액은 어느 정도인가요? (원)"},
	{Key: "investment_purpose", Question: "투자 목적을 알려주세요."},
	{Key: "asset_allocation_type", Question: "자산 배분 유형(0~4)을 선택해주세요. (0:<10%, 1:10~20%, 2:20~30%, 3:30~40%, 4:40%+)"},
	{Key: "value_growth", Question: "가치/성장 중 어느 성향에 더 가깝나요? (0:가치, 1:성장)"},
	{Key: "risk_acceptance_level", Question: "위험 수용 수준(1~4)을 선택해주세요."},
	{Key: "investment_concern", Question: "투자 관련 어떤 고민이 있으신가요?"},
}

// fieldLabels renders keys as Korean labels for user-facing summaries.
var fieldLabels = map[string]string{
	"age":                   "나이",
	"risk_tolerance":        "위험 허용 성향",
	"monthly_income":        "월 소득",
	"income_stability":      "소득 안정성",
	"income_sources":        "주요 소득원",
	"investment_horizon":    "투자 기간",
	"expected_return":       "기대 수익 금액",
	"expected_loss":         "허용 가능 손실 금액",
	"investment_purpose":    "투자 목적",
	"asset_allocation_type": "자산 배분 유형",
	"value_growth":          "가치/성장 성향",
	"risk_acceptance_level": "위험 수용 수준",
	"investment_concern":    "투자 고민",
}

var requiredSet = func() map[string]bool {
	m := make(map[string]bool, len(RequiredFields))
	for _, f := range RequiredFields {
		m[f.Key] = true
	}
	return m
}()

// IsRequired reports whether key is one of the required profile slots.
func IsRequired(key string) bool {
	return requiredSet[key]
}

// QuestionFor returns the Korean question for a field key.
func QuestionFor(key string) string {
	for _, f := range RequiredFields {
		if f.Key == key {
			return f.Question
		}
	}
	return ""
}

// LabelFor returns the Korean display label for a field key, falling back
// to the key itself.
func LabelFor(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return key
}

// NextMissing returns the first required field absent from fields, in the
// fixed question order.
func NextMissing(fields map[string]string) (Field, bool) {
	for _, f := range RequiredFields {
		if fields[f.Key] == "" {
			return f, true
		}
	}
	return Field{}, false
}

// IsComplete reports whether every required field has a non-empty value.
func IsComplete(fields map[string]string) bool {
	_, missing := NextMissing(fields)
	return !missing
}
