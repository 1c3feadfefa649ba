package products

// FieldDescriptions holds the Korean description of each catalog field, per
// category. The recommendation tool inlines these into its synthesis prompt
// so the model reads metric names correctly instead of guessing.
var FieldDescriptions = map[Category]map[string]string{
	CategoryDeposit: {
		"company": "금융 회사명",
		"text":    "예금 상품 설명(상품명, 만기 후 이자, 우대 조건, 가입 대상/방법)",
	},
	CategorySavings: {
		"company": "금융 회사명",
		"text":    "적금 상품 설명(상품명, 만기 후 이자, 우대 조건, 가입 대상/방법)",
	},
	CategoryAnnuity: {
		"company": "운용 회사명",
		"yield":   "평균 수익률(%)",
		"text":    "연금 상품 설명(상품명, 연금 종류, 보증 이율, 판매사)",
	},
	CategoryDomesticStock: {
		"company": "한글 종목명",
		"code":    "종목 코드",
		"price":   "현재가(원)",
		"per":     "PER",
		"pbr":     "PBR",
		"eps":     "EPS",
	},
	CategoryOverseasStock: {
		"company": "종목명",
		"code":    "티커",
		"price":   "현재가(달러)",
		"per":     "PER",
		"pbr":     "PBR",
		"eps":     "EPS",
	},
}
