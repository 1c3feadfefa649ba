package intent

import (
	"context"
	"regexp"
	"strings"
)

// KeywordClassifier resolves intents from fixed keyword rules only. It is
// fully deterministic and serves as the non-AI fallback path.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the rule-only classifier variant.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Name() string { return "keyword" }

var (
	profileKeywords = []string{
		"내 프로필", "내 정보", "나를 기반으로", "제 정보", "제 프로필",
		"내가 입력한", "내가 알려준", "내 투자 성향",
	}
	screenerKeywords = []string{
		"pbr", "per", "eps", "가치주", "저평가", "성장주", "스크리닝",
		"조건에 맞는", "상위",
	}
	lookupKeywords = []string{"주가", "현재가"}
	recommendKeywords = []string{
		"추천", "예금", "적금", "연금",
	}
)

var topNRe = regexp.MustCompile(`\d+\s*개`)

func (c *KeywordClassifier) Classify(_ context.Context, query string) ([]Intent, error) {
	q := strings.ToLower(query)

	var labels []string
	if containsAny(q, profileKeywords...) {
		labels = append(labels, string(ProfileSummary))
	}

	screener := containsAny(q, screenerKeywords...) || topNRe.MatchString(q)
	if screener {
		labels = append(labels, string(StockScreener))
	}

	// "삼성전자 주가" is a lookup; "PBR 낮은 주식 주가" is a screener, so
	// lookup yields when screener signals are present.
	if containsAny(q, lookupKeywords...) && !screener {
		labels = append(labels, string(StockLookup))
	}

	if containsAny(q, recommendKeywords...) && !screener {
		labels = append(labels, string(Recommendation))
	}

	return Normalize(query, labels), nil
}
