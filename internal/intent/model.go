package intent

import (
	"context"
	"log"
	"strings"

	"github.com/jwhyun/finbot/internal/llm"
)

// routingPrompt is the closed-taxonomy contract: the model must answer with
// comma-separated labels from the list, nothing else.
const routingPrompt = `사용자 질문의 의도를 분석하여, 아래 키워드 중 관련된 모든 것을 쉼표(,)로 구분하여 나열하세요.
만약 해당하는 의도가 없다면 'chitchat'만 반환하세요. 순서는 중요하지 않습니다.

[키워드 목록]
- profile_summary: 사용자가 자신의 프로필, 입력한 정보 등 '자신'에 대해 물어볼 때.
  (예: "내 정보 알아?", "내가 입력한 내용 요약해줘", "내 월 소득 알려줘")
- stock_screener: 'PBR', 'PER', '가치주' 등 특정 조건에 맞는 '여러 주식 목록'을 찾아달라고 할 때.
  (예: "PBR 1 미만 주식 찾아줘", "안정적인 성장주 추천해줘")
- specific_stock_lookup: '삼성전자', '애플'처럼 '특정 회사 이름 하나'를 언급하며 '현재가', '주가', '정보' 등을 물어볼 때.
  (예: "삼성전자 주가 알려줘", "테슬라 PBR 얼마야?")
- financial_recommendation: '주식' 외 다른 금융 상품(예금, 적금, 연금)을 추천해달라고 하거나,
  의미가 복합적인 추천 질문일 때.
  (예: "신한은행 예금 추천해줘", "20대 사회초년생에게 맞는 투자 상품 알려줘")
- chitchat: 위 네 가지에 해당하지 않는 모든 일반 대화, 인사, 잡담.

[사용자 질문]: `

// ModelClassifier delegates classification to the text-generation provider.
// On provider failure it degrades to the deterministic rule set instead of
// surfacing the error.
type ModelClassifier struct {
	provider llm.Provider
	model    string
	fallback *KeywordClassifier
}

// NewModelClassifier creates the model-backed classifier variant.
func NewModelClassifier(provider llm.Provider, model string) *ModelClassifier {
	return &ModelClassifier{
		provider: provider,
		model:    model,
		fallback: NewKeywordClassifier(),
	}
}

func (c *ModelClassifier) Name() string { return "model" }

func (c *ModelClassifier) Classify(ctx context.Context, query string) ([]Intent, error) {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: routingPrompt + query + "\n[분류]:"},
		},
		Temperature: 0,
		MaxTokens:   50,
	})
	if err != nil {
		log.Printf("intent: model classification failed, using keyword rules: %v", err)
		return c.fallback.Classify(ctx, query)
	}

	labels := strings.Split(strings.ToLower(resp.Content), ",")
	return Normalize(query, labels), nil
}
