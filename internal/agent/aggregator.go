package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jwhyun/finbot/internal/llm"
)

const msgNoAnswer = "죄송합니다, 요청하신 내용에 대한 답변을 생성할 수 없습니다."

// synthesisPrompt is the style contract for the final answer: no literal
// escape characters, bullets for lists, missing information called out.
const synthesisPrompt = `당신은 전문 금융 애널리스트이자 친절한 상담원입니다.
사용자의 [요청 질문]에 대해, 아래 [분석 결과]를 종합하여 하나의 자연스러운 답변으로 생성해주세요.

# 지침:
- 각 분석 결과를 모두 반영하여 완전한 답변을 만드세요.
- 만약 특정 정보(예: 사용자 정보)를 찾지 못했다면, 그 사실을 명확히 언급해주세요.
- 결과를 친절하고 명확한 문장으로 설명하며 시작하세요.
- 리스트 형태의 데이터는 글머리 기호(-)를 사용하여 보기 좋게 정리해주세요.
- 답변에는 '\n' 같은 줄바꿈 제어 문자를 절대 포함하지 마세요.
- 최종 답변은 완결된 하나의 문단이나 글로 제공되어야 합니다.

[요청 질문]: %s
[분석 결과]: %s
[최종 답변]:`

// Aggregator merges per-intent tool results into one user-facing answer.
type Aggregator struct {
	provider llm.Provider
	model    string
}

// NewAggregator creates a response aggregator.
func NewAggregator(provider llm.Provider, model string) *Aggregator {
	return &Aggregator{provider: provider, model: model}
}

// Aggregate produces the final answer. No results yields an apology.
// Otherwise every tool result, single or not, goes through the synthesis
// pass under the style contract. When the model is unavailable a single
// result degrades to its raw text and multiple results to the plain
// labeled sections. No sub-answer is ever dropped.
func (a *Aggregator) Aggregate(ctx context.Context, query string, results []ToolResult) string {
	if len(results) == 0 {
		return msgNoAnswer
	}

	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = fmt.Sprintf("[%s 결과]:\n%s", r.Intent, r.Text)
	}
	combined := strings.Join(sections, "\n\n")

	fallback := combined
	if len(results) == 1 {
		fallback = results[0].Text
	}

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: fmt.Sprintf(synthesisPrompt, query, combined)},
		},
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Printf("agent: answer synthesis failed, returning tool output: %v", err)
		return fallback
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return fallback
	}
	return answer
}
