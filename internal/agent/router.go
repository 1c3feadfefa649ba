package agent

import (
	"context"
	"log"
	"strings"

	"github.com/jwhyun/finbot/internal/intent"
	"github.com/jwhyun/finbot/internal/llm"
	"github.com/jwhyun/finbot/internal/products"
	"github.com/jwhyun/finbot/internal/query"
)

const msgRealtimeRefusal = "죄송하지만 실시간 시세는 제공하지 않습니다. 보유한 데이터는 주기적으로 갱신되는 스냅샷 기준이며, 해당 기준의 정보는 안내해드릴 수 있어요."

// profileContextKeywords make a query pull the user's collected profile
// into the screener and recommendation tools as extra context.
var profileContextKeywords = []string{
	"내 프로필", "내 정보", "나를 기반으로", "제 정보", "제 프로필",
}

// Router dispatches a classified query to one handler per intent and merges
// the results into a single answer.
type Router struct {
	classifier intent.Classifier
	provider   llm.Provider
	chatModel  string
	index      products.Index
	securities *products.SecurityStore
	builder    *query.Builder
	aggregator *Aggregator
}

// NewRouter wires the tool router.
func NewRouter(classifier intent.Classifier, provider llm.Provider, chatModel string,
	index products.Index, securities *products.SecurityStore, builder *query.Builder) *Router {
	return &Router{
		classifier: classifier,
		provider:   provider,
		chatModel:  chatModel,
		index:      index,
		securities: securities,
		builder:    builder,
		aggregator: NewAggregator(provider, chatModel),
	}
}

// Route answers a post-collection query. fields is the user's collected
// profile, used for the summary tool, context enrichment, and the
// risk-tolerance fallback.
func (r *Router) Route(ctx context.Context, q string, fields map[string]string) string {
	intents, err := r.classifier.Classify(ctx, q)
	if err != nil {
		log.Printf("agent: classification failed: %v", err)
		intents = []intent.Intent{intent.Chitchat}
	}

	if len(intents) == 1 && intents[0] == intent.Chitchat {
		return r.chitchat(ctx, q)
	}

	enriched := q
	if containsAny(q, profileContextKeywords...) {
		enriched = q + "\n\n[사용자 프로필 참고]\n" + profileSummary(fields)
	}

	var results []ToolResult
	for _, it := range intents {
		var text string
		switch it {
		case intent.ProfileSummary:
			text = profileSummary(fields)
		case intent.StockLookup:
			text = stockLookup(ctx, r.securities, q)
		case intent.StockScreener:
			text = stockScreener(ctx, r.index, enriched, r.builder.TopN(q))
		case intent.Recommendation:
			rec := &recommender{provider: r.provider, model: r.chatModel, index: r.index, builder: r.builder}
			text = rec.run(ctx, enriched, fields["risk_tolerance"])
		case intent.RealtimeQuoteRefusal:
			text = msgRealtimeRefusal
		default:
			continue
		}
		results = append(results, ToolResult{Intent: it, Text: text})
	}

	return r.aggregator.Aggregate(ctx, q, results)
}

// chitchat handles plain conversation without touching the catalog.
func (r *Router) chitchat(ctx context.Context, q string) string {
	resp, err := r.provider.Complete(ctx, llm.CompletionRequest{
		Model: r.chatModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "당신은 친절한 금융 상담 챗봇입니다."},
			{Role: llm.RoleUser, Content: q},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		log.Printf("agent: chitchat failed: %v", err)
		return "죄송합니다, 잠시 응답이 어렵습니다. 잠시 후 다시 말씀해 주세요."
	}
	return strings.TrimSpace(resp.Content)
}
