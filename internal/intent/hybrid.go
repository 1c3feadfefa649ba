package intent

import (
	"context"

	"github.com/jwhyun/finbot/internal/llm"
)

// HybridClassifier tries the deterministic keyword rules first and only
// consults the model when the rules resolve nothing beyond chitchat. This
// keeps the common screener/lookup/profile queries off the model entirely.
type HybridClassifier struct {
	keyword *KeywordClassifier
	model   *ModelClassifier
}

// NewHybridClassifier creates the hybrid classifier variant.
func NewHybridClassifier(provider llm.Provider, model string) *HybridClassifier {
	return &HybridClassifier{
		keyword: NewKeywordClassifier(),
		model:   NewModelClassifier(provider, model),
	}
}

func (c *HybridClassifier) Name() string { return "hybrid" }

func (c *HybridClassifier) Classify(ctx context.Context, query string) ([]Intent, error) {
	intents, err := c.keyword.Classify(ctx, query)
	if err == nil && !onlyChitchat(intents) {
		return intents, nil
	}
	return c.model.Classify(ctx, query)
}

func onlyChitchat(intents []Intent) bool {
	return len(intents) == 1 && intents[0] == Chitchat
}
