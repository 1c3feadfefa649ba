package intent

import (
	"context"
	"strings"
)

// Classifier resolves the set of intents behind a raw user query. The three
// variants (keyword, model, hybrid) share the same post-processing rules so
// their outputs stay comparable.
type Classifier interface {
	Classify(ctx context.Context, query string) ([]Intent, error)
	Name() string
}

// recommendTriggers force ProductRecommendation regardless of what the
// classifier answered. They cover generic "recommend me a product" phrasings
// that models tend to misfile as chitchat.
var recommendTriggers = []string{
	"금융 상품", "금융상품", "투자 상품", "투자상품", "상품 추천", "상품추천",
}

// realtimeSignals mark questions about live quotes, which the catalog
// snapshot cannot answer truthfully.
var realtimeSignals = []string{"실시간"}

// Normalize applies the deterministic post-processing rules to a raw label
// set: unknown labels are dropped, trigger phrases force the recommendation
// intent, realtime-quote questions gain a refusal intent, chitchat is
// dropped when anything else matched, and an empty set defaults to chitchat.
func Normalize(query string, labels []string) []Intent {
	var out []Intent
	seen := map[Intent]bool{}
	add := func(i Intent) {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}

	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if Known(l) {
			add(Intent(l))
		}
	}

	if containsAny(query, recommendTriggers...) {
		add(Recommendation)
	}
	if containsAny(query, realtimeSignals...) {
		add(RealtimeQuoteRefusal)
	}

	if len(out) > 1 && seen[Chitchat] {
		kept := out[:0]
		for _, i := range out {
			if i != Chitchat {
				kept = append(kept, i)
			}
		}
		out = kept
	}

	if len(out) == 0 {
		out = []Intent{Chitchat}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
