package intent

// Intent is one resolved user intention. A query may carry several.
type Intent string

const (
	ProfileSummary       Intent = "profile_summary"
	StockLookup          Intent = "specific_stock_lookup"
	StockScreener        Intent = "stock_screener"
	Recommendation       Intent = "financial_recommendation"
	Chitchat             Intent = "chitchat"
	RealtimeQuoteRefusal Intent = "realtime_quote_refusal"
)

var known = map[Intent]bool{
	ProfileSummary:       true,
	StockLookup:          true,
	StockScreener:        true,
	Recommendation:       true,
	Chitchat:             true,
	RealtimeQuoteRefusal: true,
}

// Known reports whether a label is part of the closed taxonomy.
func Known(label string) bool {
	return known[Intent(label)]
}
