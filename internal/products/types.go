package products

// Category is the canonical Korean product category label used across the
// catalog, the query builder and the recommendation tools.
type Category string

const (
	CategoryDeposit       Category = "예금"
	CategorySavings       Category = "적금"
	CategoryAnnuity       Category = "연금"
	CategoryDomesticStock Category = "국내주식"
	CategoryOverseasStock Category = "해외주식"
)

// AllCategories is the closed allow-list of recommendable categories.
var AllCategories = []Category{
	CategoryDeposit,
	CategorySavings,
	CategoryAnnuity,
	CategoryDomesticStock,
	CategoryOverseasStock,
}

// Market distinguishes domestic and overseas securities.
type Market string

const (
	MarketDomestic Market = "domestic"
	MarketOverseas Market = "overseas"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpTerm Operator = "term" // exact string match
	OpGT   Operator = "gt"
	OpGTE  Operator = "gte"
	OpLT   Operator = "lt"
	OpLTE  Operator = "lte"
)

// Filter narrows search results by a metadata field. Term filters compare
// strings; range operators compare the numeric value.
type Filter struct {
	Field string
	Op    Operator
	Term  string
	Value float64
}

// SortDirection orders results ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort overrides relevance ordering with an explicit field sort.
type Sort struct {
	Field     string
	Direction SortDirection
}

// StructuredQuery is the machine-actionable search request: free-text
// semantic intent plus field filters, optional sort and a result budget.
type StructuredQuery struct {
	SemanticQuery string
	Filters       []Filter
	Sort          *Sort
	TopK          int
}

// Document is one searchable catalog entry (a bank product or a security).
type Document struct {
	ID       string
	Text     string
	Category Category
	Company  string
	Code     string
	// Metrics holds numeric attributes (pbr, per, eps, price, yield).
	Metrics map[string]float64
}

// Hit pairs a document with its retrieval score. When a sort is applied the
// score is the semantic similarity of the candidate, not the sort key.
type Hit struct {
	Document   Document
	Similarity float32
}
