package products

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	chromem "github.com/philippgille/chromem-go"

	"github.com/jwhyun/finbot/internal/embeddings"
)

const collectionName = "financial-products"

// defaultCandidateCap bounds how many semantic candidates are pulled when a
// query carries numeric filters or an explicit sort. Post-filtering happens
// over this candidate set, so it must be comfortably larger than any TopK.
const defaultCandidateCap = 200

// Index is the search collaborator: k-NN retrieval over the product catalog
// with term filters, numeric range filters and sort-by-field overriding
// relevance order.
type Index interface {
	Add(ctx context.Context, docs []Document) error
	Search(ctx context.Context, q StructuredQuery) ([]Hit, error)
	Count() int
	Persist(ctx context.Context, dir string) error
	Load(ctx context.Context, dir string) error
}

// ChromemIndex implements Index using chromem-go. chromem supports equality
// metadata filters natively; numeric ranges and explicit sorts are applied
// over an oversampled candidate set after retrieval.
type ChromemIndex struct {
	db           *chromem.DB
	collection   *chromem.Collection
	embedFunc    chromem.EmbeddingFunc
	candidateCap int
}

// NewChromemIndex creates a new in-memory product index.
func NewChromemIndex(embedder embeddings.Embedder, candidateCap int) (*ChromemIndex, error) {
	if candidateCap <= 0 {
		candidateCap = defaultCandidateCap
	}

	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemIndex{
		db:           db,
		collection:   col,
		embedFunc:    ef,
		candidateCap: candidateCap,
	}, nil
}

func (s *ChromemIndex) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Text,
			Metadata: metadataToMap(doc),
		}
	}

	return s.collection.AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemIndex) Count() int {
	return s.collection.Count()
}

func (s *ChromemIndex) Search(ctx context.Context, q StructuredQuery) ([]Hit, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	where, numeric := splitFilters(q.Filters)

	// Numeric filters and explicit sorts are resolved after retrieval, so
	// oversample candidates; a plain semantic query fetches exactly TopK.
	n := topK
	if q.Sort != nil || len(numeric) > 0 {
		n = s.candidateCap
	}
	if n > count {
		n = count
	}

	text := q.SemanticQuery
	if text == "" {
		// chromem needs query text; fall back to the term filter values.
		for _, f := range q.Filters {
			if f.Op == OpTerm {
				text += f.Term + " "
			}
		}
		if text == "" {
			text = "금융 상품"
		}
	}

	results, err := s.collection.Query(ctx, text, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		doc := mapToDocument(r.ID, r.Content, r.Metadata)
		if !matchesNumeric(doc, numeric) {
			continue
		}
		hits = append(hits, Hit{Document: doc, Similarity: r.Similarity})
	}

	if q.Sort != nil {
		hits = sortHits(hits, *q.Sort)
	}

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *ChromemIndex) Persist(ctx context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/products.gob.gz", true, "")
}

func (s *ChromemIndex) Load(ctx context.Context, dir string) error {
	if err := s.db.ImportFromFile(dir+"/products.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

// splitFilters separates chromem-native term filters from numeric range
// filters that must be applied after retrieval.
func splitFilters(filters []Filter) (where map[string]string, numeric []Filter) {
	for _, f := range filters {
		if f.Op == OpTerm {
			if where == nil {
				where = make(map[string]string)
			}
			where[f.Field] = f.Term
			continue
		}
		numeric = append(numeric, f)
	}
	return where, numeric
}

func matchesNumeric(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc.Metrics[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case OpGT:
			if !(v > f.Value) {
				return false
			}
		case OpGTE:
			if !(v >= f.Value) {
				return false
			}
		case OpLT:
			if !(v < f.Value) {
				return false
			}
		case OpLTE:
			if !(v <= f.Value) {
				return false
			}
		}
	}
	return true
}

// sortHits orders hits by the sort field. Documents missing the field are
// dropped: a screener sorted by PBR must not surface products without one.
func sortHits(hits []Hit, s Sort) []Hit {
	kept := hits[:0]
	for _, h := range hits {
		if _, ok := h.Document.Metrics[s.Field]; ok {
			kept = append(kept, h)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a := kept[i].Document.Metrics[s.Field]
		b := kept[j].Document.Metrics[s.Field]
		if s.Direction == SortDesc {
			return a > b
		}
		return a < b
	})
	return kept
}

func metadataToMap(doc Document) map[string]string {
	md := map[string]string{
		"category": string(doc.Category),
		"company":  doc.Company,
		"code":     doc.Code,
	}
	for k, v := range doc.Metrics {
		md[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return md
}

func mapToDocument(id, content string, md map[string]string) Document {
	doc := Document{
		ID:       id,
		Text:     content,
		Category: Category(md["category"]),
		Company:  md["company"],
		Code:     md["code"],
		Metrics:  make(map[string]float64),
	}
	for k, v := range md {
		switch k {
		case "category", "company", "code":
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			doc.Metrics[k] = f
		}
	}
	return doc
}
