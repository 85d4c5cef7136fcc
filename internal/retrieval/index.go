package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// Index is an in-process document index scoring by keyword overlap. It
// stands in for an external vector-search service and satisfies the same
// contract: top-k documents by descending relevance.
type Index struct {
	mu   sync.RWMutex
	docs []indexedDoc
}

type indexedDoc struct {
	doc    types.RetrievedDocument
	tokens map[string]int
}

var _ interfaces.Retriever = (*Index)(nil)

func NewIndex() *Index {
	return &Index{}
}

// Add indexes documents. Relevance scores on stored documents are ignored;
// scores are computed per query.
func (ix *Index) Add(docs ...types.RetrievedDocument) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, doc := range docs {
		ix.docs = append(ix.docs, indexedDoc{
			doc:    doc,
			tokens: tokenize(doc.Title + " " + doc.Content),
		})
	}
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Search returns the top-k documents for the query, ordered by descending
// score. A non-empty symbol restricts results to documents tagged with that
// symbol; empty symbol searches everything.
func (ix *Index) Search(ctx context.Context, symbol, query string, k int) ([]types.RetrievedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 || k <= 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	scored := make([]types.RetrievedDocument, 0, k)
	for _, entry := range ix.docs {
		if symbol != "" && entry.doc.Symbol != symbol {
			continue
		}
		score := overlap(queryTokens, entry.tokens)
		if score == 0 {
			continue
		}
		doc := entry.doc
		doc.Score = score
		scored = append(scored, doc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// overlap is the fraction of query tokens present in the document.
func overlap(query map[string]int, doc map[string]int) float64 {
	total := 0
	hits := 0
	for tok, n := range query {
		total += n
		if _, ok := doc[tok]; ok {
			hits += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func tokenize(s string) map[string]int {
	tokens := map[string]int{}
	var b strings.Builder
	flush := func() {
		if b.Len() > 1 {
			tokens[b.String()]++
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}
