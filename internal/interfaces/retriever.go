package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// Retriever returns the top-k documents relevant to a query, ordered by
// descending relevance score.
type Retriever interface {
	Search(ctx context.Context, symbol, query string, k int) ([]types.RetrievedDocument, error)
}
