package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// Scorer produces one recommendation opinion per symbol from its features.
// An error is an abstention for that symbol, never a pipeline failure.
type Scorer interface {
	Score(ctx context.Context, snap types.MarketSnapshot, fv types.FeatureVector) (types.Recommendation, error)
}

// ContextScorer additionally consumes retrieved documents for the symbol.
type ContextScorer interface {
	Score(ctx context.Context, snap types.MarketSnapshot, fv types.FeatureVector, docs []types.RetrievedDocument) (types.Recommendation, error)
}
