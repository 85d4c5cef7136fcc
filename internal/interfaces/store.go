package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// RecommendationStore is an append-only sink for combined recommendations.
// There is no update or delete; history accumulates one row per symbol per run.
type RecommendationStore interface {
	Insert(ctx context.Context, runID string, rec types.CombinedRecommendation) error
	ListLatest(ctx context.Context, symbol string, limit int) ([]types.CombinedRecommendation, error)
}
