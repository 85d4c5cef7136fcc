package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// SnapshotProvider returns current market snapshots for a set of symbols.
// Symbols the provider cannot resolve are absent from the map, not errors.
type SnapshotProvider interface {
	Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error)
}
