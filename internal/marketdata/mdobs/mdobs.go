package mdobs

import (
	"context"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// observableProvider wraps a SnapshotProvider with observability (logging & tracing)
type observableProvider struct {
	provider interfaces.SnapshotProvider
}

// Compile-time interface check
var _ interfaces.SnapshotProvider = (*observableProvider)(nil)

// Wrap wraps a snapshot provider with observability middleware
func Wrap(provider interfaces.SnapshotProvider) interfaces.SnapshotProvider {
	return &observableProvider{provider: provider}
}

func (op *observableProvider) Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.Snapshots")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Collecting snapshots", "symbols", len(symbols))

	snaps, err := op.provider.Snapshots(ctx, symbols)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Snapshot collection failed", err, "symbols", len(symbols))
		return nil, err
	}

	if missing := len(symbols) - len(snaps); missing > 0 {
		logger.InfoSkip(ctx, 1, "Snapshot collection partial", "fetched", len(snaps), "missing", missing)
	} else {
		logger.DebugSkip(ctx, 1, "Snapshot collection complete", "fetched", len(snaps))
	}

	return snaps, nil
}
