package marketdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockDeterministicPerSymbol(t *testing.T) {
	m := NewMock(60)
	ctx := context.Background()

	a, err := m.Snapshots(ctx, []string{"AAPL"})
	require.NoError(t, err)
	b, err := m.Snapshots(ctx, []string{"AAPL"})
	require.NoError(t, err)

	assert.Equal(t, a["AAPL"].CurrentPrice, b["AAPL"].CurrentPrice)
	assert.Equal(t, a["AAPL"].Sector, b["AAPL"].Sector)
	require.Len(t, a["AAPL"].History, 60)
	assert.Equal(t, a["AAPL"].History[10].Close, b["AAPL"].History[10].Close)
}

func TestMockSnapshotShape(t *testing.T) {
	m := NewMock(0) // default history length
	snaps, err := m.Snapshots(context.Background(), []string{"AAPL", "MSFT", "TSLA"})
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	for symbol, snap := range snaps {
		assert.Equal(t, symbol, snap.Symbol)
		assert.Positive(t, snap.CurrentPrice)
		assert.Positive(t, snap.MarketCap)
		assert.Positive(t, snap.Beta)
		assert.NotEmpty(t, snap.Sector)
		assert.NotEmpty(t, snap.History)

		last := snap.History[len(snap.History)-1]
		assert.Equal(t, last.Close, snap.CurrentPrice)
		for _, bar := range snap.History {
			assert.GreaterOrEqual(t, bar.High, bar.Low)
			assert.Positive(t, bar.Volume)
		}
	}
}

func TestMockDifferentSymbolsDiffer(t *testing.T) {
	m := NewMock(30)
	snaps, err := m.Snapshots(context.Background(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)

	assert.NotEqual(t, snaps["AAPL"].CurrentPrice, snaps["MSFT"].CurrentPrice)
}
