package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func snapshotFromCloses(symbol string, closes []float64) types.MarketSnapshot {
	bars := make([]types.Bar, 0, len(closes))
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars = append(bars, types.Bar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1_000_000,
		})
	}
	return types.MarketSnapshot{Symbol: symbol, CurrentPrice: 0, History: bars}
}

func TestExtractEmptyHistoryDefaults(t *testing.T) {
	e := New(Params{})
	fv := e.Extract(types.MarketSnapshot{Symbol: "AAPL"})

	assert.Equal(t, "AAPL", fv.Symbol)
	assert.Equal(t, 50.0, fv.RSI)
	assert.Equal(t, 0.5, fv.BollingerPos)
	assert.Zero(t, fv.MACD)
	assert.Zero(t, fv.Volatility)
	assert.Zero(t, fv.Momentum)
	assert.Zero(t, fv.PriceVsSMA20)
	assert.Zero(t, fv.PriceVsSMA50)
}

func TestExtractShortHistoryDefaults(t *testing.T) {
	e := New(Params{})
	fv := e.Extract(snapshotFromCloses("MSFT", []float64{100, 101, 102}))

	// Too short for RSI-14, SMA-20 and Bollinger-20.
	assert.Equal(t, 50.0, fv.RSI)
	assert.Equal(t, 0.5, fv.BollingerPos)
	assert.Zero(t, fv.PriceVsSMA20)
	// MACD only needs one bar; volatility needs two.
	assert.NotZero(t, fv.MACD)
	assert.NotZero(t, fv.Volatility)
}

func TestExtractBounds(t *testing.T) {
	closes := make([]float64, 60)
	price := 100.0
	for i := range closes {
		// Deterministic zig-zag with drift.
		if i%3 == 0 {
			price *= 1.02
		} else {
			price *= 0.995
		}
		closes[i] = price
	}

	e := New(Params{})
	fv := e.Extract(snapshotFromCloses("TSLA", closes))

	assert.GreaterOrEqual(t, fv.RSI, 0.0)
	assert.LessOrEqual(t, fv.RSI, 100.0)
	assert.GreaterOrEqual(t, fv.BollingerPos, 0.0)
	assert.LessOrEqual(t, fv.BollingerPos, 1.0)
	assert.GreaterOrEqual(t, fv.Volatility, 0.0)
	assert.False(t, math.IsNaN(fv.MACD))
	assert.False(t, math.IsNaN(fv.Momentum))
}

func TestExtractMomentum(t *testing.T) {
	e := New(Params{})
	// Last 5 closes: 100 ... 110 => +10%.
	closes := []float64{90, 95, 100, 102, 104, 106, 110}
	fv := e.Extract(snapshotFromCloses("NVDA", closes))
	assert.InDelta(t, 10.0, fv.Momentum, 1e-9)
}

func TestExtractFlatHistoryBollingerNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50
	}
	e := New(Params{})
	fv := e.Extract(snapshotFromCloses("PG", closes))

	// Zero band width falls back to the midpoint.
	assert.Equal(t, 0.5, fv.BollingerPos)
	assert.Zero(t, fv.Volatility)
	assert.Zero(t, fv.Momentum)
}

func TestExtractVolatilityPercent(t *testing.T) {
	// Alternating +10%/-10% returns: population stdev of returns is ~0.1.
	closes := []float64{100, 110, 99, 108.9, 98.01}
	e := New(Params{})
	fv := e.Extract(snapshotFromCloses("JPM", closes))

	require.NotZero(t, fv.Volatility)
	assert.InDelta(t, 10.0, fv.Volatility, 0.5)
}
