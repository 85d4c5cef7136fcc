package marketdata

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"stock-advisor/internal/types"
)

var mockSectors = []string{"Technology", "Healthcare", "Financial Services", "Consumer Cyclical"}

// Mock generates deterministic synthetic snapshots. The same symbol always
// yields the same snapshot shape, which keeps runs reproducible without
// network access or API keys.
type Mock struct {
	historyDays int
}

func NewMock(historyDays int) *Mock {
	if historyDays <= 0 {
		historyDays = 60
	}
	return &Mock{historyDays: historyDays}
}

func (m *Mock) Snapshots(ctx context.Context, symbols []string) (map[string]types.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snaps := make(map[string]types.MarketSnapshot, len(symbols))
	for _, symbol := range symbols {
		snaps[symbol] = m.snapshot(symbol)
	}
	return snaps, nil
}

func (m *Mock) snapshot(symbol string) types.MarketSnapshot {
	rng := rand.New(rand.NewSource(symbolSeed(symbol)))

	basePrice := 100 + rng.Float64()*400
	drift := (rng.Float64() - 0.45) * 0.004 // slight bullish bias
	history := m.walk(rng, basePrice, drift)
	last := history[len(history)-1]

	return types.MarketSnapshot{
		Symbol:       symbol,
		CurrentPrice: last.Close,
		Volume:       last.Volume,
		MarketCap:    float64(100+rng.Intn(2900)) * 1e9,
		PERatio:      10 + rng.Float64()*30,
		Beta:         0.6 + rng.Float64()*1.2,
		Sector:       mockSectors[rng.Intn(len(mockSectors))],
		Industry:     "Software - Infrastructure",
		History:      history,
		FetchedAt:    time.Now().UTC(),
	}
}

// walk produces a daily random walk ending today, weekends included for
// simplicity since the indicators only care about bar order.
func (m *Mock) walk(rng *rand.Rand, start, drift float64) []types.Bar {
	bars := make([]types.Bar, 0, m.historyDays)
	price := start
	day := time.Now().UTC().AddDate(0, 0, -m.historyDays)

	for i := 0; i < m.historyDays; i++ {
		change := price * (drift + (rng.Float64()-0.5)*0.03)
		open := price
		close := price + change
		high := open
		if close > high {
			high = close
		}
		high += price * rng.Float64() * 0.01
		low := open
		if close < low {
			low = close
		}
		low -= price * rng.Float64() * 0.01

		bars = append(bars, types.Bar{
			Date:   day,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(close),
			Volume: int64(1_000_000 + rng.Intn(99_000_000)),
		})
		price = close
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
