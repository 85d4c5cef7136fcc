package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func score(t *testing.T, snap types.MarketSnapshot, fv types.FeatureVector) types.Recommendation {
	t.Helper()
	rec, err := New().Score(context.Background(), snap, fv)
	require.NoError(t, err)
	return rec
}

func TestOversoldWithConfirmations(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "AAPL", CurrentPrice: 100, Beta: 1.0}
	fv := types.FeatureVector{
		Symbol:       "AAPL",
		RSI:          25,
		MACD:         0.5,
		PriceVsSMA20: 3,
		Volatility:   10,
	}

	rec := score(t, snap, fv)

	assert.Equal(t, types.ActionBuy, rec.Action)
	// 0.8 + 0.1 MACD + 0.1 SMA20, capped.
	assert.InDelta(t, 0.95, rec.Confidence, 1e-9)
	assert.Equal(t, types.RiskLow, rec.RiskLevel)
	assert.Equal(t, types.TimeframeLong, rec.Timeframe)
	assert.Contains(t, rec.Reasoning, "RSI oversold")
	assert.Contains(t, rec.Reasoning, "MACD positive")
	assert.Contains(t, rec.Reasoning, "above SMA20")
}

func TestOverboughtWithConfirmations(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "TSLA", CurrentPrice: 200}
	fv := types.FeatureVector{
		Symbol:       "TSLA",
		RSI:          75,
		MACD:         -0.2,
		PriceVsSMA20: -3,
	}

	rec := score(t, snap, fv)

	assert.Equal(t, types.ActionSell, rec.Action)
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
}

func TestMomentumOverridesWeakPrimary(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "NVDA", CurrentPrice: 500}
	fv := types.FeatureVector{Symbol: "NVDA", RSI: 50, Momentum: 8}

	rec := score(t, snap, fv)

	// HOLD 0.5 loses to the momentum BUY vote at 0.7.
	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.7, rec.Confidence, 1e-9)
}

func TestMomentumLosesToStrongPrimary(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "META", CurrentPrice: 300}
	fv := types.FeatureVector{Symbol: "META", RSI: 25, MACD: 1, PriceVsSMA20: 5, Momentum: -8}

	rec := score(t, snap, fv)

	// BUY at 0.95 beats the momentum SELL vote at 0.7.
	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.95, rec.Confidence, 1e-9)
}

func TestHighVolatilityScalesConfidence(t *testing.T) {
	snap := types.MarketSnapshot{Symbol: "AMZN", CurrentPrice: 150}
	fv := types.FeatureVector{Symbol: "AMZN", RSI: 25, Volatility: 22}

	rec := score(t, snap, fv)

	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.8*0.8, rec.Confidence, 1e-9)
	assert.Equal(t, types.TimeframeShort, rec.Timeframe)
}

func TestPriceTargets(t *testing.T) {
	tests := []struct {
		name       string
		rsi        float64
		wantAction types.Action
		wantTarget float64
		wantStop   float64
	}{
		{"buy", 25, types.ActionBuy, 110, 95},
		{"sell", 75, types.ActionSell, 90, 105},
		{"hold", 50, types.ActionHold, 100, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := types.MarketSnapshot{Symbol: "HD", CurrentPrice: 100}
			fv := types.FeatureVector{Symbol: "HD", RSI: tt.rsi, Volatility: 10}
			rec := score(t, snap, fv)

			require.Equal(t, tt.wantAction, rec.Action)
			assert.InDelta(t, tt.wantTarget, rec.PriceTarget, 1e-9)
			assert.InDelta(t, tt.wantStop, rec.StopLoss, 1e-9)
		})
	}
}

func TestRiskLevels(t *testing.T) {
	tests := []struct {
		vol, beta float64
		want      types.RiskLevel
	}{
		{30, 1.0, types.RiskHigh},
		{10, 1.6, types.RiskHigh},
		{18, 1.0, types.RiskMedium},
		{10, 1.3, types.RiskMedium},
		{10, 1.0, types.RiskLow},
	}

	for _, tt := range tests {
		snap := types.MarketSnapshot{Symbol: "V", CurrentPrice: 100, Beta: tt.beta}
		fv := types.FeatureVector{Symbol: "V", RSI: 50, Volatility: tt.vol}
		rec := score(t, snap, fv)
		assert.Equal(t, tt.want, rec.RiskLevel, "vol=%v beta=%v", tt.vol, tt.beta)
	}
}

func TestConfidenceAlwaysBounded(t *testing.T) {
	rsis := []float64{0, 25, 29.9, 30, 50, 70, 70.1, 75, 100}
	moms := []float64{-20, -5, 0, 5, 20}
	vols := []float64{0, 10, 21, 40}

	for _, rsi := range rsis {
		for _, mom := range moms {
			for _, vol := range vols {
				snap := types.MarketSnapshot{Symbol: "X", CurrentPrice: 100}
				fv := types.FeatureVector{Symbol: "X", RSI: rsi, MACD: 1, PriceVsSMA20: 5, Momentum: mom, Volatility: vol}
				rec := score(t, snap, fv)

				assert.GreaterOrEqual(t, rec.Confidence, 0.0)
				assert.LessOrEqual(t, rec.Confidence, 0.95)
				assert.Contains(t, []types.Action{types.ActionBuy, types.ActionSell, types.ActionHold}, rec.Action)
			}
		}
	}
}
