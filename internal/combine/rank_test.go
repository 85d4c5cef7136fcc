package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func combined(symbol string, action types.Action, risk types.RiskLevel, tf types.Timeframe,
	consensus, mlConf, narrConf float64) types.CombinedRecommendation {
	return types.CombinedRecommendation{
		Recommendation: types.Recommendation{
			Symbol:    symbol,
			Action:    action,
			RiskLevel: risk,
			Timeframe: tf,
		},
		MLConfidence:        mlConf,
		NarrativeConfidence: narrConf,
		ConsensusScore:      consensus,
	}
}

func TestRankOverwritesConfidence(t *testing.T) {
	rec := combined("AAPL", types.ActionBuy, types.RiskLow, types.TimeframeLong, 0.95, 0.9, 0.8)
	rec.Confidence = 0.123 // pre-rank value must be discarded

	out := Rank([]types.CombinedRecommendation{rec})

	require.Len(t, out, 1)
	// 0.4*0.95 + 0.2*1.0 + 0.15*1.0 + 0.15*0.8 + 0.1*(1-0.1)
	assert.InDelta(t, 0.94, out[0].Confidence, 1e-9)
}

func TestRankCapsAtOne(t *testing.T) {
	rec := combined("NVDA", types.ActionBuy, types.RiskLow, types.TimeframeShort, 1.0, 0.95, 0.95)
	// 0.4 + 0.2 + 0.15 + 0.15 + 0.1 = 1.0 exactly; anything above caps.
	out := Rank([]types.CombinedRecommendation{rec})
	assert.LessOrEqual(t, out[0].Confidence, 1.0)
}

func TestRankSortsDescending(t *testing.T) {
	recs := []types.CombinedRecommendation{
		combined("LOW", types.ActionHold, types.RiskHigh, types.TimeframeLong, 0.3, 0.4, 0.4),
		combined("HIGH", types.ActionBuy, types.RiskLow, types.TimeframeShort, 0.95, 0.9, 0.9),
		combined("MID", types.ActionSell, types.RiskMedium, types.TimeframeMedium, 0.6, 0.7, 0.5),
	}

	out := Rank(recs)

	require.Len(t, out, 3)
	assert.Equal(t, "HIGH", out[0].Symbol)
	assert.Equal(t, "MID", out[1].Symbol)
	assert.Equal(t, "LOW", out[2].Symbol)
	assert.GreaterOrEqual(t, out[0].Confidence, out[1].Confidence)
	assert.GreaterOrEqual(t, out[1].Confidence, out[2].Confidence)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	a := combined("FIRST", types.ActionBuy, types.RiskLow, types.TimeframeShort, 0.8, 0.9, 0.9)
	b := combined("SECOND", types.ActionBuy, types.RiskLow, types.TimeframeShort, 0.8, 0.9, 0.9)

	out := Rank([]types.CombinedRecommendation{a, b})

	require.Len(t, out, 2)
	assert.Equal(t, "FIRST", out[0].Symbol)
	assert.Equal(t, "SECOND", out[1].Symbol)
}

func TestRankIdempotent(t *testing.T) {
	recs := []types.CombinedRecommendation{
		combined("A", types.ActionBuy, types.RiskLow, types.TimeframeShort, 0.9, 0.9, 0.7),
		combined("B", types.ActionSell, types.RiskHigh, types.TimeframeLong, 0.5, 0.6, 0.8),
		combined("C", types.ActionHold, types.RiskMedium, types.TimeframeMedium, 0.7, 0.5, 0.5),
	}

	once := Rank(recs)
	twice := Rank(once)

	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Symbol, twice[i].Symbol)
		assert.InDelta(t, once[i].Confidence, twice[i].Confidence, 1e-12)
	}
}
