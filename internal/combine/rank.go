package combine

import (
	"sort"

	"stock-advisor/internal/types"
)

// Ensemble score factor weights.
const (
	consensusFactor   = 0.4
	actionFactor      = 0.2
	riskFactor        = 0.15
	timeframeFactor   = 0.15
	consistencyFactor = 0.1
)

// Rank finalizes the ensemble score for every recommendation and sorts
// descending, ties keeping input order. The score deliberately overwrites
// the Confidence field in place: downstream consumers read the ensemble
// value where the blended confidence used to be. Because the score is a
// pure recompute from the other fields, ranking is idempotent.
func Rank(recs []types.CombinedRecommendation) []types.CombinedRecommendation {
	for i := range recs {
		recs[i].Confidence = ensembleScore(recs[i])
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	return recs
}

// ensembleScore blends consensus, action, risk and timeframe preferences
// with how closely the two source confidences agree.
func ensembleScore(rec types.CombinedRecommendation) float64 {
	score := rec.ConsensusScore*consensusFactor +
		actionPreference(rec.Action)*actionFactor +
		riskPreference(rec.RiskLevel)*riskFactor +
		timeframePreference(rec.Timeframe)*timeframeFactor +
		(1-abs(rec.MLConfidence-rec.NarrativeConfidence))*consistencyFactor
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func actionPreference(a types.Action) float64 {
	switch a {
	case types.ActionBuy:
		return 1.0
	case types.ActionSell:
		return 0.8
	default:
		return 0.7
	}
}

func riskPreference(r types.RiskLevel) float64 {
	switch r {
	case types.RiskLow:
		return 1.0
	case types.RiskMedium:
		return 0.9
	default:
		return 0.7
	}
}

func timeframePreference(t types.Timeframe) float64 {
	switch t {
	case types.TimeframeShort:
		return 1.0
	case types.TimeframeMedium:
		return 0.9
	default:
		return 0.8
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
