package combine

import (
	"fmt"
	"unicode/utf8"

	"stock-advisor/internal/types"
)

// Source weights for the two scorers.
const (
	mlWeight        = 0.6
	narrativeWeight = 0.4
)

// reasoningLimit is how much of each source's reasoning survives into the
// combined text.
const reasoningLimit = 150

// Merge combines the two scorers' outputs per symbol. order fixes the
// iteration over the union of symbols so downstream ranking ties break on
// original input order. Symbols absent from both maps are excluded.
func Merge(order []string, mlRecs, narrativeRecs map[string]types.Recommendation) []types.CombinedRecommendation {
	out := make([]types.CombinedRecommendation, 0, len(order))
	for _, symbol := range order {
		mlRec, hasML := mlRecs[symbol]
		narrRec, hasNarr := narrativeRecs[symbol]

		switch {
		case hasML && hasNarr:
			out = append(out, mergeTwo(symbol, mlRec, narrRec))
		case hasML:
			out = append(out, passThrough(mlRec, "ML", mlRec.Confidence, 0))
		case hasNarr:
			out = append(out, passThrough(narrRec, "Narrative", 0, narrRec.Confidence))
		}
	}
	return out
}

// mergeTwo blends both opinions: weighted confidence and price levels, the
// higher-confidence action on disagreement (the ML side wins ties), the
// higher risk, the shorter timeframe.
func mergeTwo(symbol string, mlRec, narrRec types.Recommendation) types.CombinedRecommendation {
	action := mlRec.Action
	if mlRec.Action != narrRec.Action && narrRec.Confidence > mlRec.Confidence {
		action = narrRec.Action
	}

	return types.CombinedRecommendation{
		Recommendation: types.Recommendation{
			Symbol:      symbol,
			Action:      action,
			Confidence:  mlRec.Confidence*mlWeight + narrRec.Confidence*narrativeWeight,
			Reasoning:   combineReasoning(mlRec.Reasoning, narrRec.Reasoning),
			RiskLevel:   higherRisk(mlRec.RiskLevel, narrRec.RiskLevel),
			Timeframe:   shorterTimeframe(mlRec.Timeframe, narrRec.Timeframe),
			PriceTarget: mlRec.PriceTarget*mlWeight + narrRec.PriceTarget*narrativeWeight,
			StopLoss:    mlRec.StopLoss*mlWeight + narrRec.StopLoss*narrativeWeight,
		},
		MLConfidence:        mlRec.Confidence,
		NarrativeConfidence: narrRec.Confidence,
		ConsensusScore:      consensusScore(mlRec, narrRec),
	}
}

// passThrough wraps a single-source opinion; the consensus score is
// discounted for the missing second opinion.
func passThrough(rec types.Recommendation, source string, mlConf, narrConf float64) types.CombinedRecommendation {
	combined := rec
	combined.Reasoning = fmt.Sprintf("%s Analysis: %s", source, rec.Reasoning)
	return types.CombinedRecommendation{
		Recommendation:      combined,
		MLConfidence:        mlConf,
		NarrativeConfidence: narrConf,
		ConsensusScore:      rec.Confidence * 0.8,
	}
}

// consensusScore is the average confidence plus a 0.1 bonus for action
// agreement and a 0.1 bonus when both confidences exceed 0.8, capped at 1.
func consensusScore(mlRec, narrRec types.Recommendation) float64 {
	score := (mlRec.Confidence + narrRec.Confidence) / 2
	if mlRec.Action == narrRec.Action {
		score += 0.1
	}
	if mlRec.Confidence > 0.8 && narrRec.Confidence > 0.8 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func combineReasoning(mlReasoning, narrReasoning string) string {
	return fmt.Sprintf("ML Analysis: %s... Narrative Analysis: %s...",
		head(mlReasoning, reasoningLimit), head(narrReasoning, reasoningLimit))
}

// head keeps at most n characters, never splitting a multibyte rune.
func head(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func riskOrd(r types.RiskLevel) int {
	switch r {
	case types.RiskLow:
		return 1
	case types.RiskHigh:
		return 3
	default:
		return 2
	}
}

func higherRisk(a, b types.RiskLevel) types.RiskLevel {
	if riskOrd(b) > riskOrd(a) {
		return b
	}
	return a
}

func timeframeDays(t types.Timeframe) float64 {
	switch t {
	case types.TimeframeShort:
		return 2
	case types.TimeframeLong:
		return 10.5
	default:
		return 5
	}
}

func shorterTimeframe(a, b types.Timeframe) types.Timeframe {
	if timeframeDays(b) < timeframeDays(a) {
		return b
	}
	return a
}
