package rules

import (
	"context"
	"fmt"
	"math"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const maxConfidence = 0.95

// Scorer maps a feature vector to a recommendation using deterministic
// thresholds. It never fails; every input has a defined default.
type Scorer struct{}

var _ interfaces.Scorer = (*Scorer)(nil)

func New() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Score(_ context.Context, snap types.MarketSnapshot, fv types.FeatureVector) (types.Recommendation, error) {
	action, confidence, reasoning := primaryVote(fv)

	// Independent momentum vote; on disagreement the higher-confidence
	// vote wins (ties go to the momentum vote), and its confidence is the
	// one reported.
	momAction, momConfidence := momentumVote(fv.Momentum)
	if momAction != action && momConfidence >= confidence {
		action = momAction
		confidence = momConfidence
	}

	if fv.Volatility > 20 {
		confidence *= 0.8
	}

	target, stop := priceTargets(snap.CurrentPrice, fv.Volatility, action)

	return types.Recommendation{
		Symbol:      snap.Symbol,
		Action:      action,
		Confidence:  confidence,
		Reasoning:   reasoning,
		RiskLevel:   riskLevel(fv.Volatility, snap.Beta),
		Timeframe:   timeframe(fv.Volatility),
		PriceTarget: target,
		StopLoss:    stop,
	}, nil
}

// primaryVote applies the RSI rule plus MACD and SMA20 confirmation
// bonuses, capped at 0.95.
func primaryVote(fv types.FeatureVector) (types.Action, float64, string) {
	var (
		action     types.Action
		confidence float64
		reasoning  string
	)

	switch {
	case fv.RSI < 30:
		action = types.ActionBuy
		confidence = 0.8
		reasoning = fmt.Sprintf("RSI oversold (%.1f)", fv.RSI)
	case fv.RSI > 70:
		action = types.ActionSell
		confidence = 0.7
		reasoning = fmt.Sprintf("RSI overbought (%.1f)", fv.RSI)
	default:
		action = types.ActionHold
		confidence = 0.5
		reasoning = fmt.Sprintf("RSI neutral (%.1f)", fv.RSI)
	}

	if fv.MACD > 0 && action == types.ActionBuy {
		confidence += 0.1
		reasoning += ", MACD positive"
	} else if fv.MACD < 0 && action == types.ActionSell {
		confidence += 0.1
		reasoning += ", MACD negative"
	}

	if fv.PriceVsSMA20 > 2 && action == types.ActionBuy {
		confidence += 0.1
		reasoning += ", above SMA20"
	} else if fv.PriceVsSMA20 < -2 && action == types.ActionSell {
		confidence += 0.1
		reasoning += ", below SMA20"
	}

	return action, math.Min(maxConfidence, confidence), reasoning
}

func momentumVote(momentum float64) (types.Action, float64) {
	switch {
	case momentum > 5:
		return types.ActionBuy, 0.7
	case momentum < -5:
		return types.ActionSell, 0.7
	default:
		return types.ActionHold, 0.6
	}
}

// priceTargets scales target and stop off current price by volatility:
// BUY targets +vol%, stops -vol/2%; SELL mirrors; HOLD targets the
// current price.
func priceTargets(price, vol float64, action types.Action) (target, stop float64) {
	switch action {
	case types.ActionBuy:
		return price * (1 + vol/100), price * (1 - vol/200)
	case types.ActionSell:
		return price * (1 - vol/100), price * (1 + vol/200)
	default:
		return price, price * (1 - vol/200)
	}
}

func riskLevel(vol, beta float64) types.RiskLevel {
	switch {
	case vol > 25 || beta > 1.5:
		return types.RiskHigh
	case vol > 15 || beta > 1.2:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func timeframe(vol float64) types.Timeframe {
	switch {
	case vol > 20:
		return types.TimeframeShort
	case vol > 10:
		return types.TimeframeMedium
	default:
		return types.TimeframeLong
	}
}
