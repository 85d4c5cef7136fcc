package narrative

import (
	"encoding/json"
	"strings"

	"stock-advisor/internal/types"
)

// parseResponse extracts a recommendation from raw generator output.
// Phase one looks for a balanced top-level JSON object and maps its fields
// with coercion and defaults; phase two falls back to keyword scanning of
// the whole response.
func parseResponse(symbol, response string, price float64) types.Recommendation {
	if obj, ok := extractJSONObject(response); ok {
		var fields map[string]any
		if err := json.Unmarshal([]byte(obj), &fields); err == nil {
			return fromJSONFields(symbol, fields, price)
		}
	}
	return fromKeywords(symbol, response, price)
}

// extractJSONObject returns the first balanced top-level JSON object in raw,
// respecting string literals and escapes.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(raw[start : i+1]), true
			}
		}
	}
	return "", false
}

func fromJSONFields(symbol string, fields map[string]any, price float64) types.Recommendation {
	return types.Recommendation{
		Symbol:      symbol,
		Action:      coerceAction(fields["action"]),
		Confidence:  coerceFloat(fields["confidence"], 0.5),
		Reasoning:   coerceString(fields["reasoning"], "No reasoning provided"),
		RiskLevel:   coerceRisk(fields["risk_level"]),
		Timeframe:   coerceTimeframe(fields["timeframe"]),
		PriceTarget: coerceFloat(fields["price_target"], price),
		StopLoss:    coerceFloat(fields["stop_loss"], price*0.95),
	}
}

// fromKeywords is the fallback parser: keyword scanning of the lower-cased
// response with a fixed 5% price offset.
func fromKeywords(symbol, response string, price float64) types.Recommendation {
	lower := strings.ToLower(response)

	action := types.ActionHold
	confidence := 0.5
	if strings.Contains(lower, "buy") {
		action = types.ActionBuy
		confidence = 0.7
	} else if strings.Contains(lower, "sell") {
		action = types.ActionSell
		confidence = 0.7
	}

	risk := types.RiskMedium
	if strings.Contains(lower, "high risk") || strings.Contains(lower, "volatile") {
		risk = types.RiskHigh
	} else if strings.Contains(lower, "low risk") || strings.Contains(lower, "stable") {
		risk = types.RiskLow
	}

	timeframe := types.TimeframeMedium
	if strings.Contains(lower, "short") || strings.Contains(lower, "day") {
		timeframe = types.TimeframeShort
	} else if strings.Contains(lower, "week") {
		timeframe = types.TimeframeLong
	}

	var target, stop float64
	switch action {
	case types.ActionBuy:
		target, stop = price*1.05, price*0.95
	case types.ActionSell:
		target, stop = price*0.95, price*1.05
	default:
		target, stop = price, price*0.95
	}

	reasoning := response
	if runes := []rune(reasoning); len(runes) > 200 {
		reasoning = string(runes[:200]) + "..."
	}

	return types.Recommendation{
		Symbol:      symbol,
		Action:      action,
		Confidence:  confidence,
		Reasoning:   reasoning,
		RiskLevel:   risk,
		Timeframe:   timeframe,
		PriceTarget: target,
		StopLoss:    stop,
	}
}

func coerceAction(v any) types.Action {
	s := strings.ToUpper(strings.TrimSpace(coerceString(v, "")))
	switch types.Action(s) {
	case types.ActionBuy, types.ActionSell, types.ActionHold:
		return types.Action(s)
	default:
		return types.ActionHold
	}
}

func coerceRisk(v any) types.RiskLevel {
	s := strings.ToUpper(strings.TrimSpace(coerceString(v, "")))
	switch types.RiskLevel(s) {
	case types.RiskLow, types.RiskMedium, types.RiskHigh:
		return types.RiskLevel(s)
	default:
		return types.RiskMedium
	}
}

func coerceTimeframe(v any) types.Timeframe {
	s := strings.TrimSpace(coerceString(v, ""))
	switch types.Timeframe(s) {
	case types.TimeframeShort, types.TimeframeMedium, types.TimeframeLong:
		return types.Timeframe(s)
	default:
		return types.TimeframeMedium
	}
}

func coerceString(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

func coerceFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		var f float64
		if err := json.Unmarshal([]byte(strings.TrimSpace(n)), &f); err == nil {
			return f
		}
	}
	return def
}
