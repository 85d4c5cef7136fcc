package narrative

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"stock-advisor/internal/types"
)

func TestParseWellFormedJSON(t *testing.T) {
	response := `Here is my analysis:
{
  "action": "BUY",
  "confidence": 0.85,
  "reasoning": "Strong momentum with sector tailwinds",
  "risk_level": "LOW",
  "timeframe": "1-3 days",
  "price_target": 120.5,
  "stop_loss": 95.0
}
Hope that helps.`

	rec := parseResponse("AAPL", response, 100)

	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-9)
	assert.Equal(t, "Strong momentum with sector tailwinds", rec.Reasoning)
	assert.Equal(t, types.RiskLow, rec.RiskLevel)
	assert.Equal(t, types.TimeframeShort, rec.Timeframe)
	assert.InDelta(t, 120.5, rec.PriceTarget, 1e-9)
	assert.InDelta(t, 95.0, rec.StopLoss, 1e-9)
}

func TestParseJSONWithMissingFields(t *testing.T) {
	rec := parseResponse("MSFT", `{"action": "SELL"}`, 200)

	assert.Equal(t, types.ActionSell, rec.Action)
	assert.InDelta(t, 0.5, rec.Confidence, 1e-9)
	assert.Equal(t, types.RiskMedium, rec.RiskLevel)
	assert.Equal(t, types.TimeframeMedium, rec.Timeframe)
	assert.InDelta(t, 200.0, rec.PriceTarget, 1e-9)
	assert.InDelta(t, 190.0, rec.StopLoss, 1e-9)
}

func TestParseJSONBadValuesCoerced(t *testing.T) {
	rec := parseResponse("NVDA", `{"action": "accumulate", "confidence": "0.9", "risk_level": "extreme", "timeframe": "next quarter"}`, 500)

	// Unknown enum strings fall back to defaults; numeric strings parse.
	assert.Equal(t, types.ActionHold, rec.Action)
	assert.InDelta(t, 0.9, rec.Confidence, 1e-9)
	assert.Equal(t, types.RiskMedium, rec.RiskLevel)
	assert.Equal(t, types.TimeframeMedium, rec.Timeframe)
}

func TestExtractJSONObjectRespectsStrings(t *testing.T) {
	raw := `prefix {"reasoning": "brace \" in } string", "action": "BUY"} suffix`
	obj, ok := extractJSONObject(raw)

	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(obj, "{"))
	assert.True(t, strings.HasSuffix(obj, "}"))

	rec := parseResponse("META", raw, 300)
	assert.Equal(t, types.ActionBuy, rec.Action)
}

func TestExtractJSONObjectNested(t *testing.T) {
	raw := `{"action": "HOLD", "extra": {"nested": true}}`
	obj, ok := extractJSONObject(raw)
	assert.True(t, ok)
	assert.Equal(t, raw, obj)
}

func TestKeywordFallbackBuy(t *testing.T) {
	rec := parseResponse("AAPL", "I would buy this stock, it looks stable over the next week", 100)

	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.7, rec.Confidence, 1e-9)
	assert.Equal(t, types.RiskLow, rec.RiskLevel)
	assert.Equal(t, types.TimeframeLong, rec.Timeframe)
	assert.InDelta(t, 105.0, rec.PriceTarget, 1e-9)
	assert.InDelta(t, 95.0, rec.StopLoss, 1e-9)
}

func TestKeywordFallbackBuyBeatsSell(t *testing.T) {
	// Both verbs present: buy is checked first.
	rec := parseResponse("TSLA", "buy now, sell later", 100)
	assert.Equal(t, types.ActionBuy, rec.Action)
}

func TestKeywordFallbackShortBeatsWeek(t *testing.T) {
	// "day" wins over "week" when both appear.
	rec := parseResponse("JPM", "volatile day trade, maybe hold a week", 100)
	assert.Equal(t, types.TimeframeShort, rec.Timeframe)
	assert.Equal(t, types.RiskHigh, rec.RiskLevel)
}

func TestKeywordFallbackNeutral(t *testing.T) {
	rec := parseResponse("PG", "nothing actionable here", 80)

	assert.Equal(t, types.ActionHold, rec.Action)
	assert.InDelta(t, 0.5, rec.Confidence, 1e-9)
	assert.InDelta(t, 80.0, rec.PriceTarget, 1e-9)
	assert.InDelta(t, 76.0, rec.StopLoss, 1e-9)
}

func TestKeywordFallbackTruncatesReasoning(t *testing.T) {
	long := strings.Repeat("a", 300)
	rec := parseResponse("UNH", long, 100)

	assert.Len(t, rec.Reasoning, 203)
	assert.True(t, strings.HasSuffix(rec.Reasoning, "..."))
}

func TestKeywordFallbackTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ö", 300)
	rec := parseResponse("SAP", long, 100)

	assert.True(t, utf8.ValidString(rec.Reasoning))
	assert.Equal(t, strings.Repeat("ö", 200)+"...", rec.Reasoning)
}

func TestMalformedJSONFallsBack(t *testing.T) {
	// Unbalanced object never closes; the keyword parser takes over.
	rec := parseResponse("HD", `{"action": "BUY" ... I would sell`, 100)
	assert.Equal(t, types.ActionBuy, rec.Action)
	assert.InDelta(t, 0.7, rec.Confidence, 1e-9)
}
