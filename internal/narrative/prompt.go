package narrative

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"stock-advisor/internal/types"
)

// maxDocExcerpt bounds how much of a document body is quoted in the prompt.
const maxDocExcerpt = 200

// buildPrompt embeds the technical summary and up to maxDocs retrieved
// documents, and states the strict JSON output contract.
func buildPrompt(snap types.MarketSnapshot, fv types.FeatureVector, docs []types.RetrievedDocument, maxDocs int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert financial analyst. Based on the following data, provide a trading recommendation for %s.\n\n", snap.Symbol)

	fmt.Fprintf(&b, "Technical Indicators for %s:\n", snap.Symbol)
	fmt.Fprintf(&b, "- Current Price: $%.2f\n", snap.CurrentPrice)
	fmt.Fprintf(&b, "- RSI: %.1f\n", fv.RSI)
	fmt.Fprintf(&b, "- MACD: %.4f\n", fv.MACD)
	fmt.Fprintf(&b, "- Price vs SMA20: %.1f%%\n", fv.PriceVsSMA20)
	fmt.Fprintf(&b, "- Price vs SMA50: %.1f%%\n", fv.PriceVsSMA50)
	fmt.Fprintf(&b, "- Volatility: %.1f%%\n", fv.Volatility)
	fmt.Fprintf(&b, "- Volume: %d\n", snap.Volume)
	fmt.Fprintf(&b, "- Market Cap: $%.0f\n", snap.MarketCap)
	fmt.Fprintf(&b, "- P/E Ratio: %.1f\n", snap.PERatio)
	fmt.Fprintf(&b, "- Beta: %.2f\n", snap.Beta)
	fmt.Fprintf(&b, "- Sector: %s\n", sectorOrNA(snap.Sector))

	if len(docs) > 0 {
		b.WriteString("\nRelevant Market Context:\n")
		for i, doc := range docs {
			if i >= maxDocs {
				break
			}
			fmt.Fprintf(&b, "%d. %s: %s...\n", i+1, doc.Title, excerpt(doc.Content, maxDocExcerpt))
		}
	}

	b.WriteString(`
Please provide your analysis in the following JSON format:
{
    "action": "BUY/SELL/HOLD",
    "confidence": 0.85,
    "reasoning": "Detailed explanation of your recommendation",
    "risk_level": "LOW/MEDIUM/HIGH",
    "timeframe": "1-3 days/3-7 days/1-2 weeks",
    "price_target": 150.00,
    "stop_loss": 140.00
}

Consider:
1. Technical indicators (RSI, MACD, moving averages)
2. Market context and recent news
3. Sector performance and market conditions
4. Risk management principles
5. Current market volatility

Provide a well-reasoned recommendation based on the data provided.`)

	return b.String()
}

func sectorOrNA(sector string) string {
	if sector == "" {
		return "N/A"
	}
	return sector
}

// excerpt keeps at most n characters, never splitting a multibyte rune.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
