package types

import "time"

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

type Timeframe string

const (
	TimeframeShort  Timeframe = "1-3 days"
	TimeframeMedium Timeframe = "3-7 days"
	TimeframeLong   Timeframe = "1-2 weeks"
)

// Bar is one daily OHLCV bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// MarketSnapshot is the provider's view of one symbol at collection time.
// Immutable once produced; one per symbol per pipeline run.
type MarketSnapshot struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	Volume       int64     `json:"volume"`
	MarketCap    float64   `json:"market_cap"`
	PERatio      float64   `json:"pe_ratio"`
	Beta         float64   `json:"beta"`
	Sector       string    `json:"sector"`
	Industry     string    `json:"industry"`
	History      []Bar     `json:"history"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// FeatureVector is derived from a snapshot's history. Every field is defined
// even for empty history; short windows fall back to neutral values.
type FeatureVector struct {
	Symbol         string  `json:"symbol"`
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	BollingerPos   float64 `json:"bollinger_position"`
	Volatility     float64 `json:"volatility"`
	Momentum       float64 `json:"momentum"`
	PriceVsSMA20   float64 `json:"price_vs_sma20"`
	PriceVsSMA50   float64 `json:"price_vs_sma50"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Recommendation is a single scorer's opinion for one symbol.
type Recommendation struct {
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	Confidence  float64   `json:"confidence"`
	Reasoning   string    `json:"reasoning"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Timeframe   Timeframe `json:"timeframe"`
	PriceTarget float64   `json:"price_target"`
	StopLoss    float64   `json:"stop_loss"`
}

// CombinedRecommendation merges the rule-based and narrative opinions.
// A source that abstained contributes confidence 0.0. After the ensemble
// ranking step, Confidence holds the recomputed ensemble score; this
// overwrite is deliberate and is the only in-place mutation in the model.
type CombinedRecommendation struct {
	Recommendation
	MLConfidence        float64 `json:"ml_confidence"`
	NarrativeConfidence float64 `json:"narrative_confidence"`
	ConsensusScore      float64 `json:"consensus_score"`
}

// RetrievedDocument is one document returned by the retrieval service,
// ordered by descending relevance score.
type RetrievedDocument struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Date    string  `json:"date"`
	Symbol  string  `json:"symbol"`
	Type    string  `json:"type"`
	Score   float64 `json:"score"`
}

// GenerateOptions bound a single generative backend call.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}
