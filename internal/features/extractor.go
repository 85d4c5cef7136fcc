package features

import (
	"math"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// Neutral values used when the history is too short for an indicator window.
const (
	neutralRSI       = 50.0
	neutralBollinger = 0.5
)

// Extractor derives feature vectors from snapshot history. The zero value is
// not usable; construct with New.
type Extractor struct {
	smaFast   int
	smaSlow   int
	rsiPeriod int
	bbWindow  int
	bbStdDev  float64
	macdFast  int
	macdSlow  int
}

// Params configures the indicator windows. Zero fields take the defaults
// (SMA 20/50, RSI 14, Bollinger 20 x 2 sigma, MACD 12/26).
type Params struct {
	SMAFast   int
	SMASlow   int
	RSIPeriod int
	BBWindow  int
	BBStdDev  float64
	MACDFast  int
	MACDSlow  int
}

func New(p Params) *Extractor {
	e := &Extractor{
		smaFast:   p.SMAFast,
		smaSlow:   p.SMASlow,
		rsiPeriod: p.RSIPeriod,
		bbWindow:  p.BBWindow,
		bbStdDev:  p.BBStdDev,
		macdFast:  p.MACDFast,
		macdSlow:  p.MACDSlow,
	}
	if e.smaFast == 0 {
		e.smaFast = 20
	}
	if e.smaSlow == 0 {
		e.smaSlow = 50
	}
	if e.rsiPeriod == 0 {
		e.rsiPeriod = 14
	}
	if e.bbWindow == 0 {
		e.bbWindow = 20
	}
	if e.bbStdDev == 0 {
		e.bbStdDev = 2
	}
	if e.macdFast == 0 {
		e.macdFast = 12
	}
	if e.macdSlow == 0 {
		e.macdSlow = 26
	}
	return e
}

// Extract derives the feature vector for one snapshot. It never fails:
// any indicator whose window exceeds the available history falls back to
// its neutral value.
func (e *Extractor) Extract(snap types.MarketSnapshot) types.FeatureVector {
	closes := make([]float64, 0, len(snap.History))
	for _, bar := range snap.History {
		closes = append(closes, bar.Close)
	}

	fv := types.FeatureVector{
		Symbol:       snap.Symbol,
		RSI:          neutralRSI,
		BollingerPos: neutralBollinger,
	}

	var price float64
	if len(closes) > 0 {
		price = closes[len(closes)-1]
	}

	if v := ta.RSI(closes, e.rsiPeriod); !math.IsNaN(v) {
		fv.RSI = v
	}
	if v := ta.MACD(closes, e.macdFast, e.macdSlow); !math.IsNaN(v) {
		fv.MACD = v
	}
	if sma := ta.SMA(closes, e.smaFast); !math.IsNaN(sma) && sma != 0 {
		fv.PriceVsSMA20 = (price/sma - 1) * 100
	}
	if sma := ta.SMA(closes, e.smaSlow); !math.IsNaN(sma) && sma != 0 {
		fv.PriceVsSMA50 = (price/sma - 1) * 100
	}

	fv.BollingerPos = e.bollingerPosition(closes, price)
	fv.Volatility = volatility(closes)
	fv.Momentum = momentum(closes)

	return fv
}

// bollingerPosition places price within the band, clamped to [0,1];
// 0.5 when the window is short or the band width is zero.
func (e *Extractor) bollingerPosition(closes []float64, price float64) float64 {
	_, up, low := ta.Bollinger(closes, e.bbWindow, e.bbStdDev)
	if math.IsNaN(up) || math.IsNaN(low) {
		return neutralBollinger
	}
	width := up - low
	if width == 0 {
		return neutralBollinger
	}
	pos := (price - low) / width
	return math.Max(0, math.Min(1, pos))
}

// volatility is the population standard deviation of daily returns over the
// full available history, in percent. Zero for fewer than two bars.
func volatility(closes []float64) float64 {
	rets := ta.Returns(closes)
	if len(rets) == 0 {
		return 0
	}
	sd := ta.StdDev(rets, len(rets))
	if math.IsNaN(sd) {
		return 0
	}
	return sd * 100
}

// momentum is the percent change over the last 5 bars; zero when fewer.
func momentum(closes []float64) float64 {
	if len(closes) < 5 {
		return 0
	}
	first := closes[len(closes)-5]
	if first == 0 {
		return 0
	}
	return (closes[len(closes)-1]/first - 1) * 100
}
