package ta

import "math"

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// RSI over the last `period` deltas. A zero average loss yields the neutral
// midpoint rather than a pinned 100.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 50.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	v := 100.0 - (100.0 / (1.0 + rs))
	return math.Max(0, math.Min(100, v))
}

// EMA with smoothing 2/(span+1), seeded from the first value.
func EMA(closes []float64, span int) float64 {
	if len(closes) == 0 || span <= 0 {
		return math.NaN()
	}
	alpha := 2.0 / (float64(span) + 1.0)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = alpha*c + (1-alpha)*ema
	}
	return ema
}

func MACD(closes []float64, fast, slow int) float64 {
	f := EMA(closes, fast)
	s := EMA(closes, slow)
	if math.IsNaN(f) || math.IsNaN(s) {
		return math.NaN()
	}
	return f - s
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// Returns computes daily returns (close-over-close fractional change).
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}
