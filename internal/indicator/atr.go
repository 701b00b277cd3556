package indicator

import (
	"math"

	"LiquidLeaders/internal/model"
)

// TrueRange computes the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close, so its true range is simply high-low.
func TrueRange(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prev := bars[i-1].Close
			tr = math.Max(tr, math.Max(math.Abs(b.High-prev), math.Abs(b.Low-prev)))
		}
		out[i] = tr
	}
	return out
}

// RollingATR computes the average true range as a rolling mean of the true
// range over period sessions. The first period-1 positions are NaN.
func RollingATR(bars []model.Bar, period int) []float64 {
	return RollingSMA(TrueRange(bars), period)
}

// ATR returns the latest average true range over period sessions.
func ATR(bars []model.Bar, period int) (float64, error) {
	if len(bars) < period {
		return 0, ErrInsufficientData
	}
	series := RollingATR(bars, period)
	return series[len(series)-1], nil
}
