package indicator

import (
	"math"

	"LiquidLeaders/internal/model"
)

// SeriesIndicators holds per-bar indicator columns aligned index-for-index
// with the source series. Warm-up positions are NaN; consumers must skip
// them rather than treat them as zero.
type SeriesIndicators struct {
	SMA20, SMA50, SMA200 []float64
	Vol20, Vol50, Vol200 []float64
	InstLevel            []float64 // 1.8 x Vol50, the institutional volume line
	BullZone             []bool    // Vol50 > Vol20

	RSI14                   []float64
	MACD, MACDSig, MACDHist []float64
	BBHigh, BBLow           []float64
	StochK, StochD          []float64
	CCI20                   []float64
	ADX14                   []float64
	ATR14                   []float64
	Pivot, R1, S1           []float64
}

// Series computes the full indicator column set for a bar series. Bars
// must be ascending by date.
func Series(bars []model.Bar) *SeriesIndicators {
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	s := &SeriesIndicators{
		SMA20:  RollingSMA(closes, 20),
		SMA50:  RollingSMA(closes, 50),
		SMA200: RollingSMA(closes, 200),
		Vol20:  RollingSMA(volumes, 20),
		Vol50:  RollingSMA(volumes, 50),
		Vol200: RollingSMA(volumes, 200),
		RSI14:  RollingRSI(closes, 14),
		CCI20:  CCI(bars, 20),
		ADX14:  ADX(bars, 14),
		ATR14:  RollingATR(bars, 14),
	}
	s.MACD, s.MACDSig, s.MACDHist = MACD(closes, 12, 26, 9)
	s.BBHigh, s.BBLow = Bollinger(closes, 20, 2)
	s.StochK, s.StochD = Stochastic(bars, 14, 3)
	s.Pivot, s.R1, s.S1 = Pivots(bars)

	s.InstLevel = make([]float64, len(bars))
	s.BullZone = make([]bool, len(bars))
	for i := range bars {
		s.InstLevel[i] = 1.8 * s.Vol50[i]
		// NaN comparisons are false, so the warm-up prefix stays bearish.
		s.BullZone[i] = !math.IsNaN(s.Vol50[i]) && !math.IsNaN(s.Vol20[i]) && s.Vol50[i] > s.Vol20[i]
	}
	return s
}
