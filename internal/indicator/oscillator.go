package indicator

import (
	"math"

	"LiquidLeaders/internal/model"
)

// MACD computes the moving average convergence/divergence line, its signal
// line, and the histogram, using EMA spans fast/slow/signal (12/26/9 by
// convention).
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig = EMA(line, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Bollinger computes upper and lower Bollinger Bands: SMA(period) ± k
// standard deviations. Warm-up positions are NaN.
func Bollinger(closes []float64, period int, k float64) (upper, lower []float64) {
	mid := RollingSMA(closes, period)
	std := RollingStd(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}
	return upper, lower
}

// Stochastic computes the %K and %D lines of the stochastic oscillator.
// %K = (close - lowestLow) / (highestHigh - lowestLow) * 100 over kPeriod;
// a flat window is scored 50. %D is the dPeriod SMA of %K.
func Stochastic(bars []model.Bar, kPeriod, dPeriod int) (k, d []float64) {
	k = make([]float64, len(bars))
	for i := range bars {
		if i < kPeriod-1 {
			k[i] = nan
			continue
		}
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - kPeriod + 1; j <= i; j++ {
			hh = math.Max(hh, bars[j].High)
			ll = math.Min(ll, bars[j].Low)
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = (bars[i].Close - ll) / (hh - ll) * 100
	}

	// SMA of %K, ignoring the NaN warm-up prefix.
	d = make([]float64, len(bars))
	for i := range bars {
		if i < kPeriod-1+dPeriod-1 {
			d[i] = nan
			continue
		}
		sum := 0.0
		for j := i - dPeriod + 1; j <= i; j++ {
			sum += k[j]
		}
		d[i] = sum / float64(dPeriod)
	}
	return k, d
}

// CCI computes the commodity channel index over period sessions:
// (typicalPrice - SMA(typicalPrice)) / (0.015 * meanAbsoluteDeviation).
func CCI(bars []model.Bar, period int) []float64 {
	tp := make([]float64, len(bars))
	for i, b := range bars {
		tp[i] = (b.High + b.Low + b.Close) / 3
	}
	out := make([]float64, len(bars))
	for i := range bars {
		if i < period-1 {
			out[i] = nan
			continue
		}
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += tp[j]
		}
		mean /= float64(period)
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - mean)
		}
		mad /= float64(period)
		if mad == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - mean) / (0.015 * mad)
	}
	return out
}

// ADX computes the Wilder average directional index over period sessions.
// Values are NaN until 2*period bars have accumulated.
func ADX(bars []model.Bar, period int) []float64 {
	n := len(bars)
	out := make([]float64, n)
	for i := range out {
		out[i] = nan
	}
	if n < 2*period {
		return out
	}

	tr := TrueRange(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// Wilder smoothing: initial sums over the first period changes, then
	// smoothed = prev - prev/period + current.
	var strSum, plusSum, minusSum float64
	for i := 1; i <= period; i++ {
		strSum += tr[i]
		plusSum += plusDM[i]
		minusSum += minusDM[i]
	}

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = nan
	}
	computeDX := func(str, plus, minus float64) float64 {
		if str == 0 {
			return 0
		}
		plusDI := 100 * plus / str
		minusDI := 100 * minus / str
		sum := plusDI + minusDI
		if sum == 0 {
			return 0
		}
		return 100 * math.Abs(plusDI-minusDI) / sum
	}
	dx[period] = computeDX(strSum, plusSum, minusSum)
	for i := period + 1; i < n; i++ {
		strSum = strSum - strSum/float64(period) + tr[i]
		plusSum = plusSum - plusSum/float64(period) + plusDM[i]
		minusSum = minusSum - minusSum/float64(period) + minusDM[i]
		dx[i] = computeDX(strSum, plusSum, minusSum)
	}

	// ADX: first value is the mean of the first period DX values, then
	// Wilder-smoothed.
	var dxSum float64
	for i := period; i < 2*period; i++ {
		dxSum += dx[i]
	}
	out[2*period-1] = dxSum / float64(period)
	for i := 2 * period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return out
}

// Pivots computes classic floor-trader pivot levels per bar:
// P = (H+L+C)/3, R1 = 2P-L, S1 = 2P-H.
func Pivots(bars []model.Bar) (pivot, r1, s1 []float64) {
	pivot = make([]float64, len(bars))
	r1 = make([]float64, len(bars))
	s1 = make([]float64, len(bars))
	for i, b := range bars {
		p := (b.High + b.Low + b.Close) / 3
		pivot[i] = p
		r1[i] = 2*p - b.Low
		s1[i] = 2*p - b.High
	}
	return pivot, r1, s1
}
