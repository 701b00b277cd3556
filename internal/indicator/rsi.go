package indicator

// RollingRSI computes the Wilder-smoothed relative strength index at every
// position. The first period positions are NaN (period+1 bars are needed
// for the initial average gain/loss).
func RollingRSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = nan
	}
	if len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFrom(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// RSI returns the latest Wilder RSI over period sessions.
func RSI(closes []float64, period int) (float64, error) {
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}
	series := RollingRSI(closes, period)
	return series[len(series)-1], nil
}
