// Package indicator derives rolling-window analytics from a bar series.
// Every function is a pure function of its input: no I/O, no hidden state.
// Positions before a window is filled are NaN in slice outputs; snapshot
// metrics carry an explicit validity flag instead.
package indicator

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a series is too short for the
// requested computation.
var ErrInsufficientData = errors.New("indicator: insufficient data")

var nan = math.NaN()

// SMA computes the simple moving average of the trailing period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// RollingSMA computes the simple moving average at every position. The
// first period-1 positions are NaN.
func RollingSMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = nan
		}
	}
	return out
}

// RollingMax computes the trailing-window maximum at every position. The
// first period-1 positions are NaN.
func RollingMax(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = nan
			continue
		}
		m := values[i]
		for j := i - period + 1; j < i; j++ {
			if values[j] > m {
				m = values[j]
			}
		}
		out[i] = m
	}
	return out
}

// RollingStd computes the trailing-window population standard deviation.
func RollingStd(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = nan
			continue
		}
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += values[j]
		}
		mean /= float64(period)
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := values[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}

// EMA computes the exponential moving average series with smoothing factor
// 2/(span+1), seeded by the first observation. Seeding from the first bar
// rather than an SMA warm-up keeps the recursion stateless on resumption.
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// LastEMA returns the final EMA value of the series.
func LastEMA(values []float64, span int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	series := EMA(values, span)
	return series[len(series)-1], nil
}
