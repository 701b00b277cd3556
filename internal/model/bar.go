package model

import "sort"

// Bar represents one ticker's OHLCV candle for a single calendar day.
// Date is always an ISO calendar-day string (YYYY-MM-DD) with no time
// component; (Ticker, Date) is the unique key in the store.
type Bar struct {
	Ticker string
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SortBars orders bars ascending by date in place. ISO dates compare
// correctly as strings.
func SortBars(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
}

// Closes extracts the close column from a bar series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column from a bar series.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
