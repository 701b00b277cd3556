package model

// Float is a float64 that may be undefined. Rolling-window metrics are
// undefined until their window is filled; carrying the flag explicitly
// keeps an empty value from ever being read as a real zero downstream.
type Float struct {
	Float64 float64
	Valid   bool
}

// Defined wraps a concrete value.
func Defined(v float64) Float { return Float{Float64: v, Valid: true} }

// Undefined is the missing-value marker.
var Undefined = Float{}

// MetricSet is the per-ticker indicator snapshot computed from the
// trailing window ending at the most recent bar. It is ephemeral:
// recomputed on demand, never persisted.
type MetricSet struct {
	Ticker string
	Date   string  // date of the most recent bar
	Close  float64 // last close

	DCR      Float // daily close range position, 0-100
	Return21 Float // 21-session return, percent
	ATRPct   Float // ATR(14) as percent of close
	RR       Float // (rolling 50-day high - close) / ATR(14)
	ATRE20   Float // (close - EMA20) / ATR(20)
	ATRE50   Float // (close - EMA50) / ATR(50)
	AvgVol20 Float // trailing 20-session mean volume
}

// Classified is a ticker accepted by the leadership classifier.
type Classified struct {
	Ticker  string
	Tier    int // 3 strictest, 1 loosest
	Metrics MetricSet
}
