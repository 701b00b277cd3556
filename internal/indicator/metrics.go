package indicator

import (
	"LiquidLeaders/internal/model"
)

// MinBars is the floor below which no snapshot is computed: rolling-window
// metrics from a shorter series would be mostly undefined or garbage.
const MinBars = 60

// Snapshot derives the per-ticker metric set from the trailing window
// ending at the most recent bar. Bars must be ascending by date with no
// duplicates. Series shorter than MinBars yield ErrInsufficientData rather
// than partial metrics; individual metrics whose own window is not filled
// come back as undefined Floats.
func Snapshot(bars []model.Bar) (*model.MetricSet, error) {
	if len(bars) < MinBars {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	last := bars[n-1]
	closes := model.Closes(bars)
	volumes := model.Volumes(bars)

	m := &model.MetricSet{
		Ticker: last.Ticker,
		Date:   last.Date,
		Close:  last.Close,
	}

	// Daily close range position; a flat day (high == low) scores 50.
	if last.High == last.Low {
		m.DCR = model.Defined(50)
	} else {
		m.DCR = model.Defined((last.Close - last.Low) / (last.High - last.Low) * 100)
	}

	// 21-session return.
	if n > 21 {
		m.Return21 = model.Defined((last.Close/closes[n-21] - 1) * 100)
	}

	atr14, err14 := ATR(bars, 14)
	atr20, err20 := ATR(bars, 20)
	atr50, err50 := ATR(bars, 50)

	if err14 == nil && last.Close > 0 {
		m.ATRPct = model.Defined(atr14 / last.Close * 100)
	}

	// Reward/risk versus the rolling 50-day high; undefined when ATR is
	// zero or missing so a bad denominator can never sneak downstream.
	if err14 == nil && atr14 > 0 && n >= 50 {
		high50 := bars[n-1].High
		for i := n - 50; i < n; i++ {
			if bars[i].High > high50 {
				high50 = bars[i].High
			}
		}
		m.RR = model.Defined((high50 - last.Close) / atr14)
	}

	if ema20, err := LastEMA(closes, 20); err == nil && err20 == nil && atr20 > 0 {
		m.ATRE20 = model.Defined((last.Close - ema20) / atr20)
	}
	if ema50, err := LastEMA(closes, 50); err == nil && err50 == nil && atr50 > 0 {
		m.ATRE50 = model.Defined((last.Close - ema50) / atr50)
	}

	if avgVol, err := SMA(volumes, 20); err == nil {
		m.AvgVol20 = model.Defined(avgVol)
	}

	return m, nil
}
