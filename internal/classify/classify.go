// Package classify buckets tickers into leadership tiers from their
// derived metric sets. Thresholds and rules are immutable values passed in
// explicitly, so concurrent scans with different rule sets cannot
// interfere.
package classify

import (
	"sort"

	"LiquidLeaders/internal/model"
)

// Thresholds are the hard eligibility gates evaluated before any tier
// rule. A ticker failing any gate is excluded entirely.
type Thresholds struct {
	MinPrice     float64
	MinAvgVolume float64
	ATRPctMin    float64
	ATRPctMax    float64
}

// TierRule is one tier's qualification bar. All three conditions must hold.
type TierRule struct {
	Tier      int
	MinReturn float64 // 21-session return floor, percent
	MinDCR    float64 // daily close range position floor
	MaxRR     float64 // reward/risk ceiling
}

// DefaultThresholds mirrors the production screening gates.
var DefaultThresholds = Thresholds{
	MinPrice:     3.0,
	MinAvgVolume: 100_000,
	ATRPctMin:    0.2,
	ATRPctMax:    8.0,
}

// DefaultRules is ordered strictest tier first; the first rule whose
// conditions all hold wins.
var DefaultRules = []TierRule{
	{Tier: 3, MinReturn: 5, MinDCR: 60, MaxRR: 6},
	{Tier: 2, MinReturn: 3, MinDCR: 50, MaxRR: 8},
	{Tier: 1, MinReturn: 1, MinDCR: 40, MaxRR: 12},
}

// Eligible applies the pre-filter gates. Undefined metrics fail their gate:
// a value that cannot be read can never pass a hard eligibility check.
func Eligible(m *model.MetricSet, th Thresholds) bool {
	if m.Close < th.MinPrice {
		return false
	}
	if !m.AvgVol20.Valid || m.AvgVol20.Float64 < th.MinAvgVolume {
		return false
	}
	if !m.ATRPct.Valid || m.ATRPct.Float64 < th.ATRPctMin || m.ATRPct.Float64 > th.ATRPctMax {
		return false
	}
	return true
}

// Classify assigns the strictest qualifying tier, or ok=false when no rule
// matches or a required metric is undefined.
func Classify(m *model.MetricSet, rules []TierRule) (tier int, ok bool) {
	if !m.Return21.Valid || !m.DCR.Valid || !m.RR.Valid {
		return 0, false
	}
	for _, r := range rules {
		if m.Return21.Float64 >= r.MinReturn &&
			m.DCR.Float64 >= r.MinDCR &&
			m.RR.Float64 <= r.MaxRR {
			return r.Tier, true
		}
	}
	return 0, false
}

// Rank orders accepted tickers for display: tier descending, then
// 21-session return descending.
func Rank(results []model.Classified) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Tier != results[j].Tier {
			return results[i].Tier > results[j].Tier
		}
		return results[i].Metrics.Return21.Float64 > results[j].Metrics.Return21.Float64
	})
}
