// Package normalize converts raw provider tables into canonical bar rows.
// Provider output is messy: multi-level column headers, arbitrary header
// casing, null cells, timezone-laden dates. Everything downstream assumes
// the canonical shape, so all of that is reconciled here.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"LiquidLeaders/internal/gateway"
	"LiquidLeaders/internal/model"
)

// Error indicates raw rows could not be reshaped into canonical bars.
// It is never retried: refetching will not fix the shape.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "normalize: " + e.Reason }

var fields = []string{"date", "open", "high", "low", "close", "volume"}

// Rows converts a raw provider table into canonical bars for ticker. The
// six required fields are selected by case-insensitive match on the
// outermost header level; a missing field fails the whole table. Rows with
// a null in any field are dropped. Output is sorted ascending by date with
// duplicate dates collapsed (last occurrence wins).
func Rows(ticker string, raw *gateway.RawTable) ([]model.Bar, error) {
	if raw == nil {
		return nil, &Error{Reason: "nil table"}
	}

	idx := make(map[string]int, len(fields))
	for i, col := range raw.Columns {
		if len(col.Levels) == 0 {
			continue
		}
		// Multi-level headers flatten to the outermost level.
		name := strings.ToLower(strings.TrimSpace(col.Levels[0]))
		for _, f := range fields {
			if name == f {
				if _, dup := idx[f]; !dup {
					idx[f] = i
				}
			}
		}
	}
	for _, f := range fields {
		if _, ok := idx[f]; !ok {
			return nil, &Error{Reason: fmt.Sprintf("missing column %q", f)}
		}
	}

	byDate := make(map[string]model.Bar)
	for _, row := range raw.Rows {
		cell := func(f string) any {
			i := idx[f]
			if i >= len(row) {
				return nil
			}
			return row[i]
		}

		date, ok := coerceDate(cell("date"))
		if !ok {
			continue
		}
		open, ok1 := coerceFloat(cell("open"))
		high, ok2 := coerceFloat(cell("high"))
		low, ok3 := coerceFloat(cell("low"))
		closep, ok4 := coerceFloat(cell("close"))
		volume, ok5 := coerceFloat(cell("volume"))
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			continue
		}

		byDate[date] = model.Bar{
			Ticker: ticker,
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closep,
			Volume: volume,
		}
	}

	bars := make([]model.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	model.SortBars(bars)
	return bars, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"20060102",
}

// coerceDate reduces any provider date representation to a calendar-day
// string, so key equality is deterministic regardless of source timezone.
func coerceDate(v any) (string, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02"), true
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("2006-01-02"), true
			}
		}
		return "", false
	case int64:
		return epochDate(d), true
	case int:
		return epochDate(int64(d)), true
	case float64:
		return epochDate(int64(d)), true
	default:
		return "", false
	}
}

func epochDate(v int64) string {
	// Millisecond epochs are 13 digits for any modern date.
	if v > 1e12 {
		v /= 1000
	}
	return time.Unix(v, 0).UTC().Format("2006-01-02")
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
