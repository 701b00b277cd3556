package screener

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"LiquidLeaders/internal/model"
	"LiquidLeaders/internal/store"
)

func openTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedBars writes count ascending weekday bars ending at end, with closes
// drifting by drift per bar.
func seedBars(t *testing.T, st store.BarStore, ticker string, count int, end time.Time, base, drift, volume float64) []model.Bar {
	t.Helper()
	day := end
	var dates []string
	for len(dates) < count {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, day.Format("2006-01-02"))
		}
		day = day.AddDate(0, 0, -1)
	}
	bars := make([]model.Bar, count)
	price := base
	for i := count - 1; i >= 0; i-- {
		bars[i] = model.Bar{
			Ticker: ticker,
			Date:   dates[count-1-i],
			Open:   price * 0.999,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: volume,
		}
		price /= 1 + drift
	}
	if err := st.Upsert(context.Background(), ticker, bars); err != nil {
		t.Fatal(err)
	}
	return bars
}

func TestGetSeries_BarsAndOverlaysAligned(t *testing.T) {
	st := openTestStore(t)
	end := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	seedBars(t, st, "AAPL", 250, end, 180, 0.002, 2_000_000)

	s := New(st)
	s.now = func() time.Time { return end }

	series, err := s.GetSeries(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatal(err)
	}
	if len(series.Bars) != 250 {
		t.Fatalf("expected 250 bars, got %d", len(series.Bars))
	}
	ind := series.Indicators
	if ind == nil {
		t.Fatal("expected indicator overlays")
	}
	if len(ind.SMA200) != len(series.Bars) || len(ind.RSI14) != len(series.Bars) {
		t.Fatal("overlays must align index-for-index with bars")
	}
	if !math.IsNaN(ind.SMA200[100]) {
		t.Error("SMA200 must be NaN before its window fills")
	}
	if math.IsNaN(ind.SMA200[249]) || math.IsNaN(ind.ATR14[249]) {
		t.Error("latest bar must have defined overlays on a 250-bar series")
	}
}

func TestGetSeries_LookbackWindowTrimsHistory(t *testing.T) {
	st := openTestStore(t)
	end := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	seedBars(t, st, "AAPL", 250, end, 180, 0.002, 2_000_000)

	s := New(st)
	s.now = func() time.Time { return end }

	series, err := s.GetSeries(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(series.Bars) >= 250 {
		t.Fatalf("30-day lookback must trim the series, got %d bars", len(series.Bars))
	}
	since := end.AddDate(0, 0, -30).Format("2006-01-02")
	if series.Bars[0].Date < since {
		t.Errorf("first bar %s predates lookback window %s", series.Bars[0].Date, since)
	}
}

func TestGetSeries_UnknownTicker(t *testing.T) {
	s := New(openTestStore(t))
	if _, err := s.GetSeries(context.Background(), "NOPE", 365); err == nil {
		t.Fatal("expected error for ticker with no stored bars")
	}
}

func TestScan_RanksEligibleLeaders(t *testing.T) {
	st := openTestStore(t)
	end := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	// Strong uptrend with institutional volume: should classify.
	seedBars(t, st, "LEAD", 250, end, 50, 0.004, 2_000_000)
	// Liquid but flat: fails every tier's return floor.
	seedBars(t, st, "FLAT", 250, end, 50, 0, 2_000_000)
	// Uptrend but priced below the minimum-price gate.
	seedBars(t, st, "PENNY", 250, end, 1.5, 0.004, 2_000_000)
	// Uptrend on no volume: fails the liquidity gate.
	seedBars(t, st, "THIN", 250, end, 50, 0.004, 5_000)
	// Too little history for metrics at all.
	seedBars(t, st, "NEW", 30, end, 50, 0.004, 2_000_000)

	s := New(st)
	results, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Ticker != "LEAD" {
			t.Errorf("unexpected ticker in scan results: %s (tier %d)", r.Ticker, r.Tier)
		}
	}
	if len(results) != 1 {
		t.Fatalf("expected only LEAD to survive, got %d results", len(results))
	}
	if results[0].Tier < 1 || results[0].Tier > 3 {
		t.Errorf("tier out of range: %d", results[0].Tier)
	}
	if !results[0].Metrics.Return21.Valid || results[0].Metrics.Return21.Float64 <= 0 {
		t.Errorf("uptrend must show a positive 21-session return: %+v", results[0].Metrics.Return21)
	}
}

func TestScan_RankOrder(t *testing.T) {
	st := openTestStore(t)
	end := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	// Two leaders with different momentum: the stronger one ranks first.
	seedBars(t, st, "FAST", 250, end, 50, 0.005, 2_000_000)
	seedBars(t, st, "SLOW", 250, end, 50, 0.003, 2_000_000)

	s := New(st)
	results, err := s.Scan(context.Background(), []string{"SLOW", "FAST"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both leaders to classify, got %d", len(results))
	}
	if results[0].Tier == results[1].Tier {
		if results[0].Metrics.Return21.Float64 < results[1].Metrics.Return21.Float64 {
			t.Error("equal tiers must rank by return descending")
		}
	} else if results[0].Tier < results[1].Tier {
		t.Error("higher tier must rank first")
	}
	for i, r := range results {
		if r.Ticker == "" {
			t.Errorf("result %d missing ticker", i)
		}
	}
}

func TestScan_ExplicitTickerListRespected(t *testing.T) {
	st := openTestStore(t)
	end := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	seedBars(t, st, "LEAD", 250, end, 50, 0.004, 2_000_000)
	seedBars(t, st, "OTHER", 250, end, 50, 0.004, 2_000_000)

	s := New(st)
	results, err := s.Scan(context.Background(), []string{"LEAD"})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Ticker == "OTHER" {
			t.Fatal("scan must only consider the requested tickers")
		}
	}
}

func TestScan_EmptyStore(t *testing.T) {
	s := New(openTestStore(t))
	results, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("empty store must scan to an empty list, got %v", results)
	}
}
