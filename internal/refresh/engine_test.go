package refresh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"LiquidLeaders/internal/gateway"
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

// noSleep replaces backoff waits in tests.
func noSleep(_ context.Context, _ time.Duration) error { return nil }

func cols() []gateway.Column {
	return []gateway.Column{
		gateway.Col("Date"), gateway.Col("Open"), gateway.Col("High"),
		gateway.Col("Low"), gateway.Col("Close"), gateway.Col("Volume"),
	}
}

// tableFor builds a raw table with the given dates and deterministic prices.
func tableFor(dates []string, base float64) *gateway.RawTable {
	table := &gateway.RawTable{Columns: cols()}
	for i, d := range dates {
		c := base + float64(i)
		table.Rows = append(table.Rows, []any{d, c - 0.5, c + 1, c - 1, c, 1_000_000.0})
	}
	return table
}

// tradingDates generates n sequential weekday date strings starting at start.
func tradingDates(start string, n int) []string {
	day, _ := time.Parse("2006-01-02", start)
	var out []string
	for len(out) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, day.Format("2006-01-02"))
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func TestFullRebuild_SuccessAndPersistentEmpty(t *testing.T) {
	st := openTestStore(t)
	mock := gateway.NewMockFetcher()
	mock.Tables["AAPL"] = tableFor(tradingDates("2023-01-02", 300), 150)
	// ZZZZINVALID has no entry: every attempt yields ErrNoData.

	e := NewEngine(mock, st, Options{Workers: 2, MaxAttempts: 3, MinRows: 200})
	e.sleep = noSleep

	sum, err := e.FullRebuild(context.Background(), []string{"AAPL", "ZZZZINVALID"})
	if err != nil {
		t.Fatalf("FullRebuild: %v", err)
	}
	if sum.Succeeded != 1 || sum.Failed != 1 {
		t.Fatalf("expected 1 ok / 1 failed, got %d / %d", sum.Succeeded, sum.Failed)
	}
	if len(sum.FailedTickers) != 1 || sum.FailedTickers[0] != "ZZZZINVALID" {
		t.Errorf("expected failed list [ZZZZINVALID], got %v", sum.FailedTickers)
	}
	if got := mock.CallCount("ZZZZINVALID"); got != 3 {
		t.Errorf("full rebuild must retry empty results: expected 3 attempts, got %d", got)
	}

	tickers, _ := st.Tickers(context.Background())
	if len(tickers) != 1 || tickers[0] != "AAPL" {
		t.Errorf("store should contain exactly AAPL, got %v", tickers)
	}
	bars, _ := st.Range(context.Background(), "AAPL", "")
	if len(bars) != 300 {
		t.Errorf("expected 300 stored rows, got %d", len(bars))
	}
}

func TestFullRebuild_MinRowsEnforced(t *testing.T) {
	st := openTestStore(t)
	mock := gateway.NewMockFetcher()
	mock.Tables["SHORT"] = tableFor(tradingDates("2024-01-02", 150), 20)

	e := NewEngine(mock, st, Options{Workers: 1, MaxAttempts: 1, MinRows: 200})
	e.sleep = noSleep

	sum, err := e.FullRebuild(context.Background(), []string{"SHORT"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 {
		t.Fatalf("expected short series to fail, got %+v", sum)
	}
	bars, _ := st.Range(context.Background(), "SHORT", "")
	if len(bars) != 0 {
		t.Errorf("no partial upsert allowed for insufficient history, found %d rows", len(bars))
	}
}

func TestFullRebuild_EmptyCatalogFatal(t *testing.T) {
	e := NewEngine(gateway.NewMockFetcher(), openTestStore(t), Options{})
	if _, err := e.FullRebuild(context.Background(), nil); err == nil {
		t.Fatal("empty catalog must be a fatal setup failure")
	}
}

// startCapture wraps a fetcher and records the start date of daily fetches.
type startCapture struct {
	*gateway.MockFetcher
	start string
}

func (s *startCapture) FetchDaily(ctx context.Context, symbol, start string) (*gateway.RawTable, error) {
	s.start = start
	return s.MockFetcher.FetchDaily(ctx, symbol, start)
}

func TestIncremental_OverlapAndStrictlyNewerFilter(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	// Stored history through 2024-01-10.
	stored := []model.Bar{
		{Ticker: "AAPL", Date: "2024-01-08", Open: 1, High: 2, Low: 0.5, Close: 100, Volume: 10},
		{Ticker: "AAPL", Date: "2024-01-09", Open: 1, High: 2, Low: 0.5, Close: 101, Volume: 10},
		{Ticker: "AAPL", Date: "2024-01-10", Open: 1, High: 2, Low: 0.5, Close: 102, Volume: 10},
	}
	if err := st.Upsert(ctx, "AAPL", stored); err != nil {
		t.Fatal(err)
	}

	// Provider returns the 3-day overlap plus two new sessions, with
	// different values for the overlap days.
	fetched := tableFor([]string{
		"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12",
	}, 500)
	mock := gateway.NewMockFetcher()
	mock.Tables["AAPL"] = fetched
	capture := &startCapture{MockFetcher: mock}

	e := NewEngine(capture, st, Options{Workers: 1, OverlapDays: 3})
	e.sleep = noSleep

	sum, err := e.Incremental(ctx, []string{"AAPL"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Succeeded != 1 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if capture.start != "2024-01-07" {
		t.Errorf("expected fetch start maxDate-3d = 2024-01-07, got %s", capture.start)
	}

	bars, _ := st.Range(ctx, "AAPL", "")
	if len(bars) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(bars))
	}
	// Pre-existing rows are untouched: the strictly-newer filter keeps the
	// overlap fetch from re-upserting them.
	for i, want := range []float64{100, 101, 102} {
		if bars[i].Close != want {
			t.Errorf("stored row %s changed: close %.1f, want %.1f", bars[i].Date, bars[i].Close, want)
		}
	}
	if bars[3].Date != "2024-01-11" || bars[4].Date != "2024-01-12" {
		t.Errorf("expected new rows for 01-11 and 01-12, got %s %s", bars[3].Date, bars[4].Date)
	}
}

func TestIncremental_SingleNewDayAccepted(t *testing.T) {
	// Incremental mode has no minimum-row gate: one new session is valid.
	st := openTestStore(t)
	ctx := context.Background()
	st.Upsert(ctx, "AAPL", []model.Bar{
		{Ticker: "AAPL", Date: "2024-01-10", Open: 1, High: 2, Low: 0.5, Close: 102, Volume: 10},
	})

	mock := gateway.NewMockFetcher()
	mock.Tables["AAPL"] = tableFor([]string{"2024-01-10", "2024-01-11"}, 200)

	e := NewEngine(mock, st, Options{Workers: 1, MinRows: 200})
	e.sleep = noSleep
	res := e.RefreshTicker(ctx, "AAPL")
	if res.Status != model.StatusOK || res.Rows != 1 {
		t.Fatalf("expected 1 accepted row, got %+v", res)
	}
}

func TestIncremental_EmptyNotRetried(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	st.Upsert(ctx, "AAPL", []model.Bar{
		{Ticker: "AAPL", Date: "2024-01-10", Open: 1, High: 2, Low: 0.5, Close: 102, Volume: 10},
	})

	mock := gateway.NewMockFetcher() // no table: ErrNoData
	e := NewEngine(mock, st, Options{Workers: 1, MaxAttempts: 3})
	e.sleep = noSleep

	res := e.RefreshTicker(ctx, "AAPL")
	if res.Status != model.StatusNoData {
		t.Fatalf("expected NO_DATA, got %+v", res)
	}
	if got := mock.CallCount("AAPL"); got != 1 {
		t.Errorf("incremental empty results must not be retried, got %d attempts", got)
	}

	sum, err := e.Incremental(ctx, []string{"AAPL"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Succeeded != 1 || sum.Failed != 0 {
		t.Errorf("NO_DATA counts as success, got %+v", sum)
	}
}

// flakyFetcher fails a fixed number of times before delegating.
type flakyFetcher struct {
	*gateway.MockFetcher
	failures int
	calls    int
}

func (f *flakyFetcher) FetchLookback(ctx context.Context, symbol string, days int) (*gateway.RawTable, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("provider timeout (attempt %d)", f.calls)
	}
	return f.MockFetcher.FetchLookback(ctx, symbol, days)
}

func TestFullRebuild_TransientFailuresRetried(t *testing.T) {
	st := openTestStore(t)
	mock := gateway.NewMockFetcher()
	mock.Tables["AAPL"] = tableFor(tradingDates("2023-01-02", 250), 150)
	flaky := &flakyFetcher{MockFetcher: mock, failures: 2}

	var delays []time.Duration
	e := NewEngine(flaky, st, Options{Workers: 1, MaxAttempts: 3, MinRows: 200})
	e.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	sum, err := e.FullRebuild(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Succeeded != 1 {
		t.Fatalf("expected success after retries, got %+v", sum)
	}
	if flaky.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", flaky.calls)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 backoff sleeps, got %d", len(delays))
	}
}

func TestFullRebuild_NormalizationFailureNotRetried(t *testing.T) {
	st := openTestStore(t)
	mock := gateway.NewMockFetcher()
	// Table missing the Close column: fetch succeeds, normalize fails.
	mock.Tables["BAD"] = &gateway.RawTable{
		Columns: []gateway.Column{
			gateway.Col("Date"), gateway.Col("Open"), gateway.Col("High"),
			gateway.Col("Low"), gateway.Col("Volume"),
		},
		Rows: [][]any{{"2024-01-02", 1.0, 2.0, 0.5, 100.0}},
	}

	e := NewEngine(mock, st, Options{Workers: 1, MaxAttempts: 3})
	e.sleep = noSleep

	sum, err := e.FullRebuild(context.Background(), []string{"BAD"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 {
		t.Fatalf("expected normalization failure, got %+v", sum)
	}
	if got := mock.CallCount("BAD"); got != 1 {
		t.Errorf("shape errors are not retryable: expected 1 fetch, got %d", got)
	}
}

func TestCancellation_StopsLaunchingNewWork(t *testing.T) {
	st := openTestStore(t)
	mock := gateway.NewMockFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(mock, st, Options{Workers: 1})
	e.sleep = noSleep
	sum, err := e.Incremental(ctx, []string{"A", "B", "C"})
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 3 {
		t.Fatalf("cancelled batch should fail remaining tickers, got %+v", sum)
	}
	if got := mock.CallCount("A") + mock.CallCount("B") + mock.CallCount("C"); got != 0 {
		t.Errorf("no fetches should launch after cancellation, got %d", got)
	}
}

func TestCheckpoint(t *testing.T) {
	cp := Checkpoint{Path: filepath.Join(t.TempDir(), "last_refresh.txt")}

	if !cp.Stale(time.Hour) {
		t.Error("missing checkpoint must be stale")
	}
	if _, ok, err := cp.Read(); err != nil || ok {
		t.Errorf("missing checkpoint: ok=%v err=%v", ok, err)
	}

	now := time.Now()
	if err := cp.Write(now); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cp.Read()
	if err != nil || !ok {
		t.Fatalf("read checkpoint: ok=%v err=%v", ok, err)
	}
	if got.Unix() != now.Unix() {
		t.Errorf("round-trip mismatch: %v vs %v", got, now)
	}
	if cp.Stale(time.Hour) {
		t.Error("fresh checkpoint must not be stale")
	}
	if !cp.Stale(0) {
		t.Error("zero max age means always stale")
	}
}

func TestWriteFailed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_tickers.txt")
	if err := WriteFailed(path, []string{"ZZZZINVALID", "BADCO"}); err != nil {
		t.Fatal(err)
	}
	// Overwritten, not appended: a clean run leaves an empty file.
	if err := WriteFailed(path, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty failure log after clean run, got %q", data)
	}
}
