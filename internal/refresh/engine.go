// Package refresh keeps the bar store in sync with the market-data
// provider. Tickers are fetched by a bounded worker pool; each ticker is
// its own unit of failure, and a batch always finishes with a summary
// rather than aborting on per-ticker errors.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"LiquidLeaders/internal/gateway"
	"LiquidLeaders/internal/model"
	"LiquidLeaders/internal/normalize"
	"LiquidLeaders/internal/store"
)

// InsufficientHistoryError marks a full-rebuild series shorter than the
// minimum row count. Nothing is upserted for the ticker: a too-short
// series would pollute every rolling-window computation downstream.
type InsufficientHistoryError struct {
	Ticker string
	Rows   int
	Min    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s: only %d rows (min %d)", e.Ticker, e.Rows, e.Min)
}

// Options tune a refresh batch. Zero values fall back to the defaults
// matching the production pipeline.
type Options struct {
	Workers      int // parallel fetchers
	MaxAttempts  int // fetch attempts per ticker
	LookbackDays int // cold-start / full-rebuild window
	MinRows      int // full-rebuild acceptance threshold
	OverlapDays  int // incremental refetch overlap for late corrections

	// Backoff returns the delay before retry attempt n (1-based).
	Backoff func(attempt int) time.Duration
}

func (o *Options) setDefaults() {
	if o.Workers <= 0 {
		o.Workers = 12
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.LookbackDays <= 0 {
		o.LookbackDays = 365
	}
	if o.MinRows <= 0 {
		o.MinRows = 200
	}
	if o.OverlapDays <= 0 {
		o.OverlapDays = 3
	}
	if o.Backoff == nil {
		o.Backoff = func(attempt int) time.Duration {
			return time.Duration(attempt) * 300 * time.Millisecond
		}
	}
}

// Engine coordinates refresh batches against one fetcher and one store.
type Engine struct {
	fetcher gateway.Fetcher
	store   store.BarStore
	opts    Options

	// OnResult, when set, is invoked after each ticker completes with the
	// running done count; CLIs hang progress bars off it.
	OnResult func(res model.RefreshResult, done, total int)

	// sleep is swapped out in tests so retry backoff takes no wall time.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates a refresh engine.
func NewEngine(fetcher gateway.Fetcher, st store.BarStore, opts Options) *Engine {
	opts.setDefaults()
	return &Engine{
		fetcher: fetcher,
		store:   st,
		opts:    opts,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// FullRebuild discards all stored bars and refetches the full lookback
// window for every ticker in the catalog. Setup failures (empty catalog,
// store clear) are fatal; per-ticker failures are collected in the summary.
func (e *Engine) FullRebuild(ctx context.Context, tickers []string) (*model.RefreshSummary, error) {
	if len(tickers) == 0 {
		return nil, errors.New("refresh: empty catalog")
	}
	if err := e.store.Clear(ctx); err != nil {
		return nil, fmt.Errorf("refresh: clear store: %w", err)
	}
	log.Printf("[INFO] full rebuild: %d tickers, %d workers", len(tickers), e.opts.Workers)
	return e.run(ctx, tickers, true), nil
}

// Incremental tops up every ticker with rows newer than its stored max
// date, or runs a cold-start fetch for tickers with no history.
func (e *Engine) Incremental(ctx context.Context, tickers []string) (*model.RefreshSummary, error) {
	if len(tickers) == 0 {
		return nil, errors.New("refresh: empty catalog")
	}
	log.Printf("[INFO] incremental refresh: %d tickers, %d workers", len(tickers), e.opts.Workers)
	return e.run(ctx, tickers, false), nil
}

func (e *Engine) run(ctx context.Context, tickers []string, full bool) *model.RefreshSummary {
	start := time.Now()

	tickerCh := make(chan string, len(tickers))
	for _, t := range tickers {
		tickerCh <- t
	}
	close(tickerCh)

	resultCh := make(chan model.RefreshResult, len(tickers))
	var wg sync.WaitGroup
	workers := e.opts.Workers
	if workers > len(tickers) {
		workers = len(tickers)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ticker := range tickerCh {
				// Cancellation stops launching new tickers; the in-flight
				// one finishes or fails on its own context error.
				if ctx.Err() != nil {
					resultCh <- model.RefreshResult{Ticker: ticker, Status: model.StatusFailed, Err: ctx.Err()}
					continue
				}
				if full {
					resultCh <- e.refreshFull(ctx, ticker)
				} else {
					resultCh <- e.RefreshTicker(ctx, ticker)
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	summary := &model.RefreshSummary{Attempted: len(tickers)}
	done := 0
	for res := range resultCh {
		done++
		switch res.Status {
		case model.StatusFailed:
			summary.Failed++
			summary.FailedTickers = append(summary.FailedTickers, res.Ticker)
			log.Printf("[WARN] %s failed: %v", res.Ticker, res.Err)
		default:
			summary.Succeeded++
		}
		if e.OnResult != nil {
			e.OnResult(res, done, len(tickers))
		}
	}
	summary.Duration = time.Since(start)
	log.Printf("[INFO] refresh complete: %d ok, %d failed in %s",
		summary.Succeeded, summary.Failed, summary.Duration.Round(time.Second))
	return summary
}

// refreshFull fetches the full lookback window and enforces the minimum
// row count before upserting.
func (e *Engine) refreshFull(ctx context.Context, ticker string) model.RefreshResult {
	raw, err := e.fetchWithRetry(ctx, func(ctx context.Context) (*gateway.RawTable, error) {
		return e.fetcher.FetchLookback(ctx, ticker, e.opts.LookbackDays)
	}, true)
	if err != nil {
		return failed(ticker, err)
	}

	bars, err := normalize.Rows(ticker, raw)
	if err != nil {
		return failed(ticker, err)
	}
	if len(bars) < e.opts.MinRows {
		return failed(ticker, &InsufficientHistoryError{Ticker: ticker, Rows: len(bars), Min: e.opts.MinRows})
	}
	if err := e.store.Upsert(ctx, ticker, bars); err != nil {
		return failed(ticker, err)
	}
	return model.RefreshResult{Ticker: ticker, Status: model.StatusOK, Rows: len(bars)}
}

// RefreshTicker runs the incremental path for one ticker: fetch from
// maxDate minus the overlap, keep only rows strictly newer than maxDate.
// The overlap absorbs provider-side late corrections; rows at or before
// maxDate are refetched but never re-upserted. No minimum-row gate applies
// here: even a single new day is a valid update.
func (e *Engine) RefreshTicker(ctx context.Context, ticker string) model.RefreshResult {
	maxDate, have, err := e.store.MaxDate(ctx, ticker)
	if err != nil {
		return failed(ticker, err)
	}

	var raw *gateway.RawTable
	if have {
		since, perr := time.Parse("2006-01-02", maxDate)
		if perr != nil {
			return failed(ticker, fmt.Errorf("bad stored max date %q: %w", maxDate, perr))
		}
		start := since.AddDate(0, 0, -e.opts.OverlapDays).Format("2006-01-02")
		raw, err = e.fetchWithRetry(ctx, func(ctx context.Context) (*gateway.RawTable, error) {
			return e.fetcher.FetchDaily(ctx, ticker, start)
		}, false)
	} else {
		// Cold start: no history yet, pull the full default window.
		raw, err = e.fetchWithRetry(ctx, func(ctx context.Context) (*gateway.RawTable, error) {
			return e.fetcher.FetchLookback(ctx, ticker, e.opts.LookbackDays)
		}, false)
	}
	if errors.Is(err, gateway.ErrNoData) {
		// Delisted, halted, or simply no new session yet.
		return model.RefreshResult{Ticker: ticker, Status: model.StatusNoData}
	}
	if err != nil {
		return failed(ticker, err)
	}

	bars, err := normalize.Rows(ticker, raw)
	if err != nil {
		return failed(ticker, err)
	}
	if have {
		fresh := bars[:0]
		for _, b := range bars {
			if b.Date > maxDate {
				fresh = append(fresh, b)
			}
		}
		bars = fresh
	}
	if len(bars) == 0 {
		return model.RefreshResult{Ticker: ticker, Status: model.StatusNoData}
	}
	if err := e.store.Upsert(ctx, ticker, bars); err != nil {
		return failed(ticker, err)
	}
	return model.RefreshResult{Ticker: ticker, Status: model.StatusOK, Rows: len(bars)}
}

// fetchWithRetry retries transient fetch failures with backoff. Empty
// results are retried only when retryEmpty is set (full rebuilds); the
// incremental path treats them as "nothing to do" straight away.
func (e *Engine) fetchWithRetry(ctx context.Context, fetch func(context.Context) (*gateway.RawTable, error), retryEmpty bool) (*gateway.RawTable, error) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.MaxAttempts; attempt++ {
		raw, err := fetch(ctx)
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, gateway.ErrNoData) && !retryEmpty {
			return nil, err
		}
		lastErr = err
		if attempt < e.opts.MaxAttempts {
			if serr := e.sleep(ctx, e.opts.Backoff(attempt)); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, lastErr
}

func failed(ticker string, err error) model.RefreshResult {
	return model.RefreshResult{Ticker: ticker, Status: model.StatusFailed, Err: err}
}
