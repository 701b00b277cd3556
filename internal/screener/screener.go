// Package screener is the read-side facade: it joins stored bars with
// derived indicators and leadership classification, and is what dashboards
// and CLIs talk to instead of the store directly.
package screener

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"LiquidLeaders/internal/classify"
	"LiquidLeaders/internal/indicator"
	"LiquidLeaders/internal/model"
	"LiquidLeaders/internal/refresh"
	"LiquidLeaders/internal/store"
)

// Series is one ticker's chart payload: raw bars plus aligned overlays.
type Series struct {
	Ticker     string
	Bars       []model.Bar
	Indicators *indicator.SeriesIndicators
}

// Screener serves chart series and leadership scans from the bar store.
// The refresh engine is optional; when present, GetSeries tops the ticker
// up before reading so a dashboard always sees the latest session.
type Screener struct {
	store      store.BarStore
	engine     *refresh.Engine
	thresholds classify.Thresholds
	rules      []classify.TierRule

	// now is swapped out in tests so lookback windows are deterministic.
	now func() time.Time
}

// Option configures a Screener.
type Option func(*Screener)

// WithEngine enables incremental top-up on series reads.
func WithEngine(e *refresh.Engine) Option {
	return func(s *Screener) { s.engine = e }
}

// WithThresholds overrides the default eligibility gates.
func WithThresholds(th classify.Thresholds) Option {
	return func(s *Screener) { s.thresholds = th }
}

// WithRules overrides the default tier rules.
func WithRules(rules []classify.TierRule) Option {
	return func(s *Screener) { s.rules = rules }
}

// New creates a Screener over the given store.
func New(st store.BarStore, opts ...Option) *Screener {
	s := &Screener{
		store:      st,
		thresholds: classify.DefaultThresholds,
		rules:      classify.DefaultRules,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSeries returns the trailing lookbackDays of bars for a ticker with
// indicator overlays attached. When a refresh engine is wired in, the
// ticker is topped up incrementally first; a failed top-up degrades to
// serving stored data rather than failing the read.
func (s *Screener) GetSeries(ctx context.Context, ticker string, lookbackDays int) (*Series, error) {
	if lookbackDays <= 0 {
		lookbackDays = 365
	}
	if s.engine != nil {
		if res := s.engine.RefreshTicker(ctx, ticker); res.Status == model.StatusFailed {
			log.Printf("[WARN] %s: top-up failed, serving stored data: %v", ticker, res.Err)
		}
	}

	since := s.now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")
	bars, err := s.store.Range(ctx, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("screener: read %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("screener: no stored bars for %s", ticker)
	}

	return &Series{
		Ticker:     ticker,
		Bars:       bars,
		Indicators: indicator.Series(bars),
	}, nil
}

// Scan computes snapshot metrics for every ticker, applies the eligibility
// gates and tier rules, and returns the survivors ranked for display.
// Per-ticker failures are logged and skipped: one broken series must not
// sink a whole scan.
func (s *Screener) Scan(ctx context.Context, tickers []string) ([]model.Classified, error) {
	if len(tickers) == 0 {
		var err error
		tickers, err = s.store.Tickers(ctx)
		if err != nil {
			return nil, fmt.Errorf("screener: list tickers: %w", err)
		}
	}

	var results []model.Classified
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		bars, err := s.store.Range(ctx, ticker, "")
		if err != nil {
			log.Printf("[WARN] scan %s: read: %v", ticker, err)
			continue
		}
		m, err := indicator.Snapshot(bars)
		if err != nil {
			if !errors.Is(err, indicator.ErrInsufficientData) {
				log.Printf("[WARN] scan %s: metrics: %v", ticker, err)
			}
			continue
		}
		if !classify.Eligible(m, s.thresholds) {
			continue
		}
		tier, ok := classify.Classify(m, s.rules)
		if !ok {
			continue
		}
		results = append(results, model.Classified{Ticker: ticker, Tier: tier, Metrics: *m})
	}
	classify.Rank(results)
	return results, nil
}
