// Package store persists daily bars. The stock_data table is the durable
// contract: presentation tooling reads it directly.
package store

import (
	"context"

	"LiquidLeaders/internal/model"
)

// BarStore is a durable keyed table of daily bars.
type BarStore interface {
	// Upsert insert-or-replaces one ticker's batch keyed by (ticker, date),
	// atomically: either every row lands or none do. Re-upserting identical
	// rows is a no-op in effect.
	Upsert(ctx context.Context, ticker string, bars []model.Bar) error

	// MaxDate returns the latest stored date for ticker, or ok=false when
	// no bars are stored.
	MaxDate(ctx context.Context, ticker string) (date string, ok bool, err error)

	// Range returns ticker's bars with date >= since, ascending by date.
	// An empty since returns the full series.
	Range(ctx context.Context, ticker, since string) ([]model.Bar, error)

	// Tickers returns the distinct tickers present in the store.
	Tickers(ctx context.Context) ([]string, error)

	// Clear deletes all stored bars. Used only by full-rebuild mode.
	Clear(ctx context.Context) error

	Close() error
}
