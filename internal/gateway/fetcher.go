// Package gateway abstracts the third-party market-data provider. A
// fetcher is a pure query: it returns raw daily rows for a symbol, signals
// absence with ErrNoData, or fails with a retryable transport error.
package gateway

import (
	"context"
	"errors"
	"strings"
)

// ErrNoData indicates the provider returned no rows for the requested
// range. The ticker may be delisted or halted; callers treat this as "no
// update available", not as a transport failure.
var ErrNoData = errors.New("gateway: no data returned")

// Fetcher fetches raw daily bars from a market-data provider.
type Fetcher interface {
	// FetchDaily returns daily rows from start (inclusive, YYYY-MM-DD)
	// through the present.
	FetchDaily(ctx context.Context, symbol, start string) (*RawTable, error)

	// FetchLookback returns daily rows for the trailing number of calendar
	// days, used for cold starts and full rebuilds.
	FetchLookback(ctx context.Context, symbol string, days int) (*RawTable, error)

	Name() string
}

// Column is one raw column header. Providers may emit multi-level headers;
// only the outermost level identifies the field.
type Column struct {
	Levels []string
}

// Col builds a single-level column header.
func Col(name string) Column { return Column{Levels: []string{name}} }

// RawTable is provider output before normalization: column headers plus
// row-major cells. Cell values are untyped; nil marks a null.
type RawTable struct {
	Columns []Column
	Rows    [][]any
}

// Empty reports whether the table carries no rows.
func (t *RawTable) Empty() bool { return t == nil || len(t.Rows) == 0 }

// CleanSymbol translates an exchange-suffix ticker into the provider
// convention, e.g. BRK.B -> BRK-B.
func CleanSymbol(symbol string) string {
	return strings.ReplaceAll(strings.TrimSpace(symbol), ".", "-")
}
