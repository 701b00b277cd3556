package gateway

import (
	"context"
	"sync"
	"time"
)

// MockFetcher returns controllable fixed data for development and testing.
// Responses are keyed by the symbol as the provider sees it (after
// CleanSymbol). A symbol with no entry yields ErrNoData.
type MockFetcher struct {
	mu     sync.Mutex
	Tables map[string]*RawTable
	Errs   map[string]error // takes precedence over Tables
	Calls  map[string]int   // fetch attempts per symbol
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Tables: make(map[string]*RawTable),
		Errs:   make(map[string]error),
		Calls:  make(map[string]int),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(_ context.Context, symbol, _ string) (*RawTable, error) {
	return m.lookup(symbol)
}

func (m *MockFetcher) FetchLookback(_ context.Context, symbol string, _ int) (*RawTable, error) {
	return m.lookup(symbol)
}

func (m *MockFetcher) lookup(symbol string) (*RawTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := CleanSymbol(symbol)
	m.Calls[key]++
	if err, ok := m.Errs[key]; ok {
		return nil, err
	}
	if t, ok := m.Tables[key]; ok && !t.Empty() {
		return t, nil
	}
	return nil, ErrNoData
}

// CallCount reports how many fetches were attempted for a symbol.
func (m *MockFetcher) CallCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[CleanSymbol(symbol)]
}

// GenerateTable builds a raw table of count synthetic daily bars ending at
// end, with a mild deterministic drift so trend-sensitive metrics have
// something to measure. drift is the per-bar fractional close change.
func GenerateTable(basePrice float64, count int, end time.Time, drift float64) *RawTable {
	table := &RawTable{
		Columns: []Column{Col("Date"), Col("Open"), Col("High"), Col("Low"), Col("Close"), Col("Volume")},
	}
	price := basePrice
	day := end.AddDate(0, 0, -count+1)
	for i := 0; i < count; i++ {
		// Skip weekends so dates resemble a trading calendar.
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		table.Rows = append(table.Rows, []any{
			day,
			price * 0.999,
			price * 1.006,
			price * 0.994,
			price,
			1_500_000.0,
		})
		price *= 1 + drift
		day = day.AddDate(0, 0, 1)
	}
	return table
}
