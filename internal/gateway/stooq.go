package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// StooqFetcher implements Fetcher using the Stooq daily CSV endpoint. It is
// the fallback provider; its column shape differs from Yahoo's, which the
// normalizer reconciles.
type StooqFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewStooqFetcher creates a Stooq fetcher with optional proxy support.
func NewStooqFetcher(baseURL, proxyURL string) *StooqFetcher {
	if baseURL == "" {
		baseURL = "https://stooq.com"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &StooqFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

// FetchDaily returns daily rows from start (YYYY-MM-DD) through now.
func (f *StooqFetcher) FetchDaily(ctx context.Context, symbol, start string) (*RawTable, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("stooq: bad start date %q: %w", start, err)
	}
	return f.fetchCSV(ctx, symbol, from, time.Now())
}

// FetchLookback returns daily rows for the trailing number of calendar days.
func (f *StooqFetcher) FetchLookback(ctx context.Context, symbol string, days int) (*RawTable, error) {
	now := time.Now()
	return f.fetchCSV(ctx, symbol, now.AddDate(0, 0, -days), now)
}

func (f *StooqFetcher) fetchCSV(ctx context.Context, symbol string, from, to time.Time) (*RawTable, error) {
	// Stooq wants lowercase symbols with a .us suffix for U.S. equities.
	sym := strings.ToLower(CleanSymbol(symbol))
	if !strings.Contains(sym, ".") {
		sym += ".us"
	}
	u := fmt.Sprintf("%s/q/d/l/?s=%s&i=d&d1=%s&d2=%s",
		f.BaseURL, url.QueryEscape(sym), from.Format("20060102"), to.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stooq fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stooq: status %d", resp.StatusCode)
	}

	cr := csv.NewReader(resp.Body)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil || len(header) < 2 {
		// "No data" responses are a one-line message, not a CSV table.
		return nil, ErrNoData
	}

	table := &RawTable{Columns: make([]Column, len(header))}
	for i, name := range header {
		table.Columns[i] = Col(name)
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stooq csv: %w", err)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			if cell == "" || cell == "-" {
				row[i] = nil
			} else {
				row[i] = cell
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if table.Empty() {
		return nil, ErrNoData
	}
	return table, nil
}
