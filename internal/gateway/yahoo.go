package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client  *http.Client
	BaseURL string // overridable for tests
}

// NewYahooFetcher creates a Yahoo Finance fetcher with optional proxy support.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily returns daily rows from start (YYYY-MM-DD) through now.
func (f *YahooFetcher) FetchDaily(ctx context.Context, symbol, start string) (*RawTable, error) {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return nil, fmt.Errorf("yahoo: bad start date %q: %w", start, err)
	}
	query := fmt.Sprintf("interval=1d&period1=%d&period2=%d", from.Unix(), time.Now().Unix())
	return f.fetchChart(ctx, symbol, query)
}

// FetchLookback returns daily rows for the trailing number of calendar days.
func (f *YahooFetcher) FetchLookback(ctx context.Context, symbol string, days int) (*RawTable, error) {
	// Yahoo range buckets; max "2y" for daily interval.
	rng := "2y"
	switch {
	case days <= 30:
		rng = "1mo"
	case days <= 90:
		rng = "3mo"
	case days <= 180:
		rng = "6mo"
	case days <= 365:
		rng = "1y"
	}
	return f.fetchChart(ctx, symbol, "interval=1d&range="+rng)
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, query string) (*RawTable, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		f.BaseURL, url.PathEscape(CleanSymbol(symbol)), query)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	table := &RawTable{
		Columns: []Column{Col("Date"), Col("Open"), Col("High"), Col("Low"), Col("Close"), Col("Volume")},
		Rows:    make([][]any, 0, len(result.Timestamp)),
	}
	at := func(s []any, i int) any {
		if i < len(s) {
			return s[i]
		}
		return nil
	}
	for i, ts := range result.Timestamp {
		table.Rows = append(table.Rows, []any{
			time.Unix(ts, 0).UTC(),
			at(quote.Open, i),
			at(quote.High, i),
			at(quote.Low, i),
			at(quote.Close, i),
			at(quote.Volume, i),
		})
	}
	return table, nil
}
