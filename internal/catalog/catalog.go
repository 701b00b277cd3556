// Package catalog manages the flat list of tickers the screener tracks.
package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"
)

// Default is the fallback catalog used when no ticker file is available.
var Default = []string{
	"AAPL", "MSFT", "AMZN", "NVDA", "TSLA", "META", "GOOGL", "GOOG", "AMD", "INTC",
	"ADBE", "ORCL", "AVGO", "CRM", "NFLX", "CSCO", "QCOM", "TXN", "AMAT",
	"PEP", "KO", "WMT", "DIS", "PFE", "JNJ", "V", "MA", "BAC", "JPM", "WFC",
	"XOM", "CVX", "UNH", "HD", "COST", "MCD", "IBM", "PYPL", "MRK", "LLY",
	"ABBV", "CAT", "BA", "GE",
}

// Load reads a line-oriented ticker file: one symbol per line, trimmed,
// uppercased, deduplicated keeping first occurrence. A missing file is not
// fatal: it returns an empty catalog and os.ErrNotExist so the caller can
// decide whether to warn or fall back to Default.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("open ticker file: %w", err)
	}
	defer f.Close()

	var tickers []string
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		t := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tickers = append(tickers, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ticker file: %w", err)
	}
	return tickers, nil
}

// Save writes a sorted, deduplicated catalog file.
func Save(path string, tickers []string) error {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return os.WriteFile(path, []byte(strings.Join(out, "\n")+"\n"), 0644)
}

// FetchIndex downloads an index-constituent CSV and extracts the symbol
// column, matched case-insensitively against "symbol" or "ticker".
func FetchIndex(url string) ([]string, error) {
	client := &http.Client{Timeout: 20 * time.Second}
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index list: status %d", resp.StatusCode)
	}
	return parseSymbolColumn(resp.Body)
}

func parseSymbolColumn(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol", "ticker":
			col = i
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no symbol column in csv header %v", header)
	}

	var tickers []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if t := strings.ToUpper(strings.TrimSpace(rec[col])); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers, nil
}
