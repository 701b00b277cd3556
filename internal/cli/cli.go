// Package cli holds wiring shared by the command-line entry points:
// provider selection and the catalog-loading fallback policy.
package cli

import (
	"errors"
	"log"
	"os"

	"LiquidLeaders/internal/catalog"
	"LiquidLeaders/internal/config"
	"LiquidLeaders/internal/gateway"
	"LiquidLeaders/internal/refresh"
)

// NewFetcher builds the configured market-data fetcher.
func NewFetcher(cfg *config.Config) gateway.Fetcher {
	switch cfg.DataSource.Provider {
	case "stooq":
		return gateway.NewStooqFetcher(cfg.DataSource.BaseURL, cfg.Proxy)
	case "mock":
		return gateway.NewMockFetcher()
	default:
		f := gateway.NewYahooFetcher(cfg.Proxy)
		if cfg.DataSource.BaseURL != "" {
			f.BaseURL = cfg.DataSource.BaseURL
		}
		return f
	}
}

// EngineOptions maps refresh config onto engine options.
func EngineOptions(cfg *config.Config) refresh.Options {
	return refresh.Options{
		Workers:      cfg.Refresh.Workers,
		MaxAttempts:  cfg.Refresh.Retries,
		LookbackDays: cfg.Refresh.LookbackDays,
		MinRows:      cfg.Refresh.MinRows,
		OverlapDays:  cfg.Refresh.OverlapDays,
	}
}

// LoadCatalog resolves the ticker catalog: the configured file if present,
// else index constituents fetched from the configured source URL (saved
// back for next time), else the built-in default list.
func LoadCatalog(cfg *config.Config) ([]string, error) {
	if cfg.Catalog.File == "" {
		return catalog.Default, nil
	}
	tickers, err := catalog.Load(cfg.Catalog.File)
	if errors.Is(err, os.ErrNotExist) {
		if cfg.Catalog.SourceURL != "" {
			log.Printf("[INFO] catalog file %s missing, fetching index constituents", cfg.Catalog.File)
			fetched, ferr := catalog.FetchIndex(cfg.Catalog.SourceURL)
			if ferr == nil && len(fetched) > 0 {
				if serr := catalog.Save(cfg.Catalog.File, fetched); serr != nil {
					log.Printf("[WARN] save catalog: %v", serr)
				}
				return fetched, nil
			}
			log.Printf("[WARN] fetch index constituents: %v", ferr)
		}
		log.Printf("[WARN] catalog file %s missing, using built-in list", cfg.Catalog.File)
		return catalog.Default, nil
	}
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return catalog.Default, nil
	}
	return tickers, nil
}
