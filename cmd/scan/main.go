// Command scan prints the current leadership table from stored data.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"LiquidLeaders/internal/classify"
	"LiquidLeaders/internal/config"
	"LiquidLeaders/internal/report"
	"LiquidLeaders/internal/screener"
	"LiquidLeaders/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()
	log.SetFlags(log.LstdFlags)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open bar store: %v", err)
	}
	defer st.Close()

	s := screener.New(st, screener.WithThresholds(classify.Thresholds{
		MinPrice:     cfg.Screener.MinPrice,
		MinAvgVolume: cfg.Screener.MinAvgVolume,
		ATRPctMin:    cfg.Screener.ATRPctMin,
		ATRPctMax:    cfg.Screener.ATRPctMax,
	}))

	// Positional args narrow the scan to specific tickers.
	results, err := s.Scan(context.Background(), flag.Args())
	if err != nil {
		log.Fatalf("[FATAL] scan: %v", err)
	}
	report.WriteScanTable(os.Stdout, results)
}
