// Command refresh runs a one-shot database refresh: a full rebuild with
// -full, or an incremental top-up by default.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"

	"LiquidLeaders/internal/cli"
	"LiquidLeaders/internal/config"
	"LiquidLeaders/internal/model"
	"LiquidLeaders/internal/refresh"
	"LiquidLeaders/internal/report"
	"LiquidLeaders/internal/store"
)

func main() {
	full := flag.Bool("full", false, "wipe the store and rebuild the full lookback window")
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

	fetcher := cli.NewFetcher(cfg)
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open bar store: %v", err)
	}
	defer st.Close()

	tickers, err := cli.LoadCatalog(cfg)
	if err != nil {
		log.Fatalf("[FATAL] load catalog: %v", err)
	}

	engine := refresh.NewEngine(fetcher, st, cli.EngineOptions(cfg))

	label := "Incremental"
	if *full {
		label = "FullRebuild"
	}
	pBar := progressbar.Default(int64(len(tickers)), label)
	engine.OnResult = func(_ model.RefreshResult, _, _ int) {
		_ = pBar.Add(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sum *model.RefreshSummary
	if *full {
		sum, err = engine.FullRebuild(ctx, tickers)
	} else {
		sum, err = engine.Incremental(ctx, tickers)
	}
	_ = pBar.Close()
	if err != nil {
		log.Fatalf("[FATAL] refresh: %v", err)
	}

	if *full {
		cp := refresh.Checkpoint{Path: cfg.Refresh.CheckpointFile}
		if err := cp.Write(time.Now()); err != nil {
			log.Printf("[ERROR] write checkpoint: %v", err)
		}
		if err := refresh.WriteFailed(cfg.Refresh.FailedFile, sum.FailedTickers); err != nil {
			log.Printf("[ERROR] write failure log: %v", err)
		}
	}

	fmt.Print(report.FormatSummary(sum))
	if sum.Failed > 0 {
		os.Exit(1)
	}
}
