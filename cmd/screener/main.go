package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LiquidLeaders/internal/cli"
	"LiquidLeaders/internal/config"
	"LiquidLeaders/internal/refresh"
	"LiquidLeaders/internal/scheduler"
	"LiquidLeaders/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] LiquidLeaders starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher := cli.NewFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init bar store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open bar store: %v", err)
	}
	defer st.Close()

	// Init refresh engine
	engine := refresh.NewEngine(fetcher, st, cli.EngineOptions(cfg))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	cp := refresh.Checkpoint{Path: cfg.Refresh.CheckpointFile}
	maxAge := time.Duration(cfg.Refresh.MaxAgeHours) * time.Hour
	sched := scheduler.New(ctx, engine, cp, cfg.Refresh.FailedFile, maxAge, func() ([]string, error) {
		return cli.LoadCatalog(cfg)
	})
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing refresh now")
		go sched.RunNow()
	}

	log.Println("[INFO] LiquidLeaders is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] LiquidLeaders stopped")
}
