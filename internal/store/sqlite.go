package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"LiquidLeaders/internal/model"
)

var _ BarStore = (*SQLiteStore)(nil)

// SQLiteStore implements BarStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode: readers (the dashboard) are not blocked while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] bar store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_data (
			ticker TEXT,
			date   TEXT,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume REAL,
			PRIMARY KEY (ticker, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stock_ticker ON stock_data(ticker)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Upsert writes one ticker's batch in a single transaction. INSERT OR
// REPLACE keeps at most one row per (ticker, date); a later refresh may
// overwrite a bar with exchange-corrected values.
func (s *SQLiteStore) Upsert(ctx context.Context, ticker string, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO stock_data
		(ticker, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, ticker, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert %s %s: %w", ticker, b.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MaxDate(ctx context.Context, ticker string) (string, bool, error) {
	var date sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(date) FROM stock_data WHERE ticker = ?", ticker).Scan(&date)
	if err != nil {
		return "", false, fmt.Errorf("max date %s: %w", ticker, err)
	}
	if !date.Valid || date.String == "" {
		return "", false, nil
	}
	return date.String, true, nil
}

func (s *SQLiteStore) Range(ctx context.Context, ticker, since string) ([]model.Bar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, open, high, low, close, volume
		FROM stock_data
		WHERE ticker = ? AND date >= ?
		ORDER BY date ASC`, ticker, since)
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		b := model.Bar{Ticker: ticker}
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (s *SQLiteStore) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT ticker FROM stock_data ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM stock_data"); err != nil {
		return fmt.Errorf("clear stock_data: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
