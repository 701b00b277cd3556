package model

import "time"

// RefreshStatus is the terminal state of one ticker within a refresh batch.
type RefreshStatus string

const (
	StatusOK     RefreshStatus = "OK"      // rows fetched and upserted
	StatusNoData RefreshStatus = "NO_DATA" // incremental: nothing new, not a failure
	StatusFailed RefreshStatus = "FAILED"
)

// RefreshResult is the outcome for a single ticker. Per-ticker errors are
// converted into results at the ticker boundary; they never propagate past
// the batch coordinator.
type RefreshResult struct {
	Ticker string
	Status RefreshStatus
	Rows   int // rows upserted
	Err    error
}

// RefreshSummary aggregates a whole batch.
type RefreshSummary struct {
	Attempted     int
	Succeeded     int
	Failed        int
	FailedTickers []string
	Duration      time.Duration
}
