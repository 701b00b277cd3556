package refresh

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Checkpoint records the timestamp of the last successful full refresh in
// a single-line ISO-8601 file. Only the full-refresh path writes it.
type Checkpoint struct {
	Path string
}

// Read returns the recorded timestamp. A missing file is not an error:
// ok=false means no full refresh has completed yet.
func (c Checkpoint) Read() (t time.Time, ok bool, err error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read checkpoint: %w", err)
	}
	t, err = time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return t, true, nil
}

// Write records t as the last successful full refresh.
func (c Checkpoint) Write(t time.Time) error {
	return os.WriteFile(c.Path, []byte(t.Format(time.RFC3339)+"\n"), 0644)
}

// Stale reports whether a full refresh is due: no readable checkpoint, or
// one older than maxAge. An unparseable checkpoint counts as stale rather
// than silently skipping refreshes forever.
func (c Checkpoint) Stale(maxAge time.Duration) bool {
	t, ok, err := c.Read()
	if err != nil || !ok {
		return true
	}
	return time.Since(t) >= maxAge
}

// WriteFailed overwrites the failure log with one ticker per line. It is
// rewritten at the end of every full refresh, including an empty file when
// nothing failed.
func WriteFailed(path string, tickers []string) error {
	var b strings.Builder
	for _, t := range tickers {
		b.WriteString(t)
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}
