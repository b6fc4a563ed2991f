// Package dataset downloads the raw CAL-ACCESS source datasets and loads
// them into the raw tables. Each dataset is self-contained: it knows its
// upstream source, its target table, and how to map source rows onto table
// columns. Loads are whole-batch upserts keyed on the natural key, so
// re-running a dataset is idempotent.
package dataset

import (
	"context"
	"time"

	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// defaultStaleness is how old a successful sync may be before the dataset
// is due again. Upstream publishes daily.
const defaultStaleness = 20 * time.Hour

// batchSize is the number of rows buffered before a flush to the store.
const batchSize = 5000

// SyncResult holds the outcome of a dataset sync.
type SyncResult struct {
	RowsSynced int64          `json:"rows_synced"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Dataset defines the interface each raw dataset implements.
type Dataset interface {
	// Name returns the unique identifier for this dataset (e.g., "form501").
	Name() string

	// Table returns the target raw table.
	Table() string

	// ShouldRun decides if this dataset needs syncing given the current
	// time and the time of the last successful sync (nil if never synced).
	ShouldRun(now time.Time, lastSync *time.Time) bool

	// Sync downloads, parses, and loads the dataset. tempDir is a working
	// directory for downloaded files.
	Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*SyncResult, error)
}

// stale reports whether lastSync is missing or older than defaultStaleness.
func stale(now time.Time, lastSync *time.Time) bool {
	return lastSync == nil || now.Sub(*lastSync) > defaultStaleness
}
