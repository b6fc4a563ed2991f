package dataset

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// Sync status values recorded per dataset.
const (
	SyncStatusOK     = "ok"
	SyncStatusFailed = "failed"
)

// Engine orchestrates dataset sync runs. Datasets are independent of one
// another, so they fan out concurrently; each dataset's own load stays
// sequential.
type Engine struct {
	store   store.Store
	fetcher fetcher.Fetcher
	reg     *Registry
	tempDir string
}

// RunOpts configures which datasets to sync and how.
type RunOpts struct {
	Datasets []string // restrict to specific dataset names
	Force    bool     // ignore ShouldRun() scheduling
}

// RunStats summarizes an engine run.
type RunStats struct {
	Synced  int
	Skipped int
	Failed  int
	Rows    int64
}

// NewEngine creates a sync engine.
func NewEngine(st store.Store, f fetcher.Fetcher, reg *Registry, tempDir string) *Engine {
	return &Engine{
		store:   st,
		fetcher: f,
		reg:     reg,
		tempDir: tempDir,
	}
}

// Run syncs the selected datasets concurrently, recording per-dataset sync
// state. A failing dataset is recorded and counted but does not abort the
// others.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (*RunStats, error) {
	log := zap.L().With(zap.String("component", "dataset.engine"))
	now := time.Now().UTC()

	datasets, err := e.reg.Select(opts.Datasets)
	if err != nil {
		return nil, err
	}
	if len(datasets) == 0 {
		log.Info("no datasets selected")
		return &RunStats{}, nil
	}

	log.Info("selected datasets", zap.Int("count", len(datasets)))

	var synced, skipped, failed atomic.Int64
	var rows atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, ds := range datasets {
		ds := ds
		g.Go(func() error {
			dsLog := log.With(zap.String("dataset", ds.Name()))

			if !opts.Force {
				state, err := e.store.GetSyncState(gctx, ds.Name())
				if err != nil {
					return eris.Wrapf(err, "engine: check sync state for %s", ds.Name())
				}
				var lastSync *time.Time
				if state != nil && state.Status == SyncStatusOK {
					lastSync = state.LastSyncAt
				}
				if !ds.ShouldRun(now, lastSync) {
					dsLog.Debug("skipping (not due)")
					skipped.Add(1)
					return nil
				}
			}

			dsLog.Info("starting sync")
			start := time.Now()
			result, err := ds.Sync(gctx, e.store, e.fetcher, e.tempDir)
			elapsed := time.Since(start)

			syncedAt := time.Now().UTC()
			if err != nil {
				dsLog.Error("sync failed", zap.Error(err), zap.Duration("elapsed", elapsed))
				failed.Add(1)
				if recErr := e.store.RecordSyncState(gctx, model.SyncState{
					Dataset:    ds.Name(),
					LastSyncAt: &syncedAt,
					Status:     SyncStatusFailed,
					Error:      err.Error(),
				}); recErr != nil {
					dsLog.Error("failed to record sync failure", zap.Error(recErr))
				}
				return nil
			}

			if recErr := e.store.RecordSyncState(gctx, model.SyncState{
				Dataset:    ds.Name(),
				LastSyncAt: &syncedAt,
				RowsSynced: result.RowsSynced,
				Status:     SyncStatusOK,
			}); recErr != nil {
				dsLog.Error("failed to record sync completion", zap.Error(recErr))
			}

			dsLog.Info("sync complete",
				zap.Int64("rows", result.RowsSynced),
				zap.Duration("elapsed", elapsed),
			)
			synced.Add(1)
			rows.Add(result.RowsSynced)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &RunStats{
		Synced:  int(synced.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
		Rows:    rows.Load(),
	}
	log.Info("run finished",
		zap.Int("synced", stats.Synced),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int64("rows", stats.Rows),
	)
	if stats.Failed > 0 {
		return stats, eris.Errorf("engine: %d dataset(s) failed", stats.Failed)
	}
	return stats, nil
}
