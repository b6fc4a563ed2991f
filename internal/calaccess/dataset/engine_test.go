package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// syncStateStore stubs just the sync-state surface the engine touches.
type syncStateStore struct {
	store.Store
	states map[string]model.SyncState
}

func newSyncStateStore() *syncStateStore {
	return &syncStateStore{states: make(map[string]model.SyncState)}
}

func (s *syncStateStore) GetSyncState(_ context.Context, dataset string) (*model.SyncState, error) {
	st, ok := s.states[dataset]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *syncStateStore) RecordSyncState(_ context.Context, state model.SyncState) error {
	s.states[state.Dataset] = state
	return nil
}

// stubDataset counts its Sync invocations.
type stubDataset struct {
	name  string
	calls int
	rows  int64
	err   error
}

func (d *stubDataset) Name() string  { return d.name }
func (d *stubDataset) Table() string { return "raw_" + d.name }

func (d *stubDataset) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *stubDataset) Sync(context.Context, store.Store, fetcher.Fetcher, string) (*SyncResult, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &SyncResult{RowsSynced: d.rows}, nil
}

func stubEngine(st store.Store, datasets ...Dataset) *Engine {
	reg := &Registry{datasets: make(map[string]Dataset)}
	for _, d := range datasets {
		reg.Register(d)
	}
	return NewEngine(st, nil, reg, "")
}

func TestEngineRunRecordsState(t *testing.T) {
	st := newSyncStateStore()
	ds := &stubDataset{name: "alpha", rows: 7}
	eng := stubEngine(st, ds)

	stats, err := eng.Run(context.Background(), RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, int64(7), stats.Rows)
	assert.Equal(t, 1, ds.calls)

	recorded := st.states["alpha"]
	assert.Equal(t, SyncStatusOK, recorded.Status)
	assert.Equal(t, int64(7), recorded.RowsSynced)
	require.NotNil(t, recorded.LastSyncAt)
}

func TestEngineSkipsFreshDatasets(t *testing.T) {
	st := newSyncStateStore()
	recent := time.Now().UTC().Add(-time.Hour)
	st.states["alpha"] = model.SyncState{Dataset: "alpha", LastSyncAt: &recent, Status: SyncStatusOK}

	ds := &stubDataset{name: "alpha"}
	eng := stubEngine(st, ds)

	stats, err := eng.Run(context.Background(), RunOpts{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, ds.calls)

	// Force overrides the schedule.
	stats, err = eng.Run(context.Background(), RunOpts{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, 1, ds.calls)
}

func TestEngineFailureDoesNotAbortOthers(t *testing.T) {
	st := newSyncStateStore()
	bad := &stubDataset{name: "bad", err: eris.New("boom")}
	good := &stubDataset{name: "good", rows: 3}
	eng := stubEngine(st, bad, good)

	stats, err := eng.Run(context.Background(), RunOpts{})
	require.Error(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, 1, good.calls)

	assert.Equal(t, SyncStatusFailed, st.states["bad"].Status)
	assert.Contains(t, st.states["bad"].Error, "boom")
	assert.Equal(t, SyncStatusOK, st.states["good"].Status)
}

func TestEngineUnknownDataset(t *testing.T) {
	eng := stubEngine(newSyncStateStore(), &stubDataset{name: "alpha"})
	_, err := eng.Run(context.Background(), RunOpts{Datasets: []string{"zeta"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset")
}
