package model

import "time"

// PartyAttempt records a single strategy tried during party resolution.
type PartyAttempt struct {
	Strategy      string `json:"strategy"`
	Party         string `json:"party,omitempty"`
	Matched       bool   `json:"matched"`
	Justification string `json:"justification,omitempty"`
}

// PartyResolution is the auditable outcome of resolving a candidate's party:
// the winning party plus every attempt in priority order. Party assignment
// must be explainable, so the full trail is kept, not just the winner.
type PartyResolution struct {
	Party         *Party         `json:"party"`
	Strategy      string         `json:"strategy"`
	Justification string         `json:"justification"`
	Attempts      []PartyAttempt `json:"attempts"`
}

// SyncState is per-dataset bookkeeping for the raw-data load engine.
type SyncState struct {
	Dataset    string     `json:"dataset"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	RowsSynced int64      `json:"rows_synced"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
}
