// Package resolve implements the candidate/election entity-resolution
// engine: the passes that turn raw scraped records and Form 501 filings into
// the canonical Person, Party, Post, Election, Contest, and Candidacy graph.
// Every get-or-create operation is idempotent, so the whole batch is safe to
// re-run after adding a manual correction.
package resolve

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/config"
	"github.com/california-civic-data/calaccess-processed/internal/corrections"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// topTwoPrimaryFirstYear is the first year California's top-two ("jungle")
// primary format applied. Before it, primaries were partisan and contests
// were scoped per party. This is a fact of state law, not a tunable.
const topTwoPrimaryFirstYear = 2012

// superintendentOffice is non-partisan by law: its candidates always resolve
// to NO PARTY PREFERENCE and its primaries are never split by party.
const superintendentOffice = "SUPERINTENDENT OF PUBLIC INSTRUCTION"

// unresolvableBallotName is a documented historical data quirk: this
// candidate filed under three different filer IDs for the same race, so
// multiple within-contest name matches for it are intentionally left
// unmerged instead of being treated as ambiguous.
const unresolvableBallotName = "MC NEA, DOUGLAS A."

// AmbiguousMatchError is returned when more than one existing candidacy in a
// contest matches a scraped candidate. Identity must never be guessed; the
// fix is a manual correction row and a re-run.
type AmbiguousMatchError struct {
	Name      string
	ContestID string
	Matches   int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("resolve: %d candidacies match %q in contest %s", e.Matches, e.Name, e.ContestID)
}

// Stats summarizes one resolution pass. Failed counts records whose
// resolution aborted; failures never roll back the rest of the batch.
type Stats struct {
	Processed int
	Created   int
	Updated   int
	Failed    int
}

// Resolver runs the resolution passes against one store, consulting the
// loaded correction tables before any automatic inference.
type Resolver struct {
	st     store.Store
	tables *corrections.Tables
	cfg    config.ResolveConfig
	log    *zap.Logger
}

// New creates a Resolver.
func New(st store.Store, tables *corrections.Tables, cfg config.ResolveConfig) *Resolver {
	return &Resolver{
		st:     st,
		tables: tables,
		cfg:    cfg,
		log:    zap.L().With(zap.String("component", "resolve")),
	}
}
