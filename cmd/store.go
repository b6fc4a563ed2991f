package main

import (
	"context"

	"github.com/california-civic-data/calaccess-processed/internal/corrections"
	"github.com/california-civic-data/calaccess-processed/internal/resolve"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// openStore opens the configured backend. Callers own the Close.
func openStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store)
}

// newResolver builds a Resolver with the configured correction tables.
func newResolver(st store.Store) (*resolve.Resolver, error) {
	tables, err := corrections.Load(cfg.Corrections.Path)
	if err != nil {
		return nil, err
	}
	return resolve.New(st, tables, cfg.Resolve), nil
}
