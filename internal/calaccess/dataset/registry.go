package dataset

import (
	"github.com/rotisserie/eris"

	"github.com/california-civic-data/calaccess-processed/internal/config"
)

// Registry maps dataset names to their implementations.
type Registry struct {
	datasets map[string]Dataset
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates a registry populated with every raw dataset.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		datasets: make(map[string]Dataset),
	}

	// Scrape snapshots of the CAL-ACCESS site.
	r.Register(&ScrapedElections{sources: cfg.Sources})
	r.Register(&ScrapedCandidates{sources: cfg.Sources})
	r.Register(&ScrapedPropositions{sources: cfg.Sources})

	// Bulk filing extracts.
	r.Register(&Form501{sources: cfg.Sources})
	r.Register(&Form497{sources: cfg.Sources})

	// Filer-to-party history.
	r.Register(&FilerPartySpans{sources: cfg.Sources})

	return r
}

// Register adds a dataset to the registry.
func (r *Registry) Register(d Dataset) {
	name := d.Name()
	r.datasets[name] = d
	r.order = append(r.order, name)
}

// Get returns a dataset by name.
func (r *Registry) Get(name string) (Dataset, error) {
	d, ok := r.datasets[name]
	if !ok {
		return nil, eris.Errorf("dataset: unknown dataset %q", name)
	}
	return d, nil
}

// Select returns the named datasets, or all datasets when names is empty.
func (r *Registry) Select(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	var result []Dataset
	for _, name := range names {
		d, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

// All returns all datasets in registration order.
func (r *Registry) All() []Dataset {
	result := make([]Dataset, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.datasets[name])
	}
	return result
}

// AllNames returns all registered dataset names in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
