// Package model defines the canonical civic-data entities (persons, parties,
// posts, elections, contests, candidacies) and the raw CAL-ACCESS source
// records the resolvers read from.
package model

// Identifier is an external-scheme identifier attached to a canonical record,
// e.g. scheme "calaccess_filer_id" → "1234567".
type Identifier struct {
	Scheme string `json:"scheme"`
	Value  string `json:"value"`
}

// OtherName is a historical or alternate name for a record, tagged with a
// provenance note describing where the variant was observed.
type OtherName struct {
	Name string `json:"name"`
	Note string `json:"note,omitempty"`
}

// Source is a provenance citation: the URL a record was derived from plus a
// free-text note (typically "last scraped on YYYY-MM-DD").
type Source struct {
	URL  string `json:"url"`
	Note string `json:"note,omitempty"`
}

// upsertSource updates the note of an existing citation with the same URL, or
// appends a new one. Returns the updated slice and whether a row was added.
func upsertSource(sources []Source, url, note string) ([]Source, bool) {
	for i := range sources {
		if sources[i].URL == url {
			sources[i].Note = note
			return sources, false
		}
	}
	return append(sources, Source{URL: url, Note: note}), true
}
