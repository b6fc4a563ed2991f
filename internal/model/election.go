package model

import "time"

// SchemeCalaccessElectionID is the identifier scheme linking scraped election
// IDs onto canonical elections. Many scraped IDs may map to one Election.
const SchemeCalaccessElectionID = "calaccess_election_id"

// Election is a decision event. Its name is canonically "{year} {TYPE}"
// except for two special-cased 2008 literals, and distinct scraped records
// for the same real-world date collapse onto one row. The Types bag holds
// every CAL-ACCESS election-type label that has been merged in.
type Election struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Date        time.Time    `json:"date"`
	AdminOrg    string       `json:"administrative_organization"`
	Statewide   bool         `json:"statewide"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
	Sources     []Source     `json:"sources,omitempty"`
	Types       []string     `json:"calaccess_election_types,omitempty"`
}

// HasType reports whether a CAL-ACCESS election-type label has been merged in.
func (e *Election) HasType(t string) bool {
	for _, existing := range e.Types {
		if existing == t {
			return true
		}
	}
	return false
}

// AddType appends an election-type label if not already present.
// Returns true if added.
func (e *Election) AddType(t string) bool {
	if t == "" || e.HasType(t) {
		return false
	}
	e.Types = append(e.Types, t)
	return true
}

// HasIdentifier reports whether the scraped election ID is already linked.
func (e *Election) HasIdentifier(value string) bool {
	for _, id := range e.Identifiers {
		if id.Scheme == SchemeCalaccessElectionID && id.Value == value {
			return true
		}
	}
	return false
}

// AddIdentifier links a scraped election ID. Returns true if added.
func (e *Election) AddIdentifier(value string) bool {
	if value == "" || e.HasIdentifier(value) {
		return false
	}
	e.Identifiers = append(e.Identifiers, Identifier{Scheme: SchemeCalaccessElectionID, Value: value})
	return true
}

// UpsertSource records a provenance citation, updating the note in place if
// the URL is already cited. Returns true if a new citation was added.
func (e *Election) UpsertSource(url, note string) bool {
	var added bool
	e.Sources, added = upsertSource(e.Sources, url, note)
	return added
}
