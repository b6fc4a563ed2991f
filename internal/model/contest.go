package model

// Contest is a decided race for a Post within one Election, optionally scoped
// to one Party (pre-2012 partisan primaries) and flagged when it fills an
// unexpired term (special elections). Uniqueness key:
// (election, name, party, previous_term_unexpired).
type Contest struct {
	ID                    string   `json:"id"`
	ElectionID            string   `json:"election_id"`
	PostID                string   `json:"post_id"`
	PartyID               string   `json:"party_id,omitempty"` // "" = not party-scoped
	Name                  string   `json:"name"`
	PreviousTermUnexpired bool     `json:"previous_term_unexpired"`
	RunoffForContestID    string   `json:"runoff_for_contest_id,omitempty"`
	Sources               []Source `json:"sources,omitempty"`
}

// UpsertSource records a provenance citation, updating the note in place if
// the URL is already cited. Returns true if a new citation was added.
func (c *Contest) UpsertSource(url, note string) bool {
	var added bool
	c.Sources, added = upsertSource(c.Sources, url, note)
	return added
}
