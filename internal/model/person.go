package model

import "time"

// SchemeCalaccessFilerID is the identifier scheme for CAL-ACCESS filer IDs.
const SchemeCalaccessFilerID = "calaccess_filer_id"

// Person is the stable identity of a human across name variants and filings.
// At most one Person exists per distinct calaccess_filer_id; name changes are
// additive (the superseded name is archived in OtherNames, never deleted).
type Person struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	SortName    string       `json:"sort_name"`
	FamilyName  string       `json:"family_name"`
	GivenName   string       `json:"given_name"`
	OtherNames  []OtherName  `json:"other_names,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// FilerID returns the person's CAL-ACCESS filer ID, or "" if none is linked.
func (p *Person) FilerID() string {
	for _, id := range p.Identifiers {
		if id.Scheme == SchemeCalaccessFilerID {
			return id.Value
		}
	}
	return ""
}

// AddIdentifier links an external identifier, deduplicating on (scheme, value).
// Returns true if the identifier was added.
func (p *Person) AddIdentifier(scheme, value string) bool {
	for _, id := range p.Identifiers {
		if id.Scheme == scheme && id.Value == value {
			return false
		}
	}
	p.Identifiers = append(p.Identifiers, Identifier{Scheme: scheme, Value: value})
	return true
}

// HasName reports whether name matches the person's current name or any of
// its archived other-names.
func (p *Person) HasName(name string) bool {
	if p.Name == name {
		return true
	}
	for _, on := range p.OtherNames {
		if on.Name == name {
			return true
		}
	}
	return false
}

// AddOtherName archives a name variant with a provenance note. The variant is
// skipped if it equals the current name or is already archived. Returns true
// if a row was added.
func (p *Person) AddOtherName(name, note string) bool {
	if name == "" || p.HasName(name) {
		return false
	}
	p.OtherNames = append(p.OtherNames, OtherName{Name: name, Note: note})
	return true
}
