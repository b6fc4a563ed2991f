package model

import "time"

// RegistrationStatus tracks where a candidacy stands in the filing process.
type RegistrationStatus string

const (
	RegistrationFiled        RegistrationStatus = "filed"
	RegistrationQualified    RegistrationStatus = "qualified"
	RegistrationQuestionable RegistrationStatus = "questionable"
	RegistrationWithdrawn    RegistrationStatus = "withdrawn"
	RegistrationWriteIn      RegistrationStatus = "write-in"
)

// Candidacy is a Person's bid for one Contest. At most one Candidacy exists
// per (Contest, Person); matching is attempted by filer-id identifier first,
// then by name equality against the person's name and aliases.
type Candidacy struct {
	ID                 string             `json:"id"`
	ContestID          string             `json:"contest_id"`
	PersonID           string             `json:"person_id"`
	BallotName         string             `json:"ballot_name"`
	PostID             string             `json:"post_id,omitempty"`
	PartyID            string             `json:"party_id,omitempty"`
	FiledDate          *time.Time         `json:"filed_date,omitempty"`
	IsIncumbent        bool               `json:"is_incumbent,omitempty"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`

	// Form501FilingIDs is the extensible id-list of linked Form 501 filings.
	Form501FilingIDs []string `json:"form501_filing_ids,omitempty"`

	// ElectionDate is denormalized from the contest's election on reads so
	// the person-name re-sync can order candidacies without extra lookups.
	ElectionDate time.Time `json:"election_date,omitempty"`
}

// HasForm501 reports whether a Form 501 filing ID is already linked.
func (c *Candidacy) HasForm501(filingID string) bool {
	for _, id := range c.Form501FilingIDs {
		if id == filingID {
			return true
		}
	}
	return false
}

// LinkForm501 appends a Form 501 filing ID, deduplicating by ID.
// Returns true if added.
func (c *Candidacy) LinkForm501(filingID string) bool {
	if filingID == "" || c.HasForm501(filingID) {
		return false
	}
	c.Form501FilingIDs = append(c.Form501FilingIDs, filingID)
	return true
}
