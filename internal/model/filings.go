package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Form501StatementWithdrawn is the CAL-ACCESS statement-type code for a
// withdrawal amendment on a Form 501.
const Form501StatementWithdrawn = "10003"

// Form501Filing is a raw candidate-intention statement. Read-only input to
// party and candidacy resolution.
type Form501Filing struct {
	FilingID      string     `json:"filing_id"`
	FilerID       string     `json:"filer_id"`
	Office        string     `json:"office"` // office type, e.g. "ASSEMBLY"
	District      *int       `json:"district,omitempty"`
	ElectionYear  int        `json:"election_year"`
	ElectionType  string     `json:"election_type"`
	Party         string     `json:"party"`
	LastName      string     `json:"last_name"`
	FirstName     string     `json:"first_name"`
	MiddleName    string     `json:"middle_name,omitempty"`
	Suffix        string     `json:"suffix,omitempty"`
	DateFiled     *time.Time `json:"date_filed,omitempty"`
	StatementType string     `json:"statement_type"`
}

// SortName builds the "{last}, {first}" form used for name matching.
// Pass withMiddle to include the middle name as a retry key.
func (f *Form501Filing) SortName(withMiddle bool) string {
	name := f.LastName + ", " + f.FirstName
	if withMiddle && f.MiddleName != "" {
		name += " " + f.MiddleName
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// IsWithdrawn reports whether this filing carries the withdrawal code.
func (f *Form501Filing) IsWithdrawn() bool {
	return f.StatementType == Form501StatementWithdrawn
}

// Form497Filing is a raw late-contribution report line, kept only for the
// flattened contributions export.
type Form497Filing struct {
	FilingID        string          `json:"filing_id"`
	LineItem        int             `json:"line_item"`
	FilerID         string          `json:"filer_id"`
	FilerName       string          `json:"filer_name"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate *time.Time      `json:"transaction_date,omitempty"`
	ContributorName string          `json:"contributor_name"`
}

// FilerPartySpan is one row of the filer-to-party history: the party a filer
// reported, effective from EffectiveDate until superseded by a later span.
type FilerPartySpan struct {
	FilerID       string    `json:"filer_id"`
	PartyName     string    `json:"party_name"`
	EffectiveDate time.Time `json:"effective_date"`
}
