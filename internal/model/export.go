package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlatCandidacy is the denormalized export row joining
// Candidacy→Person→Contest→Election→Post. A pure projection for downstream
// consumers; no additional logic hangs off it.
type FlatCandidacy struct {
	Name               string    `json:"name" csv:"name"`
	BallotName         string    `json:"ballot_name" csv:"ballot_name"`
	FilerID            string    `json:"filer_id,omitempty" csv:"filer_id"`
	Office             string    `json:"office" csv:"office"`
	ContestName        string    `json:"contest_name" csv:"contest_name"`
	ElectionName       string    `json:"election_name" csv:"election_name"`
	ElectionDate       time.Time `json:"election_date" csv:"election_date"`
	Party              string    `json:"party,omitempty" csv:"party"`
	IsIncumbent        bool      `json:"is_incumbent" csv:"is_incumbent"`
	RegistrationStatus string    `json:"registration_status" csv:"registration_status"`
	SpecialElection    bool      `json:"special_election" csv:"special_election"`
}

// FlatContribution is the denormalized late-contribution export row.
type FlatContribution struct {
	FilingID        string          `json:"filing_id" csv:"filing_id"`
	FilerID         string          `json:"filer_id" csv:"filer_id"`
	FilerName       string          `json:"filer_name" csv:"filer_name"`
	ContributorName string          `json:"contributor_name" csv:"contributor_name"`
	Amount          decimal.Decimal `json:"amount" csv:"amount"`
	TransactionDate string          `json:"transaction_date,omitempty" csv:"transaction_date"`
}
