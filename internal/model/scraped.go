package model

import "time"

// ScrapedElection is a raw election row from the CAL-ACCESS site scrape.
// Append-only: the resolvers read these, never mutate them.
type ScrapedElection struct {
	ScrapedID string     `json:"scraped_id"` // CAL-ACCESS election id; may be empty
	Name      string     `json:"name"`       // e.g. "2016 PRIMARY"
	Date      *time.Time `json:"date,omitempty"`
	SortIndex int        `json:"sort_index"`
	URL       string     `json:"url"`
	ScrapedAt time.Time  `json:"scraped_at"`
}

// ScrapedCandidate is a raw candidate row from the CAL-ACCESS site scrape.
// Election fields are denormalized from the owning ScrapedElection on reads.
type ScrapedCandidate struct {
	Name       string `json:"name"`        // e.g. "SMITH, JOHN A. JR."
	ScrapedID  string `json:"scraped_id"`  // CAL-ACCESS filer id; may be empty
	OfficeName string `json:"office_name"` // e.g. "ASSEMBLY 75"

	ElectionName      string     `json:"election_name"`
	ElectionScrapedID string     `json:"election_scraped_id"`
	ElectionDate      *time.Time `json:"election_date,omitempty"`

	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// ScrapedProposition is a raw ballot-measure row from the CAL-ACCESS scrape.
type ScrapedProposition struct {
	Name         string    `json:"name"`
	ScrapedID    string    `json:"scraped_id"`
	ElectionName string    `json:"election_name"`
	URL          string    `json:"url"`
	ScrapedAt    time.Time `json:"scraped_at"`
}
