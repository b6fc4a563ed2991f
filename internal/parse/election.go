package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Error is a fatal parse failure: the raw string is unusable downstream and
// must be repaired at the source (or via a correction table), not defaulted.
type Error struct {
	Input  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse: %s: %q", e.Reason, e.Input)
}

// electionRe extracts a leading 4-digit year, an alphabetic type phrase, and
// an optional parenthetical "(OFFICE[DISTRICT])" qualifier, e.g.
// "2013 SPECIAL ELECTION (ASSEMBLY 54)".
var electionRe = regexp.MustCompile(`^(\d{4})\s+([A-Z ]+?)(?:\s*\(([A-Z ]+?)\s*(\d{1,3})?\))?$`)

// ElectionName holds the parsed components of a scraped election name.
type ElectionName struct {
	Year     int    `json:"year"`
	Type     string `json:"type"`
	Office   string `json:"office,omitempty"`
	District *int   `json:"district,omitempty"`
}

// ElectionNameParts parses a scraped election name. Failure to extract the
// leading year and type phrase returns a *parse.Error: this is scrape
// corruption the operator must fix, not something to default around.
func ElectionNameParts(raw string) (ElectionName, error) {
	m := electionRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return ElectionName{}, &Error{Input: raw, Reason: "election name missing year/type"}
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return ElectionName{}, &Error{Input: raw, Reason: "election name year not numeric"}
	}

	e := ElectionName{
		Year:   year,
		Type:   strings.TrimSpace(m[2]),
		Office: strings.TrimSpace(m[3]),
	}
	if m[4] != "" {
		d, err := strconv.Atoi(m[4])
		if err == nil {
			e.District = &d
		}
	}
	return e, nil
}

// GuessElectionDate computes the statutory date for a regular statewide
// election: primaries fall in June, generals in November, both on the first
// Tuesday after the first Monday. Odd years and unrecognized types are
// errors, since regular statewide elections only happen in even years.
func GuessElectionDate(year int, electionType string) (time.Time, error) {
	if year%2 != 0 {
		return time.Time{}, &Error{
			Input:  fmt.Sprintf("%d %s", year, electionType),
			Reason: "no regular statewide election in an odd year",
		}
	}

	var month time.Month
	switch {
	case strings.Contains(electionType, "PRIMARY"):
		month = time.June
	case strings.Contains(electionType, "GENERAL"):
		month = time.November
	default:
		return time.Time{}, &Error{
			Input:  fmt.Sprintf("%d %s", year, electionType),
			Reason: "cannot guess a date for this election type",
		}
	}

	return ElectionDay(year, month), nil
}

// ElectionDay returns the first Tuesday after the first Monday of the given
// month, the standard US election-day rule.
func ElectionDay(year int, month time.Month) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 1)
}
