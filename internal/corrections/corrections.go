// Package corrections holds the manually curated exception tables the
// resolvers consult before automatic inference: party corrections, the known
// special-election calendar, incumbent-election dates, and the blacklist of
// incumbent dates excluded from lookups. Tables are versioned YAML, embedded
// by default and overridable from disk, and every lookup takes the table as
// an explicit receiver so tests can swap corrections freely.
package corrections

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed data/corrections.yaml
var embedded []byte

// ErrAmbiguousCorrection is returned when more than one correction row
// matches a lookup. Duplicate corrections are a data-integrity bug in the
// table itself and must never be silently resolved.
var ErrAmbiguousCorrection = eris.New("corrections: multiple correction rows match")

// Date is a calendar date parsed from "YYYY-MM-DD" in YAML.
type Date struct {
	time.Time
}

// UnmarshalYAML parses a YYYY-MM-DD scalar.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return eris.Wrapf(err, "corrections: bad date %q", value.Value)
	}
	d.Time = t
	return nil
}

// PartyCorrection is one manually curated (candidate, year, type, office) →
// party override.
type PartyCorrection struct {
	CandidateName string `yaml:"candidate_name"`
	Year          int    `yaml:"year"`
	ElectionType  string `yaml:"election_type"`
	Office        string `yaml:"office"`
	Party         string `yaml:"party"`
}

// SpecialElection maps a scraped special-election name to its known date.
type SpecialElection struct {
	Name string `yaml:"name"`
	Date Date   `yaml:"date"`
}

// IncumbentElection is a reference election an incumbent was elected in,
// used as a date source when a scraped election cannot be dated directly.
type IncumbentElection struct {
	Name string `yaml:"name"`
	Date Date   `yaml:"date"`
}

// Tables is the full set of loaded correction tables. Order is significant
// for party corrections: lookups scan in file order.
type Tables struct {
	Version            string              `yaml:"version"`
	PartyCorrections   []PartyCorrection   `yaml:"party_corrections"`
	SpecialElections   []SpecialElection   `yaml:"special_elections"`
	IncumbentElections []IncumbentElection `yaml:"incumbent_elections"`
	DateBlacklist      []Date              `yaml:"incumbent_date_blacklist"`
}

// Load parses the embedded default tables, or the YAML file at path when
// path is non-empty.
func Load(path string) (*Tables, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "corrections: read %s", path)
		}
		raw = b
	}

	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, eris.Wrap(err, "corrections: unmarshal tables")
	}
	return &t, nil
}

// PartyCorrection returns the manually corrected party for an exact
// (candidate name, year, election type, office) match. A miss returns
// ("", false, nil); the caller falls through to automatic inference.
// More than one match is fatal.
func (t *Tables) PartyCorrection(candidateName string, year int, electionType, office string) (string, bool, error) {
	var party string
	var matches int
	for _, c := range t.PartyCorrections {
		if c.CandidateName == candidateName && c.Year == year && c.ElectionType == electionType && c.Office == office {
			party = c.Party
			matches++
		}
	}

	switch matches {
	case 0:
		return "", false, nil
	case 1:
		return party, true, nil
	default:
		return "", false, eris.Wrap(ErrAmbiguousCorrection,
			fmt.Sprintf("%s / %d / %s / %s", candidateName, year, electionType, office))
	}
}

// SpecialElectionDate returns the known date for a scraped special-election
// name, if the calendar has one.
func (t *Tables) SpecialElectionDate(name string) (time.Time, bool) {
	for _, s := range t.SpecialElections {
		if s.Name == name {
			return s.Date.Time, true
		}
	}
	return time.Time{}, false
}

// IncumbentElectionDate returns the date of the first incumbent election in
// the given year whose name contains typeSub, skipping blacklisted dates.
func (t *Tables) IncumbentElectionDate(year int, typeSub string) (time.Time, bool) {
	for _, e := range t.IncumbentElections {
		if e.Date.Year() != year {
			continue
		}
		if typeSub != "" && !strings.Contains(e.Name, typeSub) {
			continue
		}
		if t.dateBlacklisted(e.Date.Time) {
			continue
		}
		return e.Date.Time, true
	}
	return time.Time{}, false
}

func (t *Tables) dateBlacklisted(d time.Time) bool {
	for _, b := range t.DateBlacklist {
		if b.Time.Equal(d) {
			return true
		}
	}
	return false
}
