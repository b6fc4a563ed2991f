package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
)

// electionAdminOrg administers every statewide California election.
const electionAdminOrg = "California Secretary of State"

// misdatedRecallName is mis-dated on CAL-ACCESS itself: the site lists this
// recall under the wrong date, and its candidates actually appeared on the
// June 2008 primary ballot. Mapped by hand onto that election.
const misdatedRecallName = "2008 RECALL (STATE SENATE 12)"

// specialNameRe matches special-election names still carrying their office
// qualifier, e.g. "2015 SPECIAL ELECTION (STATE SENATE 07)".
var specialNameRe = regexp.MustCompile(`^\d{4} SPECIAL`)

// canonicalElectionName computes the canonical name for a scraped election.
// Both 2008 statewide primaries were scraped under the same "2008 PRIMARY"
// literal and are disambiguated by date; special elections keep their office
// qualifier until the merge rule in GetOrCreateElection drops it.
func canonicalElectionName(raw string, parts parse.ElectionName, date *time.Time) string {
	if date != nil {
		switch date.Format("2006-01-02") {
		case "2008-02-05":
			return "2008 PRESIDENTIAL PRIMARY AND SPECIAL ELECTIONS"
		case "2008-06-03":
			return "2008 PRIMARY"
		}
	}
	if parts.Office != "" {
		return strings.ToUpper(strings.TrimSpace(raw))
	}
	return fmt.Sprintf("%d %s", parts.Year, parts.Type)
}

// GetOrCreateElection maps a scraped election onto a canonical Election,
// creating one if absent. Scraped records sharing a real-world date collapse
// onto one row; an election that cannot be dated by the special calendar,
// the incumbent reference list, or the statutory date rule is a hard failure.
func (r *Resolver) GetOrCreateElection(ctx context.Context, scraped model.ScrapedElection) (*model.Election, bool, error) {
	parts, err := parse.ElectionNameParts(scraped.Name)
	if err != nil {
		return nil, false, err
	}

	name := canonicalElectionName(scraped.Name, parts, scraped.Date)

	var elec *model.Election
	var created bool

	if scraped.ScrapedID != "" {
		e, found, err := r.st.FindElectionByIdentifier(ctx, scraped.ScrapedID)
		if err != nil {
			return nil, false, err
		}
		if found {
			elec = e
		}
	}

	if elec == nil && strings.ToUpper(strings.TrimSpace(scraped.Name)) == misdatedRecallName {
		e, found, err := r.st.FindElectionByName(ctx, "2008 PRIMARY")
		if err != nil {
			return nil, false, err
		}
		if !found {
			return nil, false, eris.Errorf("resolve: %q maps onto the 2008 PRIMARY election, which does not exist yet", scraped.Name)
		}
		elec = e
	}

	if elec == nil {
		switch {
		case scraped.Date != nil:
			// A dated scrape is authoritative; the inference chain below
			// exists for the undated records.
			elec, created, err = r.getOrCreateElectionByDate(ctx, name, *scraped.Date)
		default:
			if date, ok := r.tables.SpecialElectionDate(name); ok {
				elec, created, err = r.getOrCreateElectionByDate(ctx, name, date)
			} else {
				elec, created, err = r.dateAndCreateElection(ctx, name, parts)
			}
		}
		if err != nil {
			return nil, false, err
		}
	}

	changed := elec.AddType(parts.Type)
	if elec.AddIdentifier(scraped.ScrapedID) {
		changed = true
	}
	if elec.UpsertSource(scraped.URL, "last scraped on "+scraped.ScrapedAt.Format("2006-01-02")) {
		changed = true
	}

	// Multiple special races on one date collapse onto one Election; once a
	// second identifier lands, the office qualifier no longer describes the
	// row and the name generalizes to the month.
	if specialNameRe.MatchString(elec.Name) && len(elec.Identifiers) >= 2 {
		merged := strings.ToUpper(elec.Date.Format("Jan 2006")) + " SPECIAL ELECTIONS"
		if elec.Name != merged {
			r.log.Info("merging special elections",
				zap.String("old_name", elec.Name),
				zap.String("new_name", merged))
			elec.Name = merged
			changed = true
		}
	}

	if changed || created {
		if err := r.st.UpdateElection(ctx, elec); err != nil {
			return nil, false, err
		}
	}
	return elec, created, nil
}

// dateAndCreateElection resolves an election that is not on the special
// calendar: by existing name, then by the incumbent reference list, then by
// the statutory election-day rule.
func (r *Resolver) dateAndCreateElection(ctx context.Context, name string, parts parse.ElectionName) (*model.Election, bool, error) {
	e, found, err := r.st.FindElectionByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if found {
		return e, false, nil
	}

	if date, ok := r.tables.IncumbentElectionDate(parts.Year, parts.Type); ok {
		return r.getOrCreateElectionByDate(ctx, name, date)
	}

	date, err := parse.GuessElectionDate(parts.Year, parts.Type)
	if err != nil {
		return nil, false, err
	}
	return r.getOrCreateElectionByDate(ctx, name, date)
}

// getOrCreateElectionByDate collapses onto an existing Election with the
// same date, or creates one.
func (r *Resolver) getOrCreateElectionByDate(ctx context.Context, name string, date time.Time) (*model.Election, bool, error) {
	e, found, err := r.st.FindElectionByDate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if found {
		return e, false, nil
	}

	e = &model.Election{
		Name:      name,
		Date:      date,
		AdminOrg:  electionAdminOrg,
		Statewide: true,
	}
	if err := r.st.CreateElection(ctx, e); err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// ResolveElections runs the election pass over every scraped election. A
// record that fails to resolve is logged with enough detail to add a
// correction, and the pass continues.
func (r *Resolver) ResolveElections(ctx context.Context) (*Stats, error) {
	scraped, err := r.st.ListScrapedElections(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, se := range scraped {
		stats.Processed++
		_, created, err := r.GetOrCreateElection(ctx, se)
		if err != nil {
			stats.Failed++
			r.log.Error("election resolution failed",
				zap.String("name", se.Name),
				zap.String("url", se.URL),
				zap.Error(err))
			continue
		}
		if created {
			stats.Created++
		}
	}

	r.log.Info("election pass complete",
		zap.Int("processed", stats.Processed),
		zap.Int("created", stats.Created),
		zap.Int("failed", stats.Failed))
	return stats, nil
}
