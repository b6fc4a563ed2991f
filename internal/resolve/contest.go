package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
)

// scrapedElectionOf reconstructs the scraped-election record denormalized
// onto a candidate, so contest resolution can reuse the election resolver.
func scrapedElectionOf(cand model.ScrapedCandidate) model.ScrapedElection {
	return model.ScrapedElection{
		ScrapedID: cand.ElectionScrapedID,
		Name:      cand.ElectionName,
		Date:      cand.ElectionDate,
		URL:       cand.URL,
		ScrapedAt: cand.ScrapedAt,
	}
}

// GetOrCreateContest builds or finds the canonical Contest a scraped
// candidate belongs to. Special elections fill an unexpired term and are
// never split by party; pre-2012 partisan primaries scope the contest to the
// candidate's resolved party; everything else (generals, top-two primaries,
// the Superintendent race) is a single unscoped contest per office.
func (r *Resolver) GetOrCreateContest(ctx context.Context, cand model.ScrapedCandidate) (*model.Contest, bool, error) {
	electionParts, err := parse.ElectionNameParts(cand.ElectionName)
	if err != nil {
		return nil, false, err
	}

	election, _, err := r.GetOrCreateElection(ctx, scrapedElectionOf(cand))
	if err != nil {
		return nil, false, err
	}

	post, _, err := r.GetOrCreatePost(ctx, cand.OfficeName)
	if err != nil {
		return nil, false, err
	}

	office := parse.OfficeParts(cand.OfficeName)
	officeLabel := strings.ToUpper(strings.TrimSpace(cand.OfficeName))

	var name, partyID string
	var previousTermUnexpired bool

	switch {
	case strings.Contains(electionParts.Type, "SPECIAL") || strings.Contains(electionParts.Type, "RECALL"):
		previousTermUnexpired = true
		name = fmt.Sprintf("%s (%s)", officeLabel, electionParts.Type)
	case electionParts.Year < topTwoPrimaryFirstYear &&
		strings.Contains(electionParts.Type, "PRIMARY") &&
		office.Type != superintendentOffice:
		resolution, err := r.ResolveParty(ctx, cand)
		if err != nil {
			return nil, false, err
		}
		partyID = resolution.Party.ID
		if resolution.Party.IsUnknown() {
			name = fmt.Sprintf("%s (UNKNOWN PARTY)", officeLabel)
		} else {
			name = fmt.Sprintf("%s (%s)", officeLabel, resolution.Party.Name)
		}
	default:
		name = officeLabel
	}

	contest, found, err := r.st.FindContest(ctx, election.ID, name, partyID, previousTermUnexpired)
	if err != nil {
		return nil, false, err
	}

	created := false
	if !found {
		contest = &model.Contest{
			ElectionID:            election.ID,
			PostID:                post.ID,
			PartyID:               partyID,
			Name:                  name,
			PreviousTermUnexpired: previousTermUnexpired,
		}
		if err := r.st.CreateContest(ctx, contest); err != nil {
			return nil, false, err
		}
		created = true
	}

	contest.UpsertSource(cand.URL, "last scraped on "+cand.ScrapedAt.Format("2006-01-02"))
	if err := r.st.UpdateContest(ctx, contest); err != nil {
		return nil, false, err
	}
	return contest, created, nil
}
