package resolve

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
)

// GetOrCreateCandidacy resolves a scraped candidate into a Candidacy within
// its Contest, creating the Person and Candidacy when no existing row
// matches. Matching is id-first: a filer-id hit on an existing candidacy's
// person wins outright; a name match is accepted only when unambiguous and
// not contradicted by a conflicting filer id. Re-running with the same input
// never creates duplicates.
func (r *Resolver) GetOrCreateCandidacy(ctx context.Context, cand model.ScrapedCandidate, status model.RegistrationStatus, filerID string) (*model.Candidacy, bool, error) {
	contest, _, err := r.GetOrCreateContest(ctx, cand)
	if err != nil {
		return nil, false, err
	}

	if filerID == "" {
		filerID = cand.ScrapedID
	}
	if status == "" {
		status = model.RegistrationFiled
	}

	rawName := strings.ToUpper(strings.TrimSpace(cand.Name))
	parsed := parse.PersonNameParts(cand.Name)

	existing, err := r.st.ListContestCandidacies(ctx, contest.ID)
	if err != nil {
		return nil, false, err
	}
	persons := make(map[string]*model.Person, len(existing))
	for _, c := range existing {
		p, err := r.st.GetPerson(ctx, c.PersonID)
		if err != nil {
			return nil, false, err
		}
		persons[c.PersonID] = p
	}

	candidacy, err := r.matchCandidacy(ctx, existing, persons, rawName, parsed, filerID, contest.ID)
	if err != nil {
		return nil, false, err
	}

	created := false
	if candidacy == nil {
		candidacy, err = r.createCandidacy(ctx, cand, contest, rawName, parsed, filerID, status)
		if err != nil {
			return nil, false, err
		}
		created = true
	} else if status != model.RegistrationFiled && candidacy.RegistrationStatus != status {
		candidacy.RegistrationStatus = status
		if err := r.st.UpdateCandidacy(ctx, candidacy); err != nil {
			return nil, false, err
		}
	}

	if err := r.syncPersonName(ctx, candidacy.PersonID); err != nil {
		return nil, false, err
	}
	return candidacy, created, nil
}

// matchCandidacy finds an existing candidacy for the scraped candidate
// within its contest, by filer id first and name second. A nil result with
// nil error means "no match, create".
func (r *Resolver) matchCandidacy(ctx context.Context, existing []model.Candidacy, persons map[string]*model.Person, rawName string, parsed parse.PersonName, filerID, contestID string) (*model.Candidacy, error) {
	// Filer-id match: the strongest signal. A name change on the same filer
	// id archives the old variant as an alias.
	if filerID != "" {
		for i := range existing {
			person := persons[existing[i].PersonID]
			if person.FilerID() != filerID {
				continue
			}
			if person.AddOtherName(parsed.Name, "from CAL-ACCESS scrape") {
				if err := r.st.UpdatePerson(ctx, person); err != nil {
					return nil, err
				}
			}
			return &existing[i], nil
		}
	}

	var matches []int
	for i := range existing {
		person := persons[existing[i].PersonID]
		if existing[i].BallotName == rawName || person.HasName(parsed.Name) {
			matches = append(matches, i)
		}
	}

	switch {
	case len(matches) == 0:
		return nil, nil
	case len(matches) > 1:
		if rawName == unresolvableBallotName {
			// Known data quirk: one candidate filed the same race under
			// three filer IDs. Left unmerged on purpose.
			r.log.Warn("skipping known unresolvable multi-match",
				zap.String("name", rawName),
				zap.String("contest_id", contestID))
			return nil, nil
		}
		return nil, &AmbiguousMatchError{Name: rawName, ContestID: contestID, Matches: len(matches)}
	}

	matched := &existing[matches[0]]
	person := persons[matched.PersonID]

	// A supplied filer id that contradicts the matched person's id means
	// two different people share a name; refuse to conflate them.
	if filerID != "" {
		if current := person.FilerID(); current != "" && current != filerID {
			return nil, nil
		}
		if person.AddIdentifier(model.SchemeCalaccessFilerID, filerID) {
			if err := r.st.UpdatePerson(ctx, person); err != nil {
				return nil, err
			}
		}
	}
	return matched, nil
}

// createCandidacy resolves or creates the Person and writes the new
// candidacy row. A person is matched only by filer id at creation time; a
// brand-new person is never merged by name alone.
func (r *Resolver) createCandidacy(ctx context.Context, cand model.ScrapedCandidate, contest *model.Contest, rawName string, parsed parse.PersonName, filerID string, status model.RegistrationStatus) (*model.Candidacy, error) {
	var person *model.Person
	if filerID != "" {
		p, found, err := r.st.FindPersonByFilerID(ctx, filerID)
		if err != nil {
			return nil, err
		}
		if found {
			person = p
			if person.AddOtherName(parsed.Name, "from CAL-ACCESS scrape") {
				if err := r.st.UpdatePerson(ctx, person); err != nil {
					return nil, err
				}
			}
		}
	}

	if person == nil {
		person = &model.Person{
			Name:       parsed.Name,
			SortName:   parsed.SortName,
			FamilyName: parsed.FamilyName,
			GivenName:  parsed.GivenName,
		}
		if filerID != "" {
			person.AddIdentifier(model.SchemeCalaccessFilerID, filerID)
		}
		if err := r.st.CreatePerson(ctx, person); err != nil {
			return nil, err
		}
	}

	resolution, err := r.ResolveParty(ctx, cand)
	if err != nil {
		return nil, err
	}

	candidacy := &model.Candidacy{
		ContestID:          contest.ID,
		PersonID:           person.ID,
		BallotName:         rawName,
		PostID:             contest.PostID,
		PartyID:            resolution.Party.ID,
		RegistrationStatus: status,
	}
	if err := r.st.CreateCandidacy(ctx, candidacy); err != nil {
		return nil, err
	}
	return candidacy, nil
}

// syncPersonName re-synchronizes a person's canonical name to the ballot
// name of their most recent candidacy, archiving the superseded name.
func (r *Resolver) syncPersonName(ctx context.Context, personID string) error {
	person, err := r.st.GetPerson(ctx, personID)
	if err != nil {
		return err
	}
	candidacies, err := r.st.ListPersonCandidacies(ctx, personID)
	if err != nil {
		return err
	}
	if len(candidacies) == 0 {
		return nil
	}

	latest := candidacies[0]
	for _, c := range candidacies[1:] {
		if c.ElectionDate.After(latest.ElectionDate) {
			latest = c
		}
	}

	parsed := parse.PersonNameParts(latest.BallotName)
	if parsed.Name == person.Name {
		return nil
	}

	person.AddOtherName(person.Name, "superseded canonical name")
	person.Name = parsed.Name
	person.SortName = parsed.SortName
	person.FamilyName = parsed.FamilyName
	person.GivenName = parsed.GivenName
	return r.st.UpdatePerson(ctx, person)
}

// ResolveCandidacies runs the orchestrator over every scraped candidate.
// Each record resolves independently; one failure is logged with the raw
// name, election, and source URL so the operator can add a correction, and
// the batch continues.
func (r *Resolver) ResolveCandidacies(ctx context.Context) (*Stats, error) {
	scraped, err := r.st.ListScrapedCandidates(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, sc := range scraped {
		stats.Processed++
		_, created, err := r.GetOrCreateCandidacy(ctx, sc, model.RegistrationQualified, "")
		if err != nil {
			stats.Failed++
			r.log.Error("candidacy resolution failed",
				zap.String("name", sc.Name),
				zap.String("election", sc.ElectionName),
				zap.String("url", sc.URL),
				zap.Error(err))
			continue
		}
		if created {
			stats.Created++
		}
	}

	r.log.Info("candidacy pass complete",
		zap.Int("processed", stats.Processed),
		zap.Int("created", stats.Created),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// LinkForm501Filings links candidate-intention statements onto existing
// candidacies, then refreshes filed date and withdrawal status from the
// linked filings.
func (r *Resolver) LinkForm501Filings(ctx context.Context) (*Stats, error) {
	candidacies, err := r.st.ListCandidacies(ctx)
	if err != nil {
		return nil, err
	}

	contests, err := indexByID(ctx, r.st.ListContests, func(c model.Contest) string { return c.ID })
	if err != nil {
		return nil, err
	}
	elections, err := indexByID(ctx, r.st.ListElections, func(e model.Election) string { return e.ID })
	if err != nil {
		return nil, err
	}
	posts, err := indexByID(ctx, r.st.ListPosts, func(p model.Post) string { return p.ID })
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for i := range candidacies {
		c := &candidacies[i]
		stats.Processed++

		contest, ok := contests[c.ContestID]
		if !ok {
			return nil, eris.Errorf("resolve: candidacy %s references missing contest %s", c.ID, c.ContestID)
		}
		election, ok := elections[contest.ElectionID]
		if !ok {
			return nil, eris.Errorf("resolve: contest %s references missing election %s", contest.ID, contest.ElectionID)
		}
		post, ok := posts[contest.PostID]
		if !ok {
			return nil, eris.Errorf("resolve: contest %s references missing post %s", contest.ID, contest.PostID)
		}
		person, err := r.st.GetPerson(ctx, c.PersonID)
		if err != nil {
			return nil, err
		}

		date := election.Date
		filing, found, err := r.FindForm501(ctx, model.ScrapedCandidate{
			Name:         c.BallotName,
			ScrapedID:    person.FilerID(),
			OfficeName:   post.Label,
			ElectionName: election.Name,
			ElectionDate: &date,
		})
		if err != nil {
			stats.Failed++
			r.log.Error("form501 lookup failed",
				zap.String("ballot_name", c.BallotName),
				zap.String("election", election.Name),
				zap.Error(err))
			continue
		}
		if !found {
			continue
		}

		if c.LinkForm501(filing.FilingID) {
			stats.Updated++
			r.log.Debug("linked form501",
				zap.String("ballot_name", c.BallotName),
				zap.String("filing_id", filing.FilingID))
		}
		if err := r.UpdateFromForm501(ctx, c); err != nil {
			return nil, err
		}
	}

	r.log.Info("form501 link pass complete",
		zap.Int("processed", stats.Processed),
		zap.Int("linked", stats.Updated),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// UpdateFromForm501 recomputes a candidacy's filed date and registration
// status from its linked filings: filed date is the earliest filing's date,
// and the candidacy is withdrawn when the most recently filed linked filing
// carries the withdrawal statement type.
func (r *Resolver) UpdateFromForm501(ctx context.Context, c *model.Candidacy) error {
	var filings []model.Form501Filing
	for _, id := range c.Form501FilingIDs {
		f, found, err := r.st.GetForm501Filing(ctx, id)
		if err != nil {
			return err
		}
		if found {
			filings = append(filings, *f)
		}
	}

	if len(filings) > 0 {
		earliest := filings[0]
		latest := filings[0]
		for _, f := range filings[1:] {
			if laterFiled(earliest, f) {
				earliest = f
			}
			if laterFiled(f, latest) {
				latest = f
			}
		}
		if earliest.DateFiled != nil {
			c.FiledDate = earliest.DateFiled
		}
		if latest.IsWithdrawn() {
			c.RegistrationStatus = model.RegistrationWithdrawn
		}
	}

	return r.st.UpdateCandidacy(ctx, c)
}

func indexByID[T any](ctx context.Context, list func(context.Context) ([]T, error), key func(T) string) (map[string]T, error) {
	items, err := list(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out, nil
}
