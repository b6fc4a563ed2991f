package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/model"
)

func TestGetOrCreateCandidacyIdempotent(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	cand := scrapedCandidate("QUIRK, BILL", "1385153", "ASSEMBLY 24", "2016 PRIMARY", &date)

	candidacy, created, err := r.GetOrCreateCandidacy(ctx, cand, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "QUIRK, BILL", candidacy.BallotName)
	require.Equal(t, model.RegistrationQualified, candidacy.RegistrationStatus)

	again, created, err := r.GetOrCreateCandidacy(ctx, cand, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, candidacy.ID, again.ID)

	all, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	person, err := st.GetPerson(ctx, candidacy.PersonID)
	require.NoError(t, err)
	require.Equal(t, "BILL QUIRK", person.Name)
	require.Equal(t, "1385153", person.FilerID())
	require.Empty(t, person.OtherNames)
}

func TestGetOrCreateCandidacyFilerMatchArchivesNameVariant(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	first := scrapedCandidate("JONES, BRIAN", "1381347", "ASSEMBLY 71", "2016 PRIMARY", &date)
	_, created, err := r.GetOrCreateCandidacy(ctx, first, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.True(t, created)

	// Same filer id, new name spelling: matches, and the variant is
	// archived as an alias.
	variant := scrapedCandidate("JONES, BRIAN W.", "1381347", "ASSEMBLY 71", "2016 PRIMARY", &date)
	candidacy, created, err := r.GetOrCreateCandidacy(ctx, variant, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.False(t, created)

	person, err := st.GetPerson(ctx, candidacy.PersonID)
	require.NoError(t, err)
	require.True(t, person.HasName("BRIAN W. JONES"))

	all, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestGetOrCreateCandidacyConflictingFilerIDIsNotMerged(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	cand := scrapedCandidate("SMITH, JOHN", "1000001", "ASSEMBLY 30", "2016 PRIMARY", &date)
	_, created, err := r.GetOrCreateCandidacy(ctx, cand, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.True(t, created)

	// Same name, different filer id: two different people, never conflated.
	other := scrapedCandidate("SMITH, JOHN", "1000002", "ASSEMBLY 30", "2016 PRIMARY", &date)
	_, created, err = r.GetOrCreateCandidacy(ctx, other, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.True(t, created)

	all, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetOrCreateCandidacyAmbiguousNameMatch(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	_, _, err := r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("SMITH, JOHN", "1000001", "ASSEMBLY 30", "2016 PRIMARY", &date),
		model.RegistrationQualified, "")
	require.NoError(t, err)
	_, _, err = r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("SMITH, JOHN", "1000002", "ASSEMBLY 30", "2016 PRIMARY", &date),
		model.RegistrationQualified, "")
	require.NoError(t, err)

	// No filer id to disambiguate: refuse to guess.
	_, _, err = r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("SMITH, JOHN", "", "ASSEMBLY 30", "2016 PRIMARY", &date),
		model.RegistrationQualified, "")
	var ambiguous *AmbiguousMatchError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, 2, ambiguous.Matches)
}

func TestGetOrCreateCandidacyKnownUnresolvableName(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	// This candidate filed the same race under multiple filer IDs; the
	// multi-match is intentionally left unmerged instead of raising.
	date := mustDate(t, "2010-06-08")
	for _, filerID := range []string{"1320001", "1320002", "1320003"} {
		_, _, err := r.GetOrCreateCandidacy(ctx,
			scrapedCandidate("MC NEA, DOUGLAS A.", filerID, "ASSEMBLY 05", "2010 PRIMARY", &date),
			model.RegistrationQualified, "")
		require.NoError(t, err)
	}

	all, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGetOrCreateCandidacyStatusUpdate(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	cand := scrapedCandidate("QUIRK, BILL", "1385153", "ASSEMBLY 24", "2016 PRIMARY", &date)

	candidacy, _, err := r.GetOrCreateCandidacy(ctx, cand, model.RegistrationQualified, "")
	require.NoError(t, err)
	require.Equal(t, model.RegistrationQualified, candidacy.RegistrationStatus)

	candidacy, created, err := r.GetOrCreateCandidacy(ctx, cand, model.RegistrationWriteIn, "")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, model.RegistrationWriteIn, candidacy.RegistrationStatus)
}

func TestPersonNameSyncsToLatestCandidacy(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	date2014 := mustDate(t, "2014-06-03")
	_, _, err := r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("ATKINS, TONI", "1341983", "ASSEMBLY 78", "2014 PRIMARY", &date2014),
		model.RegistrationQualified, "")
	require.NoError(t, err)

	date2016 := mustDate(t, "2016-06-07")
	candidacy, _, err := r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("ATKINS, TONI G.", "1341983", "STATE SENATE 39", "2016 PRIMARY", &date2016),
		model.RegistrationQualified, "")
	require.NoError(t, err)

	person, err := st.GetPerson(ctx, candidacy.PersonID)
	require.NoError(t, err)
	require.Equal(t, "TONI G. ATKINS", person.Name)
	require.True(t, person.HasName("TONI ATKINS"))

	candidacies, err := st.ListPersonCandidacies(ctx, person.ID)
	require.NoError(t, err)
	require.Len(t, candidacies, 2)
}

func TestResolveCandidaciesContinuesPastFailures(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	seedScrapedElection(t, st, "63", "2016 PRIMARY", "2016-06-07")
	seedScrapedCandidate(t, st, "2016 PRIMARY", "ASSEMBLY 24", "QUIRK, BILL", "1385153")
	seedScrapedCandidate(t, st, "2016 PRIMARY", "STATE SENATE 09", "SKINNER, NANCY", "1390001")
	// District 99 has no reference division; this record fails alone.
	seedScrapedCandidate(t, st, "2016 PRIMARY", "STATE SENATE 99", "NOBODY, REAL", "1399999")

	stats, err := r.ResolveCandidacies(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Processed)
	require.Equal(t, 2, stats.Created)
	require.Equal(t, 1, stats.Failed)

	// Whole-batch re-runs create nothing new.
	stats, err = r.ResolveCandidacies(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Created)
	require.Equal(t, 1, stats.Failed)

	all, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestLinkForm501FilingsUpdatesStatus(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	candidacy, _, err := r.GetOrCreateCandidacy(ctx,
		scrapedCandidate("QUIRK, BILL", "1385153", "ASSEMBLY 24", "2016 PRIMARY", &date),
		model.RegistrationQualified, "")
	require.NoError(t, err)

	seedForm501(t, st, form501Row{
		FilingID: "2000030", FilerID: "1385153",
		Office: "ASSEMBLY", District: 24,
		ElectionYear: 2016, ElectionType: "PRIMARY", Party: "DEMOCRATIC",
		LastName: "QUIRK", FirstName: "BILL",
		DateFiled: "2016-02-01", StatementType: model.Form501StatementWithdrawn,
	})

	stats, err := r.LinkForm501Filings(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)
	require.Equal(t, 1, stats.Updated)

	linked, err := st.ListCandidacies(ctx)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	require.Equal(t, []string{"2000030"}, linked[0].Form501FilingIDs)
	require.NotNil(t, linked[0].FiledDate)
	require.Equal(t, mustDate(t, "2016-02-01"), *linked[0].FiledDate)
	require.Equal(t, model.RegistrationWithdrawn, linked[0].RegistrationStatus)
	require.NotEqual(t, candidacy.RegistrationStatus, linked[0].RegistrationStatus)

	// Linking is idempotent.
	stats, err = r.LinkForm501Filings(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Updated)
}
