package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrateSeedsReferenceData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d, found, err := s.FindDivision(ctx, model.DivisionSubtypeSenate, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "ocd-division/country:us/state:ca/sldu:7", d.ID)

	d, found, err = s.FindDivision(ctx, model.DivisionSubtypeAssembly, 80)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "California State Assembly district 80", d.Name)

	_, found, err = s.FindDivision(ctx, model.DivisionSubtypeAssembly, 81)
	require.NoError(t, err)
	require.False(t, found)

	// Sentinel parties exist without a create.
	p, created, err := s.GetOrCreateParty(ctx, model.UnknownPartyName)
	require.NoError(t, err)
	require.False(t, created)
	require.True(t, p.IsUnknown())

	// Re-running migrate is a no-op.
	require.NoError(t, s.Migrate(ctx))
}

func TestGetOrCreateParty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1, created, err := s.GetOrCreateParty(ctx, "PEACE AND FREEDOM")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "PF", p1.Abbreviation)

	p2, created, err := s.GetOrCreateParty(ctx, "PEACE AND FREEDOM")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, p1.ID, p2.ID)
}

func TestGetOrCreatePost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := &model.Post{
		Label:        "State Assembly District 75",
		Role:         "Assembly Member",
		Organization: model.OrgStateAssembly,
		DivisionID:   "ocd-division/country:us/state:ca/sldl:75",
	}
	p1, created, err := s.GetOrCreatePost(ctx, post)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, p1.ID)

	p2, created, err := s.GetOrCreatePost(ctx, post)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, p1.ID, p2.ID)
}

func TestElectionLookupsAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &model.Election{
		Name:      "2016 PRIMARY",
		Date:      time.Date(2016, 6, 7, 0, 0, 0, 0, time.UTC),
		AdminOrg:  "CALIFORNIA SECRETARY OF STATE",
		Statewide: true,
	}
	e.AddIdentifier("63")
	e.AddType("PRIMARY")
	require.NoError(t, s.CreateElection(ctx, e))

	byName, found, err := s.FindElectionByName(ctx, "2016 PRIMARY")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, e.ID, byName.ID)
	require.True(t, byName.Date.Equal(e.Date))
	require.Equal(t, []string{"PRIMARY"}, byName.Types)

	byIdent, found, err := s.FindElectionByIdentifier(ctx, "63")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, e.ID, byIdent.ID)

	byDate, found, err := s.FindElectionByDate(ctx, e.Date)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, e.ID, byDate.ID)

	_, found, err = s.FindElectionByIdentifier(ctx, "999")
	require.NoError(t, err)
	require.False(t, found)

	byIdent.AddIdentifier("64")
	byIdent.UpsertSource("https://example.com/63", "scrape")
	require.NoError(t, s.UpdateElection(ctx, byIdent))

	again, found, err := s.FindElectionByIdentifier(ctx, "64")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, again.Identifiers, 2)
	require.Len(t, again.Sources, 1)
}

func TestPersonFilerIDLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &model.Person{
		Name:       "SMITH, JOHN",
		SortName:   "SMITH, JOHN",
		FamilyName: "SMITH",
		GivenName:  "JOHN",
	}
	p.AddIdentifier(model.SchemeCalaccessFilerID, "1234567")
	require.NoError(t, s.CreatePerson(ctx, p))

	got, found, err := s.FindPersonByFilerID(ctx, "1234567")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, "1234567", got.FilerID())

	_, found, err = s.FindPersonByFilerID(ctx, "7654321")
	require.NoError(t, err)
	require.False(t, found)

	got.AddOtherName("SMITH, JOHNNY", "Matched on CAL-ACCESS filer ID")
	got.Name = "SMITH, JOHNNY"
	require.NoError(t, s.UpdatePerson(ctx, got))

	reread, err := s.GetPerson(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "SMITH, JOHNNY", reread.Name)
	require.Len(t, reread.OtherNames, 1)
}

func TestCandidacyRoundTripDenormalizesElectionDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &model.Election{
		Name: "2014 GENERAL",
		Date: time.Date(2014, 11, 4, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateElection(ctx, e))

	post := &model.Post{
		Label:        "State Senate District 7",
		Role:         "Senator",
		Organization: model.OrgStateSenate,
		DivisionID:   "ocd-division/country:us/state:ca/sldu:7",
	}
	post, _, err := s.GetOrCreatePost(ctx, post)
	require.NoError(t, err)

	contest := &model.Contest{
		ElectionID: e.ID,
		PostID:     post.ID,
		Name:       "State Senate District 7",
	}
	require.NoError(t, s.CreateContest(ctx, contest))

	found, ok, err := s.FindContest(ctx, e.ID, "State Senate District 7", "", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, contest.ID, found.ID)

	p := &model.Person{Name: "DOE, JANE", SortName: "DOE, JANE"}
	require.NoError(t, s.CreatePerson(ctx, p))

	filed := time.Date(2014, 3, 1, 0, 0, 0, 0, time.UTC)
	cand := &model.Candidacy{
		ContestID:          contest.ID,
		PersonID:           p.ID,
		BallotName:         "DOE, JANE",
		PostID:             post.ID,
		FiledDate:          &filed,
		RegistrationStatus: model.RegistrationQualified,
		Form501FilingIDs:   []string{"501-1"},
	}
	require.NoError(t, s.CreateCandidacy(ctx, cand))

	byContest, err := s.ListContestCandidacies(ctx, contest.ID)
	require.NoError(t, err)
	require.Len(t, byContest, 1)
	require.True(t, byContest[0].ElectionDate.Equal(e.Date))
	require.Equal(t, []string{"501-1"}, byContest[0].Form501FilingIDs)
	require.NotNil(t, byContest[0].FiledDate)
	require.True(t, byContest[0].FiledDate.Equal(filed))

	got := byContest[0]
	got.LinkForm501("501-2")
	got.IsIncumbent = true
	require.NoError(t, s.UpdateCandidacy(ctx, &got))

	byPerson, err := s.ListPersonCandidacies(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, byPerson, 1)
	require.Len(t, byPerson[0].Form501FilingIDs, 2)
	require.True(t, byPerson[0].IsIncumbent)
}

func TestUpsertRowsAndForm501Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg := db.UpsertConfig{
		Table: "calaccess_form501_filings",
		Columns: []string{
			"filing_id", "filer_id", "office", "district", "election_year",
			"election_type", "party", "last_name", "first_name", "middle_name",
			"suffix", "date_filed", "statement_type",
		},
		ConflictKeys: []string{"filing_id"},
	}
	rows := [][]any{
		{"100", "111", "ASSEMBLY", 75, 2018, "PRIMARY", "REPUBLICAN", "WALDRON", "MARIE", "", "", "2018-02-01", "10001"},
		{"101", "222", "GOVERNOR", nil, 2018, "PRIMARY", "DEMOCRATIC", "NEWSOM", "GAVIN", "C", "", "2017-11-01", "10001"},
	}
	n, err := s.UpsertRows(ctx, cfg, rows)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	// Re-running the same batch is idempotent.
	n, err = s.UpsertRows(ctx, cfg, rows)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts["calaccess_form501_filings"])

	district := 75
	filings, err := s.ListForm501Filings(ctx, Form501Filter{Office: "ASSEMBLY", District: &district, MaxYear: 2018})
	require.NoError(t, err)
	require.Len(t, filings, 1)
	require.Equal(t, "WALDRON", filings[0].LastName)
	require.NotNil(t, filings[0].DateFiled)

	filings, err = s.ListForm501Filings(ctx, Form501Filter{Office: "ASSEMBLY", District: &district, MaxYear: 2016})
	require.NoError(t, err)
	require.Empty(t, filings)

	got, found, err := s.GetForm501Filing(ctx, "101")
	require.NoError(t, err)
	require.True(t, found)
	require.Nil(t, got.District)
	require.Equal(t, "NEWSOM", got.LastName)
}

func TestFilerPartyAsOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg := db.UpsertConfig{
		Table:        "calaccess_filer_party_spans",
		Columns:      []string{"filer_id", "effective_date", "party_name"},
		ConflictKeys: []string{"filer_id", "effective_date"},
	}
	_, err := s.UpsertRows(ctx, cfg, [][]any{
		{"111", "2010-01-01", "REPUBLICAN"},
		{"111", "2016-01-01", "DEMOCRATIC"},
	})
	require.NoError(t, err)

	party, found, err := s.FilerPartyAsOf(ctx, "111", time.Date(2014, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "REPUBLICAN", party)

	party, found, err = s.FilerPartyAsOf(ctx, "111", time.Date(2018, 6, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "DEMOCRATIC", party)

	_, found, err = s.FilerPartyAsOf(ctx, "111", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = s.FilerPartyAsOf(ctx, "999", time.Now())
	require.NoError(t, err)
	require.False(t, found)
}

func TestSyncState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.GetSyncState(ctx, "form501")
	require.NoError(t, err)
	require.Nil(t, st)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.RecordSyncState(ctx, model.SyncState{
		Dataset:    "form501",
		LastSyncAt: &now,
		RowsSynced: 42,
		Status:     "ok",
	}))

	st, err = s.GetSyncState(ctx, "form501")
	require.NoError(t, err)
	require.NotNil(t, st)
	require.Equal(t, int64(42), st.RowsSynced)
	require.Equal(t, "ok", st.Status)

	require.NoError(t, s.RecordSyncState(ctx, model.SyncState{
		Dataset:    "form501",
		LastSyncAt: &now,
		RowsSynced: 50,
		Status:     "ok",
	}))
	states, err := s.ListSyncStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	require.Equal(t, int64(50), states[0].RowsSynced)
}
