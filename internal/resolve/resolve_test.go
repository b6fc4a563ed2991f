package resolve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/config"
	"github.com/california-civic-data/calaccess-processed/internal/corrections"
	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

func newTestResolver(t *testing.T) (*Resolver, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	tables, err := corrections.Load("")
	require.NoError(t, err)

	return New(st, tables, config.ResolveConfig{SuggestThreshold: 0.9}), st
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func seedScrapedElection(t *testing.T, st store.Store, scrapedID, name, date string) {
	t.Helper()
	var d any
	if date != "" {
		d = date
	}
	_, err := st.UpsertRows(context.Background(), db.UpsertConfig{
		Table:        "calaccess_scraped_elections",
		Columns:      []string{"scraped_id", "name", "date", "sort_index", "url", "scraped_at"},
		ConflictKeys: []string{"name"},
	}, [][]any{{scrapedID, name, d, 0, "https://cal-access.sos.ca.gov/Campaign/Candidates/list.aspx?view=certified&electNav=" + scrapedID, time.Now().UTC()}})
	require.NoError(t, err)
}

func seedScrapedCandidate(t *testing.T, st store.Store, electionName, officeName, name, scrapedID string) {
	t.Helper()
	_, err := st.UpsertRows(context.Background(), db.UpsertConfig{
		Table:        "calaccess_scraped_candidates",
		Columns:      []string{"election_name", "office_name", "name", "scraped_id", "url", "scraped_at"},
		ConflictKeys: []string{"election_name", "office_name", "name"},
	}, [][]any{{electionName, officeName, name, scrapedID, "https://cal-access.sos.ca.gov/Campaign/Candidates/Detail.aspx?id=" + scrapedID, time.Now().UTC()}})
	require.NoError(t, err)
}

type form501Row struct {
	FilingID      string
	FilerID       string
	Office        string
	District      any // int or nil
	ElectionYear  int
	ElectionType  string
	Party         string
	LastName      string
	FirstName     string
	MiddleName    string
	DateFiled     string
	StatementType string
}

func seedForm501(t *testing.T, st store.Store, f form501Row) {
	t.Helper()
	var filed any
	if f.DateFiled != "" {
		filed = f.DateFiled
	}
	_, err := st.UpsertRows(context.Background(), db.UpsertConfig{
		Table: "calaccess_form501_filings",
		Columns: []string{"filing_id", "filer_id", "office", "district", "election_year",
			"election_type", "party", "last_name", "first_name", "middle_name", "suffix",
			"date_filed", "statement_type"},
		ConflictKeys: []string{"filing_id"},
	}, [][]any{{f.FilingID, f.FilerID, f.Office, f.District, f.ElectionYear,
		f.ElectionType, f.Party, f.LastName, f.FirstName, f.MiddleName, "",
		filed, f.StatementType}})
	require.NoError(t, err)
}

func seedPartySpan(t *testing.T, st store.Store, filerID, effectiveDate, party string) {
	t.Helper()
	_, err := st.UpsertRows(context.Background(), db.UpsertConfig{
		Table:        "calaccess_filer_party_spans",
		Columns:      []string{"filer_id", "effective_date", "party_name"},
		ConflictKeys: []string{"filer_id", "effective_date"},
	}, [][]any{{filerID, effectiveDate, party}})
	require.NoError(t, err)
}
