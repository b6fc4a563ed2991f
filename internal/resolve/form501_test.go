package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindForm501ByFilerID(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	seedForm501(t, st, form501Row{
		FilingID: "2000001", FilerID: "1385153",
		Office: "ASSEMBLY", District: 24,
		ElectionYear: 2016, ElectionType: "PRIMARY", Party: "DEMOCRATIC",
		LastName: "QUIRK", FirstName: "BILL", DateFiled: "2015-11-20",
	})
	seedForm501(t, st, form501Row{
		FilingID: "2000002", FilerID: "1385153",
		Office: "ASSEMBLY", District: 24,
		ElectionYear: 2016, ElectionType: "GENERAL", Party: "DEMOCRATIC",
		LastName: "QUIRK", FirstName: "BILL", DateFiled: "2016-06-20",
	})

	date := mustDate(t, "2016-06-07")
	filing, found, err := r.FindForm501(ctx, scrapedCandidate(
		"QUIRK, BILL", "1385153", "ASSEMBLY 24", "2016 PRIMARY", &date))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2000001", filing.FilingID)

	// With no filing for the election type, the filer-id match still stands.
	filing, found, err = r.FindForm501(ctx, scrapedCandidate(
		"QUIRK, BILL", "1385153", "ASSEMBLY 24", "2016 RECALL", &date))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2000002", filing.FilingID) // filed latest
}

func TestFindForm501ByNameWithMiddleRetry(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	seedForm501(t, st, form501Row{
		FilingID: "2000010", FilerID: "1390001",
		Office: "STATE SENATE", District: 9,
		ElectionYear: 2016, ElectionType: "PRIMARY", Party: "DEMOCRATIC",
		LastName: "SKINNER", FirstName: "NANCY", MiddleName: "J",
	})

	date := mustDate(t, "2016-06-07")

	// Scraped name carries the middle initial the first-pass key lacks.
	filing, found, err := r.FindForm501(ctx, scrapedCandidate(
		"SKINNER, NANCY J.", "", "STATE SENATE 09", "2016 PRIMARY", &date))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2000010", filing.FilingID)

	// Plain "last, first" matches on the first pass.
	filing, found, err = r.FindForm501(ctx, scrapedCandidate(
		"SKINNER, NANCY", "", "STATE SENATE 09", "2016 PRIMARY", &date))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2000010", filing.FilingID)
}

func TestFindForm501PreFiledEligibility(t *testing.T) {
	r, st := newTestResolver(t)
	ctx := context.Background()

	// Pre-filed two years early: still eligible.
	seedForm501(t, st, form501Row{
		FilingID: "2000020", FilerID: "1390002",
		Office: "ASSEMBLY", District: 15,
		ElectionYear: 2014, ElectionType: "PRIMARY", Party: "DEMOCRATIC",
		LastName: "THURMOND", FirstName: "TONY", DateFiled: "2014-01-10",
	})
	// Filed for a later cycle: not eligible for 2016.
	seedForm501(t, st, form501Row{
		FilingID: "2000021", FilerID: "1390002",
		Office: "ASSEMBLY", District: 15,
		ElectionYear: 2018, ElectionType: "PRIMARY", Party: "DEMOCRATIC",
		LastName: "THURMOND", FirstName: "TONY", DateFiled: "2017-12-01",
	})

	date := mustDate(t, "2016-06-07")
	filing, found, err := r.FindForm501(ctx, scrapedCandidate(
		"THURMOND, TONY", "1390002", "ASSEMBLY 15", "2016 PRIMARY", &date))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2000020", filing.FilingID)
}

func TestFindForm501MissIsNotAnError(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	date := mustDate(t, "2016-06-07")
	filing, found, err := r.FindForm501(ctx, scrapedCandidate(
		"NOBODY, FILED", "1399999", "ASSEMBLY 01", "2016 PRIMARY", &date))
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, filing)
}
