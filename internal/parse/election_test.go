package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElectionNameParts(t *testing.T) {
	district := func(d int) *int { return &d }

	tests := []struct {
		name string
		raw  string
		want ElectionName
	}{
		{"primary", "2016 PRIMARY", ElectionName{Year: 2016, Type: "PRIMARY"}},
		{"general", "2014 GENERAL", ElectionName{Year: 2014, Type: "GENERAL"}},
		{"recall", "2003 RECALL", ElectionName{Year: 2003, Type: "RECALL"}},
		{
			"special with office",
			"2013 SPECIAL ELECTION (ASSEMBLY 54)",
			ElectionName{Year: 2013, Type: "SPECIAL ELECTION", Office: "ASSEMBLY", District: district(54)},
		},
		{
			"special runoff",
			"2015 SPECIAL RUNOFF (STATE SENATE 07)",
			ElectionName{Year: 2015, Type: "SPECIAL RUNOFF", Office: "STATE SENATE", District: district(7)},
		},
		{
			"special without district",
			"2009 SPECIAL ELECTION (GOVERNOR)",
			ElectionName{Year: 2009, Type: "SPECIAL ELECTION", Office: "GOVERNOR"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ElectionNameParts(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElectionNameParts_Malformed(t *testing.T) {
	for _, raw := range []string{"", "PRIMARY 2016", "SPECIAL ELECTION", "20XX PRIMARY"} {
		_, err := ElectionNameParts(raw)
		require.Error(t, err, "raw=%q", raw)

		var perr *Error
		assert.ErrorAs(t, err, &perr, "raw=%q", raw)
	}
}

func TestGuessElectionDate(t *testing.T) {
	tests := []struct {
		name         string
		year         int
		electionType string
		want         time.Time
	}{
		{"2016 primary", 2016, "PRIMARY", time.Date(2016, time.June, 7, 0, 0, 0, 0, time.UTC)},
		{"2016 general", 2016, "GENERAL", time.Date(2016, time.November, 8, 0, 0, 0, 0, time.UTC)},
		{"2014 primary", 2014, "PRIMARY", time.Date(2014, time.June, 3, 0, 0, 0, 0, time.UTC)},
		{"2018 general", 2018, "GENERAL", time.Date(2018, time.November, 6, 0, 0, 0, 0, time.UTC)},
		{"2010 general", 2010, "GENERAL", time.Date(2010, time.November, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GuessElectionDate(tt.year, tt.electionType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			// First Tuesday after the first Monday: always a Tuesday
			// landing on the 2nd through the 8th.
			assert.Equal(t, time.Tuesday, got.Weekday())
			assert.GreaterOrEqual(t, got.Day(), 2)
			assert.LessOrEqual(t, got.Day(), 8)
		})
	}
}

func TestGuessElectionDate_Errors(t *testing.T) {
	_, err := GuessElectionDate(2015, "PRIMARY")
	require.Error(t, err, "odd year must not produce a date")

	_, err = GuessElectionDate(2016, "RECALL")
	require.Error(t, err, "only PRIMARY and GENERAL dates can be guessed")
}

func TestElectionDay(t *testing.T) {
	// November 2020: the 1st is a Sunday, so the first Monday is the 2nd
	// and election day the 3rd.
	assert.Equal(t, time.Date(2020, time.November, 3, 0, 0, 0, 0, time.UTC), ElectionDay(2020, time.November))
}
