package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var form501Header = indexHeader([]string{
	"FILING_ID", "FILER_ID", "FORM_TYPE", "OFFIC_DSCR", "DIST_NO",
	"YR_OF_ELEC", "ELEC_TYPE", "PARTY", "CAND_NAML", "CAND_NAMF",
	"CAND_NAMM", "CAND_NAMS", "RPT_DATE", "STMT_TYPE",
})

func TestMapForm501Row(t *testing.T) {
	row := []string{
		"2045158", "1386637", "F501", "Assembly", "75",
		"2018", "Primary", "Republican", "Waldron", "Marie",
		"", "", "12/31/2017 12:00:00 AM", "10001",
	}
	mapped := mapForm501Row(form501Header, row)
	require.NotNil(t, mapped)
	require.Len(t, mapped, 13)
	assert.Equal(t, "2045158", mapped[0])
	assert.Equal(t, "ASSEMBLY", mapped[2])
	district, ok := mapped[3].(*int)
	require.True(t, ok)
	require.NotNil(t, district)
	assert.Equal(t, 75, *district)
	assert.Equal(t, 2018, mapped[4])
	assert.Equal(t, "WALDRON", mapped[7])
	assert.Equal(t, "2017-12-31", mapped[11])
}

func TestMapForm501RowSkipsNon501(t *testing.T) {
	row := []string{
		"2045159", "1386637", "F502", "Assembly", "75",
		"2018", "Primary", "Republican", "Waldron", "Marie",
		"", "", "", "10001",
	}
	assert.Nil(t, mapForm501Row(form501Header, row))
}

func TestMapForm501RowNoDistrict(t *testing.T) {
	row := []string{
		"2045160", "1234567", "F501", "Governor", "0",
		"2018", "Primary", "Democratic", "Newsom", "Gavin",
		"C", "", "", "10001",
	}
	mapped := mapForm501Row(form501Header, row)
	require.NotNil(t, mapped)
	district, ok := mapped[3].(*int)
	require.True(t, ok)
	assert.Nil(t, district)
}

func TestMapForm497Row(t *testing.T) {
	h := indexHeader([]string{
		"FILING_ID", "LINE_ITEM", "FILER_ID", "FILER_NAML",
		"AMOUNT", "CTRIB_DATE", "ENTY_NAML",
	})

	mapped := mapForm497Row(h, []string{
		"2100001", "3", "1386637", "Waldron for Assembly 2018",
		"1500.00", "5/1/2018", "Example Donor LLC",
	})
	require.NotNil(t, mapped)
	assert.Equal(t, "1500.00", mapped[4])
	assert.Equal(t, "2018-05-01", mapped[5])

	// Missing amount defaults to zero.
	mapped = mapForm497Row(h, []string{"2100001", "4", "1386637", "X", "", "", "Y"})
	require.NotNil(t, mapped)
	assert.Equal(t, "0", mapped[4])
	assert.Nil(t, mapped[5])

	assert.Nil(t, mapForm497Row(h, []string{"", "1", "", "", "", "", ""}))
}
