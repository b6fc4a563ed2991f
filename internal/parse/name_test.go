package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonNameParts(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want PersonName
	}{
		{
			"simple",
			"WALDRON, MARIE",
			PersonName{SortName: "WALDRON, MARIE", Name: "MARIE WALDRON", FamilyName: "WALDRON", GivenName: "MARIE"},
		},
		{
			"middle initial",
			"SMITH, JOHN A.",
			PersonName{SortName: "SMITH, JOHN A.", Name: "JOHN A. SMITH", FamilyName: "SMITH", GivenName: "JOHN A."},
		},
		{
			"generational suffix",
			"SMITH, JOHN A. JR",
			PersonName{SortName: "SMITH, JOHN A.", Name: "JOHN A. JR SMITH", FamilyName: "SMITH", GivenName: "JOHN A. JR"},
		},
		{
			"suffix with period",
			"BROWN, EDMUND G. JR.",
			PersonName{SortName: "BROWN, EDMUND G.", Name: "EDMUND G. JR BROWN", FamilyName: "BROWN", GivenName: "EDMUND G. JR"},
		},
		{
			"roman numeral suffix",
			"GOMEZ, RAUL III",
			PersonName{SortName: "GOMEZ, RAUL", Name: "RAUL III GOMEZ", FamilyName: "GOMEZ", GivenName: "RAUL III"},
		},
		{
			"no comma",
			"MADONNA",
			PersonName{SortName: "MADONNA", Name: "MADONNA", FamilyName: "MADONNA", GivenName: ""},
		},
		{
			"surrounding whitespace",
			"  WALDRON, MARIE  ",
			PersonName{SortName: "WALDRON, MARIE", Name: "MARIE WALDRON", FamilyName: "WALDRON", GivenName: "MARIE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PersonNameParts(tt.raw))
		})
	}
}

// Re-parsing a parsed sort name must be a fixed point: running the batch
// twice cannot keep rewriting names.
func TestPersonNameParts_IdempotentOnSortName(t *testing.T) {
	for _, raw := range []string{"WALDRON, MARIE", "SMITH, JOHN A. JR", "MADONNA"} {
		first := PersonNameParts(raw)
		second := PersonNameParts(first.SortName)
		assert.Equal(t, first.SortName, second.SortName, "raw=%q", raw)
		assert.Equal(t, first.FamilyName, second.FamilyName, "raw=%q", raw)
	}
}

func TestPersonNameParts_RoundTrip(t *testing.T) {
	// For comma names without a suffix, name == given + " " + family.
	p := PersonNameParts("HARRIS, KAMALA D.")
	assert.Equal(t, p.GivenName+" "+p.FamilyName, p.Name)
}

func TestOfficeParts(t *testing.T) {
	district := func(d int) *int { return &d }

	tests := []struct {
		name string
		raw  string
		want Office
	}{
		{"assembly with district", "ASSEMBLY 75", Office{Type: "ASSEMBLY", District: district(75)}},
		{"senate with district", "STATE SENATE 07", Office{Type: "STATE SENATE", District: district(7)}},
		{"statewide office", "GOVERNOR", Office{Type: "GOVERNOR"}},
		{"multi-word office", "SUPERINTENDENT OF PUBLIC INSTRUCTION", Office{Type: "SUPERINTENDENT OF PUBLIC INSTRUCTION"}},
		{"boe seat", "MEMBER BOARD OF EQUALIZATION 03", Office{Type: "MEMBER BOARD OF EQUALIZATION", District: district(3)}},
		{"lowercase input", "assembly 75", Office{Type: "ASSEMBLY", District: district(75)}},
		{"single digit district", "ASSEMBLY 7", Office{}},
		{"malformed", "ASSEMBLY-75", Office{}},
		{"empty", "", Office{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OfficeParts(tt.raw))
		})
	}
}
