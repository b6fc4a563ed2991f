package store

import (
	"fmt"

	"github.com/california-civic-data/calaccess-processed/internal/model"
)

// seedDivisions returns the fixed reference set of California divisions:
// the state itself, 40 Senate districts, 80 Assembly districts, and 4 Board
// of Equalization districts. Posts refuse to attach to a district that is
// not in this set.
func seedDivisions() []model.Division {
	divs := []model.Division{
		{
			ID:      "ocd-division/country:us/state:ca",
			Name:    "California",
			Subtype: model.DivisionSubtypeState,
		},
	}
	for d := 1; d <= 40; d++ {
		divs = append(divs, model.Division{
			ID:       fmt.Sprintf("ocd-division/country:us/state:ca/sldu:%d", d),
			Name:     fmt.Sprintf("California State Senate district %d", d),
			Subtype:  model.DivisionSubtypeSenate,
			District: d,
		})
	}
	for d := 1; d <= 80; d++ {
		divs = append(divs, model.Division{
			ID:       fmt.Sprintf("ocd-division/country:us/state:ca/sldl:%d", d),
			Name:     fmt.Sprintf("California State Assembly district %d", d),
			Subtype:  model.DivisionSubtypeAssembly,
			District: d,
		})
	}
	for d := 1; d <= 4; d++ {
		divs = append(divs, model.Division{
			ID:       fmt.Sprintf("ocd-division/country:us/state:ca/boe_district:%d", d),
			Name:     fmt.Sprintf("Board of Equalization district %d", d),
			Subtype:  model.DivisionSubtypeBOE,
			District: d,
		})
	}
	return divs
}

// seedPartyNames are sentinel parties that must always exist so resolution
// can fall through to them without a create race.
var seedPartyNames = []string{
	model.UnknownPartyName,
	model.NoPartyPreferenceName,
}

// countedTables drives the status report.
var countedTables = []string{
	"parties",
	"divisions",
	"posts",
	"persons",
	"elections",
	"contests",
	"candidacies",
	"calaccess_scraped_elections",
	"calaccess_scraped_candidates",
	"calaccess_scraped_propositions",
	"calaccess_form501_filings",
	"calaccess_form497_filings",
	"calaccess_filer_party_spans",
}
