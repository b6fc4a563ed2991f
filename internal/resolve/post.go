package resolve

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/parse"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// GetOrCreatePost maps an office-name string onto a canonical Post, creating
// one if absent. Legislative offices attach to their district division, which
// must already exist as a reference row; a division miss is a hard failure
// because it means the scraped district number is out of range.
func (r *Resolver) GetOrCreatePost(ctx context.Context, officeName string) (*model.Post, bool, error) {
	office := parse.OfficeParts(officeName)
	label := strings.ToUpper(strings.TrimSpace(officeName))

	var (
		org      string
		role     string
		division *model.Division
	)

	switch office.Type {
	case "STATE SENATE":
		org = model.OrgStateSenate
		role = "Senator"
		d, err := r.districtDivision(ctx, model.DivisionSubtypeSenate, office.District, label)
		if err != nil {
			return nil, false, err
		}
		division = d
	case "ASSEMBLY":
		org = model.OrgStateAssembly
		role = "Assembly Member"
		d, err := r.districtDivision(ctx, model.DivisionSubtypeAssembly, office.District, label)
		if err != nil {
			return nil, false, err
		}
		division = d
	case "MEMBER BOARD OF EQUALIZATION":
		org = model.OrgBoardOfEqualization
		role = "Board Member"
		d, err := r.districtDivision(ctx, model.DivisionSubtypeBOE, office.District, label)
		if err != nil {
			return nil, false, err
		}
		division = d
	case "SECRETARY OF STATE":
		org = model.OrgSecretaryOfState
		role = titleCaser.String(strings.ToLower(office.Type))
		d, err := r.stateDivision(ctx)
		if err != nil {
			return nil, false, err
		}
		division = d
	default:
		org = model.OrgExecutiveBranch
		role = titleCaser.String(strings.ToLower(office.Type))
		d, err := r.stateDivision(ctx)
		if err != nil {
			return nil, false, err
		}
		division = d
	}

	post, created, err := r.st.GetOrCreatePost(ctx, &model.Post{
		Label:        label,
		Role:         role,
		Organization: org,
		DivisionID:   division.ID,
	})
	if err != nil {
		return nil, false, err
	}
	return post, created, nil
}

func (r *Resolver) districtDivision(ctx context.Context, subtype string, district *int, label string) (*model.Division, error) {
	if district == nil {
		return nil, eris.Errorf("resolve: office %q has no district", label)
	}
	d, found, err := r.st.FindDivision(ctx, subtype, *district)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, eris.Errorf("resolve: no %s division for district %d (office %q)", subtype, *district, label)
	}
	return d, nil
}

func (r *Resolver) stateDivision(ctx context.Context) (*model.Division, error) {
	d, found, err := r.st.FindDivision(ctx, model.DivisionSubtypeState, 0)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, eris.New("resolve: state division missing; run migrations")
	}
	return d, nil
}
