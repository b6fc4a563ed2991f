package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/california-civic-data/calaccess-processed/internal/model"
)

func TestGetOrCreatePost(t *testing.T) {
	tests := []struct {
		office       string
		organization string
		role         string
		divisionID   string
	}{
		{
			office:       "STATE SENATE 07",
			organization: model.OrgStateSenate,
			role:         "Senator",
			divisionID:   "ocd-division/country:us/state:ca/sldu:7",
		},
		{
			office:       "ASSEMBLY 75",
			organization: model.OrgStateAssembly,
			role:         "Assembly Member",
			divisionID:   "ocd-division/country:us/state:ca/sldl:75",
		},
		{
			office:       "MEMBER BOARD OF EQUALIZATION 03",
			organization: model.OrgBoardOfEqualization,
			role:         "Board Member",
			divisionID:   "ocd-division/country:us/state:ca/boe_district:3",
		},
		{
			office:       "SECRETARY OF STATE",
			organization: model.OrgSecretaryOfState,
			role:         "Secretary Of State",
			divisionID:   "ocd-division/country:us/state:ca",
		},
		{
			office:       "GOVERNOR",
			organization: model.OrgExecutiveBranch,
			role:         "Governor",
			divisionID:   "ocd-division/country:us/state:ca",
		},
		{
			office:       "SUPERINTENDENT OF PUBLIC INSTRUCTION",
			organization: model.OrgExecutiveBranch,
			role:         "Superintendent Of Public Instruction",
			divisionID:   "ocd-division/country:us/state:ca",
		},
	}

	r, _ := newTestResolver(t)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.office, func(t *testing.T) {
			post, created, err := r.GetOrCreatePost(ctx, tt.office)
			require.NoError(t, err)
			require.True(t, created)
			require.Equal(t, tt.office, post.Label)
			require.Equal(t, tt.organization, post.Organization)
			require.Equal(t, tt.role, post.Role)
			require.Equal(t, tt.divisionID, post.DivisionID)

			again, created, err := r.GetOrCreatePost(ctx, tt.office)
			require.NoError(t, err)
			require.False(t, created)
			require.Equal(t, post.ID, again.ID)
		})
	}
}

func TestGetOrCreatePostDivisionFailures(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	// Out-of-range district: the reference divisions stop at 40 senate seats.
	_, _, err := r.GetOrCreatePost(ctx, "STATE SENATE 41")
	require.Error(t, err)

	// Legislative office with no district at all.
	_, _, err = r.GetOrCreatePost(ctx, "ASSEMBLY")
	require.Error(t, err)
}
