package model

// Organization names posts can belong to. Mirrors the fixed set of state
// bodies CAL-ACCESS offices map onto.
const (
	OrgStateSenate         = "California State Senate"
	OrgStateAssembly       = "California State Assembly"
	OrgBoardOfEqualization = "Board of Equalization"
	OrgSecretaryOfState    = "California Secretary of State"
	OrgExecutiveBranch     = "California Executive Branch"
)

// Division is a reference geographic/jurisdictional division. Legislative
// districts must already exist as reference rows before posts can attach to
// them; the state-level division backs every non-legislative office.
type Division struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Subtype  string `json:"subtype"` // "sldu" (senate), "sldl" (assembly), "boe", "state"
	District int    `json:"district,omitempty"`
}

// Division subtypes.
const (
	DivisionSubtypeState    = "state"
	DivisionSubtypeSenate   = "sldu"
	DivisionSubtypeAssembly = "sldl"
	DivisionSubtypeBOE      = "boe"
)

// Post is a public office seat: one Post per (organization, label), with
// legislative seats additionally keyed by district via their Division.
type Post struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
	DivisionID   string `json:"division_id,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}
