package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/california-civic-data/calaccess-processed/internal/config"
	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/model"
)

// Form501Filter narrows Form 501 listing for candidacy matching. Zero-valued
// fields are not applied. District distinguishes "any district" (nil) from a
// specific one; callers resolving a district-less office pass nil and narrow
// in memory.
type Form501Filter struct {
	FilerID  string
	Office   string
	District *int
	MaxYear  int // inclusive upper bound on election_year; 0 = unbounded
}

// Store defines the persistence interface for the processing pipeline. Entity
// lookups return (nil, false, nil) on a clean miss so resolvers can
// distinguish "not found" from infrastructure failure.
type Store interface {
	// Parties
	GetOrCreateParty(ctx context.Context, name string) (*model.Party, bool, error)
	ListParties(ctx context.Context) ([]model.Party, error)

	// Divisions and posts
	FindDivision(ctx context.Context, subtype string, district int) (*model.Division, bool, error)
	GetOrCreatePost(ctx context.Context, post *model.Post) (*model.Post, bool, error)
	ListPosts(ctx context.Context) ([]model.Post, error)

	// Elections
	FindElectionByIdentifier(ctx context.Context, scrapedID string) (*model.Election, bool, error)
	FindElectionByName(ctx context.Context, name string) (*model.Election, bool, error)
	FindElectionByDate(ctx context.Context, date time.Time) (*model.Election, bool, error)
	CreateElection(ctx context.Context, e *model.Election) error
	UpdateElection(ctx context.Context, e *model.Election) error
	ListElections(ctx context.Context) ([]model.Election, error)

	// Contests
	FindContest(ctx context.Context, electionID, name, partyID string, previousTermUnexpired bool) (*model.Contest, bool, error)
	CreateContest(ctx context.Context, c *model.Contest) error
	UpdateContest(ctx context.Context, c *model.Contest) error
	ListContests(ctx context.Context) ([]model.Contest, error)

	// Persons
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	FindPersonByFilerID(ctx context.Context, filerID string) (*model.Person, bool, error)
	CreatePerson(ctx context.Context, p *model.Person) error
	UpdatePerson(ctx context.Context, p *model.Person) error
	ListPersons(ctx context.Context) ([]model.Person, error)

	// Candidacies. Reads denormalize the owning election's date so callers
	// can order a person's candidacies without extra lookups.
	ListContestCandidacies(ctx context.Context, contestID string) ([]model.Candidacy, error)
	ListPersonCandidacies(ctx context.Context, personID string) ([]model.Candidacy, error)
	ListCandidacies(ctx context.Context) ([]model.Candidacy, error)
	CreateCandidacy(ctx context.Context, c *model.Candidacy) error
	UpdateCandidacy(ctx context.Context, c *model.Candidacy) error

	// Raw CAL-ACCESS records (append-only inputs)
	ListScrapedElections(ctx context.Context) ([]model.ScrapedElection, error)
	ListScrapedCandidates(ctx context.Context) ([]model.ScrapedCandidate, error)
	ListForm501Filings(ctx context.Context, filter Form501Filter) ([]model.Form501Filing, error)
	GetForm501Filing(ctx context.Context, filingID string) (*model.Form501Filing, bool, error)
	ListForm497Filings(ctx context.Context) ([]model.Form497Filing, error)
	FilerPartyAsOf(ctx context.Context, filerID string, asOf time.Time) (string, bool, error)

	// Raw loads
	UpsertRows(ctx context.Context, cfg db.UpsertConfig, rows [][]any) (int64, error)

	// Sync bookkeeping
	GetSyncState(ctx context.Context, dataset string) (*model.SyncState, error)
	ListSyncStates(ctx context.Context) ([]model.SyncState, error)
	RecordSyncState(ctx context.Context, state model.SyncState) error

	// Counts returns per-table row counts for status reporting.
	Counts(ctx context.Context) (map[string]int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	case config.DriverSQLite, "":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
