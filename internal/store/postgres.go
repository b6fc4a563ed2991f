package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS parties (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	abbreviation TEXT NOT NULL DEFAULT '',
	is_write_in  BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS divisions (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	subtype  TEXT NOT NULL,
	district INTEGER NOT NULL DEFAULT 0,
	UNIQUE (subtype, district)
);

CREATE TABLE IF NOT EXISTS posts (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL,
	role         TEXT NOT NULL,
	organization TEXT NOT NULL,
	division_id  TEXT NOT NULL DEFAULT '',
	start_date   TEXT NOT NULL DEFAULT '',
	end_date     TEXT NOT NULL DEFAULT '',
	UNIQUE (organization, label)
);

CREATE TABLE IF NOT EXISTS persons (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	sort_name   TEXT NOT NULL DEFAULT '',
	family_name TEXT NOT NULL DEFAULT '',
	given_name  TEXT NOT NULL DEFAULT '',
	other_names JSONB NOT NULL DEFAULT '[]',
	identifiers JSONB NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS elections (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	date        DATE NOT NULL,
	admin_org   TEXT NOT NULL DEFAULT '',
	statewide   BOOLEAN NOT NULL DEFAULT true,
	identifiers JSONB NOT NULL DEFAULT '[]',
	sources     JSONB NOT NULL DEFAULT '[]',
	types       JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS contests (
	id                      TEXT PRIMARY KEY,
	election_id             TEXT NOT NULL REFERENCES elections(id),
	post_id                 TEXT NOT NULL REFERENCES posts(id),
	party_id                TEXT NOT NULL DEFAULT '',
	name                    TEXT NOT NULL,
	previous_term_unexpired BOOLEAN NOT NULL DEFAULT false,
	runoff_for_contest_id   TEXT NOT NULL DEFAULT '',
	sources                 JSONB NOT NULL DEFAULT '[]',
	UNIQUE (election_id, name, party_id, previous_term_unexpired)
);

CREATE TABLE IF NOT EXISTS candidacies (
	id                  TEXT PRIMARY KEY,
	contest_id          TEXT NOT NULL REFERENCES contests(id),
	person_id           TEXT NOT NULL REFERENCES persons(id),
	ballot_name         TEXT NOT NULL,
	post_id             TEXT NOT NULL DEFAULT '',
	party_id            TEXT NOT NULL DEFAULT '',
	filed_date          DATE,
	is_incumbent        BOOLEAN NOT NULL DEFAULT false,
	registration_status TEXT NOT NULL DEFAULT 'filed',
	form501_filing_ids  JSONB NOT NULL DEFAULT '[]',
	UNIQUE (contest_id, person_id)
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_elections (
	scraped_id TEXT NOT NULL DEFAULT '',
	name       TEXT PRIMARY KEY,
	date       TEXT,
	sort_index INTEGER NOT NULL DEFAULT 0,
	url        TEXT NOT NULL DEFAULT '',
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_candidates (
	election_name TEXT NOT NULL,
	office_name   TEXT NOT NULL,
	name          TEXT NOT NULL,
	scraped_id    TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (election_name, office_name, name)
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_propositions (
	scraped_id    TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	election_name TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	scraped_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS calaccess_form501_filings (
	filing_id      TEXT PRIMARY KEY,
	filer_id       TEXT NOT NULL DEFAULT '',
	office         TEXT NOT NULL DEFAULT '',
	district       INTEGER,
	election_year  INTEGER NOT NULL DEFAULT 0,
	election_type  TEXT NOT NULL DEFAULT '',
	party          TEXT NOT NULL DEFAULT '',
	last_name      TEXT NOT NULL DEFAULT '',
	first_name     TEXT NOT NULL DEFAULT '',
	middle_name    TEXT NOT NULL DEFAULT '',
	suffix         TEXT NOT NULL DEFAULT '',
	date_filed     TEXT,
	statement_type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS calaccess_form497_filings (
	filing_id        TEXT NOT NULL,
	line_item        INTEGER NOT NULL,
	filer_id         TEXT NOT NULL DEFAULT '',
	filer_name       TEXT NOT NULL DEFAULT '',
	amount           TEXT NOT NULL DEFAULT '0',
	transaction_date TEXT,
	contributor_name TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (filing_id, line_item)
);

CREATE TABLE IF NOT EXISTS calaccess_filer_party_spans (
	filer_id       TEXT NOT NULL,
	effective_date TEXT NOT NULL,
	party_name     TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (filer_id, effective_date)
);

CREATE TABLE IF NOT EXISTS sync_state (
	dataset      TEXT PRIMARY KEY,
	last_sync_at TIMESTAMPTZ,
	rows_synced  BIGINT NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_contests_election ON contests(election_id);
CREATE INDEX IF NOT EXISTS idx_candidacies_contest ON candidacies(contest_id);
CREATE INDEX IF NOT EXISTS idx_candidacies_person ON candidacies(person_id);
CREATE INDEX IF NOT EXISTS idx_persons_identifiers ON persons USING gin (identifiers);
CREATE INDEX IF NOT EXISTS idx_elections_identifiers ON elections USING gin (identifiers);
CREATE INDEX IF NOT EXISTS idx_form501_filer ON calaccess_form501_filings(filer_id);
CREATE INDEX IF NOT EXISTS idx_form501_office ON calaccess_form501_filings(office, district);
CREATE INDEX IF NOT EXISTS idx_party_spans_filer ON calaccess_filer_party_spans(filer_id, effective_date);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	for _, d := range seedDivisions() {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO divisions (id, name, subtype, district) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			d.ID, d.Name, d.Subtype, d.District,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed division %s", d.ID)
		}
	}
	for _, name := range seedPartyNames {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO parties (id, name, abbreviation) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New().String(), name, model.PartyAbbreviation(name),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed party %s", name)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Parties

func (s *PostgresStore) GetOrCreateParty(ctx context.Context, name string) (*model.Party, bool, error) {
	var p model.Party
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, abbreviation, is_write_in FROM parties WHERE name = $1`,
		name,
	).Scan(&p.ID, &p.Name, &p.Abbreviation, &p.IsWriteIn)
	if err == nil {
		return &p, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, eris.Wrapf(err, "postgres: get party %s", name)
	}

	id := uuid.New().String()
	err = s.pool.QueryRow(ctx,
		`INSERT INTO parties (id, name, abbreviation) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET name = excluded.name
		 RETURNING id, name, abbreviation, is_write_in`,
		id, name, model.PartyAbbreviation(name),
	).Scan(&p.ID, &p.Name, &p.Abbreviation, &p.IsWriteIn)
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: insert party %s", name)
	}
	return &p, p.ID == id, nil
}

func (s *PostgresStore) ListParties(ctx context.Context) ([]model.Party, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, abbreviation, is_write_in FROM parties ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list parties")
	}
	defer rows.Close()

	var parties []model.Party
	for rows.Next() {
		var p model.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.Abbreviation, &p.IsWriteIn); err != nil {
			return nil, eris.Wrap(err, "postgres: scan party")
		}
		parties = append(parties, p)
	}
	return parties, eris.Wrap(rows.Err(), "postgres: list parties iterate")
}

// Divisions and posts

func (s *PostgresStore) FindDivision(ctx context.Context, subtype string, district int) (*model.Division, bool, error) {
	var d model.Division
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, subtype, district FROM divisions WHERE subtype = $1 AND district = $2`,
		subtype, district,
	).Scan(&d.ID, &d.Name, &d.Subtype, &d.District)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: find division %s %d", subtype, district)
	}
	return &d, true, nil
}

func (s *PostgresStore) GetOrCreatePost(ctx context.Context, post *model.Post) (*model.Post, bool, error) {
	var existing model.Post
	err := s.pool.QueryRow(ctx,
		`SELECT id, label, role, organization, division_id, start_date, end_date
		 FROM posts WHERE organization = $1 AND label = $2`,
		post.Organization, post.Label,
	).Scan(&existing.ID, &existing.Label, &existing.Role, &existing.Organization,
		&existing.DivisionID, &existing.StartDate, &existing.EndDate)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, eris.Wrapf(err, "postgres: get post %s / %s", post.Organization, post.Label)
	}

	created := *post
	created.ID = uuid.New().String()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO posts (id, label, role, organization, division_id, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		created.ID, created.Label, created.Role, created.Organization,
		created.DivisionID, created.StartDate, created.EndDate,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: insert post %s / %s", post.Organization, post.Label)
	}
	return &created, true, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, label, role, organization, division_id, start_date, end_date
		 FROM posts ORDER BY organization, label`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list posts")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Label, &p.Role, &p.Organization,
			&p.DivisionID, &p.StartDate, &p.EndDate); err != nil {
			return nil, eris.Wrap(err, "postgres: scan post")
		}
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "postgres: list posts iterate")
}

// Elections

const pgElectionCols = `id, name, date, admin_org, statewide, identifiers, sources, types`

func scanPgElection(row scannable) (*model.Election, error) {
	var e model.Election
	var identifiersJSON, sourcesJSON, typesJSON []byte
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.AdminOrg, &e.Statewide,
		&identifiersJSON, &sourcesJSON, &typesJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(identifiersJSON, &e.Identifiers); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal election identifiers")
	}
	if err := json.Unmarshal(sourcesJSON, &e.Sources); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal election sources")
	}
	if err := json.Unmarshal(typesJSON, &e.Types); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal election types")
	}
	return &e, nil
}

func (s *PostgresStore) findElection(ctx context.Context, where string, args ...any) (*model.Election, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgElectionCols+` FROM elections WHERE `+where+` LIMIT 1`, args...)
	e, err := scanPgElection(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: find election")
	}
	return e, true, nil
}

func (s *PostgresStore) FindElectionByIdentifier(ctx context.Context, scrapedID string) (*model.Election, bool, error) {
	needle, err := json.Marshal([]model.Identifier{{Scheme: model.SchemeCalaccessElectionID, Value: scrapedID}})
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: marshal identifier needle")
	}
	return s.findElection(ctx, `identifiers @> $1`, needle)
}

func (s *PostgresStore) FindElectionByName(ctx context.Context, name string) (*model.Election, bool, error) {
	return s.findElection(ctx, `name = $1`, name)
}

func (s *PostgresStore) FindElectionByDate(ctx context.Context, date time.Time) (*model.Election, bool, error) {
	return s.findElection(ctx, `date = $1`, date)
}

func (s *PostgresStore) CreateElection(ctx context.Context, e *model.Election) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	identifiersJSON, sourcesJSON, typesJSON, err := electionJSON(e)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO elections (id, name, date, admin_org, statewide, identifiers, sources, types)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Name, e.Date, e.AdminOrg, e.Statewide,
		[]byte(identifiersJSON), []byte(sourcesJSON), []byte(typesJSON),
	)
	return eris.Wrapf(err, "postgres: insert election %s", e.Name)
}

func (s *PostgresStore) UpdateElection(ctx context.Context, e *model.Election) error {
	identifiersJSON, sourcesJSON, typesJSON, err := electionJSON(e)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE elections SET name = $1, date = $2, admin_org = $3, statewide = $4,
		 identifiers = $5, sources = $6, types = $7 WHERE id = $8`,
		e.Name, e.Date, e.AdminOrg, e.Statewide,
		[]byte(identifiersJSON), []byte(sourcesJSON), []byte(typesJSON), e.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update election %s", e.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("election not found: %s", e.ID)
	}
	return nil
}

func (s *PostgresStore) ListElections(ctx context.Context) ([]model.Election, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgElectionCols+` FROM elections ORDER BY date`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list elections")
	}
	defer rows.Close()

	var elections []model.Election
	for rows.Next() {
		e, err := scanPgElection(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan election")
		}
		elections = append(elections, *e)
	}
	return elections, eris.Wrap(rows.Err(), "postgres: list elections iterate")
}

// Contests

const pgContestCols = `id, election_id, post_id, party_id, name, previous_term_unexpired, runoff_for_contest_id, sources`

func scanPgContest(row scannable) (*model.Contest, error) {
	var c model.Contest
	var sourcesJSON []byte
	err := row.Scan(&c.ID, &c.ElectionID, &c.PostID, &c.PartyID, &c.Name,
		&c.PreviousTermUnexpired, &c.RunoffForContestID, &sourcesJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sourcesJSON, &c.Sources); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal contest sources")
	}
	return &c, nil
}

func (s *PostgresStore) FindContest(ctx context.Context, electionID, name, partyID string, previousTermUnexpired bool) (*model.Contest, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgContestCols+` FROM contests
		 WHERE election_id = $1 AND name = $2 AND party_id = $3 AND previous_term_unexpired = $4`,
		electionID, name, partyID, previousTermUnexpired,
	)
	c, err := scanPgContest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: find contest %s", name)
	}
	return c, true, nil
}

func (s *PostgresStore) CreateContest(ctx context.Context, c *model.Contest) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	sourcesJSON, err := marshalList(c.Sources)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contest sources")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO contests (id, election_id, post_id, party_id, name, previous_term_unexpired, runoff_for_contest_id, sources)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.ElectionID, c.PostID, c.PartyID, c.Name,
		c.PreviousTermUnexpired, c.RunoffForContestID, []byte(sourcesJSON),
	)
	return eris.Wrapf(err, "postgres: insert contest %s", c.Name)
}

func (s *PostgresStore) UpdateContest(ctx context.Context, c *model.Contest) error {
	sourcesJSON, err := marshalList(c.Sources)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contest sources")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE contests SET election_id = $1, post_id = $2, party_id = $3, name = $4,
		 previous_term_unexpired = $5, runoff_for_contest_id = $6, sources = $7 WHERE id = $8`,
		c.ElectionID, c.PostID, c.PartyID, c.Name,
		c.PreviousTermUnexpired, c.RunoffForContestID, []byte(sourcesJSON), c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contest %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("contest not found: %s", c.ID)
	}
	return nil
}

func (s *PostgresStore) ListContests(ctx context.Context) ([]model.Contest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgContestCols+` FROM contests ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contests")
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		c, err := scanPgContest(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contest")
		}
		contests = append(contests, *c)
	}
	return contests, eris.Wrap(rows.Err(), "postgres: list contests iterate")
}

// Persons

const pgPersonCols = `id, name, sort_name, family_name, given_name, other_names, identifiers, created_at, updated_at`

func scanPgPerson(row scannable) (*model.Person, error) {
	var p model.Person
	var otherNamesJSON, identifiersJSON []byte
	err := row.Scan(&p.ID, &p.Name, &p.SortName, &p.FamilyName, &p.GivenName,
		&otherNamesJSON, &identifiersJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(otherNamesJSON, &p.OtherNames); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal other names")
	}
	if err := json.Unmarshal(identifiersJSON, &p.Identifiers); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal identifiers")
	}
	return &p, nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgPersonCols+` FROM persons WHERE id = $1`, id)
	p, err := scanPgPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("person not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get person %s", id)
	}
	return p, nil
}

func (s *PostgresStore) FindPersonByFilerID(ctx context.Context, filerID string) (*model.Person, bool, error) {
	needle, err := json.Marshal([]model.Identifier{{Scheme: model.SchemeCalaccessFilerID, Value: filerID}})
	if err != nil {
		return nil, false, eris.Wrap(err, "postgres: marshal identifier needle")
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgPersonCols+` FROM persons WHERE identifiers @> $1 LIMIT 1`,
		needle,
	)
	p, err := scanPgPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: find person by filer id %s", filerID)
	}
	return p, true, nil
}

func (s *PostgresStore) CreatePerson(ctx context.Context, p *model.Person) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	otherNamesJSON, err := marshalList(p.OtherNames)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal other names")
	}
	identifiersJSON, err := marshalList(p.Identifiers)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal identifiers")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO persons (id, name, sort_name, family_name, given_name, other_names, identifiers, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Name, p.SortName, p.FamilyName, p.GivenName,
		[]byte(otherNamesJSON), []byte(identifiersJSON), p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert person %s", p.Name)
}

func (s *PostgresStore) UpdatePerson(ctx context.Context, p *model.Person) error {
	p.UpdatedAt = time.Now().UTC()

	otherNamesJSON, err := marshalList(p.OtherNames)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal other names")
	}
	identifiersJSON, err := marshalList(p.Identifiers)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal identifiers")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE persons SET name = $1, sort_name = $2, family_name = $3, given_name = $4,
		 other_names = $5, identifiers = $6, updated_at = $7 WHERE id = $8`,
		p.Name, p.SortName, p.FamilyName, p.GivenName,
		[]byte(otherNamesJSON), []byte(identifiersJSON), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update person %s", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("person not found: %s", p.ID)
	}
	return nil
}

func (s *PostgresStore) ListPersons(ctx context.Context) ([]model.Person, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPersonCols+` FROM persons ORDER BY sort_name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list persons")
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		p, err := scanPgPerson(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan person")
		}
		persons = append(persons, *p)
	}
	return persons, eris.Wrap(rows.Err(), "postgres: list persons iterate")
}

// Candidacies

const pgCandidacyQuery = `
SELECT c.id, c.contest_id, c.person_id, c.ballot_name, c.post_id, c.party_id,
       c.filed_date, c.is_incumbent, c.registration_status, c.form501_filing_ids, e.date
FROM candidacies c
JOIN contests ct ON ct.id = c.contest_id
JOIN elections e ON e.id = ct.election_id`

func scanPgCandidacy(row scannable) (*model.Candidacy, error) {
	var c model.Candidacy
	var filedDate *time.Time
	var form501JSON []byte

	err := row.Scan(&c.ID, &c.ContestID, &c.PersonID, &c.BallotName, &c.PostID, &c.PartyID,
		&filedDate, &c.IsIncumbent, &c.RegistrationStatus, &form501JSON, &c.ElectionDate)
	if err != nil {
		return nil, err
	}
	c.FiledDate = filedDate
	if err := json.Unmarshal(form501JSON, &c.Form501FilingIDs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal form501 ids")
	}
	return &c, nil
}

func (s *PostgresStore) listCandidacies(ctx context.Context, where string, args ...any) ([]model.Candidacy, error) {
	query := pgCandidacyQuery
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list candidacies")
	}
	defer rows.Close()

	var cands []model.Candidacy
	for rows.Next() {
		c, err := scanPgCandidacy(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidacy")
		}
		cands = append(cands, *c)
	}
	return cands, eris.Wrap(rows.Err(), "postgres: list candidacies iterate")
}

func (s *PostgresStore) ListContestCandidacies(ctx context.Context, contestID string) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, `c.contest_id = $1`, contestID)
}

func (s *PostgresStore) ListPersonCandidacies(ctx context.Context, personID string) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, `c.person_id = $1`, personID)
}

func (s *PostgresStore) ListCandidacies(ctx context.Context) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, "")
}

func (s *PostgresStore) CreateCandidacy(ctx context.Context, c *model.Candidacy) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	form501JSON, err := marshalList(c.Form501FilingIDs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal form501 ids")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidacies (id, contest_id, person_id, ballot_name, post_id, party_id, filed_date, is_incumbent, registration_status, form501_filing_ids)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.ContestID, c.PersonID, c.BallotName, c.PostID, c.PartyID,
		c.FiledDate, c.IsIncumbent, string(c.RegistrationStatus), []byte(form501JSON),
	)
	return eris.Wrapf(err, "postgres: insert candidacy %s", c.BallotName)
}

func (s *PostgresStore) UpdateCandidacy(ctx context.Context, c *model.Candidacy) error {
	form501JSON, err := marshalList(c.Form501FilingIDs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal form501 ids")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE candidacies SET ballot_name = $1, post_id = $2, party_id = $3, filed_date = $4,
		 is_incumbent = $5, registration_status = $6, form501_filing_ids = $7 WHERE id = $8`,
		c.BallotName, c.PostID, c.PartyID, c.FiledDate,
		c.IsIncumbent, string(c.RegistrationStatus), []byte(form501JSON), c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update candidacy %s", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("candidacy not found: %s", c.ID)
	}
	return nil
}

// Raw CAL-ACCESS records

func (s *PostgresStore) ListScrapedElections(ctx context.Context) ([]model.ScrapedElection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT scraped_id, name, date, sort_index, url, scraped_at
		 FROM calaccess_scraped_elections ORDER BY sort_index, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scraped elections")
	}
	defer rows.Close()

	var elections []model.ScrapedElection
	for rows.Next() {
		var se model.ScrapedElection
		var dateStr *string
		if err := rows.Scan(&se.ScrapedID, &se.Name, &dateStr, &se.SortIndex, &se.URL, &se.ScrapedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan scraped election")
		}
		se.Date, err = parseDateString(dateStr)
		if err != nil {
			return nil, err
		}
		elections = append(elections, se)
	}
	return elections, eris.Wrap(rows.Err(), "postgres: list scraped elections iterate")
}

func (s *PostgresStore) ListScrapedCandidates(ctx context.Context) ([]model.ScrapedCandidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.name, c.scraped_id, c.office_name, c.election_name, c.url, c.scraped_at,
		        COALESCE(e.scraped_id, ''), e.date
		 FROM calaccess_scraped_candidates c
		 LEFT JOIN calaccess_scraped_elections e ON e.name = c.election_name
		 ORDER BY c.election_name, c.office_name, c.name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scraped candidates")
	}
	defer rows.Close()

	var cands []model.ScrapedCandidate
	for rows.Next() {
		var sc model.ScrapedCandidate
		var dateStr *string
		if err := rows.Scan(&sc.Name, &sc.ScrapedID, &sc.OfficeName, &sc.ElectionName,
			&sc.URL, &sc.ScrapedAt, &sc.ElectionScrapedID, &dateStr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan scraped candidate")
		}
		sc.ElectionDate, err = parseDateString(dateStr)
		if err != nil {
			return nil, err
		}
		cands = append(cands, sc)
	}
	return cands, eris.Wrap(rows.Err(), "postgres: list scraped candidates iterate")
}

const pgForm501Cols = `filing_id, filer_id, office, district, election_year, election_type, party,
       last_name, first_name, middle_name, suffix, date_filed, statement_type`

func scanPgForm501(row scannable) (*model.Form501Filing, error) {
	var f model.Form501Filing
	var district *int
	var dateFiled *string

	err := row.Scan(&f.FilingID, &f.FilerID, &f.Office, &district, &f.ElectionYear,
		&f.ElectionType, &f.Party, &f.LastName, &f.FirstName, &f.MiddleName,
		&f.Suffix, &dateFiled, &f.StatementType)
	if err != nil {
		return nil, err
	}
	f.District = district
	f.DateFiled, err = parseDateString(dateFiled)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) ListForm501Filings(ctx context.Context, filter Form501Filter) ([]model.Form501Filing, error) {
	query := `SELECT ` + pgForm501Cols + ` FROM calaccess_form501_filings WHERE true`
	args := []any{}
	argIdx := 1

	if filter.FilerID != "" {
		query += fmt.Sprintf(` AND filer_id = $%d`, argIdx)
		args = append(args, filter.FilerID)
		argIdx++
	}
	if filter.Office != "" {
		query += fmt.Sprintf(` AND office = $%d`, argIdx)
		args = append(args, filter.Office)
		argIdx++
	}
	if filter.District != nil {
		query += fmt.Sprintf(` AND district = $%d`, argIdx)
		args = append(args, *filter.District)
		argIdx++
	}
	if filter.MaxYear > 0 {
		query += fmt.Sprintf(` AND election_year <= $%d`, argIdx)
		args = append(args, filter.MaxYear)
	}
	query += ` ORDER BY filing_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list form501 filings")
	}
	defer rows.Close()

	var filings []model.Form501Filing
	for rows.Next() {
		f, err := scanPgForm501(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan form501")
		}
		filings = append(filings, *f)
	}
	return filings, eris.Wrap(rows.Err(), "postgres: list form501 iterate")
}

func (s *PostgresStore) GetForm501Filing(ctx context.Context, filingID string) (*model.Form501Filing, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgForm501Cols+` FROM calaccess_form501_filings WHERE filing_id = $1`,
		filingID,
	)
	f, err := scanPgForm501(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "postgres: get form501 %s", filingID)
	}
	return f, true, nil
}

func (s *PostgresStore) ListForm497Filings(ctx context.Context) ([]model.Form497Filing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT filing_id, line_item, filer_id, filer_name, amount, transaction_date, contributor_name
		 FROM calaccess_form497_filings ORDER BY filing_id, line_item`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list form497 filings")
	}
	defer rows.Close()

	var filings []model.Form497Filing
	for rows.Next() {
		var f model.Form497Filing
		var amountStr string
		var txnDate *string
		if err := rows.Scan(&f.FilingID, &f.LineItem, &f.FilerID, &f.FilerName,
			&amountStr, &txnDate, &f.ContributorName); err != nil {
			return nil, eris.Wrap(err, "postgres: scan form497")
		}
		f.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: parse amount %q", amountStr)
		}
		f.TransactionDate, err = parseDateString(txnDate)
		if err != nil {
			return nil, err
		}
		filings = append(filings, f)
	}
	return filings, eris.Wrap(rows.Err(), "postgres: list form497 iterate")
}

func (s *PostgresStore) FilerPartyAsOf(ctx context.Context, filerID string, asOf time.Time) (string, bool, error) {
	var party string
	err := s.pool.QueryRow(ctx,
		`SELECT party_name FROM calaccess_filer_party_spans
		 WHERE filer_id = $1 AND effective_date <= $2
		 ORDER BY effective_date DESC LIMIT 1`,
		filerID, asOf.Format(dateLayout),
	).Scan(&party)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: filer party as of %s", filerID)
	}
	return party, true, nil
}

// Raw loads

func (s *PostgresStore) UpsertRows(ctx context.Context, cfg db.UpsertConfig, rows [][]any) (int64, error) {
	return db.BulkUpsert(ctx, s.pool, cfg, rows)
}

// Sync bookkeeping

func (s *PostgresStore) GetSyncState(ctx context.Context, dataset string) (*model.SyncState, error) {
	var st model.SyncState
	err := s.pool.QueryRow(ctx,
		`SELECT dataset, last_sync_at, rows_synced, status, error FROM sync_state WHERE dataset = $1`,
		dataset,
	).Scan(&st.Dataset, &st.LastSyncAt, &st.RowsSynced, &st.Status, &st.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get sync state %s", dataset)
	}
	return &st, nil
}

func (s *PostgresStore) ListSyncStates(ctx context.Context) ([]model.SyncState, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT dataset, last_sync_at, rows_synced, status, error FROM sync_state ORDER BY dataset`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sync states")
	}
	defer rows.Close()

	var states []model.SyncState
	for rows.Next() {
		var st model.SyncState
		if err := rows.Scan(&st.Dataset, &st.LastSyncAt, &st.RowsSynced, &st.Status, &st.Error); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sync state")
		}
		states = append(states, st)
	}
	return states, eris.Wrap(rows.Err(), "postgres: list sync states iterate")
}

func (s *PostgresStore) RecordSyncState(ctx context.Context, state model.SyncState) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_state (dataset, last_sync_at, rows_synced, status, error)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (dataset) DO UPDATE SET
		   last_sync_at = excluded.last_sync_at, rows_synced = excluded.rows_synced,
		   status = excluded.status, error = excluded.error`,
		state.Dataset, state.LastSyncAt, state.RowsSynced, state.Status, state.Error,
	)
	return eris.Wrapf(err, "postgres: record sync state %s", state.Dataset)
}

// Counts returns per-table row counts.
func (s *PostgresStore) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(countedTables))
	for _, table := range countedTables {
		var n int64
		if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "postgres: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

func parseDateString(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, eris.Wrapf(err, "parse date %q", *s)
	}
	return &t, nil
}
