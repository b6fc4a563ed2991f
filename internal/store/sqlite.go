package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/model"
)

// dateLayout is the on-disk format for DATE-valued TEXT columns.
const dateLayout = "2006-01-02"

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sdb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			sdb.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sdb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS parties (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	abbreviation TEXT NOT NULL DEFAULT '',
	is_write_in  INTEGER NOT NULL DEFAULT 0
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
	division_id  TEXT NOT NULL DEFAULT '' REFERENCES divisions(id),
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
	other_names TEXT NOT NULL DEFAULT '[]',
	identifiers TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS elections (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	date        TEXT NOT NULL,
	admin_org   TEXT NOT NULL DEFAULT '',
	statewide   INTEGER NOT NULL DEFAULT 1,
	identifiers TEXT NOT NULL DEFAULT '[]',
	sources     TEXT NOT NULL DEFAULT '[]',
	types       TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS contests (
	id                      TEXT PRIMARY KEY,
	election_id             TEXT NOT NULL REFERENCES elections(id),
	post_id                 TEXT NOT NULL REFERENCES posts(id),
	party_id                TEXT NOT NULL DEFAULT '',
	name                    TEXT NOT NULL,
	previous_term_unexpired INTEGER NOT NULL DEFAULT 0,
	runoff_for_contest_id   TEXT NOT NULL DEFAULT '',
	sources                 TEXT NOT NULL DEFAULT '[]',
	UNIQUE (election_id, name, party_id, previous_term_unexpired)
);

CREATE TABLE IF NOT EXISTS candidacies (
	id                  TEXT PRIMARY KEY,
	contest_id          TEXT NOT NULL REFERENCES contests(id),
	person_id           TEXT NOT NULL REFERENCES persons(id),
	ballot_name         TEXT NOT NULL,
	post_id             TEXT NOT NULL DEFAULT '',
	party_id            TEXT NOT NULL DEFAULT '',
	filed_date          TEXT,
	is_incumbent        INTEGER NOT NULL DEFAULT 0,
	registration_status TEXT NOT NULL DEFAULT 'filed',
	form501_filing_ids  TEXT NOT NULL DEFAULT '[]',
	UNIQUE (contest_id, person_id)
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_elections (
	scraped_id TEXT NOT NULL DEFAULT '',
	name       TEXT PRIMARY KEY,
	date       TEXT,
	sort_index INTEGER NOT NULL DEFAULT 0,
	url        TEXT NOT NULL DEFAULT '',
	scraped_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_candidates (
	election_name TEXT NOT NULL,
	office_name   TEXT NOT NULL,
	name          TEXT NOT NULL,
	scraped_id    TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	scraped_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (election_name, office_name, name)
);

CREATE TABLE IF NOT EXISTS calaccess_scraped_propositions (
	scraped_id    TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	election_name TEXT NOT NULL DEFAULT '',
	url           TEXT NOT NULL DEFAULT '',
	scraped_at    DATETIME NOT NULL DEFAULT (datetime('now'))
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
	last_sync_at DATETIME,
	rows_synced  INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_contests_election ON contests(election_id);
CREATE INDEX IF NOT EXISTS idx_candidacies_contest ON candidacies(contest_id);
CREATE INDEX IF NOT EXISTS idx_candidacies_person ON candidacies(person_id);
CREATE INDEX IF NOT EXISTS idx_form501_filer ON calaccess_form501_filings(filer_id);
CREATE INDEX IF NOT EXISTS idx_form501_office ON calaccess_form501_filings(office, district);
CREATE INDEX IF NOT EXISTS idx_party_spans_filer ON calaccess_filer_party_spans(filer_id, effective_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	for _, d := range seedDivisions() {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO divisions (id, name, subtype, district) VALUES (?, ?, ?, ?)
			 ON CONFLICT (id) DO NOTHING`,
			d.ID, d.Name, d.Subtype, d.District,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed division %s", d.ID)
		}
	}
	for _, name := range seedPartyNames {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO parties (id, name, abbreviation) VALUES (?, ?, ?)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New().String(), name, model.PartyAbbreviation(name),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed party %s", name)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Parties

func (s *SQLiteStore) GetOrCreateParty(ctx context.Context, name string) (*model.Party, bool, error) {
	var p model.Party
	var writeIn int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation, is_write_in FROM parties WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &p.Abbreviation, &writeIn)
	if err == nil {
		p.IsWriteIn = writeIn != 0
		return &p, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, eris.Wrapf(err, "sqlite: get party %s", name)
	}

	p = model.Party{
		ID:           uuid.New().String(),
		Name:         name,
		Abbreviation: model.PartyAbbreviation(name),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parties (id, name, abbreviation, is_write_in) VALUES (?, ?, ?, 0)
		 ON CONFLICT (name) DO NOTHING`,
		p.ID, p.Name, p.Abbreviation,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: insert party %s", name)
	}
	// Re-read in case a concurrent insert won the conflict.
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, abbreviation, is_write_in FROM parties WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &p.Abbreviation, &writeIn)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: reread party %s", name)
	}
	p.IsWriteIn = writeIn != 0
	return &p, true, nil
}

func (s *SQLiteStore) ListParties(ctx context.Context) ([]model.Party, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, abbreviation, is_write_in FROM parties ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list parties")
	}
	defer rows.Close()

	var parties []model.Party
	for rows.Next() {
		var p model.Party
		var writeIn int
		if err := rows.Scan(&p.ID, &p.Name, &p.Abbreviation, &writeIn); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan party")
		}
		p.IsWriteIn = writeIn != 0
		parties = append(parties, p)
	}
	return parties, eris.Wrap(rows.Err(), "sqlite: list parties iterate")
}

// Divisions and posts

func (s *SQLiteStore) FindDivision(ctx context.Context, subtype string, district int) (*model.Division, bool, error) {
	var d model.Division
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, subtype, district FROM divisions WHERE subtype = ? AND district = ?`,
		subtype, district,
	).Scan(&d.ID, &d.Name, &d.Subtype, &d.District)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: find division %s %d", subtype, district)
	}
	return &d, true, nil
}

func (s *SQLiteStore) GetOrCreatePost(ctx context.Context, post *model.Post) (*model.Post, bool, error) {
	var existing model.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, role, organization, division_id, start_date, end_date
		 FROM posts WHERE organization = ? AND label = ?`,
		post.Organization, post.Label,
	).Scan(&existing.ID, &existing.Label, &existing.Role, &existing.Organization,
		&existing.DivisionID, &existing.StartDate, &existing.EndDate)
	if err == nil {
		return &existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, eris.Wrapf(err, "sqlite: get post %s / %s", post.Organization, post.Label)
	}

	created := *post
	created.ID = uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (id, label, role, organization, division_id, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Label, created.Role, created.Organization,
		created.DivisionID, created.StartDate, created.EndDate,
	)
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: insert post %s / %s", post.Organization, post.Label)
	}
	return &created, true, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, role, organization, division_id, start_date, end_date
		 FROM posts ORDER BY organization, label`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list posts")
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Label, &p.Role, &p.Organization,
			&p.DivisionID, &p.StartDate, &p.EndDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan post")
		}
		posts = append(posts, p)
	}
	return posts, eris.Wrap(rows.Err(), "sqlite: list posts iterate")
}

// Elections

const sqliteElectionCols = `id, name, date, admin_org, statewide, identifiers, sources, types`

func (s *SQLiteStore) scanElection(row scannable) (*model.Election, error) {
	var e model.Election
	var dateStr string
	var statewide int
	var identifiersJSON, sourcesJSON, typesJSON string

	err := row.Scan(&e.ID, &e.Name, &dateStr, &e.AdminOrg, &statewide,
		&identifiersJSON, &sourcesJSON, &typesJSON)
	if err != nil {
		return nil, err
	}
	e.Statewide = statewide != 0
	e.Date, err = time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse election date %q", dateStr)
	}
	if err := json.Unmarshal([]byte(identifiersJSON), &e.Identifiers); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal election identifiers")
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &e.Sources); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal election sources")
	}
	if err := json.Unmarshal([]byte(typesJSON), &e.Types); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal election types")
	}
	return &e, nil
}

func (s *SQLiteStore) findElection(ctx context.Context, where string, args ...any) (*model.Election, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteElectionCols+` FROM elections WHERE `+where+` LIMIT 1`, args...)
	e, err := s.scanElection(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "sqlite: find election")
	}
	return e, true, nil
}

func (s *SQLiteStore) FindElectionByIdentifier(ctx context.Context, scrapedID string) (*model.Election, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.name, e.date, e.admin_org, e.statewide, e.identifiers, e.sources, e.types
		 FROM elections e, json_each(e.identifiers) ji
		 WHERE json_extract(ji.value, '$.scheme') = ? AND json_extract(ji.value, '$.value') = ?
		 LIMIT 1`,
		model.SchemeCalaccessElectionID, scrapedID,
	)
	e, err := s.scanElection(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: find election by identifier %s", scrapedID)
	}
	return e, true, nil
}

func (s *SQLiteStore) FindElectionByName(ctx context.Context, name string) (*model.Election, bool, error) {
	return s.findElection(ctx, `name = ?`, name)
}

func (s *SQLiteStore) FindElectionByDate(ctx context.Context, date time.Time) (*model.Election, bool, error) {
	return s.findElection(ctx, `date = ?`, date.Format(dateLayout))
}

func (s *SQLiteStore) CreateElection(ctx context.Context, e *model.Election) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	identifiersJSON, sourcesJSON, typesJSON, err := electionJSON(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO elections (id, name, date, admin_org, statewide, identifiers, sources, types)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Date.Format(dateLayout), e.AdminOrg, boolInt(e.Statewide),
		identifiersJSON, sourcesJSON, typesJSON,
	)
	return eris.Wrapf(err, "sqlite: insert election %s", e.Name)
}

func (s *SQLiteStore) UpdateElection(ctx context.Context, e *model.Election) error {
	identifiersJSON, sourcesJSON, typesJSON, err := electionJSON(e)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE elections SET name = ?, date = ?, admin_org = ?, statewide = ?,
		 identifiers = ?, sources = ?, types = ? WHERE id = ?`,
		e.Name, e.Date.Format(dateLayout), e.AdminOrg, boolInt(e.Statewide),
		identifiersJSON, sourcesJSON, typesJSON, e.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update election %s", e.ID)
	}
	return checkRowsAffected(res, "election", e.ID)
}

func (s *SQLiteStore) ListElections(ctx context.Context) ([]model.Election, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteElectionCols+` FROM elections ORDER BY date`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list elections")
	}
	defer rows.Close()

	var elections []model.Election
	for rows.Next() {
		e, err := s.scanElection(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan election")
		}
		elections = append(elections, *e)
	}
	return elections, eris.Wrap(rows.Err(), "sqlite: list elections iterate")
}

// Contests

const sqliteContestCols = `id, election_id, post_id, party_id, name, previous_term_unexpired, runoff_for_contest_id, sources`

func (s *SQLiteStore) scanContest(row scannable) (*model.Contest, error) {
	var c model.Contest
	var prevUnexpired int
	var sourcesJSON string
	err := row.Scan(&c.ID, &c.ElectionID, &c.PostID, &c.PartyID, &c.Name,
		&prevUnexpired, &c.RunoffForContestID, &sourcesJSON)
	if err != nil {
		return nil, err
	}
	c.PreviousTermUnexpired = prevUnexpired != 0
	if err := json.Unmarshal([]byte(sourcesJSON), &c.Sources); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal contest sources")
	}
	return &c, nil
}

func (s *SQLiteStore) FindContest(ctx context.Context, electionID, name, partyID string, previousTermUnexpired bool) (*model.Contest, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteContestCols+` FROM contests
		 WHERE election_id = ? AND name = ? AND party_id = ? AND previous_term_unexpired = ?`,
		electionID, name, partyID, boolInt(previousTermUnexpired),
	)
	c, err := s.scanContest(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: find contest %s", name)
	}
	return c, true, nil
}

func (s *SQLiteStore) CreateContest(ctx context.Context, c *model.Contest) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	sourcesJSON, err := marshalList(c.Sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contest sources")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO contests (id, election_id, post_id, party_id, name, previous_term_unexpired, runoff_for_contest_id, sources)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ElectionID, c.PostID, c.PartyID, c.Name,
		boolInt(c.PreviousTermUnexpired), c.RunoffForContestID, sourcesJSON,
	)
	return eris.Wrapf(err, "sqlite: insert contest %s", c.Name)
}

func (s *SQLiteStore) UpdateContest(ctx context.Context, c *model.Contest) error {
	sourcesJSON, err := marshalList(c.Sources)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contest sources")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contests SET election_id = ?, post_id = ?, party_id = ?, name = ?,
		 previous_term_unexpired = ?, runoff_for_contest_id = ?, sources = ? WHERE id = ?`,
		c.ElectionID, c.PostID, c.PartyID, c.Name,
		boolInt(c.PreviousTermUnexpired), c.RunoffForContestID, sourcesJSON, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contest %s", c.ID)
	}
	return checkRowsAffected(res, "contest", c.ID)
}

func (s *SQLiteStore) ListContests(ctx context.Context) ([]model.Contest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteContestCols+` FROM contests ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contests")
	}
	defer rows.Close()

	var contests []model.Contest
	for rows.Next() {
		c, err := s.scanContest(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contest")
		}
		contests = append(contests, *c)
	}
	return contests, eris.Wrap(rows.Err(), "sqlite: list contests iterate")
}

// Persons

const sqlitePersonCols = `id, name, sort_name, family_name, given_name, other_names, identifiers, created_at, updated_at`

func (s *SQLiteStore) scanPerson(row scannable) (*model.Person, error) {
	var p model.Person
	var otherNamesJSON, identifiersJSON string
	err := row.Scan(&p.ID, &p.Name, &p.SortName, &p.FamilyName, &p.GivenName,
		&otherNamesJSON, &identifiersJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(otherNamesJSON), &p.OtherNames); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal other names")
	}
	if err := json.Unmarshal([]byte(identifiersJSON), &p.Identifiers); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal identifiers")
	}
	return &p, nil
}

func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePersonCols+` FROM persons WHERE id = ?`, id)
	p, err := s.scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("person not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get person %s", id)
	}
	return p, nil
}

func (s *SQLiteStore) FindPersonByFilerID(ctx context.Context, filerID string) (*model.Person, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.name, p.sort_name, p.family_name, p.given_name, p.other_names, p.identifiers, p.created_at, p.updated_at
		 FROM persons p, json_each(p.identifiers) ji
		 WHERE json_extract(ji.value, '$.scheme') = ? AND json_extract(ji.value, '$.value') = ?
		 LIMIT 1`,
		model.SchemeCalaccessFilerID, filerID,
	)
	p, err := s.scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: find person by filer id %s", filerID)
	}
	return p, true, nil
}

func (s *SQLiteStore) CreatePerson(ctx context.Context, p *model.Person) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	otherNamesJSON, err := marshalList(p.OtherNames)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal other names")
	}
	identifiersJSON, err := marshalList(p.Identifiers)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal identifiers")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO persons (id, name, sort_name, family_name, given_name, other_names, identifiers, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SortName, p.FamilyName, p.GivenName,
		otherNamesJSON, identifiersJSON, p.CreatedAt, p.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert person %s", p.Name)
}

func (s *SQLiteStore) UpdatePerson(ctx context.Context, p *model.Person) error {
	p.UpdatedAt = time.Now().UTC()

	otherNamesJSON, err := marshalList(p.OtherNames)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal other names")
	}
	identifiersJSON, err := marshalList(p.Identifiers)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal identifiers")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET name = ?, sort_name = ?, family_name = ?, given_name = ?,
		 other_names = ?, identifiers = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.SortName, p.FamilyName, p.GivenName,
		otherNamesJSON, identifiersJSON, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update person %s", p.ID)
	}
	return checkRowsAffected(res, "person", p.ID)
}

func (s *SQLiteStore) ListPersons(ctx context.Context) ([]model.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqlitePersonCols+` FROM persons ORDER BY sort_name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list persons")
	}
	defer rows.Close()

	var persons []model.Person
	for rows.Next() {
		p, err := s.scanPerson(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan person")
		}
		persons = append(persons, *p)
	}
	return persons, eris.Wrap(rows.Err(), "sqlite: list persons iterate")
}

// Candidacies

const sqliteCandidacyQuery = `
SELECT c.id, c.contest_id, c.person_id, c.ballot_name, c.post_id, c.party_id,
       c.filed_date, c.is_incumbent, c.registration_status, c.form501_filing_ids, e.date
FROM candidacies c
JOIN contests ct ON ct.id = c.contest_id
JOIN elections e ON e.id = ct.election_id`

func (s *SQLiteStore) scanCandidacy(row scannable) (*model.Candidacy, error) {
	var c model.Candidacy
	var filedDate sql.NullString
	var isIncumbent int
	var form501JSON, electionDate string

	err := row.Scan(&c.ID, &c.ContestID, &c.PersonID, &c.BallotName, &c.PostID, &c.PartyID,
		&filedDate, &isIncumbent, &c.RegistrationStatus, &form501JSON, &electionDate)
	if err != nil {
		return nil, err
	}
	c.IsIncumbent = isIncumbent != 0
	if filedDate.Valid {
		d, err := time.Parse(dateLayout, filedDate.String)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse filed date %q", filedDate.String)
		}
		c.FiledDate = &d
	}
	c.ElectionDate, err = time.Parse(dateLayout, electionDate)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: parse election date %q", electionDate)
	}
	if err := json.Unmarshal([]byte(form501JSON), &c.Form501FilingIDs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal form501 ids")
	}
	return &c, nil
}

func (s *SQLiteStore) listCandidacies(ctx context.Context, where string, args ...any) ([]model.Candidacy, error) {
	query := sqliteCandidacyQuery
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list candidacies")
	}
	defer rows.Close()

	var cands []model.Candidacy
	for rows.Next() {
		c, err := s.scanCandidacy(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan candidacy")
		}
		cands = append(cands, *c)
	}
	return cands, eris.Wrap(rows.Err(), "sqlite: list candidacies iterate")
}

func (s *SQLiteStore) ListContestCandidacies(ctx context.Context, contestID string) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, `c.contest_id = ?`, contestID)
}

func (s *SQLiteStore) ListPersonCandidacies(ctx context.Context, personID string) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, `c.person_id = ?`, personID)
}

func (s *SQLiteStore) ListCandidacies(ctx context.Context) ([]model.Candidacy, error) {
	return s.listCandidacies(ctx, "")
}

func (s *SQLiteStore) CreateCandidacy(ctx context.Context, c *model.Candidacy) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	form501JSON, err := marshalList(c.Form501FilingIDs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal form501 ids")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO candidacies (id, contest_id, person_id, ballot_name, post_id, party_id, filed_date, is_incumbent, registration_status, form501_filing_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ContestID, c.PersonID, c.BallotName, c.PostID, c.PartyID,
		formatDatePtr(c.FiledDate), boolInt(c.IsIncumbent), string(c.RegistrationStatus), form501JSON,
	)
	return eris.Wrapf(err, "sqlite: insert candidacy %s", c.BallotName)
}

func (s *SQLiteStore) UpdateCandidacy(ctx context.Context, c *model.Candidacy) error {
	form501JSON, err := marshalList(c.Form501FilingIDs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal form501 ids")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidacies SET ballot_name = ?, post_id = ?, party_id = ?, filed_date = ?,
		 is_incumbent = ?, registration_status = ?, form501_filing_ids = ? WHERE id = ?`,
		c.BallotName, c.PostID, c.PartyID, formatDatePtr(c.FiledDate),
		boolInt(c.IsIncumbent), string(c.RegistrationStatus), form501JSON, c.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update candidacy %s", c.ID)
	}
	return checkRowsAffected(res, "candidacy", c.ID)
}

// Raw CAL-ACCESS records

func (s *SQLiteStore) ListScrapedElections(ctx context.Context) ([]model.ScrapedElection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scraped_id, name, date, sort_index, url, scraped_at
		 FROM calaccess_scraped_elections ORDER BY sort_index, name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scraped elections")
	}
	defer rows.Close()

	var elections []model.ScrapedElection
	for rows.Next() {
		var se model.ScrapedElection
		var dateStr sql.NullString
		if err := rows.Scan(&se.ScrapedID, &se.Name, &dateStr, &se.SortIndex, &se.URL, &se.ScrapedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scraped election")
		}
		se.Date, err = parseDatePtr(dateStr)
		if err != nil {
			return nil, err
		}
		elections = append(elections, se)
	}
	return elections, eris.Wrap(rows.Err(), "sqlite: list scraped elections iterate")
}

func (s *SQLiteStore) ListScrapedCandidates(ctx context.Context) ([]model.ScrapedCandidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.name, c.scraped_id, c.office_name, c.election_name, c.url, c.scraped_at,
		        e.scraped_id, e.date
		 FROM calaccess_scraped_candidates c
		 LEFT JOIN calaccess_scraped_elections e ON e.name = c.election_name
		 ORDER BY c.election_name, c.office_name, c.name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scraped candidates")
	}
	defer rows.Close()

	var cands []model.ScrapedCandidate
	for rows.Next() {
		var sc model.ScrapedCandidate
		var electionScrapedID, dateStr sql.NullString
		if err := rows.Scan(&sc.Name, &sc.ScrapedID, &sc.OfficeName, &sc.ElectionName,
			&sc.URL, &sc.ScrapedAt, &electionScrapedID, &dateStr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scraped candidate")
		}
		sc.ElectionScrapedID = electionScrapedID.String
		sc.ElectionDate, err = parseDatePtr(dateStr)
		if err != nil {
			return nil, err
		}
		cands = append(cands, sc)
	}
	return cands, eris.Wrap(rows.Err(), "sqlite: list scraped candidates iterate")
}

const sqliteForm501Cols = `filing_id, filer_id, office, district, election_year, election_type, party,
       last_name, first_name, middle_name, suffix, date_filed, statement_type`

func scanForm501(row scannable) (*model.Form501Filing, error) {
	var f model.Form501Filing
	var district sql.NullInt64
	var dateFiled sql.NullString

	err := row.Scan(&f.FilingID, &f.FilerID, &f.Office, &district, &f.ElectionYear,
		&f.ElectionType, &f.Party, &f.LastName, &f.FirstName, &f.MiddleName,
		&f.Suffix, &dateFiled, &f.StatementType)
	if err != nil {
		return nil, err
	}
	if district.Valid {
		d := int(district.Int64)
		f.District = &d
	}
	f.DateFiled, err = parseDatePtr(dateFiled)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *SQLiteStore) ListForm501Filings(ctx context.Context, filter Form501Filter) ([]model.Form501Filing, error) {
	query := `SELECT ` + sqliteForm501Cols + ` FROM calaccess_form501_filings WHERE 1=1`
	var args []any

	if filter.FilerID != "" {
		query += ` AND filer_id = ?`
		args = append(args, filter.FilerID)
	}
	if filter.Office != "" {
		query += ` AND office = ?`
		args = append(args, filter.Office)
	}
	if filter.District != nil {
		query += ` AND district = ?`
		args = append(args, *filter.District)
	}
	if filter.MaxYear > 0 {
		query += ` AND election_year <= ?`
		args = append(args, filter.MaxYear)
	}
	query += ` ORDER BY filing_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list form501 filings")
	}
	defer rows.Close()

	var filings []model.Form501Filing
	for rows.Next() {
		f, err := scanForm501(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan form501")
		}
		filings = append(filings, *f)
	}
	return filings, eris.Wrap(rows.Err(), "sqlite: list form501 iterate")
}

func (s *SQLiteStore) GetForm501Filing(ctx context.Context, filingID string) (*model.Form501Filing, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteForm501Cols+` FROM calaccess_form501_filings WHERE filing_id = ?`,
		filingID,
	)
	f, err := scanForm501(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: get form501 %s", filingID)
	}
	return f, true, nil
}

func (s *SQLiteStore) ListForm497Filings(ctx context.Context) ([]model.Form497Filing, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filing_id, line_item, filer_id, filer_name, amount, transaction_date, contributor_name
		 FROM calaccess_form497_filings ORDER BY filing_id, line_item`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list form497 filings")
	}
	defer rows.Close()

	var filings []model.Form497Filing
	for rows.Next() {
		var f model.Form497Filing
		var amountStr string
		var txnDate sql.NullString
		if err := rows.Scan(&f.FilingID, &f.LineItem, &f.FilerID, &f.FilerName,
			&amountStr, &txnDate, &f.ContributorName); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan form497")
		}
		f.Amount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse amount %q", amountStr)
		}
		f.TransactionDate, err = parseDatePtr(txnDate)
		if err != nil {
			return nil, err
		}
		filings = append(filings, f)
	}
	return filings, eris.Wrap(rows.Err(), "sqlite: list form497 iterate")
}

func (s *SQLiteStore) FilerPartyAsOf(ctx context.Context, filerID string, asOf time.Time) (string, bool, error) {
	var party string
	err := s.db.QueryRowContext(ctx,
		`SELECT party_name FROM calaccess_filer_party_spans
		 WHERE filer_id = ? AND effective_date <= ?
		 ORDER BY effective_date DESC LIMIT 1`,
		filerID, asOf.Format(dateLayout),
	).Scan(&party)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: filer party as of %s", filerID)
	}
	return party, true, nil
}

// Raw loads

func (s *SQLiteStore) UpsertRows(ctx context.Context, cfg db.UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	query, err := db.SQLiteUpsertSQL(cfg)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert prepare %s", cfg.Table)
	}
	defer stmt.Close()

	var n int64
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert row into %s", cfg.Table)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert commit")
	}
	return n, nil
}

// Sync bookkeeping

func (s *SQLiteStore) GetSyncState(ctx context.Context, dataset string) (*model.SyncState, error) {
	var st model.SyncState
	var lastSyncAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT dataset, last_sync_at, rows_synced, status, error FROM sync_state WHERE dataset = ?`,
		dataset,
	).Scan(&st.Dataset, &lastSyncAt, &st.RowsSynced, &st.Status, &st.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get sync state %s", dataset)
	}
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		st.LastSyncAt = &t
	}
	return &st, nil
}

func (s *SQLiteStore) ListSyncStates(ctx context.Context) ([]model.SyncState, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT dataset, last_sync_at, rows_synced, status, error FROM sync_state ORDER BY dataset`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sync states")
	}
	defer rows.Close()

	var states []model.SyncState
	for rows.Next() {
		var st model.SyncState
		var lastSyncAt sql.NullTime
		if err := rows.Scan(&st.Dataset, &lastSyncAt, &st.RowsSynced, &st.Status, &st.Error); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sync state")
		}
		if lastSyncAt.Valid {
			t := lastSyncAt.Time
			st.LastSyncAt = &t
		}
		states = append(states, st)
	}
	return states, eris.Wrap(rows.Err(), "sqlite: list sync states iterate")
}

func (s *SQLiteStore) RecordSyncState(ctx context.Context, state model.SyncState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_state (dataset, last_sync_at, rows_synced, status, error)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (dataset) DO UPDATE SET
		   last_sync_at = excluded.last_sync_at, rows_synced = excluded.rows_synced,
		   status = excluded.status, error = excluded.error`,
		state.Dataset, state.LastSyncAt, state.RowsSynced, state.Status, state.Error,
	)
	return eris.Wrapf(err, "sqlite: record sync state %s", state.Dataset)
}

// Counts returns per-table row counts.
func (s *SQLiteStore) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(countedTables))
	for _, table := range countedTables {
		var n int64
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return nil, eris.Wrapf(err, "sqlite: count %s", table)
		}
		counts[table] = n
	}
	return counts, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalList marshals a slice, mapping nil to the empty JSON array so
// json_each queries never see a scalar null.
func marshalList[T any](list []T) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func electionJSON(e *model.Election) (identifiers, sources, types string, err error) {
	if identifiers, err = marshalList(e.Identifiers); err != nil {
		return "", "", "", eris.Wrap(err, "marshal election identifiers")
	}
	if sources, err = marshalList(e.Sources); err != nil {
		return "", "", "", eris.Wrap(err, "marshal election sources")
	}
	if types, err = marshalList(e.Types); err != nil {
		return "", "", "", eris.Wrap(err, "marshal election types")
	}
	return identifiers, sources, types, nil
}

func formatDatePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDatePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil, eris.Wrapf(err, "parse date %q", s.String)
	}
	return &t, nil
}
