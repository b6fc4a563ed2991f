// Package export flattens the canonical graph into denormalized rows for
// publishing: one projection joining Candidacy through Person, Contest,
// Election, and Post, and one for late contributions. Projections only; any
// logic belongs in the resolvers.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/model"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Exporter builds flattened export rows from the store.
type Exporter struct {
	st  store.Store
	log *zap.Logger
}

// New creates an Exporter.
func New(st store.Store) *Exporter {
	return &Exporter{
		st:  st,
		log: zap.L().With(zap.String("component", "export")),
	}
}

// Candidacies builds the flattened candidacy projection, ordered by election
// date then ballot name.
func (e *Exporter) Candidacies(ctx context.Context) ([]model.FlatCandidacy, error) {
	candidacies, err := e.st.ListCandidacies(ctx)
	if err != nil {
		return nil, err
	}
	contests, err := listIndex(ctx, e.st.ListContests, func(c model.Contest) string { return c.ID })
	if err != nil {
		return nil, err
	}
	elections, err := listIndex(ctx, e.st.ListElections, func(el model.Election) string { return el.ID })
	if err != nil {
		return nil, err
	}
	posts, err := listIndex(ctx, e.st.ListPosts, func(p model.Post) string { return p.ID })
	if err != nil {
		return nil, err
	}
	parties, err := listIndex(ctx, e.st.ListParties, func(p model.Party) string { return p.ID })
	if err != nil {
		return nil, err
	}
	persons, err := listIndex(ctx, e.st.ListPersons, func(p model.Person) string { return p.ID })
	if err != nil {
		return nil, err
	}

	rows := make([]model.FlatCandidacy, 0, len(candidacies))
	for _, c := range candidacies {
		contest, ok := contests[c.ContestID]
		if !ok {
			return nil, eris.Errorf("export: candidacy %s references missing contest %s", c.ID, c.ContestID)
		}
		election, ok := elections[contest.ElectionID]
		if !ok {
			return nil, eris.Errorf("export: contest %s references missing election %s", contest.ID, contest.ElectionID)
		}
		person, ok := persons[c.PersonID]
		if !ok {
			return nil, eris.Errorf("export: candidacy %s references missing person %s", c.ID, c.PersonID)
		}

		row := model.FlatCandidacy{
			Name:               person.Name,
			BallotName:         c.BallotName,
			FilerID:            person.FilerID(),
			ContestName:        contest.Name,
			ElectionName:       election.Name,
			ElectionDate:       election.Date,
			IsIncumbent:        c.IsIncumbent,
			RegistrationStatus: string(c.RegistrationStatus),
			SpecialElection:    contest.PreviousTermUnexpired,
		}
		if post, ok := posts[contest.PostID]; ok {
			row.Office = post.Label
		}
		if party, ok := parties[c.PartyID]; ok {
			row.Party = party.Name
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ElectionDate.Equal(rows[j].ElectionDate) {
			return rows[i].ElectionDate.Before(rows[j].ElectionDate)
		}
		return rows[i].BallotName < rows[j].BallotName
	})

	e.log.Debug("flattened candidacies", zap.Int("rows", len(rows)))
	return rows, nil
}

// Contributions builds the flattened late-contribution projection.
func (e *Exporter) Contributions(ctx context.Context) ([]model.FlatContribution, error) {
	filings, err := e.st.ListForm497Filings(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.FlatContribution, 0, len(filings))
	for _, f := range filings {
		row := model.FlatContribution{
			FilingID:        f.FilingID,
			FilerID:         f.FilerID,
			FilerName:       f.FilerName,
			ContributorName: f.ContributorName,
			Amount:          f.Amount,
		}
		if f.TransactionDate != nil {
			row.TransactionDate = f.TransactionDate.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV encodes rows as CSV with a header line.
func WriteCSV[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "export: encode csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteJSON encodes rows as an indented JSON array.
func WriteJSON[T any](w io.Writer, rows []T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(rows), "export: encode json")
}

func listIndex[T any](ctx context.Context, list func(context.Context) ([]T, error), key func(T) string) (map[string]T, error) {
	items, err := list(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out, nil
}
