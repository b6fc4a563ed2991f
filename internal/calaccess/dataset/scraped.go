package dataset

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/config"
	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// The scrape snapshot datasets load the nightly CSV exports of the
// CAL-ACCESS site scrape. Each snapshot is small enough to read whole.

// ScrapedElections loads the election list snapshot.
type ScrapedElections struct {
	sources config.SourcesConfig
}

func (d *ScrapedElections) Name() string  { return "scraped_elections" }
func (d *ScrapedElections) Table() string { return "calaccess_scraped_elections" }

func (d *ScrapedElections) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *ScrapedElections) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, _ string) (*SyncResult, error) {
	header, rows, err := downloadSnapshot(ctx, f, d.sources.ScrapeBaseURL, "elections.csv")
	if err != nil {
		return nil, eris.Wrap(err, "scraped_elections: download snapshot")
	}

	scrapedAt := time.Now().UTC()
	upsertRows := make([][]any, 0, len(rows))
	for _, row := range rows {
		name := cleanName(header.get(row, "NAME"))
		if name == "" {
			continue
		}
		upsertRows = append(upsertRows, []any{
			header.get(row, "ID"),
			name,
			nullableDate(header.get(row, "DATE")),
			parseIntOr(header.get(row, "SORT_INDEX"), 0),
			header.get(row, "URL"),
			scrapedAt,
		})
	}

	n, err := st.UpsertRows(ctx, db.UpsertConfig{
		Table:        d.Table(),
		Columns:      []string{"scraped_id", "name", "date", "sort_index", "url", "scraped_at"},
		ConflictKeys: []string{"name"},
	}, upsertRows)
	if err != nil {
		return nil, eris.Wrap(err, "scraped_elections: upsert")
	}
	return &SyncResult{RowsSynced: n}, nil
}

// ScrapedCandidates loads the candidate list snapshot.
type ScrapedCandidates struct {
	sources config.SourcesConfig
}

func (d *ScrapedCandidates) Name() string  { return "scraped_candidates" }
func (d *ScrapedCandidates) Table() string { return "calaccess_scraped_candidates" }

func (d *ScrapedCandidates) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *ScrapedCandidates) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, _ string) (*SyncResult, error) {
	header, rows, err := downloadSnapshot(ctx, f, d.sources.ScrapeBaseURL, "candidates.csv")
	if err != nil {
		return nil, eris.Wrap(err, "scraped_candidates: download snapshot")
	}

	scrapedAt := time.Now().UTC()
	upsertRows := make([][]any, 0, len(rows))
	for _, row := range rows {
		name := cleanName(header.get(row, "NAME"))
		electionName := cleanName(header.get(row, "ELECTION_NAME"))
		if name == "" || electionName == "" {
			continue
		}
		upsertRows = append(upsertRows, []any{
			electionName,
			cleanName(header.get(row, "OFFICE_NAME")),
			name,
			header.get(row, "ID"),
			header.get(row, "URL"),
			scrapedAt,
		})
	}

	n, err := st.UpsertRows(ctx, db.UpsertConfig{
		Table:        d.Table(),
		Columns:      []string{"election_name", "office_name", "name", "scraped_id", "url", "scraped_at"},
		ConflictKeys: []string{"election_name", "office_name", "name"},
	}, upsertRows)
	if err != nil {
		return nil, eris.Wrap(err, "scraped_candidates: upsert")
	}
	return &SyncResult{RowsSynced: n}, nil
}

// ScrapedPropositions loads the ballot-measure list snapshot.
type ScrapedPropositions struct {
	sources config.SourcesConfig
}

func (d *ScrapedPropositions) Name() string  { return "scraped_propositions" }
func (d *ScrapedPropositions) Table() string { return "calaccess_scraped_propositions" }

func (d *ScrapedPropositions) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *ScrapedPropositions) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, _ string) (*SyncResult, error) {
	header, rows, err := downloadSnapshot(ctx, f, d.sources.ScrapeBaseURL, "propositions.csv")
	if err != nil {
		return nil, eris.Wrap(err, "scraped_propositions: download snapshot")
	}

	scrapedAt := time.Now().UTC()
	upsertRows := make([][]any, 0, len(rows))
	for _, row := range rows {
		id := header.get(row, "ID")
		if id == "" {
			continue
		}
		upsertRows = append(upsertRows, []any{
			id,
			cleanName(header.get(row, "NAME")),
			cleanName(header.get(row, "ELECTION_NAME")),
			header.get(row, "URL"),
			scrapedAt,
		})
	}

	n, err := st.UpsertRows(ctx, db.UpsertConfig{
		Table:        d.Table(),
		Columns:      []string{"scraped_id", "name", "election_name", "url", "scraped_at"},
		ConflictKeys: []string{"scraped_id"},
	}, upsertRows)
	if err != nil {
		return nil, eris.Wrap(err, "scraped_propositions: upsert")
	}
	return &SyncResult{RowsSynced: n}, nil
}

// downloadSnapshot fetches a scrape snapshot CSV and returns its header
// index plus data rows.
func downloadSnapshot(ctx context.Context, f fetcher.Fetcher, baseURL, file string) (headerIndex, [][]string, error) {
	log := zap.L().With(zap.String("component", "dataset.snapshot"))
	url := strings.TrimRight(baseURL, "/") + "/" + file
	log.Debug("downloading snapshot", zap.String("url", url))

	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	headerCh := make(chan []string, 1)
	rows, err := fetcher.ReadAllCSV(ctx, body, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	if err != nil {
		return nil, nil, err
	}
	header, ok := <-headerCh
	if !ok {
		return nil, nil, eris.Errorf("snapshot %s: empty file", file)
	}
	return indexHeader(header), rows, nil
}
