package dataset

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/california-civic-data/calaccess-processed/internal/config"
	"github.com/california-civic-data/calaccess-processed/internal/db"
	"github.com/california-civic-data/calaccess-processed/internal/fetcher"
	"github.com/california-civic-data/calaccess-processed/internal/store"
)

// TSV members of the CAL-ACCESS bulk export ZIP.
const (
	form501Member = "F501_502_CD.TSV"
	form497Member = "S497_CD.TSV"
)

// Form501 loads candidate-intention statements from the bulk export.
type Form501 struct {
	sources config.SourcesConfig
}

func (d *Form501) Name() string  { return "form501" }
func (d *Form501) Table() string { return "calaccess_form501_filings" }

func (d *Form501) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *Form501) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*SyncResult, error) {
	cfg := db.UpsertConfig{
		Table: d.Table(),
		Columns: []string{
			"filing_id", "filer_id", "office", "district", "election_year",
			"election_type", "party", "last_name", "first_name", "middle_name",
			"suffix", "date_filed", "statement_type",
		},
		ConflictKeys: []string{"filing_id"},
	}
	n, err := syncExtract(ctx, st, f, tempDir, d.sources.FilingsZipURL, form501Member, cfg, mapForm501Row)
	if err != nil {
		return nil, eris.Wrap(err, "form501: sync")
	}
	return &SyncResult{RowsSynced: n}, nil
}

// mapForm501Row converts one F501_502_CD row to table columns. Rows that
// are not Form 501 filings (the member mixes 501 and 502) are skipped.
func mapForm501Row(h headerIndex, row []string) []any {
	if h.get(row, "FORM_TYPE") != "F501" {
		return nil
	}
	filingID := h.get(row, "FILING_ID")
	if filingID == "" {
		return nil
	}
	return []any{
		filingID,
		h.get(row, "FILER_ID"),
		cleanName(h.get(row, "OFFIC_DSCR")),
		parseIntPtr(h.get(row, "DIST_NO")),
		parseIntOr(h.get(row, "YR_OF_ELEC"), 0),
		cleanName(h.get(row, "ELEC_TYPE")),
		cleanName(h.get(row, "PARTY")),
		cleanName(h.get(row, "CAND_NAML")),
		cleanName(h.get(row, "CAND_NAMF")),
		cleanName(h.get(row, "CAND_NAMM")),
		cleanName(h.get(row, "CAND_NAMS")),
		nullableDate(h.get(row, "RPT_DATE")),
		h.get(row, "STMT_TYPE"),
	}
}

// Form497 loads late-contribution report lines from the bulk export.
type Form497 struct {
	sources config.SourcesConfig
}

func (d *Form497) Name() string  { return "form497" }
func (d *Form497) Table() string { return "calaccess_form497_filings" }

func (d *Form497) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *Form497) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*SyncResult, error) {
	cfg := db.UpsertConfig{
		Table: d.Table(),
		Columns: []string{
			"filing_id", "line_item", "filer_id", "filer_name", "amount",
			"transaction_date", "contributor_name",
		},
		ConflictKeys: []string{"filing_id", "line_item"},
	}
	n, err := syncExtract(ctx, st, f, tempDir, d.sources.FilingsZipURL, form497Member, cfg, mapForm497Row)
	if err != nil {
		return nil, eris.Wrap(err, "form497: sync")
	}
	return &SyncResult{RowsSynced: n}, nil
}

func mapForm497Row(h headerIndex, row []string) []any {
	filingID := h.get(row, "FILING_ID")
	if filingID == "" {
		return nil
	}
	amount := h.get(row, "AMOUNT")
	if amount == "" {
		amount = "0"
	}
	return []any{
		filingID,
		parseIntOr(h.get(row, "LINE_ITEM"), 0),
		h.get(row, "FILER_ID"),
		cleanName(h.get(row, "FILER_NAML")),
		amount,
		nullableDate(h.get(row, "CTRIB_DATE")),
		cleanName(h.get(row, "ENTY_NAML")),
	}
}

// FilerPartySpans loads the filer-to-party history extract.
type FilerPartySpans struct {
	sources config.SourcesConfig
}

func (d *FilerPartySpans) Name() string  { return "filer_party_spans" }
func (d *FilerPartySpans) Table() string { return "calaccess_filer_party_spans" }

func (d *FilerPartySpans) ShouldRun(now time.Time, lastSync *time.Time) bool {
	return stale(now, lastSync)
}

func (d *FilerPartySpans) Sync(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir string) (*SyncResult, error) {
	log := zap.L().With(zap.String("dataset", d.Name()))

	tsvPath := filepath.Join(tempDir, "filer_party.tsv")
	if err := f.DownloadFile(ctx, d.sources.FilerToFilerURL, tsvPath); err != nil {
		return nil, eris.Wrap(err, "filer_party_spans: download")
	}
	defer os.Remove(tsvPath)

	cfg := db.UpsertConfig{
		Table:        d.Table(),
		Columns:      []string{"filer_id", "effective_date", "party_name"},
		ConflictKeys: []string{"filer_id", "effective_date"},
	}
	n, err := loadTSV(ctx, st, tsvPath, cfg, func(h headerIndex, row []string) []any {
		filerID := h.get(row, "FILER_ID")
		effective := normalizeDate(h.get(row, "EFFECT_DT"))
		if filerID == "" || effective == "" {
			return nil
		}
		return []any{filerID, effective, cleanName(h.get(row, "PARTY"))}
	})
	if err != nil {
		return nil, eris.Wrap(err, "filer_party_spans: load")
	}

	log.Debug("loaded filer party spans", zap.Int64("rows", n))
	return &SyncResult{RowsSynced: n}, nil
}

// syncExtract downloads the bulk export ZIP, extracts one TSV member, and
// streams it into the target table.
func syncExtract(ctx context.Context, st store.Store, f fetcher.Fetcher, tempDir, zipURL, member string, cfg db.UpsertConfig, mapRow func(headerIndex, []string) []any) (int64, error) {
	log := zap.L().With(zap.String("component", "dataset.extract"), zap.String("member", member))

	zipPath := filepath.Join(tempDir, "calaccess_export.zip")
	if _, err := os.Stat(zipPath); err != nil {
		log.Info("downloading bulk export", zap.String("url", zipURL))
		if err := f.DownloadFile(ctx, zipURL, zipPath); err != nil {
			return 0, eris.Wrap(err, "download bulk export")
		}
	}

	tsvPath, err := fetcher.ExtractZIPFile(zipPath, member, tempDir)
	if err != nil {
		return 0, eris.Wrapf(err, "extract %s", member)
	}
	defer os.Remove(tsvPath)

	return loadTSV(ctx, st, tsvPath, cfg, mapRow)
}

// loadTSV streams a tab-delimited file into the store in batches. mapRow
// returns nil to skip a row.
func loadTSV(ctx context.Context, st store.Store, path string, cfg db.UpsertConfig, mapRow func(headerIndex, []string) []any) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, file, fetcher.CSVOptions{
		Delimiter:  '\t',
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
	})

	header, ok := <-headerCh
	if !ok {
		return 0, eris.Errorf("%s: empty file", path)
	}
	h := indexHeader(header)

	var total int64
	batch := make([][]any, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := st.UpsertRows(ctx, cfg, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	for row := range rowCh {
		mapped := mapRow(h, row)
		if mapped == nil {
			continue
		}
		batch = append(batch, mapped)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := <-errCh; err != nil {
		return 0, err
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}
