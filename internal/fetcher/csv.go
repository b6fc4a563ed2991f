package fetcher

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV/TSV parser. CAL-ACCESS bulk
// extracts are tab-delimited with a header row.
type CSVOptions struct {
	Delimiter  rune // default ','; use '\t' for CAL-ACCESS TSV extracts
	HasHeader  bool // if true, the first row is skipped but sent to HeaderCh
	HeaderCh   chan<- []string
	LazyQuotes bool
}

// StreamCSV reads delimited rows and sends them to a channel. Caller must
// consume the returned row channel. Errors are sent on the error channel.
// Both channels are closed when processing completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		headerSent := false
		if opts.HeaderCh != nil {
			defer func() {
				if !headerSent {
					close(opts.HeaderCh)
				}
			}()
		}

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // raw extracts have ragged rows

		first := true
		for {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			row, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if first && opts.HasHeader {
				first = false
				if opts.HeaderCh != nil {
					opts.HeaderCh <- row
					close(opts.HeaderCh)
					headerSent = true
				}
				continue
			}
			first = false

			select {
			case rowCh <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadAllCSV collects every row into memory. Only for small files like the
// scrape snapshots; bulk extracts should use StreamCSV.
func ReadAllCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([][]string, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return rows, nil
}
