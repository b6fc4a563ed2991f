// Package fetcher downloads and parses raw CAL-ACCESS data: HTTPS bulk
// files, ZIP archives, and TSV/CSV extracts.
package fetcher

import (
	"context"
	"io"
)

// Fetcher downloads raw source data over HTTPS.
type Fetcher interface {
	// Download streams the body of the given URL. Caller must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadFile downloads the URL to destPath, replacing any existing file.
	DownloadFile(ctx context.Context, url, destPath string) error
}
