package fetcher

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/california-civic-data/calaccess-processed/internal/resilience"
)

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	RequestsPerSec float64
}

// HTTPFetcher implements Fetcher using net/http with retry and a fixed-rate
// limiter. The Secretary of State's servers are slow and unforgiving, so the
// default rate is deliberately conservative.
type HTTPFetcher struct {
	client  *http.Client
	opts    HTTPOptions
	limiter *rate.Limiter
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "calaccess-processed/1.0"
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 2
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
	}
}

// Download streams the body of the given URL, retrying transient failures.
func (f *HTTPFetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	policy := resilience.DownloadPolicy()
	policy.Attempts = f.opts.MaxRetries
	policy.Notify = resilience.LogRetries(url)

	return resilience.DoVal(ctx, policy, func(ctx context.Context) (io.ReadCloser, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: build request for %s", url)
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, resilience.NewTransientError(eris.Wrapf(err, "fetcher: GET %s", url), 0)
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			err := eris.Errorf("fetcher: GET %s: http %d", url, resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		return resp.Body, nil
	})
}

// DownloadFile downloads the URL to destPath, replacing any existing file.
func (f *HTTPFetcher) DownloadFile(ctx context.Context, url, destPath string) error {
	body, err := f.Download(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return eris.Wrapf(err, "fetcher: create %s", destPath)
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, body)
	if err != nil {
		return eris.Wrapf(err, "fetcher: write %s", destPath)
	}

	zap.L().Debug("downloaded file",
		zap.String("url", url),
		zap.String("dest", destPath),
		zap.Int64("bytes", n),
	)
	return nil
}
