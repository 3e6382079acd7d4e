package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/microclaw/microclaw-install/internal/logging"
	"github.com/microclaw/microclaw-install/internal/release"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the number of extra attempts after a failed download.
	// Zero keeps downloads single-attempt.
	DefaultRetries = 0
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = release.DefaultUserAgent
	// maxRedirects bounds redirect chains (release assets redirect to a CDN)
	maxRedirects = 10
)

// Downloader handles HTTP downloads with optional retry logic
type Downloader struct {
	client    *http.Client
	userAgent string
	retries   int
	logger    logging.Logger
}

// NewDownloader creates a downloader. A non-positive timeout selects
// DefaultTimeout and negative retries are treated as zero.
func NewDownloader(retries int, timeout time.Duration, logger logging.Logger) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = 0
	}
	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   retries,
		logger:    logging.OrNoop(logger),
	}
}

// DownloadToFile downloads a URL to a specific file path
func (d *Downloader) DownloadToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		// Check context before each attempt
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrDownloadFailed, ctx.Err())
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			d.logger.Warn("retrying download", "url", url, "attempt", attempt+1, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrDownloadFailed, ctx.Err())
			}
		}

		written, err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			d.logger.Debug("download complete", "url", url, "bytes", written, "path", destPath)
			return nil
		}

		lastErr = err

		// Don't retry if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrDownloadFailed, ctx.Err())
		}
	}

	if d.retries > 0 {
		return fmt.Errorf("%w after %d retries: %s: %w", ErrDownloadFailed, d.retries, url, lastErr)
	}
	return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, url, lastErr)
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) (int64, error) {
	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/octet-stream")

	// Execute request
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Create destination directory if needed
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, fmt.Errorf("create dest dir: %w", err)
	}

	// Write to a temp file first, then rename into place
	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupNeeded {
			_ = os.Remove(tmpPath)
		}
	}()

	// Copy response body
	written, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return written, fmt.Errorf("copy response body: %w", err)
	}

	// Reject truncated bodies
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return written, fmt.Errorf("short body: got %d of %d bytes", written, resp.ContentLength)
	}

	if err := tmpFile.Close(); err != nil {
		return written, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return written, fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return written, nil
}
