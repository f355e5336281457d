// Package extract fetches the largest-banks page and scrapes its ranking table.
package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/bankcap/internal/model"
)

// maxBodySize bounds the fetched page.
const maxBodySize = 32 << 20

// Getter retrieves a document as text.
type Getter interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Fetcher is a Getter over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    zerolog.Logger
}

// NewFetcher creates a Fetcher. A zero timeout means no timeout.
func NewFetcher(timeout time.Duration, userAgent string, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch GETs url and returns the body. Non-2xx responses and non-document
// content types fail with model.ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request: %w", model.ErrFetch, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("fetch failed")
		return "", fmt.Errorf("%w: GET %s: %w", model.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: GET %s: status %s", model.ErrFetch, url, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); !isDocument(ct) {
		return "", fmt.Errorf("%w: GET %s: unexpected content type %q", model.ErrFetch, url, ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", model.ErrFetch, err)
	}
	if len(body) > maxBodySize {
		return "", fmt.Errorf("%w: GET %s: body exceeds %d bytes", model.ErrFetch, url, maxBodySize)
	}

	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched page")
	return string(body), nil
}

// isDocument accepts HTML and other text payloads. A missing header is accepted.
func isDocument(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/") || mt == "application/xhtml+xml"
}

// Extractor turns the source page into bank records.
type Extractor struct {
	getter Getter
	logger zerolog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(getter Getter, logger zerolog.Logger) *Extractor {
	return &Extractor{getter: getter, logger: logger}
}

// Extract fetches sourceURL and returns one record per bank row, in table order.
// fieldNames must name the BankRecord fields (model.SourceFields).
func (e *Extractor) Extract(ctx context.Context, sourceURL string, fieldNames []string) ([]model.BankRecord, error) {
	if !slices.Equal(fieldNames, model.SourceFields) {
		return nil, fmt.Errorf("%w: unsupported fields %v, want %v", model.ErrParse, fieldNames, model.SourceFields)
	}

	page, err := e.getter.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	records, stats, err := parseTable(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", sourceURL, err)
	}

	e.logger.Debug().
		Int("rows", stats.Rows).
		Int("skipped", stats.Skipped).
		Int("records", len(records)).
		Msg("parsed bank table")
	return records, nil
}
