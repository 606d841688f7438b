package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// Fetcher downloads catalogs over HTTP with retry logic
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

// FetcherConfig represents fetcher configuration
type FetcherConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// DefaultFetcherConfig returns default fetcher configuration
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		UserAgent:  "proxysmith/1.0",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// NewFetcher creates a new catalog fetcher
func NewFetcher(config FetcherConfig) *Fetcher {
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:  config.UserAgent,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		log:        log,
	}
}

// Load fetches and parses the catalog at url.
func (f *Fetcher) Load(ctx context.Context, url string) ([]proxy.Endpoint, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	eps, err := Parse(body)
	if err != nil {
		return nil, &pkgerrors.CatalogError{Source: url, Err: err}
	}
	return eps, nil
}

// Fetch fetches raw content from a URL with retry logic
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.log.Warn("retrying catalog fetch",
				zap.String("url", url), zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryDelay * time.Duration(attempt)):
			}
		}

		content, err := f.doFetch(ctx, url)
		if err == nil {
			return content, nil
		}

		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			break
		}

		// Don't retry on client errors (4xx)
		var httpErr *pkgerrors.HTTPError
		if errors.As(err, &httpErr) && !httpErr.Retryable() {
			break
		}
	}

	return nil, &pkgerrors.CatalogError{
		Source: url,
		Err:    fmt.Errorf("%w: %w", pkgerrors.ErrCatalogFetchFailed, lastErr),
	}
}

// doFetch performs a single fetch attempt
func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrors.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}
