package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "proxysmith/pkg/errors"
)

func testFetcher() *Fetcher {
	cfg := DefaultFetcherConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 2 * time.Second
	return NewFetcher(cfg)
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("1.1.1.1,443,US,Cloudflare\n"))
	}))
	defer srv.Close()

	eps, err := testFetcher().Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(eps) != 1 || calls.Load() != 3 {
		t.Fatalf("eps=%v calls=%d, want 1 endpoint after 3 calls", eps, calls.Load())
	}
}

func TestFetcher_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Load(context.Background(), srv.URL)
	if !errors.Is(err, pkgerrors.ErrCatalogFetchFailed) {
		t.Fatalf("err=%v, want ErrCatalogFetchFailed", err)
	}
	var httpErr *pkgerrors.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err=%v, want wrapped 404", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls=%d, want=1", calls.Load())
	}
}

func TestFetcher_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\n\n"))
	}))
	defer srv.Close()

	_, err := testFetcher().Load(context.Background(), srv.URL)
	if !errors.Is(err, pkgerrors.ErrCatalogEmpty) {
		t.Fatalf("err=%v, want ErrCatalogEmpty", err)
	}
}
