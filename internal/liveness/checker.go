package liveness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	pkgerrors "proxysmith/pkg/errors"
)

// Result is one entry of a status response, aligned with the requested ids.
// LatencyMs is zero when the remote did not report one.
type Result struct {
	Alive     bool
	LatencyMs float64
}

// Checker defines how a batch of ip:port identities is checked.
type Checker interface {
	// Name returns the checker identifier ("http" or "tcp").
	Name() string
	// Check returns results positionally aligned with ids. The slice may be
	// shorter than ids.
	Check(ctx context.Context, ids []string) ([]Result, error)
}

// NewChecker creates a Checker by name. Valid names: "http", "tcp".
func NewChecker(name, checkURL string) (Checker, error) {
	switch name {
	case "http", "":
		if checkURL == "" {
			return nil, fmt.Errorf("http checker requires a check URL")
		}
		return NewHTTPChecker(checkURL, nil), nil
	case "tcp":
		return &TCPChecker{}, nil
	default:
		return nil, fmt.Errorf("unknown checker: %s (available: http, tcp)", name)
	}
}

// HTTPChecker asks a remote status service about a whole batch at once.
// The request URL is the base followed by the comma-joined identities.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
}

// NewHTTPChecker returns a checker for baseURL. A nil client uses a
// default one without its own timeout; callers bound requests by context.
func NewHTTPChecker(baseURL string, client *http.Client) *HTTPChecker {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPChecker{baseURL: baseURL, client: client}
}

func (c *HTTPChecker) Name() string { return "http" }

// statusEntry mirrors one element of the status response. Both fields are
// loosely typed; only a literal true marks an endpoint alive.
type statusEntry struct {
	ProxyIP interface{} `json:"proxyip"`
	Latency interface{} `json:"latency"`
}

func (c *HTTPChecker) Check(ctx context.Context, ids []string) ([]Result, error) {
	url := c.baseURL + strings.Join(ids, ",")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrors.HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return decodeStatus(body)
}

// decodeStatus accepts a JSON array or a single object, normalized to a
// one-element slice.
func decodeStatus(body []byte) ([]Result, error) {
	body = bytes.TrimSpace(body)
	var entries []statusEntry
	if bytes.HasPrefix(body, []byte("[")) {
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("%w: %w", pkgerrors.ErrProbeBadResponse, err)
		}
	} else {
		var one statusEntry
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, fmt.Errorf("%w: %w", pkgerrors.ErrProbeBadResponse, err)
		}
		entries = []statusEntry{one}
	}

	results := make([]Result, len(entries))
	for i, e := range entries {
		alive, _ := e.ProxyIP.(bool)
		latency, _ := e.Latency.(float64)
		results[i] = Result{Alive: alive, LatencyMs: max(latency, 0)}
	}
	return results, nil
}

// TCPChecker measures reachability via a TCP handshake to each identity.
// It only verifies network reachability, not the proxy protocol.
type TCPChecker struct{}

func (c *TCPChecker) Name() string { return "tcp" }

func (c *TCPChecker) Check(ctx context.Context, ids []string) ([]Result, error) {
	results := make([]Result, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(idx int, address string) {
			defer wg.Done()
			start := time.Now()
			dialer := net.Dialer{}
			conn, err := dialer.DialContext(ctx, "tcp", address)
			if err != nil {
				return
			}
			elapsed := time.Since(start)
			conn.Close()
			results[idx] = Result{Alive: true, LatencyMs: float64(max(elapsed.Milliseconds(), 1))}
		}(i, id)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
