package catalog

import (
	"math/rand"
	"slices"
	"strings"

	"proxysmith/internal/proxy"
)

// DefaultPageSize is the number of endpoints shown per page.
const DefaultPageSize = 20

// Query narrows a catalog. Empty fields match everything.
type Query struct {
	Countries []string
	// Provider matches the provider exactly, ignoring case.
	Provider string
	// Search matches a case-insensitive substring of the provider.
	Search string
}

// Filter returns the endpoints matching q, preserving order.
func Filter(eps []proxy.Endpoint, q Query) []proxy.Endpoint {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]proxy.Endpoint, 0, len(eps))
	for _, ep := range eps {
		if len(q.Countries) > 0 && !containsFold(q.Countries, ep.Country) {
			continue
		}
		if q.Provider != "" && !strings.EqualFold(q.Provider, ep.Provider) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ep.Provider), search) {
			continue
		}
		out = append(out, ep)
	}
	return out
}

// Countries lists the distinct country codes, sorted.
func Countries(eps []proxy.Endpoint) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ep := range eps {
		if _, ok := seen[ep.Country]; ok {
			continue
		}
		seen[ep.Country] = struct{}{}
		out = append(out, ep.Country)
	}
	slices.Sort(out)
	return out
}

// Page returns the 1-based page of eps and the total page count.
// Out-of-range pages are clamped.
func Page(eps []proxy.Endpoint, page, size int) ([]proxy.Endpoint, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := (len(eps) + size - 1) / size
	if total == 0 {
		return nil, 0
	}
	page = max(1, min(page, total))
	start := (page - 1) * size
	end := min(start+size, len(eps))
	return eps[start:end], total
}

// Sample returns up to n endpoints in shuffled order. eps is not modified.
func Sample(eps []proxy.Endpoint, n int, rng *rand.Rand) []proxy.Endpoint {
	out := slices.Clone(eps)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
