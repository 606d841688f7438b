// Package catalog loads endpoint catalogs from JSON or delimited text.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// jsonEntry is one element of a JSON catalog.
type jsonEntry struct {
	Proxy          string      `json:"proxy"`
	Port           interface{} `json:"port"` // string or number
	Country        string      `json:"country"`
	ASOrganization string      `json:"asOrganization"`
}

// Parse reads a JSON array of {proxy, port, country, asOrganization} or,
// failing that, delimited text with ip, port, country and provider columns.
// Entries without an ip or port are dropped. ErrCatalogEmpty is returned
// when nothing survives.
func Parse(data []byte) ([]proxy.Endpoint, error) {
	var eps []proxy.Endpoint
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if parsed, err := parseJSON(trimmed); err == nil {
			eps = parsed
		} else {
			eps = parseText(string(data))
		}
	} else {
		eps = parseText(string(data))
	}
	if len(eps) == 0 {
		return nil, pkgerrors.ErrCatalogEmpty
	}
	return eps, nil
}

func parseJSON(data []byte) ([]proxy.Endpoint, error) {
	var entries []jsonEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog JSON: %w", err)
	}

	eps := make([]proxy.Endpoint, 0, len(entries))
	for _, e := range entries {
		ep := proxy.Endpoint{
			IP:       strings.TrimSpace(e.Proxy),
			Port:     portString(e.Port),
			Country:  orUnknown(e.Country),
			Provider: orUnknown(e.ASOrganization),
		}
		if ep.IP == "" || ep.Port == "" {
			continue
		}
		eps = append(eps, ep)
	}
	return eps, nil
}

func parseText(text string) []proxy.Endpoint {
	var eps []proxy.Endpoint
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, delimiter(line))
		if len(parts) < 2 {
			continue
		}
		ep := proxy.Endpoint{
			IP:       strings.TrimSpace(parts[0]),
			Port:     strings.TrimSpace(parts[1]),
			Country:  proxy.Unknown,
			Provider: proxy.Unknown,
		}
		if len(parts) > 2 {
			ep.Country = orUnknown(parts[2])
		}
		if len(parts) > 3 {
			ep.Provider = orUnknown(parts[3])
		}
		if ep.IP == "" || ep.Port == "" {
			continue
		}
		eps = append(eps, ep)
	}
	return eps
}

// delimiter picks tab, then pipe, then comma.
func delimiter(line string) string {
	switch {
	case strings.Contains(line, "\t"):
		return "\t"
	case strings.Contains(line, "|"):
		return "|"
	default:
		return ","
	}
}

func portString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return proxy.Unknown
}
