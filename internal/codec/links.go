package codec

import (
	"fmt"
	"strings"

	"proxysmith/internal/metrics"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// BatchResult holds the outcome of decoding a pasted list of links.
type BatchResult struct {
	Descriptors []proxy.Descriptor
	Failed      int
	Errors      []error
}

// ParseLinks decodes one link per line, skipping blanks and # comments.
// Individual failures are collected; the call fails only when nothing
// decodes.
func (r *Registry) ParseLinks(text string) (*BatchResult, error) {
	res := &BatchResult{}
	lineNo := 0
	for _, line := range strings.Split(text, "\n") {
		lineNo++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := r.Parse(line)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		res.Descriptors = append(res.Descriptors, d)
	}
	metrics.DecodeFailuresTotal.Add(float64(res.Failed))

	if len(res.Descriptors) == 0 {
		return res, pkgerrors.ErrNoValidLinks
	}
	return res, nil
}

// DecodeSubscription accepts either a plain link list or a base64-encoded
// one, as served by subscription endpoints.
func (r *Registry) DecodeSubscription(body []byte) (*BatchResult, error) {
	text := string(body)
	if !r.hasKnownScheme(text) {
		compact := strings.Join(strings.Fields(text), "")
		if decoded, err := decodeBase64(compact); err == nil {
			text = string(decoded)
		}
	}
	return r.ParseLinks(text)
}

func (r *Registry) hasKnownScheme(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if _, err := r.Detect(line); err == nil {
			return true
		}
	}
	return false
}

// ParseLinks decodes a link list with the built-in codecs.
func ParseLinks(text string) (*BatchResult, error) { return defaultRegistry.ParseLinks(text) }

// DecodeSubscription decodes a subscription body with the built-in codecs.
func DecodeSubscription(body []byte) (*BatchResult, error) {
	return defaultRegistry.DecodeSubscription(body)
}
