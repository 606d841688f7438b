// Package render turns proxy descriptors into client configuration documents.
package render

import (
	"fmt"
	"strings"

	"proxysmith/internal/metrics"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

type Target string

const (
	TargetClash   Target = "clash"
	TargetSingBox Target = "singbox"
	TargetURIList Target = "v2ray"
)

// Options carries the per-target structural switches.
type Options struct {
	Clash ClashOptions
}

// ParseTarget accepts the target names and their common aliases.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clash", "yaml", "mihomo":
		return TargetClash, nil
	case "singbox", "sing-box", "nekobox", "json":
		return TargetSingBox, nil
	case "v2ray", "uri", "links":
		return TargetURIList, nil
	default:
		return "", fmt.Errorf("%w: %s", pkgerrors.ErrUnknownTarget, s)
	}
}

// Render dispatches to the emitter for target. Empty input yields a valid
// near-empty document.
func Render(target Target, ds []proxy.Descriptor, opts Options) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch target {
	case TargetClash:
		out, err = Clash(ds, opts.Clash)
	case TargetSingBox:
		out, err = SingBox(ds)
	case TargetURIList:
		var s string
		s, err = URIList(ds)
		out = []byte(s)
	default:
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrUnknownTarget, target)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", target, err)
	}
	metrics.RenderTotal.WithLabelValues(string(target)).Inc()
	return out, nil
}

// Extension returns the conventional file extension for target output.
func (t Target) Extension() string {
	switch t {
	case TargetClash:
		return ".yaml"
	case TargetSingBox:
		return ".json"
	default:
		return ".txt"
	}
}

// ContentType returns the MIME type served for target output.
func (t Target) ContentType() string {
	switch t {
	case TargetClash:
		return "text/yaml; charset=utf-8"
	case TargetSingBox:
		return "application/json; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
