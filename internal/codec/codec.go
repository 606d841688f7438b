// Package codec translates between proxy share links and proxy descriptors.
package codec

import (
	"fmt"
	"strings"

	"proxysmith/internal/clash"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// Codec parses and generates links for one URI scheme.
type Codec interface {
	// Scheme returns the URI scheme without "://".
	Scheme() string

	// Type returns the descriptor variant the codec produces.
	Type() proxy.Type

	// Parse decodes a link. Failures are *errors.DecodeError.
	Parse(uri string) (proxy.Descriptor, error)

	// Encode renders the canonical link for d.
	Encode(d proxy.Descriptor) (string, error)
}

// Link is the generated form of a descriptor.
type Link struct {
	URI   string
	Clash string
}

// Registry dispatches links to codecs by scheme prefix.
type Registry struct {
	byScheme map[string]Codec
	byType   map[proxy.Type]Codec
}

// NewRegistry creates a registry with the four built-in codecs.
func NewRegistry() *Registry {
	r := &Registry{
		byScheme: make(map[string]Codec),
		byType:   make(map[proxy.Type]Codec),
	}

	r.Register(VMessCodec{})
	r.Register(VLESSCodec{})
	r.Register(TrojanCodec{})
	r.Register(ShadowsocksCodec{})

	return r
}

// Register adds or replaces a codec.
func (r *Registry) Register(c Codec) {
	r.byScheme[strings.ToLower(c.Scheme())] = c
	r.byType[c.Type()] = c
}

// Get retrieves a codec by scheme. "shadowsocks" is accepted for "ss".
func (r *Registry) Get(scheme string) (Codec, bool) {
	scheme = strings.ToLower(scheme)
	if scheme == "shadowsocks" {
		scheme = "ss"
	}
	c, ok := r.byScheme[scheme]
	return c, ok
}

// Detect picks the codec for a link by its scheme prefix.
func (r *Registry) Detect(uri string) (Codec, error) {
	uri = strings.TrimSpace(uri)

	idx := strings.Index(uri, "://")
	if idx <= 0 {
		return nil, pkgerrors.Unsupported(uri)
	}

	c, ok := r.Get(uri[:idx])
	if !ok {
		return nil, pkgerrors.Unsupported(uri)
	}
	return c, nil
}

// Parse decodes a link using the codec its prefix selects.
func (r *Registry) Parse(uri string) (proxy.Descriptor, error) {
	c, err := r.Detect(uri)
	if err != nil {
		return nil, err
	}
	return c.Parse(strings.TrimSpace(uri))
}

// URI renders the canonical link for d.
func (r *Registry) URI(d proxy.Descriptor) (string, error) {
	c, ok := r.byType[d.Type()]
	if !ok {
		return "", fmt.Errorf("no codec for %s", d.Type())
	}
	return c.Encode(d)
}

// Generate renders d as a link plus its rule-based YAML stanza.
func (r *Registry) Generate(d proxy.Descriptor) (Link, error) {
	uri, err := r.URI(d)
	if err != nil {
		return Link{}, err
	}
	block, err := clash.Block(d)
	if err != nil {
		return Link{}, fmt.Errorf("render stanza: %w", err)
	}
	return Link{URI: uri, Clash: block}, nil
}

// Schemes lists the registered schemes.
func (r *Registry) Schemes() []string {
	out := make([]string, 0, len(r.byScheme))
	for s := range r.byScheme {
		out = append(out, s)
	}
	return out
}

var defaultRegistry = NewRegistry()

// Parse decodes a link with the built-in codecs.
func Parse(uri string) (proxy.Descriptor, error) { return defaultRegistry.Parse(uri) }

// URI renders the canonical link for d with the built-in codecs.
func URI(d proxy.Descriptor) (string, error) { return defaultRegistry.URI(d) }

// Generate renders d with the built-in codecs.
func Generate(d proxy.Descriptor) (Link, error) { return defaultRegistry.Generate(d) }
