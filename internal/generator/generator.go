// Package generator builds proxy descriptors for catalog endpoints routed
// through a fronting domain.
package generator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"proxysmith/internal/codec"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// DefaultPathTemplate is the ws path used when none is configured.
const DefaultPathTemplate = "/{ip}-{port}"

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(singleStructLevel, SingleOptions{})
	v.RegisterStructValidation(subscriptionStructLevel, SubscriptionOptions{})
	return v
}

// SingleOptions describes one generated link.
type SingleOptions struct {
	Protocol proxy.Type `json:"protocol" validate:"required,oneof=vless trojan shadowsocks vmess"`
	TLS      bool       `json:"tls"`
	// Credential is a UUID for vless/vmess and a password otherwise.
	Credential   string `json:"credential" validate:"required"`
	Domain       string `json:"domain" validate:"required,hostname_rfc1123"`
	Bug          string `json:"bug" validate:"omitempty,hostname_rfc1123"`
	Wildcard     bool   `json:"wildcard"`
	PathTemplate string `json:"path_template"`
	Name         string `json:"name"`
}

func singleStructLevel(sl validator.StructLevel) {
	o := sl.Current().Interface().(SingleOptions)
	if needsUUID(o.Protocol) && o.Credential != "" {
		if _, err := uuid.Parse(o.Credential); err != nil {
			sl.ReportError(o.Credential, "Credential", "Credential", "uuid", "")
		}
	}
}

func needsUUID(t proxy.Type) bool {
	return t == proxy.TypeVLESS || t == proxy.TypeVMess
}

// Single builds the descriptor for ep. Without a bug host the server, SNI
// and ws Host are all the domain. A bug host becomes the server; in
// wildcard mode SNI and Host are bug.domain, otherwise the bug itself.
func Single(ep proxy.Endpoint, opts SingleOptions) (proxy.Descriptor, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, pkgerrors.FromValidator(err)
	}

	host := opts.Domain
	server := opts.Domain
	if opts.Bug != "" {
		server = opts.Bug
		host = opts.Bug
		if opts.Wildcard {
			host = opts.Bug + "." + opts.Domain
		}
	}

	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("%s - %s [%s-%s]", ep.Country, ep.Provider, label(opts.Protocol), tlsLabel(opts.TLS))
	}

	c := common(ep, opts.PathTemplate, opts.TLS)
	c.Name = name
	c.Server = server
	c.SNI = host
	c.WSHost = host
	return descriptor(opts.Protocol, c, opts.Credential), nil
}

// Link builds the descriptor for ep and renders its URI and Clash stanza.
func Link(ep proxy.Endpoint, opts SingleOptions) (codec.Link, error) {
	d, err := Single(ep, opts)
	if err != nil {
		return codec.Link{}, err
	}
	return codec.Generate(d)
}

// ExpandPath substitutes {ip} and {port} in template.
func ExpandPath(template string, ep proxy.Endpoint) string {
	if template == "" {
		template = DefaultPathTemplate
	}
	return strings.NewReplacer("{ip}", ep.IP, "{port}", ep.Port).Replace(template)
}

func common(ep proxy.Endpoint, pathTemplate string, tls bool) proxy.Common {
	port := 80
	if tls {
		port = 443
	}
	return proxy.Common{
		Port:    port,
		TLS:     tls,
		Network: proxy.NetworkWS,
		WSPath:  ExpandPath(pathTemplate, ep),
	}
}

func descriptor(t proxy.Type, c proxy.Common, credential string) proxy.Descriptor {
	switch t {
	case proxy.TypeVLESS:
		return proxy.VLESS{Common: c, UUID: credential}
	case proxy.TypeVMess:
		return proxy.VMess{Common: c, UUID: credential, Cipher: "auto"}
	case proxy.TypeTrojan:
		return proxy.Trojan{Common: c, Password: credential}
	default:
		return proxy.Shadowsocks{Common: c, Cipher: "none", Password: credential}
	}
}

func label(t proxy.Type) string {
	if t == proxy.TypeShadowsocks {
		return "SS"
	}
	return strings.ToUpper(string(t))
}

func tlsLabel(tls bool) string {
	if tls {
		return "TLS"
	}
	return "NTLS"
}
