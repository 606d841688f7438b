package codec

import (
	"fmt"
	"net/url"
	"strings"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// standardLink is the shared shape of vless:// and trojan:// links:
// credential@host:port?query#name.
type standardLink struct {
	credential string
	common     proxy.Common
	query      url.Values
}

func parseNetwork(s string) (proxy.Network, error) {
	switch n := proxy.Network(strings.ToLower(s)); n {
	case "":
		return proxy.NetworkTCP, nil
	case proxy.NetworkTCP, proxy.NetworkWS, proxy.NetworkGRPC, proxy.NetworkHTTPUpgrade:
		return n, nil
	default:
		return "", fmt.Errorf("unsupported transport %q", s)
	}
}

func parseStandard(scheme, credField, uri string) (*standardLink, error) {
	if !strings.HasPrefix(strings.ToLower(uri), scheme+"://") {
		return nil, pkgerrors.Malformed(scheme, uri, fmt.Errorf("must start with %s://", scheme))
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, pkgerrors.Malformed(scheme, uri, err)
	}

	if u.User == nil || u.User.Username() == "" {
		return nil, pkgerrors.Missing(scheme, credField, uri)
	}
	host := u.Hostname()
	if host == "" {
		return nil, pkgerrors.Missing(scheme, "server", uri)
	}
	if u.Port() == "" {
		return nil, pkgerrors.Missing(scheme, "port", uri)
	}
	port, err := parsePort(u.Port())
	if err != nil {
		return nil, pkgerrors.Malformed(scheme, uri, fmt.Errorf("invalid port: %w", err))
	}

	q := u.Query()
	network, err := parseNetwork(q.Get("type"))
	if err != nil {
		return nil, pkgerrors.Malformed(scheme, uri, err)
	}

	hostHeader := firstNonEmpty(q.Get("host"), host)
	c := proxy.Common{
		Name:    u.Fragment,
		Server:  host,
		Port:    port,
		Network: network,
		SNI:     firstNonEmpty(q.Get("sni"), hostHeader),
	}
	if network.CarriesHost() {
		c.WSHost = hostHeader
		c.WSPath = q.Get("path")
	}

	return &standardLink{credential: u.User.Username(), common: c, query: q}, nil
}

// encodeStandard renders credential@host:port?query#name.
func encodeStandard(scheme, credential string, c proxy.Common, q *query) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.User(credential),
		Host:     hostPort(c.Server, c.Port),
		RawQuery: q.String(),
		Fragment: c.Name,
	}
	return u.String()
}

// addTransport appends the transport keys in canonical order.
func addTransport(q *query, c proxy.Common) {
	q.add("type", string(c.Network))
	switch c.Network {
	case proxy.NetworkWS, proxy.NetworkHTTPUpgrade:
		q.add("host", c.WSHost)
		q.add("path", c.WSPath)
	case proxy.NetworkGRPC:
		q.add("serviceName", c.ServiceName)
	}
}

func wrongVariant(scheme string, d proxy.Descriptor) error {
	return fmt.Errorf("%s codec cannot encode %s descriptor", scheme, d.Type())
}
