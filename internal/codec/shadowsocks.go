package codec

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// ShadowsocksCodec implements Codec for ss:// links in both the
// userinfo@host form and the fully base64-encoded form. The transport is
// always the v2ray-plugin websocket.
type ShadowsocksCodec struct{}

var (
	pluginPathRe = regexp.MustCompile(`path=([^;]+)`)
	pluginHostRe = regexp.MustCompile(`host=([^;]+)`)
)

func (ShadowsocksCodec) Scheme() string   { return "ss" }
func (ShadowsocksCodec) Type() proxy.Type { return proxy.TypeShadowsocks }

func (ShadowsocksCodec) Parse(uri string) (proxy.Descriptor, error) {
	const prefix = "ss://"
	if !strings.HasPrefix(strings.ToLower(uri), prefix) {
		return nil, pkgerrors.Malformed("ss", uri, fmt.Errorf("must start with %s", prefix))
	}
	body := uri[len(prefix):]

	body, rawName, _ := strings.Cut(body, "#")
	body, rawQuery, _ := strings.Cut(body, "?")

	var userinfo, server string
	if at := strings.LastIndexByte(body, '@'); at >= 0 {
		// ss://base64(method:password)@host:port?query#name
		userinfo = decodeUserinfo(body[:at])
		server = body[at+1:]
	} else {
		// ss://base64(method:password@host:port)#name
		decoded, err := decodeBase64(body)
		if err != nil {
			return nil, pkgerrors.Malformed("ss", uri, err)
		}
		s := string(decoded)
		at := strings.LastIndexByte(s, '@')
		if at < 0 {
			return nil, pkgerrors.Malformed("ss", uri, fmt.Errorf("missing '@' in encoded body"))
		}
		userinfo, server = s[:at], s[at+1:]
	}

	cipher, password, _ := strings.Cut(userinfo, ":")
	if cipher == "" {
		return nil, pkgerrors.Missing("ss", "cipher", uri)
	}
	if password == "" {
		return nil, pkgerrors.Missing("ss", "password", uri)
	}

	host, portStr, err := net.SplitHostPort(strings.TrimSuffix(server, "/"))
	if err != nil {
		return nil, pkgerrors.Malformed("ss", uri, err)
	}
	if host == "" {
		return nil, pkgerrors.Missing("ss", "server", uri)
	}
	port, err := parsePort(portStr)
	if err != nil {
		return nil, pkgerrors.Malformed("ss", uri, fmt.Errorf("invalid port: %w", err))
	}

	q := parseLooseQuery(rawQuery)
	opts := firstNonEmpty(q["plugin_opts"], q["plugin"])

	c := proxy.Common{
		Name:    firstNonEmpty(unescape(rawName), "SS"),
		Server:  host,
		Port:    port,
		TLS:     q["security"] == "tls" || strings.Contains(opts, "tls=1"),
		SNI:     firstNonEmpty(q["sni"], host),
		Network: proxy.NetworkWS,
		WSPath:  firstNonEmpty(q["path"], pluginToken(pluginPathRe, opts)),
		WSHost:  firstNonEmpty(q["host"], pluginToken(pluginHostRe, opts), host),
	}

	return proxy.Shadowsocks{Common: c, Cipher: cipher, Password: password}, nil
}

func (ShadowsocksCodec) Encode(d proxy.Descriptor) (string, error) {
	s, ok := d.(proxy.Shadowsocks)
	if !ok {
		return "", wrongVariant("ss", d)
	}

	var q query
	q.add("encryption", "none")
	q.add("type", "ws")
	q.add("host", s.WSHost)
	q.add("path", s.WSPath)
	q.add("security", security(s.TLS))
	q.add("sni", s.SNI)

	u := url.URL{Fragment: s.Name}
	return "ss://" + base64.RawURLEncoding.EncodeToString([]byte(s.Cipher+":"+s.Password)) +
		"@" + hostPort(s.Server, s.Port) + "?" + q.String() + u.String(), nil
}

// decodeUserinfo returns the base64-decoded credential when it decodes to
// readable method:password text, otherwise the percent-decoded literal.
func decodeUserinfo(raw string) string {
	if b, err := decodeBase64(raw); err == nil && utf8.Valid(b) && strings.Contains(string(b), ":") {
		return string(b)
	}
	return unescape(raw)
}

// parseLooseQuery keeps the first value per key. Malformed escapes are kept
// verbatim instead of failing the link.
func parseLooseQuery(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		if _, seen := out[k]; seen {
			continue
		}
		if dv, err := url.QueryUnescape(v); err == nil {
			v = dv
		}
		out[k] = v
	}
	return out
}

// pluginToken extracts key=value from a plugin options string. The key may
// appear anywhere; the value runs to the next ';'.
func pluginToken(re *regexp.Regexp, opts string) string {
	if opts == "" {
		return ""
	}
	if m := re.FindStringSubmatch(opts); m != nil {
		return m[1]
	}
	return ""
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
