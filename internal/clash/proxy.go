package clash

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"proxysmith/internal/proxy"
)

// Proxy builds the proxies stanza for d under the given display name.
// Certificate verification is always skipped for generated configs.
func Proxy(d proxy.Descriptor, name string) *yaml.Node {
	c := d.Base()
	m := Mapping()
	Set(m, "name", Quoted(name))
	Set(m, "type", Str(typeName(d.Type())))
	Set(m, "server", Str(c.Server))
	Set(m, "port", Int(c.Port))
	Set(m, "udp", Bool(true))
	Set(m, "skip-cert-verify", Bool(true))
	if c.TLS {
		Set(m, "tls", Bool(true))
		Set(m, "servername", Str(c.SNI))
	}

	switch v := d.(type) {
	case proxy.VMess:
		Set(m, "uuid", Str(v.UUID))
		Set(m, "alterId", Int(v.AlterID))
		Set(m, "cipher", Str(v.Cipher))
	case proxy.VLESS:
		Set(m, "uuid", Str(v.UUID))
		if v.Flow != "" {
			Set(m, "flow", Str(v.Flow))
		}
	case proxy.Trojan:
		Set(m, "password", Str(v.Password))
	case proxy.Shadowsocks:
		Set(m, "cipher", Str(v.Cipher))
		Set(m, "password", Str(v.Password))
		Set(m, "plugin", Str("v2ray-plugin"))
		opts := Mapping()
		Set(opts, "mode", Str("websocket"))
		Set(opts, "tls", Bool(c.TLS))
		Set(opts, "skip-cert-verify", Bool(true))
		Set(opts, "host", Str(c.WSHost))
		Set(opts, "path", Quoted(c.WSPath))
		Set(opts, "mux", Bool(false))
		Set(m, "plugin-opts", opts)
		return m
	}

	switch c.Network {
	case proxy.NetworkWS, proxy.NetworkHTTPUpgrade:
		Set(m, "network", Str("ws"))
		opts := Mapping()
		Set(opts, "path", Quoted(c.WSPath))
		headers := Mapping()
		Set(headers, "Host", Str(c.WSHost))
		Set(opts, "headers", headers)
		if c.Network == proxy.NetworkHTTPUpgrade {
			Set(opts, "v2ray-http-upgrade", Bool(true))
		}
		Set(m, "ws-opts", opts)
	case proxy.NetworkGRPC:
		Set(m, "network", Str("grpc"))
		opts := Mapping()
		Set(opts, "grpc-service-name", Quoted(c.ServiceName))
		Set(m, "grpc-opts", opts)
	}
	return m
}

// Block renders d as a single-element proxies sequence, ready to paste
// under a proxies: key.
func Block(d proxy.Descriptor) (string, error) {
	out, err := Marshal(Sequence(Proxy(d, d.Base().Name)))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DisplayName strips quote characters and prefixes the 1-based index.
func DisplayName(index int, name string) string {
	name = strings.NewReplacer(`"`, "", "'", "").Replace(name)
	return "[" + strconv.Itoa(index) + "]-" + name
}

func typeName(t proxy.Type) string {
	if t == proxy.TypeShadowsocks {
		return "ss"
	}
	return string(t)
}
