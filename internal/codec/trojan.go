package codec

import (
	"proxysmith/internal/proxy"
)

// TrojanCodec implements Codec for trojan:// links. Trojan always runs over
// TLS, so the security parameter is ignored on parse.
type TrojanCodec struct{}

func (TrojanCodec) Scheme() string   { return "trojan" }
func (TrojanCodec) Type() proxy.Type { return proxy.TypeTrojan }

func (TrojanCodec) Parse(uri string) (proxy.Descriptor, error) {
	// trojan://password@address:port?parameters#remark
	l, err := parseStandard("trojan", "password", uri)
	if err != nil {
		return nil, err
	}

	c := l.common
	c.TLS = true
	if c.Network == proxy.NetworkGRPC {
		c.ServiceName = firstNonEmpty(l.query.Get("serviceName"), l.query.Get("alpn"))
	}
	if c.Name == "" {
		c.Name = "Trojan"
	}

	return proxy.Trojan{Common: c, Password: l.credential}, nil
}

func (TrojanCodec) Encode(d proxy.Descriptor) (string, error) {
	t, ok := d.(proxy.Trojan)
	if !ok {
		return "", wrongVariant("trojan", d)
	}

	var q query
	q.add("security", security(t.TLS))
	addTransport(&q, t.Common)
	q.add("sni", t.SNI)

	return encodeStandard("trojan", t.Password, t.Common, &q), nil
}
