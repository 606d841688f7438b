package codec

import (
	"proxysmith/internal/proxy"
)

// VLESSCodec implements Codec for vless:// links.
type VLESSCodec struct{}

func (VLESSCodec) Scheme() string   { return "vless" }
func (VLESSCodec) Type() proxy.Type { return proxy.TypeVLESS }

func (VLESSCodec) Parse(uri string) (proxy.Descriptor, error) {
	// vless://uuid@address:port?parameters#remark
	l, err := parseStandard("vless", "uuid", uri)
	if err != nil {
		return nil, err
	}

	c := l.common
	c.TLS = l.query.Get("security") == "tls"
	if c.Network == proxy.NetworkGRPC {
		c.ServiceName = l.query.Get("serviceName")
	}
	if c.Name == "" {
		c.Name = "VLESS"
	}

	return proxy.VLESS{Common: c, UUID: l.credential, Flow: l.query.Get("flow")}, nil
}

func (VLESSCodec) Encode(d proxy.Descriptor) (string, error) {
	v, ok := d.(proxy.VLESS)
	if !ok {
		return "", wrongVariant("vless", d)
	}

	var q query
	q.add("encryption", "none")
	q.add("security", security(v.TLS))
	addTransport(&q, v.Common)
	if v.Flow != "" {
		q.add("flow", v.Flow)
	}
	q.add("sni", v.SNI)

	return encodeStandard("vless", v.UUID, v.Common, &q), nil
}
