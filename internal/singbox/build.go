package singbox

import (
	"fmt"

	"proxysmith/internal/proxy"
)

// Fixed tags of the generated graph.
const (
	TagSelector = "Internet"
	TagURLTest  = "Best Latency"
	TagDirect   = "direct"
	TagBypass   = "bypass"
	TagBlock    = "block"
	TagDNSOut   = "dns-out"

	urlTestURL      = "https://detectportal.firefox.com/success.txt"
	urlTestInterval = "1m0s"
)

var multicast = []string{"224.0.0.0/3", "ff00::/8"}

// Build assembles the document for ds. Outbound tags are the descriptor
// names, made unique with a numeric suffix.
func Build(ds []proxy.Descriptor) *Config {
	tags := uniqueTags(ds)

	outbounds := make([]any, 0, len(ds)+6)
	outbounds = append(outbounds,
		SelectorOutbound{
			Outbounds: concat([]string{TagURLTest}, tags, []string{TagDirect}),
			Tag:       TagSelector,
			Type:      "selector",
		},
		URLTestOutbound{
			Interval:  urlTestInterval,
			Outbounds: concat(tags, []string{TagDirect}),
			Tag:       TagURLTest,
			Type:      "urltest",
			URL:       urlTestURL,
		},
	)
	for i, d := range ds {
		outbounds = append(outbounds, buildOutbound(d, tags[i]))
	}
	outbounds = append(outbounds,
		BasicOutbound{Tag: TagDirect, Type: "direct"},
		BasicOutbound{Tag: TagBypass, Type: "direct"},
		BasicOutbound{Tag: TagBlock, Type: "block"},
		BasicOutbound{Tag: TagDNSOut, Type: "dns"},
	)

	return &Config{
		DNS:       defaultDNS(),
		Inbounds:  defaultInbounds(),
		Outbounds: outbounds,
		Route: Route{
			AutoDetectInterface: true,
			Rules: []RouteRule{
				{Outbound: TagDNSOut, Port: []int{53}},
				{Inbound: []string{"dns-in"}, Outbound: TagDNSOut},
				{Network: []string{"udp"}, Outbound: TagBlock, Port: []int{443}},
				{IPCIDR: multicast, Outbound: TagBlock, SourceIPCIDR: multicast},
			},
		},
	}
}

func defaultDNS() DNS {
	return DNS{
		Final:            "dns-final",
		IndependentCache: true,
		Rules: []DNSRule{
			{Domain: []string{"family.cloudflare-dns.com"}, Server: "direct-dns"},
		},
		Servers: []DNSServer{
			{Address: "https://family.cloudflare-dns.com/dns-query", AddressResolver: "direct-dns", Strategy: "ipv4_only", Tag: "remote-dns"},
			{Address: "local", Strategy: "ipv4_only", Tag: "direct-dns"},
			{Address: "local", AddressResolver: "dns-local", Strategy: "ipv4_only", Tag: "dns-final"},
			{Address: "local", Tag: "dns-local"},
			{Address: "rcode://success", Tag: "dns-block"},
		},
	}
}

func defaultInbounds() []any {
	return []any{
		DirectInbound{
			Listen: "0.0.0.0", ListenPort: 6450,
			OverrideAddress: "8.8.8.8", OverridePort: 53,
			Tag: "dns-in", Type: "direct",
		},
		TunInbound{
			EndpointIndependentNAT:   true,
			Inet4Address:             []string{"172.19.0.1/28"},
			MTU:                      9000,
			Sniff:                    true,
			SniffOverrideDestination: true,
			Stack:                    "system",
			Tag:                      "tun-in",
			Type:                     "tun",
		},
		MixedInbound{
			Listen: "0.0.0.0", ListenPort: 2080,
			Sniff: true, SniffOverrideDestination: true,
			Tag: "mixed-in", Type: "mixed",
		},
	}
}

func buildOutbound(d proxy.Descriptor, tag string) any {
	c := d.Base()
	switch v := d.(type) {
	case proxy.VMess:
		return VMessOutbound{
			AlterID:        v.AlterID,
			DomainStrategy: "ipv4_only",
			Multiplex:      defaultMultiplex(),
			Security:       v.Cipher,
			Server:         c.Server,
			ServerPort:     c.Port,
			Tag:            tag,
			TLS:            buildTLS(c),
			Transport:      buildTransport(c),
			Type:           "vmess",
			UUID:           v.UUID,
		}
	case proxy.VLESS:
		return VLESSOutbound{
			DomainStrategy: "ipv4_only",
			Flow:           v.Flow,
			Multiplex:      defaultMultiplex(),
			PacketEncoding: "xudp",
			Server:         c.Server,
			ServerPort:     c.Port,
			Tag:            tag,
			TLS:            buildTLS(c),
			Transport:      buildTransport(c),
			Type:           "vless",
			UUID:           v.UUID,
		}
	case proxy.Trojan:
		return TrojanOutbound{
			DomainStrategy: "ipv4_only",
			Multiplex:      defaultMultiplex(),
			Password:       v.Password,
			Server:         c.Server,
			ServerPort:     c.Port,
			Tag:            tag,
			TLS:            buildTLS(c),
			Transport:      buildTransport(c),
			Type:           "trojan",
		}
	case proxy.Shadowsocks:
		return ShadowsocksOutbound{
			Type:       "shadowsocks",
			Tag:        tag,
			Server:     c.Server,
			ServerPort: c.Port,
			Method:     v.Cipher,
			Password:   v.Password,
			Plugin:     "v2ray-plugin",
			PluginOpts: PluginOpts(c),
		}
	default:
		panic(fmt.Sprintf("singbox: unknown descriptor %T", d))
	}
}

// PluginOpts encodes the v2ray-plugin option string for a shadowsocks
// descriptor.
func PluginOpts(c proxy.Common) string {
	tls := 0
	if c.TLS {
		tls = 1
	}
	return fmt.Sprintf("mux=0;path=%s;host=%s;tls=%d", c.WSPath, c.WSHost, tls)
}

func defaultMultiplex() Multiplex {
	return Multiplex{Enabled: false, MaxStreams: 32, Protocol: "smux"}
}

func buildTLS(c proxy.Common) TLS {
	return TLS{
		Enabled:    c.TLS,
		Insecure:   false,
		ServerName: c.SNI,
		UTLS:       UTLS{Enabled: true, Fingerprint: "randomized"},
	}
}

func buildTransport(c proxy.Common) *Transport {
	switch c.Network {
	case proxy.NetworkWS:
		zero := 0
		return &Transport{
			EarlyDataHeaderName: "Sec-WebSocket-Protocol",
			Headers:             map[string]string{"Host": c.WSHost},
			MaxEarlyData:        &zero,
			Path:                c.WSPath,
			Type:                "ws",
		}
	case proxy.NetworkHTTPUpgrade:
		return &Transport{Host: c.WSHost, Path: c.WSPath, Type: "httpupgrade"}
	case proxy.NetworkGRPC:
		return &Transport{ServiceName: c.ServiceName, Type: "grpc"}
	default:
		return nil
	}
}

func uniqueTags(ds []proxy.Descriptor) []string {
	used := map[string]bool{
		TagSelector: true, TagURLTest: true, TagDirect: true,
		TagBypass: true, TagBlock: true, TagDNSOut: true,
	}
	tags := make([]string, len(ds))
	for i, d := range ds {
		name := d.Base().Name
		tag := name
		for n := 2; used[tag]; n++ {
			tag = fmt.Sprintf("%s-%d", name, n)
		}
		used[tag] = true
		tags[i] = tag
	}
	return tags
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
