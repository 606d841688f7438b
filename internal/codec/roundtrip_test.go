package codec

import (
	"math/rand"
	"testing"

	"proxysmith/internal/proxy"
)

var (
	rtHosts    = []string{"1.2.3.4", "example.com", "cdn.example.net", "2001:db8::1", "a-b.io"}
	rtNames    = []string{"node", "Node 1", "日本 #1", "a&b=c", "x?y", "100%", "[TR] de"}
	rtPaths    = []string{"", "/", "/path", "/p?ed=2048", "/a b/c"}
	rtSecrets  = []string{"pw", "p@ss:w/rd", "with space", "1234", "%41"}
	rtCiphers  = []string{"auto", "aes-128-gcm", "chacha20-poly1305", "none"}
	rtNetworks = []proxy.Network{proxy.NetworkTCP, proxy.NetworkWS, proxy.NetworkGRPC, proxy.NetworkHTTPUpgrade}
)

func pick[T any](r *rand.Rand, vs []T) T { return vs[r.Intn(len(vs))] }

func randomCommon(r *rand.Rand, network proxy.Network) proxy.Common {
	c := proxy.Common{
		Name:    pick(r, rtNames),
		Server:  pick(r, rtHosts),
		Port:    1 + r.Intn(65535),
		TLS:     r.Intn(2) == 0,
		SNI:     pick(r, rtHosts[1:]),
		Network: network,
	}
	switch network {
	case proxy.NetworkWS, proxy.NetworkHTTPUpgrade:
		c.WSHost = pick(r, rtHosts[1:])
		c.WSPath = pick(r, rtPaths)
	case proxy.NetworkGRPC:
		c.ServiceName = pick(r, []string{"", "svc", "grpc.Service"})
	}
	return c
}

func randomDescriptor(r *rand.Rand) proxy.Descriptor {
	switch r.Intn(4) {
	case 0:
		return proxy.VMess{
			Common:  randomCommon(r, pick(r, rtNetworks)),
			UUID:    "11111111-1111-4111-8111-111111111111",
			AlterID: r.Intn(64),
			Cipher:  pick(r, rtCiphers),
		}
	case 1:
		return proxy.VLESS{
			Common: randomCommon(r, pick(r, rtNetworks)),
			UUID:   "22222222-2222-4222-8222-222222222222",
			Flow:   pick(r, []string{"", "xtls-rprx-vision"}),
		}
	case 2:
		c := randomCommon(r, pick(r, rtNetworks))
		c.TLS = true
		return proxy.Trojan{Common: c, Password: pick(r, rtSecrets)}
	default:
		return proxy.Shadowsocks{
			Common:   randomCommon(r, proxy.NetworkWS),
			Cipher:   pick(r, rtCiphers),
			Password: pick(r, rtSecrets),
		}
	}
}

func TestRoundTrip_RandomDescriptors(t *testing.T) {
	r := rand.New(rand.NewSource(20240611))
	for i := 0; i < 2000; i++ {
		want := randomDescriptor(r)
		link, err := Generate(want)
		if err != nil {
			t.Fatalf("#%d generate %+v: %v", i, want, err)
		}
		got, err := Parse(link.URI)
		if err != nil {
			t.Fatalf("#%d parse %q: %v", i, link.URI, err)
		}
		if got != want {
			t.Fatalf("#%d round trip mismatch\nuri:  %s\ngot:  %+v\nwant: %+v", i, link.URI, got, want)
		}
	}
}

func TestRoundTrip_Scenarios(t *testing.T) {
	uris := []string{
		"vless://11111111-1111-4111-8111-111111111111@1.2.3.4:443?encryption=none&security=tls&type=ws&host=a.com&path=%2Fpath&sni=a.com#test",
		"ss://bm9uZToxMjM0@5.6.7.8:80?path=%2Fp&host=h.com&security=none#SS",
	}
	for _, uri := range uris {
		d, err := Parse(uri)
		if err != nil {
			t.Fatalf("parse %q: %v", uri, err)
		}
		again, err := URI(d)
		if err != nil {
			t.Fatalf("uri: %v", err)
		}
		d2, err := Parse(again)
		if err != nil {
			t.Fatalf("reparse %q: %v", again, err)
		}
		if d2 != d {
			t.Fatalf("got %+v, want %+v", d2, d)
		}
	}
}
