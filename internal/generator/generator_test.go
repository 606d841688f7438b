package generator

import (
	"errors"
	"strings"
	"testing"

	"proxysmith/internal/codec"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

const testUUID = "11111111-1111-4111-8111-111111111111"

var testEndpoint = proxy.Endpoint{IP: "1.2.3.4", Port: "8443", Country: "SG", Provider: "Akamai"}

func TestSingle_DefaultDomain(t *testing.T) {
	d, err := Single(testEndpoint, SingleOptions{
		Protocol:   proxy.TypeVLESS,
		TLS:        true,
		Credential: testUUID,
		Domain:     "front.example.com",
	})
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	want := proxy.VLESS{
		Common: proxy.Common{
			Name:    "SG - Akamai [VLESS-TLS]",
			Server:  "front.example.com",
			Port:    443,
			TLS:     true,
			SNI:     "front.example.com",
			Network: proxy.NetworkWS,
			WSHost:  "front.example.com",
			WSPath:  "/1.2.3.4-8443",
		},
		UUID: testUUID,
	}
	if d != proxy.Descriptor(want) {
		t.Fatalf("got=%+v\nwant=%+v", d, want)
	}
}

func TestSingle_BugHost(t *testing.T) {
	cases := []struct {
		name     string
		wildcard bool
		wantHost string
	}{
		{"plain", false, "bug.io"},
		{"wildcard", true, "bug.io.front.example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Single(testEndpoint, SingleOptions{
				Protocol:     proxy.TypeTrojan,
				Credential:   "secret",
				Domain:       "front.example.com",
				Bug:          "bug.io",
				Wildcard:     tc.wildcard,
				PathTemplate: "/{ip}/{port}",
			})
			if err != nil {
				t.Fatalf("Single: %v", err)
			}
			c := d.Base()
			if c.Server != "bug.io" || c.SNI != tc.wantHost || c.WSHost != tc.wantHost {
				t.Fatalf("server/sni/host=%q/%q/%q, want bug.io/%s", c.Server, c.SNI, c.WSHost, tc.wantHost)
			}
			if c.Port != 80 || c.WSPath != "/1.2.3.4/8443" || c.Name != "SG - Akamai [TROJAN-NTLS]" {
				t.Fatalf("common=%+v", c)
			}
		})
	}
}

func TestSingle_ShadowsocksUsesNoneCipher(t *testing.T) {
	d, err := Single(testEndpoint, SingleOptions{
		Protocol: proxy.TypeShadowsocks, Credential: "pw", Domain: "front.example.com", Name: "custom",
	})
	if err != nil {
		t.Fatalf("Single: %v", err)
	}
	ss, ok := d.(proxy.Shadowsocks)
	if !ok || ss.Cipher != "none" || ss.Password != "pw" || ss.Name != "custom" {
		t.Fatalf("got=%+v", d)
	}
}

func TestSingle_Validation(t *testing.T) {
	cases := []struct {
		name  string
		opts  SingleOptions
		field string
	}{
		{"bad protocol", SingleOptions{Protocol: "http", Credential: "x", Domain: "a.com"}, "Protocol"},
		{"no credential", SingleOptions{Protocol: proxy.TypeTrojan, Domain: "a.com"}, "Credential"},
		{"vless needs uuid", SingleOptions{Protocol: proxy.TypeVLESS, Credential: "nope", Domain: "a.com"}, "Credential"},
		{"no domain", SingleOptions{Protocol: proxy.TypeTrojan, Credential: "x"}, "Domain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Single(testEndpoint, tc.opts)
			var ve *pkgerrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err=%v, want *ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field=%q, want=%q", ve.Field, tc.field)
			}
		})
	}
}

func TestLink_RoundTrips(t *testing.T) {
	opts := SingleOptions{Protocol: proxy.TypeVLESS, TLS: true, Credential: testUUID, Domain: "front.example.com"}
	link, err := Link(testEndpoint, opts)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !strings.HasPrefix(link.URI, "vless://"+testUUID+"@front.example.com:443?") {
		t.Fatalf("uri=%q", link.URI)
	}
	back, err := codec.Parse(link.URI)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want, _ := Single(testEndpoint, opts)
	if back != want {
		t.Fatalf("round trip=%+v, want=%+v", back, want)
	}
	if !strings.Contains(link.Clash, `name: "SG - Akamai [VLESS-TLS]"`) {
		t.Fatalf("clash=%s", link.Clash)
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("", testEndpoint); got != "/1.2.3.4-8443" {
		t.Fatalf("got=%q", got)
	}
	if got := ExpandPath("/p?ip={ip}&port={port}", testEndpoint); got != "/p?ip=1.2.3.4&port=8443" {
		t.Fatalf("got=%q", got)
	}
}
