package codec

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

func TestParse_VLESSWebSocket(t *testing.T) {
	d, err := Parse("vless://11111111-1111-4111-8111-111111111111@1.2.3.4:443?encryption=none&security=tls&type=ws&host=a.com&path=%2Fpath&sni=a.com#test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := proxy.VLESS{
		Common: proxy.Common{
			Name: "test", Server: "1.2.3.4", Port: 443, TLS: true, SNI: "a.com",
			Network: proxy.NetworkWS, WSHost: "a.com", WSPath: "/path",
		},
		UUID: "11111111-1111-4111-8111-111111111111",
	}
	if d != want {
		t.Fatalf("got %+v\nwant %+v", d, want)
	}
}

func TestParse_ShadowsocksUserinfoForm(t *testing.T) {
	d, err := Parse("ss://bm9uZToxMjM0@5.6.7.8:80?path=%2Fp&host=h.com&security=none#SS")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss, ok := d.(proxy.Shadowsocks)
	if !ok {
		t.Fatalf("type=%T, want proxy.Shadowsocks", d)
	}
	if ss.Cipher != "none" || ss.Password != "1234" {
		t.Fatalf("cipher/password=%q/%q, want none/1234", ss.Cipher, ss.Password)
	}
	if ss.Server != "5.6.7.8" || ss.Port != 80 {
		t.Fatalf("server/port=%q/%d, want 5.6.7.8/80", ss.Server, ss.Port)
	}
	if ss.WSPath != "/p" || ss.WSHost != "h.com" || ss.TLS {
		t.Fatalf("path/host/tls=%q/%q/%v, want /p/h.com/false", ss.WSPath, ss.WSHost, ss.TLS)
	}
	if ss.Network != proxy.NetworkWS || ss.Name != "SS" {
		t.Fatalf("network/name=%q/%q", ss.Network, ss.Name)
	}
}

func TestParse_ShadowsocksEncodedForm(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("aes-128-gcm:pa:ss@ex.com:8388"))
	d, err := Parse("ss://" + body + "#Node%201")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := d.(proxy.Shadowsocks)
	if ss.Cipher != "aes-128-gcm" || ss.Password != "pa:ss" {
		t.Fatalf("cipher/password=%q/%q", ss.Cipher, ss.Password)
	}
	if ss.Server != "ex.com" || ss.Port != 8388 || ss.Name != "Node 1" {
		t.Fatalf("server/port/name=%q/%d/%q", ss.Server, ss.Port, ss.Name)
	}
	if ss.WSHost != "ex.com" || ss.SNI != "ex.com" {
		t.Fatalf("wsHost/sni=%q/%q, want ex.com", ss.WSHost, ss.SNI)
	}
}

func TestParse_ShadowsocksLiteralUserinfo(t *testing.T) {
	d, err := Parse("ss://chacha20-ietf-poly1305:s3cret@ex.com:443?security=tls")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := d.(proxy.Shadowsocks)
	if ss.Cipher != "chacha20-ietf-poly1305" || ss.Password != "s3cret" || !ss.TLS {
		t.Fatalf("got %+v", ss)
	}
}

func TestParse_ShadowsocksPluginOpts(t *testing.T) {
	opts := "mux%3D0%3Bpath%3D%2Fws%3Bhost%3Dcdn.com%3Btls%3D1"
	d, err := Parse("ss://bm9uZToxMjM0@5.6.7.8:443?plugin_opts=" + opts + "#x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := d.(proxy.Shadowsocks)
	if !ss.TLS || ss.WSPath != "/ws" || ss.WSHost != "cdn.com" {
		t.Fatalf("tls/path/host=%v/%q/%q, want true//ws/cdn.com", ss.TLS, ss.WSPath, ss.WSHost)
	}
}

func TestParse_VMess(t *testing.T) {
	payload := `{"v":"2","ps":"vm","add":"v.com","port":443,"id":"uuid-1","aid":"2","net":"ws","host":"h.com","path":"/x","tls":"tls"}`
	d, err := Parse("vmess://" + base64.StdEncoding.EncodeToString([]byte(payload)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vm := d.(proxy.VMess)
	if vm.Port != 443 || vm.AlterID != 2 || vm.Cipher != "auto" {
		t.Fatalf("port/aid/cipher=%d/%d/%q", vm.Port, vm.AlterID, vm.Cipher)
	}
	if vm.WSHost != "h.com" || vm.WSPath != "/x" || vm.SNI != "h.com" || !vm.TLS {
		t.Fatalf("host/path/sni/tls=%q/%q/%q/%v", vm.WSHost, vm.WSPath, vm.SNI, vm.TLS)
	}
}

func TestParse_VMessDefaults(t *testing.T) {
	payload := `{"add":"v.com","port":"80","id":"u","net":"grpc","path":"svc"}`
	d, err := Parse("vmess://" + base64.RawURLEncoding.EncodeToString([]byte(payload)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vm := d.(proxy.VMess)
	if vm.Name != "VMess" || vm.ServiceName != "svc" || vm.WSHost != "" || vm.SNI != "v.com" {
		t.Fatalf("got %+v", vm)
	}
}

func TestParse_TrojanImpliesTLS(t *testing.T) {
	d, err := Parse("trojan://pw@t.com:443?security=none&type=grpc&alpn=h2#t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := d.(proxy.Trojan)
	if !tr.TLS {
		t.Fatalf("tls=false, want=true")
	}
	if tr.ServiceName != "h2" {
		t.Fatalf("serviceName=%q, want alpn fallback h2", tr.ServiceName)
	}
	if tr.SNI != "t.com" {
		t.Fatalf("sni=%q, want=t.com", tr.SNI)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		uri  string
		want error
	}{
		{"unknown scheme", "http://example.com", pkgerrors.ErrUnsupportedScheme},
		{"no scheme", "just text", pkgerrors.ErrUnsupportedScheme},
		{"vmess bad base64", "vmess://!!!", pkgerrors.ErrMalformedURI},
		{"vmess bad json", "vmess://" + base64.StdEncoding.EncodeToString([]byte("nope")), pkgerrors.ErrMalformedURI},
		{"vmess missing id", "vmess://" + base64.StdEncoding.EncodeToString([]byte(`{"add":"a","port":1}`)), pkgerrors.ErrMissingField},
		{"vless missing uuid", "vless://@1.2.3.4:443", pkgerrors.ErrMissingField},
		{"vless bad port", "vless://u@1.2.3.4:99999", pkgerrors.ErrMalformedURI},
		{"vless unknown transport", "vless://u@1.2.3.4:443?type=kcp", pkgerrors.ErrMalformedURI},
		{"trojan missing port", "trojan://pw@t.com", pkgerrors.ErrMissingField},
		{"ss missing password", "ss://" + base64.StdEncoding.EncodeToString([]byte("aes:")) + "@h.com:1", pkgerrors.ErrMissingField},
		{"ss bad host", "ss://bm9uZToxMjM0@nohostport", pkgerrors.ErrMalformedURI},
		{"ss encoded without at", "ss://" + base64.StdEncoding.EncodeToString([]byte("garbage")), pkgerrors.ErrMalformedURI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.uri)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err=%v, want %v", err, tc.want)
			}
			var de *pkgerrors.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("err=%T, want *DecodeError", err)
			}
		})
	}
}

func TestURI_FixedKeyOrder(t *testing.T) {
	uri, err := URI(proxy.VLESS{
		Common: proxy.Common{
			Name: "a b", Server: "1.2.3.4", Port: 443, TLS: true, SNI: "a.com",
			Network: proxy.NetworkWS, WSHost: "a.com", WSPath: "/p",
		},
		UUID: "u",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "vless://u@1.2.3.4:443?encryption=none&security=tls&type=ws&host=a.com&path=%2Fp&sni=a.com#a%20b"
	if uri != want {
		t.Fatalf("uri=%q\nwant=%q", uri, want)
	}

	uri, err = URI(proxy.Shadowsocks{
		Common: proxy.Common{Name: "SS", Server: "5.6.7.8", Port: 80, SNI: "5.6.7.8", Network: proxy.NetworkWS, WSHost: "h.com", WSPath: "/p"},
		Cipher: "none", Password: "1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "ss://bm9uZToxMjM0@5.6.7.8:80?encryption=none&type=ws&host=h.com&path=%2Fp&security=none&sni=5.6.7.8#SS"
	if uri != want {
		t.Fatalf("uri=%q\nwant=%q", uri, want)
	}
}

func TestGenerate_IncludesStanza(t *testing.T) {
	link, err := Generate(proxy.Trojan{
		Common:   proxy.Common{Name: "t", Server: "t.com", Port: 443, TLS: true, SNI: "t.com", Network: proxy.NetworkTCP},
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(link.URI, "trojan://pw@t.com:443?") {
		t.Fatalf("uri=%q", link.URI)
	}
	if !strings.Contains(link.Clash, "password: pw") {
		t.Fatalf("clash=%q, want password line", link.Clash)
	}
}

func TestRegistry_Detect(t *testing.T) {
	r := NewRegistry()
	for _, s := range []string{"vmess://x", "VLESS://x", "trojan://x", "ss://x", "shadowsocks://x"} {
		if _, err := r.Detect(s); err != nil {
			t.Fatalf("Detect(%q) err=%v", s, err)
		}
	}
	if len(r.Schemes()) != 4 {
		t.Fatalf("schemes=%v, want 4", r.Schemes())
	}
}
