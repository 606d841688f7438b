package codec

import (
	"errors"
	"testing"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

func FuzzParseShadowsocks(f *testing.F) {
	f.Add("ss://bm9uZToxMjM0@5.6.7.8:80?path=%2Fp&host=h.com&security=none#SS")
	f.Add("ss://YWVzLTEyOC1nY206cGFzc0BleC5jb206NDQz#x")
	f.Add("ss://none:pw@h.com:1?plugin_opts=path%3D%3Bhost%3D%3Btls%3D1")
	f.Add("ss://a@b@c:1?plugin=host=;path=/x#")
	f.Add("ss://%zz@h:1")

	f.Fuzz(func(t *testing.T, uri string) {
		d, err := ShadowsocksCodec{}.Parse(uri)
		if err != nil {
			var de *pkgerrors.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("err=%T %v, want *DecodeError", err, err)
			}
			return
		}
		ss := d.(proxy.Shadowsocks)
		if ss.Cipher == "" || ss.Password == "" {
			t.Fatalf("decoded without credential: %+v", ss)
		}
		if !proxy.ValidPort(ss.Port) {
			t.Fatalf("port=%d out of range", ss.Port)
		}
		if ss.Network != proxy.NetworkWS || ss.WSHost == "" {
			t.Fatalf("network/wsHost=%q/%q", ss.Network, ss.WSHost)
		}
	})
}

func FuzzParseLinks(f *testing.F) {
	f.Add("vless://u@1.2.3.4:443?type=ws#a\ntrojan://p@h:1\n# c\nbogus")
	f.Add("vmess://e30=")
	f.Add("")

	f.Fuzz(func(t *testing.T, text string) {
		res, err := ParseLinks(text)
		if err != nil && !errors.Is(err, pkgerrors.ErrNoValidLinks) {
			t.Fatalf("err=%v", err)
		}
		if err == nil && len(res.Descriptors) == 0 {
			t.Fatalf("nil error with zero descriptors")
		}
		if res.Failed != len(res.Errors) {
			t.Fatalf("failed=%d errors=%d", res.Failed, len(res.Errors))
		}
	})
}
