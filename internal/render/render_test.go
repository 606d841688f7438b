package render

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"proxysmith/internal/codec"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

func vlessX() proxy.VLESS {
	return proxy.VLESS{
		Common: proxy.Common{
			Name: "X", Server: "1.2.3.4", Port: 443, TLS: true, SNI: "a.com",
			Network: proxy.NetworkWS, WSHost: "a.com", WSPath: "/path",
		},
		UUID: "11111111-1111-4111-8111-111111111111",
	}
}

type clashDoc struct {
	Port    int              `yaml:"port"`
	DNS     map[string]any   `yaml:"dns"`
	Proxies []map[string]any `yaml:"proxies"`
	Groups  []struct {
		Name     string   `yaml:"name"`
		Type     string   `yaml:"type"`
		URL      string   `yaml:"url"`
		Interval int      `yaml:"interval"`
		Proxies  []string `yaml:"proxies"`
	} `yaml:"proxy-groups"`
	Rules []string `yaml:"rules"`
}

func decodeClash(t *testing.T, out []byte) clashDoc {
	t.Helper()
	var doc clashDoc
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	return doc
}

func TestClash_MinimalSingleProxy(t *testing.T) {
	out, err := Clash([]proxy.Descriptor{vlessX()}, ClashOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "proxies:\n") {
		t.Fatalf("output should start with proxies header, got:\n%s", s)
	}
	if !strings.Contains(s, `- name: "[1]-X"`) {
		t.Fatalf("missing indexed name, got:\n%s", s)
	}
	if strings.Contains(s, "proxy-groups") || strings.Contains(s, "dns:") {
		t.Fatalf("minimal mode emitted full sections:\n%s", s)
	}

	doc := decodeClash(t, out)
	if len(doc.Proxies) != 1 || doc.Proxies[0]["name"] != "[1]-X" {
		t.Fatalf("proxies=%v", doc.Proxies)
	}
}

func TestClash_FullModeGroups(t *testing.T) {
	ds := []proxy.Descriptor{vlessX(), proxy.Rename(vlessX(), `Y "quoted"`)}
	out, err := Clash(ds, ClashOptions{Full: true, FakeIP: true, BestPing: true, Fallback: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := decodeClash(t, out)

	if doc.Port != 7890 {
		t.Fatalf("port=%d, want=7890", doc.Port)
	}
	if doc.DNS["enhanced-mode"] != "fake-ip" {
		t.Fatalf("enhanced-mode=%v, want=fake-ip", doc.DNS["enhanced-mode"])
	}
	if got := doc.Proxies[1]["name"]; got != "[2]-Y quoted" {
		t.Fatalf("name=%v, want=[2]-Y quoted", got)
	}

	if len(doc.Groups) != 4 {
		t.Fatalf("groups=%d, want=4", len(doc.Groups))
	}
	dispatch := doc.Groups[0]
	wantDispatch := []string{"BEST-PING", "FALLBACK", "SELECTOR", "DIRECT", "REJECT"}
	if strings.Join(dispatch.Proxies, ",") != strings.Join(wantDispatch, ",") {
		t.Fatalf("dispatcher proxies=%v, want=%v", dispatch.Proxies, wantDispatch)
	}
	sel := doc.Groups[1]
	if sel.Name != "SELECTOR" || strings.Join(sel.Proxies, ",") != "DIRECT,REJECT,[1]-X,[2]-Y quoted" {
		t.Fatalf("selector=%+v", sel)
	}
	bp := doc.Groups[2]
	if bp.Type != "url-test" || bp.Interval != 300 || bp.URL != "http://www.gstatic.com/generate_204" || len(bp.Proxies) != 2 {
		t.Fatalf("best-ping=%+v", bp)
	}
	if doc.Groups[3].Type != "fallback" {
		t.Fatalf("group3 type=%q, want=fallback", doc.Groups[3].Type)
	}
	if len(doc.Rules) != 1 || doc.Rules[0] != "MATCH,"+dispatch.Name {
		t.Fatalf("rules=%v", doc.Rules)
	}
}

func TestClash_RedirHostAndHeader(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	out, err := Clash(nil, ClashOptions{Full: true, Generated: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "# Clash Config") {
		t.Fatalf("missing header comment:\n%s", out)
	}
	if !strings.Contains(string(out), "2024-05-01T10:00:00Z") {
		t.Fatalf("missing timestamp:\n%s", out)
	}
	doc := decodeClash(t, out)
	if doc.DNS["enhanced-mode"] != "redir-host" {
		t.Fatalf("enhanced-mode=%v", doc.DNS["enhanced-mode"])
	}
	if len(doc.Groups) != 2 {
		t.Fatalf("groups=%d, want=2 without auxiliary groups", len(doc.Groups))
	}
}

func TestClash_DoesNotMutateInput(t *testing.T) {
	ds := []proxy.Descriptor{vlessX()}
	if _, err := Clash(ds, ClashOptions{Full: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds[0].Base().Name != "X" {
		t.Fatalf("name=%q, input mutated", ds[0].Base().Name)
	}
}

func TestSingBox_Indent(t *testing.T) {
	out, err := SingBox([]proxy.Descriptor{vlessX()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "{\n  \"dns\": {") {
		t.Fatalf("unexpected prefix:\n%.40s", out)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
}

func TestURIList_PreservesOrder(t *testing.T) {
	tr := proxy.Trojan{Common: proxy.Common{Name: "t", Server: "t.com", Port: 443, TLS: true, SNI: "t.com", Network: proxy.NetworkTCP}, Password: "pw"}
	out, err := URIList([]proxy.Descriptor{vlessX(), tr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "vless://") || !strings.HasPrefix(lines[1], "trojan://") {
		t.Fatalf("lines=%q", lines)
	}
	back, err := codec.ParseLinks(out)
	if err != nil || len(back.Descriptors) != 2 {
		t.Fatalf("reparse: %+v %v", back, err)
	}
	if back.Descriptors[0] != proxy.Descriptor(vlessX()) {
		t.Fatalf("reparsed=%+v", back.Descriptors[0])
	}
}

func TestRender_EmptyInputIsValid(t *testing.T) {
	for _, target := range []Target{TargetClash, TargetSingBox, TargetURIList} {
		if _, err := Render(target, nil, Options{}); err != nil {
			t.Fatalf("%s: unexpected error: %v", target, err)
		}
	}
}

func TestRender_UnknownTarget(t *testing.T) {
	_, err := Render("surge", nil, Options{})
	if !errors.Is(err, pkgerrors.ErrUnknownTarget) {
		t.Fatalf("err=%v, want ErrUnknownTarget", err)
	}
	if _, err := ParseTarget("nekobox"); err != nil {
		t.Fatalf("ParseTarget(nekobox) err=%v", err)
	}
}
