package catalog

import (
	"errors"
	"math/rand"
	"testing"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

func TestParse_JSON(t *testing.T) {
	data := []byte(`[
		{"proxy":"1.2.3.4","port":443,"country":"SG","asOrganization":"Akamai"},
		{"proxy":"5.6.7.8","port":"8443"},
		{"proxy":"","port":"80","country":"US"},
		{"proxy":"9.9.9.9"}
	]`)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []proxy.Endpoint{
		{IP: "1.2.3.4", Port: "443", Country: "SG", Provider: "Akamai"},
		{IP: "5.6.7.8", Port: "8443", Country: "UNK", Provider: "UNK"},
	}
	if len(got) != len(want) {
		t.Fatalf("len=%d, want=%d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("[%d]=%+v, want=%+v", i, got[i], want[i])
		}
	}
}

func TestParse_TextDelimiters(t *testing.T) {
	data := []byte("1.1.1.1\t443\tUS\tCloudflare\r\n" +
		"2.2.2.2|80|DE\n" +
		"\n" +
		"3.3.3.3,8080, ,Hetzner\n" +
		"garbage\n")
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []proxy.Endpoint{
		{IP: "1.1.1.1", Port: "443", Country: "US", Provider: "Cloudflare"},
		{IP: "2.2.2.2", Port: "80", Country: "DE", Provider: "UNK"},
		{IP: "3.3.3.3", Port: "8080", Country: "UNK", Provider: "Hetzner"},
	}
	if len(got) != len(want) {
		t.Fatalf("len=%d, want=%d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("[%d]=%+v, want=%+v", i, got[i], want[i])
		}
	}
}

func TestParse_BrokenJSONFallsBackToText(t *testing.T) {
	got, err := Parse([]byte("[not json,443"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 1 || got[0].Port != "443" {
		t.Fatalf("got=%v, want one text-parsed endpoint", got)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse([]byte("[]")); !errors.Is(err, pkgerrors.ErrCatalogEmpty) {
		t.Fatalf("err=%v, want ErrCatalogEmpty", err)
	}
}

func sample() []proxy.Endpoint {
	return []proxy.Endpoint{
		{IP: "1.0.0.1", Port: "443", Country: "US", Provider: "Cloudflare"},
		{IP: "1.0.0.2", Port: "443", Country: "SG", Provider: "Akamai Technologies"},
		{IP: "1.0.0.3", Port: "443", Country: "US", Provider: "Amazon"},
		{IP: "1.0.0.4", Port: "443", Country: "DE", Provider: "Hetzner"},
	}
}

func TestCountries(t *testing.T) {
	got := Countries(sample())
	want := []string{"DE", "SG", "US"}
	if len(got) != len(want) {
		t.Fatalf("got=%v, want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v, want=%v", got, want)
		}
	}
}

func TestFilter(t *testing.T) {
	got := Filter(sample(), Query{Countries: []string{"us"}, Search: "AMA"})
	if len(got) != 1 || got[0].IP != "1.0.0.3" {
		t.Fatalf("got=%v, want only 1.0.0.3", got)
	}
	if got := Filter(sample(), Query{Provider: "hetzner"}); len(got) != 1 || got[0].Country != "DE" {
		t.Fatalf("provider filter=%v, want only DE", got)
	}
	if n := len(Filter(sample(), Query{})); n != 4 {
		t.Fatalf("empty query len=%d, want=4", n)
	}
}

func TestPage(t *testing.T) {
	eps := make([]proxy.Endpoint, 45)
	items, total := Page(eps, 3, DefaultPageSize)
	if total != 3 || len(items) != 5 {
		t.Fatalf("total=%d len=%d, want=3/5", total, len(items))
	}
	items, _ = Page(eps, 99, DefaultPageSize)
	if len(items) != 5 {
		t.Fatalf("clamped page len=%d, want=5", len(items))
	}
	if items, total = Page(nil, 1, 0); items != nil || total != 0 {
		t.Fatalf("empty page=%v/%d", items, total)
	}
}

func TestSample(t *testing.T) {
	eps := sample()
	got := Sample(eps, 2, rand.New(rand.NewSource(1)))
	if len(got) != 2 {
		t.Fatalf("len=%d, want=2", len(got))
	}
	if eps[0].IP != "1.0.0.1" {
		t.Fatalf("input was modified")
	}
	if n := len(Sample(eps, -1, rand.New(rand.NewSource(1)))); n != 4 {
		t.Fatalf("unbounded len=%d, want=4", n)
	}
}
