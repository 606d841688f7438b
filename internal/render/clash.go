package render

import (
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"proxysmith/internal/clash"
	"proxysmith/internal/proxy"
)

const (
	groupDispatcher  = "INCOGNITO-MODE"
	groupSelector    = "SELECTOR"
	groupBestPing    = "BEST-PING"
	groupLoadBalance = "LOAD-BALANCE"
	groupFallback    = "FALLBACK"

	healthCheckURL      = "http://www.gstatic.com/generate_204"
	healthCheckInterval = 300
)

// ClashOptions controls the rule-based YAML document.
type ClashOptions struct {
	// Full adds the listener, DNS, group and rule sections.
	Full bool
	// FakeIP selects fake-ip DNS instead of redir-host.
	FakeIP      bool
	BestPing    bool
	LoadBalance bool
	Fallback    bool
	// KeepNames emits descriptor names without the index prefix, with
	// repeats suffixed " 2", " 3" and so on, and disables udp.
	KeepNames bool
	// Generated stamps a header comment when non-zero.
	Generated time.Time
}

// Clash renders ds as a rule-based YAML document. Proxy names become
// "[index]-name" with quote characters stripped unless KeepNames is set.
func Clash(ds []proxy.Descriptor, opts ClashOptions) ([]byte, error) {
	root := clash.Mapping()

	if opts.Full {
		clash.Set(root, "port", clash.Int(7890))
		clash.Set(root, "socks-port", clash.Int(7891))
		clash.Set(root, "allow-lan", clash.Bool(true))
		clash.Set(root, "mode", clash.Str("rule"))
		clash.Set(root, "log-level", clash.Str("silent"))
		clash.Set(root, "external-controller", clash.Str("0.0.0.0:9090"))
		clash.Set(root, "dns", dnsSection(opts.FakeIP))
	}

	names := make([]string, len(ds))
	seen := make(map[string]int, len(ds))
	proxies := clash.Sequence()
	for i, d := range ds {
		if opts.KeepNames {
			names[i] = uniqueName(seen, d.Base().Name)
		} else {
			names[i] = clash.DisplayName(i+1, d.Base().Name)
		}
		p := clash.Proxy(d, names[i])
		if opts.KeepNames {
			if udp := clash.Lookup(p, "udp"); udp != nil {
				udp.Value = "false"
			}
		}
		proxies.Content = append(proxies.Content, p)
	}
	clash.Set(root, "proxies", proxies)

	if opts.Full {
		clash.Set(root, "proxy-groups", proxyGroups(names, opts))
		clash.Set(root, "rules", clash.Strings("MATCH,"+groupDispatcher))
	}

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
	if !opts.Generated.IsZero() {
		doc.HeadComment = "Clash Config\nCreated: " + opts.Generated.UTC().Format(time.RFC3339)
	}
	return clash.Marshal(doc)
}

func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		return name + " " + strconv.Itoa(n)
	}
	return name
}

func dnsSection(fakeIP bool) *yaml.Node {
	mode := "redir-host"
	if fakeIP {
		mode = "fake-ip"
	}
	dns := clash.Mapping()
	clash.Set(dns, "enable", clash.Bool(true))
	clash.Set(dns, "ipv6", clash.Bool(false))
	clash.Set(dns, "listen", clash.Str("0.0.0.0:7874"))
	clash.Set(dns, "enhanced-mode", clash.Str(mode))
	clash.Set(dns, "nameserver", clash.Strings("8.8.8.8", "1.1.1.1"))
	return dns
}

// proxyGroups wires the optional auxiliary groups ahead of the plain
// selector inside the dispatcher.
func proxyGroups(names []string, opts ClashOptions) *yaml.Node {
	type aux struct {
		enabled bool
		name    string
		kind    string
	}
	auxGroups := []aux{
		{opts.BestPing, groupBestPing, "url-test"},
		{opts.LoadBalance, groupLoadBalance, "load-balance"},
		{opts.Fallback, groupFallback, "fallback"},
	}

	dispatch := clash.Sequence()
	for _, a := range auxGroups {
		if a.enabled {
			dispatch.Content = append(dispatch.Content, clash.Str(a.name))
		}
	}
	dispatch.Content = append(dispatch.Content,
		clash.Str(groupSelector), clash.Str("DIRECT"), clash.Str("REJECT"))

	groups := clash.Sequence(
		group(groupDispatcher, "select", dispatch),
		group(groupSelector, "select", members([]string{"DIRECT", "REJECT"}, names)),
	)
	for _, a := range auxGroups {
		if !a.enabled {
			continue
		}
		g := group(a.name, a.kind, nil)
		clash.Set(g, "url", clash.Str(healthCheckURL))
		clash.Set(g, "interval", clash.Int(healthCheckInterval))
		clash.Set(g, "proxies", members(nil, names))
		groups.Content = append(groups.Content, g)
	}
	return groups
}

func group(name, kind string, proxies *yaml.Node) *yaml.Node {
	g := clash.Mapping()
	clash.Set(g, "name", clash.Quoted(name))
	clash.Set(g, "type", clash.Str(kind))
	if proxies != nil {
		clash.Set(g, "proxies", proxies)
	}
	return g
}

func members(builtin, names []string) *yaml.Node {
	seq := clash.Strings(builtin...)
	for _, n := range names {
		seq.Content = append(seq.Content, clash.Quoted(n))
	}
	return seq
}
