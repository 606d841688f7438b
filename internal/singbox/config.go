// Package singbox models the tunnel-mesh JSON document consumed by sing-box
// based clients.
package singbox

// Config represents the root document
type Config struct {
	DNS       DNS   `json:"dns"`
	Inbounds  []any `json:"inbounds"`
	Outbounds []any `json:"outbounds"`
	Route     Route `json:"route"`
}

// DNS represents the resolver section
type DNS struct {
	Final            string      `json:"final"`
	IndependentCache bool        `json:"independent_cache"`
	Rules            []DNSRule   `json:"rules"`
	Servers          []DNSServer `json:"servers"`
}

// DNSRule pins domains to a server
type DNSRule struct {
	DisableCache bool     `json:"disable_cache"`
	Domain       []string `json:"domain"`
	Server       string   `json:"server"`
}

// DNSServer represents one upstream resolver
type DNSServer struct {
	Address         string `json:"address"`
	AddressResolver string `json:"address_resolver,omitempty"`
	Strategy        string `json:"strategy,omitempty"`
	Tag             string `json:"tag"`
}

// DirectInbound redirects local DNS traffic
type DirectInbound struct {
	Listen          string `json:"listen"`
	ListenPort      int    `json:"listen_port"`
	OverrideAddress string `json:"override_address"`
	OverridePort    int    `json:"override_port"`
	Tag             string `json:"tag"`
	Type            string `json:"type"`
}

// TunInbound captures system traffic
type TunInbound struct {
	EndpointIndependentNAT   bool     `json:"endpoint_independent_nat"`
	Inet4Address             []string `json:"inet4_address"`
	MTU                      int      `json:"mtu"`
	Sniff                    bool     `json:"sniff"`
	SniffOverrideDestination bool     `json:"sniff_override_destination"`
	Stack                    string   `json:"stack"`
	Tag                      string   `json:"tag"`
	Type                     string   `json:"type"`
}

// MixedInbound is a local socks/http listener
type MixedInbound struct {
	Listen                   string `json:"listen"`
	ListenPort               int    `json:"listen_port"`
	Sniff                    bool   `json:"sniff"`
	SniffOverrideDestination bool   `json:"sniff_override_destination"`
	Tag                      string `json:"tag"`
	Type                     string `json:"type"`
}

// SelectorOutbound lets the user pick an outbound
type SelectorOutbound struct {
	Outbounds []string `json:"outbounds"`
	Tag       string   `json:"tag"`
	Type      string   `json:"type"`
}

// URLTestOutbound picks the lowest-latency outbound
type URLTestOutbound struct {
	Interval  string   `json:"interval"`
	Outbounds []string `json:"outbounds"`
	Tag       string   `json:"tag"`
	Type      string   `json:"type"`
	URL       string   `json:"url"`
}

// BasicOutbound covers direct, block and dns outbounds
type BasicOutbound struct {
	Tag  string `json:"tag"`
	Type string `json:"type"`
}

// Multiplex represents stream multiplexing
type Multiplex struct {
	Enabled    bool   `json:"enabled"`
	MaxStreams int    `json:"max_streams"`
	Protocol   string `json:"protocol"`
}

// UTLS represents client hello fingerprinting
type UTLS struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint"`
}

// TLS represents outbound TLS settings
type TLS struct {
	Enabled    bool   `json:"enabled"`
	Insecure   bool   `json:"insecure"`
	ServerName string `json:"server_name"`
	UTLS       UTLS   `json:"utls"`
}

// Transport represents the v2ray transport block
type Transport struct {
	EarlyDataHeaderName string            `json:"early_data_header_name,omitempty"`
	Headers             map[string]string `json:"headers,omitempty"`
	Host                string            `json:"host,omitempty"`
	MaxEarlyData        *int              `json:"max_early_data,omitempty"`
	Path                string            `json:"path,omitempty"`
	ServiceName         string            `json:"service_name,omitempty"`
	Type                string            `json:"type"`
}

// TrojanOutbound represents a trojan client
type TrojanOutbound struct {
	DomainStrategy string     `json:"domain_strategy"`
	Multiplex      Multiplex  `json:"multiplex"`
	Password       string     `json:"password"`
	Server         string     `json:"server"`
	ServerPort     int        `json:"server_port"`
	Tag            string     `json:"tag"`
	TLS            TLS        `json:"tls"`
	Transport      *Transport `json:"transport,omitempty"`
	Type           string     `json:"type"`
}

// VLESSOutbound represents a vless client
type VLESSOutbound struct {
	DomainStrategy string     `json:"domain_strategy"`
	Flow           string     `json:"flow"`
	Multiplex      Multiplex  `json:"multiplex"`
	PacketEncoding string     `json:"packet_encoding"`
	Server         string     `json:"server"`
	ServerPort     int        `json:"server_port"`
	Tag            string     `json:"tag"`
	TLS            TLS        `json:"tls"`
	Transport      *Transport `json:"transport,omitempty"`
	Type           string     `json:"type"`
	UUID           string     `json:"uuid"`
}

// VMessOutbound represents a vmess client
type VMessOutbound struct {
	AlterID        int        `json:"alter_id"`
	DomainStrategy string     `json:"domain_strategy"`
	Multiplex      Multiplex  `json:"multiplex"`
	Security       string     `json:"security"`
	Server         string     `json:"server"`
	ServerPort     int        `json:"server_port"`
	Tag            string     `json:"tag"`
	TLS            TLS        `json:"tls"`
	Transport      *Transport `json:"transport,omitempty"`
	Type           string     `json:"type"`
	UUID           string     `json:"uuid"`
}

// ShadowsocksOutbound represents a shadowsocks client behind v2ray-plugin
type ShadowsocksOutbound struct {
	Type       string `json:"type"`
	Tag        string `json:"tag"`
	Server     string `json:"server"`
	ServerPort int    `json:"server_port"`
	Method     string `json:"method"`
	Password   string `json:"password"`
	Plugin     string `json:"plugin"`
	PluginOpts string `json:"plugin_opts"`
}

// Route represents routing rules
type Route struct {
	AutoDetectInterface bool        `json:"auto_detect_interface"`
	Rules               []RouteRule `json:"rules"`
}

// RouteRule matches traffic to an outbound
type RouteRule struct {
	Inbound      []string `json:"inbound,omitempty"`
	IPCIDR       []string `json:"ip_cidr,omitempty"`
	Network      []string `json:"network,omitempty"`
	Outbound     string   `json:"outbound"`
	Port         []int    `json:"port,omitempty"`
	SourceIPCIDR []string `json:"source_ip_cidr,omitempty"`
}
