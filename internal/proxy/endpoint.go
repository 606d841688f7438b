package proxy

import "net"

// Unknown fills missing catalog country and provider columns.
const Unknown = "UNK"

// Endpoint is one remote host from a catalog.
type Endpoint struct {
	IP       string `json:"ip"`
	Port     string `json:"port"`
	Country  string `json:"country"`
	Provider string `json:"provider"`
}

// ID is the liveness identity key, ip:port.
func (e Endpoint) ID() string {
	return net.JoinHostPort(e.IP, e.Port)
}

// IDs maps endpoints to their identity keys, preserving order.
func IDs(eps []Endpoint) []string {
	out := make([]string, len(eps))
	for i, ep := range eps {
		out[i] = ep.ID()
	}
	return out
}
