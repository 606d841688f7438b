package proxy

// Rewrite points every descriptor at customHost, keeping the original target
// reachable through SNI and the ws Host header. In wildcard mode the target
// is nested under customHost as a subdomain. An empty customHost returns
// unchanged copies. The input slice is not modified. Only ws and httpupgrade
// carry a Host header, so tcp and grpc descriptors keep an empty Host.
func Rewrite(ds []Descriptor, customHost string, wildcard bool) []Descriptor {
	out := make([]Descriptor, len(ds))
	for i, d := range ds {
		if customHost == "" {
			out[i] = d
			continue
		}
		out[i] = WithCommon(d, rewriteCommon(d.Base(), customHost, wildcard))
	}
	return out
}

func rewriteCommon(c Common, customHost string, wildcard bool) Common {
	prior := c.Server
	switch {
	case c.SNI != "" && c.SNI != c.Server:
		prior = c.SNI
	case c.WSHost != "" && c.WSHost != c.Server:
		prior = c.WSHost
	}

	next := c
	next.Server = customHost
	if wildcard {
		next.SNI = customHost + "." + prior
		if c.Network.CarriesHost() {
			next.WSHost = next.SNI
		}
		return next
	}

	next.SNI = keepDistinct(c.SNI, c.Server, customHost)
	if c.Network.CarriesHost() {
		next.WSHost = keepDistinct(c.WSHost, c.Server, customHost)
	}
	return next
}

func keepDistinct(v, server, fallback string) string {
	if v != "" && v != server {
		return v
	}
	return fallback
}
