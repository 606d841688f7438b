package render

import (
	"strings"

	"proxysmith/internal/codec"
	"proxysmith/internal/proxy"
)

// URIList joins the canonical link of every descriptor, in input order.
func URIList(ds []proxy.Descriptor) (string, error) {
	links := make([]string, 0, len(ds))
	for _, d := range ds {
		uri, err := codec.URI(d)
		if err != nil {
			return "", err
		}
		links = append(links, uri)
	}
	return strings.Join(links, "\n"), nil
}
