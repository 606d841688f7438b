package render

import (
	"encoding/json"

	"proxysmith/internal/proxy"
	"proxysmith/internal/singbox"
)

// SingBox renders ds as a tunnel-mesh JSON document with two-space indent.
func SingBox(ds []proxy.Descriptor) ([]byte, error) {
	return json.MarshalIndent(singbox.Build(ds), "", "  ")
}
