package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// VMessCodec implements Codec for vmess:// links, whose payload is
// base64-encoded JSON.
type VMessCodec struct{}

// vmessJSON is the VMess share-link payload.
type vmessJSON struct {
	V    string      `json:"v"`
	PS   string      `json:"ps"`
	Add  string      `json:"add"`
	Port interface{} `json:"port"` // string or number
	ID   string      `json:"id"`
	AID  interface{} `json:"aid"` // string or number
	Scy  string      `json:"scy"`
	Net  string      `json:"net"`
	Type string      `json:"type"`
	Host string      `json:"host"`
	Path string      `json:"path"`
	TLS  string      `json:"tls"`
	SNI  string      `json:"sni"`
}

func (VMessCodec) Scheme() string   { return "vmess" }
func (VMessCodec) Type() proxy.Type { return proxy.TypeVMess }

func (VMessCodec) Parse(uri string) (proxy.Descriptor, error) {
	if !strings.HasPrefix(strings.ToLower(uri), "vmess://") {
		return nil, pkgerrors.Malformed("vmess", uri, fmt.Errorf("must start with vmess://"))
	}

	payload := uri[len("vmess://"):]
	if i := strings.IndexByte(payload, '#'); i >= 0 {
		payload = payload[:i]
	}
	decoded, err := decodeBase64(payload)
	if err != nil {
		return nil, pkgerrors.Malformed("vmess", uri, err)
	}

	var v vmessJSON
	if err := json.Unmarshal(decoded, &v); err != nil {
		return nil, pkgerrors.Malformed("vmess", uri, fmt.Errorf("parse JSON: %w", err))
	}

	if v.Add == "" {
		return nil, pkgerrors.Missing("vmess", "add", uri)
	}
	if v.ID == "" {
		return nil, pkgerrors.Missing("vmess", "id", uri)
	}
	if v.Port == nil {
		return nil, pkgerrors.Missing("vmess", "port", uri)
	}
	port, err := jsonInt(v.Port)
	if err == nil && !proxy.ValidPort(port) {
		err = fmt.Errorf("port %d out of range", port)
	}
	if err != nil {
		return nil, pkgerrors.Malformed("vmess", uri, fmt.Errorf("invalid port: %w", err))
	}
	alterID := 0
	if v.AID != nil {
		if alterID, err = jsonInt(v.AID); err != nil {
			return nil, pkgerrors.Malformed("vmess", uri, fmt.Errorf("invalid alter ID: %w", err))
		}
	}

	network, err := parseNetwork(v.Net)
	if err != nil {
		return nil, pkgerrors.Malformed("vmess", uri, err)
	}

	host := firstNonEmpty(v.Host, v.Add)
	c := proxy.Common{
		Name:    firstNonEmpty(v.PS, "VMess"),
		Server:  v.Add,
		Port:    port,
		TLS:     v.TLS == "tls",
		SNI:     firstNonEmpty(v.SNI, host),
		Network: network,
	}
	switch {
	case network.CarriesHost():
		c.WSHost = host
		c.WSPath = v.Path
	case network == proxy.NetworkGRPC || v.Type == "grpc":
		c.ServiceName = v.Path
	}

	return proxy.VMess{
		Common:  c,
		UUID:    v.ID,
		AlterID: alterID,
		Cipher:  firstNonEmpty(v.Scy, "auto"),
	}, nil
}

func (VMessCodec) Encode(d proxy.Descriptor) (string, error) {
	m, ok := d.(proxy.VMess)
	if !ok {
		return "", wrongVariant("vmess", d)
	}

	v := vmessJSON{
		V:    "2",
		PS:   m.Name,
		Add:  m.Server,
		Port: strconv.Itoa(m.Port),
		ID:   m.UUID,
		AID:  strconv.Itoa(m.AlterID),
		Scy:  m.Cipher,
		Net:  string(m.Network),
		Type: "none",
		SNI:  m.SNI,
	}
	switch m.Network {
	case proxy.NetworkWS, proxy.NetworkHTTPUpgrade:
		v.Host = m.WSHost
		v.Path = m.WSPath
	case proxy.NetworkGRPC:
		v.Path = m.ServiceName
	}
	if m.TLS {
		v.TLS = "tls"
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vmess JSON: %w", err)
	}
	return "vmess://" + base64.StdEncoding.EncodeToString(payload), nil
}

// jsonInt accepts a JSON number or a numeric string.
func jsonInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("non-integer %v", t)
		}
		return int(t), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
