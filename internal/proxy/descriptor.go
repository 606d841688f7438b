// Package proxy defines the normalized proxy descriptor and catalog endpoint
// models shared by the codec, emitters and prober.
package proxy

import (
	"fmt"
	"net"
)

// Type is the descriptor discriminator.
type Type string

const (
	TypeVMess       Type = "vmess"
	TypeVLESS       Type = "vless"
	TypeTrojan      Type = "trojan"
	TypeShadowsocks Type = "shadowsocks"
)

// Network is the transport carrying the proxy protocol.
type Network string

const (
	NetworkTCP         Network = "tcp"
	NetworkWS          Network = "ws"
	NetworkGRPC        Network = "grpc"
	NetworkHTTPUpgrade Network = "httpupgrade"
)

// CarriesHost reports whether the transport uses the ws host/path fields.
func (n Network) CarriesHost() bool {
	return n == NetworkWS || n == NetworkHTTPUpgrade
}

// Common holds the fields every descriptor variant has.
// WSHost/WSPath are set only for ws and httpupgrade, ServiceName only for grpc.
type Common struct {
	Name        string
	Server      string
	Port        int
	TLS         bool
	SNI         string
	Network     Network
	WSHost      string
	WSPath      string
	ServiceName string
}

// Base returns a copy of the common fields.
func (c Common) Base() Common { return c }

// Address joins server and port, bracketing IPv6 literals.
func (c Common) Address() string {
	return net.JoinHostPort(c.Server, fmt.Sprint(c.Port))
}

// Descriptor is a sealed sum type: VMess, VLESS, Trojan or Shadowsocks.
// Emitters switch over the concrete variants.
type Descriptor interface {
	Type() Type
	Base() Common
	sealed()
}

type VMess struct {
	Common
	UUID    string
	AlterID int
	Cipher  string
}

type VLESS struct {
	Common
	UUID string
	Flow string
}

type Trojan struct {
	Common
	Password string
}

// Shadowsocks always rides a ws plugin transport.
type Shadowsocks struct {
	Common
	Cipher   string
	Password string
}

func (VMess) Type() Type       { return TypeVMess }
func (VLESS) Type() Type       { return TypeVLESS }
func (Trojan) Type() Type      { return TypeTrojan }
func (Shadowsocks) Type() Type { return TypeShadowsocks }

func (VMess) sealed()       {}
func (VLESS) sealed()       {}
func (Trojan) sealed()      {}
func (Shadowsocks) sealed() {}

// WithCommon returns a copy of d whose common fields are replaced by c.
func WithCommon(d Descriptor, c Common) Descriptor {
	switch v := d.(type) {
	case VMess:
		v.Common = c
		return v
	case VLESS:
		v.Common = c
		return v
	case Trojan:
		v.Common = c
		return v
	case Shadowsocks:
		v.Common = c
		return v
	default:
		panic(fmt.Sprintf("proxy: unknown descriptor %T", d))
	}
}

// Rename returns a copy of d with a new display name.
func Rename(d Descriptor, name string) Descriptor {
	c := d.Base()
	c.Name = name
	return WithCommon(d, c)
}

// ValidPort reports whether p is a usable TCP port.
func ValidPort(p int) bool {
	return p >= 1 && p <= 65535
}
