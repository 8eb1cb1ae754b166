// Package netx implements the endpoint descriptor (C1) and the connection
// socket wrapper (C3): the byte-level layer every other package in forge is
// built on.
//
// Grounded on the teacher's tcp_keep_alive_listener.go (TCP tuning on
// accept) and conn.go/conn_reader.go (read/write/close lifecycle), adapted
// from net/http's internal conn to forge's explicit ConnectionInfo model.
package netx

import (
	"fmt"
	"net"
	"strconv"
)

// Family distinguishes IPv4 from IPv6 endpoints, per spec.md §3.
type Family int

const (
	FamilyV4 Family = iota
	FamilyV6
)

// Endpoint is an immutable {ip, port, family} descriptor (C1).
type Endpoint struct {
	ip     string
	port   int
	family Family
}

// NewEndpoint validates ip and port and returns an Endpoint, or an error if
// either is malformed (spec.md §3: "ip is a syntactically valid literal;
// port in [0,65535]").
func NewEndpoint(ip string, port int) (Endpoint, error) {
	if port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("netx: port %d out of range [0,65535]", port)
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Endpoint{}, fmt.Errorf("netx: %q is not a valid IP literal", ip)
	}
	family := FamilyV4
	if parsed.To4() == nil {
		family = FamilyV6
	}
	return Endpoint{ip: ip, port: port, family: family}, nil
}

// MustEndpoint panics on an invalid endpoint; reserved for configuration
// parsed from trusted sources at startup.
func MustEndpoint(ip string, port int) Endpoint {
	e, err := NewEndpoint(ip, port)
	if err != nil {
		panic(err)
	}
	return e
}

// FromAddr builds an Endpoint from a net.Addr as returned by a connection's
// RemoteAddr/LocalAddr.
func FromAddr(addr net.Addr) (Endpoint, error) {
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return Endpoint{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Endpoint{}, err
	}
	return NewEndpoint(host, port)
}

func (e Endpoint) IP() string     { return e.ip }
func (e Endpoint) Port() int      { return e.port }
func (e Endpoint) Family() Family { return e.family }

// String returns the canonical "ip:port" form, bracketing v6 literals
// (spec.md §3).
func (e Endpoint) String() string {
	if e.family == FamilyV6 {
		return "[" + e.ip + "]:" + strconv.Itoa(e.port)
	}
	return e.ip + ":" + strconv.Itoa(e.port)
}
