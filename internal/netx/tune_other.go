//go:build !linux && !darwin

package netx

import "net"

// tuneTCP is a no-op on platforms without a CORK/NOPUSH equivalent exposed
// through golang.org/x/sys/unix; NODELAY is still forced off to match the
// documented default.
func tuneTCP(raw net.Conn) {
	if tcp, ok := raw.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(false)
	}
}

func setCork(net.Conn, bool) {}
