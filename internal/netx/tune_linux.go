//go:build linux

package netx

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneTCP applies the platform TCP tuning spec.md §4.1 calls for: NODELAY
// off by default. TCP_CORK itself is toggled per response by
// (*Conn).Cork/Uncork rather than left on permanently here, since cork
// only helps while the status line, headers and first body chunk are
// being assembled — held indefinitely it would stall every response.
func tuneTCP(raw net.Conn) {
	tcp, ok := raw.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcp.SetNoDelay(false)
}

// setCork toggles TCP_CORK, used by the response writer to batch the status
// line, headers and the first body write into one segment.
func setCork(raw net.Conn, on bool) {
	tcp, ok := raw.(*net.TCPConn)
	if !ok {
		return
	}
	sc, err := tcp.SyscallConn()
	if err != nil {
		return
	}
	v := 0
	if on {
		v = 1
	}
	_ = sc.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, unix.TCP_CORK, v)
	})
}
