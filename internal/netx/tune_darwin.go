//go:build darwin

package netx

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneTCP mirrors tune_linux.go: NODELAY off by default. TCP_NOPUSH
// (Darwin's TCP_CORK equivalent) is toggled per response by
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
		_ = unix.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, unix.TCP_NOPUSH, v)
	})
}
