//go:build linux || darwin

package netx

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// WaitAnyReadable returns the subset of conns with bytes currently available
// to read, blocking up to timeout (spec.md §4.1). Implemented with
// unix.Poll over each connection's raw file descriptor, the same
// probe-based readiness pattern WhileEndless-go-rawhttp's transport pool
// uses to health-check idle pooled connections (see SPEC_FULL.md §4.1).
//
// Used by the CONNECT tunnel body (spec.md §5) to multiplex the two
// half-duplex directions without dedicating a blocked goroutine to a side
// that has nothing to forward.
func WaitAnyReadable(conns []*Conn, timeout time.Duration) ([]*Conn, error) {
	type syscallConn interface {
		SyscallConn() (syscall.RawConn, error)
	}

	fds := make([]unix.PollFd, 0, len(conns))
	index := make([]*Conn, 0, len(conns))
	for _, c := range conns {
		sc, ok := c.raw.(syscallConn)
		if !ok {
			continue
		}
		rc, err := sc.SyscallConn()
		if err != nil {
			continue
		}
		var fd int
		if cerr := rc.Control(func(f uintptr) { fd = int(f) }); cerr != nil {
			continue
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
		index = append(index, c)
	}
	if len(fds) == 0 {
		return nil, nil
	}
	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}
	n, err := unix.Poll(fds, ms)
	if err != nil || n == 0 {
		return nil, err
	}
	var ready []*Conn
	for i, pfd := range fds {
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			ready = append(ready, index[i])
		}
	}
	return ready, nil
}
