//go:build !linux && !darwin

package netx

import (
	"errors"
	"net"
	"os"
	"time"
)

// WaitAnyReadable falls back to a short-deadline probe read per connection
// on platforms without unix.Poll wired up. It is strictly worse than the
// poll-based implementation (one syscall per candidate connection instead of
// one syscall total) but preserves the same contract (spec.md §4.1).
func WaitAnyReadable(conns []*Conn, timeout time.Duration) ([]*Conn, error) {
	deadline := time.Now().Add(timeout)
	var ready []*Conn
	one := make([]byte, 1)
	for _, c := range conns {
		release := c.Nonblocking(deadline)
		n, err := c.raw.Read(one)
		release()
		if n > 0 {
			c.mu.Lock()
			c.pushback = append(c.pushback, one[0])
			c.mu.Unlock()
			ready = append(ready, c)
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			continue
		}
		if err != nil && !os.IsTimeout(err) {
			ready = append(ready, c) // surface the error on next real read
		}
	}
	return ready, nil
}
