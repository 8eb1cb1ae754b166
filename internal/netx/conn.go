package netx

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// ErrGracefulDisconnect is returned by Recv when the peer closed its write
// side cleanly (a zero-length read), per spec.md §4.1 and the
// GracefulDisconnect row of spec.md §7.
var ErrGracefulDisconnect = errors.New("netx: graceful disconnect")

// Conn wraps one accepted stream socket with the byte-level contract C3
// requires: recv/send/sendFile/flush/nonblocking/waitAnyReadable/close.
//
// Grounded on the teacher's conn.go (buffered read/write lifecycle) and
// tcp_keep_alive_listener.go (TCP tuning applied at accept time).
type Conn struct {
	raw    net.Conn
	secure bool

	mu        sync.Mutex
	nodelayOn bool
	nbDepth   int // Nonblocking() scope nesting depth
	pushback  []byte // bytes probed by the fallback WaitAnyReadable, to be
	// returned by the next Recv before reading the socket again
}

// New wraps raw, applying the platform TCP tuning spec.md §4.1 describes
// (NODELAY off by default; NOPUSH/CORK toggled by platform-specific code in
// tune_*.go).
func New(raw net.Conn, secure bool) *Conn {
	c := &Conn{raw: raw, secure: secure}
	tuneTCP(raw)
	return c
}

// Secure reports whether this connection arrived over TLS (used to build
// ConnectionInfo.secure, spec.md §3).
func (c *Conn) Secure() bool { return c.secure }

// Raw exposes the underlying net.Conn for components (TLS handshake probing,
// deadlines set by the worker loop) that need it directly.
func (c *Conn) Raw() net.Conn { return c.raw }

// LocalEndpoint and RemoteEndpoint implement the ConnectionInfo fields
// (spec.md §3).
func (c *Conn) LocalEndpoint() (Endpoint, error)  { return FromAddr(c.raw.LocalAddr()) }
func (c *Conn) RemoteEndpoint() (Endpoint, error) { return FromAddr(c.raw.RemoteAddr()) }

// Recv returns up to n bytes. A zero-length read is reported as
// ErrGracefulDisconnect, per spec.md §4.1.
func (c *Conn) Recv(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := c.Read(buf)
	if read == 0 && err == nil {
		return nil, ErrGracefulDisconnect
	}
	if err == io.EOF && read == 0 {
		return nil, ErrGracefulDisconnect
	}
	return buf[:read], err
}

// Read implements io.Reader over the pushback buffer and the underlying
// socket, so a *Conn can back a bufio.Reader directly (used by the request
// parser, C4).
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	if len(c.pushback) > 0 {
		n := copy(p, c.pushback)
		c.pushback = c.pushback[n:]
		if len(c.pushback) == 0 {
			c.pushback = nil
		}
		c.mu.Unlock()
		return n, nil
	}
	c.mu.Unlock()
	return c.raw.Read(p)
}

// Write implements io.Writer over the underlying socket.
func (c *Conn) Write(p []byte) (int, error) {
	return c.raw.Write(p)
}

// Send writes bytes and returns how many were actually written. Partial
// writes are possible; callers needing full-write semantics should use
// SendAll (spec.md §4.1).
func (c *Conn) Send(b []byte) (int, error) {
	return c.raw.Write(b)
}

// SendAll iterates Send until all of b is written or an error occurs.
func (c *Conn) SendAll(b []byte) error {
	for len(b) > 0 {
		n, err := c.Send(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// SendFile performs a best-effort zero-copy transfer of count bytes from
// file starting at offset. On Linux/Darwin, (*net.TCPConn).ReadFrom already
// takes the sendfile(2) fast path when fed an *os.File, so this just
// arranges that shape; it falls back to a bounded read-and-send loop when
// the destination isn't a *net.TCPConn (e.g. over TLS) or the fast path
// declines (spec.md §4.1).
func (c *Conn) SendFile(file *os.File, offset, count int64) (int64, error) {
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	lr := io.LimitReader(file, count)
	if tcp, ok := c.raw.(*net.TCPConn); ok {
		return tcp.ReadFrom(lr)
	}
	return io.Copy(c.raw, lr)
}

// Flush forces the kernel to emit the current send queue immediately by
// toggling NODELAY on then off, the same time-to-first-byte trick described
// in spec.md §4.1. It is a no-op when NODELAY is already enabled, and a
// no-op for non-TCP connections (e.g. in-memory pipes used by tests).
func (c *Conn) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nodelayOn {
		return
	}
	tcp, ok := underlyingTCP(c.raw)
	if !ok {
		return
	}
	_ = tcp.SetNoDelay(true)
	_ = tcp.SetNoDelay(false)
}

// Cork holds outgoing data at the kernel level (TCP_CORK/TCP_NOPUSH) so the
// status line, headers and the first body write coalesce into as few
// on-wire segments as possible, per spec.md §4.1. Paired with Uncork, which
// releases the held data; a no-op for non-TCP connections (TLS, in-memory
// pipes used by tests).
func (c *Conn) Cork() {
	if tcp, ok := underlyingTCP(c.raw); ok {
		setCork(tcp, true)
	}
}

// Uncork releases data held by Cork, flushing it onto the wire.
func (c *Conn) Uncork() {
	if tcp, ok := underlyingTCP(c.raw); ok {
		setCork(tcp, false)
	}
}

// SetNoDelay toggles TCP_NODELAY, tracked so Flush knows whether it would be
// redundant.
func (c *Conn) SetNoDelay(on bool) error {
	c.mu.Lock()
	c.nodelayOn = on
	c.mu.Unlock()
	tcp, ok := underlyingTCP(c.raw)
	if !ok {
		return nil
	}
	return tcp.SetNoDelay(on)
}

func underlyingTCP(c net.Conn) (*net.TCPConn, bool) {
	switch v := c.(type) {
	case *net.TCPConn:
		return v, true
	case *tls.Conn:
		return underlyingTCP(v.NetConn())
	default:
		return nil, false
	}
}

// Nonblocking scopes a region of code during which reads use deadline
// instead of blocking indefinitely, restoring the connection to blocking
// reads on every exit path (including panics, since callers invoke the
// returned release via defer), per spec.md §4.1 ("scoped acquisition of
// non-blocking mode with guaranteed restoration on all exit paths"). Nested
// calls are supported; only the outermost call sets/restores the deadline.
//
// Used by the non-poll WaitAnyReadable fallback (ready_other.go) to probe
// each candidate connection for a short window without blocking forever on
// one that has nothing to offer.
func (c *Conn) Nonblocking(deadline time.Time) (release func()) {
	c.mu.Lock()
	c.nbDepth++
	first := c.nbDepth == 1
	c.mu.Unlock()

	if first {
		_ = c.raw.SetReadDeadline(deadline)
	}

	var released bool
	return func() {
		if released {
			return
		}
		released = true
		c.mu.Lock()
		c.nbDepth--
		done := c.nbDepth == 0
		c.mu.Unlock()
		if done {
			_ = c.raw.SetReadDeadline(time.Time{})
		}
	}
}

// Close half-closes the read direction first (to unblock peer reads on some
// kernels) then closes the socket, per spec.md §4.1.
func (c *Conn) Close() error {
	type readCloser interface {
		CloseRead() error
	}
	if rc, ok := c.raw.(readCloser); ok {
		_ = rc.CloseRead()
	}
	return c.raw.Close()
}
