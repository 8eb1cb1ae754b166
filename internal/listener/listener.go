// Package listener implements C12 (spec.md §4.19): one listening socket,
// optionally TLS-wrapped, accepting connections and spawning one worker
// per connection.
//
// Grounded on the teacher's (*Server).Serve accept loop (server.go) for
// the accept/retry/spawn shape, and tcp_keep_alive_listener.go for the
// per-accept TCP tuning — forge's netx.New already performs the
// equivalent NODELAY/CORK tuning, so this package just owns the socket
// lifecycle and worker bookkeeping around it.
package listener

import (
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/netx"
	"github.com/forgehttp/forge/internal/worker"
)

// sweepInterval is how often Serve prunes finished workers from the live
// list (spec.md §4.19: "periodically sweeps finished workers").
const sweepInterval = time.Second

type entry struct {
	conn *netx.Conn
	done atomic.Bool
}

// Listener owns one net.Listener and the workers spawned from it.
type Listener struct {
	Addr      string
	TLSConfig *tls.Config // nil for plaintext
	Handler   chain.Handler
	Logger    *zap.Logger

	ln net.Listener

	mu       sync.Mutex
	live     []*entry
	disposed bool
	started  atomic.Bool

	serveDone chan struct{}
}

// New binds addr. A bind failure is returned directly (spec.md §7's
// BindFailure row: "surfaced to supervisor; other listeners continue" —
// it is the supervisor's job to keep going when this returns an error for
// one endpoint).
func New(addr string, tlsConfig *tls.Config, handler chain.Handler, logger *zap.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{
		// The bound address, not the caller's dial string: a ":0" request
		// only resolves to a concrete port once net.Listen returns.
		Addr:      ln.Addr().String(),
		TLSConfig: tlsConfig,
		Handler:   handler,
		Logger:    logger,
		ln:        ln,
		serveDone: make(chan struct{}),
	}, nil
}

// Serve runs the accept loop until Dispose is called or a fatal accept
// error occurs. It returns (does not block forever) once the loop ends.
func (l *Listener) Serve() {
	l.started.Store(true)
	defer close(l.serveDone)

	go l.sweepLoop()

	var tempDelay time.Duration
	for {
		raw, err := l.ln.Accept()
		if err != nil {
			if l.isDisposed() {
				return
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if tempDelay > time.Second {
					tempDelay = time.Second
				}
				l.Logger.Warn("accept error, retrying", zap.Error(err), zap.Duration("delay", tempDelay))
				time.Sleep(tempDelay)
				continue
			}
			l.Logger.Error("listener accept failed, stopping", zap.String("addr", l.Addr), zap.Error(err))
			return
		}
		tempDelay = 0
		go l.handleAccepted(raw)
	}
}

// handleAccepted performs the (optional) TLS handshake and runs one
// worker to completion. A handshake failure is the TLSHandshakeError row
// of spec.md §7: dropped silently, the accept loop keeps running.
func (l *Listener) handleAccepted(raw net.Conn) {
	secure := false
	if l.TLSConfig != nil {
		tlsConn := tls.Server(raw, l.TLSConfig)
		if err := tlsConn.Handshake(); err != nil {
			raw.Close()
			return
		}
		raw = tlsConn
		secure = true
	}

	conn := netx.New(raw, secure)
	e := &entry{conn: conn}
	l.track(e)

	w := worker.New(conn, l.Handler, l.Logger)
	w.Serve()
	e.done.Store(true)
}

func (l *Listener) track(e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		e.conn.Close()
		return
	}
	l.live = append(l.live, e)
}

// sweepLoop periodically drops entries whose worker has finished, so the
// live list doesn't grow unbounded across a long-running listener.
func (l *Listener) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.serveDone:
			return
		case <-ticker.C:
			l.sweepOnce()
		}
	}
}

func (l *Listener) sweepOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.live[:0]
	for _, e := range l.live {
		if !e.done.Load() {
			kept = append(kept, e)
		}
	}
	l.live = kept
}

func (l *Listener) isDisposed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.disposed
}

// Alive reports whether Serve is still running (spec.md §4.20: the
// supervisor needs to tell a died listener from a disposed one).
func (l *Listener) Alive() bool {
	select {
	case <-l.serveDone:
		return false
	default:
		return true
	}
}

// Dispose closes every live worker connection, then half-closes and
// closes the listen socket, per spec.md §4.19. A net.TCPListener has no
// distinct half-close primitive of its own (unlike a stream socket), so
// the "half-close" step here is closing the listener itself, which
// unblocks any pending Accept before the final Close is a no-op.
func (l *Listener) Dispose() {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return
	}
	l.disposed = true
	live := l.live
	l.live = nil
	l.mu.Unlock()

	for _, e := range live {
		e.conn.Close()
	}
	l.ln.Close()
	if l.started.Load() {
		<-l.serveDone
	}
}
