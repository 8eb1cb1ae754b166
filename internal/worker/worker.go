// Package worker implements the connection worker (C11, spec.md §4.18):
// one goroutine per accepted connection, looping parse → dispatch → write
// until the keep-alive policy says close or the socket goes away.
//
// Grounded on the teacher's conn.serve loop (conn.go): a per-connection
// loop that reads one request, runs the handler, writes the response, and
// decides whether to keep looping, wrapped in a single deferred
// recover-and-close. forge's version drops the teacher's net/http-specific
// machinery (hijacking, 100-continue, background body reads) since the
// spec's request/response contract doesn't need it, but keeps the same
// shape: persistent *bufio.Reader across requests, deferred panic recovery
// with a stack dump, and a policy-driven exit from the loop.
package worker

import (
	"bufio"
	"errors"
	"io"
	"net"
	"runtime"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgehttp/forge/internal/applog"
	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/netx"
)

// Worker owns one accepted connection end to end.
type Worker struct {
	Conn    *netx.Conn
	Handler chain.Handler
	Logger  *zap.Logger
	Limits  message.Limits
	Info    chain.ConnectionInfo
}

// New builds a Worker from an accepted connection, its assembled handler
// chain and a logger already scoped to this process.
func New(conn *netx.Conn, handler chain.Handler, logger *zap.Logger) *Worker {
	local, _ := conn.LocalEndpoint()
	remote, _ := conn.RemoteEndpoint()
	return &Worker{
		Conn:    conn,
		Handler: handler,
		Logger:  logger,
		Limits:  message.DefaultLimits(),
		Info: chain.ConnectionInfo{
			LocalEndpoint:  local,
			RemoteEndpoint: remote,
			Secure:         conn.Secure(),
		},
	}
}

// Serve runs the connection loop to completion. It never panics and never
// returns an error: every exit path (graceful disconnect, reset, parse
// failure, handler exception, dispose) is logged here at the appropriate
// level and the loop simply ends, per spec.md §7's "no exception ever
// escapes a connection worker".
func (w *Worker) Serve() {
	connID := uuid.New()
	fields := applog.ConnectionFields(connID, w.Info.RemoteEndpoint.String())

	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			w.Logger.Error("panic serving connection",
				append(fields, zap.Any("panic", r), zap.ByteString("stack", buf))...)
		}
		w.Conn.Close()
	}()

	reader := bufio.NewReader(w.Conn)
	for {
		req, err := message.Parse(reader, w.Limits)
		if err != nil {
			w.logParseError(err, fields)
			return
		}
		req.SetID(uuid.New())

		policy := keepAlivePolicy(req.Version, req.Headers.Value("Connection"))

		resp := w.dispatch(req, append(fields, applog.RequestFields(req.ID(), req.Method, req.Target())...))

		resp.Headers.Set("Connection", policy)
		isHead := req.Method == "HEAD"

		if err := message.Write(w.Conn, req.Version, resp, isHead); err != nil {
			if !isQuietSocketError(err) {
				w.Logger.Info("write failed", append(fields, zap.Error(err))...)
			}
			return
		}

		if policy == "close" {
			return
		}
	}
}

// dispatch invokes the handler chain, converting any panic raised inside a
// stage or terminal handler into a 500 response (spec.md §7's
// HandlerException row) instead of letting it unwind into Serve's loop.
func (w *Worker) dispatch(req *message.Request, fields []zap.Field) (resp *message.Response) {
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			w.Logger.Error("handler exception", append(fields, zap.Any("panic", r), zap.ByteString("stack", buf))...)
			resp = message.NewResponse(500)
		}
	}()
	return w.Handler.Handle(w.Info, req)
}

// logParseError classifies a Parse error per spec.md §7: graceful
// disconnect and connection reset end the loop quietly, malformed requests
// log at info, oversize header/body log at warn.
func (w *Worker) logParseError(err error, fields []zap.Field) {
	if errors.Is(err, netx.ErrGracefulDisconnect) || isQuietSocketError(err) {
		return
	}

	var parseErr *message.ParseError
	if errors.As(err, &parseErr) {
		switch parseErr.Kind {
		case message.KindOversizeHeader, message.KindOversizeBody:
			w.Logger.Warn("oversize request", append(fields, zap.Error(err))...)
		default:
			w.Logger.Info("malformed request", append(fields, zap.Error(err))...)
		}
		return
	}
	w.Logger.Info("malformed request", append(fields, zap.Error(err))...)
}

// isQuietSocketError reports the ConnectionReset row of spec.md §7: any
// socket operation failing because the peer reset the connection, or
// because the listener's dispose() closed it out from under us, ends the
// worker loop without a log line.
func isQuietSocketError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	// net.OpError wraps the syscall error on most platforms without it
	// always satisfying errors.Is against the bare syscall constant.
	return strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "closed pipe") ||
		strings.Contains(err.Error(), "use of closed network connection")
}

// keepAlivePolicy implements the pure function of spec.md §4.18's
// state-machine table.
func keepAlivePolicy(version, connectionHeader string) string {
	token := strings.ToLower(strings.TrimSpace(connectionHeader))
	switch version {
	case "HTTP/1.0":
		if token == "keep-alive" {
			return "keep-alive"
		}
		return "close"
	default: // HTTP/1.1
		if token == "close" {
			return "close"
		}
		return "keep-alive"
	}
}
