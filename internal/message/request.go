// Package message implements the request parser (C4), the response body
// variants (C5), the response writer (C6) and the response factory (C7).
//
// Grounded on the teacher's types_request.go/types_response.go field
// layout and on andycostintoma-go-httpx's internal/netx.CRLFFastReader for
// the bounded line-reading shape, adapted to forge's percent-decoded
// path/query split (spec.md §3) instead of net/http's *url.URL.
package message

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/urlutil"
)

// Request is the parsed form of an HTTP/1.x request message (spec.md §3).
type Request struct {
	Method  string
	Path    string // percent-decoded absolute path, never containing '?'
	RawPath string // on-wire request-target before decoding, query excluded
	Query   string // includes the leading '?' when present
	Version string // "HTTP/1.0" or "HTTP/1.1"
	Headers *header.Map
	Body    []byte

	// id is stamped by the connection worker for log correlation
	// (SPEC_FULL.md §3); never serialized on the wire.
	id uuid.UUID
}

// SetID / ID support the per-request ID logging field described in
// SPEC_FULL.md §3.
func (r *Request) SetID(id uuid.UUID) { r.id = id }
func (r *Request) ID() uuid.UUID      { return r.id }

// Target reconstitutes the on-wire request-target, satisfying the
// invariant in spec.md §3: "rawPath + query reconstitutes the on-wire
// request-target."
func (r *Request) Target() string {
	return r.RawPath + r.Query
}

// Limits bounds what the parser will accept (spec.md §4.2).
type Limits struct {
	MaxHeaderBytes  int
	MaxContentBytes int64
}

// DefaultLimits matches spec.md §4.2's documented defaults.
func DefaultLimits() Limits {
	return Limits{MaxHeaderBytes: 32 << 10, MaxContentBytes: 10 << 20}
}

var validVersions = map[string]bool{"HTTP/1.0": true, "HTTP/1.1": true}

// Parse reads a single HTTP/1.x request message from r.
//
// r must be a *bufio.Reader over the connection socket; the connection
// worker owns its lifetime across the keep-alive loop (spec.md §4.18) so
// buffered-but-unconsumed bytes survive between requests.
func Parse(r *bufio.Reader, limits Limits) (*Request, error) {
	headerBlock, err := readHeaderBlock(r, limits.MaxHeaderBytes)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(headerBlock, "\r\n")
	// readHeaderBlock guarantees the block ends in "\r\n\r\n"; the split
	// therefore always has a trailing empty element.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, malformed("empty request")
	}

	method, target, version, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:  method,
		Version: version,
		Headers: header.New(),
	}
	req.RawPath, req.Query = urlutil.SplitTarget(target)
	decodedPath, err := urlutil.DecodePath(req.RawPath)
	if err != nil {
		return nil, malformed("invalid percent-encoding in request target: %v", err)
	}
	req.Path = decodedPath

	for _, line := range lines[1:] {
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		req.Headers.Set(name, value)
	}

	body, err := readBody(r, req.Headers, limits.MaxContentBytes)
	if err != nil {
		return nil, err
	}
	req.Body = body

	return req, nil
}

// readHeaderBlock reads from r until "\r\n\r\n" appears, enforcing
// maxHeaderBytes (spec.md §4.2).
func readHeaderBlock(r *bufio.Reader, maxHeaderBytes int) (string, error) {
	var buf []byte
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			buf = append(buf, line...)
		}
		if len(buf) > maxHeaderBytes {
			return "", oversizeHeader("header block exceeds %d bytes", maxHeaderBytes)
		}
		if err != nil {
			if err == io.EOF && len(buf) == 0 {
				// A clean close before any bytes arrived is a graceful
				// disconnect, not a malformed request; propagate io.EOF
				// directly so the connection worker (spec.md §7,
				// GracefulDisconnect row) ends the loop quietly instead
				// of logging it as a parse failure.
				return "", io.EOF
			}
			return "", malformed("reading header block: %v", err)
		}
		if strings.HasSuffix(string(buf), "\r\n\r\n") {
			return string(buf), nil
		}
		// Tolerate bare LF terminators like many real clients send.
		if strings.HasSuffix(string(buf), "\n\n") && !strings.HasSuffix(string(buf), "\r\n\r\n") {
			return normalizeTerminator(string(buf)), nil
		}
	}
}

func normalizeTerminator(s string) string {
	if strings.HasSuffix(s, "\r\n\r\n") {
		return s
	}
	return strings.TrimSuffix(s, "\n\n") + "\r\n\r\n"
}

func parseRequestLine(line string) (method, target, version string, err error) {
	line = strings.TrimSuffix(line, "\r")
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return "", "", "", malformed("malformed request line %q", line)
	}
	method = strings.ToUpper(parts[0])
	target = parts[1]
	version = strings.ToUpper(parts[2])
	if !isASCII(method) || !isASCII(target) {
		return "", "", "", malformed("non-ASCII request line %q", line)
	}
	if !validVersions[version] {
		return "", "", "", malformed("unsupported version %q", version)
	}
	if method == "" || target == "" {
		return "", "", "", malformed("malformed request line %q", line)
	}
	return method, target, version, nil
}

func parseHeaderLine(line string) (name, value string, err error) {
	line = strings.TrimSuffix(line, "\r")
	if !isASCII(line) {
		return "", "", malformed("non-ASCII header line %q", line)
	}
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", malformed("malformed header line %q", line)
	}
	name = line[:i]
	value = strings.TrimSpace(line[i+1:])
	if name == "" {
		return "", "", malformed("empty header name in %q", line)
	}
	return name, value, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

// readBody reads Content-Length bytes of body, per spec.md §4.2's edge
// policy: requests without Content-Length are treated as having an empty
// body; chunked request decoding is not implemented.
func readBody(r *bufio.Reader, headers *header.Map, maxContentBytes int64) ([]byte, error) {
	cl, ok := headers.Get("Content-Length")
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return nil, malformed("invalid Content-Length %q", cl)
	}
	if n > maxContentBytes {
		return nil, oversizeBody("content length %d exceeds limit %d", n, maxContentBytes)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, malformed("reading body: %v", err)
	}
	return body, nil
}
