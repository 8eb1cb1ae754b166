package router

import (
	"bufio"
	"strings"
	"testing"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/message"
)

// parseCodeReq builds a request the same way the connection worker does,
// through a real message.Parse, so Path and RawPath diverge exactly as they
// would on the wire.
func parseCodeReq(t *testing.T, target string) *message.Request {
	t.Helper()
	raw := "GET " + target + " HTTP/1.1\r\nHost: example.com\r\n\r\n"
	req, err := message.Parse(bufio.NewReader(strings.NewReader(raw)), message.DefaultLimits())
	if err != nil {
		t.Fatalf("parsing request: %v", err)
	}
	return req
}

func okHandler() chain.Handler {
	return chain.HandlerFunc(func(info chain.ConnectionInfo, req *message.Request) *message.Response {
		resp := message.NewResponse(200)
		resp.Body = message.EmptyBody{}
		return resp
	})
}

func panicHandler() chain.Handler {
	return chain.HandlerFunc(func(info chain.ConnectionInfo, req *message.Request) *message.Response {
		panic("boom")
	})
}

func TestCodeRouterExactMatch(t *testing.T) {
	r := NewCodeRouter()
	r.Register("/hi", okHandler())
	req := &message.Request{Method: "GET", RawPath: "/hi", Path: "/hi", Headers: header.New()}
	resp := r.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCodeRouterMissingPathReturns404(t *testing.T) {
	r := NewCodeRouter()
	req := &message.Request{Method: "GET", RawPath: "/missing", Path: "/missing", Headers: header.New()}
	resp := r.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCodeRouterDefaultRoute(t *testing.T) {
	r := NewCodeRouter()
	r.DefaultRoute = okHandler()
	req := &message.Request{Method: "GET", RawPath: "/anything", Path: "/anything", Headers: header.New()}
	resp := r.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestCodeRouterRecoversPanic(t *testing.T) {
	r := NewCodeRouter()
	r.Register("/boom", panicHandler())
	req := &message.Request{Method: "GET", RawPath: "/boom", Path: "/boom", Headers: header.New()}
	resp := r.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 500 {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

// TestCodeRouterMatchesDecodedPath guards against matching on the on-wire
// RawPath instead of the decoded Path: a route registered with a literal
// space only matches a real client request whose request-target carries it
// percent-encoded.
func TestCodeRouterMatchesDecodedPath(t *testing.T) {
	r := NewCodeRouter()
	r.Register("/foo bar", okHandler())
	req := parseCodeReq(t, "/foo%20bar")
	resp := r.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
