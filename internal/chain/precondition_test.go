package chain

import (
	"testing"

	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/message"
)

func candidateHandler(statusCode int, etag, lastMod string) Handler {
	return HandlerFunc(func(info ConnectionInfo, req *message.Request) *message.Response {
		resp := message.NewResponse(statusCode)
		if etag != "" {
			resp.Headers.Set("ETag", etag)
		}
		if lastMod != "" {
			resp.Headers.Set("Last-Modified", lastMod)
		}
		resp.Body = &message.BytesBody{Data: []byte("body")}
		return resp
	})
}

func newReq(t *testing.T, method string) *message.Request {
	t.Helper()
	return &message.Request{Method: method, Headers: header.New()}
}

func TestPreconditionIfNoneMatchHit(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, `"abc"`, "")}
	req := newReq(t, "GET")
	req.Headers.Set("If-None-Match", `"abc"`)
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 304 {
		t.Fatalf("status = %d, want 304", resp.StatusCode)
	}
	if v, _ := resp.Headers.Get("ETag"); v != `"abc"` {
		t.Errorf("ETag not preserved on 304: %q", v)
	}
}

func TestPreconditionIfNoneMatchMiss(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, `"abc"`, "")}
	req := newReq(t, "GET")
	req.Headers.Set("If-None-Match", `"xyz"`)
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPreconditionIfMatchFails(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, `"abc"`, "")}
	req := newReq(t, "GET")
	req.Headers.Set("If-Match", `"other"`)
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 412 {
		t.Fatalf("status = %d, want 412", resp.StatusCode)
	}
}

func TestPreconditionIfModifiedSinceNotModified(t *testing.T) {
	lastMod := "Tue, 15 Nov 1994 12:45:26 GMT"
	stage := &Precondition{Next: candidateHandler(200, "", lastMod)}
	req := newReq(t, "GET")
	req.Headers.Set("If-Modified-Since", lastMod)
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 304 {
		t.Fatalf("status = %d, want 304", resp.StatusCode)
	}
}

func TestPreconditionIfModifiedSinceModified(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, "", "Tue, 15 Nov 1994 12:45:26 GMT")}
	req := newReq(t, "GET")
	req.Headers.Set("If-Modified-Since", "Mon, 14 Nov 1994 12:45:26 GMT")
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPreconditionWeakETagFailsIfMatch(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, `W/"abc"`, "")}
	req := newReq(t, "GET")
	req.Headers.Set("If-Match", `W/"abc"`)
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 412 {
		t.Fatalf("status = %d, want 412 (weak ETags never satisfy If-Match)", resp.StatusCode)
	}
}

func TestPreconditionNoConditionalHeadersPassesThrough(t *testing.T) {
	stage := &Precondition{Next: candidateHandler(200, `"abc"`, "")}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
