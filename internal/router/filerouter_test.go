package router

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/urlutil"
)

func newFileReq(t *testing.T, rawPath string) *message.Request {
	t.Helper()
	decoded, err := urlutil.DecodePath(rawPath)
	if err != nil {
		t.Fatalf("decoding %q: %v", rawPath, err)
	}
	return &message.Request{Method: "GET", RawPath: rawPath, Path: decoded, Headers: header.New()}
}

// parseFileReq builds a request the same way the connection worker does,
// through a real message.Parse, so Path and RawPath diverge exactly as they
// would on the wire.
func parseFileReq(t *testing.T, target string) *message.Request {
	t.Helper()
	raw := "GET " + target + " HTTP/1.1\r\nHost: example.com\r\n\r\n"
	req, err := message.Parse(bufio.NewReader(strings.NewReader(raw)), message.DefaultLimits())
	if err != nil {
		t.Fatalf("parsing request: %v", err)
	}
	return req
}

func TestFileRouterServesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi there"), 0644); err != nil {
		t.Fatal(err)
	}
	fr := &FileRouter{DocumentRoot: dir, EnableETag: true, EnableLastModified: true}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/hello.txt"))
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if _, ok := resp.Body.(*message.FileBody); !ok {
		t.Fatalf("body type = %T, want *message.FileBody", resp.Body)
	}
	if v, _ := resp.Headers.Get("ETag"); v == "" {
		t.Errorf("expected ETag to be set")
	}
}

func TestFileRouterRejectsNonGET(t *testing.T) {
	dir := t.TempDir()
	fr := &FileRouter{DocumentRoot: dir}
	req := newFileReq(t, "/")
	req.Method = "POST"
	resp := fr.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 405 {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestFileRouter404ForMissing(t *testing.T) {
	dir := t.TempDir()
	fr := &FileRouter{DocumentRoot: dir}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/nope.txt"))
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestFileRouterEscapesPathTraversal(t *testing.T) {
	dir := t.TempDir()
	fr := &FileRouter{DocumentRoot: dir}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/../../etc/passwd"))
	if resp.StatusCode == 200 {
		t.Fatalf("must not serve content outside document root")
	}
}

func TestFileRouterConditionalGETReturns304(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	fr := &FileRouter{DocumentRoot: dir, EnableETag: true}
	first := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/a.txt"))
	etag, _ := first.Headers.Get("ETag")

	req2 := newFileReq(t, "/a.txt")
	req2.Headers.Set("If-None-Match", etag)
	second := fr.Handle(chain.ConnectionInfo{}, req2)
	if second.StatusCode != 304 {
		t.Fatalf("status = %d, want 304", second.StatusCode)
	}
}

func TestFileRouterServesIndexHTML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0644); err != nil {
		t.Fatal(err)
	}
	fr := &FileRouter{DocumentRoot: dir}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/"))
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestFileRouterGeneratesFolderListing(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	fr := &FileRouter{DocumentRoot: dir, GenerateIndex: true}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/"))
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	bb, ok := resp.Body.(*message.BytesBody)
	if !ok {
		t.Fatalf("body type = %T, want *message.BytesBody", resp.Body)
	}
	if len(bb.Data) == 0 {
		t.Errorf("expected non-empty listing")
	}
}

func TestFileRouter404WhenNoIndexAndNoListing(t *testing.T) {
	dir := t.TempDir()
	fr := &FileRouter{DocumentRoot: dir}
	resp := fr.Handle(chain.ConnectionInfo{}, newFileReq(t, "/"))
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

// TestFileRouterResolvesPercentEncodedName guards against looking the
// candidate up by the on-wire RawPath instead of the decoded Path: a file
// named with a space only exists under its decoded name, so this would 404
// if the lookup ever regressed to the raw target.
func TestFileRouterResolvesPercentEncodedName(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "my file.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	fr := &FileRouter{DocumentRoot: dir}
	req := parseFileReq(t, "/my%20file.txt")
	resp := fr.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	bb, ok := resp.Body.(*message.FileBody)
	if !ok {
		t.Fatalf("body type = %T, want *message.FileBody", resp.Body)
	}
	if bb.Path != filepath.Join(dir, "my file.txt") {
		t.Fatalf("resolved path = %q", bb.Path)
	}
}
