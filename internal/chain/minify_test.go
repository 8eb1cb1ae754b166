package chain

import (
	"strings"
	"testing"

	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/minify"
)

func TestMinifyShrinksHTML(t *testing.T) {
	html := []byte("<html>\n  <body>\n    <p>   hi   </p>\n  </body>\n</html>\n")
	stage := &Minify{Next: bytesHandler(html, "text/html"), Minifier: minify.New()}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)

	bb, ok := resp.Body.(*message.BytesBody)
	if !ok {
		t.Fatalf("body type = %T, want *message.BytesBody", resp.Body)
	}
	if len(bb.Data) >= len(html) {
		t.Errorf("minified output (%d bytes) not smaller than input (%d bytes)", len(bb.Data), len(html))
	}
	if !strings.Contains(string(bb.Data), "hi") {
		t.Errorf("minified output lost content: %q", bb.Data)
	}
}

func TestMinifySkipsUnsupportedContentType(t *testing.T) {
	data := []byte("binary-ish")
	stage := &Minify{Next: bytesHandler(data, "application/octet-stream"), Minifier: minify.New()}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)

	bb, ok := resp.Body.(*message.BytesBody)
	if !ok {
		t.Fatalf("body type = %T, want *message.BytesBody", resp.Body)
	}
	if string(bb.Data) != string(data) {
		t.Errorf("unsupported content type was modified: %q", bb.Data)
	}
}

func TestMinifyNilMinifierIsNoop(t *testing.T) {
	data := []byte("<p>x</p>")
	stage := &Minify{Next: bytesHandler(data, "text/html")}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)
	bb := resp.Body.(*message.BytesBody)
	if string(bb.Data) != string(data) {
		t.Errorf("nil Minifier should pass body through unchanged")
	}
}
