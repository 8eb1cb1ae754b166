// Package minify wraps github.com/tdewolff/minify/v2 to shrink textual
// response bodies (HTML, CSS, JavaScript, JSON) before they leave the
// server, per spec.md §4.9. There is no teacher precedent for minification
// in badu-http; this package follows tdewolff/minify's own documented
// usage pattern (a shared *minify.M registered once per MIME type, then
// reused per request via Bytes) rather than inventing a bespoke API.
package minify

import (
	"bytes"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

// Minifier wraps a configured minify.M instance and the set of MIME types
// it has been told to handle.
type Minifier struct {
	m       *minify.M
	enabled map[string]bool
}

// defaultMediaTypes maps the content types this stage knows how to shrink
// to their minify.M-registered MIME type.
var defaultMediaTypes = map[string]string{
	"text/html":              "text/html",
	"text/css":               "text/css",
	"application/javascript": "application/javascript",
	"text/javascript":        "application/javascript",
	"application/json":       "application/json",
}

// New builds a Minifier with html/css/js/json minifiers registered,
// enabled for every content type in defaultMediaTypes.
func New() *Minifier {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("application/json", json.Minify)

	enabled := make(map[string]bool, len(defaultMediaTypes))
	for ct := range defaultMediaTypes {
		enabled[ct] = true
	}
	return &Minifier{m: m, enabled: enabled}
}

// Supports reports whether contentType (which may carry a ";charset=..."
// suffix) qualifies for minification.
func (mn *Minifier) Supports(contentType string) (mimeType string, ok bool) {
	base := contentType
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		base = contentType[:idx]
	}
	base = strings.TrimSpace(base)
	registered, known := defaultMediaTypes[base]
	if !known || !mn.enabled[base] {
		return "", false
	}
	return registered, true
}

// Bytes minifies data as mimeType, returning the input unchanged if
// minification fails (a malformed document should still be served, per
// spec.md §4.9 "never fail the response on a minification error").
func (mn *Minifier) Bytes(mimeType string, data []byte) []byte {
	out, err := mn.m.Bytes(mimeType, data)
	if err != nil {
		return data
	}
	return out
}

// Reader runs data through the minifier's streaming interface into a new
// buffer and, unlike Bytes, returns the minification error. The Minify
// chain stage calls Bytes, not Reader.
func (mn *Minifier) Reader(mimeType string, data []byte) (*bytes.Buffer, error) {
	var out bytes.Buffer
	if err := mn.m.Minify(mimeType, &out, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return &out, nil
}
