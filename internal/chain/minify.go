package chain

import (
	"strconv"

	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/minify"
)

// Minify shrinks HTML/CSS/JS/JSON bodies before the Compression stage sees
// them, per spec.md §4.9 ("minification runs before compression so the
// compressor works on the smaller input"). It only operates on BytesBody
// and FileBody candidates small enough to hold entirely in memory;
// Stream/Tunnel bodies pass through untouched.
type Minify struct {
	Next     Handler
	Minifier *minify.Minifier
	MaxBytes int64
}

const defaultMinifyMaxBytes = 5 << 20

func (s *Minify) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	resp := s.Next.Handle(info, req)

	mn := s.Minifier
	if mn == nil {
		return resp
	}
	mimeType, ok := mn.Supports(resp.Headers.Value("Content-Type"))
	if !ok {
		return resp
	}

	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMinifyMaxBytes
	}

	data, replace := extractBytes(resp.Body, maxBytes)
	if !replace {
		return resp
	}

	minified := mn.Bytes(mimeType, data)
	resp.Body = &message.BytesBody{Data: minified}
	resp.Headers.Set("Content-Length", strconv.Itoa(len(minified)))
	return resp
}

// extractBytes returns the in-memory contents of body when it is small
// enough to minify whole, and whether extraction succeeded.
func extractBytes(body message.Body, maxBytes int64) ([]byte, bool) {
	switch b := body.(type) {
	case *message.BytesBody:
		if int64(len(b.Data)) > maxBytes {
			return nil, false
		}
		return b.Data, true
	case *message.FileBody:
		if b.Size-b.Offset > maxBytes {
			return nil, false
		}
		loaded, err := b.Reload()
		if err != nil {
			return nil, false
		}
		return loaded.Data, true
	default:
		return nil, false
	}
}
