package chain

import (
	"strings"

	"github.com/forgehttp/forge/internal/compress"
	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/message"
)

// Compression negotiates a content-coding against the client's
// Accept-Encoding and the candidate response, replacing the body with its
// compressed equivalent when the registry's policy allows it (spec.md
// §4.8). Bytes and File bodies are compressed in place; every other
// variant is left unmodified but has any stale Content-Encoding stripped.
type Compression struct {
	Next     Handler
	Registry *compress.Registry
}

func (s *Compression) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	resp := s.Next.Handle(info, req)

	if _, empty := resp.Body.(message.EmptyBody); empty || resp.Body == nil {
		return resp
	}

	acceptEncoding := req.Headers.Value("Accept-Encoding")
	if acceptEncoding == "" {
		return resp
	}

	registry := s.Registry
	if registry == nil {
		registry = compress.DefaultRegistry()
	}

	coding, ok := compress.Negotiate(acceptEncoding, registry.Available)
	if !ok {
		return resp
	}

	switch resp.Body.(type) {
	case *message.BytesBody, *message.FileBody:
		size := bodySize(resp.Body)
		if size < registry.MinBytes || (registry.MaxBytes > 0 && size > registry.MaxBytes) {
			return resp
		}
		compressed, applied, err := compress.Apply(resp.Body, coding)
		if err != nil || !applied {
			return resp
		}
		resp.Body = compressed
		resp.Headers.Set("Content-Encoding", string(coding))
		resp.Headers.Set("Vary", addVaryToken(resp.Headers, "Accept-Encoding"))
	default:
		resp.Headers.Del("Content-Encoding")
	}
	return resp
}

// addVaryToken appends token to the existing Vary header unless already
// present, so a handler's own Vary declarations survive compression.
func addVaryToken(h *header.Map, token string) string {
	existing := h.Value("Vary")
	if existing == "" {
		return token
	}
	for _, v := range strings.Split(existing, ",") {
		if strings.EqualFold(strings.TrimSpace(v), token) {
			return existing
		}
	}
	return existing + ", " + token
}

func bodySize(body message.Body) int64 {
	switch b := body.(type) {
	case *message.BytesBody:
		return int64(len(b.Data))
	case *message.FileBody:
		return b.Size - b.Offset
	default:
		return 0
	}
}
