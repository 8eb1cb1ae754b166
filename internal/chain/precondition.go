package chain

import (
	"strings"
	"time"

	"github.com/forgehttp/forge/internal/message"
)

// Precondition evaluates RFC 9110 §13 conditional headers against the
// downstream candidate response's ETag/Last-Modified, per spec.md §4.7.
// It runs after the downstream handler, inspecting the candidate it
// produced.
type Precondition struct {
	Next Handler
}

// cacheableHeaders lists the response headers preserved across a 304/412
// short-circuit (spec.md §4.7: "selected cacheable headers from the
// candidate are preserved").
var cacheableHeaders = []string{"ETag", "Last-Modified", "Cache-Control", "Content-Location", "Expires", "Vary"}

func (s *Precondition) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	resp := s.Next.Handle(info, req)

	etag := resp.Headers.Value("ETag")
	lastMod, hasLastMod := parseHTTPDate(resp.Headers.Value("Last-Modified"))

	if ifMatch, ok := req.Headers.Get("If-Match"); ok {
		if !strongETagMatches(ifMatch, etag) {
			return shortCircuit(resp, 412)
		}
	} else if ifUnmodSince, ok := req.Headers.Get("If-Unmodified-Since"); ok && hasLastMod {
		if sinceTime, ok := parseHTTPDate(ifUnmodSince); ok && lastMod.After(sinceTime) {
			return shortCircuit(resp, 412)
		}
	}

	if ifNoneMatch, ok := req.Headers.Get("If-None-Match"); ok {
		if etagMatches(ifNoneMatch, etag) {
			if req.Method == "GET" || req.Method == "HEAD" {
				return shortCircuit(resp, 304)
			}
			return shortCircuit(resp, 412)
		}
	} else if ifModSince, ok := req.Headers.Get("If-Modified-Since"); ok &&
		(req.Method == "GET" || req.Method == "HEAD") && hasLastMod {
		if sinceTime, ok := parseHTTPDate(ifModSince); ok && !lastMod.After(sinceTime) {
			return shortCircuit(resp, 304)
		}
	}

	return resp
}

func shortCircuit(candidate *message.Response, code int) *message.Response {
	out := message.NewResponse(code)
	for _, name := range cacheableHeaders {
		if v, ok := candidate.Headers.Get(name); ok {
			out.Headers.Set(name, v)
		}
	}
	return out
}

func parseHTTPDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{httpDateFormat, time.RFC850, time.ANSIC} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isWeak reports whether an ETag value carries the W/ weak-validator prefix
// (spec.md GLOSSARY: "a validator with a W/ prefix is weak").
func isWeak(etag string) bool {
	return strings.HasPrefix(etag, "W/")
}

// strongETagMatches implements If-Match: fails unless the candidate has a
// strong ETag literally equal to one of the header's comma-separated values
// (weak ETags always fail If-Match, per spec.md §4.7).
func strongETagMatches(ifMatchHeader, candidateETag string) bool {
	if candidateETag == "" || isWeak(candidateETag) {
		return false
	}
	for _, v := range splitCommaList(ifMatchHeader) {
		if v == candidateETag {
			return true
		}
	}
	return false
}

// etagMatches implements the (weak-comparison) equality If-None-Match uses:
// literal equality only, open question about '*' left unresolved per
// spec.md §9 "Open questions" (DESIGN.md records the decision).
func etagMatches(headerValue, candidateETag string) bool {
	if candidateETag == "" {
		return false
	}
	for _, v := range splitCommaList(headerValue) {
		if v == candidateETag {
			return true
		}
	}
	return false
}

func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
