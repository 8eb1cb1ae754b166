package chain

import (
	"net/url"

	"github.com/forgehttp/forge/internal/message"
)

// redirectStatuses is the set of status codes whose location-like headers
// qualify for authority rewriting (spec.md §4.12).
var redirectStatuses = map[int]bool{
	201: true, 301: true, 302: true, 303: true, 307: true, 308: true,
}

// locationHeaders lists the header names treated as URL-valued for
// rewriting purposes.
var locationHeaders = []string{"Location", "Content-Location", "URI"}

// RewriteRedirects replaces the authority of location-like response
// headers with a configured alias target, leaving path, query and scheme
// untouched (spec.md §4.12). Used when an internal upstream name differs
// from the externally visible hostname.
type RewriteRedirects struct {
	Next    Handler
	Aliases map[string]string // internal authority -> external authority
}

func (s *RewriteRedirects) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	resp := s.Next.Handle(info, req)

	if !redirectStatuses[resp.StatusCode] || len(s.Aliases) == 0 {
		return resp
	}

	for _, name := range locationHeaders {
		v, ok := resp.Headers.Get(name)
		if !ok {
			continue
		}
		if rewritten, changed := s.rewriteAuthority(v); changed {
			resp.Headers.Set(name, rewritten)
		}
	}
	return resp
}

func (s *RewriteRedirects) rewriteAuthority(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw, false
	}
	target, ok := s.Aliases[u.Host]
	if !ok {
		return raw, false
	}
	u.Host = target
	return u.String(), true
}
