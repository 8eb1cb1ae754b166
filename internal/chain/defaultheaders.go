package chain

import (
	"time"

	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/message"
)

// DefaultHeaders ensures Server and Date are present on every downstream
// response, without clobbering values the downstream handler already set
// (spec.md §4.5: "defaults are applied with left-biased union").
type DefaultHeaders struct {
	Next    Handler
	Product string
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (s *DefaultHeaders) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	resp := s.Next.Handle(info, req)
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	defaults := header.New()
	defaults.Set("Server", s.Product)
	defaults.Set("Date", now().UTC().Format(httpDateFormat))
	resp.Headers = resp.Headers.UnionLeftBiased(defaults)
	return resp
}

// httpDateFormat is the RFC 9110 IMF-fixdate layout, shared by every stage
// that emits an HTTP-date (Date, Last-Modified).
const httpDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
