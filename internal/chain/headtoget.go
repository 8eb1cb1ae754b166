package chain

import "github.com/forgehttp/forge/internal/message"

// HeadToGet rewrites HEAD requests to GET before forwarding, then replaces
// the downstream body with Empty after the response is produced, so no body
// bytes and no Content-Length are sent; every other header the GET handler
// computed is kept (spec.md §4.6).
type HeadToGet struct {
	Next Handler
}

func (s *HeadToGet) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	isHead := req.Method == "HEAD"
	if isHead {
		req.Method = "GET"
	}
	resp := s.Next.Handle(info, req)
	if isHead {
		req.Method = "HEAD"
		resp.Body = message.EmptyBody{}
	}
	return resp
}
