package chain

import (
	"strconv"

	"github.com/forgehttp/forge/internal/message"
)

// EnforceHTTPS redirects plaintext requests to their https:// equivalent
// before reaching Next, per spec.md §4.11. It inspects ConnectionInfo.Secure
// rather than any client-supplied header, since spoofable forwarding
// headers (X-Forwarded-Proto) are a reverse-proxy concern, not this
// stage's. An optional HSTSMaxAge attaches Strict-Transport-Security to
// both the redirect and any pass-through (already-secure) response.
type EnforceHTTPS struct {
	Next       Handler
	HSTSMaxAge int // 0 disables HSTS
}

func (s *EnforceHTTPS) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	if info.Secure {
		resp := s.Next.Handle(info, req)
		s.applyHSTS(resp)
		return resp
	}

	host, hasHost := req.Headers.Get("Host")
	if !hasHost {
		resp := s.Next.Handle(info, req)
		s.applyHSTS(resp)
		return resp
	}

	resp := message.NewResponse(301)
	resp.Headers.Set("Location", "https://"+host+req.Target())
	resp.Body = message.EmptyBody{}
	s.applyHSTS(resp)
	return resp
}

func (s *EnforceHTTPS) applyHSTS(resp *message.Response) {
	if s.HSTSMaxAge > 0 {
		resp.Headers.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(s.HSTSMaxAge))
	}
}
