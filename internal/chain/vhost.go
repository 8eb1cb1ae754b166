package chain

import (
	"strings"

	"github.com/forgehttp/forge/internal/message"
)

// VirtualHost dispatches to a per-hostname handler keyed by the Host
// header (spec.md §4.10). The full Host value is looked up first; if it
// carries a port suffix, the bare host name is tried next; otherwise the
// request falls back to Default, or to a 404 when Default is nil. Table
// lookups are case-insensitive per RFC 9110 host-name rules.
type VirtualHost struct {
	Hosts   map[string]Handler
	Default Handler
}

func (s *VirtualHost) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	host, _ := req.Headers.Get("Host")
	host = strings.ToLower(strings.TrimSpace(host))

	if next, ok := s.Hosts[host]; ok {
		return next.Handle(info, req)
	}
	if hostOnly, _, found := strings.Cut(host, ":"); found {
		if next, ok := s.Hosts[hostOnly]; ok {
			return next.Handle(info, req)
		}
	}
	if s.Default != nil {
		return s.Default.Handle(info, req)
	}
	return message.NewResponse(404)
}
