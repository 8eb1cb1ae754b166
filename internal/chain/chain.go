// Package chain implements the handler contract (C8) and the composable
// handler-chain stages (C9): default headers, HEAD->GET adaptation,
// precondition evaluation, compression, minification, virtual-host
// dispatch, enforce-HTTPS, rewrite-redirects and basic-auth.
//
// Stages compose by ownership (spec.md §4.4): each stage holds its next
// handler and invokes it at its discretion. The chain is assembled once at
// startup; there is no per-request allocation of chain structure, matching
// the teacher's server_handler.go dispatch-by-field pattern rather than a
// dynamically rebuilt middleware list.
package chain

import (
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/netx"
)

// ConnectionInfo is the immutable per-turn record injected into every
// handler call (spec.md §3).
type ConnectionInfo struct {
	RemoteEndpoint netx.Endpoint
	LocalEndpoint  netx.Endpoint
	Secure         bool
}

// Handler is the contract every stage and terminal handler implements
// (spec.md §2, C8): (ConnectionInfo, Request) -> Response.
type Handler interface {
	Handle(info ConnectionInfo, req *message.Request) *message.Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(info ConnectionInfo, req *message.Request) *message.Response

func (f HandlerFunc) Handle(info ConnectionInfo, req *message.Request) *message.Response {
	return f(info, req)
}
