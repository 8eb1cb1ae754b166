package router

import (
	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/message"
)

// CodeRouter holds a path -> handler table populated via Register calls
// made at startup, with exact-path matching only (spec.md §4.15). Missing
// path delegates to DefaultRoute (default: 404); a panicking route handler
// is recovered into a 500.
type CodeRouter struct {
	routes       map[string]chain.Handler
	DefaultRoute chain.Handler
}

// NewCodeRouter returns an empty router ready for Register calls.
func NewCodeRouter() *CodeRouter {
	return &CodeRouter{routes: make(map[string]chain.Handler)}
}

// Register attaches handler to the exact path, overwriting any prior
// registration for that path. Called at startup only; no reflection, no
// per-request allocation of the route table.
func (c *CodeRouter) Register(path string, handler chain.Handler) {
	c.routes[path] = handler
}

func (c *CodeRouter) Handle(info chain.ConnectionInfo, req *message.Request) (resp *message.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = message.NewResponse(500)
			resp.Body = message.EmptyBody{}
		}
	}()

	handler, ok := c.routes[req.Path]
	if !ok {
		if c.DefaultRoute != nil {
			return c.DefaultRoute.Handle(info, req)
		}
		return message.NewResponse(404)
	}
	return handler.Handle(info, req)
}
