package chain

import (
	"testing"

	"github.com/forgehttp/forge/internal/message"
)

func redirectHandler(statusCode int, location string) Handler {
	return HandlerFunc(func(info ConnectionInfo, req *message.Request) *message.Response {
		resp := message.NewResponse(statusCode)
		resp.Headers.Set("Location", location)
		resp.Body = message.EmptyBody{}
		return resp
	})
}

func TestRewriteRedirectsReplacesAliasedAuthority(t *testing.T) {
	stage := &RewriteRedirects{
		Next:    redirectHandler(302, "http://internal-upstream:8080/path?x=1"),
		Aliases: map[string]string{"internal-upstream:8080": "public.example.com"},
	}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)
	if v, _ := resp.Headers.Get("Location"); v != "http://public.example.com/path?x=1" {
		t.Errorf("Location = %q", v)
	}
}

func TestRewriteRedirectsLeavesUnmappedAuthority(t *testing.T) {
	stage := &RewriteRedirects{
		Next:    redirectHandler(302, "http://other-host/path"),
		Aliases: map[string]string{"internal-upstream:8080": "public.example.com"},
	}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)
	if v, _ := resp.Headers.Get("Location"); v != "http://other-host/path" {
		t.Errorf("Location = %q, want unchanged", v)
	}
}

func TestRewriteRedirectsIgnoresNonRedirectStatus(t *testing.T) {
	stage := &RewriteRedirects{
		Next:    redirectHandler(200, "http://internal-upstream:8080/path"),
		Aliases: map[string]string{"internal-upstream:8080": "public.example.com"},
	}
	req := newReq(t, "GET")
	resp := stage.Handle(ConnectionInfo{}, req)
	if v, _ := resp.Headers.Get("Location"); v != "http://internal-upstream:8080/path" {
		t.Errorf("Location = %q, want unchanged for non-redirect status", v)
	}
}
