package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgehttp/forge/internal/chain"
)

func TestForwardProxyPassthroughAbsoluteURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	fp := &ForwardProxy{}
	req := newProxyReq(t, "GET", upstream.URL+"/x")
	resp := fp.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestForwardProxyRejectsNonHTTPScheme(t *testing.T) {
	fp := &ForwardProxy{}
	req := newProxyReq(t, "GET", "https://example.com/x")
	resp := fp.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestForwardProxyEnforcesWhitelist(t *testing.T) {
	fp := &ForwardProxy{AllowedHosts: []string{"allowed.example.com"}}
	req := newProxyReq(t, "GET", "http://blocked.example.com/x")
	resp := fp.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 403 {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestForwardProxyConnectRejectsMalformedAuthority(t *testing.T) {
	fp := &ForwardProxy{}
	req := newProxyReq(t, "CONNECT", "not-a-valid-authority")
	resp := fp.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestForwardProxyConnectEnforcesWhitelist(t *testing.T) {
	fp := &ForwardProxy{AllowedHosts: []string{"allowed.example.com"}}
	req := newProxyReq(t, "CONNECT", "blocked.example.com:443")
	resp := fp.Handle(chain.ConnectionInfo{}, req)
	if resp.StatusCode != 403 {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}
