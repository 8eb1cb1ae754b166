package proxy

import (
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/netx"
)

// ForwardProxy accepts absolute-URL requests and CONNECT tunnels (spec.md
// §4.17). AllowedHosts, when non-empty, whitelists the authorities it will
// forward to or tunnel toward.
type ForwardProxy struct {
	AllowedHosts []string

	reverseProxies sync.Map // authority -> *ReverseProxy
}

func (f *ForwardProxy) Handle(info chain.ConnectionInfo, req *message.Request) *message.Response {
	if req.Method == "CONNECT" {
		return f.handleConnect(req)
	}
	return f.handlePassthrough(info, req)
}

func (f *ForwardProxy) handleConnect(req *message.Request) *message.Response {
	authority := req.RawPath
	host, port, err := net.SplitHostPort(authority)
	if err != nil || host == "" || port == "" {
		return message.NewResponse(400)
	}
	if !f.allowed(host) {
		return message.NewResponse(403)
	}

	peerRaw, err := net.DialTimeout("tcp", authority, 10*time.Second)
	if err != nil {
		return message.NewResponse(502)
	}
	peer := netx.New(peerRaw, false)

	resp := message.NewResponse(200)
	resp.Body = &message.TunnelBody{
		Peer:   peerRaw,
		Splice: func(clientRaw io.ReadWriter) error { return splice(clientRaw, peer) },
	}
	return resp
}

// splice bidirectionally moves bytes between client and peer until either
// side closes, using netx.WaitAnyReadable's single-goroutine readiness loop
// (spec.md §5: "the tunnel body blocks in a non-blocking-mode
// waitAnyReadable loop") so neither direction dedicates a blocked goroutine
// to a side with nothing to forward. Falls back to a goroutine-per-direction
// io.Copy when clientRaw isn't a *netx.Conn (e.g. an in-process test
// harness using net.Pipe), since WaitAnyReadable needs a syscall-backed fd.
func splice(clientRaw io.ReadWriter, peer *netx.Conn) error {
	defer peer.Close()

	clientConn, ok := clientRaw.(*netx.Conn)
	if !ok {
		return spliceGeneric(clientRaw, peer)
	}

	buf := make([]byte, 32*1024)
	for {
		ready, err := netx.WaitAnyReadable([]*netx.Conn{clientConn, peer}, 30*time.Second)
		if err != nil {
			return err
		}
		if len(ready) == 0 {
			continue
		}
		for _, side := range ready {
			dst := peer
			if side == peer {
				dst = clientConn
			}
			n, err := side.Read(buf)
			if n > 0 {
				if _, werr := dst.Write(buf[:n]); werr != nil {
					return werr
				}
			}
			if err != nil {
				return err
			}
		}
	}
}

func spliceGeneric(clientRaw io.ReadWriter, peer io.ReadWriter) error {
	errCh := make(chan error, 2)
	go func() {
		_, err := io.Copy(peer, clientRaw)
		errCh <- err
	}()
	go func() {
		_, err := io.Copy(clientRaw, peer)
		errCh <- err
	}()
	return <-errCh
}

func (f *ForwardProxy) handlePassthrough(info chain.ConnectionInfo, req *message.Request) *message.Response {
	target := req.Target()
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return message.NewResponse(400)
	}
	if u.Scheme != "http" {
		return message.NewResponse(400)
	}
	if !f.allowed(hostOnly(u.Host)) {
		return message.NewResponse(403)
	}

	rp := f.reverseProxyFor(u.Scheme + "://" + u.Host)
	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rp.forward(info, req, path)
}

func (f *ForwardProxy) reverseProxyFor(base string) *ReverseProxy {
	if existing, ok := f.reverseProxies.Load(base); ok {
		return existing.(*ReverseProxy)
	}
	rp := NewReverseProxy(base)
	actual, _ := f.reverseProxies.LoadOrStore(base, rp)
	return actual.(*ReverseProxy)
}

func (f *ForwardProxy) allowed(host string) bool {
	if len(f.AllowedHosts) == 0 {
		return true
	}
	for _, h := range f.AllowedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

func hostOnly(authority string) string {
	if host, _, err := net.SplitHostPort(authority); err == nil {
		return host
	}
	return authority
}
