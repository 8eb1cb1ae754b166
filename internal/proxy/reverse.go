// Package proxy implements the reverse and forward proxy terminal
// handlers (C10, spec.md §4.16-4.17). Upstream requests are issued
// through internal/httpclient; net/http is used here only for its Header
// type when converting to and from internal/header.
package proxy

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/header"
	"github.com/forgehttp/forge/internal/httpclient"
	"github.com/forgehttp/forge/internal/message"
)

// hop-by-hop headers stripped in each direction (spec.md §4.16).
var requestHopByHop = []string{"Connection", "TE"}
var responseHopByHop = []string{"Connection", "Transfer-Encoding"}

// ReverseProxy forwards every request to a single upstream base URL
// (spec.md §4.16).
type ReverseProxy struct {
	UpstreamBase    string
	SetProxyHeaders bool
	PreserveHost    bool
	DecodeContent   bool
	StreamThreshold int64

	Client *httpclient.Client
}

// NewReverseProxy builds a ReverseProxy; its Client is constructed lazily
// on first use so DecodeContent assignments made after construction still
// take effect.
func NewReverseProxy(upstreamBase string) *ReverseProxy {
	return &ReverseProxy{
		UpstreamBase:    upstreamBase,
		StreamThreshold: 1 << 20,
	}
}

func (p *ReverseProxy) Handle(info chain.ConnectionInfo, req *message.Request) *message.Response {
	return p.forward(info, req, req.Target())
}

// forward issues the upstream request for targetPath (the forward proxy
// reuses this with a rewritten path per spec.md §4.17).
func (p *ReverseProxy) forward(info chain.ConnectionInfo, req *message.Request, targetPath string) *message.Response {
	upstreamHeaders := p.preprocess(info, req)
	if p.Client == nil {
		p.Client = httpclient.New(httpclient.Options{DisableCompression: !p.DecodeContent})
	}
	client := p.Client

	url := strings.TrimSuffix(p.UpstreamBase, "/") + targetPath

	var bodyReader *bodyReaderAdapter
	if len(req.Body) > 0 {
		bodyReader = newBodyReaderAdapter(req.Body)
	}

	var upstream *httpclient.Response
	var err error
	if bodyReader != nil {
		upstream, err = client.Do(context.Background(), req.Method, url, upstreamHeaders, bodyReader)
	} else {
		upstream, err = client.Do(context.Background(), req.Method, url, upstreamHeaders, nil)
	}
	if err != nil {
		return message.NewResponse(502)
	}

	return p.synthesize(upstream)
}

func (p *ReverseProxy) preprocess(info chain.ConnectionInfo, req *message.Request) http.Header {
	h := req.Headers.Clone()
	for _, name := range requestHopByHop {
		h.Del(name)
	}

	if p.SetProxyHeaders {
		remoteIP := info.RemoteEndpoint.IP()
		if xff, ok := h.Get("X-Forwarded-For"); ok && xff != "" {
			h.Set("X-Forwarded-For", xff+", "+remoteIP)
		} else {
			h.Set("X-Forwarded-For", remoteIP)
		}
		if host, ok := req.Headers.Get("Host"); ok {
			h.Set("X-Forwarded-Host", host)
		}
		proto := "http"
		if info.Secure {
			proto = "https"
		}
		h.Set("X-Forwarded-Proto", proto)

		forwardedSegment := "by=" + info.LocalEndpoint.IP() + ";for=" + remoteIP +
			";host=" + req.Headers.Value("Host") + ";proto=" + proto
		if existing, ok := h.Get("Forwarded"); ok && existing != "" {
			h.Set("Forwarded", existing+", "+forwardedSegment)
		} else {
			h.Set("Forwarded", forwardedSegment)
		}
	}

	if !p.PreserveHost {
		h.Del("Host")
	}

	return toHTTPHeader(h)
}

func (p *ReverseProxy) synthesize(upstream *httpclient.Response) *message.Response {
	resp := message.NewResponse(upstream.StatusCode)
	h := fromHTTPHeader(upstream.Header)
	for _, name := range responseHopByHop {
		h.Del(name)
	}

	isChunked := strings.EqualFold(upstream.Header.Get("Transfer-Encoding"), "chunked")
	contentLength := int64(-1)
	if v := upstream.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			contentLength = n
		}
	}

	if isChunked || (p.StreamThreshold > 0 && contentLength > p.StreamThreshold) {
		resp.Body = message.NewStreamBody(upstream.Body)
	} else {
		data, err := readAllAndClose(upstream.Body)
		if err != nil {
			return message.NewResponse(502)
		}
		resp.Body = &message.BytesBody{Data: data}
	}

	resp.Headers = h
	return resp
}

func toHTTPHeader(h *header.Map) http.Header {
	out := make(http.Header)
	h.Each(func(name, value string) {
		out.Set(name, value)
	})
	return out
}

func fromHTTPHeader(h http.Header) *header.Map {
	out := header.New()
	for name, values := range h {
		for _, v := range values {
			out.Set(name, v)
		}
	}
	return out
}
