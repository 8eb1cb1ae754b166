// Package httpclient implements the upstream-client contract spec.md §6
// asks for: issue a method+URL+headers+body request without following
// redirects, optionally preserve the response's content encoding, and
// expose a readable stream of the body alongside status and headers. The
// reverse and forward proxies in internal/proxy are the only consumers.
//
// spec.md explicitly scopes the upstream client out as an "external
// collaborator" (it is not part of this server's own wire protocol), so
// this package wraps the standard library's net/http.Transport/Client
// rather than reimplementing HTTP client semantics — no pack repo
// reimplements an HTTP client from scratch either; WhileEndless-go-rawhttp
// builds one, but as the library under test, not as infrastructure another
// component leans on. Its Options shape (connect/read timeouts, pool
// sizing) is grounded on rawhttp.go's own Options struct.
package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"
)

// Options configures the pooled transport backing Client.
type Options struct {
	ConnTimeout         time.Duration
	ReadTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DisableCompression  bool
}

// DefaultOptions mirrors the teacher's pooling defaults
// (rawhttp.go: 10s connect, 30s read) generalized into transport pool
// sizing knobs.
func DefaultOptions() Options {
	return Options{
		ConnTimeout:         10 * time.Second,
		ReadTimeout:         30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Response is the upstream-client contract's result: status, headers, and
// a readable stream of the body the caller must Close.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Client issues upstream requests without following redirects.
type Client struct {
	inner *http.Client
}

// New builds a Client with a dedicated *http.Transport pool sized from
// opts.
func New(opts Options) *Client {
	dialer := &net.Dialer{Timeout: opts.ConnTimeout}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        opts.MaxIdleConns,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		IdleConnTimeout:     opts.IdleConnTimeout,
		DisableCompression:  opts.DisableCompression,
	}
	return &Client{
		inner: &http.Client{
			Transport: transport,
			Timeout:   opts.ReadTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Do issues method against rawURL with header and body, returning the
// upstream response without following any redirect it may carry.
func (c *Client) Do(ctx context.Context, method, rawURL string, header http.Header, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header = header.Clone()

	resp, err := c.inner.Do(req)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}
