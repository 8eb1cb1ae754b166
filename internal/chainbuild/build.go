// Package chainbuild assembles the C9 stage chain and C10 terminal
// handlers described by a loaded config.Config into the single root
// chain.Handler the supervisor serves through.
//
// The composition order follows spec.md §4 (table in §2 and the reading
// order of §4.5 through §4.13) literally: default-headers wraps
// HEAD→GET wraps precondition wraps compression wraps minification wraps
// virtual-host wraps enforce-HTTPS wraps rewrite-redirects wraps
// basic-auth wraps the terminal. Since virtual-host dispatch produces a
// distinct Handler per Host, enforce-HTTPS/rewrite-redirects/basic-auth
// are instantiated once per virtual host from the same global
// configuration, each wrapping that host's own terminal — the config
// surface doesn't carry per-host auth/alias settings, so every host
// shares the one set of values.
package chainbuild

import (
	"strings"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/compress"
	"github.com/forgehttp/forge/internal/config"
	"github.com/forgehttp/forge/internal/message"
	"github.com/forgehttp/forge/internal/minify"
	"github.com/forgehttp/forge/internal/proxy"
	"github.com/forgehttp/forge/internal/router"
)

// Build assembles the full handler chain from cfg.
func Build(cfg *config.Config) chain.Handler {
	if cfg.ForwardProxy != nil && cfg.ForwardProxy.Enabled {
		fp := &proxy.ForwardProxy{AllowedHosts: cfg.ForwardProxy.AllowedHosts}
		return wrapAmbient(cfg, fp)
	}

	var terminal chain.Handler
	if len(cfg.VirtualHosts) > 0 {
		hosts := make(map[string]chain.Handler, len(cfg.VirtualHosts))
		for _, vh := range cfg.VirtualHosts {
			hosts[strings.ToLower(vh.Host)] = wrapTerminalStages(cfg, buildSiteTerminal(vh.FileRouter, vh.ReverseProxy))
		}
		var def chain.Handler
		if cfg.DefaultFileRouter != nil {
			def = wrapTerminalStages(cfg, buildFileRouter(cfg.DefaultFileRouter))
		}
		terminal = &chain.VirtualHost{Hosts: hosts, Default: def}
	} else {
		terminal = wrapTerminalStages(cfg, buildSiteTerminal(cfg.DefaultFileRouter, nil))
	}

	return wrapAmbient(cfg, terminal)
}

// buildSiteTerminal resolves one site's terminal handler: a reverse proxy
// takes precedence over a file router when both are configured, matching
// the most specific intent expressed in the document.
func buildSiteTerminal(fr *config.FileRouterConfig, rp *config.ReverseProxyConfig) chain.Handler {
	if rp != nil {
		return buildReverseProxy(rp)
	}
	if fr != nil {
		return buildFileRouter(fr)
	}
	return chain.HandlerFunc(notFound)
}

func buildFileRouter(fr *config.FileRouterConfig) chain.Handler {
	return &router.FileRouter{
		DocumentRoot:       fr.DocumentRoot,
		GenerateIndex:      fr.GenerateIndex,
		EnableETag:         fr.EnableETag,
		EnableLastModified: fr.EnableLastModified,
		DisableSymlinks:    fr.DisableSymlinks,
	}
}

func buildReverseProxy(rp *config.ReverseProxyConfig) chain.Handler {
	p := proxy.NewReverseProxy(rp.UpstreamBase)
	p.SetProxyHeaders = rp.SetProxyHeaders
	p.PreserveHost = rp.PreserveHost
	p.DecodeContent = rp.DecodeContent
	if rp.StreamThreshold > 0 {
		p.StreamThreshold = rp.StreamThreshold
	}
	return p
}

// wrapTerminalStages applies the per-site stages (spec.md §4.11-§4.13):
// enforce-HTTPS, rewrite-redirects, basic-auth, outermost to innermost.
func wrapTerminalStages(cfg *config.Config, terminal chain.Handler) chain.Handler {
	cur := terminal

	if cfg.BasicAuth != nil && len(cfg.BasicAuth.Credentials) > 0 {
		cur = &chain.BasicAuth{Next: cur, Realm: cfg.BasicAuth.Realm, Credentials: cfg.BasicAuth.Credentials}
	}
	if len(cfg.RewriteRedirects) > 0 {
		cur = &chain.RewriteRedirects{Next: cur, Aliases: cfg.RewriteRedirects}
	}
	if cfg.EnforceHTTPS != nil && cfg.EnforceHTTPS.Enabled {
		cur = &chain.EnforceHTTPS{Next: cur, HSTSMaxAge: cfg.EnforceHTTPS.HSTSMaxAge}
	}
	return cur
}

// wrapAmbient applies the connection-wide stages (spec.md §4.5-§4.9):
// default-headers, HEAD→GET, precondition, compression, minification.
func wrapAmbient(cfg *config.Config, terminal chain.Handler) chain.Handler {
	cur := terminal

	if cfg.Minify {
		cur = &chain.Minify{Next: cur, Minifier: minify.New()}
	}
	if cfg.Compression != nil && cfg.Compression.Enabled {
		registry := compress.DefaultRegistry()
		if cfg.Compression.MinBytes > 0 {
			registry.MinBytes = cfg.Compression.MinBytes
		}
		if cfg.Compression.MaxBytes > 0 {
			registry.MaxBytes = cfg.Compression.MaxBytes
		}
		cur = &chain.Compression{Next: cur, Registry: registry}
	}
	cur = &chain.Precondition{Next: cur}
	cur = &chain.HeadToGet{Next: cur}
	cur = &chain.DefaultHeaders{Next: cur, Product: cfg.Product}
	return cur
}

func notFound(info chain.ConnectionInfo, req *message.Request) *message.Response {
	return message.NewResponse(404)
}
