// Package config loads forge's YAML configuration into the typed shape
// cmd/forged assembles the handler chain and supervisor from. Process
// entry point and configuration loading are explicitly scoped out of the
// core specification as an external collaborator (spec.md §1), so this
// package only needs to produce a plain data structure — no validation
// framework, no hot-reload.
//
// Grounded on the teacher's own reach for gopkg.in/yaml.v3 wherever the
// pack decodes structured config (docker-compose's cmd/compose/config.go),
// which is the same library already required by forge's go.mod.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileRouterConfig configures one internal/router.FileRouter instance.
type FileRouterConfig struct {
	DocumentRoot       string `yaml:"documentRoot"`
	GenerateIndex      bool   `yaml:"generateIndex"`
	EnableETag         bool   `yaml:"enableETag"`
	EnableLastModified bool   `yaml:"enableLastModified"`
	DisableSymlinks    bool   `yaml:"disableSymlinks"`
}

// ReverseProxyConfig configures one internal/proxy.ReverseProxy instance.
type ReverseProxyConfig struct {
	UpstreamBase    string `yaml:"upstreamBase"`
	SetProxyHeaders bool   `yaml:"setProxyHeaders"`
	PreserveHost    bool   `yaml:"preserveHost"`
	DecodeContent   bool   `yaml:"decodeContent"`
	StreamThreshold int64  `yaml:"streamThreshold"`
}

// ForwardProxyConfig configures the internal/proxy.ForwardProxy terminal.
type ForwardProxyConfig struct {
	Enabled      bool     `yaml:"enabled"`
	AllowedHosts []string `yaml:"allowedHosts"`
}

// VirtualHostConfig names one entry in the virtual-host dispatch table; a
// host serves either a file tree or a reverse-proxy upstream.
type VirtualHostConfig struct {
	Host         string              `yaml:"host"`
	FileRouter   *FileRouterConfig   `yaml:"fileRouter"`
	ReverseProxy *ReverseProxyConfig `yaml:"reverseProxy"`
}

// BasicAuthConfig configures the internal/chain.BasicAuth stage. A nil
// Credentials map disables the stage entirely.
type BasicAuthConfig struct {
	Realm       string            `yaml:"realm"`
	Credentials map[string]string `yaml:"credentials"`
}

// CompressionConfig configures the internal/chain.Compression stage.
type CompressionConfig struct {
	Enabled  bool  `yaml:"enabled"`
	MinBytes int64 `yaml:"minBytes"`
	MaxBytes int64 `yaml:"maxBytes"`
}

// EnforceHTTPSConfig configures the internal/chain.EnforceHTTPS stage.
type EnforceHTTPSConfig struct {
	Enabled    bool `yaml:"enabled"`
	HSTSMaxAge int  `yaml:"hstsMaxAge"`
}

// Config is the full top-level configuration document (spec.md §6
// "Configuration surface").
type Config struct {
	Product string `yaml:"product"` // default Server header value

	HTTPListeners  []string `yaml:"httpListeners"`
	HTTPSListeners []string `yaml:"httpsListeners"`
	HTTPSKeyFile   string   `yaml:"httpsKeyFile"`
	HTTPSCertFile  string   `yaml:"httpsCertFile"`

	DefaultFileRouter *FileRouterConfig   `yaml:"defaultFileRouter"`
	VirtualHosts      []VirtualHostConfig `yaml:"virtualHosts"`

	BasicAuth        *BasicAuthConfig    `yaml:"basicAuth"`
	Compression      *CompressionConfig  `yaml:"compression"`
	Minify           bool                `yaml:"minify"`
	EnforceHTTPS     *EnforceHTTPSConfig `yaml:"enforceHTTPS"`
	RewriteRedirects map[string]string   `yaml:"rewriteRedirects"`
	ForwardProxy     *ForwardProxyConfig `yaml:"forwardProxy"`

	Dev bool `yaml:"dev"` // development-mode logging (console, colorized)
}

// Default returns a minimal working configuration: one plaintext listener
// serving the current directory.
func Default() *Config {
	return &Config{
		Product:       "forge",
		HTTPListeners: []string{":8080"},
		DefaultFileRouter: &FileRouterConfig{
			DocumentRoot:       ".",
			GenerateIndex:      true,
			EnableETag:         true,
			EnableLastModified: true,
		},
		Compression: &CompressionConfig{Enabled: true, MinBytes: 50, MaxBytes: 10 << 20},
		Minify:      true,
	}
}

// Load reads and parses a YAML configuration document from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.Product == "" {
		cfg.Product = "forge"
	}
	return cfg, nil
}
