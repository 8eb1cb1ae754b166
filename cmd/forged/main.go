// Command forged is forge's process entry point: load configuration,
// assemble the handler chain, and run the supervisor until interrupted.
//
// Process entry point and configuration loading are scoped out of the
// core specification as an external collaborator (spec.md §1); this file
// is the thin wiring spec.md §6's "Configuration surface" describes,
// grounded on the teacher's own main-less library shape (badu-http ships
// no cmd/ of its own) generalized from the flag/YAML bootstrap pattern
// docker-compose's cmd/compose package uses.
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forgehttp/forge/internal/applog"
	"github.com/forgehttp/forge/internal/chainbuild"
	"github.com/forgehttp/forge/internal/config"
	"github.com/forgehttp/forge/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a forge.yaml configuration file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cfg = loaded
	}

	logger, err := applog.New(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logger.Sync()

	var tlsConfig *tls.Config
	if len(cfg.HTTPSListeners) > 0 {
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			logger.Error("failed to load TLS material", zap.Error(err))
			return 1
		}
	}

	handler := chainbuild.Build(cfg)

	return supervisor.Run(supervisor.Config{
		Handler:        handler,
		HTTPListeners:  cfg.HTTPListeners,
		HTTPSListeners: cfg.HTTPSListeners,
		HTTPSTLSConfig: tlsConfig,
	}, logger)
}

func buildTLSConfig(cfg *config.Config) (*tls.Config, error) {
	if cfg.HTTPSKeyFile == "" || cfg.HTTPSCertFile == "" {
		return nil, fmt.Errorf("httpsListeners configured without httpsKeyFile/httpsCertFile")
	}
	cert, err := tls.LoadX509KeyPair(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS10,
	}, nil
}
