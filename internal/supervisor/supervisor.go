// Package supervisor implements C13 (spec.md §4.20): creates the
// configured plaintext and TLS listeners, holds them until interrupted,
// and tears them down on exit.
//
// Grounded on the teacher's (*Server).Shutdown (server.go): close every
// tracked listener, then wait for the outstanding work to settle. forge
// has no persistent-connection draining requirement beyond what
// (*listener.Listener).Dispose already does, so the supervisor's job
// shrinks to owning the listener set and the interrupt signal.
package supervisor

import (
	"crypto/tls"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/forgehttp/forge/internal/chain"
	"github.com/forgehttp/forge/internal/listener"
)

// pollInterval matches spec.md §4.20: "polls once per second to drop
// disposed entries".
const pollInterval = time.Second

// Config is the supervisor's entry configuration (spec.md §6
// "Configuration surface").
type Config struct {
	Handler        chain.Handler
	HTTPListeners  []string    // plaintext bind addresses
	HTTPSListeners []string    // TLS bind addresses
	HTTPSTLSConfig *tls.Config // shared TLS config for every HTTPSListeners entry
}

// Run creates every configured listener, starts serving on each, and
// blocks until SIGINT/SIGTERM or every listener has died, then disposes
// whichever listeners are still alive. It returns the exit code spec.md
// §6 describes: 0 on clean interrupt-triggered shutdown, non-zero if no
// listener could be started at all.
func Run(cfg Config, logger *zap.Logger) int {
	listeners := startAll(cfg, logger)
	if len(listeners) == 0 {
		logger.Error("no listener could be started")
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("interrupt received, shutting down")
			disposeAll(listeners)
			return 0
		case <-ticker.C:
			listeners = dropDead(listeners)
			if len(listeners) == 0 {
				logger.Error("all listeners have died")
				disposeAll(listeners)
				return 1
			}
		}
	}
}

func startAll(cfg Config, logger *zap.Logger) []*listener.Listener {
	var out []*listener.Listener
	for _, addr := range cfg.HTTPListeners {
		l, err := listener.New(addr, nil, cfg.Handler, logger)
		if err != nil {
			logger.Error("bind failed", zap.String("addr", addr), zap.Error(err))
			continue
		}
		go l.Serve()
		out = append(out, l)
	}
	for _, addr := range cfg.HTTPSListeners {
		l, err := listener.New(addr, cfg.HTTPSTLSConfig, cfg.Handler, logger)
		if err != nil {
			logger.Error("bind failed", zap.String("addr", addr), zap.Error(err))
			continue
		}
		go l.Serve()
		out = append(out, l)
	}
	return out
}

func dropDead(listeners []*listener.Listener) []*listener.Listener {
	kept := listeners[:0]
	for _, l := range listeners {
		if l.Alive() {
			kept = append(kept, l)
		}
	}
	return kept
}

func disposeAll(listeners []*listener.Listener) {
	var wg sync.WaitGroup
	for _, l := range listeners {
		wg.Add(1)
		go func(l *listener.Listener) {
			defer wg.Done()
			l.Dispose()
		}(l)
	}
	wg.Wait()
}
