// Package applog builds the zap logger forge's workers and listeners log
// through, and the request/connection-scoped fields attached to each
// entry. The teacher logs via bare log.Printf scattered through
// server_event_emitter.go; this expansion's ambient stack (SPEC_FULL.md
// §1) replaces that with structured zap logging, keeping the
// same "emit one line per lifecycle event" shape the teacher's event
// emitter follows.
package applog

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap logger, or a development one when dev
// is true (human-readable console encoding instead of JSON).
func New(dev bool) (*zap.Logger, error) {
	if dev {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}
	return zap.NewProduction()
}

// ConnectionFields returns the structured fields attached to every log
// line emitted while servicing one accepted connection.
func ConnectionFields(connID uuid.UUID, remote string) []zap.Field {
	return []zap.Field{
		zap.String("conn_id", connID.String()),
		zap.String("remote", remote),
	}
}

// RequestFields extends a connection's fields with the per-request
// correlation id, method and target.
func RequestFields(requestID uuid.UUID, method, target string) []zap.Field {
	return []zap.Field{
		zap.String("request_id", requestID.String()),
		zap.String("method", method),
		zap.String("target", target),
	}
}
