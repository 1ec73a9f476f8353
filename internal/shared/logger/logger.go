package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// New creates a production logger named after the service mode. Level comes
// from config (debug/info/warn/error).
func New(service, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return log.Named(service), nil
}

// WithRequestID returns log with a fresh request id field, correlating every
// line emitted while handling one message.
func WithRequestID(log *zap.Logger) *zap.Logger {
	return log.With(zap.String("request_id", uuid.NewString()))
}
