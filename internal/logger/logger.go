package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// NOOPLogger discards everything. Components fall back to it when no logger is injected.
var NOOPLogger = zap.NewNop().Sugar()

// New builds the process logger. The production environment logs JSON,
// everything else gets the human readable development encoder.
func New(env, level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = lvl
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Sugar(), nil
}

// OrNop returns l, or NOOPLogger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return NOOPLogger
	}
	return l
}
