package bootstrap

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. "debug" gets the development encoder,
// everything else the production JSON encoder at the requested level.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
