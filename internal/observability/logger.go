// Package observability wires up structured logging for the CLI layer.
// Library packages under pkg/ never import this package or zap
// directly — they stay logger-silent, returning values and errors for
// the caller to log, the way a reusable package should.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger builds the process-wide logger for the codelint binary.
// Verbose enables debug-level output; json switches to structured JSON
// encoding for machine consumption (e.g. piping into another tool).
func CLILogger(verbose, json bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if !json {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

// Noop returns a logger that discards everything, for tests and
// library callers that don't want CLI-style output.
func Noop() *zap.Logger {
	return zap.NewNop()
}
