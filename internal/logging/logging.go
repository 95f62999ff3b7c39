// Package logging builds the process logger. Console output is for people
// running the tool by hand; JSON output is for schedulers that ship logs.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldRunID    = "run_id"
	FieldKey      = "key"
	FieldTitle    = "title"
	FieldRenderer = "renderer"
	FieldCount    = "count"
	FieldPath     = "path"
	FieldProvider = "provider"
)

// VerbosityToLevel maps -v counts to a level: none is info, -v and more is
// debug.
func VerbosityToLevel(verbosity int) zapcore.Level {
	if verbosity > 0 {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// New returns a JSON production logger or a colored console logger on stderr.
func New(jsonOutput bool, verbosity int) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(VerbosityToLevel(verbosity))
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(os.Stderr), level)
	return zap.New(core), nil
}
