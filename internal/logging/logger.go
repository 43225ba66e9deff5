// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging wraps a zap sugared logger. Diagnostics go to stderr;
// per-file status lines stay on the command's output writer. Methods on a
// nil *Logger are no-ops so library code can log unconditionally.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/casemap/pkg/types"
)

// Logger is a structured key/value logger.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for cfg.Mode ("production" for JSON output,
// anything else for the console encoder). Verbose lowers the level to debug.
func New(cfg types.LogConfig) (*Logger, error) {
	var zcfg zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		zcfg = zap.NewProductionConfig()
	default:
		zcfg = zap.NewDevelopmentConfig()
		zcfg.DisableStacktrace = true
	}
	level := zapcore.InfoLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger, e.g. one built over an observer core.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{SugaredLogger: zl.Sugar()}
}

func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}

// With returns a child logger that adds keysAndValues to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
