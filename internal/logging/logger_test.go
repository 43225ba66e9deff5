// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/casemap/pkg/types"
)

func TestNew_Modes(t *testing.T) {
	for _, cfg := range []types.LogConfig{
		{Mode: "development"},
		{Mode: "production"},
		{Mode: "", Verbose: true},
	} {
		l, err := New(cfg)
		require.NoError(t, err)
		require.NotNil(t, l.SugaredLogger)
		assert.Equal(t, cfg.Verbose, l.SugaredLogger.Desugar().Core().Enabled(zapcore.DebugLevel), "mode %q", cfg.Mode)
	}
}

func TestLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With("source", "login.txt")

	l.Info("converted", "topics", 4)
	l.Debug("detail")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "converted", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "login.txt", fields["source"])
	assert.Equal(t, int64(4), fields["topics"])
}

func TestLogger_NilIsNoop(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		l.Sync()
		assert.Nil(t, l.With("k", "v"))
	})
}
