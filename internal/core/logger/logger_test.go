package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"go-gin-rbac/internal/core/config"
)

func TestToWriterTrimsNewlines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	n, err := w.Write([]byte("[GIN-debug] route registered\r\n"))
	require.NoError(t, err)
	assert.Equal(t, len("[GIN-debug] route registered\r\n"), n)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "[GIN-debug] route registered", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestFromConfigWithRotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	defer cleanup()

	l.Info("hello")
	assert.FileExists(t, file)
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, cleanup := New("not-a-level", false)
	defer cleanup()
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
