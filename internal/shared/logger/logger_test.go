package logger_test

import (
	"testing"

	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := logger.New(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = logger.New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = logger.New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestInstall(t *testing.T) {
	l, undo, err := logger.Install(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.Same(t, l, zap.L())
	undo()
	assert.NotSame(t, l, zap.L())
}
