package logger

import (
	"testing"

	"finsync/pkg/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfigDefaultsToJSONInfo(t *testing.T) {
	zc := buildConfig(config.LoggerConfig{})

	require.Equal(t, "json", zc.Encoding)
	require.Equal(t, zapcore.InfoLevel, zc.Level.Level())
	require.Equal(t, "component", zc.EncoderConfig.NameKey)
	require.Equal(t, "timestamp", zc.EncoderConfig.TimeKey)
}

func TestBuildConfigConsoleFormat(t *testing.T) {
	zc := buildConfig(config.LoggerConfig{Level: "debug", Format: "Console"})

	require.Equal(t, "console", zc.Encoding)
	require.Equal(t, zapcore.DebugLevel, zc.Level.Level())
	require.Equal(t, "component", zc.EncoderConfig.NameKey)
}

func TestBuildConfigUnknownLevelFallsBackToInfo(t *testing.T) {
	zc := buildConfig(config.LoggerConfig{Level: "chatty", Format: "xml"})

	require.Equal(t, "json", zc.Encoding)
	require.Equal(t, zapcore.InfoLevel, zc.Level.Level())
}

func TestNewHonoursLevel(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "warn"})
	require.NoError(t, err)

	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
