package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFormatsAndTagsComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), "Ephemeris")

	l.Info("computed %d bodies", 10)
	l.Warning("skipping %s", "Pluto")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "computed 10 bodies", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Ephemeris", entries[0].ContextMap()["component"])
}

func TestCriticalExits(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core), "Main")
	code := -1
	l.exit = func(c int) { code = c }

	l.Critical("boom: %v", "db")

	assert.Equal(t, 1, code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "CRITICAL: boom: db", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARNING"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestNamedKeepsSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := FromZap(zap.New(core), "Server").Named("Hub")
	l.Info("client connected")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Hub", logs.All()[0].ContextMap()["component"])
}
