package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, Field{Key: "s", Value: "v"}, String("s", "v"))
	assert.Equal(t, Field{Key: "i", Value: 42}, Int("i", 42))
	assert.Equal(t, Field{Key: "i64", Value: int64(7)}, Int64("i64", 7))
	assert.Equal(t, Field{Key: "f", Value: 1.5}, Float64("f", 1.5))
	assert.Equal(t, Field{Key: "b", Value: true}, Bool("b", true))
	assert.Equal(t, Field{Key: "d", Value: time.Second}, Duration("d", time.Second))
	assert.Equal(t, Field{Key: "error", Value: "boom"}, Err(errors.New("boom")))
	assert.Equal(t, Field{Key: "error", Value: "<nil>"}, Err(nil))
	assert.Equal(t, Field{Key: "a", Value: []int{1}}, Any("a", []int{1}))
}

func TestLoggerWritesStructuredEntries(t *testing.T) {
	log, logs := observedLogger(zapcore.DebugLevel)

	log.Info("converted record", String("format", "sdf"), Int("atoms", 12))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "converted record", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "sdf", fields["format"])
	assert.Equal(t, int64(12), fields["atoms"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	log, logs := observedLogger(zapcore.WarnLevel)

	log.Debug("dropped")
	log.Info("dropped too")
	log.Warn("kept")
	log.Error("kept too")

	assert.Equal(t, 2, logs.Len())
}

func TestWithAttachesFields(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	child := log.With(String("run_id", "r-1"))
	child.Info("first")
	log.Info("second")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "r-1", entries[0].ContextMap()["run_id"])
	_, parentHasField := entries[1].ContextMap()["run_id"]
	assert.False(t, parentHasField)
}

func TestNamedAppendsName(t *testing.T) {
	log, logs := observedLogger(zapcore.InfoLevel)

	log.Named("pipeline").Named("builder").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "pipeline.builder", entries[0].LoggerName)
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	require.NotNil(t, log)

	// The zap-backed logger supports runtime level changes.
	setter, ok := log.(LevelSetter)
	require.True(t, ok)
	setter.SetLevel("error")
	setter.SetLevel("nonsense") // falls back to info, never panics
}

func TestNewLoggerBadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"/nonexistent-dir-xyz/out.log"}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	assert.NotPanics(t, func() {
		log.Debug("x")
		log.Info("x", String("k", "v"))
		log.Warn("x")
		log.Error("x")
		log.With(Int("i", 1)).Named("child").Info("x")
	})
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	log, logs := observedLogger(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, log, Default())
}
