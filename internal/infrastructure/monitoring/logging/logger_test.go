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

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLoggerBuilds(t *testing.T) {
	for _, cfg := range []LogConfig{
		{Level: "info", Format: "json"},
		{Level: "debug", Format: "console"},
		{},
	} {
		l, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestNewLoggerBadOutputPath(t *testing.T) {
	_, err := NewLogger(LogConfig{OutputPaths: []string{"unknown-scheme://nope"}})
	assert.Error(t, err)
}

func TestLevelsRespected(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("too quiet")
	l.Info("still too quiet")
	l.Warn("loud enough")
	l.Error("very loud")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "loud enough", logs.All()[0].Message)
	assert.Equal(t, "very loud", logs.All()[1].Message)
}

func TestFieldsAreTyped(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("entry",
		String("name", "acetone"),
		Int("row", 7),
		Bool("ok", true),
		Duration("elapsed", time.Second),
		Err(errors.New("boom")),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "acetone", ctx["name"])
	assert.EqualValues(t, 7, ctx["row"])
	assert.Equal(t, true, ctx["ok"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestWithAddsPersistentFields(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.With(String("run_id", "abc"))
	child.Info("first")
	child.Info("second")
	l.Info("parent untouched")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "abc", entries[0].ContextMap()["run_id"])
	assert.Equal(t, "abc", entries[1].ContextMap()["run_id"])
	assert.NotContains(t, entries[2].ContextMap(), "run_id")
}

func TestNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Named("pubchem").Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "pubchem", logs.All()[0].LoggerName)
}

func TestNopLoggerIsSilentAndChainable(t *testing.T) {
	l := NewNopLogger()
	l.Debug("nothing")
	l.With(String("k", "v")).Named("x").Error("still nothing")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, logs := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	Default().Info("via default")

	require.Equal(t, 1, logs.Len())

	// A nil default is rejected, not installed.
	SetDefault(nil)
	assert.NotNil(t, Default())
}
