package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestGlobalLoggerReplacement(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Info("entry created", zap.String("entry_id", "e1"))
	Debug("dropped below level")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "entry created", entries[0].Message)
		assert.Equal(t, "e1", entries[0].ContextMap()["entry_id"])
	}
}
