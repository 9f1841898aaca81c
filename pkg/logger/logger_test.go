package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	old := Instance
	Instance = zap.New(core)
	defer func() { Instance = old }()

	ctx := WithContext(context.Background(), zap.String("trace_id", "abc"))
	ctx = WithContext(ctx, zap.Uint64("user_id", 7))
	Info(ctx, "hello", zap.String("k", "v"))
	Warnf(ctx, "count=%d", 3)

	entries := logs.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["trace_id"])
	assert.Equal(t, uint64(7), fields["user_id"])
	assert.Equal(t, "v", fields["k"])
	assert.Equal(t, "count=3", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"unknown", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestFromContextWithoutFields(t *testing.T) {
	assert.Same(t, Instance, FromContext(context.Background()))
}
