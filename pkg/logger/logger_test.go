package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_LevelParsing(t *testing.T) {
	defer Init(Config{Level: "info", Format: "text"})

	Init(Config{Level: "debug", Format: "text"})
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	Init(Config{Level: "error", Format: "json"})
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelError))

	Init(Config{Level: "bogus", Format: "text"})
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
