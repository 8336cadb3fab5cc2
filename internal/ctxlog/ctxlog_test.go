// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFallsBackToDefault(t *testing.T) {
	assert.Same(t, DefaultLogger, Logger(context.Background()))

	ctx := context.WithValue(context.Background(), loggerKey{}, "not a logger")
	assert.Same(t, DefaultLogger, Logger(ctx))

	ctx = New(context.Background(), nil)
	assert.Same(t, DefaultLogger, Logger(ctx))
}

func TestLoggerFromContext(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := New(context.Background(), logger)

	assert.Same(t, logger, Logger(ctx))
}

func TestLoggingFunctions(t *testing.T) {
	buf := bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := New(context.Background(), logger)

	cases := []struct {
		logFunc func(context.Context, string, ...any)
		level   string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tc := range cases {
		buf.Reset()
		tc.logFunc(ctx, "a message", "key", "value")

		out := buf.String()
		require.Contains(t, out, tc.level)
		assert.Contains(t, out, "a message")
		assert.Contains(t, out, "key=value")
	}
}

func TestLevelFromEnv(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	// The env var name is derived from the test binary's name.
	envVar := envVarForExecutable(exe)

	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"invalid": slog.LevelWarn,
		"":        slog.LevelWarn,
	}

	for value, want := range cases {
		t.Setenv(envVar, value)
		assert.Equal(t, want, levelFromEnv(), "value %q", value)
	}
}

func TestLevelVarAdjustable(t *testing.T) {
	original := LevelVar.Level()
	defer LevelVar.Set(original)

	LevelVar.Set(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))

	LevelVar.Set(slog.LevelError)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelInfo))
}
