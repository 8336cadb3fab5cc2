// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context. The log level is read
// from an environment variable derived from the executable name, e.g. a
// binary named "plumb" reads PLUMB_LOG_LEVEL. Valid values are DEBUG,
// INFO, WARN and ERROR; anything else defaults to WARN.
package ctxlog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type loggerKey struct{}

// LevelVar holds the current log level and may be adjusted at runtime.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is used when a context carries no logger.
var DefaultLogger = slog.New(NewPretty(
	&slog.HandlerOptions{Level: LevelVar},
	WithDestinationWriter(os.Stdout),
))

func init() {
	LevelVar.Set(levelFromEnv())
}

// New returns a context carrying the given logger, or DefaultLogger if nil.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger carried by the context, or DefaultLogger.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// Debug logs a debug message with the context's logger.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Info logs an info message with the context's logger.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Warn logs a warning message with the context's logger.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the context's logger.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

func envVarForExecutable(exe string) string {
	exe = filepath.Base(exe)
	exe = strings.TrimSuffix(exe, filepath.Ext(exe))

	return strings.ToUpper(exe) + "_LOG_LEVEL"
}

func levelFromEnv() slog.Level {
	exe, _ := os.Executable()

	switch os.Getenv(envVarForExecutable(exe)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
