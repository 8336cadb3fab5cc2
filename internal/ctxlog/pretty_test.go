// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyEnabled(t *testing.T) {
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandle(t *testing.T) {
	cases := []struct {
		level   slog.Level
		message string
		attrs   []any
		expect  []string
	}{
		{slog.LevelInfo, "plain message", nil, []string{"INFO:", "plain message"}},
		{slog.LevelDebug, "with attrs", []any{"key", "value", "n", 42}, []string{"DEBUG:", "with attrs", "key", "value", "42"}},
		{slog.LevelWarn, "warning", nil, []string{"WARN:", "warning"}},
		{slog.LevelError, "broken", nil, []string{"ERROR:", "broken"}},
	}

	for _, tc := range cases {
		buf := bytes.Buffer{}
		h := NewPretty(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&buf))

		record := slog.NewRecord(time.Now(), tc.level, tc.message, 0)
		record.Add(tc.attrs...)

		require.NoError(t, h.Handle(context.Background(), record))

		out := buf.String()
		for _, want := range tc.expect {
			assert.Contains(t, out, want)
		}

		assert.True(t, strings.HasSuffix(out, "\n"))
	}
}

func TestPrettySharesStateAcrossDerivedHandlers(t *testing.T) {
	h := NewPretty(nil)

	withAttrs, ok := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*Pretty)
	require.True(t, ok)
	assert.Same(t, h.buf, withAttrs.buf)
	assert.Same(t, h.mu, withAttrs.mu)

	withGroup, ok := h.WithGroup("g").(*Pretty)
	require.True(t, ok)
	assert.Same(t, h.buf, withGroup.buf)
	assert.Same(t, h.mu, withGroup.mu)
}

func TestPrettyWriteError(t *testing.T) {
	h := NewPretty(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&failingWriter{}))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "doomed", 0)
	err := h.Handle(context.Background(), record)

	require.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyInnerHandlerFailure(t *testing.T) {
	h := &Pretty{
		inner: &failingHandler{},
		buf:   &bytes.Buffer{},
		mu:    &sync.Mutex{},
	}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "doomed", 0)
	_, err := h.computeAttrs(context.Background(), record)
	require.Error(t, err)
}

func TestSuppressDefaults(t *testing.T) {
	for _, key := range []string{slog.TimeKey, slog.LevelKey, slog.MessageKey} {
		got := suppressDefaults(nil, slog.String(key, "x"))
		assert.True(t, got.Equal(slog.Attr{}), "key %q must be suppressed", key)
	}

	custom := slog.String("custom", "value")
	assert.True(t, suppressDefaults(nil, custom).Equal(custom))
}

type failingHandler struct{}

func (h *failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h *failingHandler) Handle(context.Context, slog.Record) error { return errors.New("boom") }
func (h *failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h *failingHandler) WithGroup(string) slog.Handler             { return h }

type failingWriter struct{}

func (w *failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}
