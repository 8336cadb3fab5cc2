// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResult() *Result {
	return &Result{
		Leaves: []LeafResult{
			{
				Argv:       []string{"echo", "hello"},
				ExitCode:   0,
				Stdout:     []byte("hello\n"),
				acceptable: true,
			},
			{
				Argv:     []string{"grep", "nope"},
				ExitCode: 2,
				Stderr:   []byte("grep: bad pattern\n"),
			},
		},
		ExitCode: 2,
		Ok:       false,
		stdout:   []byte(""),
		stderr:   []byte("grep: bad pattern\n"),
	}
}

func TestWriteText(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, testResult().WriteText(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "✓ echo hello (exit code: 0)")
	assert.Contains(t, out, "✗ grep nope (exit code: 2)")
	assert.Contains(t, out, "grep: bad pattern")
	assert.Contains(t, out, "✗ pipeline failed (exit code: 2)")
}

func TestWriteTextSuccessVerdict(t *testing.T) {
	res := &Result{
		Leaves: []LeafResult{
			{Argv: []string{"true"}, ExitCode: 0, acceptable: true},
		},
		ExitCode: 0,
		Ok:       true,
	}

	buf := bytes.Buffer{}
	require.NoError(t, res.WriteText(&buf, nil))
	assert.Contains(t, buf.String(), "✓ pipeline succeeded")
}

func TestWriteTextHidesSuccessDetailsByDefault(t *testing.T) {
	res := &Result{
		Leaves: []LeafResult{
			{Argv: []string{"echo", "hi"}, Stdout: []byte("hi\n"), acceptable: true},
		},
		Ok: true,
	}

	buf := bytes.Buffer{}
	require.NoError(t, res.WriteText(&buf, &OutputOptions{IncludeStdOut: true}))
	assert.NotContains(t, buf.String(), "➜ output:")

	buf.Reset()
	require.NoError(t, res.WriteText(&buf, &OutputOptions{IncludeStdOut: true, ShowSuccessDetails: true}))
	assert.Contains(t, buf.String(), "➜ output:")
	assert.Contains(t, buf.String(), "     hi")
}

func TestGobRoundTrip(t *testing.T) {
	res := testResult()
	res.Leaves[1].Err = errors.New("boom")

	buf := bytes.Buffer{}
	require.NoError(t, res.WriteGob(&buf))

	got, err := ReadGob(&buf)
	require.NoError(t, err)

	assert.Equal(t, res.ExitCode, got.ExitCode)
	assert.Equal(t, res.Ok, got.Ok)
	require.Len(t, got.Leaves, 2)
	assert.Equal(t, res.Leaves[0].Argv, got.Leaves[0].Argv)
	assert.True(t, got.Leaves[0].Ok())
	assert.False(t, got.Leaves[1].Ok())
	assert.EqualError(t, got.Leaves[1].Err, "boom")
	assert.Equal(t, res.Leaves[1].Stderr, got.Leaves[1].Stderr)
	assert.Equal(t, res.StderrString(), got.StderrString())
}

func TestReadGobGarbage(t *testing.T) {
	_, err := ReadGob(bytes.NewReader([]byte("not a gob stream")))
	require.ErrorIs(t, err, ErrWriteGob)
}
