// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandBind_AppendsArguments(t *testing.T) {
	cmd, err := New("grep").Bind("-i", "error")
	require.NoError(t, err)
	assert.Equal(t, []string{"grep", "-i", "error"}, cmd.Argv())
}

func TestCommandBind_PartialApplicationEquivalence(t *testing.T) {
	base := New("tar")

	oneShot, err := base.Bind("-c", "-f")
	require.NoError(t, err)

	first, err := base.Bind("-c")
	require.NoError(t, err)

	chained, err := first.Bind("-f")
	require.NoError(t, err)

	assert.Equal(t, oneShot.Argv(), chained.Argv())

	// the original is untouched by either derivation
	assert.Equal(t, []string{"tar"}, base.Argv())
}

func TestCommandBind_DerivationsDoNotShareBackingArrays(t *testing.T) {
	base := New("ls").MustBind("-l")

	a := base.MustBind("-a")
	h := base.MustBind("-h")

	assert.Equal(t, []string{"ls", "-l", "-a"}, a.Argv())
	assert.Equal(t, []string{"ls", "-l", "-h"}, h.Argv())
	assert.Equal(t, []string{"ls", "-l"}, base.Argv())
}

func TestCommandBind_StringifiableScalars(t *testing.T) {
	cmd, err := New("head").Bind("-n", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"head", "-n", "5"}, cmd.Argv())

	cmd, err = New("x").Bind(true, 1.5, int64(-7), uint8(255))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "true", "1.5", "-7", "255"}, cmd.Argv())
}

func TestCommandBind_NonStringifiable(t *testing.T) {
	_, err := New("x").Bind("ok", struct{ A int }{1})

	var argErr *ArgumentError

	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, 1, argErr.Index)
}

func TestCommandMustBind_Panics(t *testing.T) {
	assert.Panics(t, func() {
		New("x").MustBind(make(chan int))
	})
}

func TestCommandWithEnv_FunctionalUpdate(t *testing.T) {
	base := New("env")
	withFoo := base.WithEnv("FOO", "1")
	withBar := withFoo.WithEnv("BAR", "2")
	replaced := withFoo.WithEnv("FOO", "3")

	assert.Empty(t, base.env)
	assert.Equal(t, map[string]string{"FOO": "1"}, withFoo.env)
	assert.Equal(t, map[string]string{"FOO": "1", "BAR": "2"}, withBar.env)
	assert.Equal(t, map[string]string{"FOO": "3"}, replaced.env)
}

func TestCommandAllowExitCodes(t *testing.T) {
	cmd := New("grep")
	assert.True(t, cmd.acceptable(0))
	assert.False(t, cmd.acceptable(1))

	relaxed := cmd.AllowExitCodes(1)
	assert.True(t, relaxed.acceptable(0))
	assert.True(t, relaxed.acceptable(1))
	assert.False(t, relaxed.acceptable(2))

	// the original policy is unchanged
	assert.False(t, cmd.acceptable(1))
}

func TestCommandString_ShellQuoting(t *testing.T) {
	cmd := New("echo").MustBind("hello world", "plain", "")
	assert.Equal(t, "echo 'hello world' plain ''", cmd.String())
}
