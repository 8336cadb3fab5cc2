// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureConcurrentWrites(t *testing.T) {
	c := NewCapture()

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				_, err := c.Write([]byte("x"))
				assert.NoError(t, err)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 800, c.Len())
	assert.Equal(t, strings.Repeat("x", 800), c.String())
}

func TestCaptureReset(t *testing.T) {
	c := NewCapture()

	_, err := c.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, c.Len())

	c.Reset()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.String())
	assert.Empty(t, c.Bytes())
}

func TestCaptureBytesIsACopy(t *testing.T) {
	c := NewCapture()

	_, err := c.Write([]byte("abc"))
	require.NoError(t, err)

	b := c.Bytes()
	b[0] = 'z'
	assert.Equal(t, "abc", c.String(), "mutating the returned slice must not affect the buffer")
}

func TestTargetLabels(t *testing.T) {
	assert.Equal(t, "/tmp/out.txt", File("/tmp/out.txt").targetLabel())
	assert.Equal(t, "<writer>", Writer(&strings.Builder{}).targetLabel())
	assert.Equal(t, "<reader>", Reader(strings.NewReader("")).targetLabel())
	assert.Equal(t, "<capture>", NewCapture().targetLabel())
}
