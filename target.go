// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"bytes"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// Target is a source or sink for one of a process' standard streams. A
// Target is purely descriptive; it is resolved to a live handle only when
// the expression referencing it is run.
//
// Implementations are File, FileOn, Writer, Reader and Capture.
type Target interface {
	targetLabel() string
}

type fileTarget struct {
	fs   afero.Fs
	path string
}

func (t *fileTarget) targetLabel() string { return t.path }

// File returns a Target for the named file on the host filesystem.
// Whether the file is truncated or appended to is decided by the operator
// that binds it (RedirectStdout vs AppendStdout).
func File(path string) Target {
	return &fileTarget{fs: afero.NewOsFs(), path: path}
}

// FileOn is like File but on the given filesystem. Files on filesystems
// that cannot produce an OS-level descriptor are serviced by the executor
// through an intermediate pipe.
func FileOn(fs afero.Fs, path string) Target {
	return &fileTarget{fs: fs, path: path}
}

type writerTarget struct {
	w io.Writer
}

func (t *writerTarget) targetLabel() string { return "<writer>" }

// Writer returns a Target that streams a process' output into w. The
// executor services the copy; w is not written to concurrently.
func Writer(w io.Writer) Target {
	return &writerTarget{w: w}
}

type readerTarget struct {
	r io.Reader
}

func (t *readerTarget) targetLabel() string { return "<reader>" }

// Reader returns a Target that feeds a process' stdin from r. The reader is
// drained by the executor; an expression bound to a Reader is single-use
// unless the reader can be rewound by the caller.
func Reader(r io.Reader) Target {
	return &readerTarget{r: r}
}

type stringTarget struct {
	data string
}

func (t *stringTarget) targetLabel() string { return t.data }

// Capture is an in-memory writable Target. It is safe for concurrent use
// and retains whatever was written before a timeout terminated the
// pipeline, so partial output is still available from the Result.
//
// The buffer is reset at the start of each run of the expression that
// references it, making expressions bound to a Capture reusable.
type Capture struct {
	mu  sync.RWMutex
	buf bytes.Buffer
}

// NewCapture returns an empty Capture.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) targetLabel() string { return "<capture>" }

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.buf.Write(p)
}

// Bytes returns a copy of everything written so far.
func (c *Capture) Bytes() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return bytes.Clone(c.buf.Bytes())
}

// String returns the captured bytes decoded as UTF-8.
func (c *Capture) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.buf.String()
}

// Len returns the number of bytes captured so far.
func (c *Capture) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.buf.Len()
}

// Reset discards the captured bytes.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buf.Reset()
}
