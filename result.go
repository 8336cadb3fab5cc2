// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

// LeafResult is the outcome of a single process within a pipeline.
type LeafResult struct {
	Argv     []string // resolved argument vector, program first
	ExitCode int
	Err      error  // resolution, spawn or termination error, if any
	Stdout   []byte // captured stdout, when routed to an in-memory buffer
	Stderr   []byte // captured stderr, when routed to an in-memory buffer

	acceptable bool
}

// Ok reports whether the process completed with an acceptable exit code and
// no error.
func (lr LeafResult) Ok() bool {
	return lr.acceptable
}

// Result is the outcome of one invocation of a pipeline expression. It is
// immutable once returned; each invocation produces a fresh Result.
type Result struct {
	// Leaves holds one entry per process in pipe order.
	Leaves []LeafResult
	// ExitCode is the exit code of the final leaf.
	ExitCode int
	// Ok is the overall verdict: the final leaf's exit code is acceptable,
	// or every leaf's when pipefail is enabled.
	Ok bool

	stdout []byte
	stderr []byte
}

// Stdout returns the raw captured bytes of the pipeline's standard output
// (the final leaf's, when it was routed to an in-memory buffer).
func (r *Result) Stdout() []byte {
	return r.stdout
}

// Stderr returns the raw captured standard error of every leaf, in pipe
// order.
func (r *Result) Stderr() []byte {
	return r.stderr
}

// StdoutString returns the captured standard output decoded as UTF-8.
func (r *Result) StdoutString() string {
	return string(r.stdout)
}

// StderrString returns the captured standard error decoded as UTF-8.
func (r *Result) StderrString() string {
	return string(r.stderr)
}
