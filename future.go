// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

// Future is the handle for an expression started with Expr.Start: the
// processes are running and the outcome has not necessarily been
// determined yet.
type Future struct {
	x    *execution
	done chan struct{}

	res *Result
	err error
}

// Ready reports whether the pipeline has finished, without blocking.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until every process has exited and returns the Result,
// applying the same outcome classification as Expr.Run. It may be called
// multiple times; subsequent calls return the same values.
func (f *Future) Wait() (*Result, error) {
	<-f.done
	return f.res, f.err
}
