// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"os"
	"time"
)

// runConfig collects the per-invocation execution settings.
type runConfig struct {
	pipefail   bool
	lenient    bool
	foreground bool
	timeout    time.Duration
	sigCh      chan os.Signal
	sp         spawner
}

func newRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{
		sp: osSpawner{},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// RunOption configures a single invocation of an expression.
type RunOption func(*runConfig)

// WithTimeout terminates every still-running process once the pipeline has
// been running for d. The returned error wraps ErrTimeoutExceeded and any
// output already captured is preserved in the Result.
func WithTimeout(d time.Duration) RunOption {
	return func(cfg *runConfig) {
		cfg.timeout = d
	}
}

// WithPipefail makes overall success require every leaf's exit code to be
// acceptable, not just the final leaf's, mirroring the shell's pipefail.
func WithPipefail() RunOption {
	return func(cfg *runConfig) {
		cfg.pipefail = true
	}
}

// Lenient disables strict mode: Run returns the Result with Ok reporting
// the outcome instead of returning a *ProcessExecutionError for
// unacceptable exit codes. Resolution, redirection and spawn failures are
// still returned as errors.
func Lenient() RunOption {
	return func(cfg *runConfig) {
		cfg.lenient = true
	}
}

// Foreground inherits the parent's standard streams for every slot that is
// not piped or redirected, instead of capturing. Useful for interactive
// programs.
func Foreground() RunOption {
	return func(cfg *runConfig) {
		cfg.foreground = true
	}
}

// WithSignalNotify forwards signals received on ch to every running child
// process.
func WithSignalNotify(ch chan os.Signal) RunOption {
	return func(cfg *runConfig) {
		cfg.sigCh = ch
	}
}

// withSpawner substitutes the process-creation collaborator. Used by tests
// to record resolved wiring without spawning real processes.
func withSpawner(sp spawner) RunOption {
	return func(cfg *runConfig) {
		cfg.sp = sp
	}
}
