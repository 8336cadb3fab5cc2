// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals. The first signal
// of a given type is forwarded to pipeline children; a repeated signal
// cancels the whole run.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel notified of signals that should terminate the
// process. With no arguments it subscribes to the default termination set.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker subscribing", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Watch forwards each first-seen signal type to fwd and cancels the context
// on the second signal of any type. It returns when sigCh closes or the
// context is cancelled.
func Watch(ctx context.Context, sigCh, fwd chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "second signal received, cancelling run", "signal", sig.String())
				cancel()

				return
			}

			seen[sig] = struct{}{}

			ctxlog.Info(ctx, "signal received, forwarding to children", "signal", sig.String())

			if fwd != nil {
				select {
				case fwd <- sig:
				default:
				}
			}
		}
	}
}
