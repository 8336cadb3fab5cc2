// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdsignal shares the signal-forwarding channel between the CLI
// entry point and the commands, via the context.
package cmdsignal

import (
	"context"
	"os"
)

type forwardKey struct{}

// WithForward returns a context carrying the channel on which signals are
// forwarded to pipeline children.
func WithForward(ctx context.Context, ch chan os.Signal) context.Context {
	return context.WithValue(ctx, forwardKey{}, ch)
}

// Forward returns the forwarding channel carried by the context, or nil.
func Forward(ctx context.Context) chan os.Signal {
	ch, _ := ctx.Value(forwardKey{}).(chan os.Signal)
	return ch
}
