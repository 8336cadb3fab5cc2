// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the plumb command-line application.
package main

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/plumb/cmd"
	"github.com/matt-FFFFFF/plumb/cmd/cmdsignal"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)
	fwd := make(chan os.Signal, 1)
	ctx = cmdsignal.WithForward(ctx, fwd)

	go signalbroker.Watch(ctx, sigCh, fwd, cancel)

	if err := cmd.RootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}
