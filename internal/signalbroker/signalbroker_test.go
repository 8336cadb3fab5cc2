// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFirstSignalForwardsWithoutCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	fwd := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, fwd, cancel)
	}()

	sigCh <- os.Interrupt

	select {
	case sig := <-fwd:
		assert.Equal(t, os.Interrupt, sig)
	case <-time.After(time.Second):
		t.Fatal("first signal was not forwarded")
	}

	select {
	case <-ctx.Done():
		t.Fatal("context must not be cancelled after the first signal")
	default:
	}

	close(sigCh)
	wg.Wait()
}

func TestWatchSecondSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	fwd := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, fwd, cancel)
	}()

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt
	wg.Wait()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context must be cancelled after a repeated signal")
	}
}

func TestWatchDifferentSignalsDoNotCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	fwd := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, fwd, cancel)
	}()

	sigCh <- os.Interrupt
	sigCh <- os.Kill

	require.Eventually(t, func() bool {
		return len(fwd) == 2
	}, time.Second, 10*time.Millisecond, "both distinct signals forwarded")

	select {
	case <-ctx.Done():
		t.Fatal("context must not be cancelled for distinct signal types")
	default:
	}

	close(sigCh)
	wg.Wait()
}

func TestWatchNilForwardChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, nil, cancel)
	}()

	sigCh <- os.Interrupt
	close(sigCh)
	wg.Wait()
}
