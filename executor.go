// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/spf13/afero"
)

const maxCaptureSize = 8 * 1024 * 1024 // 8MB

// ErrBufferOverflow is returned when captured output exceeds the max size.
var ErrBufferOverflow = fmt.Errorf("captured output exceeds max size of %d bytes", maxCaptureSize)

// ErrNotStarted is recorded for a leaf that was never spawned because an
// earlier leaf in the same pipeline failed to spawn.
var ErrNotStarted = errors.New("process was not started")

// Start begins executing the expression and returns a Future for the
// outcome.
//
// All executables are resolved before anything is spawned, so a
// *CommandNotFoundError aborts the invocation with no side effects. File
// targets are opened next (*RedirectionError on failure, with every
// already-opened handle released), then one OS pipe is allocated per pipe
// edge and per executor-serviced target, and only then are the processes
// spawned. Descriptors handed to a child are closed in the parent
// immediately after the spawn phase so readers see EOF when the last writer
// exits.
//
// If a spawn fails partway, the remaining leaves are not started and the
// children already running are left to run to completion; they are awaited,
// not killed. Only cancellation or a configured timeout terminates running
// children.
func (e Expr) Start(ctx context.Context, opts ...RunOption) (*Future, error) {
	cfg := newRunConfig(opts)

	p, err := flatten(e.n)
	if err != nil {
		return nil, err
	}

	x := newExecution(cfg, p)

	if err := x.resolve(); err != nil {
		return nil, err
	}

	if err := x.wireUp(); err != nil {
		x.closeParentFiles()
		x.closeChildFiles()

		return nil, err
	}

	x.spawn(ctx)
	x.closeChildFiles()
	x.startServices()
	x.startWatchdog(ctx)

	f := &Future{x: x, done: make(chan struct{})}

	go func() {
		f.res, f.err = x.wait()
		close(f.done)
	}()

	return f, nil
}

// execution is the mutable state of one invocation of an expression.
type execution struct {
	cfg  *runConfig
	plan *plan

	paths []string // resolved executable paths, parallel to plan.leaves

	childFiles  [][3]*os.File // files handed to each child; nil means inherit
	childClose  []*os.File    // closed in the parent after the spawn phase
	parentClose []*os.File    // parent-side ends, closed by their service goroutines
	svcClose    []io.Closer   // targets owned by pending services; closed here only if wiring fails
	services    []func() error

	outCaps []*Capture // stdout capture per leaf, when in-memory routed
	errCaps []*Capture // stderr capture per leaf, when in-memory routed

	procs    []process
	spawnErr []error

	svcWg   sync.WaitGroup
	svcMu   sync.Mutex
	svcErrs []error

	killMu  sync.Mutex
	killErr error

	reaped chan struct{} // closed once every child has been awaited
}

func newExecution(cfg *runConfig, p *plan) *execution {
	n := len(p.leaves)

	return &execution{
		cfg:        cfg,
		plan:       p,
		paths:      make([]string, n),
		childFiles: make([][3]*os.File, n),
		outCaps:    make([]*Capture, n),
		errCaps:    make([]*Capture, n),
		procs:      make([]process, n),
		spawnErr:   make([]error, n),
		reaped:     make(chan struct{}),
	}
}

// resolve looks up every leaf's executable before anything else happens.
// A lookup failure therefore aborts the run with no process spawned.
func (x *execution) resolve() error {
	for i, cmd := range x.plan.leaves {
		path, err := x.cfg.sp.LookPath(cmd.prog)
		if err != nil {
			return err
		}

		x.paths[i] = path
	}

	return nil
}

// wireUp opens redirection targets and allocates every pipe the plan needs,
// all before any process is spawned.
func (x *execution) wireUp() error {
	// One OS pipe per pipe edge. The read end goes to the consumer's
	// stdin, the write end to the producer's stdout.
	for _, edge := range x.plan.edges {
		r, w, err := os.Pipe()
		if err != nil {
			return errors.Join(ErrFailedToCreatePipe, err)
		}

		x.childFiles[edge.to][Stdin] = r
		x.childFiles[edge.from][Stdout] = w
		x.childClose = append(x.childClose, r, w)
	}

	for i := range x.plan.leaves {
		for _, slot := range []StreamSlot{Stdin, Stdout, Stderr} {
			w := x.plan.wiring[i][slot]

			switch w.kind {
			case wirePipe:
				// already wired above
			case wireTarget:
				if err := x.wireTarget(i, slot, w); err != nil {
					return err
				}
			case wireMerge:
				x.wireMergeStdout(i)
			case wireDefault:
				if err := x.wireDefault(i, slot); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// wireMergeStdout hands a leaf's stderr the same descriptor as its stdout.
// Slots are wired in stream order, so the stdout file is already in place,
// be it a pipe edge, a target or a capture pipe. In foreground mode the
// stdout slot is inherited and the merge resolves to the parent's stdout.
func (x *execution) wireMergeStdout(leaf int) {
	if f := x.childFiles[leaf][Stdout]; f != nil {
		x.childFiles[leaf][Stderr] = f
		return
	}

	if x.cfg.foreground {
		x.childFiles[leaf][Stderr] = os.Stdout
	}
}

// wireTarget connects one explicit redirection target to a leaf's slot.
func (x *execution) wireTarget(leaf int, slot StreamSlot, w wire) error {
	switch t := w.target.(type) {
	case *fileTarget:
		return x.wireFile(leaf, slot, t, w.appendMode)

	case *readerTarget:
		if slot != Stdin {
			return &RedirectionError{Target: t.targetLabel(), Err: fmt.Errorf("reader target bound to %s", slot)}
		}

		return x.serviceStdin(leaf, func(pw *os.File) error {
			_, err := io.Copy(pw, t.r)
			return err //nolint:wrapcheck
		})

	case *stringTarget:
		if slot != Stdin {
			return &RedirectionError{Target: t.targetLabel(), Err: fmt.Errorf("string data bound to %s", slot)}
		}

		return x.serviceStdin(leaf, func(pw *os.File) error {
			_, err := io.WriteString(pw, t.data)
			return err //nolint:wrapcheck
		})

	case *writerTarget:
		if slot == Stdin {
			return &RedirectionError{Target: t.targetLabel(), Err: errors.New("writer target bound to stdin")}
		}

		// The caller owns the stream; the capture cap does not apply.
		return x.serviceOutputFunc(leaf, slot, func(pr *os.File) error {
			_, err := io.Copy(t.w, pr)
			return err //nolint:wrapcheck
		})

	case *Capture:
		if slot == Stdin {
			return &RedirectionError{Target: t.targetLabel(), Err: errors.New("capture target bound to stdin")}
		}

		t.Reset()
		x.recordCapture(leaf, slot, t)

		return x.serviceOutput(leaf, slot, t)
	}

	return &RedirectionError{Target: w.target.targetLabel(), Err: errors.New("unknown target type")}
}

// wireFile opens a file target. Files that expose an OS descriptor are
// handed to the child directly; anything else is serviced through a pipe.
func (x *execution) wireFile(leaf int, slot StreamSlot, t *fileTarget, appendMode bool) error {
	var (
		f   afero.File
		err error
	)

	if slot == Stdin {
		f, err = t.fs.Open(t.path)
	} else {
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if appendMode {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}

		f, err = t.fs.OpenFile(t.path, flag, 0o644)
	}

	if err != nil {
		return &RedirectionError{Target: t.path, Err: err}
	}

	if osf, ok := f.(*os.File); ok {
		x.childFiles[leaf][slot] = osf
		x.childClose = append(x.childClose, osf)

		return nil
	}

	// Not backed by an OS descriptor: shuttle bytes through a pipe. The
	// service closure closes the file; until the services start, the
	// wire-up error path owns it.
	x.svcClose = append(x.svcClose, f)

	if slot == Stdin {
		return x.serviceStdin(leaf, func(pw *os.File) error {
			defer f.Close() //nolint:errcheck
			_, err := io.Copy(pw, f)

			return err //nolint:wrapcheck
		})
	}

	return x.serviceOutputFunc(leaf, slot, func(pr *os.File) error {
		defer f.Close() //nolint:errcheck
		_, err := io.Copy(f, pr)

		return err //nolint:wrapcheck
	})
}

// wireDefault resolves an unbound slot: inherit in foreground mode,
// otherwise EOF for stdin and in-memory capture for output slots.
func (x *execution) wireDefault(leaf int, slot StreamSlot) error {
	if x.cfg.foreground {
		return nil // nil file means inherit from the parent
	}

	if slot == Stdin {
		// Only the first leaf can have an unbound stdin; it reads EOF.
		devnull, err := os.Open(os.DevNull)
		if err != nil {
			return errors.Join(ErrFailedToCreatePipe, err)
		}

		x.childFiles[leaf][Stdin] = devnull
		x.childClose = append(x.childClose, devnull)

		return nil
	}

	if slot == Stdout && !x.isLastLeaf(leaf) {
		// Interior leaves always have their stdout piped; this slot can
		// only be unbound for the final leaf.
		return nil
	}

	c := NewCapture()
	x.recordCapture(leaf, slot, c)

	return x.serviceOutput(leaf, slot, c)
}

func (x *execution) isLastLeaf(leaf int) bool {
	return leaf == len(x.plan.leaves)-1
}

func (x *execution) recordCapture(leaf int, slot StreamSlot, c *Capture) {
	if slot == Stdout {
		x.outCaps[leaf] = c
		return
	}

	x.errCaps[leaf] = c
}

// serviceStdin gives the child the read end of a fresh pipe and registers a
// task that feeds the write end and closes it.
func (x *execution) serviceStdin(leaf int, feed func(pw *os.File) error) error {
	pr, pw, err := os.Pipe()
	if err != nil {
		return errors.Join(ErrFailedToCreatePipe, err)
	}

	x.childFiles[leaf][Stdin] = pr
	x.childClose = append(x.childClose, pr)
	x.parentClose = append(x.parentClose, pw)

	x.services = append(x.services, func() error {
		defer pw.Close() //nolint:errcheck

		err := feed(pw)
		if isBrokenPipe(err) {
			// The child exited without draining its stdin. Not an
			// error, same as the shell.
			return nil
		}

		return err
	})

	return nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

// serviceOutput drains an output slot into w, bounded by maxCaptureSize for
// in-memory buffers.
func (x *execution) serviceOutput(leaf int, slot StreamSlot, w io.Writer) error {
	return x.serviceOutputFunc(leaf, slot, func(pr *os.File) error {
		return drainCapped(w, pr)
	})
}

// serviceOutputFunc gives the child the write end of a fresh pipe and
// registers a task that drains the read end.
func (x *execution) serviceOutputFunc(leaf int, slot StreamSlot, drain func(pr *os.File) error) error {
	pr, pw, err := os.Pipe()
	if err != nil {
		return errors.Join(ErrFailedToCreatePipe, err)
	}

	x.childFiles[leaf][slot] = pw
	x.childClose = append(x.childClose, pw)
	x.parentClose = append(x.parentClose, pr)

	x.services = append(x.services, func() error {
		defer pr.Close() //nolint:errcheck
		return drain(pr)
	})

	return nil
}

// drainCapped copies r into w up to maxCaptureSize, then keeps draining so
// the writer is never blocked, and reports the overflow.
func drainCapped(w io.Writer, r io.Reader) error {
	n, err := io.CopyN(w, r, maxCaptureSize)
	if err == io.EOF {
		return nil
	}

	if err != nil {
		return err //nolint:wrapcheck
	}

	if n == maxCaptureSize {
		d, err := io.Copy(io.Discard, r)
		if err != nil {
			return errors.Join(ErrBufferOverflow, err)
		}

		if d > 0 {
			return ErrBufferOverflow
		}
	}

	return nil
}

// spawn starts every leaf in flatten order. On a spawn failure the
// remaining leaves are not attempted; children already running are left
// alone and will be awaited normally.
func (x *execution) spawn(ctx context.Context) {
	for i, cmd := range x.plan.leaves {
		env := mergeEnviron(os.Environ(), cmd.env)
		argv := append([]string{filepath.Base(x.paths[i])}, cmd.args...)

		proc, err := x.cfg.sp.Start(ctx, &spawnSpec{
			Path:   x.paths[i],
			Argv:   argv,
			Env:    env,
			Dir:    cmd.dir,
			Stdin:  x.childFiles[i][Stdin],
			Stdout: x.childFiles[i][Stdout],
			Stderr: x.childFiles[i][Stderr],
		})
		if err != nil {
			ctxlog.Warn(ctx, "spawn failed", "program", cmd.prog, "error", err)

			x.spawnErr[i] = err

			for j := i + 1; j < len(x.plan.leaves); j++ {
				x.spawnErr[j] = ErrNotStarted
			}

			return
		}

		x.procs[i] = proc
	}
}

// mergeEnviron overlays the overrides on the parent environment, dropping
// the parent's entry for an overridden key so a child never sees both
// values.
func mergeEnviron(parent []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return parent
	}

	env := make([]string, 0, len(parent)+len(overrides))

	for _, kv := range parent {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[k]; ok {
			continue
		}

		env = append(env, kv)
	}

	for k, v := range overrides {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// closeChildFiles releases the parent's copies of every descriptor handed
// to a child. Holding these open past spawn time is the classic way to
// stop a reader from ever seeing EOF.
func (x *execution) closeChildFiles() {
	for _, f := range x.childClose {
		_ = f.Close()
	}

	x.childClose = nil
}

// closeParentFiles releases the parent-side pipe ends and the target files
// held by pending services on the wire-up error path, where no service
// tasks will run.
func (x *execution) closeParentFiles() {
	for _, f := range x.parentClose {
		_ = f.Close()
	}

	for _, c := range x.svcClose {
		_ = c.Close()
	}

	x.parentClose = nil
	x.svcClose = nil
	x.services = nil
}

func (x *execution) startServices() {
	for _, svc := range x.services {
		x.svcWg.Add(1)

		go func(svc func() error) {
			defer x.svcWg.Done()

			if err := svc(); err != nil {
				x.svcMu.Lock()
				x.svcErrs = append(x.svcErrs, err)
				x.svcMu.Unlock()
			}
		}(svc)
	}
}

// startWatchdog kills the children on cancellation or timeout, and forwards
// any signals the caller asked to be notified about.
func (x *execution) startWatchdog(ctx context.Context) {
	var timer <-chan time.Time

	var stop func() bool

	if x.cfg.timeout > 0 {
		t := time.NewTimer(x.cfg.timeout)
		timer = t.C
		stop = t.Stop
	}

	go func() {
		if stop != nil {
			defer stop()
		}

		for {
			select {
			case <-x.reaped:
				return

			case <-timer:
				ctxlog.Debug(ctx, "timeout exceeded, killing processes")
				x.kill(ErrTimeoutExceeded)

				return

			case <-ctx.Done():
				err := ctx.Err()
				if errors.Is(err, context.DeadlineExceeded) {
					err = errors.Join(ErrTimeoutExceeded, err)
				}

				ctxlog.Debug(ctx, "context done, killing processes")
				x.kill(err)

				return

			case s := <-x.cfg.sigCh:
				ctxlog.Debug(ctx, "forwarding signal", "signal", s.String())

				for _, p := range x.procs {
					if p == nil {
						continue
					}

					_ = p.Signal(s)
				}
			}
		}
	}()
}

func (x *execution) kill(reason error) {
	x.killMu.Lock()
	x.killErr = reason
	x.killMu.Unlock()

	for _, p := range x.procs {
		if p == nil {
			continue
		}

		_ = p.Kill()
	}
}

func (x *execution) killReason() error {
	x.killMu.Lock()
	defer x.killMu.Unlock()

	return x.killErr
}

// wait reaps every child, joins the service tasks and classifies the
// outcome.
func (x *execution) wait() (*Result, error) {
	n := len(x.plan.leaves)
	res := &Result{Leaves: make([]LeafResult, n)}

	for i := range x.plan.leaves {
		lr := &res.Leaves[i]
		lr.Argv = append([]string{x.plan.leaves[i].prog}, x.plan.leaves[i].args...)
		lr.ExitCode = -1

		if x.procs[i] == nil {
			lr.Err = x.spawnErr[i]
			continue
		}

		code, err := x.procs[i].Wait()
		lr.ExitCode = code
		lr.Err = err
	}

	// All children reaped: stop the watchdog, then join the buffer
	// services, which see EOF as the last write ends close.
	close(x.reaped)
	x.svcWg.Wait()

	killErr := x.killReason()

	for i := range res.Leaves {
		lr := &res.Leaves[i]

		if c := x.outCaps[i]; c != nil {
			lr.Stdout = c.Bytes()
		}

		if c := x.errCaps[i]; c != nil {
			lr.Stderr = c.Bytes()
		}

		lr.acceptable = lr.Err == nil && x.plan.leaves[i].acceptable(lr.ExitCode)

		res.stderr = append(res.stderr, lr.Stderr...)
	}

	last := res.Leaves[n-1]
	res.ExitCode = last.ExitCode
	res.stdout = last.Stdout

	res.Ok = last.acceptable
	if x.cfg.pipefail {
		for _, lr := range res.Leaves {
			res.Ok = res.Ok && lr.acceptable
		}
	}

	if killErr != nil {
		res.Ok = false
	}

	return res, x.classify(res, killErr)
}

// classify assembles the invocation error per the strictness policy.
func (x *execution) classify(res *Result, killErr error) error {
	var merr *multierror.Error

	if killErr != nil {
		merr = multierror.Append(merr, killErr)
	}

	x.svcMu.Lock()
	merr = multierror.Append(merr, x.svcErrs...)
	x.svcMu.Unlock()

	for i, lr := range res.Leaves {
		if lr.Err != nil {
			merr = multierror.Append(merr, lr.Err)
			continue
		}

		if x.cfg.lenient || killErr != nil {
			continue
		}

		if !x.plan.leaves[i].acceptable(lr.ExitCode) {
			merr = multierror.Append(merr, &ProcessExecutionError{
				Argv:     lr.Argv,
				ExitCode: lr.ExitCode,
				Stderr:   lr.Stderr,
			})
		}
	}

	return merr.ErrorOrNil()
}
