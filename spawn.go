// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
)

// spawnSpec is the fully resolved description of one child process: the
// executable path, argv, environment, working directory and one OS-level
// file per stream slot. A nil file means the slot is inherited from the
// parent process.
type spawnSpec struct {
	Path string
	Argv []string
	Env  []string
	Dir  string

	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// process is a started child. os.Process satisfies it in production; tests
// substitute recorded fakes.
type process interface {
	Pid() int
	Signal(sig os.Signal) error
	Kill() error
	Wait() (int, error)
}

// spawner resolves program names and creates child processes. The executor
// only talks to this interface, so wiring can be tested without touching
// the operating system.
type spawner interface {
	LookPath(prog string) (string, error)
	Start(ctx context.Context, spec *spawnSpec) (process, error)
}

type osSpawner struct{}

func (osSpawner) LookPath(prog string) (string, error) {
	path, err := exec.LookPath(prog)
	if err != nil {
		return "", &CommandNotFoundError{
			Program: prog,
			Path:    filepath.SplitList(os.Getenv("PATH")),
		}
	}

	return path, nil
}

func (osSpawner) Start(ctx context.Context, spec *spawnSpec) (process, error) {
	files := []*os.File{spec.Stdin, spec.Stdout, spec.Stderr}
	for i, f := range files {
		if f == nil {
			files[i] = []*os.File{os.Stdin, os.Stdout, os.Stderr}[i]
		}
	}

	ctxlog.Debug(ctx, "starting process", "path", spec.Path, "args", spec.Argv[1:], "dir", spec.Dir)

	ps, err := os.StartProcess(spec.Path, spec.Argv, &os.ProcAttr{
		Dir:   spec.Dir,
		Env:   spec.Env,
		Files: files,
	})
	if err != nil {
		return nil, &SpawnError{Argv: spec.Argv, Err: err}
	}

	ctxlog.Debug(ctx, "process started", "pid", ps.Pid)

	return &osProcess{ps: ps}, nil
}

type osProcess struct {
	ps *os.Process
}

func (p *osProcess) Pid() int {
	return p.ps.Pid
}

func (p *osProcess) Signal(sig os.Signal) error {
	return p.ps.Signal(sig) //nolint:wrapcheck
}

func (p *osProcess) Kill() error {
	err := p.ps.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Join(ErrCouldNotKillProcess, err)
	}

	return nil
}

func (p *osProcess) Wait() (int, error) {
	state, err := p.ps.Wait()
	if err != nil {
		return -1, err //nolint:wrapcheck
	}

	return state.ExitCode(), nil
}
