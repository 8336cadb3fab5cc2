// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCouldNotStartProcess is returned when a child process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCouldNotKillProcess is returned when a child process could not be killed.
	ErrCouldNotKillProcess = errors.New("could not kill process after timeout")
	// ErrTimeoutExceeded is returned when the pipeline exceeds its deadline and
	// the still-running children have been terminated.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCommandNotFound is returned when an executable cannot be resolved on the search path.
	ErrCommandNotFound = errors.New("command not found")
	// ErrRedirection is returned when a redirection target cannot be opened.
	ErrRedirection = errors.New("failed to open redirection target")
	// ErrEmptyExpression is returned when an expression without a command is run.
	ErrEmptyExpression = errors.New("expression contains no command")
)

// ArgumentError is returned by Command.Bind when an argument cannot be
// converted to a string.
type ArgumentError struct {
	Index int // position of the offending argument within the Bind call
	Value any
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %d is not stringifiable: %T(%v)", e.Index, e.Value, e.Value)
}

// CommandNotFoundError is returned when a program cannot be resolved against
// the executable search path. It carries the program name and the path that
// was searched.
type CommandNotFoundError struct {
	Program string
	Path    []string
}

func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("command not found: %q (searched %s)", e.Program, strings.Join(e.Path, ":"))
}

// Unwrap allows errors.Is(err, ErrCommandNotFound).
func (e *CommandNotFoundError) Unwrap() error {
	return ErrCommandNotFound
}

// SpawnError is returned when the operating system fails to create a child
// process after its executable was resolved.
type SpawnError struct {
	Argv []string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrCouldNotStartProcess, strings.Join(e.Argv, " "), e.Err)
}

func (e *SpawnError) Unwrap() []error {
	return []error{ErrCouldNotStartProcess, e.Err}
}

// RedirectionError is returned when a file redirection target cannot be
// opened. It surfaces before any process is spawned.
type RedirectionError struct {
	Target string
	Err    error
}

func (e *RedirectionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrRedirection, e.Target, e.Err)
}

func (e *RedirectionError) Unwrap() []error {
	return []error{ErrRedirection, e.Err}
}

// ProcessExecutionError is returned in strict mode when a process exits with
// an unacceptable exit code. It carries the argv, the exit code and any
// captured stderr of the offending process.
type ProcessExecutionError struct {
	Argv     []string
	ExitCode int
	Stderr   []byte
}

func (e *ProcessExecutionError) Error() string {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "command line: %s\n", strings.Join(e.Argv, " "))
	fmt.Fprintf(&sb, "exit code: %d", e.ExitCode)

	if len(e.Stderr) > 0 {
		sb.WriteString("\nstderr:\n")
		sb.WriteString(strings.TrimRight(string(e.Stderr), "\n"))
	}

	return sb.String()
}
