// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/plumb/internal/color"
)

// ErrWriteGob is returned when writing a result to its binary format fails.
var ErrWriteGob = errors.New("failed to write binary result")

// OutputOptions controls what WriteText includes.
type OutputOptions struct {
	IncludeStdOut      bool // include captured stdout for shown leaves
	IncludeStdErr      bool // include captured stderr for shown leaves
	ShowSuccessDetails bool // show output for successful leaves too
}

// DefaultOutputOptions returns the default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdOut:      false,
		IncludeStdErr:      true,
		ShowSuccessDetails: false,
	}
}

// WriteText writes a human-readable summary of the result, one line per
// leaf with status and exit code, with output details per the options.
func (r *Result) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	for _, lr := range r.Leaves {
		if err := writeLeaf(w, lr, options); err != nil {
			return err
		}
	}

	verdict := color.Colorize("✓ pipeline succeeded", color.FgGreen)
	if !r.Ok {
		verdict = color.Colorize(fmt.Sprintf("✗ pipeline failed (exit code: %d)", r.ExitCode), color.FgRed)
	}

	_, err := fmt.Fprintln(w, verdict)

	return err //nolint:wrapcheck
}

func writeLeaf(w io.Writer, lr LeafResult, options *OutputOptions) error {
	statusStr := color.Colorize("✓", color.FgGreen)
	labelPrefix := color.ControlString(color.Bold, color.FgGreen)

	if !lr.Ok() {
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	}

	if _, err := fmt.Fprintf(w, "%s %s%s%s (exit code: %d)\n",
		statusStr, labelPrefix, strings.Join(lr.Argv, " "), color.ControlString(color.Reset), lr.ExitCode); err != nil {
		return err //nolint:wrapcheck
	}

	if lr.Err != nil {
		fmt.Fprintf(w, "  %s %v%s\n", //nolint:errcheck
			color.ColorizeNoReset("➜ error:", color.FgRed), lr.Err, color.ControlString(color.Reset))
	}

	showDetails := !lr.Ok() || options.ShowSuccessDetails

	if showDetails && options.IncludeStdOut && len(lr.Stdout) > 0 {
		fmt.Fprint(w, "  ➜ output:\n", formatOutput(lr.Stdout, "     ")) //nolint:errcheck
	}

	if showDetails && options.IncludeStdErr && len(lr.Stderr) > 0 {
		fmt.Fprintf(w, "  %s\n", color.Colorize("➜ error output:", color.FgHiRed)) //nolint:errcheck
		fmt.Fprint(w, formatOutput(lr.Stderr, "     "))                            //nolint:errcheck
	}

	return nil
}

// formatOutput indents each line of output.
func formatOutput(output []byte, indent string) string {
	sb := strings.Builder{}
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	sb.Grow(len(output) + len(lines)*len(indent))

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// gob mirror types: LeafResult.Err is flattened to a string.
type leafResultGob struct {
	Argv       []string
	ExitCode   int
	Err        string
	Stdout     []byte
	Stderr     []byte
	Acceptable bool
}

type resultGob struct {
	Leaves   []leafResultGob
	ExitCode int
	Ok       bool
	Stdout   []byte
	Stderr   []byte
}

// WriteGob writes the result in a binary format that ReadGob can restore,
// so a run's outcome can be stored and rendered later.
func (r *Result) WriteGob(w io.Writer) error {
	g := resultGob{
		ExitCode: r.ExitCode,
		Ok:       r.Ok,
		Stdout:   r.stdout,
		Stderr:   r.stderr,
	}

	for _, lr := range r.Leaves {
		errStr := ""
		if lr.Err != nil {
			errStr = lr.Err.Error()
		}

		g.Leaves = append(g.Leaves, leafResultGob{
			Argv:       lr.Argv,
			ExitCode:   lr.ExitCode,
			Err:        errStr,
			Stdout:     lr.Stdout,
			Stderr:     lr.Stderr,
			Acceptable: lr.acceptable,
		})
	}

	if err := gob.NewEncoder(w).Encode(g); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadGob restores a result previously written with WriteGob.
func ReadGob(rd io.Reader) (*Result, error) {
	var g resultGob

	if err := gob.NewDecoder(rd).Decode(&g); err != nil {
		return nil, errors.Join(ErrWriteGob, err)
	}

	res := &Result{
		ExitCode: g.ExitCode,
		Ok:       g.Ok,
		stdout:   bytes.Clone(g.Stdout),
		stderr:   bytes.Clone(g.Stderr),
	}

	for _, lg := range g.Leaves {
		lr := LeafResult{
			Argv:       lg.Argv,
			ExitCode:   lg.ExitCode,
			Stdout:     lg.Stdout,
			Stderr:     lg.Stderr,
			acceptable: lg.Acceptable,
		}
		if lg.Err != "" {
			lr.Err = errors.New(lg.Err)
		}

		res.Leaves = append(res.Leaves, lr)
	}

	return res, nil
}
