// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipefile builds pipeline expressions from YAML definitions.
//
// A pipefile names the commands of a single pipeline, in pipe order, with
// optional redirections at the boundaries and execution options:
//
//	name: count-errors
//	pipeline:
//	  - program: grep
//	    args: ["-c", "ERROR"]
//	    ok_exit_codes: [0, 1]
//	  - program: wc
//	    args: ["-l"]
//	stdin:
//	  file: app.log
//	stdout:
//	  file: errors.count
//	  append: true
//	pipefail: true
//	timeout: 30s
package pipefile

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/plumb"
)

var (
	// ErrInvalidYaml is returned when the pipefile cannot be parsed.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoCommands is returned when the pipefile defines no commands.
	ErrNoCommands = errors.New("no commands specified")
	// ErrNoProgram is returned when a pipeline entry has no program.
	ErrNoProgram = errors.New("pipeline entry has no program")
	// ErrConflictingStdin is returned when both stdin and input are given.
	ErrConflictingStdin = errors.New("stdin and input are mutually exclusive")
	// ErrInvalidTimeout is returned when the timeout cannot be parsed.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Definition is the root pipefile structure.
type Definition struct {
	Name     string         `yaml:"name"`
	Pipeline []CommandEntry `yaml:"pipeline"`
	Stdin    *FileRedirect  `yaml:"stdin"`
	Stdout   *FileRedirect  `yaml:"stdout"`
	Stderr   *FileRedirect  `yaml:"stderr"`
	Input    string         `yaml:"input"`
	Pipefail bool           `yaml:"pipefail"`
	Lenient  bool           `yaml:"lenient"`
	Timeout  string         `yaml:"timeout"`
}

// CommandEntry is one command within the pipeline, in pipe order.
type CommandEntry struct {
	Program     string            `yaml:"program"`
	Args        []string          `yaml:"args"`
	Env         map[string]string `yaml:"env"`
	Dir         string            `yaml:"dir"`
	OkExitCodes []int             `yaml:"ok_exit_codes"`
}

// FileRedirect binds a boundary stream of the pipeline to a file.
type FileRedirect struct {
	File   string `yaml:"file"`
	Append bool   `yaml:"append"`
}

// Parse unmarshals and validates a pipefile.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if len(def.Pipeline) == 0 {
		return nil, ErrNoCommands
	}

	for _, entry := range def.Pipeline {
		if entry.Program == "" {
			return nil, ErrNoProgram
		}
	}

	if def.Stdin != nil && def.Input != "" {
		return nil, ErrConflictingStdin
	}

	return &def, nil
}

// Build turns a parsed definition into an executable expression and the run
// options it asks for.
func (def *Definition) Build() (plumb.Expr, []plumb.RunOption, error) {
	expr := plumb.ExprOf(buildCommand(def.Pipeline[0]))

	for _, entry := range def.Pipeline[1:] {
		expr = expr.Pipe(buildCommand(entry))
	}

	switch {
	case def.Input != "":
		expr = expr.InputString(def.Input)
	case def.Stdin != nil:
		expr = expr.RedirectStdin(plumb.File(def.Stdin.File))
	}

	if def.Stdout != nil {
		if def.Stdout.Append {
			expr = expr.AppendStdout(plumb.File(def.Stdout.File))
		} else {
			expr = expr.RedirectStdout(plumb.File(def.Stdout.File))
		}
	}

	if def.Stderr != nil {
		if def.Stderr.Append {
			expr = expr.AppendStderr(plumb.File(def.Stderr.File))
		} else {
			expr = expr.RedirectStderr(plumb.File(def.Stderr.File))
		}
	}

	var opts []plumb.RunOption

	if def.Pipefail {
		opts = append(opts, plumb.WithPipefail())
	}

	if def.Lenient {
		opts = append(opts, plumb.Lenient())
	}

	if def.Timeout != "" {
		d, err := time.ParseDuration(def.Timeout)
		if err != nil {
			return plumb.Expr{}, nil, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
		}

		opts = append(opts, plumb.WithTimeout(d))
	}

	return expr, opts, nil
}

func buildCommand(entry CommandEntry) plumb.Command {
	cmd := plumb.New(entry.Program)

	for _, a := range entry.Args {
		cmd = cmd.MustBind(a)
	}

	for k, v := range entry.Env {
		cmd = cmd.WithEnv(k, v)
	}

	if entry.Dir != "" {
		cmd = cmd.WithDir(entry.Dir)
	}

	if len(entry.OkExitCodes) > 0 {
		cmd = cmd.AllowExitCodes(entry.OkExitCodes...)
	}

	return cmd
}
