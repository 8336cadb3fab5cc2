// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/plumb/cmd/run"
	"github.com/matt-FFFFFF/plumb/cmd/show"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "plumb",
	Description: `Plumb runs shell-style command pipelines defined in YAML pipefiles:
commands joined by pipes, with file and in-memory redirections, per-command
exit code policies, pipefail semantics and timeouts. Pipelines are composed
as values and executed as concurrent child processes.`,
	Usage:     "plumb run -f mypipeline.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
