// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the command that executes a pipefile.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/plumb"
	"github.com/matt-FFFFFF/plumb/cmd/cmdsignal"
	"github.com/matt-FFFFFF/plumb/internal/ctxlog"
	"github.com/matt-FFFFFF/plumb/internal/pipefile"
	"github.com/urfave/cli/v3"
)

const (
	fileFlag           = "file"
	outFlag            = "out"
	outputStdOutFlag   = "output-stdout"
	noOutputStdErrFlag = "no-output-stderr"
	successDetailsFlag = "output-success-details"
)

// ErrGetPipefile is returned when the pipefile cannot be fetched.
var ErrGetPipefile = errors.New("failed to get pipefile")

// RunCmd executes a pipeline defined in a YAML pipefile.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run the pipeline defined in a YAML pipefile.

Pipefile URLs use Hashicorp's go-getter syntax, which allows fetching from
local paths, git repositories, HTTP and more.
See https://github.com/hashicorp/go-getter.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     fileFlag,
			Aliases:  []string{"f"},
			Usage:    "URL of the YAML pipefile to run.",
			OnlyOnce: true,
			Required: true,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Write the result in binary form to the given file.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:     outputStdOutFlag,
			Aliases:  []string{"stdout"},
			Usage:    "Include captured stdout in the displayed results.",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     noOutputStdErrFlag,
			Aliases:  []string{"no-stderr"},
			Usage:    "Exclude captured stderr from the displayed results.",
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     successDetailsFlag,
			Aliases:  []string{"success"},
			Usage:    "Show output details for successful commands too.",
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	data, err := getURL(ctx, cmd.String(fileFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	def, err := pipefile.Parse(data)
	if err != nil {
		logger.Error("failed to parse pipefile", "error", err)
		return cli.Exit("", 1)
	}

	expr, opts, err := def.Build()
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return cli.Exit("", 1)
	}

	logger.Debug("running pipeline", "expr", expr.String())

	opts = append(opts, plumb.WithSignalNotify(cmdsignal.Forward(ctx)))

	res, runErr := expr.Run(ctx, opts...)
	if res == nil {
		logger.Error("pipeline did not run", "error", runErr)
		return cli.Exit("", 1)
	}

	if out := cmd.String(outFlag); out != "" {
		if err := writeBinary(res, out); err != nil {
			logger.Error("failed to write result", "file", out, "error", err)
			return cli.Exit("", 1)
		}

		logger.Info("result written", "file", out)
	}

	wopts := plumb.DefaultOutputOptions()
	wopts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	wopts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	wopts.ShowSuccessDetails = cmd.Bool(successDetailsFlag)

	if err := res.WriteText(cmd.Writer, wopts); err != nil {
		logger.Error("failed to write results", "error", err)
		return cli.Exit("", 1)
	}

	if runErr != nil {
		return cli.Exit("", res.ExitCode)
	}

	return nil
}

func writeBinary(res *plumb.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	defer f.Close() //nolint:errcheck

	return res.WriteGob(f)
}

// getURL retrieves a pipefile using Hashicorp's go-getter, so pipefiles can
// live in git repositories or behind HTTP as well as on disk.
func getURL(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "plumb-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetPipefile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetPipefile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	dst := filepath.Join(tmpDir, "pipefile")

	if _, err := client.Get(ctx, &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGetPipefile, url, err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return nil, errors.Join(ErrGetPipefile, err)
	}

	return data, nil
}
