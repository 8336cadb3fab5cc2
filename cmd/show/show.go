// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the command that renders a previously saved
// result.
package show

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/plumb"
	"github.com/urfave/cli/v3"
)

const fileArg = "file"

var (
	// ErrReadFile is returned when the result file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrWriteResult is returned when the result cannot be written to stdout.
	ErrWriteResult = errors.New("failed to write result to stdout")
)

// ShowCmd renders a result previously saved with "run --out".
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Show a previously saved result.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		f, err := os.Open(cmd.StringArg(fileArg))
		if err != nil {
			return errors.Join(ErrReadFile, err)
		}

		defer f.Close() //nolint:errcheck

		res, err := plumb.ReadGob(f)
		if err != nil {
			return err //nolint:wrapcheck
		}

		opts := plumb.DefaultOutputOptions()
		opts.IncludeStdOut = true
		opts.ShowSuccessDetails = true

		if err := res.WriteText(os.Stdout, opts); err != nil {
			return errors.Join(ErrWriteResult, err)
		}

		return nil
	},
}
