// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package plumb composes and executes external commands the way a shell
// does, with pipes, redirections and exit-code policies, built as ordinary
// Go values. Commands and expressions are immutable: they can be partially
// applied, inspected and reused before anything runs.
//
//	wc := plumb.New("wc").MustBind("-c")
//	out := plumb.NewCapture()
//
//	expr := plumb.New("echo").MustBind("hello").Pipe(wc).RedirectStdout(out)
//	if _, err := expr.Run(ctx); err != nil {
//		// err carries the failing leaf's argv, exit code and stderr
//	}
//	fmt.Print(out.String())
//
// Execution spawns one OS process per command, all concurrent, with pipes
// allocated and redirection targets opened before the first spawn.
package plumb

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
