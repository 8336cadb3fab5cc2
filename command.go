// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Command is an immutable description of a program invocation: the program
// name or path, the accumulated argument list, environment overrides and an
// optional working directory.
//
// Every derivation method returns a new Command, so partially applied
// commands are safe to share and reuse:
//
//	grep := plumb.New("grep")
//	grepI, _ := grep.Bind("-i")
//	// grep is still the bare command
//
// A Command is never executed directly; it is the trivial one-leaf pipeline
// expression. See Expr for composition and execution.
type Command struct {
	prog        string
	args        []string
	env         map[string]string
	dir         string
	okExitCodes []int
}

// New returns a Command for the given program. If prog contains a path
// separator it is treated as a path, otherwise it is resolved against the
// executable search path at execution time.
func New(prog string) Command {
	return Command{prog: prog}
}

// Bind returns a new Command with the given arguments appended. Arguments
// must be stringifiable scalars: strings, booleans, integer and float kinds,
// or values implementing fmt.Stringer. Anything else returns an
// *ArgumentError. The receiver is not modified.
func (c Command) Bind(args ...any) (Command, error) {
	if len(args) == 0 {
		return c, nil
	}

	bound := make([]string, 0, len(c.args)+len(args))
	bound = append(bound, c.args...)

	for i, a := range args {
		s, err := argString(a)
		if err != nil {
			return Command{}, &ArgumentError{Index: i, Value: a}
		}

		bound = append(bound, s)
	}

	c.args = bound

	return c, nil
}

// MustBind is like Bind but panics on a non-stringifiable argument. It is
// intended for statically known arguments.
func (c Command) MustBind(args ...any) Command {
	bound, err := c.Bind(args...)
	if err != nil {
		panic(err)
	}

	return bound
}

// WithEnv returns a new Command with the environment override added or
// replaced. Overrides are applied on top of the parent process environment.
func (c Command) WithEnv(key, value string) Command {
	env := maps.Clone(c.env)
	if env == nil {
		env = make(map[string]string, 1)
	}

	env[key] = value
	c.env = env

	return c
}

// WithDir returns a new Command with the working directory overridden.
func (c Command) WithDir(dir string) Command {
	c.dir = dir
	return c
}

// AllowExitCodes returns a new Command that treats the given exit codes as
// acceptable in addition to the default of 0.
func (c Command) AllowExitCodes(codes ...int) Command {
	ok := slices.Clone(c.okExitCodes)
	if ok == nil {
		ok = []int{0}
	}

	for _, code := range codes {
		if !slices.Contains(ok, code) {
			ok = append(ok, code)
		}
	}

	c.okExitCodes = ok

	return c
}

// Program returns the program name or path the Command was created with.
func (c Command) Program() string {
	return c.prog
}

// Args returns a copy of the accumulated argument list.
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

// Argv returns the full argument vector, program first.
func (c Command) Argv() []string {
	return append([]string{c.prog}, c.args...)
}

// String renders the command in shell-quoted form.
func (c Command) String() string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, shQuote(c.prog))

	for _, a := range c.args {
		parts = append(parts, shQuote(a))
	}

	return strings.Join(parts, " ")
}

func (c Command) acceptable(code int) bool {
	if c.okExitCodes == nil {
		return code == 0
	}

	return slices.Contains(c.okExitCodes, code)
}

func argString(a any) (string, error) {
	switch v := a.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}

	return "", fmt.Errorf("non-stringifiable %T", a)
}

const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@%_-+=:,./"

// shQuote quotes text with sh-like escaping, for display purposes only.
func shQuote(text string) string {
	if text == "" {
		return "''"
	}

	safe := true

	for _, r := range text {
		if !strings.ContainsRune(safeChars, r) {
			safe = false
			break
		}
	}

	if safe {
		return text
	}

	if !strings.ContainsRune(text, '\'') {
		return "'" + text + "'"
	}

	return `"` + strings.ReplaceAll(text, `"`, `\"`) + `"`
}
