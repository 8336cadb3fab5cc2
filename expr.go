// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

import (
	"context"
	"strings"
)

// StreamSlot identifies one of a process' standard streams.
type StreamSlot int

// The three stream slots of a process.
const (
	Stdin StreamSlot = iota
	Stdout
	Stderr
)

// String implements fmt.Stringer.
func (s StreamSlot) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}

	return "unknown"
}

// node is a vertex in a pipeline expression tree.
type node interface {
	render(sb *strings.Builder)
}

type leafNode struct {
	cmd Command
}

func (n leafNode) render(sb *strings.Builder) {
	sb.WriteString(n.cmd.String())
}

type pipeNode struct {
	left, right node
}

func (n pipeNode) render(sb *strings.Builder) {
	n.left.render(sb)
	sb.WriteString(" | ")
	n.right.render(sb)
}

type redirectNode struct {
	child      node
	slot       StreamSlot
	target     Target
	appendMode bool
}

func (n redirectNode) render(sb *strings.Builder) {
	n.child.render(sb)
	sb.WriteString(" ")

	switch {
	case n.slot == Stdin:
		if _, ok := n.target.(*stringTarget); ok {
			sb.WriteString("<<")
		} else {
			sb.WriteString("<")
		}
	case n.slot == Stdout && n.appendMode:
		sb.WriteString(">>")
	case n.slot == Stdout:
		sb.WriteString(">")
	case n.appendMode:
		sb.WriteString("2>>")
	default:
		sb.WriteString("2>")
	}

	sb.WriteString(" ")
	sb.WriteString(shQuote(n.target.targetLabel()))
}

type mergeNode struct {
	child node
}

func (n mergeNode) render(sb *strings.Builder) {
	n.child.render(sb)
	sb.WriteString(" 2>&1")
}

// Composable is anything that can take part in a pipeline expression: a
// Command or an Expr built from one.
type Composable interface {
	toNode() node
}

func (c Command) toNode() node {
	return leafNode{cmd: c}
}

// Expr is a pipeline expression: a tree of commands combined with pipe and
// redirection operators. An Expr is a pure value describing a plan; nothing
// is executed until Run or Start is called, and the same Expr may be run
// any number of times, each invocation independent.
type Expr struct {
	n node
}

func (e Expr) toNode() node {
	return e.n
}

// ExprOf returns the expression for a single Command.
func ExprOf(c Composable) Expr {
	return Expr{n: c.toNode()}
}

// Pipe connects the standard output of e to the standard input of next,
// like the shell's "|". Any earlier binding of those two slots is replaced.
func (e Expr) Pipe(next Composable) Expr {
	return Expr{n: pipeNode{left: e.n, right: next.toNode()}}
}

// RedirectStdout binds the expression's standard output to the target,
// truncating file targets, like the shell's ">".
func (e Expr) RedirectStdout(t Target) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stdout, target: t}}
}

// AppendStdout is RedirectStdout in append mode, like the shell's ">>".
func (e Expr) AppendStdout(t Target) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stdout, target: t, appendMode: true}}
}

// RedirectStderr binds the expression's standard error to the target,
// truncating file targets.
func (e Expr) RedirectStderr(t Target) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stderr, target: t}}
}

// AppendStderr is RedirectStderr in append mode.
func (e Expr) AppendStderr(t Target) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stderr, target: t, appendMode: true}}
}

// RedirectStdin feeds the expression's standard input from the target, like
// the shell's "<".
func (e Expr) RedirectStdin(t Target) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stdin, target: t}}
}

// InputString feeds the given string to the expression's standard input,
// like a shell heredoc.
func (e Expr) InputString(data string) Expr {
	return Expr{n: redirectNode{child: e.n, slot: Stdin, target: &stringTarget{data: data}}}
}

// MergeStderr routes the expression's standard error to the same
// destination as its standard output, like the shell's "2>&1". The two
// streams share one descriptor, so their interleaving is the child's own.
func (e Expr) MergeStderr() Expr {
	return Expr{n: mergeNode{child: e.n}}
}

// String renders the expression in shell-like form.
func (e Expr) String() string {
	if e.n == nil {
		return ""
	}

	sb := strings.Builder{}
	e.n.render(&sb)

	return sb.String()
}

// Run executes the expression and waits for completion. See Expr.Start for
// the execution model; Run is Start followed by Future.Wait.
func (e Expr) Run(ctx context.Context, opts ...RunOption) (*Result, error) {
	f, err := e.Start(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return f.Wait()
}

// Pipe composes the command with next, like the shell's "|".
func (c Command) Pipe(next Composable) Expr {
	return ExprOf(c).Pipe(next)
}

// RedirectStdout binds the command's standard output to the target in
// truncate mode.
func (c Command) RedirectStdout(t Target) Expr {
	return ExprOf(c).RedirectStdout(t)
}

// AppendStdout binds the command's standard output to the target in append
// mode.
func (c Command) AppendStdout(t Target) Expr {
	return ExprOf(c).AppendStdout(t)
}

// RedirectStderr binds the command's standard error to the target.
func (c Command) RedirectStderr(t Target) Expr {
	return ExprOf(c).RedirectStderr(t)
}

// RedirectStdin feeds the command's standard input from the target.
func (c Command) RedirectStdin(t Target) Expr {
	return ExprOf(c).RedirectStdin(t)
}

// InputString feeds the given string to the command's standard input.
func (c Command) InputString(data string) Expr {
	return ExprOf(c).InputString(data)
}

// MergeStderr routes the command's standard error to the same destination
// as its standard output, like the shell's "2>&1".
func (c Command) MergeStderr() Expr {
	return ExprOf(c).MergeStderr()
}

// Run executes the command as a one-leaf pipeline.
func (c Command) Run(ctx context.Context, opts ...RunOption) (*Result, error) {
	return ExprOf(c).Run(ctx, opts...)
}

// Start begins executing the command as a one-leaf pipeline.
func (c Command) Start(ctx context.Context, opts ...RunOption) (*Future, error) {
	return ExprOf(c).Start(ctx, opts...)
}
