// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package plumb

// wireKind is the resolved wiring of one stream slot of one leaf. Modelling
// the default explicitly keeps the flattening deterministic and testable
// without spawning processes.
type wireKind int

const (
	// wireDefault leaves the slot to the executor's defaults: EOF for the
	// first leaf's stdin, capture for the last leaf's stdout and every
	// leaf's stderr (or parent inheritance in foreground mode).
	wireDefault wireKind = iota
	// wirePipe connects the slot to an internal pipe edge.
	wirePipe
	// wireTarget connects the slot to an explicit redirection target.
	wireTarget
	// wireMerge points the slot at the same destination as the leaf's
	// stdout, like the shell's "2>&1". Only ever set on the stderr slot.
	wireMerge
)

type wire struct {
	kind       wireKind
	edge       int // index into plan.edges, valid when kind == wirePipe
	target     Target
	appendMode bool
}

// pipeEdge routes the stdout of leaf "from" into the stdin of leaf "to".
type pipeEdge struct {
	from, to int
}

// plan is the flattened form of an expression tree: the leaves in pipe
// order, the pipe edges between them, and the resolved wiring of every
// stream slot of every leaf.
type plan struct {
	leaves []Command
	edges  []pipeEdge
	wiring [][3]wire
}

// flatten reduces an expression tree to a plan. Bindings are applied
// child-first, so a binding closer to the root replaces an earlier one for
// the same (leaf, slot) pair: last-wins, as in the shell.
func flatten(root node) (*plan, error) {
	if root == nil {
		return nil, ErrEmptyExpression
	}

	p := &plan{}
	if _, _, err := p.walk(root); err != nil {
		return nil, err
	}

	return p, nil
}

// walk returns the indices of the first and last leaf of the subtree.
func (p *plan) walk(n node) (first, last int, err error) {
	switch t := n.(type) {
	case leafNode:
		idx := len(p.leaves)
		p.leaves = append(p.leaves, t.cmd)
		p.wiring = append(p.wiring, [3]wire{})

		return idx, idx, nil

	case pipeNode:
		lFirst, lLast, err := p.walk(t.left)
		if err != nil {
			return 0, 0, err
		}

		rFirst, rLast, err := p.walk(t.right)
		if err != nil {
			return 0, 0, err
		}

		edge := len(p.edges)
		p.edges = append(p.edges, pipeEdge{from: lLast, to: rFirst})

		// A pipe silently rebinds the producer's stdout and the
		// consumer's stdin, replacing any earlier redirect.
		p.wiring[lLast][Stdout] = wire{kind: wirePipe, edge: edge}
		p.wiring[rFirst][Stdin] = wire{kind: wirePipe, edge: edge}

		return lFirst, rLast, nil

	case redirectNode:
		first, last, err := p.walk(t.child)
		if err != nil {
			return 0, 0, err
		}

		// Redirects on a composite bind the boundary leaf: stdin of the
		// first leaf, stdout/stderr of the last.
		leaf := last
		if t.slot == Stdin {
			leaf = first
		}

		p.wiring[leaf][t.slot] = wire{
			kind:       wireTarget,
			target:     t.target,
			appendMode: t.appendMode,
		}

		return first, last, nil

	case mergeNode:
		first, last, err := p.walk(t.child)
		if err != nil {
			return 0, 0, err
		}

		p.wiring[last][Stderr] = wire{kind: wireMerge}

		return first, last, nil
	}

	return 0, 0, ErrEmptyExpression
}
