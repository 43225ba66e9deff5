// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package casetree holds the in-memory test-case tree built from an outline.
// Nodes are created once, in document order, and never change afterwards.
// The tree owns its nodes top-down; parent lookups go through an index
// built when the builder finishes.
package casetree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned by Finish when no node was added.
	ErrEmpty = errors.New("tree has no nodes")

	// ErrDepthJump is returned by Add when a depth skips one or more levels.
	ErrDepthJump = errors.New("depth increases by more than one level")

	// ErrOrphan is returned by Add when an indented node has no open parent.
	ErrOrphan = errors.New("indented node has no parent")

	// ErrEmptyLabel is returned by Add for a blank label.
	ErrEmptyLabel = errors.New("node label is empty")

	// ErrConservation is returned by Finish when the node count differs
	// from the number of entries the caller fed in.
	ErrConservation = errors.New("node count does not match input")
)

// Node is one test-case item. Depth is the indentation level it was created
// at; roots have depth 0.
type Node struct {
	ID       int
	Label    string
	Depth    int
	Line     int
	Children []*Node
}

// Tree is a finished, validated forest of nodes.
type Tree struct {
	roots   []*Node
	byID    []*Node // index 0 unused; ids start at 1
	parents []int   // parents[id] == 0 for roots
}

// Roots returns the top-level nodes in document order.
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil || len(t.byID) == 0 {
		return 0
	}
	return len(t.byID) - 1
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id int) *Node {
	if id <= 0 || id >= len(t.byID) {
		return nil
	}
	return t.byID[id]
}

// Parent returns the parent of n, or nil for a root.
func (t *Tree) Parent(n *Node) *Node {
	if n == nil || n.ID <= 0 || n.ID >= len(t.parents) {
		return nil
	}
	return t.Node(t.parents[n.ID])
}

// Path returns the labels from the root down to n inclusive.
func (t *Tree) Path(n *Node) []string {
	var path []string
	for cur := n; cur != nil; cur = t.Parent(cur) {
		path = append(path, cur.Label)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits every node in pre-order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(nodes []*Node) bool
	visit = func(nodes []*Node) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !visit(n.Children) {
				return false
			}
		}
		return true
	}
	visit(t.roots)
}

// MaxDepth returns the deepest node depth (0 for a flat list of roots).
func (t *Tree) MaxDepth() int {
	deepest := 0
	for _, n := range t.byID[1:] {
		if n.Depth > deepest {
			deepest = n.Depth
		}
	}
	return deepest
}

// Leaves counts nodes without children.
func (t *Tree) Leaves() int {
	count := 0
	for _, n := range t.byID[1:] {
		if len(n.Children) == 0 {
			count++
		}
	}
	return count
}

// String renders the tree as an indented listing, one node per line.
func (t *Tree) String() string {
	var b strings.Builder
	t.Walk(func(n *Node) bool {
		b.WriteString(strings.Repeat("  ", n.Depth))
		fmt.Fprintf(&b, "%d %s\n", n.ID, n.Label)
		return true
	})
	return b.String()
}
