// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package casetree

import (
	"fmt"
	"strings"
)

// stackEntry is one open ancestor.
type stackEntry struct {
	node  *Node
	depth int
}

// Builder assembles a Tree from (depth, label) entries fed in document
// order. It keeps the chain of open ancestors on a stack, so each Add is
// amortised O(1) and the whole build is a single pass.
type Builder struct {
	roots []*Node
	stack []stackEntry
	nodes []*Node
	prev  int // depth of the last added node, -1 before the first
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: []*Node{nil},
		prev:  -1,
	}
}

// Add creates a node at depth with the given label. Ids are handed out from
// a counter starting at 1, which is the pre-order numbering because nodes
// arrive in document order.
func (b *Builder) Add(depth int, label string, line int) (*Node, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyLabel
	}
	if depth < 0 {
		return nil, fmt.Errorf("negative depth %d", depth)
	}
	if depth > b.prev+1 {
		if b.prev < 0 || len(b.stack) == 0 {
			return nil, ErrOrphan
		}
		return nil, fmt.Errorf("%w: depth %d after depth %d", ErrDepthJump, depth, b.prev)
	}

	for len(b.stack) > 0 && b.stack[len(b.stack)-1].depth >= depth {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 && depth > 0 {
		return nil, ErrOrphan
	}

	n := &Node{
		ID:    len(b.nodes),
		Label: label,
		Depth: depth,
		Line:  line,
	}
	if len(b.stack) == 0 {
		b.roots = append(b.roots, n)
	} else {
		parent := b.stack[len(b.stack)-1].node
		parent.Children = append(parent.Children, n)
	}

	b.nodes = append(b.nodes, n)
	b.stack = append(b.stack, stackEntry{node: n, depth: depth})
	b.prev = depth
	return n, nil
}

// OpenPath returns the labels of the currently open ancestor chain. Callers
// use it to give errors a location inside the tree.
func (b *Builder) OpenPath() []string {
	path := make([]string, len(b.stack))
	for i, e := range b.stack {
		path[i] = e.node.Label
	}
	return path
}

// Finish validates the accumulated nodes and returns the tree. expected is
// the number of entries the caller fed in; a mismatch with the nodes
// reachable from the roots is fatal.
func (b *Builder) Finish(expected int) (*Tree, error) {
	if len(b.roots) == 0 {
		return nil, ErrEmpty
	}

	t := &Tree{
		roots:   b.roots,
		byID:    b.nodes,
		parents: make([]int, len(b.nodes)),
	}

	reached := 0
	var index func(parent *Node, nodes []*Node) error
	index = func(parent *Node, nodes []*Node) error {
		for _, n := range nodes {
			reached++
			want := 0
			if parent != nil {
				t.parents[n.ID] = parent.ID
				want = parent.Depth + 1
			}
			if n.Depth != want {
				return fmt.Errorf("node %d (line %d) has depth %d, want %d", n.ID, n.Line, n.Depth, want)
			}
			if err := index(n, n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := index(nil, t.roots); err != nil {
		return nil, err
	}

	if reached != expected || reached != len(b.nodes)-1 {
		return nil, fmt.Errorf("%w: %d nodes from %d entries", ErrConservation, reached, expected)
	}
	return t, nil
}
