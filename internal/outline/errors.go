// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedOutline matches every MalformedOutlineError.
	ErrMalformedOutline = errors.New("malformed outline")

	// ErrEmptyOutline is returned when the input holds no non-blank line.
	ErrEmptyOutline = errors.New("outline has no items")
)

// MalformedOutlineError reports a line that cannot become a node.
type MalformedOutlineError struct {
	// Line is the 1-based line number in the input.
	Line int

	// Text is the offending line without its line terminator.
	Text string

	// Reason describes what is wrong with the line.
	Reason string

	// Path lists the labels of the open ancestors when the line was read.
	Path []string

	// Err is the underlying tree-building error, if any.
	Err error
}

func (e *MalformedOutlineError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed outline at line %d: %s", e.Line, e.Reason)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (under %s)", strings.Join(e.Path, " > "))
	}
	if e.Text != "" {
		fmt.Fprintf(&b, ": %q", e.Text)
	}
	return b.String()
}

// Is lets errors.Is match the sentinel.
func (e *MalformedOutlineError) Is(target error) bool {
	return target == ErrMalformedOutline
}

func (e *MalformedOutlineError) Unwrap() error {
	return e.Err
}
