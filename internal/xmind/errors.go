// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmind

import (
	"errors"
	"fmt"
)

// ErrPackaging matches every PackagingError.
var ErrPackaging = errors.New("packaging mind map")

// PackagingError reports a failure to assemble, write, or read back an
// archive. A failed write never leaves a file under Path.
type PackagingError struct {
	Path string
	Op   string
	Err  error
}

func (e *PackagingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("packaging mind map: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("packaging mind map %s: %s: %v", e.Path, e.Op, e.Err)
}

// Is lets errors.Is match the sentinel.
func (e *PackagingError) Is(target error) bool {
	return target == ErrPackaging
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}
