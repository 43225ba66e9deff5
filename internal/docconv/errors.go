// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"errors"
	"fmt"
)

var (
	// ErrExtraction matches every ExtractionError.
	ErrExtraction = errors.New("document extraction failed")

	// ErrUnsupported is returned by ForFile for unknown extensions.
	ErrUnsupported = errors.New("unsupported document type")
)

// ExtractionError reports a document that could not be turned into markdown.
type ExtractionError struct {
	Source string
	Op     string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %s: %v", e.Source, e.Op, e.Err)
}

// Is lets errors.Is match the sentinel.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
