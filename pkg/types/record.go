// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ConversionStatus is the outcome of converting one source file.
type ConversionStatus string

const (
	ConversionNone    ConversionStatus = "none"
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// ConversionKind distinguishes the two pipelines recorded in the catalog.
type ConversionKind string

const (
	KindOutline  ConversionKind = "outline"
	KindDocument ConversionKind = "document"
)

// ConversionRecord is one successful conversion as stored in the catalog.
type ConversionRecord struct {
	// Kind is the pipeline that produced the output.
	Kind ConversionKind `json:"kind" yaml:"kind"`

	// Source is the input path as given on the command line.
	Source string `json:"source" yaml:"source"`

	// SourceHash is the hex sha256 of the input bytes.
	SourceHash string `json:"source_hash" yaml:"source_hash"`

	// Output is the written archive or markdown path.
	Output string `json:"output" yaml:"output"`

	// OutputHash is the hex sha256 of the output bytes.
	OutputHash string `json:"output_hash" yaml:"output_hash"`

	// Settings fingerprints the output-affecting options of the run.
	Settings string `json:"settings" yaml:"settings"`

	// Items counts topics for outlines and extracted images for documents.
	Items int `json:"items" yaml:"items"`

	// ConvertedAt is when the record was written.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}

// BatchResult counts the outcomes of a batch run.
type BatchResult struct {
	Converted int `json:"converted" yaml:"converted"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Add counts one file's status.
func (r *BatchResult) Add(status ConversionStatus) {
	switch status {
	case ConversionDone:
		r.Converted++
	case ConversionSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// String is the summary line printed after a batch.
func (r BatchResult) String() string {
	return fmt.Sprintf("Batch summary: %d converted, %d skipped, %d failed (total: %d)",
		r.Converted, r.Skipped, r.Failed, r.Total())
}
