// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/casemap/internal/catalog"
	"github.com/pdiddy/casemap/internal/fsutil"
	"github.com/pdiddy/casemap/internal/logging"
	"github.com/pdiddy/casemap/pkg/types"
)

const filePerms = 0o644

// Ledger is the part of the catalog extraction needs. A nil Ledger
// disables skip detection and recording.
type Ledger interface {
	Unchanged(ctx context.Context, want types.ConversionRecord) (bool, error)
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// Frontmatter is the YAML block at the top of every markdown file.
type Frontmatter struct {
	Source   string   `yaml:"source"`
	Title    string   `yaml:"title"`
	ImageDir string   `yaml:"image_dir,omitempty"`
	Images   []string `yaml:"images,omitempty"`
}

// Extractor writes markdown for source documents.
type Extractor struct {
	Config types.ExtractConfig
	Ledger Ledger
	Log    *logging.Logger
}

// MarkdownPath returns <MarkdownDir>/<stem>.md for src. With an empty
// MarkdownDir the file lands next to the document.
func (e *Extractor) MarkdownPath(src string) string {
	dir := e.Config.MarkdownDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, Stem(src)+".md")
}

// ConvertDocument extracts src into markdown, prints one status line to w,
// and returns the status. The error is non-nil exactly when the status is
// ConversionFailed.
func (e *Extractor) ConvertDocument(ctx context.Context, src string, w io.Writer) (types.ConversionStatus, error) {
	out := e.MarkdownPath(src)
	name := filepath.Base(src)

	status, images, err := e.extract(ctx, src, out)
	switch status {
	case types.ConversionSkipped:
		fmt.Fprintf(w, "skipped: %s (unchanged)\n", name)
	case types.ConversionDone:
		fmt.Fprintf(w, "converted: %s -> %s (%d images)\n", name, out, images)
	default:
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		e.Log.Warn("document extraction failed", "source", src, "error", err)
	}
	return status, err
}

func (e *Extractor) extract(ctx context.Context, src, out string) (types.ConversionStatus, int, error) {
	srcHash, err := catalog.HashFile(src)
	if err != nil {
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "read", Err: err}
	}

	rec := types.ConversionRecord{
		Kind:       types.KindDocument,
		Source:     src,
		SourceHash: srcHash,
		Output:     out,
		Settings:   e.Config.Settings(),
	}

	if e.Ledger != nil && !e.Config.Force {
		same, err := e.Ledger.Unchanged(ctx, rec)
		if err != nil {
			return types.ConversionFailed, 0, fmt.Errorf("checking catalog: %w", err)
		}
		if same {
			e.Log.Debug("document unchanged", "source", src)
			return types.ConversionSkipped, 0, nil
		}
	}

	conv, err := ForFile(src, e.Config.PreserveFormatting)
	if err != nil {
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "select converter", Err: err}
	}

	start := time.Now()
	doc, err := conv.Convert(src)
	if err != nil {
		return types.ConversionFailed, 0, err
	}
	for _, warning := range doc.Warnings {
		e.Log.Warn("document content dropped", "source", src, "detail", warning)
	}

	// Links are checked against the extracted images before anything is
	// written, so a bad extraction leaves the previous output untouched.
	stem := Stem(src)
	if missing := unresolvedImages(doc, stem); len(missing) > 0 {
		return types.ConversionFailed, 0, &ExtractionError{
			Source: src,
			Op:     "verify image links",
			Err:    fmt.Errorf("unresolved: %s", strings.Join(missing, ", ")),
		}
	}

	body, err := withFrontmatter(src, doc)
	if err != nil {
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "frontmatter", Err: err}
	}

	mdDir := filepath.Dir(out)
	staged, err := stageImages(mdDir, stem, doc.Images)
	if err != nil {
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "write images", Err: err}
	}
	if err := writeFile(out, body); err != nil {
		_ = os.RemoveAll(staged)
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "write markdown", Err: err}
	}
	if err := swapImages(mdDir, stem, staged); err != nil {
		return types.ConversionFailed, 0, &ExtractionError{Source: src, Op: "write images", Err: err}
	}
	if missing := MissingImages(body, mdDir); len(missing) > 0 {
		_ = os.Remove(out)
		_ = os.RemoveAll(filepath.Join(mdDir, filepath.FromSlash(ImageDir(stem))))
		return types.ConversionFailed, 0, &ExtractionError{
			Source: src,
			Op:     "verify image links",
			Err:    fmt.Errorf("unresolved on disk: %s", strings.Join(missing, ", ")),
		}
	}

	e.Log.Debug("document extracted",
		"source", src,
		"output", out,
		"images", len(doc.Images),
		"elapsed", time.Since(start),
	)

	if e.Ledger != nil {
		rec.OutputHash = catalog.HashBytes(body)
		rec.Items = len(doc.Images)
		if err := e.Ledger.Record(ctx, rec); err != nil {
			return types.ConversionFailed, 0, fmt.Errorf("recording conversion: %w", err)
		}
	}
	return types.ConversionDone, len(doc.Images), nil
}

// ConvertBatch extracts each source in order, printing per-file status to
// w and a summary line at the end. A cancelled context stops the batch
// between files.
func (e *Extractor) ConvertBatch(ctx context.Context, srcs []string, w io.Writer) types.BatchResult {
	var result types.BatchResult
	for _, src := range srcs {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "stopped: %v\n", ctx.Err())
			break
		}
		status, _ := e.ConvertDocument(ctx, src, w)
		result.Add(status)
	}
	fmt.Fprintf(w, "\n%s\n", result)
	return result
}

// unresolvedImages returns the local image links in doc.Markdown that do
// not name one of doc.Images.
func unresolvedImages(doc *Document, stem string) []string {
	have := make(map[string]bool, len(doc.Images))
	for _, img := range doc.Images {
		have[ImageRef(stem, img.Name)] = true
	}
	var missing []string
	for _, dest := range ImageLinks([]byte(doc.Markdown)) {
		if isRemote(dest) || have[path.Clean(dest)] {
			continue
		}
		missing = append(missing, dest)
	}
	return missing
}

// stageImages writes images into a hidden directory beside the final
// image directory and returns its path, or "" when there are no images.
func stageImages(mdDir, stem string, images []Image) (string, error) {
	if len(images) == 0 {
		return "", nil
	}
	final := filepath.Join(mdDir, filepath.FromSlash(ImageDir(stem)))
	dir := filepath.Join(filepath.Dir(final), "."+stem+".staging")
	if err := os.RemoveAll(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	for _, img := range images {
		if err := writeFile(filepath.Join(dir, img.Name), img.Data); err != nil {
			_ = os.RemoveAll(dir)
			return "", err
		}
	}
	return dir, nil
}

// swapImages replaces the image directory for stem with staged. The old
// directory is removed first so a re-run never leaves orphans behind.
func swapImages(mdDir, stem, staged string) error {
	final := filepath.Join(mdDir, filepath.FromSlash(ImageDir(stem)))
	if err := os.RemoveAll(final); err != nil {
		return err
	}
	if staged == "" {
		return nil
	}
	return os.Rename(staged, final)
}

func withFrontmatter(src string, doc *Document) ([]byte, error) {
	fm := Frontmatter{
		Source: filepath.Base(src),
		Title:  Stem(src),
	}
	if len(doc.Images) > 0 {
		fm.ImageDir = ImageDir(Stem(src))
		for _, img := range doc.Images {
			fm.Images = append(fm.Images, img.Name)
		}
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(doc.Markdown)
	return buf.Bytes(), nil
}

// ReadFrontmatter splits a markdown file written by the extractor into its
// frontmatter and body.
func ReadFrontmatter(data []byte) (*Frontmatter, []byte, error) {
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return nil, data, fmt.Errorf("no frontmatter")
	}
	head, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return nil, data, fmt.Errorf("unterminated frontmatter")
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return nil, data, fmt.Errorf("parsing frontmatter: %w", err)
	}
	return &fm, bytes.TrimPrefix(body, []byte("\n")), nil
}

func writeFile(path string, data []byte) error {
	return fsutil.WriteFile(path, data, filePerms)
}
