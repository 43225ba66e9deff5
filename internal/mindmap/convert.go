// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mindmap turns outline files into XMind archives, one file at a
// time or in batches, and reports per-file status lines.
package mindmap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/casemap/internal/catalog"
	"github.com/pdiddy/casemap/internal/logging"
	"github.com/pdiddy/casemap/internal/outline"
	"github.com/pdiddy/casemap/internal/xmind"
	"github.com/pdiddy/casemap/pkg/types"
)

// Ledger is the part of the catalog the pipeline needs. A nil Ledger
// disables skip detection and recording.
type Ledger interface {
	Unchanged(ctx context.Context, want types.ConversionRecord) (bool, error)
	Record(ctx context.Context, rec types.ConversionRecord) error
}

// outlineExts lists the extensions picked up by OutlineFiles.
var outlineExts = map[string]bool{".txt": true, ".outline": true}

// Converter carries what every conversion in a run shares.
type Converter struct {
	Config types.MindMapConfig
	Ledger Ledger
	Log    *logging.Logger
}

// OutputPath returns <OutputDir>/<stem>.xmind for src. With an empty
// OutputDir the archive lands next to the outline.
func (c *Converter) OutputPath(src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dir := c.Config.OutputDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	return filepath.Join(dir, stem+".xmind")
}

// ConvertOutline converts src into an archive at out (OutputPath(src) when
// out is empty), prints one status line to w, and returns the status. The
// error is non-nil exactly when the status is ConversionFailed.
func (c *Converter) ConvertOutline(ctx context.Context, src, out string, w io.Writer) (types.ConversionStatus, error) {
	if out == "" {
		out = c.OutputPath(src)
	}
	name := filepath.Base(src)

	status, err := c.convert(ctx, src, out)
	switch status {
	case types.ConversionSkipped:
		fmt.Fprintf(w, "skipped: %s (unchanged)\n", name)
	case types.ConversionDone:
		fmt.Fprintf(w, "converted: %s -> %s\n", name, out)
	default:
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		c.Log.Warn("outline conversion failed", "source", src, "error", err)
	}
	return status, err
}

func (c *Converter) convert(ctx context.Context, src, out string) (types.ConversionStatus, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return types.ConversionFailed, fmt.Errorf("reading outline: %w", err)
	}
	rec := types.ConversionRecord{
		Kind:       types.KindOutline,
		Source:     src,
		SourceHash: catalog.HashBytes(data),
		Output:     out,
		Settings:   c.Config.Settings(),
	}

	if c.Ledger != nil && !c.Config.Force {
		same, err := c.Ledger.Unchanged(ctx, rec)
		if err != nil {
			return types.ConversionFailed, fmt.Errorf("checking catalog: %w", err)
		}
		if same {
			c.Log.Debug("outline unchanged", "source", src, "output", out)
			return types.ConversionSkipped, nil
		}
	}

	start := time.Now()
	tree, err := outline.Parse(bytes.NewReader(data), c.Config.Outline)
	if err != nil {
		return types.ConversionFailed, err
	}

	opts := xmind.Options{Title: xmind.SanitizeTitle(src), EmitJSON: c.Config.EmitJSON}
	archive, err := xmind.Bytes(tree, opts)
	if err != nil {
		return types.ConversionFailed, err
	}

	// Read the archive back and hold it to the same node count before it
	// is written, so a bad archive never reaches out.
	summary, err := xmind.InspectBytes(archive)
	if err != nil {
		return types.ConversionFailed, err
	}
	if summary.Topics != tree.Len() {
		return types.ConversionFailed, fmt.Errorf("archive for %s holds %d topics, outline has %d items", src, summary.Topics, tree.Len())
	}

	if err := xmind.WriteArchive(out, archive); err != nil {
		return types.ConversionFailed, err
	}

	c.Log.Debug("outline converted",
		"source", src,
		"output", out,
		"topics", summary.Topics,
		"depth", summary.MaxDepth,
		"elapsed", time.Since(start),
	)

	if c.Ledger != nil {
		rec.OutputHash = catalog.HashBytes(archive)
		rec.Items = summary.Topics
		if err := c.Ledger.Record(ctx, rec); err != nil {
			return types.ConversionFailed, fmt.Errorf("recording conversion: %w", err)
		}
	}
	return types.ConversionDone, nil
}

// ConvertBatch converts each source in order, printing per-file status to w
// and a summary line at the end. A cancelled context stops the batch
// between files; the remaining files are not counted.
func (c *Converter) ConvertBatch(ctx context.Context, srcs []string, w io.Writer) types.BatchResult {
	var result types.BatchResult
	for _, src := range srcs {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "stopped: %v\n", ctx.Err())
			break
		}
		status, _ := c.ConvertOutline(ctx, src, "", w)
		result.Add(status)
	}
	fmt.Fprintf(w, "\n%s\n", result)
	return result
}

// OutlineFiles returns the outline files (*.txt, *.outline) directly under
// dir, sorted by name.
func OutlineFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading outlines directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !outlineExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
