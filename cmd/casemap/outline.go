// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casemap/internal/mindmap"
)

var outlineCmd = &cobra.Command{
	Use:   "outline [outlines...]",
	Short: "Convert indented test-case outlines to XMind mind maps",
	Long: `Outline parses indented outlines (one test case per line, nesting by
indentation) and writes one .xmind archive per outline. Every item becomes a
topic under a central topic named after the file.

With no arguments, or with --batch, every *.txt and *.outline file in the
outlines directory is converted. Outlines whose content and archive are
unchanged since the last run are skipped unless --force is given. A
malformed outline produces no archive and fails the run.`,
	RunE: runOutline,
}

func init() {
	flags := outlineCmd.Flags()
	flags.StringP("output", "o", "", "archive path (single outline only)")
	flags.String("outlines-dir", "outlines", "directory scanned in batch mode")
	flags.String("output-dir", "xmind", "directory that receives archives")
	flags.String("indent", "tab", "indentation convention: tab, spaces, or auto")
	flags.Int("indent-width", 4, "spaces per level when --indent=spaces")
	flags.Bool("strip-markers", true, "remove list markers such as '- ' and '1. ' from labels")
	flags.Bool("json", false, "also write content.json, metadata.json and manifest.json")
	flags.Bool("force", false, "reconvert outlines the catalog reports unchanged")
	flags.Bool("batch", false, "convert every outline in --outlines-dir")

	bindFlags(flags, map[string]string{
		"outlines-dir":  "mindmap.outlines_dir",
		"output-dir":    "mindmap.output_dir",
		"indent":        "mindmap.outline.indent",
		"indent-width":  "mindmap.outline.indent_width",
		"strip-markers": "mindmap.outline.strip_markers",
		"json":          "mindmap.emit_json",
		"force":         "mindmap.force",
	})

	rootCmd.AddCommand(outlineCmd)
}

func runOutline(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	batch, _ := cmd.Flags().GetBool("batch")
	if output != "" && len(args) != 1 {
		return fmt.Errorf("--output needs exactly one outline")
	}

	conv := &mindmap.Converter{Config: cfg.MindMap, Log: logger}
	store, err := openCatalog()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		conv.Ledger = store
	}

	ctx, stop := signalContext()
	defer stop()
	w := cmd.OutOrStdout()

	if output != "" {
		_, err := conv.ConvertOutline(ctx, args[0], output, w)
		return err
	}

	srcs := args
	if batch || len(args) == 0 {
		srcs, err = mindmap.OutlineFiles(cfg.MindMap.OutlinesDir)
		if err != nil {
			return err
		}
		if len(srcs) == 0 {
			fmt.Fprintf(w, "No outlines found in %s\n", cfg.MindMap.OutlinesDir)
			return nil
		}
	}

	result := conv.ConvertBatch(ctx, srcs, w)
	if result.HasFailures() {
		return fmt.Errorf("%d outline(s) failed conversion", result.Failed)
	}
	return ctx.Err()
}
