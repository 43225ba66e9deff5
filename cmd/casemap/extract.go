// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casemap/internal/docconv"
)

var extractCmd = &cobra.Command{
	Use:   "extract [documents...]",
	Short: "Extract requirements documents to markdown with images",
	Long: `Extract converts DOCX, PDF and HTML requirements documents into markdown.
DOCX keeps headings, lists, tables, run formatting and embedded images;
images are written to <markdown-dir>/images/<document>/ and linked
relatively. PDF and HTML yield text only.

Each markdown file starts with a YAML frontmatter block naming the source
document and its images. With no arguments, or with --batch, every
supported document in the docs directory is extracted.`,
	RunE: runExtract,
}

func init() {
	flags := extractCmd.Flags()
	flags.String("docs-dir", "docs", "directory scanned in batch mode")
	flags.String("markdown-dir", "markdown", "directory that receives markdown and images")
	flags.Bool("preserve-formatting", true, "keep bold, italic, underline, strike, sup and sub")
	flags.Bool("force", false, "re-extract documents the catalog reports unchanged")
	flags.Bool("batch", false, "extract every document in --docs-dir")

	bindFlags(flags, map[string]string{
		"docs-dir":            "extract.docs_dir",
		"markdown-dir":        "extract.markdown_dir",
		"preserve-formatting": "extract.preserve_formatting",
		"force":               "extract.force",
	})

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	batch, _ := cmd.Flags().GetBool("batch")

	ex := &docconv.Extractor{Config: cfg.Extract, Log: logger}
	store, err := openCatalog()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		ex.Ledger = store
	}

	ctx, stop := signalContext()
	defer stop()
	w := cmd.OutOrStdout()

	srcs := args
	if batch || len(args) == 0 {
		srcs, err = docconv.DocumentFiles(cfg.Extract.DocsDir)
		if err != nil {
			return err
		}
		if len(srcs) == 0 {
			fmt.Fprintf(w, "No documents found in %s\n", cfg.Extract.DocsDir)
			return nil
		}
	}

	result := ex.ConvertBatch(ctx, srcs, w)
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed extraction", result.Failed)
	}
	return ctx.Err()
}
