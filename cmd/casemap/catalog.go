// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casemap/internal/catalog"
	"github.com/pdiddy/casemap/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List or export the conversion catalog",
	Long: `Catalog reads the SQLite ledger of conversions kept in the catalog
directory. Each record holds the source and output paths, their sha256
hashes, the topic or image count, and when the conversion ran.`,
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the latest conversion of every source",
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	switch types.ConversionKind(kind) {
	case "", types.KindOutline, types.KindDocument:
	default:
		return fmt.Errorf("unsupported kind %q: use outline or document", kind)
	}

	store, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background(), types.ConversionKind(kind))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-40s  %-40s  %5s  %s\n", "Kind", "Source", "Output", "Items", "Converted")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range records {
		fmt.Fprintf(w, "%-8s  %-40s  %-40s  %5d  %s\n",
			r.Kind, truncate(r.Source, 40), truncate(r.Output, 40), r.Items, r.ConvertedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "\n%d sources\n", len(records))
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the latest record of every source to export.yaml or
export.json in the catalog directory, or to --output.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := catalog.Open(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), output)
	case "json":
		path, err = store.ExportJSON(context.Background(), output)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n+3:]
}

func init() {
	catalogListCmd.Flags().String("kind", "", "filter by kind: outline or document")
	catalogListCmd.Flags().Bool("json", false, "print records as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().StringP("output", "o", "", "export path (default: <catalog-dir>/export.<format>)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
