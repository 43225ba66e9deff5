// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/casemap/internal/xmind"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive.xmind>",
	Short: "Summarize and verify an XMind archive",
	Long: `Inspect re-opens an archive, checks that its manifest lists every part
and that content.xml holds one sheet rooted at the central topic, and
prints the title, topic count, depth and topics in pre-order.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "print the summary as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	summary, err := xmind.Inspect(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(w, "Title:     %s\n", summary.Title)
	fmt.Fprintf(w, "Topics:    %d\n", summary.Topics)
	fmt.Fprintf(w, "Max depth: %d\n", summary.MaxDepth)
	fmt.Fprintf(w, "Parts:     %s\n", strings.Join(summary.Parts, ", "))
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for i, id := range summary.IDs {
		fmt.Fprintf(w, "%-10s  %s\n", id, summary.Labels[i])
	}
	return nil
}
