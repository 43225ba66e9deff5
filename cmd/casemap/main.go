// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the casemap CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/casemap/internal/catalog"
	"github.com/pdiddy/casemap/internal/logging"
	"github.com/pdiddy/casemap/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration (defaults, file, env, flags),
	// loaded before every subcommand runs.
	cfg types.Config

	logger *logging.Logger
)

// rootCmd is the base command for the casemap CLI.
var rootCmd = &cobra.Command{
	Use:   "casemap",
	Short: "Turn test-case outlines into XMind maps and requirements documents into markdown",
	Long: `casemap supports a requirements-to-test-cases workflow. Requirements
documents (DOCX, PDF, HTML) are extracted to markdown with their images; an
assistant writes an indented test-case outline from that markdown; casemap
then converts the outline into an XMind mind map.

Each stage is a subcommand: extract, outline, inspect, catalog, and serve.
Conversions are recorded in a SQLite catalog so unchanged inputs are skipped.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./casemap.yaml or ~/.config/casemap/casemap.yaml)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("log-mode", "development", "log encoder: development or production")
	flags.String("catalog-dir", ".casemap", "directory holding the conversion catalog")
	flags.Bool("no-catalog", false, "do not read or write the conversion catalog")

	bindFlags(flags, map[string]string{
		"verbose":     "log.verbose",
		"log-mode":    "log.mode",
		"catalog-dir": "catalog.dir",
		"no-catalog":  "catalog.disabled",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("casemap")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "casemap"))
		}
	}

	viper.SetEnvPrefix("CASEMAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Reading config file:", err)
		}
	}
}

// setDefaults registers every configuration key so environment variables
// are seen by Unmarshal even when no config file sets the key.
func setDefaults(d types.Config) {
	defaults := map[string]any{
		"mindmap.outline.indent":        string(d.MindMap.Outline.Indent),
		"mindmap.outline.indent_width":  d.MindMap.Outline.IndentWidth,
		"mindmap.outline.strip_markers": d.MindMap.Outline.StripMarkers,
		"mindmap.outlines_dir":          d.MindMap.OutlinesDir,
		"mindmap.output_dir":            d.MindMap.OutputDir,
		"mindmap.emit_json":             d.MindMap.EmitJSON,
		"mindmap.force":                 d.MindMap.Force,
		"extract.docs_dir":              d.Extract.DocsDir,
		"extract.markdown_dir":          d.Extract.MarkdownDir,
		"extract.preserve_formatting":   d.Extract.PreserveFormatting,
		"extract.force":                 d.Extract.Force,
		"catalog.dir":                   d.Catalog.Dir,
		"catalog.disabled":              d.Catalog.Disabled,
		"server.addr":                   d.Server.Addr,
		"server.max_body_bytes":         d.Server.MaxBodyBytes,
		"server.shutdown_timeout":       d.Server.ShutdownTimeout,
		"server.secrets_dir":            d.Server.SecretsDir,
		"log.mode":                      d.Log.Mode,
		"log.verbose":                   d.Log.Verbose,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// bindFlags ties command-line flags to configuration keys.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func loadConfig() (types.Config, error) {
	c := types.DefaultConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("loading configuration: %w", err)
	}
	return c, nil
}

// openCatalog opens the ledger unless it is disabled. A nil store with a
// nil error means conversions run without skip detection.
func openCatalog() (*catalog.Store, error) {
	if cfg.Catalog.Disabled {
		return nil, nil
	}
	return catalog.Open(cfg.Catalog)
}

// signalContext is cancelled on SIGINT or SIGTERM so batches stop between
// files and the server shuts down.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
