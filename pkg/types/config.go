// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// IndentStyle selects how leading whitespace encodes depth in an outline.
type IndentStyle string

const (
	IndentTab    IndentStyle = "tab"
	IndentSpaces IndentStyle = "spaces"
	IndentAuto   IndentStyle = "auto"
)

// OutlineConfig holds settings for parsing indented test-case outlines.
type OutlineConfig struct {
	// Indent selects the indentation convention: tab, spaces, or auto.
	Indent IndentStyle `json:"indent" yaml:"indent" mapstructure:"indent"`

	// IndentWidth is the number of spaces per level when Indent is spaces (default 4).
	IndentWidth int `json:"indent_width" yaml:"indent_width" mapstructure:"indent_width"`

	// StripMarkers removes list decoration ("- ", "* ", "1. ") from labels.
	StripMarkers bool `json:"strip_markers" yaml:"strip_markers" mapstructure:"strip_markers"`
}

// MindMapConfig holds settings for the outline-to-archive stage.
type MindMapConfig struct {
	Outline OutlineConfig `json:"outline" yaml:"outline" mapstructure:"outline"`

	// OutlinesDir is the directory scanned for outlines in batch mode.
	OutlinesDir string `json:"outlines_dir" yaml:"outlines_dir" mapstructure:"outlines_dir"`

	// OutputDir is the directory that receives .xmind archives.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// EmitJSON adds content.json/metadata.json/manifest.json for newer viewers.
	EmitJSON bool `json:"emit_json" yaml:"emit_json" mapstructure:"emit_json"`

	// Force reconverts outlines the catalog reports as unchanged.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// Settings summarizes the options that change archive bytes. The catalog
// stores it so a run with different options does not skip.
func (c MindMapConfig) Settings() string {
	o := c.Outline
	return fmt.Sprintf("indent=%s width=%d markers=%t json=%t", o.Indent, o.IndentWidth, o.StripMarkers, c.EmitJSON)
}

// ExtractConfig holds settings for the document-to-markdown stage.
type ExtractConfig struct {
	// DocsDir is the directory scanned for source documents in batch mode.
	DocsDir string `json:"docs_dir" yaml:"docs_dir" mapstructure:"docs_dir"`

	// MarkdownDir receives <stem>.md files and the images/<stem>/ directories.
	MarkdownDir string `json:"markdown_dir" yaml:"markdown_dir" mapstructure:"markdown_dir"`

	// PreserveFormatting keeps bold, italic, underline, strike, sup and sub runs.
	PreserveFormatting bool `json:"preserve_formatting" yaml:"preserve_formatting" mapstructure:"preserve_formatting"`

	// Force reconverts documents the catalog reports as unchanged.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// Settings summarizes the options that change the markdown output.
func (c ExtractConfig) Settings() string {
	return fmt.Sprintf("formatting=%t", c.PreserveFormatting)
}

// CatalogConfig holds settings for the conversion ledger.
type CatalogConfig struct {
	// Dir contains casemap.db and the export files.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Disabled skips the ledger entirely; every conversion runs.
	Disabled bool `json:"disabled" yaml:"disabled" mapstructure:"disabled"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// MaxBodyBytes caps the outline request body (default 4 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// SecretsDir holds credential files; a casemap-api-token file there
	// turns on bearer authentication for /api routes (default ".secrets").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// LogConfig selects the logger mode.
type LogConfig struct {
	// Mode is "development" (default) or "production".
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Verbose enables debug-level output.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

// Config groups all stage configurations.
type Config struct {
	MindMap MindMapConfig `json:"mindmap" yaml:"mindmap" mapstructure:"mindmap"`
	Extract ExtractConfig `json:"extract" yaml:"extract" mapstructure:"extract"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration matching the standard directory layout.
func DefaultConfig() Config {
	return Config{
		MindMap: MindMapConfig{
			Outline: OutlineConfig{
				Indent:       IndentTab,
				IndentWidth:  4,
				StripMarkers: true,
			},
			OutlinesDir: "outlines",
			OutputDir:   "xmind",
		},
		Extract: ExtractConfig{
			DocsDir:            "docs",
			MarkdownDir:        "markdown",
			PreserveFormatting: true,
		},
		Catalog: CatalogConfig{
			Dir: ".casemap",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxBodyBytes:    4 << 20,
			ShutdownTimeout: 10 * time.Second,
			SecretsDir:      ".secrets",
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}
