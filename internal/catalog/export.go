// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/casemap/internal/fsutil"
)

// ExportYAML writes the latest record per source to path, or to
// <catalog dir>/export.yaml when path is empty. It returns the path written.
func (s *Store) ExportYAML(ctx context.Context, path string) (string, error) {
	records, err := s.List(ctx, "")
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	if path == "" {
		path = filepath.Join(s.dir, "export.yaml")
	}
	data, err := yaml.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, writeExport(path, data)
}

// ExportJSON is ExportYAML for JSON; the default file is export.json.
func (s *Store) ExportJSON(ctx context.Context, path string) (string, error) {
	records, err := s.List(ctx, "")
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	if path == "" {
		path = filepath.Join(s.dir, "export.json")
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, writeExport(path, data)
}

// writeExport replaces path atomically so readers never see a half-written
// export.
func writeExport(path string, data []byte) error {
	if err := fsutil.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
