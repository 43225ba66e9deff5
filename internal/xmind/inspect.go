// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmind

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Summary describes an archive read back from disk.
type Summary struct {
	// Title is the sheet title.
	Title string `json:"title" yaml:"title"`

	// Topics counts topics other than the central one.
	Topics int `json:"topics" yaml:"topics"`

	// IDs lists topic ids in pre-order, central excluded.
	IDs []string `json:"ids" yaml:"ids"`

	// Labels lists topic titles in the same order as IDs.
	Labels []string `json:"labels" yaml:"labels"`

	// MaxDepth is the deepest topic level below the central topic,
	// counted from 0 like outline depth.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Parts lists the zip entries in archive order.
	Parts []string `json:"parts" yaml:"parts"`
}

// Inspect opens the archive at path and summarizes it. It fails when the
// manifest and the zip entries disagree or content.xml is not a single
// sheet rooted at the central topic.
func Inspect(path string) (*Summary, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &PackagingError{Path: path, Op: "open archive", Err: err}
	}
	defer zr.Close()

	s, err := inspect(&zr.Reader)
	if err != nil {
		return nil, &PackagingError{Path: path, Op: "inspect", Err: err}
	}
	return s, nil
}

// InspectBytes summarizes an in-memory archive.
func InspectBytes(data []byte) (*Summary, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &PackagingError{Op: "open archive", Err: err}
	}
	s, err := inspect(zr)
	if err != nil {
		return nil, &PackagingError{Op: "inspect", Err: err}
	}
	return s, nil
}

func inspect(zr *zip.Reader) (*Summary, error) {
	s := &Summary{}
	present := map[string]bool{}
	for _, f := range zr.File {
		s.Parts = append(s.Parts, f.Name)
		present[f.Name] = true
	}

	raw, err := readZipFile(zr.File, PartManifest)
	if err != nil {
		return nil, err
	}
	var manifest xmlManifest
	if err := xml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PartManifest, err)
	}
	listed := map[string]bool{}
	for _, e := range manifest.Entries {
		listed[e.FullPath] = true
		if strings.HasSuffix(e.FullPath, "/") {
			continue
		}
		if !present[e.FullPath] {
			return nil, fmt.Errorf("manifest lists %s but the archive does not contain it", e.FullPath)
		}
	}
	var unlisted []string
	for name := range present {
		if !listed[name] && !strings.HasSuffix(name, "/") {
			unlisted = append(unlisted, name)
		}
	}
	if len(unlisted) > 0 {
		sort.Strings(unlisted)
		return nil, fmt.Errorf("manifest does not list %s", strings.Join(unlisted, ", "))
	}

	raw, err = readZipFile(zr.File, PartContent)
	if err != nil {
		return nil, err
	}
	var content xmapContent
	if err := xml.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PartContent, err)
	}
	if len(content.Sheets) != 1 {
		return nil, fmt.Errorf("expected one sheet, found %d", len(content.Sheets))
	}
	sheet := content.Sheets[0]
	if sheet.Topic.ID != CentralID {
		return nil, fmt.Errorf("sheet is rooted at %q, not %q", sheet.Topic.ID, CentralID)
	}
	s.Title = sheet.Title

	seen := map[string]bool{}
	var visit func(topics []xmlTopic, depth int) error
	visit = func(topics []xmlTopic, depth int) error {
		for i := range topics {
			t := &topics[i]
			if seen[t.ID] {
				return fmt.Errorf("duplicate topic id %q", t.ID)
			}
			seen[t.ID] = true
			s.Topics++
			s.IDs = append(s.IDs, t.ID)
			s.Labels = append(s.Labels, t.Title)
			if depth > s.MaxDepth {
				s.MaxDepth = depth
			}
			if err := visit(t.attached(), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(sheet.Topic.attached(), 0); err != nil {
		return nil, err
	}
	return s, nil
}

func readZipFile(files []*zip.File, name string) ([]byte, error) {
	for _, f := range files {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("archive has no %s", name)
}
