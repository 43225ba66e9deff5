// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docconv converts requirements documents into markdown. DOCX keeps
// headings, lists, tables, run formatting and embedded images; PDF and HTML
// yield text structure only.
package docconv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Converter transforms a document on disk into markdown. Different backends
// (DOCX, PDF, HTML) implement this interface.
type Converter interface {
	// Convert reads the document at path and returns its markdown and images.
	Convert(path string) (*Document, error)
}

// Document is the result of one conversion.
type Document struct {
	// Markdown is the body without frontmatter. Image links point at
	// ImageRef paths relative to the markdown directory.
	Markdown string

	// Images holds extracted images in first-reference order.
	Images []Image

	// Warnings lists content that was dropped, such as images whose
	// relationship could not be resolved.
	Warnings []string
}

// Image is one extracted image.
type Image struct {
	// Name is the file name inside the image directory (image-001.png).
	Name string
	Data []byte
}

// SupportedExtensions lists the document types ForFile can handle.
var SupportedExtensions = map[string]bool{
	".docx": true,
	".pdf":  true,
	".html": true,
	".htm":  true,
}

// ForFile returns the converter for path's extension.
func ForFile(path string, preserveFormatting bool) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".docx":
		return &DocxConverter{PreserveFormatting: preserveFormatting}, nil
	case ".pdf":
		return &PDFConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{PreserveFormatting: preserveFormatting}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// DocumentFiles returns the supported documents directly under dir, sorted
// by name. Office lock files (~$name.docx) are ignored.
func DocumentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if !SupportedExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImageDir returns the image directory for a document, relative to the
// markdown directory: images/<stem>, with characters that break markdown
// link destinations replaced by '-'.
func ImageDir(stem string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '(', ')', '<', '>', '[', ']', '\\', '/':
			return '-'
		}
		return r
	}, stem)
	return "images/" + clean
}

// ImageRef returns the markdown link destination for an image.
func ImageRef(stem, name string) string {
	return ImageDir(stem) + "/" + name
}

// imageName returns the sequential file name for the n-th image (1-based).
func imageName(n int, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("image-%03d%s", n, strings.ToLower(ext))
}
