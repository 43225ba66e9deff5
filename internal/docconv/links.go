// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ImageLinks returns the destinations of every image in md, in document
// order.
func ImageLinks(md []byte) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(md))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			links = append(links, string(img.Destination))
		}
		return ast.WalkContinue, nil
	})
	return links
}

// MissingImages returns the local image links in md that do not resolve to
// a file relative to dir. Remote and data URLs are not checked.
func MissingImages(md []byte, dir string) []string {
	var missing []string
	for _, dest := range ImageLinks(md) {
		if isRemote(dest) {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(dest))); err != nil {
			missing = append(missing, dest)
		}
	}
	return missing
}

func isRemote(dest string) bool {
	return strings.Contains(dest, "://") ||
		strings.HasPrefix(dest, "data:") ||
		strings.HasPrefix(dest, "mailto:")
}
