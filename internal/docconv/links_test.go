// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageLinks(t *testing.T) {
	md := []byte("# Title\n\n![a](images/x/image-001.png) text ![b](https://example.com/b.png)\n\n" +
		"| h |\n| --- |\n| ![c](images/x/image-002.jpg) |\n\n`![not](code.png)`\n")
	assert.Equal(t, []string{
		"images/x/image-001.png",
		"https://example.com/b.png",
		"images/x/image-002.jpg",
	}, ImageLinks(md))
}

func TestMissingImages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images", "x"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "x", "image-001.png"), []byte("png"), 0o644))

	md := []byte("![a](images/x/image-001.png)\n\n![b](images/x/image-002.png)\n\n" +
		"![remote](https://example.com/c.png)\n\n![inline](data:image/png;base64,AAAA)\n")
	assert.Equal(t, []string{"images/x/image-002.png"}, MissingImages(md, dir))
	assert.Empty(t, MissingImages([]byte("no images here\n"), dir))
}
