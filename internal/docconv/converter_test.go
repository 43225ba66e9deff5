// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		path string
		want Converter
	}{
		{path: "a.docx", want: &DocxConverter{PreserveFormatting: true}},
		{path: "A.DOCX", want: &DocxConverter{PreserveFormatting: true}},
		{path: "b.pdf", want: &PDFConverter{}},
		{path: "c.html", want: &HTMLConverter{PreserveFormatting: true}},
		{path: "c.htm", want: &HTMLConverter{PreserveFormatting: true}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ForFile(tt.path, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ForFile("notes.doc", true)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDocumentFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.docx", "~$a.docx", "c.HTML", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.docx"), 0o755))

	got, err := DocumentFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.docx"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.HTML"),
	}, got)

	_, err = DocumentFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestImageDir(t *testing.T) {
	tests := []struct {
		stem string
		want string
	}{
		{stem: "login", want: "images/login"},
		{stem: "login spec (v2)", want: "images/login-spec--v2-"},
		{stem: "需求文档", want: "images/需求文档"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageDir(tt.stem), tt.stem)
	}
	assert.Equal(t, "images/login/image-001.png", ImageRef("login", "image-001.png"))
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "image-001.png", imageName(1, ".PNG"))
	assert.Equal(t, "image-012.jpeg", imageName(12, ".jpeg"))
	assert.Equal(t, "image-003.bin", imageName(3, ""))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "login spec", Stem("/docs/login spec.docx"))
	assert.Equal(t, "README", Stem("README"))
}

func TestRenderTable(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want string
	}{
		{name: "empty", rows: nil, want: ""},
		{
			name: "ragged rows padded",
			rows: [][]string{{"a", "b", "c"}, {"1"}},
			want: "| a | b | c |\n| --- | --- | --- |\n| 1 |  |  |",
		},
		{
			name: "header only",
			rows: [][]string{{"only"}},
			want: "| only |\n| --- |",
		},
		{
			name: "newlines become breaks",
			rows: [][]string{{"h"}, {"x\r\ny"}},
			want: "| h |\n| --- |\n| x<br>y |",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderTable(tt.rows))
		})
	}
}
