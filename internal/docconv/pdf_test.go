// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{
			name:  "lines trimmed and paragraphs kept",
			pages: []string{"  Login  \n Users sign in.\n\n\n\nPasswords expire.  "},
			want:  "Login\nUsers sign in.\n\nPasswords expire.\n",
		},
		{
			name:  "pages become separate blocks",
			pages: []string{"Page one", "Page two\r\nmore"},
			want:  "Page one\n\nPage two\nmore\n",
		},
		{
			name:  "blank pages vanish",
			pages: []string{"   \n\n", "Only text"},
			want:  "Only text\n",
		},
		{
			name:  "nothing",
			pages: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pdfMarkdown(tt.pages))
		})
	}
}

func TestPDFConverter_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf file at all"), 0o644))

	_, err := (&PDFConverter{}).Convert(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)

	var ee *ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, path, ee.Source)
}
