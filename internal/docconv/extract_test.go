// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/casemap/internal/catalog"
	"github.com/pdiddy/casemap/pkg/types"
)

func testExtractor(t *testing.T, withCatalog bool) (*Extractor, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))

	cfg := types.DefaultConfig().Extract
	cfg.DocsDir = filepath.Join(dir, "docs")
	cfg.MarkdownDir = filepath.Join(dir, "markdown")
	e := &Extractor{Config: cfg}

	if withCatalog {
		store, err := catalog.Open(types.CatalogConfig{Dir: filepath.Join(dir, ".casemap")})
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		e.Ledger = store
	}
	return e, dir
}

func writeDocx(t *testing.T, path string, build func(*docx.Docx)) {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	build(doc)
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = doc.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestConvertDocument(t *testing.T) {
	e, dir := testExtractor(t, true)
	pic := pngBytes(t)
	src := filepath.Join(dir, "docs", "login.docx")
	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().Style("Heading1").AddText("Login")
		_, err := d.AddParagraph().AddInlineDrawing(pic)
		require.NoError(t, err)
	})

	var buf bytes.Buffer
	status, err := e.ConvertDocument(context.Background(), src, &buf)
	require.NoError(t, err)
	assert.Equal(t, types.ConversionDone, status)

	out := filepath.Join(dir, "markdown", "login.md")
	assert.Equal(t, "converted: login.docx -> "+out+" (1 images)\n", buf.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fm, body, err := ReadFrontmatter(data)
	require.NoError(t, err)
	assert.Equal(t, &Frontmatter{
		Source:   "login.docx",
		Title:    "login",
		ImageDir: "images/login",
		Images:   []string{"image-001.png"},
	}, fm)
	assert.Equal(t, "# Login\n\n![image-001](images/login/image-001.png)\n", string(body))

	img, err := os.ReadFile(filepath.Join(dir, "markdown", "images", "login", "image-001.png"))
	require.NoError(t, err)
	assert.Equal(t, pic, img)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	rec, err := e.Ledger.(*catalog.Store).Latest(context.Background(), types.KindDocument, src)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Items)
	assert.Equal(t, out, rec.Output)
}

func TestConvertDocument_SkipsUnchangedAndClearsStaleImages(t *testing.T) {
	e, dir := testExtractor(t, true)
	ctx := context.Background()
	src := filepath.Join(dir, "docs", "spec.docx")
	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().AddText("Figure")
		_, err := d.AddParagraph().AddInlineDrawing(pngBytes(t))
		require.NoError(t, err)
	})

	status, err := e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, types.ConversionDone, status)

	var buf bytes.Buffer
	status, err = e.ConvertDocument(ctx, src, &buf)
	require.NoError(t, err)
	assert.Equal(t, types.ConversionSkipped, status)
	assert.Equal(t, "skipped: spec.docx (unchanged)\n", buf.String())

	// The picture is removed from the document; its extracted copy goes too.
	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().AddText("No figure")
	})
	status, err = e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, types.ConversionDone, status)
	assert.NoDirExists(t, filepath.Join(dir, "markdown", "images", "spec"))

	data, err := os.ReadFile(filepath.Join(dir, "markdown", "spec.md"))
	require.NoError(t, err)
	fm, body, err := ReadFrontmatter(data)
	require.NoError(t, err)
	assert.Empty(t, fm.ImageDir)
	assert.Empty(t, fm.Images)
	assert.Equal(t, "No figure\n", string(body))
}

func TestConvertDocument_UnresolvedLinkKeepsPreviousOutput(t *testing.T) {
	e, dir := testExtractor(t, true)
	ctx := context.Background()
	src := filepath.Join(dir, "docs", "spec.docx")
	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().AddText("Figure")
		_, err := d.AddParagraph().AddInlineDrawing(pngBytes(t))
		require.NoError(t, err)
	})
	_, err := e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)

	md := filepath.Join(dir, "markdown", "spec.md")
	before, err := os.ReadFile(md)
	require.NoError(t, err)

	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().AddText("![x](images/spec/nope.png)")
		_, err := d.AddParagraph().AddInlineDrawing(pngBytes(t))
		require.NoError(t, err)
	})
	var buf bytes.Buffer
	status, err := e.ConvertDocument(ctx, src, &buf)
	assert.Equal(t, types.ConversionFailed, status)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "images/spec/nope.png")

	after, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.FileExists(t, filepath.Join(dir, "markdown", "images", "spec", "image-001.png"))
	assert.Empty(t, MissingImages(after, filepath.Join(dir, "markdown")))
	assert.NoDirExists(t, filepath.Join(dir, "markdown", "images", ".spec.staging"))
}

func TestConvertDocument_SettingsChangeReconverts(t *testing.T) {
	e, dir := testExtractor(t, true)
	ctx := context.Background()
	src := filepath.Join(dir, "docs", "a.docx")
	writeDocx(t, src, func(d *docx.Docx) {
		d.AddParagraph().AddText("A")
	})

	status, err := e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, types.ConversionDone, status)

	e.Config.PreserveFormatting = !e.Config.PreserveFormatting
	status, err = e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, types.ConversionDone, status)

	status, err = e.ConvertDocument(ctx, src, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, types.ConversionSkipped, status)

	rec, err := e.Ledger.(*catalog.Store).Latest(ctx, types.KindDocument, src)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, e.Config.Settings(), rec.Settings)
}

func TestConvertDocument_Failures(t *testing.T) {
	e, dir := testExtractor(t, true)
	src := filepath.Join(dir, "docs", "broken.docx")
	require.NoError(t, os.WriteFile(src, []byte("not a zip archive"), 0o644))

	var buf bytes.Buffer
	status, err := e.ConvertDocument(context.Background(), src, &buf)
	assert.Equal(t, types.ConversionFailed, status)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, buf.String(), "failed:  broken.docx (")
	assert.NoFileExists(t, filepath.Join(dir, "markdown", "broken.md"))

	rec, err := e.Ledger.(*catalog.Store).Latest(context.Background(), types.KindDocument, src)
	require.NoError(t, err)
	assert.Nil(t, rec)

	status, err = e.ConvertDocument(context.Background(), filepath.Join(dir, "docs", "gone.pdf"), &bytes.Buffer{})
	assert.Equal(t, types.ConversionFailed, status)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractBatch(t *testing.T) {
	e, dir := testExtractor(t, false)
	writeDocx(t, filepath.Join(dir, "docs", "a.docx"), func(d *docx.Docx) {
		d.AddParagraph().AddText("A")
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "b.html"), []byte("<h2>B</h2>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "c.pdf"), []byte("not a pdf document"), 0o644))

	srcs, err := DocumentFiles(e.Config.DocsDir)
	require.NoError(t, err)
	require.Len(t, srcs, 3)

	var buf bytes.Buffer
	result := e.ConvertBatch(context.Background(), srcs, &buf)
	assert.Equal(t, types.BatchResult{Converted: 2, Failed: 1}, result)
	assert.Contains(t, buf.String(), "Batch summary: 2 converted, 0 skipped, 1 failed (total: 3)")

	data, err := os.ReadFile(filepath.Join(dir, "markdown", "b.md"))
	require.NoError(t, err)
	_, body, err := ReadFrontmatter(data)
	require.NoError(t, err)
	assert.Equal(t, "## B\n", string(body))
}

func TestExtractBatch_Cancelled(t *testing.T) {
	e, dir := testExtractor(t, false)
	src := filepath.Join(dir, "docs", "a.html")
	require.NoError(t, os.WriteFile(src, []byte("<p>A</p>"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	result := e.ConvertBatch(ctx, []string{src}, &buf)
	assert.Zero(t, result.Total())
	assert.Contains(t, buf.String(), "stopped:")
}

func TestReadFrontmatter_Errors(t *testing.T) {
	_, _, err := ReadFrontmatter([]byte("# no frontmatter\n"))
	assert.Error(t, err)
	_, _, err = ReadFrontmatter([]byte("---\nsource: a\n"))
	assert.Error(t, err)
}

func TestMarkdownPath(t *testing.T) {
	e := &Extractor{Config: types.ExtractConfig{MarkdownDir: "markdown"}}
	assert.Equal(t, filepath.Join("markdown", "login.md"), e.MarkdownPath("docs/login.docx"))

	e.Config.MarkdownDir = ""
	assert.Equal(t, filepath.Join("docs", "login.md"), e.MarkdownPath("docs/login.docx"))
}
