// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

var headingDigits = regexp.MustCompile(`\d+`)

// DocxConverter renders Word documents. Headings come from paragraph
// styles, list items from numbering properties or typed markers, and
// embedded pictures are extracted in first-reference order.
type DocxConverter struct {
	// PreserveFormatting keeps bold, italic, underline, strikethrough and
	// super/subscript as markdown or inline HTML.
	PreserveFormatting bool
}

// Convert parses the .docx at path.
func (c *DocxConverter) Convert(p string) (*Document, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, &ExtractionError{Source: p, Op: "open", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &ExtractionError{Source: p, Op: "stat", Err: err}
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, &ExtractionError{Source: p, Op: "parse docx", Err: err}
	}
	return c.render(doc, Stem(p)), nil
}

func (c *DocxConverter) render(doc *docx.Docx, stem string) *Document {
	r := &docxRenderer{
		doc:      doc,
		stem:     stem,
		preserve: c.PreserveFormatting,
		refs:     make(map[string]string),
	}
	var w mdWriter
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			r.paragraph(&w, v)
		case *docx.Table:
			w.block(r.table(v))
		}
	}
	return &Document{Markdown: w.String(), Images: r.images, Warnings: r.warnings}
}

type docxRenderer struct {
	doc      *docx.Docx
	stem     string
	preserve bool

	images   []Image
	refs     map[string]string // relationship id -> image link
	warnings []string
}

func (r *docxRenderer) paragraph(w *mdWriter, p *docx.Paragraph) {
	segs := r.segments(p)

	if level := headingLevel(p); level > 0 {
		w.block(heading(level, renderInline(segs, false)))
		return
	}

	ordered, n, marked := detectListMarker(plainText(segs))
	if marked {
		segs = dropPrefix(segs, n)
	}

	if depth, ok := numbering(p); ok {
		if !marked {
			ordered = true
		}
		if text := strings.TrimSpace(renderInline(segs, r.preserve)); text != "" {
			w.item(listItem(depth, ordered, text))
		}
		return
	}
	if marked {
		if text := strings.TrimSpace(renderInline(segs, r.preserve)); text != "" {
			w.item(listItem(0, ordered, text))
		}
		return
	}
	w.block(strings.TrimSpace(renderInline(segs, r.preserve)))
}

func (r *docxRenderer) segments(p *docx.Paragraph) []segment {
	var segs []segment
	for _, child := range p.Children {
		switch v := child.(type) {
		case *docx.Run:
			segs = append(segs, r.runSegments(v)...)
		case *docx.Hyperlink:
			link := r.runSegments(&v.Run)
			if plainText(link) == "" && v.Run.InstrText != "" {
				link = append(link, segment{text: v.Run.InstrText, f: runFormat(v.Run.RunProperties)})
			}
			segs = append(segs, link...)
		}
	}
	return segs
}

func (r *docxRenderer) runSegments(run *docx.Run) []segment {
	f := runFormat(run.RunProperties)
	var segs []segment
	for _, child := range run.Children {
		switch v := child.(type) {
		case *docx.Text:
			segs = append(segs, segment{text: v.Text, f: f})
		case *docx.Tab:
			segs = append(segs, segment{text: "\t", f: f})
		case *docx.BarterRabbet:
			segs = append(segs, segment{text: "\n", raw: true})
		case *docx.Drawing:
			if link := r.drawing(v); link != "" {
				segs = append(segs, segment{text: link, raw: true})
			}
		}
	}
	return segs
}

// drawing extracts the picture behind d and returns its markdown link.
// Shapes and canvases carry no picture and yield "".
func (r *docxRenderer) drawing(d *docx.Drawing) string {
	var g *docx.AGraphic
	switch {
	case d.Inline != nil:
		g = d.Inline.Graphic
	case d.Anchor != nil:
		g = d.Anchor.Graphic
	}
	if g == nil || g.GraphicData == nil || g.GraphicData.Pic == nil || g.GraphicData.Pic.BlipFill == nil {
		return ""
	}
	embed := g.GraphicData.Pic.BlipFill.Blip.Embed
	if link, ok := r.refs[embed]; ok {
		return link
	}

	target, err := r.doc.ReferTarget(embed)
	if err != nil {
		r.warnings = append(r.warnings, fmt.Sprintf("image %q: %v", embed, err))
		return ""
	}
	m := r.doc.Media(strings.TrimPrefix(target, "media/"))
	if m == nil {
		m = r.doc.Media(path.Base(target))
	}
	if m == nil {
		r.warnings = append(r.warnings, fmt.Sprintf("image %q: media %s not in package", embed, target))
		return ""
	}

	ext := path.Ext(m.Name)
	name := imageName(len(r.images)+1, ext)
	r.images = append(r.images, Image{Name: name, Data: m.Data})
	link := fmt.Sprintf("![%s](%s)", strings.TrimSuffix(name, path.Ext(name)), ImageRef(r.stem, name))
	r.refs[embed] = link
	return link
}

func (r *docxRenderer) table(t *docx.Table) string {
	var rows [][]string
	for _, row := range t.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			cells = append(cells, r.cell(cell))
		}
		rows = append(rows, cells)
	}
	return renderTable(rows)
}

// cell joins the paragraphs of a table cell with line breaks. Nested
// tables are flattened to "a; b" rows.
func (r *docxRenderer) cell(c *docx.WTableCell) string {
	var parts []string
	for _, p := range c.Paragraphs {
		if s := strings.TrimSpace(renderInline(r.segments(p), r.preserve)); s != "" {
			parts = append(parts, s)
		}
	}
	for _, nested := range c.Tables {
		for _, row := range nested.TableRows {
			var cells []string
			for _, nc := range row.TableCells {
				if s := strings.ReplaceAll(r.cell(nc), "\n", " "); s != "" {
					cells = append(cells, s)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, "; "))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// headingLevel maps paragraph styles such as Heading2, "heading 2", Title
// or 标题 3 to a level. Zero means not a heading.
func headingLevel(p *docx.Paragraph) int {
	if p.Properties == nil || p.Properties.Style == nil {
		return 0
	}
	name := strings.ToLower(strings.ReplaceAll(p.Properties.Style.Val, " ", ""))
	switch {
	case name == "title":
		return 1
	case name == "subtitle":
		return 2
	case strings.HasPrefix(name, "toc"):
		return 0
	case strings.Contains(name, "heading") || strings.HasPrefix(name, "标题"):
		if d := headingDigits.FindString(name); d != "" {
			if n, err := strconv.Atoi(d); err == nil && n > 0 {
				return min(n, 6)
			}
		}
		return 1
	}
	return 0
}

// numbering reports whether p carries list numbering and its nesting level.
// numId 0 removes numbering inherited from the style.
func numbering(p *docx.Paragraph) (int, bool) {
	if p.Properties == nil || p.Properties.NumProperties == nil {
		return 0, false
	}
	np := p.Properties.NumProperties
	if np.NumID == nil || np.NumID.Val == "" || np.NumID.Val == "0" {
		return 0, false
	}
	depth := 0
	if np.Ilvl != nil {
		if n, err := strconv.Atoi(np.Ilvl.Val); err == nil && n > 0 {
			depth = n
		}
	}
	return depth, true
}

func runFormat(p *docx.RunProperties) format {
	if p == nil {
		return format{}
	}
	f := format{
		bold:   p.Bold != nil,
		italic: p.Italic != nil,
	}
	if p.Underline != nil {
		f.underline = p.Underline.Val != "none"
	}
	if p.Strike != nil {
		f.strike = p.Strike.Val != "false" && p.Strike.Val != "0"
	}
	if p.VertAlign != nil {
		switch p.VertAlign.Val {
		case "superscript":
			f.sup = true
		case "subscript":
			f.sub = true
		}
	}
	return f
}
