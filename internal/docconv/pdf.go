// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFConverter extracts the text layer of a PDF. PDFs carry no structure
// the library exposes, so the output is paragraphs of plain text with one
// block per page.
type PDFConverter struct{}

// Convert reads the PDF at path.
func (c *PDFConverter) Convert(path string) (doc *Document, err error) {
	// The text extractor panics on some malformed font tables.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, &ExtractionError{Source: path, Op: "read pdf", Err: fmt.Errorf("%v", r)}
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &ExtractionError{Source: path, Op: "open pdf", Err: err}
	}
	defer f.Close()

	var pages []string
	var warnings []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		pages = append(pages, text)
	}

	md := pdfMarkdown(pages)
	if md == "" {
		warnings = append(warnings, "no extractable text (scanned PDF?)")
	}
	return &Document{Markdown: md, Warnings: warnings}, nil
}

// pdfMarkdown trims every line and collapses runs of blank lines so each
// page becomes a sequence of paragraphs.
func pdfMarkdown(pages []string) string {
	var w mdWriter
	for _, page := range pages {
		var para []string
		flush := func() {
			w.block(strings.Join(para, "\n"))
			para = para[:0]
		}
		page = strings.ReplaceAll(page, "\r\n", "\n")
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				flush()
				continue
			}
			para = append(para, line)
		}
		flush()
	}
	return w.String()
}
