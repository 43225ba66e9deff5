// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var spaceRun = regexp.MustCompile(`\s+`)

// inlineTags are rendered as part of the surrounding paragraph.
var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "br": true, "cite": true, "code": true,
	"del": true, "em": true, "font": true, "i": true, "img": true, "ins": true,
	"kbd": true, "mark": true, "s": true, "small": true, "span": true,
	"strike": true, "strong": true, "sub": true, "sup": true, "u": true,
}

// HTMLConverter renders exported HTML pages (wiki exports, saved
// requirement pages). Images are not fetched.
type HTMLConverter struct {
	PreserveFormatting bool
}

// Convert parses the HTML file at path.
func (c *HTMLConverter) Convert(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Source: path, Op: "open", Err: err}
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, &ExtractionError{Source: path, Op: "parse html", Err: err}
	}

	r := &htmlRenderer{preserve: c.PreserveFormatting}
	r.blocks(root, 0)
	return &Document{Markdown: r.w.String(), Warnings: r.warnings}, nil
}

type htmlRenderer struct {
	preserve bool
	w        mdWriter
	warnings []string
}

// blocks renders the children of n. Runs of text and inline elements
// between block elements form one paragraph.
func (r *htmlRenderer) blocks(n *html.Node, depth int) {
	var run []segment
	flush := func() {
		r.w.block(strings.TrimSpace(renderInline(run, r.preserve)))
		run = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode || (c.Type == html.ElementNode && inlineTags[c.Data]) {
			run = append(run, r.inline(c, format{})...)
			continue
		}
		flush()
		r.block(c, depth)
	}
	flush()
}

func (r *htmlRenderer) block(n *html.Node, depth int) {
	if n.Type != html.ElementNode {
		if n.Type == html.DocumentNode {
			r.blocks(n, depth)
		}
		return
	}

	switch n.Data {
	case "head", "script", "style", "noscript", "nav", "template", "hr":
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		r.w.block(heading(level, renderInline(r.children(n, format{}), false)))
	case "p":
		r.w.block(strings.TrimSpace(renderInline(r.children(n, format{}), r.preserve)))
	case "ul", "ol":
		r.list(n, depth, n.Data == "ol")
	case "table":
		r.w.block(r.table(n))
	case "pre":
		r.w.block("```\n" + strings.Trim(textOf(n), "\n") + "\n```")
	case "blockquote":
		text := strings.TrimSpace(renderInline(r.children(n, format{}), r.preserve))
		if text != "" {
			r.w.block("> " + strings.ReplaceAll(text, "\n", "\n> "))
		}
	default:
		r.blocks(n, depth)
	}
}

func (r *htmlRenderer) list(n *html.Node, depth int, ordered bool) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var segs []segment
		var nested []*html.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				nested = append(nested, c)
				continue
			}
			segs = append(segs, r.inline(c, format{})...)
		}
		text := strings.TrimSpace(renderInline(segs, r.preserve))
		if text != "" {
			r.w.item(listItem(depth, ordered, strings.ReplaceAll(text, "\n", " ")))
		}
		for _, l := range nested {
			r.list(l, depth+1, l.Data == "ol")
		}
	}
}

func (r *htmlRenderer) table(n *html.Node) string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, renderInline(r.children(td, format{}), r.preserve))
					}
				}
				rows = append(rows, cells)
			case "thead", "tbody", "tfoot":
				walk(c)
			}
		}
	}
	walk(n)
	return renderTable(rows)
}

func (r *htmlRenderer) children(n *html.Node, f format) []segment {
	var segs []segment
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		segs = append(segs, r.inline(c, f)...)
	}
	return segs
}

// inline flattens n into segments, accumulating emphasis from enclosing
// elements.
func (r *htmlRenderer) inline(n *html.Node, f format) []segment {
	switch n.Type {
	case html.TextNode:
		return []segment{{text: spaceRun.ReplaceAllString(n.Data, " "), f: f}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "script", "style", "noscript":
		return nil
	case "br":
		return []segment{{text: "\n", raw: true}}
	case "img":
		r.warnings = append(r.warnings, fmt.Sprintf("image %q not extracted", attr(n, "src")))
		return nil
	case "code":
		if code := strings.TrimSpace(textOf(n)); code != "" {
			return []segment{{text: "`" + code + "`", raw: true}}
		}
		return nil
	case "strong", "b":
		f.bold = true
	case "em", "i":
		f.italic = true
	case "u", "ins":
		f.underline = true
	case "s", "del", "strike":
		f.strike = true
	case "sup":
		f.sup = true
	case "sub":
		f.sub = true
	case "p", "div", "li", "tr":
		// Block content nested in inline context keeps its break.
		segs := r.children(n, f)
		return append(segs, segment{text: "\n", raw: true})
	}
	return r.children(n, f)
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
