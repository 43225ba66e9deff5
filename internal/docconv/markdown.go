// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"regexp"
	"strings"
)

// Text-level list decoration. A marker must be followed by whitespace so
// "-5 degrees" and "e.g." stay ordinary text.
var (
	bulletPattern  = regexp.MustCompile(`^\s*[•·○■▪◦\-*+]\s+`)
	orderedPattern = regexp.MustCompile(`^\s*(?:\d{1,3}|[a-zA-Z])[.)]\s+`)
)

// format is the set of run properties carried into markdown.
type format struct {
	bold      bool
	italic    bool
	underline bool
	strike    bool
	sup       bool
	sub       bool
}

// segment is a piece of inline content. Raw segments (image links, line
// breaks) are emitted as-is and never wrapped in formatting.
type segment struct {
	text string
	f    format
	raw  bool
}

func plainText(segs []segment) string {
	var b strings.Builder
	for _, s := range segs {
		if !s.raw {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// renderInline joins segments, merging neighbours with equal formatting so
// a word split across runs is wrapped once.
func renderInline(segs []segment, preserve bool) string {
	var merged []segment
	for _, s := range segs {
		if s.text == "" {
			continue
		}
		if n := len(merged); n > 0 && !s.raw && !merged[n-1].raw && merged[n-1].f == s.f {
			merged[n-1].text += s.text
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	for _, s := range merged {
		if s.raw || !preserve {
			b.WriteString(s.text)
			continue
		}
		b.WriteString(wrap(s.text, s.f))
	}
	return b.String()
}

// wrap applies markdown/HTML emphasis to the non-space core of text so the
// delimiters sit flush against the words.
func wrap(text string, f format) string {
	core := strings.TrimSpace(text)
	if core == "" || f == (format{}) {
		return text
	}
	lead := text[:strings.Index(text, core)]
	trail := text[len(lead)+len(core):]

	if f.bold {
		core = "**" + core + "**"
	}
	if f.italic {
		core = "*" + core + "*"
	}
	if f.underline {
		core = "<u>" + core + "</u>"
	}
	if f.strike {
		core = "~~" + core + "~~"
	}
	if f.sup {
		core = "<sup>" + core + "</sup>"
	} else if f.sub {
		core = "<sub>" + core + "</sub>"
	}
	return lead + core + trail
}

// detectListMarker reports whether the plain text of a paragraph starts
// with list decoration, and how many bytes the decoration occupies.
func detectListMarker(plain string) (ordered bool, n int, ok bool) {
	if loc := orderedPattern.FindStringIndex(plain); loc != nil {
		return true, loc[1], true
	}
	if loc := bulletPattern.FindStringIndex(plain); loc != nil {
		return false, loc[1], true
	}
	return false, 0, false
}

// dropPrefix removes the first n bytes of non-raw text from segs.
func dropPrefix(segs []segment, n int) []segment {
	out := make([]segment, 0, len(segs))
	for _, s := range segs {
		if n > 0 && !s.raw {
			if len(s.text) <= n {
				n -= len(s.text)
				continue
			}
			s.text = s.text[n:]
			n = 0
		}
		out = append(out, s)
	}
	return out
}

func heading(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + strings.Join(strings.Fields(text), " ")
}

func listItem(depth int, ordered bool, text string) string {
	marker := "- "
	if ordered {
		marker = "1. "
	}
	return strings.Repeat("   ", depth) + marker + strings.TrimSpace(text)
}

// renderTable renders rows as a pipe table with the first row as header.
// Short rows are padded to the widest row.
func renderTable(rows [][]string) string {
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return ""
	}

	var b strings.Builder
	writeRow := func(r []string) {
		b.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(r) {
				cell = tableCell(r[i])
			}
			b.WriteString(" " + cell + " |")
		}
		b.WriteString("\n")
	}

	writeRow(rows[0])
	b.WriteString("|")
	for i := 0; i < cols; i++ {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func tableCell(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "|", `\|`)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "<br>")
}

// mdWriter assembles blocks separated by blank lines. Consecutive list
// items stay together.
type mdWriter struct {
	b       strings.Builder
	started bool
	inList  bool
}

func (w *mdWriter) block(text string) {
	text = strings.TrimRight(text, " \t\n")
	if strings.TrimSpace(text) == "" {
		return
	}
	if w.started {
		w.b.WriteString("\n")
	}
	w.b.WriteString(text)
	w.b.WriteString("\n")
	w.started = true
	w.inList = false
}

func (w *mdWriter) item(line string) {
	if w.started && !w.inList {
		w.b.WriteString("\n")
	}
	w.b.WriteString(line)
	w.b.WriteString("\n")
	w.started = true
	w.inList = true
}

func (w *mdWriter) String() string {
	return w.b.String()
}
