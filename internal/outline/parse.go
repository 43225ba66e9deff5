// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline parses indentation-structured test-case outlines into a
// casetree.Tree. Depth is the number of leading indentation units; one
// convention (tabs, or a fixed number of spaces) applies to a whole file.
package outline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/casemap/internal/casetree"
	"github.com/pdiddy/casemap/pkg/types"
)

const (
	defaultIndentWidth = 4
	maxLineBytes       = 1 << 20
	byteOrderMark      = "\ufeff"
)

// markerPattern matches list decoration in front of a label: bullets and
// "1." / "1)" enumerators, each followed by whitespace.
var markerPattern = regexp.MustCompile(`^(?:[-*+•·]|\d{1,3}[.)])\s+`)

// Line is one non-blank outline line after indentation has been measured.
type Line struct {
	// Number is the 1-based line number in the input.
	Number int

	// Text is the raw line without its terminator.
	Text string

	// Depth is the number of indentation units.
	Depth int

	// Label is the trimmed text with list markers removed.
	Label string
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, cfg types.OutlineConfig) (*casetree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening outline %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, cfg)
}

// Parse reads an outline and builds its tree. Blank and whitespace-only
// lines are skipped. Any structural problem aborts the whole parse with a
// MalformedOutlineError; input without items yields ErrEmptyOutline.
func Parse(r io.Reader, cfg types.OutlineConfig) (*casetree.Tree, error) {
	lines, err := Scan(r, cfg)
	if err != nil {
		return nil, err
	}
	return Build(lines)
}

// Scan splits the input into measured lines without building the tree.
func Scan(r io.Reader, cfg types.OutlineConfig) ([]Line, error) {
	ind, err := newIndenter(cfg)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []Line
	number := 0
	for sc.Scan() {
		number++
		raw := strings.TrimRight(sc.Text(), "\r")
		if number == 1 {
			raw = strings.TrimPrefix(raw, byteOrderMark)
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		depth, rest, reason := ind.measure(raw)
		if reason != "" {
			return nil, &MalformedOutlineError{Line: number, Text: raw, Reason: reason}
		}

		label := strings.TrimSpace(rest)
		if cfg.StripMarkers {
			label = strings.TrimSpace(markerPattern.ReplaceAllString(label, ""))
		}
		if label == "" {
			return nil, &MalformedOutlineError{Line: number, Text: raw, Reason: "label is empty after removing the list marker"}
		}

		lines = append(lines, Line{
			Number: number,
			Text:   raw,
			Depth:  depth,
			Label:  label,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	return lines, nil
}

// Build feeds measured lines into a casetree.Builder in order.
func Build(lines []Line) (*casetree.Tree, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOutline
	}

	b := casetree.NewBuilder()
	for _, l := range lines {
		if _, err := b.Add(l.Depth, l.Label, l.Number); err != nil {
			return nil, &MalformedOutlineError{
				Line:   l.Number,
				Text:   l.Text,
				Reason: reasonFor(err, l.Depth),
				Path:   b.OpenPath(),
				Err:    err,
			}
		}
	}

	tree, err := b.Finish(len(lines))
	if errors.Is(err, casetree.ErrEmpty) {
		return nil, ErrEmptyOutline
	}
	if err != nil {
		return nil, fmt.Errorf("building outline tree: %w", err)
	}
	return tree, nil
}

func reasonFor(err error, depth int) string {
	switch {
	case errors.Is(err, casetree.ErrOrphan):
		return fmt.Sprintf("item at depth %d has no parent item", depth)
	case errors.Is(err, casetree.ErrDepthJump):
		return fmt.Sprintf("item at depth %d skips a level", depth)
	default:
		return err.Error()
	}
}

// indenter measures leading indentation under one convention. In auto mode
// the first indented line fixes the convention for the rest of the input;
// width then caps the space unit it may pick.
type indenter struct {
	style types.IndentStyle
	width int
}

func newIndenter(cfg types.OutlineConfig) (*indenter, error) {
	style := cfg.Indent
	if style == "" {
		style = types.IndentTab
	}
	width := cfg.IndentWidth
	if width <= 0 {
		width = defaultIndentWidth
	}
	switch style {
	case types.IndentTab, types.IndentSpaces, types.IndentAuto:
	default:
		return nil, fmt.Errorf("unsupported indent style %q: use tab, spaces, or auto", style)
	}
	return &indenter{style: style, width: width}, nil
}

// measure returns the depth of line, the text after the indentation, and a
// non-empty reason when the indentation breaks the convention.
func (in *indenter) measure(line string) (int, string, string) {
	run := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	rest := line[len(run):]
	if run == "" {
		return 0, rest, ""
	}

	if in.style == types.IndentAuto {
		if run[0] == '\t' {
			in.style = types.IndentTab
		} else {
			// The first indented line sits one level below a top-level
			// item, so its run is one unit. A run wider than the
			// configured width is a skipped level, not a wide unit.
			spaces := len(run) - len(strings.TrimLeft(run, " "))
			if spaces > in.width {
				return 0, "", fmt.Sprintf("first indentation of %d spaces is wider than %d and skips a level", spaces, in.width)
			}
			in.style = types.IndentSpaces
			in.width = spaces
		}
	}

	switch in.style {
	case types.IndentTab:
		if run[0] == ' ' {
			return 0, "", "space indentation in a tab-indented outline"
		}
		tabs := len(run) - len(strings.TrimLeft(run, "\t"))
		if strings.ContainsRune(run[tabs:], '\t') {
			return 0, "", "mixed tabs and spaces in indentation"
		}
		return tabs, rest, ""
	default:
		if strings.ContainsRune(run, '\t') {
			return 0, "", "tab indentation in a space-indented outline"
		}
		if len(run)%in.width != 0 {
			return 0, "", fmt.Sprintf("indentation of %d spaces is not a multiple of %d", len(run), in.width)
		}
		return len(run) / in.width, rest, ""
	}
}
