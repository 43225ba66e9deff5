// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package xmind

import (
	"path/filepath"
	"strings"
	"unicode"
)

// pathUnsafe lists characters that are not allowed in file names on at
// least one common platform.
const pathUnsafe = `/\:*?"<>|`

// SanitizeTitle turns a file name into a central topic title: the base name
// without extension, with control and path-unsafe characters dropped and
// runs of whitespace collapsed. The result is safe to reuse as a file
// name. It falls back to DefaultTitle.
func SanitizeTitle(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case unicode.IsControl(r), r == '\ufeff', strings.ContainsRune(pathUnsafe, r):
			return -1
		}
		return r
	}, stem)

	title := strings.Join(strings.Fields(cleaned), " ")
	title = strings.Trim(title, ". ")
	if title == "" {
		return DefaultTitle
	}
	return title
}
