// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docconv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convertHTML(t *testing.T, page string, preserve bool) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))
	doc, err := (&HTMLConverter{PreserveFormatting: preserve}).Convert(path)
	require.NoError(t, err)
	return doc
}

func TestHTMLConverter(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Login</title><style>p { color: red }</style></head>
<body>
  <nav><a href="/">Home</a></nav>
  <h1>Login   requirements</h1>
  <p>Users sign in with <strong>email</strong> and
     <em>password</em>.</p>
  <ul>
    <li>Lockout after 5 tries
      <ol><li>Notify the user</li></ol>
    </li>
    <li>Reset by email</li>
  </ul>
  <table>
    <thead><tr><th>Field</th><th>Rule</th></tr></thead>
    <tbody><tr><td>email</td><td>a|b</td></tr></tbody>
  </table>
  <pre>POST /login
  body</pre>
  <script>alert("x")</script>
</body>
</html>`

	got := convertHTML(t, page, true)
	want := "# Login requirements\n" +
		"\n" +
		"Users sign in with **email** and *password*.\n" +
		"\n" +
		"- Lockout after 5 tries\n" +
		"   1. Notify the user\n" +
		"- Reset by email\n" +
		"\n" +
		"| Field | Rule |\n" +
		"| --- | --- |\n" +
		"| email | a\\|b |\n" +
		"\n" +
		"```\n" +
		"POST /login\n" +
		"  body\n" +
		"```\n"
	assert.Equal(t, want, got.Markdown)
	assert.Empty(t, got.Warnings)
}

func TestHTMLConverter_Inline(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		preserve bool
		want     string
	}{
		{name: "loose text in div", body: `<div>Hello <b>there</b><p>Next</p></div>`, preserve: true, want: "Hello **there**\n\nNext\n"},
		{name: "formatting off", body: `<p><u>under</u> <del>gone</del> x<sup>2</sup></p>`, preserve: false, want: "under gone x2\n"},
		{name: "formatting on", body: `<p><u>under</u> <del>gone</del> x<sup>2</sup></p>`, preserve: true, want: "<u>under</u> ~~gone~~ x<sup>2</sup>\n"},
		{name: "code", body: `<p>Call <code>login()</code> first</p>`, preserve: true, want: "Call `login()` first\n"},
		{name: "line break", body: `<p>one<br>two</p>`, preserve: true, want: "one\ntwo\n"},
		{name: "blockquote", body: `<blockquote>Quoted<br>text</blockquote>`, preserve: true, want: "> Quoted\n> text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertHTML(t, "<html><body>"+tt.body+"</body></html>", tt.preserve)
			assert.Equal(t, tt.want, got.Markdown)
		})
	}
}

func TestHTMLConverter_ImagesWarn(t *testing.T) {
	got := convertHTML(t, `<p>Flow <img src="flow.png"></p>`, true)
	assert.Equal(t, "Flow\n", got.Markdown)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "flow.png")
}

func TestHTMLConverter_Missing(t *testing.T) {
	_, err := (&HTMLConverter{}).Convert(filepath.Join(t.TempDir(), "gone.html"))
	assert.ErrorIs(t, err, ErrExtraction)
}
