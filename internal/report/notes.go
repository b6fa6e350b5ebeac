package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// notesMarkdown renders statement notes. Raw HTML in the source is omitted
// (goldmark's default), so the output is safe to inline.
var notesMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// renderNotes converts Markdown notes to HTML for the report template.
func renderNotes(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := notesMarkdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("rendering notes: %w", err)
	}
	return template.HTML(buf.String()), nil
}
