package server

import (
	"bytes"
	"html/template"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
)

// renderMarkdown converts a Markdown draft to HTML for the result pane.
func renderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		log.Error("rendering markdown", "err", err)
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
