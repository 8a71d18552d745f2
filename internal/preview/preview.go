// Package preview renders compiled README Markdown for display: HTML for
// the editor's preview panel and ANSI for the terminal.
package preview

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultWidth is the terminal word-wrap width used when none is given.
const DefaultWidth = 80

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// HTML converts Markdown to an HTML fragment using GitHub-flavoured
// Markdown. Raw HTML in the input is passed through, as GitHub does for
// profile READMEs.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}

// Terminal renders Markdown with ANSI styling. style is a glamour standard
// style name ("dark", "light", "dracula", "notty"); width <= 0 uses
// DefaultWidth.
func Terminal(markdown, style string, width int) (string, error) {
	if style == "" {
		style = "dark"
	}
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
