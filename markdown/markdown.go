// Package markdown renders markdown text to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package markdown

import "github.com/zetacube/datachat"

// FenceFunc lets a caller claim a fenced code block. It receives the
// fence's info-string language and exact source text; returning ok=true
// splices the returned output verbatim in place of the default code
// rendering.
type FenceFunc func(lang, source string) (output string, ok bool)

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, list items, and table cells are sized to width. Code
// blocks are rendered at full width without reflow.
func Render(source string, width int, theme datachat.Theme) string {
	return RenderWith(source, width, theme, nil)
}

// RenderWith is Render with a fenced-block hook.
func RenderWith(source string, width int, theme datachat.Theme, fence FenceFunc) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme, fence)
	return r.render([]byte(source), width)
}
