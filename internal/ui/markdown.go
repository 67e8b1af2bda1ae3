package ui

import (
	"github.com/charmbracelet/glamour"
)

// markdownRenderer wraps glamour with width-aware re-creation. Rendering
// falls back to the raw text on any failure so a broken reply never blanks
// the transcript.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

func newMarkdownRenderer(width int) *markdownRenderer {
	m := &markdownRenderer{}
	m.Resize(width)
	return m
}

// Resize rebuilds the renderer for a new wrap width.
func (m *markdownRenderer) Resize(width int) {
	if width <= 0 {
		width = 80
	}
	if m.renderer != nil && m.width == width {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	m.renderer = r
	m.width = width
}

// Render renders markdown to styled terminal text.
func (m *markdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
