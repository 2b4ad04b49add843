package tui

import (
	"github.com/charmbracelet/glamour"

	"github.com/Iron-Ham/insights/internal/tui/panel"
)

// markdown caches a glamour renderer per wrap width.
type markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown(style string) *markdown {
	if style == "" {
		style = "auto"
	}
	return &markdown{style: style}
}

// For returns a renderer wrapping at width, or nil if glamour cannot be
// initialized, in which case the panel shows raw text.
func (m *markdown) For(width int) panel.MarkdownRenderer {
	width = max(width, 20)
	if m.renderer == nil || m.width != width {
		styleOpt := glamour.WithStandardStyle(m.style)
		if m.style == "auto" {
			styleOpt = glamour.WithAutoStyle()
		}
		r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
		if err != nil {
			return nil
		}
		m.renderer, m.width = r, width
	}
	return m.renderer.Render
}
