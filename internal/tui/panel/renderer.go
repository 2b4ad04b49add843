// Package panel provides interfaces and types for TUI panel rendering.
// Each panel in the TUI can implement the PanelRenderer interface for
// consistent rendering behavior.
package panel

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/insight"
)

// Common errors returned by RenderState validation.
var (
	ErrInvalidWidth  = errors.New("width must be positive")
	ErrInvalidHeight = errors.New("height must be positive")
	ErrNilTheme      = errors.New("theme cannot be nil")
)

// PanelRenderer defines the interface for rendering UI panels.
type PanelRenderer interface {
	// Render produces the visual output for this panel given the current state.
	// The returned string contains the rendered content, potentially with
	// ANSI escape codes for styling.
	Render(state *RenderState) string

	// Height returns the rendered height of the panel in terminal rows.
	Height() int
}

// Theme provides styling configuration for panel rendering.
// This interface abstracts the styling system, allowing panels to
// request styles without depending on concrete style implementations.
type Theme interface {
	// Primary returns the style for titles and emphasis.
	Primary() lipgloss.Style
	// Secondary returns the style for key hints.
	Secondary() lipgloss.Style
	// Muted returns the muted style for de-emphasized elements.
	Muted() lipgloss.Style
	// Error returns the style for error text.
	Error() lipgloss.Style
	// Warning returns the style for in-progress text.
	Warning() lipgloss.Style
	// Success returns the style for completed states.
	Success() lipgloss.Style
	// Button returns the style for an enabled call-to-action.
	Button() lipgloss.Style
	// ButtonDisabled returns the style for a busy call-to-action.
	ButtonDisabled() lipgloss.Style
	// Border returns the frame drawn around the panel.
	Border() lipgloss.Style
	// ErrorBorder returns the frame drawn around an error banner.
	ErrorBorder() lipgloss.Style
}

// MarkdownRenderer turns markdown into terminal output.
type MarkdownRenderer func(markdown string) (string, error)

// HelpSection represents a section of help content with keybindings.
type HelpSection struct {
	// Title is the section name (e.g., "Insights").
	Title string
	// Items contains the keybindings in this section.
	Items []HelpItem
}

// HelpItem represents a single keybinding in the help panel.
type HelpItem struct {
	// Key is the keybinding (e.g., "g/enter").
	Key string
	// Description explains what the keybinding does.
	Description string
}

// RenderState holds the complete state needed for rendering a panel.
// It provides a snapshot of the TUI state at render time, decoupling
// panel renderers from the full application model.
type RenderState struct {
	// Width is the available width in terminal columns.
	Width int

	// Height is the available height in terminal rows.
	Height int

	// Theme provides styling for the panel.
	Theme Theme

	// Insight is the controller snapshot being displayed.
	Insight action.State[insight.Insight]

	// SpinnerFrame is the current spinner glyph, shown while loading.
	SpinnerFrame string

	// Markdown renders successful insights. Nil shows the raw text.
	Markdown MarkdownRenderer

	// ScrollOffset is the current scroll position for scrollable panels.
	ScrollOffset int

	// HelpSections contains help text organized by section.
	HelpSections []HelpSection

	// Source describes where insights come from, e.g. the endpoint URL.
	Source string
}

// Validate checks that the RenderState has valid values for rendering.
func (rs *RenderState) Validate() error {
	if err := rs.ValidateBasic(); err != nil {
		return err
	}
	if rs.Theme == nil {
		return ErrNilTheme
	}
	return nil
}

// ValidateBasic performs minimal validation checking only dimensions.
// Use this when theme may be optional (e.g., for tests with plain output).
func (rs *RenderState) ValidateBasic() error {
	if rs.Width <= 0 {
		return ErrInvalidWidth
	}
	if rs.Height <= 0 {
		return ErrInvalidHeight
	}
	return nil
}

// NewRenderState creates a RenderState with the given dimensions.
func NewRenderState(width, height int) *RenderState {
	return &RenderState{
		Width:  width,
		Height: height,
	}
}

// DefaultRenderState creates a RenderState sized for a common terminal.
func DefaultRenderState() *RenderState {
	return NewRenderState(80, 24)
}

func countNewlines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
