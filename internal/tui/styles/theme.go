package styles

import "github.com/charmbracelet/lipgloss"

// Theme implements panel.Theme by wrapping the styles package.
//
// The interface is defined in internal/tui/panel/renderer.go to avoid
// circular imports between styles and panel packages.
type Theme struct{}

// NewTheme creates a new Theme instance.
func NewTheme() *Theme {
	return &Theme{}
}

func (t *Theme) Primary() lipgloss.Style   { return Title }
func (t *Theme) Secondary() lipgloss.Style { return HelpKey }
func (t *Theme) Muted() lipgloss.Style     { return Muted }
func (t *Theme) Error() lipgloss.Style     { return Error }
func (t *Theme) Warning() lipgloss.Style   { return Warning }
func (t *Theme) Success() lipgloss.Style   { return Secondary }
func (t *Theme) Button() lipgloss.Style    { return Button }

func (t *Theme) ButtonDisabled() lipgloss.Style { return ButtonDisabled }

func (t *Theme) Border() lipgloss.Style {
	return ContentBox
}

func (t *Theme) ErrorBorder() lipgloss.Style {
	return ErrorBox
}
