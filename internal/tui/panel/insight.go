package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/util"
)

// Text shown by the insights panel.
const (
	InsightTitle     = "AI Insights"
	GenerateLabel    = "Generate Insights"
	LoadingLabel     = "Analyzing..."
	RefreshLabel     = "Refresh Analysis"
	RetryLabel       = "Try again"
	FallbackError    = "Failed to generate insights. Please try again."
	IdleHint         = "Get a quick read on your tasks."
	defaultSpinGlyph = "⠋"
)

// InsightPanel renders the insight card for one action.State.
type InsightPanel struct {
	height int
	boxed  bool
}

// NewInsightPanel creates a panel. When boxed is true the output is framed
// with the theme border.
func NewInsightPanel(boxed bool) *InsightPanel {
	return &InsightPanel{boxed: boxed}
}

// Render produces the panel for the current controller state.
func (p *InsightPanel) Render(state *RenderState) string {
	if err := state.ValidateBasic(); err != nil {
		return "[insight panel: render error]"
	}

	innerWidth := state.Width
	if p.boxed && state.Theme != nil {
		innerWidth -= state.Theme.Border().GetHorizontalFrameSize()
	}
	innerWidth = max(innerWidth, 10)

	var lines []string
	lines = append(lines, p.header(state))
	if state.Source != "" {
		lines = append(lines, styled(state.Theme, Theme.Muted, util.TruncateANSI(state.Source, innerWidth)))
	}
	lines = append(lines, "")

	s := state.Insight
	switch s.Status {
	case action.StatusLoading:
		spin := state.SpinnerFrame
		if spin == "" {
			spin = defaultSpinGlyph
		}
		lines = append(lines, styled(state.Theme, Theme.ButtonDisabled, spin+" "+LoadingLabel))

	case action.StatusError:
		msg := FallbackError
		if s.Err != nil && !s.Err.Defaulted && strings.TrimSpace(s.Err.Message) != "" {
			msg = s.Err.Message
		}
		lines = append(lines, p.errorBanner(state, msg, innerWidth), "")
		lines = append(lines, button(state.Theme, "g", RetryLabel))

	case action.StatusSuccess:
		lines = append(lines, renderInsight(state, innerWidth), "")
		lines = append(lines, button(state.Theme, "r", RefreshLabel))

	default:
		lines = append(lines, styled(state.Theme, Theme.Muted, IdleHint), "")
		lines = append(lines, button(state.Theme, "g", GenerateLabel))
	}

	content := strings.Join(lines, "\n")
	if p.boxed && state.Theme != nil {
		content = state.Theme.Border().Width(innerWidth).Render(content)
	}

	p.height = countNewlines(content) + 1
	return content
}

// Height returns the rendered height of the panel.
func (p *InsightPanel) Height() int {
	return p.height
}

func (p *InsightPanel) header(state *RenderState) string {
	title := InsightTitle
	if state.Theme == nil {
		return title
	}
	status := state.Insight.Status.String()
	icon := lipgloss.NewStyle().Foreground(statusColor(state.Theme, state.Insight.Status)).Render(statusIcon(status))
	return icon + " " + state.Theme.Primary().Render(title)
}

func (p *InsightPanel) errorBanner(state *RenderState, msg string, width int) string {
	if state.Theme == nil {
		return "Error: " + msg
	}
	box := state.Theme.ErrorBorder()
	return box.Width(max(width-box.GetHorizontalFrameSize(), 1)).Render(state.Theme.Error().Render(msg))
}

func renderInsight(state *RenderState, width int) string {
	text := state.Insight.Data
	if text == nil {
		return ""
	}
	if state.Markdown != nil {
		if out, err := state.Markdown(text.Insight); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	if state.Theme == nil {
		return text.Insight
	}
	return lipgloss.NewStyle().Width(width).Render(text.Insight)
}

func button(theme Theme, key, label string) string {
	if theme == nil {
		return "[" + key + "] " + label
	}
	return theme.Secondary().Render("["+key+"]") + " " + theme.Button().Render(label)
}

func styled(theme Theme, pick func(Theme) lipgloss.Style, s string) string {
	if theme == nil {
		return s
	}
	return pick(theme).Render(s)
}

func statusColor(theme Theme, status action.Status) lipgloss.TerminalColor {
	switch status {
	case action.StatusLoading:
		return theme.Warning().GetForeground()
	case action.StatusSuccess:
		return theme.Success().GetForeground()
	case action.StatusError:
		return theme.Error().GetForeground()
	default:
		return theme.Muted().GetForeground()
	}
}

func statusIcon(status string) string {
	switch status {
	case "loading":
		return "●"
	case "success":
		return "✓"
	case "error":
		return "✗"
	default:
		return "○"
	}
}
