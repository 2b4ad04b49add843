package panel

import (
	"fmt"
	"strings"
)

// HelpPanel renders the help overlay with keybindings and scrolling support.
type HelpPanel struct {
	height int
}

// NewHelpPanel creates a new HelpPanel.
func NewHelpPanel() *HelpPanel {
	return &HelpPanel{}
}

// Render produces the help panel output.
func (p *HelpPanel) Render(state *RenderState) string {
	if err := state.ValidateBasic(); err != nil {
		return "[help panel: render error]"
	}

	sections := state.HelpSections
	if len(sections) == 0 {
		sections = DefaultHelpSections()
	}

	var lines []string

	title := "Insights Help"
	subtitle := "Press ? to close."
	if state.Theme != nil {
		title = state.Theme.Primary().Render(title)
		subtitle = state.Theme.Muted().Render(subtitle)
	}
	lines = append(lines, title, subtitle, "")

	for _, section := range sections {
		sectionTitle := "▸ " + section.Title
		if state.Theme != nil {
			sectionTitle = state.Theme.Primary().Render(sectionTitle)
		}
		lines = append(lines, sectionTitle)

		for _, item := range section.Items {
			keyStr := item.Key
			descStr := item.Description
			if state.Theme != nil {
				keyStr = state.Theme.Secondary().Render(keyStr)
				descStr = state.Theme.Muted().Render(descStr)
			}
			lines = append(lines, fmt.Sprintf("    %s  %s", keyStr, descStr))
		}
		lines = append(lines, "")
	}

	// Leave room for the scroll indicator
	maxLines := max(state.Height-2, 3)
	maxScroll := max(len(lines)-maxLines, 0)
	scroll := min(max(state.ScrollOffset, 0), maxScroll)

	visibleLines := lines[scroll:min(scroll+maxLines, len(lines))]
	content := strings.Join(visibleLines, "\n")

	if maxScroll > 0 {
		scrollInfo := fmt.Sprintf(" [%d/%d] ", scroll+1, maxScroll+1)
		if state.Theme != nil {
			scrollInfo = state.Theme.Muted().Render(scrollInfo)
		}
		content += "\n" + scrollInfo
	}

	p.height = countNewlines(content) + 1
	return content
}

// Height returns the rendered height of the panel.
func (p *HelpPanel) Height() int {
	return p.height
}

// DefaultHelpSections returns the insights panel keybindings.
func DefaultHelpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "Insights",
			Items: []HelpItem{
				{Key: "g  Enter", Description: "Generate insights (ignored while analyzing)"},
				{Key: "r", Description: "Refresh analysis"},
			},
		},
		{
			Title: "Session",
			Items: []HelpItem{
				{Key: "?", Description: "Toggle this help panel"},
				{Key: "j/↓  k/↑", Description: "Scroll help"},
				{Key: "q  Ctrl+C", Description: "Quit"},
			},
		},
	}
}
