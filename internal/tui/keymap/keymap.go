// Package keymap provides key binding definitions and lookup for the TUI.
// Bindings are declared with bubbles/key so the same table drives both
// input handling and the help bar.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/insights/internal/tui/panel"
)

// Command represents a named action that can be triggered by a key binding.
type Command string

const (
	CmdNone       Command = ""
	CmdGenerate   Command = "generate"
	CmdRefresh    Command = "refresh"
	CmdToggleHelp Command = "toggle_help"
	CmdScrollUp   Command = "scroll_up"
	CmdScrollDown Command = "scroll_down"
	CmdQuit       Command = "quit"
)

// KeyMap holds the panel bindings. It implements help.KeyMap.
type KeyMap struct {
	Generate key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

// Default returns the standard bindings.
func Default() KeyMap {
	return KeyMap{
		Generate: key.NewBinding(
			key.WithKeys("g", "enter"),
			key.WithHelp("g", "generate"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Lookup maps a key press to a command. Scroll commands only resolve when
// scrolling is true so j/k stay inert on the main panel.
func (k KeyMap) Lookup(msg tea.KeyMsg, scrolling bool) Command {
	switch {
	case key.Matches(msg, k.Quit):
		return CmdQuit
	case key.Matches(msg, k.Help):
		return CmdToggleHelp
	case scrolling && key.Matches(msg, k.Up):
		return CmdScrollUp
	case scrolling && key.Matches(msg, k.Down):
		return CmdScrollDown
	case scrolling:
		return CmdNone
	case key.Matches(msg, k.Generate):
		return CmdGenerate
	case key.Matches(msg, k.Refresh):
		return CmdRefresh
	}
	return CmdNone
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Generate, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.Refresh},
		{k.Help, k.Up, k.Down, k.Quit},
	}
}

// HelpSections converts the bindings into sections for panel.HelpPanel.
func (k KeyMap) HelpSections() []panel.HelpSection {
	titles := []string{"Insights", "Session"}
	var sections []panel.HelpSection
	for i, group := range k.FullHelp() {
		section := panel.HelpSection{Title: titles[i]}
		for _, b := range group {
			h := b.Help()
			section.Items = append(section.Items, panel.HelpItem{Key: h.Key, Description: h.Desc})
		}
		sections = append(sections, section)
	}
	return sections
}
