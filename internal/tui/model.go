// Package tui implements the insights panel as a Bubbletea program.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/event"
	"github.com/Iron-Ham/insights/internal/insight"
	"github.com/Iron-Ham/insights/internal/logging"
	"github.com/Iron-Ham/insights/internal/tui/keymap"
	"github.com/Iron-Ham/insights/internal/tui/msg"
	"github.com/Iron-Ham/insights/internal/tui/panel"
	"github.com/Iron-Ham/insights/internal/tui/styles"
)

// ActionName identifies the panel's controller in lifecycle events.
const ActionName = "insight"

// Model is the Bubbletea model for the insights panel. It owns exactly one
// controller; every render reads the controller's current snapshot.
type Model struct {
	ctx       context.Context
	sessionID string
	ctrl      *action.Controller[insight.Insight]
	provider  insight.Provider
	timeout   time.Duration
	autoFetch bool
	source    string

	logger   *logging.Logger
	bus      *event.Bus
	markdown *markdown

	spinner   spinner.Model
	keys      keymap.KeyMap
	help      help.Model
	theme     panel.Theme
	panel     *panel.InsightPanel
	helpPanel *panel.HelpPanel

	width      int
	height     int
	showHelp   bool
	helpScroll int
	quitting   bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The model tags it with its session ID.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithBus publishes controller lifecycle events to bus.
func WithBus(bus *event.Bus) Option {
	return func(m *Model) { m.bus = bus }
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) { m.timeout = d }
}

// WithAutoFetch starts a fetch from Init.
func WithAutoFetch(enabled bool) Option {
	return func(m *Model) { m.autoFetch = enabled }
}

// WithMarkdown renders successful insights with the named glamour style.
func WithMarkdown(style string) Option {
	return func(m *Model) { m.markdown = newMarkdown(style) }
}

// WithSource sets the subtitle describing where insights come from.
func WithSource(source string) Option {
	return func(m *Model) { m.source = source }
}

// WithContext sets the parent context for fetches.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel creates a panel model fetching from provider.
func NewModel(provider insight.Provider, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	m := Model{
		ctx:       context.Background(),
		sessionID: uuid.NewString(),
		ctrl:      action.New[insight.Insight](),
		provider:  provider,
		spinner:   s,
		keys:      keymap.Default(),
		help:      help.New(),
		theme:     styles.NewTheme(),
		panel:     panel.NewInsightPanel(true),
		helpPanel: panel.NewHelpPanel(),
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.logger == nil {
		m.logger = logging.NopLogger()
	}
	m.logger = m.logger.WithSession(m.sessionID).WithComponent("panel")
	if m.bus == nil {
		m.bus = event.NewBus(m.logger)
	}
	event.BridgeAction(m.bus, ActionName, m.ctrl)
	return m
}

// State returns the controller snapshot.
func (m Model) State() action.State[insight.Insight] {
	return m.ctrl.State()
}

// SessionID returns the identifier attached to this panel's log lines.
func (m Model) SessionID() string {
	return m.sessionID
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.autoFetch {
		return m.trigger()
	}
	return nil
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.help.Width = message.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case msg.InsightSettledMsg:
		m.settle(message)
		return m, nil

	case spinner.TickMsg:
		// Let the spinner stop once nothing is loading.
		if !m.ctrl.State().IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(message)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keys.Lookup(k, m.showHelp) {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit
	case keymap.CmdToggleHelp:
		m.showHelp = !m.showHelp
		m.helpScroll = 0
	case keymap.CmdScrollUp:
		m.helpScroll = max(m.helpScroll-1, 0)
	case keymap.CmdScrollDown:
		m.helpScroll++
	case keymap.CmdGenerate, keymap.CmdRefresh:
		return m, m.trigger()
	}
	return m, nil
}

// trigger starts a fetch unless one is already in flight.
func (m Model) trigger() tea.Cmd {
	attempt, ok := m.ctrl.Begin()
	if !ok {
		inFlight := m.ctrl.State().Attempt
		m.logger.Debug("fetch ignored while loading", "in_flight", inFlight)
		m.bus.Publish(event.NewActionIgnoredEvent(ActionName, inFlight))
		return nil
	}
	m.logger.Debug("fetch started", "attempt", attempt)
	return tea.Batch(
		m.spinner.Tick,
		msg.FetchInsight(m.ctx, m.provider, attempt, m.timeout),
	)
}

func (m Model) settle(result msg.InsightSettledMsg) {
	if !m.ctrl.Settle(result.Attempt, result.Value, result.Err) {
		m.logger.Debug("discarded stale result", "attempt", result.Attempt)
		return
	}
	s := m.ctrl.State()
	if s.IsError() {
		m.logger.Warn("insight fetch failed", "attempt", s.Attempt, "error", s.Err.Message)
		return
	}
	m.logger.Info("insight fetched", "attempt", s.Attempt)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	helpBar := m.help.View(m.keys)
	bodyHeight := max(m.height-countLines(helpBar), 1)

	state := panel.NewRenderState(m.width, bodyHeight)
	state.Theme = m.theme
	state.Insight = m.ctrl.State()
	state.SpinnerFrame = m.spinner.View()
	state.Source = m.source

	if m.showHelp {
		state.HelpSections = m.keys.HelpSections()
		state.ScrollOffset = m.helpScroll
		return m.helpPanel.Render(state) + "\n" + helpBar
	}

	if m.markdown != nil && state.Insight.IsSuccess() {
		frame := m.theme.Border().GetHorizontalFrameSize()
		state.Markdown = m.markdown.For(m.width - frame)
	}
	return m.panel.Render(state) + "\n" + helpBar
}

func countLines(s string) int {
	n := 1
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
