package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/event"
	"github.com/Iron-Ham/insights/internal/insight"
	"github.com/Iron-Ham/insights/internal/logging"
	"github.com/Iron-Ham/insights/internal/tui/msg"
	"github.com/Iron-Ham/insights/internal/tui/panel"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func fixed(text string, err error) insight.Provider {
	return insight.ProviderFunc(func(ctx context.Context) (insight.Insight, error) {
		return insight.Insight{Insight: text}, err
	})
}

// collect runs cmd and flattens batches into the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := cmd()
	batch, ok := out.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{out}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}
	return msgs
}

func settledFrom(t *testing.T, cmd tea.Cmd) msg.InsightSettledMsg {
	t.Helper()
	for _, m := range collect(cmd) {
		if s, ok := m.(msg.InsightSettledMsg); ok {
			return s
		}
	}
	t.Fatal("command produced no InsightSettledMsg")
	return msg.InsightSettledMsg{}
}

func update(t *testing.T, m Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(message)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestModel_StartsIdle(t *testing.T) {
	m := NewModel(fixed("x", nil))

	if !m.State().IsIdle() {
		t.Errorf("initial status = %v, want idle", m.State().Status)
	}
	if m.Init() != nil {
		t.Error("Init() should not fetch without auto-fetch")
	}
	if m.SessionID() == "" {
		t.Error("SessionID() should be set")
	}
	view := m.View()
	if !strings.Contains(view, panel.InsightTitle) || !strings.Contains(view, panel.GenerateLabel) {
		t.Errorf("idle view missing title or call to action:\n%s", view)
	}
}

func TestModel_GenerateSuccess(t *testing.T) {
	m := NewModel(fixed("Sales up 12%", nil))

	m, cmd := update(t, m, keyRune('g'))
	if !m.State().IsLoading() {
		t.Fatalf("status after g = %v, want loading", m.State().Status)
	}
	if !strings.Contains(m.View(), panel.LoadingLabel) {
		t.Errorf("loading view missing %q", panel.LoadingLabel)
	}

	settled := settledFrom(t, cmd)
	m, _ = update(t, m, settled)

	s := m.State()
	if !s.IsSuccess() || s.Data == nil || s.Data.Insight != "Sales up 12%" || s.Err != nil {
		t.Fatalf("state after settle = %+v", s)
	}
	view := m.View()
	if !strings.Contains(view, "Sales up 12%") || !strings.Contains(view, panel.RefreshLabel) {
		t.Errorf("success view:\n%s", view)
	}
}

func TestModel_FailureLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	m := NewModel(fixed("", errors.New("Service unavailable")),
		WithLogger(logging.NewWithWriter(&buf, logging.LevelDebug)))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, settledFrom(t, cmd))

	s := m.State()
	if !s.IsError() || s.Err.Message != "Service unavailable" || s.Data != nil {
		t.Fatalf("state after failure = %+v", s)
	}
	if !strings.Contains(m.View(), "Service unavailable") {
		t.Error("error view should show the failure message")
	}
	logs := buf.String()
	if !strings.Contains(logs, "insight fetch failed") || !strings.Contains(logs, `"level":"WARN"`) {
		t.Errorf("expected a WARN log for the failure, got:\n%s", logs)
	}
	if !strings.Contains(logs, m.SessionID()) {
		t.Error("log lines should carry the session id")
	}
}

func TestModel_BlankFailureShowsFallback(t *testing.T) {
	m := NewModel(fixed("", errors.New("")))

	m, cmd := update(t, m, keyRune('g'))
	m, _ = update(t, m, settledFrom(t, cmd))

	s := m.State()
	if !s.IsError() || s.Err == nil || !s.Err.Defaulted {
		t.Fatalf("state after blank failure = %+v", s)
	}
	view := m.View()
	if !strings.Contains(view, panel.FallbackError) {
		t.Errorf("error view should show %q:\n%s", panel.FallbackError, view)
	}
	if strings.Contains(view, action.DefaultFailureMessage) {
		t.Errorf("error view should not show %q", action.DefaultFailureMessage)
	}
}

func TestModel_IgnoresTriggerWhileLoading(t *testing.T) {
	var calls atomic.Int32
	provider := insight.ProviderFunc(func(ctx context.Context) (insight.Insight, error) {
		n := calls.Add(1)
		return insight.Insight{Insight: map[int32]string{1: "first", 2: "second"}[n]}, nil
	})

	bus := event.NewBus(nil)
	var ignored int
	bus.Subscribe(event.TypeActionIgnored, func(event.Event) { ignored++ })

	m := NewModel(provider, WithBus(bus))

	m, first := update(t, m, keyRune('g'))
	m, second := update(t, m, keyRune('r'))
	if second != nil {
		t.Error("trigger while loading should not start another fetch")
	}
	if ignored != 1 {
		t.Errorf("ignored events = %d, want 1", ignored)
	}
	if got := m.State().Attempt; got != 1 {
		t.Errorf("Attempt = %d, want 1", got)
	}

	m, _ = update(t, m, settledFrom(t, first))
	if got := m.State(); !got.IsSuccess() || got.Data.Insight != "first" {
		t.Errorf("state = %+v, want success with first result", got)
	}
	if calls.Load() != 1 {
		t.Errorf("provider calls = %d, want 1", calls.Load())
	}
}

func TestModel_RefreshClearsData(t *testing.T) {
	m := NewModel(fixed("ok", nil))

	m, cmd := update(t, m, keyRune('g'))
	m, _ = update(t, m, settledFrom(t, cmd))

	m, _ = update(t, m, keyRune('r'))
	s := m.State()
	if !s.IsLoading() || s.Data != nil || s.Err != nil || s.Attempt != 2 {
		t.Errorf("state after refresh = %+v", s)
	}
}

func TestModel_StaleSettleDiscarded(t *testing.T) {
	m := NewModel(fixed("ok", nil))
	m, _ = update(t, m, keyRune('g'))

	m, _ = update(t, m, msg.InsightSettledMsg{Attempt: 99, Value: insight.Insight{Insight: "stale"}})
	if !m.State().IsLoading() {
		t.Errorf("stale result should be ignored, status = %v", m.State().Status)
	}
}

func TestModel_AutoFetch(t *testing.T) {
	m := NewModel(fixed("auto", nil), WithAutoFetch(true))

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("Init() should fetch with auto-fetch")
	}
	if !m.State().IsLoading() {
		t.Errorf("status after Init = %v, want loading", m.State().Status)
	}
	m, _ = update(t, m, settledFrom(t, cmd))
	if !m.State().IsSuccess() {
		t.Errorf("status = %v, want success", m.State().Status)
	}
}

func TestModel_PublishesLifecycleEvents(t *testing.T) {
	bus := event.NewBus(nil)
	var types []string
	bus.SubscribeAll(func(e event.Event) { types = append(types, e.EventType()) })

	m := NewModel(fixed("", errors.New("down")), WithBus(bus))
	m, cmd := update(t, m, keyRune('g'))
	_, _ = update(t, m, settledFrom(t, cmd))

	want := []string{event.TypeActionStarted, event.TypeActionFailed}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", types, want)
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := NewModel(fixed("x", nil))

	m, _ = update(t, m, keyRune('?'))
	if !strings.Contains(m.View(), "Insights Help") {
		t.Error("? should open the help overlay")
	}

	// Generate is inert while help is open.
	m, cmd := update(t, m, keyRune('g'))
	if cmd != nil || !m.State().IsIdle() {
		t.Error("g should not fetch while help is open")
	}

	m, _ = update(t, m, keyRune('j'))
	if m.helpScroll != 1 {
		t.Errorf("helpScroll = %d, want 1", m.helpScroll)
	}
	m, _ = update(t, m, keyRune('k'))
	m, _ = update(t, m, keyRune('k'))
	if m.helpScroll != 0 {
		t.Errorf("helpScroll = %d, want 0", m.helpScroll)
	}

	m, _ = update(t, m, keyRune('?'))
	if strings.Contains(m.View(), "Insights Help") {
		t.Error("? should close the help overlay")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(fixed("x", nil))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.View() != "" {
		t.Error("View() should be empty after quitting")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := NewModel(fixed("x", nil))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 20})

	if m.width != 50 || m.height != 20 {
		t.Errorf("size = %dx%d, want 50x20", m.width, m.height)
	}
}

func TestModel_SpinnerTickStopsWhenIdle(t *testing.T) {
	m := NewModel(fixed("x", nil))
	tick := m.spinner.Tick()

	if _, cmd := update(t, m, tick); cmd != nil {
		t.Error("spinner should not keep ticking while idle")
	}

	m, _ = update(t, m, keyRune('g'))
	if _, cmd := update(t, m, tick); cmd == nil {
		t.Error("spinner should keep ticking while loading")
	}
}

func TestModel_MarkdownRendering(t *testing.T) {
	m := NewModel(fixed("Sales **up** 12%", nil), WithMarkdown("dark"))

	m, cmd := update(t, m, keyRune('g'))
	m, _ = update(t, m, settledFrom(t, cmd))

	view := m.View()
	if !strings.Contains(view, "Sales") || !strings.Contains(view, "12%") {
		t.Errorf("markdown view missing text:\n%s", view)
	}
	if strings.Contains(view, "**up**") {
		t.Errorf("markdown should be rendered, got raw emphasis:\n%s", view)
	}
}

func TestModel_PanicInProviderBecomesError(t *testing.T) {
	m := NewModel(insight.ProviderFunc(func(ctx context.Context) (insight.Insight, error) {
		panic("provider exploded")
	}))

	m, cmd := update(t, m, keyRune('g'))
	m, _ = update(t, m, settledFrom(t, cmd))

	s := m.State()
	if !s.IsError() || s.Err == nil || s.Err.Message == "" {
		t.Fatalf("state = %+v, want error with message", s)
	}
	if s.Err.Message == action.DefaultFailureMessage {
		t.Error("panic message should be preserved")
	}
}
