package tui

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/insights/internal/insight"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	ctx     context.Context
}

// New creates a new TUI application. The context bounds every fetch and
// stops the program when canceled.
func New(ctx context.Context, provider insight.Provider, opts ...Option) *App {
	opts = append([]Option{WithContext(ctx)}, opts...)
	return &App{
		model: NewModel(provider, opts...),
		ctx:   ctx,
	}
}

// Model returns the initial model.
func (a *App) Model() Model {
	return a.model
}

// Run starts the TUI application
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
		tea.WithContext(a.ctx),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-done:
		}
	}()

	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && a.ctx.Err() != nil {
		return nil
	}
	return err
}
