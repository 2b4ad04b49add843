package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/insights/internal/event"
	"github.com/Iron-Ham/insights/internal/tui"
)

// errNotATerminal is returned when the panel is started without a TTY.
var errNotATerminal = errors.New("the insights panel needs an interactive terminal; use 'insights fetch' instead")

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the AI insights panel",
	Long: `Open the AI insights panel in the terminal.

Press g (or enter) to generate insights. While an analysis is running,
further presses are ignored until it finishes.`,
	RunE: runPanel,
}

func init() {
	rootCmd.AddCommand(panelCmd)
	addPanelFlags(panelCmd)
}

func addPanelFlags(c *cobra.Command) {
	c.Flags().Bool("auto", false, "generate insights as soon as the panel opens")
	c.Flags().Bool("plain", false, "show the insight text without markdown rendering")
}

// isTerminal reports whether the panel can draw. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runPanel(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errNotATerminal
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	setup, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer setup.Close()

	bus := event.NewBus(logger)
	bus.Subscribe(event.TypeActionIgnored, func(e event.Event) {
		if ignored, ok := e.(event.ActionIgnoredEvent); ok {
			logger.Debug("trigger ignored while loading", "action", ignored.Action, "attempt", ignored.InFlight)
		}
	})

	opts := []tui.Option{
		tui.WithLogger(logger),
		tui.WithBus(bus),
		tui.WithTimeout(cfg.API.Timeout()),
		tui.WithSource(setup.source),
	}
	if auto, _ := cmd.Flags().GetBool("auto"); auto || cfg.TUI.AutoFetch {
		opts = append(opts, tui.WithAutoFetch(true))
	}
	if plain, _ := cmd.Flags().GetBool("plain"); !plain && cfg.TUI.Markdown {
		opts = append(opts, tui.WithMarkdown(cfg.TUI.GlamourStyle))
	}

	logger.Info("panel starting", "mode", cfg.API.Mode, "source", setup.source)
	return tui.New(ctx, setup.provider, opts...).Run()
}
