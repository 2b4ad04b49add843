package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/event"
	"github.com/Iron-Ham/insights/internal/insight"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Generate insights once and print them",
	Long: `Generate insights once without opening the panel.

Useful in scripts and when no terminal is attached. With --json the
settled state is printed as a JSON object.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

var fetchJSON bool

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the result as JSON")
}

// fetchResult is the --json output.
type fetchResult struct {
	Status  string `json:"status"`
	Insight string `json:"insight,omitempty"`
	Error   string `json:"error,omitempty"`
	Source  string `json:"source"`
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	ctrl := action.New[insight.Insight]()
	bus := event.NewBus(logger)
	bus.SubscribeAll(func(e event.Event) {
		logger.Debug("action event", "type", e.EventType())
	})
	stop := event.BridgeAction(bus, "fetch", ctrl)
	defer stop()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.API.Timeout())
	defer cancel()

	state, _ := ctrl.Run(fetchCtx, setup.provider.FetchInsight)

	out := cmd.OutOrStdout()
	if fetchJSON {
		res := fetchResult{Status: state.Status.String(), Source: setup.source}
		if state.Data != nil {
			res.Insight = state.Data.Insight
		}
		if state.Err != nil {
			res.Error = state.Err.Message
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else if state.IsSuccess() {
		fmt.Fprintln(out, state.Data.Insight)
	}

	if state.IsError() {
		logger.Warn("fetch failed", "error", state.Err.Message)
		return state.Err
	}
	return nil
}
