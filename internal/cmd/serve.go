package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/insights/internal/config"
	"github.com/Iron-Ham/insights/internal/event"
	"github.com/Iron-Ham/insights/internal/logging"
	"github.com/Iron-Ham/insights/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics endpoint",
	Long: `Run the analytics endpoint that remote-mode panels talk to.

Insights are generated from the tasks file, which is watched for changes.
Every reload invalidates the Redis cache when caching is enabled.

Routes:
  POST /api/analytics/   insight for the current task list
  GET  /api/health       liveness
  GET  /metrics          Prometheus metrics (server.metrics)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.API.Mode = config.ModeLocal
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := serverLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setup, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer setup.Close()

	srv := server.New(setup.provider, server.Config{
		Token:   cfg.Server.Token,
		Metrics: cfg.Server.Metrics,
	}, logger)
	srv.Metrics().TasksTotal.Set(float64(len(setup.store.Tasks())))

	bus := event.NewBus(logger)
	bus.Subscribe(event.TypeTasksReloaded, func(e event.Event) {
		reloaded, ok := e.(event.TasksReloadedEvent)
		if !ok {
			return
		}
		if reloaded.Err != nil {
			logger.Warn("tasks reload failed, keeping previous list", "path", reloaded.Path, "error", reloaded.Err)
			return
		}
		srv.Metrics().TasksTotal.Set(float64(reloaded.Count))
		if setup.cached != nil {
			if err := setup.cached.Invalidate(ctx); err != nil {
				logger.Warn("cache invalidation failed", "error", err)
			}
		}
		logger.Info("tasks reloaded", "path", reloaded.Path, "count", reloaded.Count)
	})

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return setup.store.Watch(ctx, func(count int, err error) {
			bus.Publish(event.NewTasksReloadedEvent(setup.store.Path(), count, err))
		})
	})
	p.Go(func(ctx context.Context) error {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	})

	cmd.Printf("serving insights for %s on %s\n", setup.store.Path(), cfg.Server.Addr)
	return p.Wait()
}

// serverLogger logs to the configured file, or to stderr when file logging
// is disabled.
func serverLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NewLogger("", cfg.Logging.Level)
	}
	return logging.NewRotatingLogger(cfg.Logging.ResolvedDir(), cfg.Logging.Level, rotation(cfg))
}
