package cmd

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/insights/internal/cache"
	"github.com/Iron-Ham/insights/internal/config"
	"github.com/Iron-Ham/insights/internal/credentials"
	"github.com/Iron-Ham/insights/internal/insight"
	"github.com/Iron-Ham/insights/internal/logging"
	"github.com/Iron-Ham/insights/internal/tasks"
)

// providerSetup is the provider chosen from configuration plus the resources
// that back it.
type providerSetup struct {
	provider insight.Provider
	source   string
	store    *tasks.Store
	cached   *insight.CachedProvider
	closers  []func() error
}

func (p *providerSetup) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		_ = p.closers[i]()
	}
}

// buildProvider selects the upstream for cfg.API.Mode and wraps it with the
// Redis cache when caching is enabled and reachable.
func buildProvider(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*providerSetup, error) {
	setup := &providerSetup{}

	switch cfg.API.Mode {
	case config.ModeLocal:
		store, err := localStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		setup.store = store
		setup.provider = insight.NewGenerator(store)
		setup.source = "local: " + store.Path()
	default:
		token, err := credentials.ResolveToken(cfg.API.Token)
		if err != nil {
			logger.Warn("keyring unavailable, sending request without a token", "error", err)
		}
		client := insight.NewClient(cfg.API.BaseURL,
			insight.WithToken(token),
			insight.WithTimeout(cfg.API.Timeout()),
		)
		setup.provider = client
		setup.source = client.URL()
	}

	if cfg.Cache.Enabled {
		if cached := wrapWithCache(ctx, cfg, setup, logger); cached != nil {
			setup.cached = cached
			setup.provider = cached
		}
	}
	return setup, nil
}

func localStore(cfg *config.Config, logger *logging.Logger) (*tasks.Store, error) {
	path := cfg.Tasks.ResolvedFile()
	store, err := tasks.NewStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks from %s: %w", path, err)
	}
	return store, nil
}

// wrapWithCache returns nil when Redis cannot be reached; insights are then
// served uncached.
func wrapWithCache(ctx context.Context, cfg *config.Config, setup *providerSetup, logger *logging.Logger) *insight.CachedProvider {
	rc := cache.New(cfg.Cache.RedisAddr, cfg.Cache.Password, cfg.Cache.DB, cache.WithTTL(cfg.Cache.TTL()))
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "error", err)
		_ = rc.Close()
		return nil
	}
	setup.closers = append(setup.closers, rc.Close)
	return insight.NewCachedProvider(setup.provider, rc, cacheKey(cfg), logger)
}

// cacheKey keeps entries from different upstreams apart.
func cacheKey(cfg *config.Config) string {
	if cfg.API.Mode == config.ModeLocal {
		return "local:" + cfg.Tasks.ResolvedFile()
	}
	return "remote:" + cfg.API.BaseURL
}
