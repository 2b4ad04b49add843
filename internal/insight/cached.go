package insight

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Iron-Ham/insights/internal/cache"
	"github.com/Iron-Ham/insights/internal/logging"
)

// DefaultCacheKey is used when CachedProvider is built without a key.
const DefaultCacheKey = "latest"

// CachedProvider serves insights from a cache and falls back to the wrapped
// provider on a miss. Cache failures are logged and never surface to the
// caller.
type CachedProvider struct {
	next   Provider
	cache  cache.Cache
	key    string
	logger *logging.Logger
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps next. A nil cache makes the wrapper transparent.
func NewCachedProvider(next Provider, c cache.Cache, key string, logger *logging.Logger) *CachedProvider {
	if key == "" {
		key = DefaultCacheKey
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &CachedProvider{
		next:   next,
		cache:  c,
		key:    key,
		logger: logger.WithComponent("insight-cache"),
	}
}

func (p *CachedProvider) FetchInsight(ctx context.Context) (Insight, error) {
	if p.cache == nil {
		return p.next.FetchInsight(ctx)
	}

	raw, err := p.cache.Get(ctx, p.key)
	switch {
	case err == nil:
		var cached Insight
		if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil && cached.Insight != "" {
			p.logger.Debug("cache hit", "key", p.key)
			return cached, nil
		}
		p.logger.Warn("discarding unreadable cache entry", "key", p.key)
	case errors.Is(err, cache.ErrMiss):
		p.logger.Debug("cache miss", "key", p.key)
	default:
		p.logger.Warn("cache read failed", "key", p.key, "error", err)
	}

	out, err := p.next.FetchInsight(ctx)
	if err != nil {
		return Insight{}, err
	}

	data, err := json.Marshal(out)
	if err == nil {
		err = p.cache.Set(ctx, p.key, string(data))
	}
	if err != nil {
		p.logger.Warn("cache write failed", "key", p.key, "error", err)
	}
	return out, nil
}

// Invalidate drops cached insights so the next fetch regenerates.
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Invalidate(ctx)
}
