// Package insight produces the short analytics text shown in the insights
// panel. A Provider is either the remote analytics endpoint (Client), the
// local heuristic Generator, or either one wrapped in a CachedProvider.
package insight

import (
	"context"
	"errors"
)

// Insight is the payload returned by the analytics endpoint.
type Insight struct {
	Insight string `json:"insight"`
}

// ErrEmptyInsight is returned when a payload decodes but carries no text.
var ErrEmptyInsight = errors.New("malformed insight payload: empty insight")

// Provider fetches a single insight.
type Provider interface {
	FetchInsight(ctx context.Context) (Insight, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Insight, error)

func (f ProviderFunc) FetchInsight(ctx context.Context) (Insight, error) {
	return f(ctx)
}
