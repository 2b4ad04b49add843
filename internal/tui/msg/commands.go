package msg

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/insights/internal/action"
	"github.com/Iron-Ham/insights/internal/insight"
)

// FetchInsight returns a command that runs one fetch for attempt and
// reports the result as an InsightSettledMsg. Panics inside the provider
// come back as errors. A positive timeout bounds the fetch.
func FetchInsight(ctx context.Context, provider insight.Provider, attempt uint64, timeout time.Duration) tea.Cmd {
	if ctx == nil {
		ctx = context.Background()
	}
	return func() tea.Msg {
		ctx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		v, err := action.Invoke[insight.Insight](ctx, provider.FetchInsight)
		return InsightSettledMsg{Attempt: attempt, Value: v, Err: err}
	}
}
