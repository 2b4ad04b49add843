package msg

import (
	"github.com/Iron-Ham/insights/internal/insight"
)

// InsightSettledMsg carries the outcome of one fetch attempt back to the
// model, which applies it with action.Controller.Settle.
type InsightSettledMsg struct {
	Attempt uint64
	Value   insight.Insight
	Err     error
}
