package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/insights/internal/tasks"
)

// NoTasksMessage is the insight returned for an empty task list.
const NoTasksMessage = "You have no tasks yet! Create some tasks to get AI-powered insights."

// maxObservations caps the bullet list under the overview line.
const maxObservations = 3

// TaskSource supplies the current task list. *tasks.Store satisfies it.
type TaskSource interface {
	Tasks() []tasks.Task
}

// StaticTasks is a TaskSource over a fixed list.
type StaticTasks []tasks.Task

func (s StaticTasks) Tasks() []tasks.Task { return s }

// Generator derives an insight from the task list without calling out.
type Generator struct {
	source TaskSource
}

var _ Provider = (*Generator)(nil)

func NewGenerator(source TaskSource) *Generator {
	return &Generator{source: source}
}

// FetchInsight summarizes the task list. It honors ctx cancellation but
// otherwise never fails.
func (g *Generator) FetchInsight(ctx context.Context) (Insight, error) {
	if err := ctx.Err(); err != nil {
		return Insight{}, err
	}
	return Insight{Insight: Describe(g.source.Tasks())}, nil
}

// Describe renders the markdown insight for a task list.
func Describe(list []tasks.Task) string {
	s := tasks.Summarize(list)
	if s.Total == 0 {
		return NoTasksMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have completed **%d of %d** tasks (%d%%).\n", s.Completed, s.Total, s.CompletionRate())

	obs := observations(s)
	if len(obs) > 0 {
		b.WriteString("\n")
		for _, o := range obs {
			b.WriteString("- ")
			b.WriteString(o)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func observations(s tasks.Summary) []string {
	var out []string
	rate := s.CompletionRate()

	switch {
	case s.Pending == 0:
		out = append(out, "Everything is done. Time to plan what comes next.")
	case rate >= 75:
		out = append(out, "Great momentum: most of your tasks are already finished.")
	case rate < 25:
		out = append(out, "Most of your list is still open. Breaking large tasks into smaller steps can help.")
	}

	if s.HighPending > 0 {
		out = append(out, fmt.Sprintf("%d high-priority %s still pending. Tackle %s first.",
			s.HighPending, plural(s.HighPending, "task is", "tasks are"), plural(s.HighPending, "it", "those")))
	}

	if s.LowPending > 0 && s.LowPending >= s.Pending/2 {
		out = append(out, fmt.Sprintf("%d low-priority %s could be batched into a single session.",
			s.LowPending, plural(s.LowPending, "item", "items")))
	} else if s.Pending > 0 && s.HighPending == 0 {
		out = append(out, "Pick one pending task and finish it before starting another.")
	}

	if len(out) > maxObservations {
		out = out[:maxObservations]
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
