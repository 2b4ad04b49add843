package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Iron-Ham/insights/internal/tasks"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name         string
		tasks        []tasks.Task
		wantContains []string
		wantBullets  int
	}{
		{
			name:         "no tasks",
			tasks:        nil,
			wantContains: []string{NoTasksMessage},
		},
		{
			name: "mixed list",
			tasks: []tasks.Task{
				{Title: "Report", Priority: tasks.PriorityHigh},
				{Title: "Email", Priority: tasks.PriorityMedium, Completed: true},
				{Title: "Groceries", Priority: tasks.PriorityLow},
				{Title: "Plants", Priority: tasks.PriorityMedium},
			},
			wantContains: []string{
				"**1 of 4** tasks (25%)",
				"1 high-priority task is still pending. Tackle it first.",
				"1 low-priority item could be batched",
			},
			wantBullets: 2,
		},
		{
			name: "all done",
			tasks: []tasks.Task{
				{Title: "A", Priority: tasks.PriorityHigh, Completed: true},
				{Title: "B", Priority: tasks.PriorityLow, Completed: true},
			},
			wantContains: []string{"(100%)", "Everything is done"},
			wantBullets:  1,
		},
		{
			name: "nothing started",
			tasks: []tasks.Task{
				{Title: "A", Priority: tasks.PriorityHigh},
				{Title: "B", Priority: tasks.PriorityHigh},
				{Title: "C", Priority: tasks.PriorityLow},
				{Title: "D", Priority: tasks.PriorityLow},
			},
			wantContains: []string{"2 high-priority tasks are still pending. Tackle those first.", "Breaking large tasks"},
			wantBullets:  3,
		},
		{
			name: "medium only",
			tasks: []tasks.Task{
				{Title: "A", Priority: tasks.PriorityMedium, Completed: true},
				{Title: "B", Priority: tasks.PriorityMedium},
			},
			wantContains: []string{"Pick one pending task"},
			wantBullets:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.tasks)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Describe() = %q, missing %q", got, want)
				}
			}
			if n := strings.Count(got, "\n- "); n != tt.wantBullets {
				t.Errorf("bullet count = %d, want %d\n%s", n, tt.wantBullets, got)
			}
		})
	}
}

func TestGenerator_FetchInsight(t *testing.T) {
	g := NewGenerator(StaticTasks{{Title: "Only", Priority: tasks.PriorityMedium}})

	got, err := g.FetchInsight(context.Background())
	if err != nil {
		t.Fatalf("FetchInsight() error = %v", err)
	}
	if !strings.Contains(got.Insight, "0 of 1") {
		t.Errorf("Insight = %q", got.Insight)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.FetchInsight(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchInsight(canceled) error = %v, want context.Canceled", err)
	}
}

func TestProviderFunc(t *testing.T) {
	var p Provider = ProviderFunc(func(ctx context.Context) (Insight, error) {
		return Insight{Insight: "X"}, nil
	})
	got, _ := p.FetchInsight(context.Background())
	if got.Insight != "X" {
		t.Errorf("Insight = %q, want X", got.Insight)
	}
}
