package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/insights/internal/tasks"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage the local task list",
	Long: `Manage the task list that local mode and 'insights serve' analyze.

Without a subcommand, lists the tasks.`,
	RunE: runTasksList,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTasksAdd,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <number>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDone,
}

var tasksPriority string

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksDoneCmd)

	tasksAddCmd.Flags().StringVarP(&tasksPriority, "priority", "p", string(tasks.PriorityMedium), "priority: high, medium or low")
}

func tasksPath(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.Tasks.ResolvedFile(), nil
}

// loadTasks treats a missing file as an empty list.
func loadTasks(path string) ([]tasks.Task, error) {
	list, err := tasks.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return list, err
}

func runTasksList(cmd *cobra.Command, args []string) error {
	path, err := tasksPath(cmd)
	if err != nil {
		return err
	}
	list, err := loadTasks(path)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		cmd.Printf("No tasks in %s\n", path)
		return nil
	}
	for i, t := range list {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		cmd.Printf("%2d. [%s] %-6s %s\n", i+1, mark, t.Priority, t.Title)
	}
	s := tasks.Summarize(list)
	cmd.Printf("\n%d of %d completed (%d%%)\n", s.Completed, s.Total, s.CompletionRate())
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	path, err := tasksPath(cmd)
	if err != nil {
		return err
	}
	list, err := loadTasks(path)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return tasks.ErrEmptyTitle
	}
	priority := tasks.Priority(strings.ToLower(tasksPriority))
	switch priority {
	case tasks.PriorityHigh, tasks.PriorityMedium, tasks.PriorityLow:
	default:
		return fmt.Errorf("invalid priority %q: must be high, medium or low", tasksPriority)
	}

	list = append(list, tasks.Task{Title: title, Priority: priority})
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create tasks directory: %w", err)
	}
	if err := tasks.Save(path, list); err != nil {
		return err
	}
	cmd.Printf("Added task %d: %s\n", len(list), title)
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	path, err := tasksPath(cmd)
	if err != nil {
		return err
	}
	list, err := loadTasks(path)
	if err != nil {
		return err
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(list) {
		return fmt.Errorf("invalid task number %q: expected 1-%d", args[0], len(list))
	}
	list[n-1].Completed = true
	if err := tasks.Save(path, list); err != nil {
		return err
	}
	cmd.Printf("Completed task %d: %s\n", n, list[n-1].Title)
	return nil
}
