// Package tasks loads the task list that local insights are generated from
// and keeps it current while the file changes on disk.
package tasks

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Priority ranks a task. Unknown values normalize to PriorityMedium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is a single to-do item.
type Task struct {
	Title     string   `yaml:"title"`
	Priority  Priority `yaml:"priority"`
	Completed bool     `yaml:"completed"`
}

// file is the on-disk layout:
//
//	tasks:
//	  - title: Finish the report
//	    priority: high
//	    completed: false
type file struct {
	Tasks []Task `yaml:"tasks"`
}

// ErrEmptyTitle is returned when a task has no title.
var ErrEmptyTitle = errors.New("task title cannot be empty")

// Parse decodes a tasks document and normalizes priorities.
func Parse(data []byte) ([]Task, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}

	out := make([]Task, 0, len(doc.Tasks))
	for i, t := range doc.Tasks {
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			return nil, fmt.Errorf("task %d: %w", i+1, ErrEmptyTitle)
		}
		t.Priority = normalizePriority(t.Priority)
		out = append(out, t)
	}
	return out, nil
}

// Load reads and parses the tasks file at path.
func Load(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	return Parse(data)
}

// Save writes tasks to path in the format Load reads.
func Save(path string, list []Task) error {
	data, err := yaml.Marshal(file{Tasks: list})
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}
	return nil
}

func normalizePriority(p Priority) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(string(p)))) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Summary holds the counts insights are derived from.
type Summary struct {
	Total       int
	Completed   int
	Pending     int
	HighPending int
	LowPending  int
}

// Summarize counts tasks by completion and priority.
func Summarize(list []Task) Summary {
	var s Summary
	for _, t := range list {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		switch t.Priority {
		case PriorityHigh:
			s.HighPending++
		case PriorityLow:
			s.LowPending++
		}
	}
	return s
}

// CompletionRate returns the completed share as a percentage (0-100).
func (s Summary) CompletionRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}
