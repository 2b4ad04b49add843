package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/insights/internal/logging"
)

// DefaultDebounce is how long the watcher waits after the last write before
// reloading.
const DefaultDebounce = 100 * time.Millisecond

// Store holds the current task list loaded from a file.
type Store struct {
	path     string
	logger   *logging.Logger
	debounce time.Duration

	mu    sync.RWMutex
	tasks []Task
}

// NewStore loads path and returns a Store holding its tasks.
func NewStore(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Store{
		path:     path,
		logger:   logger.WithComponent("tasks"),
		debounce: DefaultDebounce,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the store reads.
func (s *Store) Path() string {
	return s.path
}

// Tasks returns a copy of the current list.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Reload re-reads the file. On error the previous list is kept.
func (s *Store) Reload() error {
	list, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = list
	s.mu.Unlock()
	return nil
}

// Watch reloads the store whenever the file is written, created or renamed
// into place, and calls onReload with the outcome of each reload. It blocks
// until ctx is done.
func (s *Store) Watch(ctx context.Context, onReload func(count int, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	target := filepath.Base(s.path)
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	for {
		select {
		case <-ctx.Done():
			debounceTimer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounceTimer.Reset(s.debounce)

		case <-debounceTimer.C:
			err := s.Reload()
			count := len(s.Tasks())
			if err != nil {
				s.logger.Warn("tasks reload failed, keeping previous list", "path", s.path, "error", err.Error())
			} else {
				s.logger.Info("tasks reloaded", "path", s.path, "count", count)
			}
			if onReload != nil {
				onReload(count, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("tasks watcher error", "error", err.Error())
		}
	}
}
