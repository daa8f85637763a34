// Package store holds the in-memory task hierarchy: the top-level task
// collection and one subtask subtree per parent task. Mutation is always a
// full-collection or full-subtree swap, never an in-place field edit, so
// independent dialogues can update their own partitions concurrently.
package store

import (
	"context"
	"sync"

	"taskwire/internal/service"
)

// Lister is the read side of the gateway the store loads from.
type Lister interface {
	ListTasks(ctx context.Context) ([]service.Task, error)
}

// Store is the task hierarchy. The zero value is not usable; call New.
type Store struct {
	mu       sync.RWMutex
	tasks    []service.Task
	subtasks map[string][]service.Subtask // parent task ID -> subtree
}

// New creates an empty store.
func New() *Store {
	return &Store{subtasks: make(map[string][]service.Subtask)}
}

// LoadAll replaces the entire top-level collection from the gateway. Fails
// open: on error or cancellation the prior collection is retained and the
// error (nil for cancellation) is returned to the caller.
func (s *Store) LoadAll(ctx context.Context, svc Lister) error {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		// Cancelled reads surface as (nil, nil); do not wipe the collection.
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]service.Task(nil), tasks...)
	return nil
}

// AppendExtracted adds newly extracted tasks to the end of the top-level
// collection, preserving order. Duplicate IDs are not de-duplicated: the
// backend is trusted to avoid collisions, and colliding entries coexist
// until the next reload snapshots the backend's view.
func (s *Store) AppendExtracted(tasks []service.Task) {
	if len(tasks) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

// ReplaceSubtasks unconditionally replaces the full subtask collection for
// the parent. Every decomposition turn is authoritative for the complete
// current subtree; partial merges are not supported.
func (s *Store) ReplaceSubtasks(parentID string, subtasks []service.Subtask) {
	cp := append([]service.Subtask(nil), subtasks...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subtasks[parentID] = cp
}

// Get returns the task with the given ID. With colliding IDs the earliest
// entry wins.
func (s *Store) Get(id string) (service.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Tasks returns a copy of the top-level collection in order.
func (s *Store) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]service.Task(nil), s.tasks...)
}

// Subtasks returns a copy of the current subtree for the parent.
func (s *Store) Subtasks(parentID string) []service.Subtask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]service.Subtask(nil), s.subtasks[parentID]...)
}

// Len returns the number of top-level tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
