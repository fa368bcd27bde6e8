package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/domain"
)

// Repository is the ordered in-memory task collection.
type Repository struct {
	mu    sync.RWMutex
	tasks []domain.Task
}

// New constructs an empty repository.
func New() *Repository {
	return &Repository{}
}

// ListTasks returns a copy of the collection in insertion order.
func (r *Repository) ListTasks(_ context.Context) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tasks), nil
}

// GetTask returns one task by id.
func (r *Repository) GetTask(_ context.Context, id string) (domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(id)
	if idx < 0 {
		return domain.Task{}, fmt.Errorf("task %q: %w", id, app.ErrNotFound)
	}
	return r.tasks[idx], nil
}

// CreateTask appends a task with a previously unused id.
func (r *Repository) CreateTask(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexLocked(task.ID) >= 0 {
		return fmt.Errorf("task %q: %w", task.ID, app.ErrDuplicateID)
	}
	r.tasks = append(r.tasks, task)
	return nil
}

// UpdateTask replaces the task with the same id in place.
func (r *Repository) UpdateTask(_ context.Context, task domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(task.ID)
	if idx < 0 {
		return fmt.Errorf("task %q: %w", task.ID, app.ErrNotFound)
	}
	r.tasks[idx] = task
	return nil
}

func (r *Repository) indexLocked(id string) int {
	return slices.IndexFunc(r.tasks, func(t domain.Task) bool { return t.ID == id })
}
