package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// SnapshotVersion tags exported task collections.
const SnapshotVersion = "acta.snapshot.v1"

// Snapshot is a portable copy of the task collection.
type Snapshot struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	Tasks      []domain.Task `json:"tasks" yaml:"tasks"`
}

// ExportSnapshot copies the collection in insertion order.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Tasks:      tasks,
	}, nil
}

// ImportSnapshot validates snap and upserts every task: unknown ids are appended, known ids replaced in place.
// It returns how many tasks were created and updated.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (created, updated int, err error) {
	if err := snap.Validate(); err != nil {
		return 0, 0, err
	}
	for _, task := range snap.Tasks {
		_, getErr := s.repo.GetTask(ctx, task.ID)
		switch {
		case getErr == nil:
			if err := s.repo.UpdateTask(ctx, task); err != nil {
				return created, updated, fmt.Errorf("update task %q: %w", task.ID, err)
			}
			updated++
		case errors.Is(getErr, ErrNotFound):
			if err := s.repo.CreateTask(ctx, task); err != nil {
				return created, updated, fmt.Errorf("create task %q: %w", task.ID, err)
			}
			created++
		default:
			return created, updated, fmt.Errorf("get task %q: %w", task.ID, getErr)
		}
	}
	return created, updated, nil
}

// Validate checks the version tag, per-task rules, and id uniqueness.
func (s Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	seen := make(map[string]struct{}, len(s.Tasks))
	for i, task := range s.Tasks {
		if strings.TrimSpace(task.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if err := task.Validate(); err != nil {
			return fmt.Errorf("tasks[%d] %q: %w", i, task.ID, err)
		}
		if _, dup := seen[task.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	return nil
}
