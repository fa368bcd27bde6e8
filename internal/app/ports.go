package app

import (
	"context"
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// Repository represents the ordered task collection used by this package.
type Repository interface {
	ListTasks(context.Context) ([]domain.Task, error)
	GetTask(context.Context, string) (domain.Task, error)
	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
}

// Scheduler defers one job until a wall-clock instant and can cancel it before it fires.
type Scheduler interface {
	Schedule(jobID string, at time.Time) error
	Cancel(jobID string) bool
}

// SoundPlayer plays short feedback sounds.
type SoundPlayer interface {
	Play(context.Context) error
}

// Notifier presents user-facing notifications.
type Notifier interface {
	Notify(Notification)
}
