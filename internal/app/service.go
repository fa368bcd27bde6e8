package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
	}
}

// Seed loads tasks into an empty collection. Tasks already present by id are skipped.
func (s *Service) Seed(ctx context.Context, tasks []domain.Task) (int, error) {
	added := 0
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			return added, fmt.Errorf("seed task %q: %w", task.ID, err)
		}
		if err := s.repo.CreateTask(ctx, task); err != nil {
			if errors.Is(err, ErrDuplicateID) {
				continue
			}
			return added, fmt.Errorf("seed task %q: %w", task.ID, err)
		}
		added++
	}
	return added, nil
}

// ListTasks returns the collection in insertion order.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx)
}

// GetTask returns one task by id.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.repo.GetTask(ctx, strings.TrimSpace(taskID))
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     string
	DueTime     string
}

// Form field keys shared by validation errors and form renderers.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldStatus      = "status"
	FieldDueDate     = "due_date"
	FieldDueTime     = "due_time"
)

// ValidateCreateInput checks the new-task form and reports one message per failing field.
func ValidateCreateInput(in CreateTaskInput) FieldErrors {
	errs := FieldErrors{}
	switch err := domain.ValidateTitle(in.Title); {
	case errors.Is(err, domain.ErrInvalidTitle):
		errs[FieldTitle] = "Title is required"
	case errors.Is(err, domain.ErrTitleTooLong):
		errs[FieldTitle] = "Title is too long"
	}
	if domain.ValidateDescription(in.Description) != nil {
		errs[FieldDescription] = "Description is too long"
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		errs[FieldPriority] = "Invalid priority"
	}
	if due := strings.TrimSpace(in.DueDate); due != "" {
		if _, err := domain.ParseDueDate(due); err != nil {
			errs[FieldDueDate] = "Invalid due date"
		}
	}
	if dueTime := strings.TrimSpace(in.DueTime); dueTime != "" {
		if domain.ValidateDueTime(dueTime) != nil {
			errs[FieldDueTime] = "Invalid due time"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreateTask validates the form, assigns a fresh id and appends the task as todo.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if errs := ValidateCreateInput(in); errs != nil {
		return domain.Task{}, errs
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      domain.StatusTodo,
		DueDate:     in.DueDate,
		DueTime:     in.DueTime,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// SaveTask replaces the stored task with the same id.
func (s *Service) SaveTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if err := task.Validate(); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, fmt.Errorf("save task %q: %w", task.ID, err)
	}
	return task, nil
}

// Stats summarizes the collection relative to the service clock.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(tasks, s.clock()), nil
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time {
	return s.clock()
}
