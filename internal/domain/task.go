package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits enforced on task text.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// DateKeyLayout is the layout used for created and due date keys produced by this package.
const DateKeyLayout = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns the priorities in ascending order.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return slices.Contains(validPriorities, p)
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Statuses returns the statuses in workflow order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return slices.Contains(validStatuses, s)
}

// Label returns the human label for a status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

type Task struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Priority    Priority `json:"priority" yaml:"priority"`
	Status      Status   `json:"status" yaml:"status"`
	CreatedAt   string   `json:"createdAt" yaml:"created_at"`
	DueDate     string   `json:"dueDate,omitempty" yaml:"due_date,omitempty"`
	DueTime     string   `json:"dueTime,omitempty" yaml:"due_time,omitempty"`
}

type TaskInput struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	CreatedAt   string
	DueDate     string
	DueTime     string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.CreatedAt = strings.TrimSpace(in.CreatedAt)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.DueTime = strings.TrimSpace(in.DueTime)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.CreatedAt == "" {
		in.CreatedAt = now.Format(DateKeyLayout)
	}

	task := Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		CreatedAt:   in.CreatedAt,
		DueDate:     in.DueDate,
		DueTime:     in.DueTime,
	}
	if err := task.Validate(); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Validate checks every field rule on an already-built task.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrInvalidID
	}
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := ValidateDescription(t.Description); err != nil {
		return err
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.DueDate != "" {
		if _, err := ParseDueDate(t.DueDate); err != nil {
			return err
		}
	}
	if t.DueTime != "" {
		if err := ValidateDueTime(t.DueTime); err != nil {
			return err
		}
	}
	return nil
}

// Completed reports whether the task is done. Status is the single source of truth.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// SetCompleted maps the done flag back onto status.
func (t *Task) SetCompleted(done bool) {
	switch {
	case done:
		t.Status = StatusCompleted
	case t.Status == StatusCompleted:
		t.Status = StatusTodo
	}
}

// HasDueDate reports whether the task belongs to a dated group.
func (t Task) HasDueDate() bool {
	return strings.TrimSpace(t.DueDate) != ""
}

// ValidateTitle enforces the required, length-limited title rule.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateDescription enforces the optional description length limit.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
