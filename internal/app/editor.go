package app

import (
	"context"
	"strings"

	"github.com/evanschultz/acta/internal/domain"
)

// EditorField names one editable task field.
type EditorField string

// Editable fields, in display order.
const (
	EditTitle       EditorField = FieldTitle
	EditDescription EditorField = FieldDescription
	EditPriority    EditorField = FieldPriority
	EditStatus      EditorField = FieldStatus
	EditDueDate     EditorField = FieldDueDate
	EditDueTime     EditorField = FieldDueTime
)

// EditorFields returns the editable fields in display order.
func EditorFields() []EditorField {
	return []EditorField{EditTitle, EditDescription, EditPriority, EditStatus, EditDueDate, EditDueTime}
}

// TaskSaver commits a staged task back into the collection.
type TaskSaver interface {
	SaveTask(context.Context, domain.Task) (domain.Task, error)
}

// Editor stages a copy of one task. Nothing reaches the collection until Save.
type Editor struct {
	open    bool
	staged  domain.Task
	editing map[EditorField]bool
}

// Open (re)initializes the staged copy from task and clears all field edit modes.
func (e *Editor) Open(task domain.Task) {
	e.open = true
	e.staged = task
	e.editing = map[EditorField]bool{}
}

// IsOpen reports whether a task is staged.
func (e *Editor) IsOpen() bool {
	return e.open
}

// TaskID returns the id of the staged task.
func (e *Editor) TaskID() string {
	if !e.open {
		return ""
	}
	return e.staged.ID
}

// Staged returns the staged copy.
func (e *Editor) Staged() domain.Task {
	return e.staged
}

// ToggleField flips one field in or out of edit mode. Several fields may be editing at once.
func (e *Editor) ToggleField(field EditorField) {
	if !e.open {
		return
	}
	e.editing[field] = !e.editing[field]
}

// Editing reports whether field is in edit mode.
func (e *Editor) Editing(field EditorField) bool {
	return e.open && e.editing[field]
}

// AnyEditing reports whether at least one field is in edit mode.
func (e *Editor) AnyEditing() bool {
	for _, on := range e.editing {
		if on {
			return true
		}
	}
	return false
}

// SetTitle stages a new title.
func (e *Editor) SetTitle(title string) error {
	if !e.open {
		return ErrEditorClosed
	}
	if err := domain.ValidateTitle(title); err != nil {
		return err
	}
	e.staged.Title = strings.TrimSpace(title)
	return nil
}

// SetDescription stages a new description.
func (e *Editor) SetDescription(description string) error {
	if !e.open {
		return ErrEditorClosed
	}
	if err := domain.ValidateDescription(description); err != nil {
		return err
	}
	e.staged.Description = strings.TrimSpace(description)
	return nil
}

// SetPriority stages a new priority.
func (e *Editor) SetPriority(priority domain.Priority) error {
	if !e.open {
		return ErrEditorClosed
	}
	if !priority.IsValid() {
		return domain.ErrInvalidPriority
	}
	e.staged.Priority = priority
	return nil
}

// SetStatus stages a new status. Completed() follows because it derives from status.
func (e *Editor) SetStatus(status domain.Status) error {
	if !e.open {
		return ErrEditorClosed
	}
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}
	e.staged.Status = status
	return nil
}

// SetCompleted stages the done flag through status.
func (e *Editor) SetCompleted(done bool) error {
	if !e.open {
		return ErrEditorClosed
	}
	e.staged.SetCompleted(done)
	return nil
}

// SetDueDate stages a due date. An empty value removes the task from dated groups.
func (e *Editor) SetDueDate(key string) error {
	if !e.open {
		return ErrEditorClosed
	}
	key = strings.TrimSpace(key)
	if key != "" {
		if _, err := domain.ParseDueDate(key); err != nil {
			return err
		}
	}
	e.staged.DueDate = key
	return nil
}

// SetDueTime stages a due time from the half-hour slot set, or clears it.
func (e *Editor) SetDueTime(value string) error {
	if !e.open {
		return ErrEditorClosed
	}
	value = strings.TrimSpace(value)
	if value != "" {
		if err := domain.ValidateDueTime(value); err != nil {
			return err
		}
	}
	e.staged.DueTime = value
	return nil
}

// Save commits the whole staged copy in one replace keyed by id and closes the editor.
// On failure the editor stays open with its staged edits.
func (e *Editor) Save(ctx context.Context, saver TaskSaver) (domain.Task, error) {
	if !e.open {
		return domain.Task{}, ErrEditorClosed
	}
	saved, err := saver.SaveTask(ctx, e.staged)
	if err != nil {
		return domain.Task{}, err
	}
	e.close()
	return saved, nil
}

// Cancel discards staged edits and closes the editor.
func (e *Editor) Cancel() {
	e.close()
}

func (e *Editor) close() {
	e.open = false
	e.staged = domain.Task{}
	e.editing = nil
}
