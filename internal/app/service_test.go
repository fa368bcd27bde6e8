package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evanschultz/acta/internal/domain"
)

// fakeRepo is an ordered task slice that mirrors the in-memory adapter.
type fakeRepo struct {
	mu        sync.Mutex
	tasks     []domain.Task
	updateErr error
}

func newFakeRepo(tasks ...domain.Task) *fakeRepo {
	return &fakeRepo{tasks: append([]domain.Task(nil), tasks...)}
}

func (f *fakeRepo) ListTasks(_ context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return domain.Task{}, ErrNotFound
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == t.ID {
			return ErrDuplicateID
		}
	}
	f.tasks = append(f.tasks, t)
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for idx, task := range f.tasks {
		if task.ID == t.ID {
			f.tasks[idx] = t
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) status(id string) domain.Status {
	task, _ := f.GetTask(context.Background(), id)
	return task.Status
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func fixedClock(now time.Time) Clock {
	return func() time.Time { return now }
}

func TestSeedTasksAreValidAndUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, task := range SeedTasks() {
		if err := task.Validate(); err != nil {
			t.Fatalf("seed task %q invalid: %v", task.ID, err)
		}
		if _, ok := seen[task.ID]; ok {
			t.Fatalf("duplicate seed id %q", task.ID)
		}
		seen[task.ID] = struct{}{}
	}
	if len(seen) != 24 {
		t.Fatalf("expected 24 seed tasks, got %d", len(seen))
	}
}

func TestServiceSeedSkipsExistingIDs(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, sequentialIDs(), nil)
	added, err := svc.Seed(ctx, SeedTasks())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if added != 24 {
		t.Fatalf("expected 24 added, got %d", added)
	}
	added, err = svc.Seed(ctx, SeedTasks())
	if err != nil {
		t.Fatalf("Seed() second run error = %v", err)
	}
	if added != 0 {
		t.Fatalf("expected reseed to be a no-op, got %d", added)
	}
}

func TestCreateTaskAppendsTodoWithFreshID(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(SeedTasks()[:2]...)
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	svc := NewService(repo, sequentialIDs(), fixedClock(now))

	task, err := svc.CreateTask(ctx, CreateTaskInput{
		Title:    "Prepare demo",
		Priority: domain.PriorityHigh,
		DueDate:  "2026-01-06",
		DueTime:  "13:30",
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID != "new-1" || task.Status != domain.StatusTodo || task.CreatedAt != "2026-01-05" {
		t.Fatalf("unexpected created task %#v", task)
	}
	tasks, _ := svc.ListTasks(ctx)
	if len(tasks) != 3 || tasks[2].ID != "new-1" {
		t.Fatalf("expected task appended at the end, got %#v", tasks)
	}

	second, err := svc.CreateTask(ctx, CreateTaskInput{Title: "Second"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if second.ID == task.ID {
		t.Fatal("expected unique ids")
	}
	if second.Priority != domain.PriorityMedium {
		t.Fatalf("expected default medium priority, got %q", second.Priority)
	}
}

func TestCreateTaskRejectsLongTitle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewService(repo, sequentialIDs(), nil)

	_, err := svc.CreateTask(ctx, CreateTaskInput{Title: strings.Repeat("x", 101)})
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if fieldErrs.Field(FieldTitle) != "Title is too long" {
		t.Fatalf("unexpected title message %q", fieldErrs.Field(FieldTitle))
	}
	if tasks, _ := svc.ListTasks(ctx); len(tasks) != 0 {
		t.Fatalf("expected no task added, got %d", len(tasks))
	}
}

func TestValidateCreateInputMessages(t *testing.T) {
	errs := ValidateCreateInput(CreateTaskInput{
		Title:       "  ",
		Description: strings.Repeat("d", 501),
		Priority:    "urgent",
		DueDate:     "soon",
		DueTime:     "10:10",
	})
	want := FieldErrors{
		FieldTitle:       "Title is required",
		FieldDescription: "Description is too long",
		FieldPriority:    "Invalid priority",
		FieldDueDate:     "Invalid due date",
		FieldDueTime:     "Invalid due time",
	}
	if !reflect.DeepEqual(errs, want) {
		t.Fatalf("ValidateCreateInput() = %#v, want %#v", errs, want)
	}
	if !strings.HasPrefix(errs.Error(), "validation failed: description:") {
		t.Fatalf("unexpected error text %q", errs.Error())
	}
	if got := ValidateCreateInput(CreateTaskInput{Title: "ok"}); got != nil {
		t.Fatalf("expected nil errors, got %#v", got)
	}
}

func TestSaveTaskReplacesOnlyMatchingRecord(t *testing.T) {
	ctx := context.Background()
	seed := SeedTasks()[:3]
	repo := newFakeRepo(seed...)
	svc := NewService(repo, sequentialIDs(), nil)

	edited := seed[1]
	edited.Title = "API integration v2"
	edited.Priority = domain.PriorityLow
	if _, err := svc.SaveTask(ctx, edited); err != nil {
		t.Fatalf("SaveTask() error = %v", err)
	}
	tasks, _ := svc.ListTasks(ctx)
	if !reflect.DeepEqual(tasks[0], seed[0]) || !reflect.DeepEqual(tasks[2], seed[2]) {
		t.Fatal("expected other records to be unchanged")
	}
	if !reflect.DeepEqual(tasks[1], edited) {
		t.Fatalf("expected edited record, got %#v", tasks[1])
	}

	if _, err := svc.SaveTask(ctx, domain.Task{ID: "ghost", Title: "x", Priority: domain.PriorityLow, Status: domain.StatusTodo}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
	stats := ComputeStats(SeedTasks(), now)
	if stats.Total != 24 || stats.Completed != 1 || stats.InProgress != 2 {
		t.Fatalf("unexpected counters %#v", stats)
	}
	// ids 1 and 2 are open and due on 2026-01-04.
	if stats.Overdue != 2 {
		t.Fatalf("expected 2 overdue, got %d", stats.Overdue)
	}
	// five tasks due 2026-01-05, one completed.
	if stats.DueToday != 5 || stats.DoneToday != 1 || stats.DailyProgress != 20 {
		t.Fatalf("unexpected daily progress %#v", stats)
	}
	if empty := ComputeStats(nil, now); empty.DailyProgress != 0 {
		t.Fatalf("expected 0 progress for empty day, got %d", empty.DailyProgress)
	}
}
