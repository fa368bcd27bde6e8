package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/acta/internal/domain"
)

// fakeScheduler records jobs and lets tests advance a simulated clock.
type fakeScheduler struct {
	mu        sync.Mutex
	jobs      map[string]time.Time
	cancelled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]time.Time{}}
}

func (f *fakeScheduler) Schedule(jobID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[jobID] = at
	return nil
}

func (f *fakeScheduler) Cancel(jobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[jobID]; !ok {
		return false
	}
	delete(f.jobs, jobID)
	f.cancelled = append(f.cancelled, jobID)
	return true
}

// due pops every job scheduled at or before now.
func (f *fakeScheduler) due(now time.Time) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for jobID, at := range f.jobs {
		if !at.After(now) {
			out = append(out, jobID)
			delete(f.jobs, jobID)
		}
	}
	return out
}

func (f *fakeScheduler) only(t *testing.T) (string, time.Time) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) != 1 {
		t.Fatalf("expected one scheduled job, got %d", len(f.jobs))
	}
	for jobID, at := range f.jobs {
		return jobID, at
	}
	return "", time.Time{}
}

type fakeSound struct {
	plays int
	err   error
}

func (f *fakeSound) Play(context.Context) error {
	f.plays++
	return f.err
}

type recordingNotifier struct {
	items []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.items = append(r.items, n)
}

func (r *recordingNotifier) last(t *testing.T) Notification {
	t.Helper()
	if len(r.items) == 0 {
		t.Fatal("expected a notification")
	}
	return r.items[len(r.items)-1]
}

type completionHarness struct {
	repo      *fakeRepo
	scheduler *fakeScheduler
	sound     *fakeSound
	notes     *recordingNotifier
	now       time.Time
	completed []domain.Task
	logs      *bytes.Buffer
	ctrl      *Completion
}

func newCompletionHarness(tasks ...domain.Task) *completionHarness {
	h := &completionHarness{
		repo:      newFakeRepo(tasks...),
		scheduler: newFakeScheduler(),
		sound:     &fakeSound{},
		notes:     &recordingNotifier{},
		now:       time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		logs:      &bytes.Buffer{},
	}
	h.ctrl = NewCompletion(h.repo, CompletionConfig{
		Scheduler:   h.scheduler,
		Sound:       h.sound,
		Notifier:    h.notes,
		Clock:       func() time.Time { return h.now },
		Logger:      charmLog.New(h.logs),
		OnCompleted: func(task domain.Task) { h.completed = append(h.completed, task) },
	})
	return h
}

// advance moves the simulated clock and fires whatever became due.
func (h *completionHarness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	h.now = h.now.Add(d)
	for _, jobID := range h.scheduler.due(h.now) {
		if _, err := h.ctrl.Fire(context.Background(), jobID); err != nil {
			t.Fatalf("Fire(%q) error = %v", jobID, err)
		}
	}
}

func grouped(h *completionHarness) []string {
	tasks, _ := h.repo.ListTasks(context.Background())
	return taskIDs(GroupByDueDate(tasks, "", h.ctrl.CompletingIDs()).Flatten())
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestToggleCompletesAfterExactDelay(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "4", Title: "Documentation", Priority: domain.PriorityLow, Status: domain.StatusTodo, DueDate: "2026-01-05"})

	outcome, err := h.ctrl.Toggle(ctx, "4")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if outcome != OutcomeCompleting {
		t.Fatalf("expected OutcomeCompleting, got %v", outcome)
	}
	if containsID(grouped(h), "4") {
		t.Fatal("expected completing task excluded from groups")
	}
	state := h.ctrl.State("4")
	if state.Phase != PhaseCompleting || !state.Since.Equal(h.now) {
		t.Fatalf("unexpected state %#v", state)
	}
	if _, at := h.scheduler.only(t); !at.Equal(h.now.Add(400 * time.Millisecond)) {
		t.Fatalf("expected commit at +400ms, got %v", at.Sub(h.now))
	}
	if h.sound.plays != 1 {
		t.Fatalf("expected one sound, got %d", h.sound.plays)
	}

	h.advance(t, 399*time.Millisecond)
	if h.repo.status("4") != domain.StatusTodo {
		t.Fatal("expected no commit before 400ms")
	}
	h.advance(t, time.Millisecond)
	if h.repo.status("4") != domain.StatusCompleted {
		t.Fatalf("expected completed at 400ms, got %q", h.repo.status("4"))
	}
	if h.ctrl.IsCompleting("4") {
		t.Fatal("expected completing set cleared")
	}
	if !containsID(grouped(h), "4") {
		t.Fatal("expected completed task back in the task list")
	}
	note := h.notes.last(t)
	if note.Kind != NotifySuccess || note.Title != "Task completed!" || note.Description != "Documentation" {
		t.Fatalf("unexpected notification %#v", note)
	}
	if note.Action == nil || note.Action.Label != "UNDO" {
		t.Fatalf("expected UNDO action, got %#v", note.Action)
	}
	if len(h.completed) != 1 || h.completed[0].ID != "4" {
		t.Fatalf("expected completion callback, got %#v", h.completed)
	}

	if err := note.Action.Run(ctx); err != nil {
		t.Fatalf("UNDO error = %v", err)
	}
	if h.repo.status("4") != domain.StatusTodo {
		t.Fatalf("expected todo after undo, got %q", h.repo.status("4"))
	}
	if restored := h.notes.last(t); restored.Title != "Task restored" || restored.Kind != NotifyInfo {
		t.Fatalf("unexpected confirmation %#v", restored)
	}
}

func TestUndoRestoresInProgressStatus(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "1", Title: "Design system update", Priority: domain.PriorityHigh, Status: domain.StatusInProgress})
	if _, err := h.ctrl.Toggle(ctx, "1"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	h.advance(t, CompletionDelay)
	if err := h.notes.last(t).Action.Run(ctx); err != nil {
		t.Fatalf("UNDO error = %v", err)
	}
	if h.repo.status("1") != domain.StatusInProgress {
		t.Fatalf("expected in_progress restored, got %q", h.repo.status("1"))
	}
}

func TestUndoRestoresStatusSeenAtToggle(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "8", Title: "Performance optimization", Priority: domain.PriorityMedium, Status: domain.StatusInProgress})
	if _, err := h.ctrl.Toggle(ctx, "8"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	changed, err := h.repo.GetTask(ctx, "8")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	changed.Status = domain.StatusTodo
	if err := h.repo.UpdateTask(ctx, changed); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	h.advance(t, CompletionDelay)
	if h.repo.status("8") != domain.StatusCompleted {
		t.Fatalf("expected completed, got %q", h.repo.status("8"))
	}
	if err := h.notes.last(t).Action.Run(ctx); err != nil {
		t.Fatalf("UNDO error = %v", err)
	}
	if h.repo.status("8") != domain.StatusInProgress {
		t.Fatalf("expected in_progress from toggle time, got %q", h.repo.status("8"))
	}
}

func TestUncompleteIsImmediateWithUndo(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "4", Title: "Documentation", Priority: domain.PriorityLow, Status: domain.StatusCompleted})
	outcome, err := h.ctrl.Toggle(ctx, "4")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if outcome != OutcomeUncompleted {
		t.Fatalf("expected OutcomeUncompleted, got %v", outcome)
	}
	if h.repo.status("4") != domain.StatusTodo {
		t.Fatalf("expected todo immediately, got %q", h.repo.status("4"))
	}
	if h.sound.plays != 0 {
		t.Fatal("expected no sound on uncomplete")
	}
	if len(h.scheduler.jobs) != 0 {
		t.Fatal("expected nothing scheduled on uncomplete")
	}
	note := h.notes.last(t)
	if note.Kind != NotifyInfo || note.Title != "Task marked as incomplete" || note.Action == nil {
		t.Fatalf("unexpected notification %#v", note)
	}
	notesBefore := len(h.notes.items)
	if err := note.Action.Run(ctx); err != nil {
		t.Fatalf("UNDO error = %v", err)
	}
	if h.repo.status("4") != domain.StatusCompleted {
		t.Fatalf("expected re-completed immediately, got %q", h.repo.status("4"))
	}
	if len(h.notes.items) != notesBefore {
		t.Fatal("expected re-complete without a further notification")
	}
}

func TestSecondToggleCancelsPendingCompletion(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "5", Title: "Code review session", Priority: domain.PriorityMedium, Status: domain.StatusTodo})
	if _, err := h.ctrl.Toggle(ctx, "5"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	jobID, _ := h.scheduler.only(t)
	outcome, err := h.ctrl.Toggle(ctx, "5")
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if outcome != OutcomeCancelled {
		t.Fatalf("expected OutcomeCancelled, got %v", outcome)
	}
	if len(h.scheduler.cancelled) != 1 || h.scheduler.cancelled[0] != jobID {
		t.Fatalf("expected job %q cancelled, got %v", jobID, h.scheduler.cancelled)
	}
	h.advance(t, time.Second)
	if h.repo.status("5") != domain.StatusTodo {
		t.Fatalf("expected no commit after cancel, got %q", h.repo.status("5"))
	}
	if _, err := h.ctrl.Fire(ctx, jobID); !errors.Is(err, ErrNoPendingCompletion) {
		t.Fatalf("expected stale job rejected, got %v", err)
	}
}

func TestStaleJobDoesNotCommitNewerToggle(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "5", Title: "Code review session", Priority: domain.PriorityMedium, Status: domain.StatusTodo})
	_, _ = h.ctrl.Toggle(ctx, "5")
	first, _ := h.scheduler.only(t)
	_, _ = h.ctrl.Toggle(ctx, "5")
	_, _ = h.ctrl.Toggle(ctx, "5")
	second, _ := h.scheduler.only(t)
	if first == second {
		t.Fatal("expected a fresh job id per completing phase")
	}
	if _, err := h.ctrl.Fire(ctx, first); !errors.Is(err, ErrNoPendingCompletion) {
		t.Fatalf("expected stale job rejected, got %v", err)
	}
	if !h.ctrl.IsCompleting("5") {
		t.Fatal("expected newer completion still pending")
	}
}

func TestCloseCancelsPendingCompletions(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(
		domain.Task{ID: "2", Title: "API integration", Priority: domain.PriorityHigh, Status: domain.StatusTodo},
		domain.Task{ID: "3", Title: "Write unit tests", Priority: domain.PriorityMedium, Status: domain.StatusTodo},
	)
	_, _ = h.ctrl.Toggle(ctx, "2")
	_, _ = h.ctrl.Toggle(ctx, "3")
	h.ctrl.Close()
	if len(h.ctrl.CompletingIDs()) != 0 {
		t.Fatal("expected completing set cleared on close")
	}
	h.advance(t, time.Second)
	if h.repo.status("2") != domain.StatusTodo || h.repo.status("3") != domain.StatusTodo {
		t.Fatal("expected no commits after close")
	}
	if len(h.scheduler.cancelled) != 2 {
		t.Fatalf("expected two cancelled jobs, got %v", h.scheduler.cancelled)
	}
}

func TestSoundFailureIsLoggedAndSwallowed(t *testing.T) {
	ctx := context.Background()
	h := newCompletionHarness(domain.Task{ID: "6", Title: "Bug fixes", Priority: domain.PriorityHigh, Status: domain.StatusTodo})
	h.sound.err = errors.New("no audio device")
	outcome, err := h.ctrl.Toggle(ctx, "6")
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if outcome != OutcomeCompleting {
		t.Fatalf("expected completion to proceed, got %v", outcome)
	}
	if !strings.Contains(h.logs.String(), "completion sound failed") || !strings.Contains(h.logs.String(), "no audio device") {
		t.Fatalf("expected warning logged, got %q", h.logs.String())
	}
	h.advance(t, CompletionDelay)
	if h.repo.status("6") != domain.StatusCompleted {
		t.Fatal("expected completion despite sound failure")
	}
}

func TestToggleUnknownTask(t *testing.T) {
	h := newCompletionHarness()
	if _, err := h.ctrl.Toggle(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(h.ctrl.CompletingIDs()) != 0 {
		t.Fatal("expected nothing pending")
	}
}
