package app

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/evanschultz/acta/internal/domain"
)

func TestEditorCancelLeavesCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	seed := SeedTasks()[:3]
	repo := newFakeRepo(seed...)
	svc := NewService(repo, sequentialIDs(), nil)

	var editor Editor
	editor.Open(seed[0])
	editor.ToggleField(EditTitle)
	if err := editor.SetTitle("Something else"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	if err := editor.SetStatus(domain.StatusCompleted); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	editor.Cancel()
	if editor.IsOpen() {
		t.Fatal("expected editor closed")
	}

	got, err := svc.GetTask(ctx, seed[0].ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if !reflect.DeepEqual(got, seed[0]) {
		t.Fatalf("expected record unchanged after cancel, got %#v", got)
	}
}

func TestEditorSaveReplacesOnlyStagedTask(t *testing.T) {
	ctx := context.Background()
	seed := SeedTasks()[:3]
	repo := newFakeRepo(seed...)
	svc := NewService(repo, sequentialIDs(), nil)

	var editor Editor
	editor.Open(seed[1])
	editor.ToggleField(EditTitle)
	editor.ToggleField(EditPriority)
	if !editor.Editing(EditTitle) || !editor.Editing(EditPriority) {
		t.Fatal("expected simultaneous field edits allowed")
	}
	mustNoErr(t, editor.SetTitle("  API integration (v2) "))
	mustNoErr(t, editor.SetDescription("Wire the refresh flow"))
	mustNoErr(t, editor.SetPriority(domain.PriorityLow))
	mustNoErr(t, editor.SetDueDate("2026-01-09"))
	mustNoErr(t, editor.SetDueTime("08:30"))

	saved, err := editor.Save(ctx, svc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if editor.IsOpen() {
		t.Fatal("expected editor closed after save")
	}
	if saved.Title != "API integration (v2)" || saved.DueDate != "2026-01-09" || saved.DueTime != "08:30" {
		t.Fatalf("unexpected saved task %#v", saved)
	}
	tasks, _ := svc.ListTasks(ctx)
	if !reflect.DeepEqual(tasks[0], seed[0]) || !reflect.DeepEqual(tasks[2], seed[2]) {
		t.Fatal("expected other records untouched")
	}
	if !reflect.DeepEqual(tasks[1], saved) {
		t.Fatalf("expected staged copy committed, got %#v", tasks[1])
	}
}

func TestEditorOpenReinitializesForNewTask(t *testing.T) {
	seed := SeedTasks()
	var editor Editor
	editor.Open(seed[0])
	editor.ToggleField(EditDescription)
	mustNoErr(t, editor.SetDescription("stale edit"))

	editor.Open(seed[2])
	if editor.TaskID() != seed[2].ID {
		t.Fatalf("expected staged id %q, got %q", seed[2].ID, editor.TaskID())
	}
	if editor.Staged().Description != seed[2].Description {
		t.Fatalf("expected stale edit dropped, got %q", editor.Staged().Description)
	}
	if editor.AnyEditing() {
		t.Fatal("expected edit modes cleared on open")
	}
}

func TestEditorStatusAndCompletedStayDerivable(t *testing.T) {
	var editor Editor
	editor.Open(domain.Task{ID: "1", Title: "Design system update", Priority: domain.PriorityHigh, Status: domain.StatusInProgress})
	mustNoErr(t, editor.SetCompleted(true))
	if editor.Staged().Status != domain.StatusCompleted || !editor.Staged().Completed() {
		t.Fatalf("expected completed, got %q", editor.Staged().Status)
	}
	mustNoErr(t, editor.SetStatus(domain.StatusTodo))
	if editor.Staged().Completed() {
		t.Fatal("expected completed flag to follow status")
	}
	mustNoErr(t, editor.SetStatus(domain.StatusCompleted))
	mustNoErr(t, editor.SetCompleted(false))
	if editor.Staged().Status != domain.StatusTodo {
		t.Fatalf("expected todo after clearing completed, got %q", editor.Staged().Status)
	}
}

func TestEditorRejectsInvalidFieldsAndKeepsStagedValue(t *testing.T) {
	var editor Editor
	if err := editor.SetTitle("x"); !errors.Is(err, ErrEditorClosed) {
		t.Fatalf("expected ErrEditorClosed, got %v", err)
	}
	editor.Open(SeedTasks()[0])
	if err := editor.SetTitle(""); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if err := editor.SetDueTime("07:45"); !errors.Is(err, domain.ErrInvalidDueTime) {
		t.Fatalf("expected ErrInvalidDueTime, got %v", err)
	}
	if err := editor.SetPriority("urgent"); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if editor.Staged().Title != "Design system update" || editor.Staged().DueTime != "14:00" {
		t.Fatalf("expected staged values kept, got %#v", editor.Staged())
	}
}

func TestEditorSaveFailureKeepsStagedEdits(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(SeedTasks()[:1]...)
	repo.updateErr = errors.New("disk full")
	svc := NewService(repo, sequentialIDs(), nil)

	var editor Editor
	editor.Open(SeedTasks()[0])
	mustNoErr(t, editor.SetTitle("Renamed"))
	if _, err := editor.Save(ctx, svc); err == nil {
		t.Fatal("expected save error")
	}
	if !editor.IsOpen() || editor.Staged().Title != "Renamed" {
		t.Fatal("expected editor to stay open with staged edits")
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}
}
