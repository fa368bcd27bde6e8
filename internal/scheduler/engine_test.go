package scheduler

import (
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule("later", now.Add(80*time.Millisecond)); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule("sooner", now.Add(20*time.Millisecond)); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitJob(t, engine.C(), time.Second)
	second := waitJob(t, engine.C(), time.Second)
	if first != "sooner" || second != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first, second)
	}
}

func TestEngineCancelledJobNeverFires(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule("task-1#1", now.Add(40*time.Millisecond)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := engine.Schedule("task-2#2", now.Add(60*time.Millisecond)); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if !engine.Cancel("task-1#1") {
		t.Fatal("expected pending job to cancel")
	}
	if engine.Cancel("task-1#1") {
		t.Fatal("expected second cancel to report false")
	}

	if got := waitJob(t, engine.C(), time.Second); got != "task-2#2" {
		t.Fatalf("expected only the uncancelled job, got %s", got)
	}
	select {
	case id := <-engine.C():
		t.Fatalf("unexpected fired job %s", id)
	case <-time.After(80 * time.Millisecond):
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", engine.Pending())
	}
}

func TestEngineRescheduleReplacesTrigger(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	_ = engine.Schedule("a", now.Add(10*time.Millisecond))
	_ = engine.Schedule("b", now.Add(40*time.Millisecond))
	_ = engine.Schedule("a", now.Add(90*time.Millisecond))
	if engine.Pending() != 2 {
		t.Fatalf("expected reschedule to keep one entry per id, got %d", engine.Pending())
	}
	first := waitJob(t, engine.C(), time.Second)
	second := waitJob(t, engine.C(), time.Second)
	if first != "b" || second != "a" {
		t.Fatalf("unexpected order: first=%s second=%s", first, second)
	}
}

func TestScheduleValidation(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule("bad", time.Time{}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
	if err := engine.Schedule("", time.Now()); err != ErrInvalidJobID {
		t.Fatalf("expected ErrInvalidJobID, got %v", err)
	}
	engine.Start()
	engine.Stop()
	if err := engine.Schedule("late", time.Now()); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected output channel closed after stop")
	}
}

func waitJob(t *testing.T, ch <-chan string, timeout time.Duration) string {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for job")
		return ""
	}
}
