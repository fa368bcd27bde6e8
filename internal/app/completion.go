package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/acta/internal/domain"
)

// CompletionDelay is how long a task stays in the completing phase before the status flip commits.
const CompletionDelay = 400 * time.Millisecond

// CompletionPhase is the per-task state of the completion workflow.
type CompletionPhase int

const (
	PhaseIdle CompletionPhase = iota
	PhaseCompleting
)

// CompletionState describes one task's position in the workflow.
type CompletionState struct {
	Phase  CompletionPhase
	TaskID string
	Since  time.Time
	JobID  string
}

// ToggleOutcome reports which transition a toggle performed.
type ToggleOutcome int

const (
	// OutcomeCompleting means the task entered the completing phase and a commit is scheduled.
	OutcomeCompleting ToggleOutcome = iota
	// OutcomeUncompleted means a completed task went straight back to todo.
	OutcomeUncompleted
	// OutcomeCancelled means a pending completion was aborted before it committed.
	OutcomeCancelled
)

// Receipt records one committed status change so it can be reverted.
type Receipt struct {
	TaskID   string
	Previous domain.Status
	Applied  domain.Status
}

// CompletionConfig holds the collaborators of the completion workflow.
type CompletionConfig struct {
	Scheduler   Scheduler
	Sound       SoundPlayer
	Notifier    Notifier
	Clock       Clock
	Logger      *charmLog.Logger
	OnCompleted func(domain.Task)
}

// pendingCompletion is a scheduled but uncommitted completion.
type pendingCompletion struct {
	jobID    string
	since    time.Time
	previous domain.Status
}

// Completion drives the idle -> completing -> completed workflow with undo.
type Completion struct {
	mu          sync.Mutex
	repo        Repository
	scheduler   Scheduler
	sound       SoundPlayer
	notifier    Notifier
	clock       Clock
	logger      *charmLog.Logger
	onCompleted func(domain.Task)
	seq         uint64
	pending     map[string]pendingCompletion
	jobs        map[string]string
}

// NewCompletion constructs a new value for this package.
func NewCompletion(repo Repository, cfg CompletionConfig) *Completion {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Notifier == nil {
		cfg.Notifier = discardNotifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = charmLog.Default()
	}
	return &Completion{
		repo:        repo,
		scheduler:   cfg.Scheduler,
		sound:       cfg.Sound,
		notifier:    cfg.Notifier,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
		onCompleted: cfg.OnCompleted,
		pending:     map[string]pendingCompletion{},
		jobs:        map[string]string{},
	}
}

// Toggle flips a task's completion. Open tasks enter the completing phase, completed tasks
// reopen immediately, and a task that is already completing has its pending commit cancelled.
func (c *Completion) Toggle(ctx context.Context, taskID string) (ToggleOutcome, error) {
	c.mu.Lock()
	if p, ok := c.pending[taskID]; ok {
		c.cancelLocked(taskID, p)
		c.mu.Unlock()
		c.logger.Debug("pending completion cancelled", "task_id", taskID)
		return OutcomeCancelled, nil
	}

	task, err := c.repo.GetTask(ctx, taskID)
	if err != nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("toggle task %q: %w", taskID, err)
	}

	if task.Completed() {
		task.Status = domain.StatusTodo
		if err := c.repo.UpdateTask(ctx, task); err != nil {
			c.mu.Unlock()
			return 0, fmt.Errorf("reopen task %q: %w", taskID, err)
		}
		c.mu.Unlock()
		receipt := Receipt{TaskID: taskID, Previous: domain.StatusCompleted, Applied: domain.StatusTodo}
		c.notifier.Notify(Notification{
			Kind:   NotifyInfo,
			Title:  "Task marked as incomplete",
			Action: c.undoAction(receipt),
		})
		return OutcomeUncompleted, nil
	}

	if c.scheduler == nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("toggle task %q: scheduler is required", taskID)
	}
	c.seq++
	jobID := fmt.Sprintf("%s#%d", taskID, c.seq)
	since := c.clock()
	if err := c.scheduler.Schedule(jobID, since.Add(CompletionDelay)); err != nil {
		c.mu.Unlock()
		return 0, fmt.Errorf("schedule completion %q: %w", taskID, err)
	}
	c.pending[taskID] = pendingCompletion{jobID: jobID, since: since, previous: task.Status}
	c.jobs[jobID] = taskID
	c.mu.Unlock()

	c.playSound(ctx, taskID)
	return OutcomeCompleting, nil
}

// Fire commits the completion scheduled under jobID. Jobs that were cancelled or replaced
// return ErrNoPendingCompletion and change nothing.
func (c *Completion) Fire(ctx context.Context, jobID string) (domain.Task, error) {
	c.mu.Lock()
	taskID, ok := c.jobs[jobID]
	if !ok {
		c.mu.Unlock()
		return domain.Task{}, ErrNoPendingCompletion
	}
	p := c.pending[taskID]
	delete(c.jobs, jobID)
	delete(c.pending, taskID)

	task, err := c.repo.GetTask(ctx, taskID)
	if err != nil {
		c.mu.Unlock()
		return domain.Task{}, fmt.Errorf("complete task %q: %w", taskID, err)
	}
	// Undo restores the status seen at toggle time, not whatever changed during the delay.
	previous := p.previous
	if previous == "" {
		previous = task.Status
	}
	task.Status = domain.StatusCompleted
	if err := c.repo.UpdateTask(ctx, task); err != nil {
		c.mu.Unlock()
		return domain.Task{}, fmt.Errorf("complete task %q: %w", taskID, err)
	}
	c.mu.Unlock()

	receipt := Receipt{TaskID: taskID, Previous: previous, Applied: domain.StatusCompleted}
	c.notifier.Notify(Notification{
		Kind:        NotifySuccess,
		Title:       "Task completed!",
		Description: task.Title,
		Action:      c.undoAction(receipt),
	})
	if c.onCompleted != nil {
		c.onCompleted(task)
	}
	return task, nil
}

// Undo reverts a committed change to the exact status recorded in the receipt.
func (c *Completion) Undo(ctx context.Context, receipt Receipt) (domain.Task, error) {
	c.mu.Lock()
	if p, ok := c.pending[receipt.TaskID]; ok {
		c.cancelLocked(receipt.TaskID, p)
	}
	task, err := c.repo.GetTask(ctx, receipt.TaskID)
	if err != nil {
		c.mu.Unlock()
		return domain.Task{}, fmt.Errorf("undo task %q: %w", receipt.TaskID, err)
	}
	task.Status = receipt.Previous
	if err := c.repo.UpdateTask(ctx, task); err != nil {
		c.mu.Unlock()
		return domain.Task{}, fmt.Errorf("undo task %q: %w", receipt.TaskID, err)
	}
	c.mu.Unlock()

	if receipt.Applied == domain.StatusCompleted {
		c.notifier.Notify(Notification{Kind: NotifyInfo, Title: "Task restored", Description: task.Title})
	}
	return task, nil
}

// Close cancels every pending completion so nothing commits after teardown.
func (c *Completion) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for taskID, p := range c.pending {
		c.cancelLocked(taskID, p)
	}
}

// IsCompleting reports whether a task is mid-completion.
func (c *Completion) IsCompleting(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[taskID]
	return ok
}

// CompletingIDs returns a snapshot of the completing set.
func (c *Completion) CompletingIDs() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]struct{}, len(c.pending))
	for taskID := range c.pending {
		out[taskID] = struct{}{}
	}
	return out
}

// State returns the workflow state of one task.
func (c *Completion) State(taskID string) CompletionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[taskID]
	if !ok {
		return CompletionState{Phase: PhaseIdle, TaskID: taskID}
	}
	return CompletionState{Phase: PhaseCompleting, TaskID: taskID, Since: p.since, JobID: p.jobID}
}

func (c *Completion) cancelLocked(taskID string, p pendingCompletion) {
	if c.scheduler != nil {
		c.scheduler.Cancel(p.jobID)
	}
	delete(c.pending, taskID)
	delete(c.jobs, p.jobID)
}

func (c *Completion) undoAction(receipt Receipt) *NotificationAction {
	return &NotificationAction{
		Label: "UNDO",
		Run: func(ctx context.Context) error {
			_, err := c.Undo(ctx, receipt)
			return err
		},
	}
}

// playSound is best-effort: failures are logged and never reach the caller.
func (c *Completion) playSound(ctx context.Context, taskID string) {
	if c.sound == nil {
		return
	}
	if err := c.sound.Play(ctx); err != nil {
		c.logger.Warn("completion sound failed", "task_id", taskID, "err", err)
	}
}
