package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrInvalidJobID       = errors.New("scheduler: invalid job id")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type job struct {
	id    string
	at    time.Time
	index int
}

type jobQueue []*job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	return q[i].at.Before(q[j].at)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x any) {
	item := x.(*job)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// Engine fires job ids on C() once their trigger time passes. Jobs may be cancelled until they fire.
type Engine struct {
	mu      sync.Mutex
	queue   jobQueue
	byID    map[string]*job
	out     chan string
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	now     func() time.Time
	started bool
	stopped bool
}

// NewEngine constructs an engine whose output channel holds bufferSize fired ids.
func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(jobQueue, 0),
		byID:   map[string]*job{},
		out:    make(chan string, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
}

// C returns the channel of fired job ids. It is closed after Stop.
func (e *Engine) C() <-chan string {
	return e.out
}

// Start launches the timer loop. Calling it twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

// Stop halts the loop and drops every pending job.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues jobID to fire at the given instant. Rescheduling an id replaces its trigger time.
func (e *Engine) Schedule(jobID string, at time.Time) error {
	if jobID == "" {
		return ErrInvalidJobID
	}
	if at.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	if existing, ok := e.byID[jobID]; ok {
		existing.at = at
		heap.Fix(&e.queue, existing.index)
	} else {
		item := &job{id: jobID, at: at}
		heap.Push(&e.queue, item)
		e.byID[jobID] = item
	}
	e.signalWakeup()
	return nil
}

// Cancel removes a job that has not fired yet and reports whether it was pending.
func (e *Engine) Cancel(jobID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.byID[jobID]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, item.index)
	delete(e.byID, jobID)
	e.signalWakeup()
	return true
}

// Pending returns the number of jobs waiting to fire.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, id := range e.popDue(e.now()) {
				select {
				case e.out <- id:
				case <-e.stopCh:
					return
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0].at, true
}

func (e *Engine) popDue(now time.Time) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]string, 0)
	for len(e.queue) > 0 {
		if e.queue[0].at.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*job)
		delete(e.byID, item.id)
		out = append(out, item.id)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
