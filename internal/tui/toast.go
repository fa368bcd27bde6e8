package tui

import (
	"slices"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/acta/internal/app"
)

// Notifications buffers app notifications until the model drains them into toasts.
// It is safe to notify from any goroutine.
type Notifications struct {
	mu    sync.Mutex
	items []app.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{}
}

// Notify implements app.Notifier.
func (n *Notifications) Notify(note app.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, note)
}

// drain returns and clears the queued notifications in arrival order.
func (n *Notifications) drain() []app.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.items
	n.items = nil
	return out
}

// toast is one visible notification.
type toast struct {
	id   int
	note app.Notification
	at   time.Time
}

// toastExpiredMsg removes a toast once its ttl elapses.
type toastExpiredMsg struct {
	id int
}

// maxToasts caps how many toasts stack on screen.
const maxToasts = 3

// pushToast shows note and returns the tick that expires it.
func (m *Model) pushToast(note app.Notification) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, note: note, at: time.Now()})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m.toastTick(m.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// flushNotifications moves queued app notifications onto the screen.
func (m *Model) flushNotifications() tea.Cmd {
	notes := m.notes.drain()
	if len(notes) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(notes))
	for _, note := range notes {
		cmds = append(cmds, m.pushToast(note))
	}
	return tea.Batch(cmds...)
}

// dismissToast drops the toast with id.
func (m *Model) dismissToast(id int) {
	for idx, t := range m.toasts {
		if t.id == id {
			m.toasts = slices.Concat(m.toasts[:idx], m.toasts[idx+1:])
			return
		}
	}
}

// latestActionToast returns the newest toast offering an action.
func (m Model) latestActionToast() (toast, bool) {
	for idx := len(m.toasts) - 1; idx >= 0; idx-- {
		if m.toasts[idx].note.Action != nil {
			return m.toasts[idx], true
		}
	}
	return toast{}, false
}
