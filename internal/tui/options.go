package tui

import (
	"time"

	"github.com/atotto/clipboard"
	charmLog "github.com/charmbracelet/log"
)

// DefaultToastTTL is how long a toast stays on screen.
const DefaultToastTTL = 4 * time.Second

type Option func(*Model)

// WithCompletion wires the completion workflow and the channel its scheduler fires job ids on.
func WithCompletion(c Completer, jobs <-chan string) Option {
	return func(m *Model) {
		m.completion = c
		m.jobs = jobs
	}
}

// WithNotifications shares the queue the app layer notifies into.
func WithNotifications(n *Notifications) Option {
	return func(m *Model) {
		if n != nil {
			m.notes = n
		}
	}
}

// WithPrefs wires persisted UI preferences.
func WithPrefs(p PrefsStore) Option {
	return func(m *Model) {
		m.prefs = p
	}
}

// WithToastTTL overrides toast lifetime.
func WithToastTTL(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.toastTTL = d
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copy = write
		}
	}
}

// WithKeyConfig applies key overrides.
func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

func WithLogger(logger *charmLog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
