package app

import "context"

// NotificationKind selects the presentation style of a notification.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyInfo    NotificationKind = "info"
	NotifyError   NotificationKind = "error"
)

// NotificationAction is the single button a notification may offer, such as UNDO.
type NotificationAction struct {
	Label string
	Run   func(context.Context) error
}

// Notification is a transient user-facing message. Expiry is decided by the presenter.
type Notification struct {
	Kind        NotificationKind
	Title       string
	Description string
	Action      *NotificationAction
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
