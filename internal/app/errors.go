package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicateID         = errors.New("duplicate id")
	ErrEditorClosed        = errors.New("editor is not open")
	ErrNoPendingCompletion = errors.New("no pending completion")
)
