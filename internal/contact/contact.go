// Package contact validates and submits the public contact form.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/mailer"
)

// Form field names.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// ErrServiceUnavailable is returned when the mail collaborator is not configured.
var ErrServiceUnavailable = errors.New("email service is not configured")

// Form holds the contact form values.
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Sender delivers a validated message.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, msg mailer.Message) error
}

// Result is the success notification text.
type Result struct {
	Title       string
	Description string
}

type lengthRule struct {
	field    string
	label    string
	min, max int
}

var lengthRules = []lengthRule{
	{FieldName, "Name", 2, 100},
	{FieldSubject, "Subject", 5, 200},
	{FieldMessage, "Message", 20, 2000},
}

// Validate returns one message per invalid field, or nil.
func Validate(f Form) app.FieldErrors {
	errs := app.FieldErrors{}
	values := map[string]string{
		FieldName:    strings.TrimSpace(f.Name),
		FieldSubject: strings.TrimSpace(f.Subject),
		FieldMessage: strings.TrimSpace(f.Message),
	}
	for _, rule := range lengthRules {
		n := utf8.RuneCountInString(values[rule.field])
		switch {
		case n < rule.min:
			errs[rule.field] = fmt.Sprintf("%s must be at least %d characters", rule.label, rule.min)
		case n > rule.max:
			errs[rule.field] = fmt.Sprintf("%s must be less than %d characters", rule.label, rule.max)
		}
	}
	email := strings.TrimSpace(f.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs[FieldEmail] = "Please enter a valid email address"
	} else if utf8.RuneCountInString(email) > 255 {
		errs[FieldEmail] = "Email must be less than 255 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates f and sends it. Validation errors block sending.
func Submit(ctx context.Context, sender Sender, f Form) (Result, error) {
	if errs := Validate(f); errs != nil {
		return Result{}, errs
	}
	if sender == nil || !sender.Configured() {
		return Result{}, ErrServiceUnavailable
	}
	err := sender.Send(ctx, mailer.Message{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Title: "Message sent successfully!", Description: "We'll get back to you within 24 hours."}, nil
}

// FailureDescription returns the error toast description for a failed submit.
func FailureDescription(err error) string {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return "Email service is not configured. Please contact the administrator."
	case err != nil:
		return err.Error()
	default:
		return "Please try again later or contact us directly."
	}
}
