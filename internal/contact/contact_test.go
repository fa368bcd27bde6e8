package contact

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/mailer"
)

type fakeSender struct {
	configured bool
	err        error
	sent       []mailer.Message
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var validForm = Form{
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Subject: "Pricing question",
	Message: "Do you offer a discount for teams of five?",
}

func TestValidateMessages(t *testing.T) {
	errs := Validate(Form{Name: "A", Email: "nope", Subject: "Hi", Message: "short"})
	want := map[string]string{
		FieldName:    "Name must be at least 2 characters",
		FieldEmail:   "Please enter a valid email address",
		FieldSubject: "Subject must be at least 5 characters",
		FieldMessage: "Message must be at least 20 characters",
	}
	for field, msg := range want {
		if errs.Field(field) != msg {
			t.Fatalf("field %s = %q, want %q", field, errs.Field(field), msg)
		}
	}
	long := validForm
	long.Message = strings.Repeat("m", 2001)
	if got := Validate(long).Field(FieldMessage); got != "Message must be less than 2000 characters" {
		t.Fatalf("unexpected long message error %q", got)
	}
	if errs := Validate(validForm); errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
}

func TestSubmitBlocksInvalidForms(t *testing.T) {
	sender := &fakeSender{configured: true}
	_, err := Submit(context.Background(), sender, Form{})
	var fieldErrs app.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("expected nothing sent")
	}
}

func TestSubmitSendsAndReportsFailures(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{configured: true}
	res, err := Submit(ctx, sender, validForm)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Title != "Message sent successfully!" || len(sender.sent) != 1 {
		t.Fatalf("unexpected result %#v sent=%d", res, len(sender.sent))
	}

	if _, err := Submit(ctx, &fakeSender{}, validForm); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if got := FailureDescription(ErrServiceUnavailable); !strings.HasPrefix(got, "Email service is not configured") {
		t.Fatalf("unexpected description %q", got)
	}
	sendErr := errors.New("failed to send email: 500 boom")
	if _, err := Submit(ctx, &fakeSender{configured: true, err: sendErr}, validForm); !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
}
