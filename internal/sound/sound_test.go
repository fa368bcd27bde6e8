package sound

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestBellWritesControlCharacter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBell(&buf).Play(context.Background()); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected BEL, got %q", buf.String())
	}
}

func TestBellSurfacesFailures(t *testing.T) {
	if err := NewBell(brokenWriter{}).Play(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := NewBell(&buf).Play(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := (Nop{}).Play(context.Background()); err != nil {
		t.Fatalf("Nop.Play() error = %v", err)
	}
}
