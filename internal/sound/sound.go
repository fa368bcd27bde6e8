// Package sound plays the short completion cue.
package sound

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Player plays a completion cue.
type Player interface {
	Play(ctx context.Context) error
}

// Bell rings the terminal bell on its writer.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBell returns a bell writing to out.
func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

// Play writes a BEL control character.
func (b *Bell) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b == nil || b.out == nil {
		return fmt.Errorf("play bell: no output")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.out, "\a"); err != nil {
		return fmt.Errorf("play bell: %w", err)
	}
	return nil
}

// Nop is a silent player.
type Nop struct{}

// Play does nothing.
func (Nop) Play(context.Context) error { return nil }
