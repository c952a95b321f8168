// Package playback steps through the history of a run, either interactively
// with a Cursor or on a timer with Replay.
package playback

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/kmviz/model"
)

// DefaultInterval is the delay between steps during Replay.
const DefaultInterval = time.Second

// ErrOutOfRange is returned by Seek for a position outside the history.
var ErrOutOfRange = errors.New("playback: step out of range")

// Cursor is a position within a step sequence. The zero position is the
// initial step.
type Cursor struct {
	steps []model.Step
	pos   int
}

// NewCursor returns a cursor positioned at the first step.
func NewCursor(steps []model.Step) *Cursor {
	return &Cursor{steps: steps}
}

// Len returns the number of steps.
func (c *Cursor) Len() int { return len(c.steps) }

// Index returns the current position.
func (c *Cursor) Index() int { return c.pos }

// Current returns the step at the current position. ok is false when the
// sequence is empty.
func (c *Cursor) Current() (model.Step, bool) {
	if len(c.steps) == 0 {
		return model.Step{}, false
	}
	return c.steps[c.pos], true
}

// Done reports whether the cursor is on the last step.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.steps)-1
}

// Next advances one step. It returns false, without moving, at the end.
func (c *Cursor) Next() bool {
	if c.Done() {
		return false
	}
	c.pos++
	return true
}

// Prev moves back one step. It returns false, without moving, at the start.
func (c *Cursor) Prev() bool {
	if c.pos == 0 {
		return false
	}
	c.pos--
	return true
}

// Seek moves to position i.
func (c *Cursor) Seek(i int) error {
	if i < 0 || i >= len(c.steps) {
		return ErrOutOfRange
	}
	c.pos = i
	return nil
}

// Reset returns to the initial step.
func (c *Cursor) Reset() { c.pos = 0 }

// Replay calls fn for every step in order, pacing calls at most one per
// interval. The first call happens immediately. A non-positive interval
// selects DefaultInterval. Replay stops at the first error from fn or when
// ctx is done.
func Replay(ctx context.Context, steps []model.Step, interval time.Duration, fn func(i int, s model.Step) error) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	for i, s := range steps {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := fn(i, s); err != nil {
			return err
		}
	}
	return nil
}
