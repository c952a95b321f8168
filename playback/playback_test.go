package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmviz/model"
)

func steps(n int) []model.Step {
	out := make([]model.Step, n)
	for i := range out {
		out[i] = model.Step{Inertia: float64(i)}
	}
	return out
}

func TestCursor(t *testing.T) {
	c := NewCursor(steps(3))
	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Prev())

	s, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, 0.0, s.Inertia)

	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.True(t, c.Done())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Index())

	assert.True(t, c.Prev())
	assert.Equal(t, 1, c.Index())

	require.NoError(t, c.Seek(2))
	s, _ = c.Current()
	assert.Equal(t, 2.0, s.Inertia)
	assert.ErrorIs(t, c.Seek(3), ErrOutOfRange)
	assert.ErrorIs(t, c.Seek(-1), ErrOutOfRange)

	c.Reset()
	assert.Equal(t, 0, c.Index())
}

func TestCursor_Empty(t *testing.T) {
	c := NewCursor(nil)
	_, ok := c.Current()
	assert.False(t, ok)
	assert.True(t, c.Done())
	assert.False(t, c.Next())
}

func TestReplay(t *testing.T) {
	var seen []int
	err := Replay(context.Background(), steps(3), time.Millisecond, func(i int, s model.Step) error {
		assert.Equal(t, float64(i), s.Inertia)
		seen = append(seen, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestReplay_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Replay(context.Background(), steps(5), time.Millisecond, func(i int, _ model.Step) error {
		calls++
		if i == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Replay(ctx, steps(5), time.Hour, func(int, model.Step) error {
		calls++
		cancel()
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
