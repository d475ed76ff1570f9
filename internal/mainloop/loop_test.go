package mainloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingStepper struct {
	steps []time.Time
}

func (c *countingStepper) Step(now time.Time) bool {
	c.steps = append(c.steps, now)
	return false
}

func startLoop(t *testing.T, l *Loop, frames <-chan time.Time) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.run(ctx, frames) }()
	return cancel, errCh
}

func TestPostRunsInOrder(t *testing.T) {
	l := New(0, nil)
	cancel, errCh := startLoop(t, l, nil)
	defer cancel()

	var got []int
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Call(context.Background(), func() {}))
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)

	cancel()
	require.NoError(t, <-errCh)
}

func TestFramesStepThenHook(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(time.Second, func() time.Time { return at })
	s := &countingStepper{}
	var stepsSeen []int
	l.Add(s)
	l.OnFrame(func(time.Time) { stepsSeen = append(stepsSeen, len(s.steps)) })

	frames := make(chan time.Time)
	cancel, errCh := startLoop(t, l, frames)
	frames <- time.Now()
	frames <- time.Now()
	require.NoError(t, l.Call(context.Background(), func() {}))

	require.Equal(t, []time.Time{at, at}, s.steps)
	require.Equal(t, []int{1, 2}, stepsSeen)

	cancel()
	require.NoError(t, <-errCh)
}

func TestPostAfterStop(t *testing.T) {
	l := New(0, nil)
	cancel, errCh := startLoop(t, l, nil)
	cancel()
	require.NoError(t, <-errCh)

	require.ErrorIs(t, l.Post(func() {}), ErrStopped)
	require.ErrorIs(t, l.Call(context.Background(), func() {}), ErrStopped)
}

func TestDefaults(t *testing.T) {
	l := New(-1, nil)
	require.Equal(t, DefaultFrameInterval, l.FrameInterval())
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New(time.Millisecond, nil)
	s := &countingStepper{}
	l.Add(s)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	require.NotEmpty(t, s.steps)
}
