// Package mainloop owns all tile state. Other goroutines hand work to it
// with Post; a frame ticker drives animation steps.
package mainloop

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultFrameInterval is roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrStopped is returned by Post once the loop has exited.
var ErrStopped = errors.New("main loop stopped")

// Stepper is advanced once per frame. tile.Tile satisfies it.
type Stepper interface {
	Step(now time.Time) bool
}

// Loop serialises posted work, frame steps and frame hooks onto one goroutine.
type Loop struct {
	frameInterval time.Duration
	now           func() time.Time

	posts chan func()
	done  chan struct{}
	once  sync.Once

	// Only touched on the loop goroutine once Run has started.
	steppers []Stepper
	hooks    []func(now time.Time)
}

// New creates a loop. A zero frame interval uses DefaultFrameInterval and a
// nil now uses time.Now.
func New(frameInterval time.Duration, now func() time.Time) *Loop {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Loop{
		frameInterval: frameInterval,
		now:           now,
		posts:         make(chan func(), 256),
		done:          make(chan struct{}),
	}
}

// FrameInterval returns the configured frame interval.
func (l *Loop) FrameInterval() time.Duration { return l.frameInterval }

// Add registers s for per-frame stepping. Call it before Run or from the loop.
func (l *Loop) Add(s Stepper) {
	l.steppers = append(l.steppers, s)
}

// OnFrame registers fn to run after every frame's steps.
func (l *Loop) OnFrame(fn func(now time.Time)) {
	l.hooks = append(l.hooks, fn)
}

// Post queues fn to run on the loop. It blocks while the queue is full and
// returns ErrStopped if the loop has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.posts <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes posts and frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.frameInterval)
	defer t.Stop()
	return l.run(ctx, t.C)
}

func (l *Loop) run(ctx context.Context, frames <-chan time.Time) error {
	defer l.once.Do(func() { close(l.done) })
	log.Printf("mainloop: running, frame=%v", l.frameInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("mainloop: stopping: %v", ctx.Err())
			return nil
		case fn := <-l.posts:
			fn()
		case <-frames:
			l.frame(l.now())
		}
	}
}

func (l *Loop) frame(now time.Time) {
	for _, s := range l.steppers {
		s.Step(now)
	}
	for _, h := range l.hooks {
		h(now)
	}
}
