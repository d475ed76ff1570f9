package gpio

import (
	"context"
	"log"
	"time"
)

// debouncer accepts a line state once it has held for window. Tick times
// are used as timestamps so tests control time.
type debouncer struct {
	window time.Duration

	seen   bool
	stable bool

	pending   bool
	candidate bool
	since     time.Time
}

// observe records a raw sample and reports the new stable state, if any.
func (d *debouncer) observe(on bool, at time.Time) (bool, bool) {
	if d.seen && on == d.stable {
		d.pending = false
		return false, false
	}
	if !d.pending || on != d.candidate {
		d.pending, d.candidate, d.since = true, on, at
	}
	if at.Sub(d.since) < d.window {
		return false, false
	}
	d.seen, d.stable, d.pending = true, on, false
	return on, true
}

// Poll reads r on every tick. Once a state has held for debounce it calls
// onChange; the first stable state is reported too. Read errors are logged
// and skipped. It returns when ctx is done.
func Poll(ctx context.Context, name string, r Reader, debounce time.Duration, tick <-chan time.Time, onChange func(on bool)) {
	d := debouncer{window: debounce}
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-tick:
			on, err := r.Read()
			if err != nil {
				log.Printf("gpio %s: read error: %v", name, err)
				continue
			}
			if state, ok := d.observe(on, at); ok {
				onChange(state)
			}
		}
	}
}

// PollEvery runs Poll with a ticker at interval.
func PollEvery(ctx context.Context, name string, r Reader, interval, debounce time.Duration, onChange func(on bool)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	Poll(ctx, name, r, debounce, t.C, onChange)
}
