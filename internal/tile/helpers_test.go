package tile

import (
	"time"
)

// recorder collects delivered events.
type recorder struct {
	events []Event
}

func (r *recorder) OnTileEvent(e Event) {
	r.events = append(r.events, e)
}

// types returns the recorded event types, keeping only those in filter
// (all of them if filter is empty).
func (r *recorder) types(filter ...EventType) []EventType {
	var out []EventType
	for _, e := range r.events {
		if len(filter) == 0 {
			out = append(out, e.Type)
			continue
		}
		for _, f := range filter {
			if e.Type == f {
				out = append(out, e.Type)
				break
			}
		}
	}
	return out
}

func (r *recorder) reset() {
	r.events = nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeScheduler records Start/Stop calls.
type fakeScheduler struct {
	running   bool
	intervals []time.Duration
	stops     int
	tick      func(time.Duration)
}

func (s *fakeScheduler) Start(interval time.Duration, tick func(time.Duration)) {
	s.running = true
	s.intervals = append(s.intervals, interval)
	s.tick = tick
}

func (s *fakeScheduler) Stop() {
	s.running = false
	s.stops++
}

// newVisibleTile builds a visible tile with a recorder attached.
func newVisibleTile(b *Builder) (*Tile, *recorder) {
	rec := &recorder{}
	t := b.Listener(rec).Build()
	t.SetVisible(true)
	return t, rec
}
