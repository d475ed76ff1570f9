// Package ticker provides the periodic scheduler behind clock tiles.
//
// The ticker goroutine never touches tile state. Each tick is posted to the
// main loop, and the posted closure checks the scheduler generation before
// running, so a tick that was already in flight when Stop or a restart
// happened is dropped on the loop instead of being delivered late.
package ticker

import (
	"log"
	"sync"
	"time"
)

// Poster hands work to the goroutine that owns tile state.
type Poster interface {
	Post(fn func()) error
}

// Scheduler is a restartable periodic timer. It implements tile.Scheduler.
type Scheduler struct {
	name   string
	poster Poster

	// newTicker is swapped in tests.
	newTicker func(d time.Duration) (<-chan time.Time, func())

	mu       sync.Mutex
	gen      uint64
	interval time.Duration
	stop     chan struct{}
}

// New creates a stopped scheduler. name appears in log lines.
func New(name string, p Poster) *Scheduler {
	return &Scheduler{
		name:      name,
		poster:    p,
		newTicker: realTicker,
	}
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Start begins ticking every interval, replacing any previous schedule.
// tick receives the configured interval, not the measured one.
func (s *Scheduler) Start(interval time.Duration, tick func(elapsed time.Duration)) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.stopLocked()
	s.gen++
	gen := s.gen
	stop := make(chan struct{})
	s.stop = stop
	s.interval = interval
	c, release := s.newTicker(interval)
	s.mu.Unlock()

	go s.run(gen, interval, tick, c, release, stop)
}

// Stop cancels the schedule. Ticks already posted but not yet run are
// discarded. Calling Stop on a stopped scheduler does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
	s.interval = 0
	s.gen++
}

// Running reports whether a schedule is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Interval returns the active interval, or 0 when stopped.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Scheduler) run(gen uint64, interval time.Duration, tick func(time.Duration), c <-chan time.Time, release func(), stop <-chan struct{}) {
	defer release()
	for {
		select {
		case <-stop:
			return
		case <-c:
			err := s.poster.Post(func() {
				if s.current(gen) {
					tick(interval)
				}
			})
			if err != nil {
				log.Printf("ticker %s: stopping: %v", s.name, err)
				return
			}
		}
	}
}
