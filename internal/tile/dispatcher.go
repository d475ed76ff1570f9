package tile

import (
	"slices"
	"sync"

	"github.com/gammazero/deque"
)

// Dispatcher delivers tile events to listeners. While the tile is not
// visible, events are queued and delivered in order once it becomes visible.
//
// Listener registration is safe from any goroutine and from inside a
// listener. Fire and SetVisible must be called from the tile's owning loop.
type Dispatcher struct {
	mu        sync.Mutex
	listeners []Listener // copy-on-write

	visible     bool
	dispatching bool
	queue       deque.Deque[Event]
}

// AddListener registers l. Adding a listener twice has no effect.
func (d *Dispatcher) AddListener(l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.listeners, l) {
		return
	}
	next := make([]Listener, len(d.listeners), len(d.listeners)+1)
	copy(next, d.listeners)
	d.listeners = append(next, l)
}

// RemoveListener unregisters l. Removing an unknown listener has no effect.
func (d *Dispatcher) RemoveListener(l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.listeners, l)
	if i < 0 {
		return
	}
	next := make([]Listener, 0, len(d.listeners)-1)
	next = append(next, d.listeners[:i]...)
	d.listeners = append(next, d.listeners[i+1:]...)
}

func (d *Dispatcher) snapshot() []Listener {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listeners
}

// Visible reports whether events are delivered immediately.
func (d *Dispatcher) Visible() bool {
	return d.visible
}

// SetVisible switches between queueing and delivering. Becoming visible
// flushes the queue before anything else is delivered.
func (d *Dispatcher) SetVisible(visible bool) {
	if d.visible == visible {
		return
	}
	d.visible = visible
	if visible && !d.dispatching {
		d.drain()
	}
}

// Fire delivers evt now if visible, otherwise queues it.
// Events fired by a listener while another event is being delivered are
// queued behind it so every listener sees the same order.
func (d *Dispatcher) Fire(evt Event) {
	d.queue.PushBack(evt)
	if !d.visible || d.dispatching {
		return
	}
	d.drain()
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

func (d *Dispatcher) drain() {
	d.dispatching = true
	defer func() { d.dispatching = false }()

	// A listener may hide the tile again; the rest stays queued.
	for d.visible && d.queue.Len() > 0 {
		evt := d.queue.PopFront()
		for _, l := range d.snapshot() {
			l.OnTileEvent(evt)
		}
	}
}
