package mqtt

import (
	"log"

	"github.com/gammazero/deque"
)

// message is a serialized publish held until the broker is reachable.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while disconnected, dropping the oldest
// once full. Callers synchronize.
type outbox struct {
	q        deque.Deque[message]
	capacity int
	overflow bool // a message was dropped since the last drain
}

func newOutbox(capacity int) *outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &outbox{capacity: capacity}
}

func (o *outbox) push(m message) {
	if o.q.Len() == o.capacity {
		if !o.overflow {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.capacity)
			o.overflow = true
		}
		o.q.PopFront()
	}
	o.q.PushBack(m)
}

func (o *outbox) drain() []message {
	if o.q.Len() == 0 {
		return nil
	}
	out := make([]message, 0, o.q.Len())
	for o.q.Len() > 0 {
		out = append(out, o.q.PopFront())
	}
	o.overflow = false
	return out
}

func (o *outbox) len() int {
	return o.q.Len()
}
