package mqtt

import (
	"log"
	"time"

	"github.com/sweeney/tiled/internal/tile"
)

// EventListener publishes a tile's events. VALUE events are skipped unless
// PublishValues is set, since an animating tile fires one per frame.
type EventListener struct {
	name string
	t    *tile.Tile
	pub  Publisher

	PublishValues bool

	// Now stamps events; defaults to time.Now.
	Now func() time.Time

	// OnResult observes each publish attempt.
	OnResult func(err error)
}

// NewEventListener creates a listener for t. Register it with
// t.AddListener.
func NewEventListener(name string, t *tile.Tile, pub Publisher) *EventListener {
	return &EventListener{name: name, t: t, pub: pub, Now: time.Now}
}

// OnTileEvent implements tile.Listener.
func (l *EventListener) OnTileEvent(e tile.Event) {
	if e.Type == tile.EventValue && !l.PublishValues {
		return
	}
	err := l.pub.Publish(TileEvent{
		Timestamp:    l.Now(),
		Tile:         l.name,
		Event:        e,
		Value:        l.t.Value(),
		CurrentValue: l.t.CurrentValue(),
	})
	if err != nil {
		// Don't crash on publish failure
		log.Printf("mqtt: publish %s %s: %v", l.name, e.Type, err)
	}
	if l.OnResult != nil {
		l.OnResult(err)
	}
}
