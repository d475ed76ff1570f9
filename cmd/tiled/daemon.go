package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/tiled/internal/config"
	"github.com/sweeney/tiled/internal/gpio"
	"github.com/sweeney/tiled/internal/mainloop"
	"github.com/sweeney/tiled/internal/metrics"
	"github.com/sweeney/tiled/internal/mqtt"
	"github.com/sweeney/tiled/internal/status"
	"github.com/sweeney/tiled/internal/ticker"
	"github.com/sweeney/tiled/internal/tile"
)

// namedTile keeps config order for status output.
type namedTile struct {
	name string
	t    *tile.Tile
}

// poller binds a GPIO line to a tile.
type poller struct {
	name     string
	reader   gpio.Reader
	interval time.Duration
	debounce time.Duration
	t        *tile.Tile
}

// daemon owns the tiles. Everything touching a tile runs on loop.
type daemon struct {
	cfg     *config.Config
	loop    *mainloop.Loop
	tiles   []namedTile
	byName  map[string]*tile.Tile
	pollers []poller

	publisher  mqtt.Publisher // nil until attach
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	metrics    *metrics.Metrics
	now        func() time.Time
}

// newScheduler creates the tick scheduler for a clock tile.
var newScheduler = func(name string, p ticker.Poster) tile.Scheduler {
	return ticker.New(name, p)
}

type openReaderFunc func(g config.GPIOConfig) (gpio.Reader, error)

func openRealReader(g config.GPIOConfig) (gpio.Reader, error) {
	return gpio.NewRealReader(g.Chip, g.Line, g.ActiveLow)
}

// newDaemon builds every configured tile. Tiles start hidden; attach
// ties their visibility to the broker connection.
func newDaemon(cfg *config.Config, loop *mainloop.Loop, tracker *status.Tracker, m *metrics.Metrics, openReader openReaderFunc, now func() time.Time) (*daemon, error) {
	d := &daemon{
		cfg:     cfg,
		loop:    loop,
		byName:  make(map[string]*tile.Tile, len(cfg.Tiles)),
		tracker: tracker,
		metrics: m,
		now:     now,
	}

	for _, tc := range cfg.Tiles {
		b, err := tc.Builder(now())
		if err != nil {
			d.abort()
			return nil, fmt.Errorf("tile %s: %w", tc.Name, err)
		}
		t := b.Clock(now).
			Scheduler(newScheduler(tc.Name, loop)).
			Listener(m.Listener(tc.Name)).
			Build()

		if tc.GPIO != nil {
			r, err := openReader(*tc.GPIO)
			if err != nil {
				t.SetRunning(false)
				d.abort()
				return nil, fmt.Errorf("tile %s: init gpio: %w", tc.Name, err)
			}
			d.pollers = append(d.pollers, poller{
				name:     tc.Name,
				reader:   r,
				interval: tc.GPIO.PollInterval(),
				debounce: tc.GPIO.DebounceWindow(),
				t:        t,
			})
		}

		loop.Add(t)
		d.tiles = append(d.tiles, namedTile{name: tc.Name, t: t})
		d.byName[tc.Name] = t
	}

	loop.OnFrame(d.observe)
	return d, nil
}

// attach forwards tile events to pub. Call before the loop runs.
func (d *daemon) attach(pub mqtt.Publisher) {
	d.publisher = pub
	if cs, ok := pub.(mqtt.ConnectionStatus); ok {
		d.mqttStatus = cs
	}
	for _, nt := range d.tiles {
		l := mqtt.NewEventListener(nt.name, nt.t, pub)
		l.PublishValues = d.cfg.MQTT.PublishValueEvents
		l.Now = d.now
		l.OnResult = d.metrics.RecordPublish
		nt.t.AddListener(l)
	}
}

// observe publishes tile state to the tracker and gauges. Runs on the loop.
func (d *daemon) observe(time.Time) {
	snaps := make([]status.TileSnapshot, 0, len(d.tiles))
	for _, nt := range d.tiles {
		snaps = append(snaps, status.SnapshotTile(nt.name, nt.t))
		d.metrics.Observe(nt.name, nt.t)
	}
	d.tracker.Update(snaps)
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

// setValue applies a value received over MQTT. Runs on the loop.
func (d *daemon) setValue(cmd mqtt.SetCommand) {
	t, ok := d.byName[cmd.Tile]
	if !ok {
		log.Printf("set: unknown tile %q", cmd.Tile)
		return
	}
	t.SetValue(cmd.Value)
}

// setVisible shows or hides every tile. Runs on the loop.
func (d *daemon) setVisible(v bool) {
	for _, nt := range d.tiles {
		nt.t.SetVisible(v)
	}
}

// Callbacks for the MQTT client; they hop onto the loop.

func (d *daemon) onConnect() {
	if err := d.loop.Post(func() { d.setVisible(true) }); err != nil {
		log.Printf("mqtt: connect: %v", err)
	}
}

func (d *daemon) onConnectionLost(error) {
	if err := d.loop.Post(func() { d.setVisible(false) }); err != nil {
		log.Printf("mqtt: connection lost: %v", err)
	}
}

func (d *daemon) onSet(cmd mqtt.SetCommand) {
	if err := d.loop.Post(func() { d.setValue(cmd) }); err != nil {
		log.Printf("mqtt: set %s: %v", cmd.Tile, err)
	}
}

// poll runs one GPIO binding until ctx is done. Line state maps to 1 or 0.
func (d *daemon) poll(ctx context.Context, p poller) {
	gpio.PollEvery(ctx, p.name, p.reader, p.interval, p.debounce, func(on bool) {
		v := 0.0
		if on {
			v = 1
		}
		if err := d.loop.Post(func() { p.t.SetValue(v) }); err != nil {
			log.Printf("gpio %s: %v", p.name, err)
		}
	})
}

// abort undoes a partial build: clocks already started are stopped and
// opened lines are released.
func (d *daemon) abort() {
	for _, nt := range d.tiles {
		nt.t.SetRunning(false)
	}
	d.closeReaders()
}

func (d *daemon) closeReaders() {
	for _, p := range d.pollers {
		if err := p.reader.Close(); err != nil {
			log.Printf("gpio %s: close: %v", p.name, err)
		}
	}
}

// publishSystem sends a lifecycle event carrying the full status.
func (d *daemon) publishSystem(event, reason string) {
	if d.publisher == nil {
		return
	}
	snap := d.tracker.Snapshot()
	se := mqtt.SystemEvent{
		Timestamp:  d.now(),
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := d.publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

// shutdown stops every clock, then publishes SHUTDOWN, both on the loop.
func (d *daemon) shutdown(ctx context.Context, reason string) {
	err := d.loop.Call(ctx, func() {
		for _, nt := range d.tiles {
			nt.t.SetRunning(false)
		}
		d.observe(d.now())
		d.publishSystem("SHUTDOWN", reason)
	})
	if err != nil {
		log.Printf("shutdown: %v", err)
	}
}
