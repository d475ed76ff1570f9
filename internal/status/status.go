// Package status provides a thread-safe status tracker for the tiled daemon.
// The main loop writes it after every frame; HTTP handlers read it.
package status

import (
	"slices"
	"sync"
	"time"

	"github.com/sweeney/tiled/internal/tile"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	FrameMs     int64
	Broker      string
	TopicPrefix string
	HTTPAddr    string
}

// TileSnapshot is a copy of one tile's observable state.
type TileSnapshot struct {
	Name             string
	Kind             string
	Title            string
	Unit             string
	Value            float64
	CurrentValue     float64
	MinValue         float64
	MaxValue         float64
	Threshold        float64
	LowerThreshold   float64
	MinMeasuredValue float64
	MaxMeasuredValue float64
	Average          float64
	Animating        bool
	Alert            bool
	Visible          bool
	PendingEvents    int
	ActiveSections   []string
	Alarms           int
	Running          bool
	Time             time.Time
}

// Measured reports whether the tile has observed any value yet.
func (ts TileSnapshot) Measured() bool {
	return ts.MinMeasuredValue <= ts.MaxMeasuredValue
}

// SnapshotTile copies t's state. Call it on the goroutine that owns t.
func SnapshotTile(name string, t *tile.Tile) TileSnapshot {
	var active []string
	for _, s := range t.Sections() {
		if s.Active {
			active = append(active, s.Text)
		}
	}
	return TileSnapshot{
		Name:             name,
		Kind:             t.Kind().String(),
		Title:            t.Title(),
		Unit:             t.Unit(),
		Value:            t.Value(),
		CurrentValue:     t.CurrentValue(),
		MinValue:         t.MinValue(),
		MaxValue:         t.MaxValue(),
		Threshold:        t.Threshold(),
		LowerThreshold:   t.LowerThreshold(),
		MinMeasuredValue: t.MinMeasuredValue(),
		MaxMeasuredValue: t.MaxMeasuredValue(),
		Average:          t.Average(),
		Animating:        t.Animating(),
		Alert:            t.Alert(),
		Visible:          t.Visible(),
		PendingEvents:    t.PendingEvents(),
		ActiveSections:   active,
		Alarms:           len(t.Alarms()),
		Running:          t.Running(),
		Time:             t.Time(),
	}
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Tiles         []TileSnapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tile returns the named tile's snapshot.
func (s Snapshot) Tile(name string) (TileSnapshot, bool) {
	i := slices.IndexFunc(s.Tiles, func(ts TileSnapshot) bool { return ts.Name == name })
	if i < 0 {
		return TileSnapshot{}, false
	}
	return s.Tiles[i], true
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the tile snapshots. The tracker keeps its own copy.
func (t *Tracker) Update(tiles []TileSnapshot) {
	cp := slices.Clone(tiles)
	t.mu.Lock()
	t.snap.Tiles = cp
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
