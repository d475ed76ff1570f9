// Package mqtt bridges tiles to an MQTT broker: tile events out, values in.
package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/tiled/internal/tile"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "tiled"

// Topics derives every topic from one prefix:
//
//	<prefix>/<tile>/events  tile events (out)
//	<prefix>/<tile>/set     new values (in)
//	<prefix>/system         lifecycle events (out)
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.Trim(t.Prefix, "/")
	if p == "" {
		return DefaultPrefix
	}
	return p
}

// Events returns the event topic for a tile.
func (t Topics) Events(tileName string) string {
	return t.prefix() + "/" + tileName + "/events"
}

// Set returns the topic a tile's values arrive on.
func (t Topics) Set(tileName string) string {
	return t.prefix() + "/" + tileName + "/set"
}

// SetFilter matches the set topic of every tile.
func (t Topics) SetFilter() string {
	return t.prefix() + "/+/set"
}

// System returns the lifecycle topic.
func (t Topics) System() string {
	return t.prefix() + "/system"
}

// TileFromSet extracts the tile name from a set topic.
func (t Topics) TileFromSet(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.prefix()+"/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/set")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// Publisher publishes tile and system events.
type Publisher interface {
	// Publish sends a tile event. Failures are returned, never fatal.
	Publish(event TileEvent) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// TileEvent is a tile event together with the tile's values when it fired.
type TileEvent struct {
	Timestamp    time.Time
	Tile         string
	Event        tile.Event
	Value        float64
	CurrentValue float64
}

// SystemEvent represents a lifecycle event (STARTUP, SHUTDOWN, RECONNECTED).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM" (shutdown only)
	RawPayload []byte // pre-formatted JSON; if set, FormatSystemPayload returns it as is
	Retained   bool
}

// Payload is the JSON body of a tile event message.
type Payload struct {
	Tile TilePayload `json:"tile"`
}

// TilePayload contains the tile event details.
type TilePayload struct {
	Name         string          `json:"name"`
	Timestamp    string          `json:"timestamp"`
	Event        string          `json:"event"`
	Value        float64         `json:"value"`
	CurrentValue float64         `json:"current_value"`
	Section      *SectionPayload `json:"section,omitempty"`
	Alarm        *AlarmPayload   `json:"alarm,omitempty"`
}

type SectionPayload struct {
	Start  float64 `json:"start"`
	Stop   float64 `json:"stop"`
	Text   string  `json:"text,omitempty"`
	Active bool    `json:"active"`
}

type AlarmPayload struct {
	ID         string `json:"id"`
	Time       string `json:"time"`
	Repetition string `json:"repetition"`
	Text       string `json:"text,omitempty"`
}

// FormatPayload creates the JSON payload for a tile event.
func FormatPayload(event TileEvent) ([]byte, error) {
	p := Payload{
		Tile: TilePayload{
			Name:         event.Tile,
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Event.Type),
			Value:        event.Value,
			CurrentValue: event.CurrentValue,
		},
	}
	if s := event.Event.Section; s != nil {
		p.Tile.Section = &SectionPayload{Start: s.Start, Stop: s.Stop, Text: s.Text, Active: s.Active}
	}
	if a := event.Event.Alarm; a != nil {
		p.Tile.Alarm = &AlarmPayload{
			ID:         a.ID.String(),
			Time:       a.Time.UTC().Format(time.RFC3339),
			Repetition: a.Repetition.String(),
			Text:       a.Text,
		}
	}
	return json.Marshal(p)
}

// SystemPayload is the JSON body of simple system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// SetCommand is a value received for a tile.
type SetCommand struct {
	Tile  string
	Value float64
}

type setBody struct {
	Value *float64 `json:"value"`
}

// ParseSet decodes a message on a set topic. The payload is either a bare
// number ("42.5") or JSON ({"value": 42.5}).
func ParseSet(topics Topics, topic string, payload []byte) (SetCommand, error) {
	name, ok := topics.TileFromSet(topic)
	if !ok {
		return SetCommand{}, fmt.Errorf("not a set topic: %q", topic)
	}
	s := strings.TrimSpace(string(payload))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return SetCommand{}, fmt.Errorf("tile %s: value %q is not finite", name, s)
		}
		return SetCommand{Tile: name, Value: v}, nil
	}
	var body setBody
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		return SetCommand{}, fmt.Errorf("tile %s: bad payload %q", name, s)
	}
	if body.Value == nil {
		return SetCommand{}, fmt.Errorf("tile %s: payload has no value", name)
	}
	return SetCommand{Tile: name, Value: *body.Value}, nil
}
