package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Tiles         []TileJSON   `json:"tiles"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// TileJSON is the JSON representation of a tile snapshot. Measured values
// are omitted until the tile has seen a value.
type TileJSON struct {
	Name           string   `json:"name"`
	Kind           string   `json:"kind"`
	Title          string   `json:"title,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	Value          float64  `json:"value"`
	CurrentValue   float64  `json:"current_value"`
	Min            float64  `json:"min"`
	Max            float64  `json:"max"`
	Threshold      float64  `json:"threshold"`
	LowerThreshold float64  `json:"lower_threshold"`
	MinMeasured    *float64 `json:"min_measured,omitempty"`
	MaxMeasured    *float64 `json:"max_measured,omitempty"`
	Average        float64  `json:"average"`
	Animating      bool     `json:"animating"`
	Alert          bool     `json:"alert"`
	Visible        bool     `json:"visible"`
	PendingEvents  int      `json:"pending_events"`
	ActiveSections []string `json:"active_sections,omitempty"`
	Alarms         int      `json:"alarms,omitempty"`
	Time           string   `json:"time,omitempty"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	FrameMs     int64  `json:"frame_ms"`
	Broker      string `json:"broker"`
	TopicPrefix string `json:"topic_prefix"`
	HTTPAddr    string `json:"http_addr"`
}

func buildTile(ts TileSnapshot) TileJSON {
	tj := TileJSON{
		Name:           ts.Name,
		Kind:           ts.Kind,
		Title:          ts.Title,
		Unit:           ts.Unit,
		Value:          ts.Value,
		CurrentValue:   ts.CurrentValue,
		Min:            ts.MinValue,
		Max:            ts.MaxValue,
		Threshold:      ts.Threshold,
		LowerThreshold: ts.LowerThreshold,
		Average:        ts.Average,
		Animating:      ts.Animating,
		Alert:          ts.Alert,
		Visible:        ts.Visible,
		PendingEvents:  ts.PendingEvents,
		ActiveSections: ts.ActiveSections,
		Alarms:         ts.Alarms,
	}
	if ts.Measured() {
		lo, hi := ts.MinMeasuredValue, ts.MaxMeasuredValue
		tj.MinMeasured, tj.MaxMeasured = &lo, &hi
	}
	if ts.Running {
		tj.Time = ts.Time.UTC().Format(time.RFC3339)
	}
	return tj
}

func buildInner(snap Snapshot) StatusInner {
	tiles := make([]TileJSON, 0, len(snap.Tiles))
	for _, ts := range snap.Tiles {
		tiles = append(tiles, buildTile(ts))
	}
	inner := StatusInner{
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Tiles:         tiles,
		Config: ConfigJSON{
			FrameMs:     snap.Config.FrameMs,
			Broker:      snap.Config.Broker,
			TopicPrefix: snap.Config.TopicPrefix,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if n := snap.Network; n != nil {
		inner.Network = &NetworkJSON{
			Type:       n.Type,
			IP:         n.IP,
			Status:     n.Status,
			Gateway:    n.Gateway,
			WifiStatus: n.WifiStatus,
			SSID:       n.SSID,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatTileJSON returns the JSON for a single tile.
func FormatTileJSON(ts TileSnapshot) []byte {
	data, _ := json.MarshalIndent(buildTile(ts), "", "  ")
	return data
}
