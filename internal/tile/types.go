// Package tile contains the headless core of a dashboard tile: value
// transitions, threshold and section detection, a moving-average window,
// clock alarms and a deferred event dispatcher.
//
// Nothing in this package renders, sleeps or starts goroutines. Time enters
// through the configured clock and through Step/Tick, which the host calls
// from its main loop.
package tile

import (
	"time"
)

// EventType identifies what happened to a tile.
type EventType string

const (
	EventValue                  EventType = "VALUE"
	EventFinished               EventType = "FINISHED"
	EventRecalc                 EventType = "RECALC"
	EventRedraw                 EventType = "REDRAW"
	EventResize                 EventType = "RESIZE"
	EventVisibility             EventType = "VISIBILITY"
	EventSection                EventType = "SECTION"
	EventData                   EventType = "DATA"
	EventThresholdExceeded      EventType = "THRESHOLD_EXCEEDED"
	EventThresholdUnderrun      EventType = "THRESHOLD_UNDERRUN"
	EventLowerThresholdExceeded EventType = "LOWER_THRESHOLD_EXCEEDED"
	EventLowerThresholdUnderrun EventType = "LOWER_THRESHOLD_UNDERRUN"
	EventMaxValueExceeded       EventType = "MAX_VALUE_EXCEEDED"
	EventMinValueUnderrun       EventType = "MIN_VALUE_UNDERRUN"
	EventValueInRange           EventType = "VALUE_IN_RANGE"
	EventAlert                  EventType = "ALERT"
	EventClearData              EventType = "CLEAR_DATA"
	EventAnimatedOn             EventType = "ANIMATED_ON"
	EventAnimatedOff            EventType = "ANIMATED_OFF"

	EventSectionEntered EventType = "SECTION_ENTERED"
	EventSectionLeft    EventType = "SECTION_LEFT"
	EventSectionUpdate  EventType = "SECTION_UPDATE"

	EventAlarm EventType = "ALARM"
)

// Event is a single notification emitted by a tile.
// Section is set for section events, Alarm for alarm events.
type Event struct {
	Type    EventType
	Section *Section
	Alarm   *Alarm
}

// Listener receives tile events. Implementations are compared by
// reference when added or removed, so they must be comparable
// (pointer receivers are the usual choice).
type Listener interface {
	OnTileEvent(Event)
}

// TimeSample is a single value observed at a point in time.
type TimeSample struct {
	Timestamp time.Time
	Value     float64
}

// ChartData is a named data point shown by chart-style tiles.
type ChartData struct {
	Name      string
	Value     float64
	Timestamp time.Time
	Color     string
}

// Scheduler drives the logical clock of clock-style tiles. Start must
// replace any previous schedule; Stop must be safe to call when stopped.
type Scheduler interface {
	Start(interval time.Duration, tick func(elapsed time.Duration))
	Stop()
}
