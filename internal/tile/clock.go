package tile

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tick intervals of a running clock.
const (
	LongTickInterval  = time.Second
	ShortTickInterval = 20 * time.Millisecond
)

// Repetition controls when an alarm fires again.
type Repetition int

const (
	Once Repetition = iota
	HalfHourly
	Hourly
	Daily
	Weekly
)

func (r Repetition) String() string {
	switch r {
	case Once:
		return "ONCE"
	case HalfHourly:
		return "HALF_HOURLY"
	case Hourly:
		return "HOURLY"
	case Daily:
		return "DAILY"
	case Weekly:
		return "WEEKLY"
	}
	return fmt.Sprintf("Repetition(%d)", int(r))
}

// ParseRepetition parses names like "daily" or "HALF_HOURLY".
func ParseRepetition(s string) (Repetition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ONCE":
		return Once, nil
	case "HALF_HOURLY":
		return HalfHourly, nil
	case "HOURLY":
		return Hourly, nil
	case "DAILY":
		return Daily, nil
	case "WEEKLY":
		return Weekly, nil
	}
	return Once, fmt.Errorf("unknown alarm repetition %q", s)
}

// Alarm fires an ALARM event when the tile's clock reaches Time, according
// to Repetition. Disarmed alarms are evaluated but never fire.
type Alarm struct {
	ID         uuid.UUID
	Time       time.Time
	Repetition Repetition
	Armed      bool
	Text       string

	// Command, if set, runs on the tile's loop after the event is fired.
	Command func()

	lastFired time.Time
}

// NewAlarm creates an armed alarm with a fresh ID.
func NewAlarm(at time.Time, rep Repetition, text string, cmd func()) *Alarm {
	return &Alarm{
		ID:         uuid.New(),
		Time:       at,
		Repetition: rep,
		Armed:      true,
		Text:       text,
		Command:    cmd,
	}
}

// due reports whether the alarm matches now. Repeating alarms match on
// whole seconds, so at most once per matching second.
func (a *Alarm) due(now time.Time) bool {
	at := a.Time.In(now.Location())
	sameSecond := at.Second() == now.Second()
	switch a.Repetition {
	case Once:
		return now.After(at)
	case HalfHourly:
		return sameSecond && (at.Minute() == now.Minute() || (at.Minute()+30)%60 == now.Minute())
	case Hourly:
		return sameSecond && at.Minute() == now.Minute()
	case Daily:
		return sameSecond && at.Minute() == now.Minute() && at.Hour() == now.Hour()
	case Weekly:
		return sameSecond && at.Minute() == now.Minute() && at.Hour() == now.Hour() &&
			at.Weekday() == now.Weekday()
	}
	return false
}

type clockState struct {
	time            time.Time
	running         bool
	discreteSeconds bool
	discreteMinutes bool
	alarmsEnabled   bool
	alarms          []*Alarm
	scheduler       Scheduler
}

func (t *Tile) initClock(s Settings) {
	t.clock = clockState{
		time:            s.Time,
		discreteSeconds: s.DiscreteSeconds,
		discreteMinutes: s.DiscreteMinutes,
		alarmsEnabled:   s.AlarmsEnabled,
		scheduler:       s.Scheduler,
	}
	if t.clock.time.IsZero() {
		t.clock.time = t.now()
	}
	for _, a := range s.Alarms {
		t.AddAlarm(a)
	}
	if s.Running {
		t.SetRunning(true)
	}
}

// Time returns the tile's logical clock.
func (t *Tile) Time() time.Time { return t.clock.time }

// SetTime moves the logical clock.
func (t *Tile) SetTime(v time.Time) {
	t.clock.time = v
	t.fire(Event{Type: EventRedraw})
}

// TickInterval is LongTickInterval when both minutes and seconds are
// discrete, ShortTickInterval otherwise.
func (t *Tile) TickInterval() time.Duration {
	if t.clock.discreteMinutes && t.clock.discreteSeconds {
		return LongTickInterval
	}
	return ShortTickInterval
}

func (t *Tile) Running() bool         { return t.clock.running }
func (t *Tile) DiscreteSeconds() bool { return t.clock.discreteSeconds }
func (t *Tile) DiscreteMinutes() bool { return t.clock.discreteMinutes }
func (t *Tile) AlarmsEnabled() bool   { return t.clock.alarmsEnabled }

// SetRunning starts or stops the clock's scheduler.
func (t *Tile) SetRunning(v bool) {
	if t.clock.running == v {
		return
	}
	t.clock.running = v
	sched := t.clock.scheduler
	if sched == nil {
		return
	}
	if v {
		sched.Start(t.TickInterval(), t.Tick)
	} else {
		sched.Stop()
	}
}

func (t *Tile) SetDiscreteSeconds(v bool) {
	t.clock.discreteSeconds = v
	t.reschedule()
}

func (t *Tile) SetDiscreteMinutes(v bool) {
	t.clock.discreteMinutes = v
	t.reschedule()
}

func (t *Tile) SetAlarmsEnabled(v bool) {
	t.clock.alarmsEnabled = v
}

// reschedule restarts a running scheduler so a changed interval applies.
func (t *Tile) reschedule() {
	sched := t.clock.scheduler
	if !t.clock.running || sched == nil {
		return
	}
	sched.Stop()
	sched.Start(t.TickInterval(), t.Tick)
}

// Tick advances the logical clock by elapsed and evaluates alarms.
func (t *Tile) Tick(elapsed time.Duration) {
	t.clock.time = t.clock.time.Add(elapsed)
	if t.clock.alarmsEnabled {
		t.checkAlarms(t.clock.time)
	}
}

func (t *Tile) checkAlarms(now time.Time) {
	second := now.Truncate(time.Second)
	var done []*Alarm
	for _, a := range slices.Clone(t.clock.alarms) {
		if !a.due(now) {
			continue
		}
		if a.Repetition == Once {
			done = append(done, a)
		} else if a.lastFired.Equal(second) {
			continue
		}
		a.lastFired = second
		if !a.Armed {
			continue
		}
		t.fire(Event{Type: EventAlarm, Alarm: a})
		if a.Command != nil {
			a.Command()
		}
	}
	for _, a := range done {
		t.RemoveAlarm(a)
	}
}

// Alarms returns a copy of the alarm list.
func (t *Tile) Alarms() []*Alarm {
	return slices.Clone(t.clock.alarms)
}

// AddAlarm adds a, assigning an ID if it has none.
func (t *Tile) AddAlarm(a *Alarm) {
	if a == nil || slices.Contains(t.clock.alarms, a) {
		return
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	t.clock.alarms = append(t.clock.alarms, a)
}

// RemoveAlarm removes a if present.
func (t *Tile) RemoveAlarm(a *Alarm) {
	i := slices.Index(t.clock.alarms, a)
	if i < 0 {
		return
	}
	t.clock.alarms = slices.Delete(t.clock.alarms, i, i+1)
}

// ClearAlarms removes all alarms.
func (t *Tile) ClearAlarms() {
	t.clock.alarms = nil
}
