package tile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newClockTile(t *testing.T, at time.Time, alarms ...*Alarm) (*Tile, *recorder, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	tl, rec := newVisibleTile(NewBuilder(KindClock).
		Time(at).
		AlarmsEnabled(true).
		Alarms(alarms...).
		Scheduler(sched))
	return tl, rec, sched
}

func TestClockPresetStartsScheduler(t *testing.T) {
	tl, _, sched := newClockTile(t, newFakeClock().Now())

	require.True(t, tl.Running())
	require.True(t, sched.running)
	require.Equal(t, []time.Duration{LongTickInterval}, sched.intervals)
	require.Equal(t, LongTickInterval, tl.TickInterval())
}

func TestTickIntervalSwitchRestartsScheduler(t *testing.T) {
	tl, _, sched := newClockTile(t, newFakeClock().Now())

	tl.SetDiscreteSeconds(false)

	require.Equal(t, ShortTickInterval, tl.TickInterval())
	require.Equal(t, 1, sched.stops)
	require.True(t, sched.running)
	require.Equal(t, []time.Duration{LongTickInterval, ShortTickInterval}, sched.intervals)

	tl.SetDiscreteSeconds(true)
	require.Equal(t, []time.Duration{LongTickInterval, ShortTickInterval, LongTickInterval}, sched.intervals)
}

func TestTickIntervalChangeWhileStopped(t *testing.T) {
	tl, _, sched := newClockTile(t, newFakeClock().Now())
	tl.SetRunning(false)
	require.Equal(t, 1, sched.stops)

	tl.SetDiscreteMinutes(false)
	require.Equal(t, ShortTickInterval, tl.TickInterval())
	require.Len(t, sched.intervals, 1, "stopped clocks are not rescheduled")

	tl.SetRunning(true)
	require.Equal(t, []time.Duration{LongTickInterval, ShortTickInterval}, sched.intervals)
}

func TestSetRunningIdempotent(t *testing.T) {
	tl, _, sched := newClockTile(t, newFakeClock().Now())

	tl.SetRunning(true)
	require.Len(t, sched.intervals, 1)

	tl.SetRunning(false)
	tl.SetRunning(false)
	require.Equal(t, 1, sched.stops)
}

func TestTickAdvancesTime(t *testing.T) {
	start := newFakeClock().Now()
	tl, _, sched := newClockTile(t, start)

	sched.tick(time.Second)
	sched.tick(time.Second)
	require.Equal(t, start.Add(2*time.Second), tl.Time())
}

func TestOnceAlarmFiresAndIsRemoved(t *testing.T) {
	start := newFakeClock().Now()
	ran := 0
	a := NewAlarm(start.Add(5*time.Second), Once, "tea", func() { ran++ })
	tl, rec, _ := newClockTile(t, start, a)

	for i := 0; i < 5; i++ {
		tl.Tick(time.Second)
	}
	require.Empty(t, rec.types(EventAlarm), "alarm time is not yet passed")

	tl.Tick(time.Second)
	require.Equal(t, []EventType{EventAlarm}, rec.types(EventAlarm))
	require.Equal(t, 1, ran)
	require.Same(t, a, rec.events[len(rec.events)-1].Alarm)
	require.Empty(t, tl.Alarms())

	tl.Tick(time.Second)
	require.Len(t, rec.types(EventAlarm), 1)
}

func TestHourlyAlarmFiresOncePerMatchingSecond(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 30, 9, 0, time.UTC)
	a := NewAlarm(time.Date(2026, 1, 1, 11, 30, 10, 0, time.UTC), Hourly, "", nil)
	tl, rec, _ := newClockTile(t, start, a)

	tl.Tick(500 * time.Millisecond)
	require.Empty(t, rec.types(EventAlarm))

	tl.Tick(500 * time.Millisecond)
	tl.Tick(200 * time.Millisecond)
	tl.Tick(200 * time.Millisecond)
	require.Len(t, rec.types(EventAlarm), 1)

	tl.Tick(time.Second)
	require.Len(t, rec.types(EventAlarm), 1)

	tl.SetTime(time.Date(2026, 1, 1, 13, 30, 10, 0, time.UTC))
	tl.Tick(0)
	require.Len(t, rec.types(EventAlarm), 2)
	require.Len(t, tl.Alarms(), 1, "repeating alarms stay registered")
}

func TestRepetitionMatching(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 10, 0, 0, time.UTC) // Thursday
	cases := []struct {
		rep  Repetition
		now  time.Time
		want bool
	}{
		{HalfHourly, time.Date(2026, 1, 1, 8, 40, 0, 0, time.UTC), true},
		{HalfHourly, time.Date(2026, 1, 3, 21, 10, 0, 0, time.UTC), true},
		{HalfHourly, time.Date(2026, 1, 1, 8, 25, 0, 0, time.UTC), false},
		{Hourly, time.Date(2026, 1, 1, 9, 10, 0, 0, time.UTC), true},
		{Hourly, time.Date(2026, 1, 1, 9, 10, 1, 0, time.UTC), false},
		{Daily, time.Date(2026, 1, 5, 8, 10, 0, 0, time.UTC), true},
		{Daily, time.Date(2026, 1, 5, 9, 10, 0, 0, time.UTC), false},
		{Weekly, time.Date(2026, 1, 8, 8, 10, 0, 0, time.UTC), true},
		{Weekly, time.Date(2026, 1, 2, 8, 10, 0, 0, time.UTC), false},
		{Once, at, false},
		{Once, at.Add(time.Millisecond), true},
	}
	for _, tc := range cases {
		a := &Alarm{Time: at, Repetition: tc.rep}
		require.Equal(t, tc.want, a.due(tc.now), "%s at %s", tc.rep, tc.now)
	}
}

func TestDisarmedAlarmDoesNotFire(t *testing.T) {
	start := newFakeClock().Now()
	a := NewAlarm(start.Add(-time.Hour), Hourly, "", nil)
	a.Armed = false
	a.Time = start.Add(-time.Hour + time.Second)
	tl, rec, _ := newClockTile(t, start, a)

	tl.Tick(time.Second)
	require.Empty(t, rec.types(EventAlarm))
}

func TestAlarmsDisabled(t *testing.T) {
	start := newFakeClock().Now()
	a := NewAlarm(start, Once, "", nil)
	tl, rec, _ := newClockTile(t, start, a)
	tl.SetAlarmsEnabled(false)

	tl.Tick(time.Second)
	require.Empty(t, rec.types(EventAlarm))
	require.Len(t, tl.Alarms(), 1)
}

func TestAlarmRegistration(t *testing.T) {
	tl, _, _ := newClockTile(t, newFakeClock().Now())

	a := &Alarm{Repetition: Daily}
	tl.AddAlarm(a)
	tl.AddAlarm(a)
	tl.AddAlarm(nil)
	require.Len(t, tl.Alarms(), 1)
	require.NotEqual(t, uuid.Nil, a.ID)

	tl.RemoveAlarm(&Alarm{})
	require.Len(t, tl.Alarms(), 1)

	tl.AddAlarm(NewAlarm(time.Time{}, Once, "", nil))
	tl.ClearAlarms()
	require.Empty(t, tl.Alarms())
}

func TestParseRepetition(t *testing.T) {
	for in, want := range map[string]Repetition{
		"":            Once,
		"once":        Once,
		"half_hourly": HalfHourly,
		" HOURLY ":    Hourly,
		"Daily":       Daily,
		"weekly":      Weekly,
	} {
		got, err := ParseRepetition(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseRepetition("fortnightly")
	require.Error(t, err)
	require.Equal(t, "Repetition(9)", Repetition(9).String())
}
