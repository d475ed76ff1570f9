package config

import (
	"fmt"
	"time"

	"github.com/sweeney/tiled/internal/tile"
)

// GPIO binding defaults.
const (
	DefaultGPIOPoll     = 100 * time.Millisecond
	DefaultGPIODebounce = 250 * time.Millisecond
)

func (tc TileConfig) kind() (tile.Kind, error) {
	if tc.Kind == "" {
		return tile.KindGauge, nil
	}
	k, err := tile.ParseKind(tc.Kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, tc.Kind)
	}
	return k, nil
}

// Builder returns a tile builder with the kind's presets overlaid by tc.
// today anchors time-of-day alarms. Clock, scheduler and listeners are left
// to the caller.
func (tc TileConfig) Builder(today time.Time) (*tile.Builder, error) {
	k, err := tc.kind()
	if err != nil {
		return nil, err
	}
	b := tile.NewBuilder(k).
		Title(tc.Title).
		Text(tc.Text).
		Description(tc.Description).
		ReturnToZero(tc.ReturnToZero).
		StartFromZero(tc.StartFromZero).
		AlarmsEnabled(tc.AlarmsEnabled)

	if tc.Unit != "" {
		b.Unit(tc.Unit)
	}
	if tc.Title == "" {
		b.Title(tc.Name)
	}
	setInt(tc.Decimals, b.Decimals)
	setFloat(tc.Min, b.MinValue)
	setFloat(tc.Max, b.MaxValue)
	setFloat(tc.Value, b.Value)
	setFloat(tc.Threshold, b.Threshold)
	setFloat(tc.LowerThreshold, b.LowerThreshold)
	setFloat(tc.Reference, b.ReferenceValue)
	setBool(tc.CheckThreshold, b.CheckThreshold)
	setBool(tc.CheckLowerThreshold, b.CheckLowerThreshold)
	setBool(tc.CheckSections, b.CheckSectionsForValue)
	setBool(tc.SectionsVisible, b.SectionsVisible)
	setBool(tc.Animated, b.Animated)
	setBool(tc.Averaging, b.AveragingEnabled)
	setInt(tc.AveragingPeriod, b.AveragingPeriod)
	setInt(tc.MaxChartPoints, b.MaxChartDataPoints)
	setBool(tc.Running, b.Running)
	setBool(tc.DiscreteSeconds, b.DiscreteSeconds)
	setBool(tc.DiscreteMinutes, b.DiscreteMinutes)
	if tc.AnimationDuration.Duration > 0 {
		b.AnimationDuration(tc.AnimationDuration.Duration)
	}

	sections := make([]*tile.Section, 0, len(tc.Sections))
	for _, sc := range tc.Sections {
		sections = append(sections, tile.NewSection(sc.Start, sc.Stop, sc.Text, sc.Color))
	}
	b.Sections(sections...)

	alarms := make([]*tile.Alarm, 0, len(tc.Alarms))
	for _, ac := range tc.Alarms {
		a, err := ac.resolve(today)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	b.Alarms(alarms...)

	return b, nil
}

// PollInterval returns the configured poll interval or DefaultGPIOPoll.
func (g GPIOConfig) PollInterval() time.Duration {
	if g.Poll.Duration > 0 {
		return g.Poll.Duration
	}
	return DefaultGPIOPoll
}

// DebounceWindow returns the configured debounce, DefaultGPIODebounce when
// unset, or zero when disabled.
func (g GPIOConfig) DebounceWindow() time.Duration {
	switch {
	case g.Debounce.Duration < 0:
		return 0
	case g.Debounce.Duration == 0:
		return DefaultGPIODebounce
	}
	return g.Debounce.Duration
}

func (ac AlarmConfig) resolve(today time.Time) (*tile.Alarm, error) {
	rep, err := tile.ParseRepetition(ac.Repetition)
	if err != nil {
		return nil, err
	}
	at, err := parseAlarmTime(ac.Time, today)
	if err != nil {
		return nil, err
	}
	a := tile.NewAlarm(at, rep, ac.Text, nil)
	if ac.Armed != nil {
		a.Armed = *ac.Armed
	}
	return a, nil
}

func parseAlarmTime(s string, today time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.TimeOnly, "15:04"} {
		if t, err := time.ParseInLocation(layout, s, today.Location()); err == nil {
			y, m, d := today.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, today.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid alarm time %q", s)
}

func setFloat(v *float64, set func(float64) *tile.Builder) {
	if v != nil {
		set(*v)
	}
}

func setInt(v *int, set func(int) *tile.Builder) {
	if v != nil {
		set(*v)
	}
}

func setBool(v *bool, set func(bool) *tile.Builder) {
	if v != nil {
		set(*v)
	}
}
