package tile

import (
	"slices"
	"time"
)

// Tile is the value model of a dashboard tile.
//
// A tile is owned by a single goroutine (the host's main loop). All
// setters, Step and Tick must be called from it. Out-of-range writes are
// never rejected: bounds move, thresholds are clamped.
type Tile struct {
	kind        Kind
	title       string
	text        string
	description string
	unit        string
	decimals    int

	value        float64 // target
	currentValue float64
	oldValue     float64 // target before the last SetValue
	formerValue  float64 // current value before its last change

	minValue       float64
	maxValue       float64
	valueRange     float64
	threshold      float64
	lowerThreshold float64
	referenceValue float64

	minMeasuredValue float64
	maxMeasuredValue float64

	checkThreshold        bool
	checkLowerThreshold   bool
	checkSectionsForValue bool
	sectionsVisible       bool
	sections              []*Section

	animated          bool
	animationDuration time.Duration
	returnToZero      bool
	startFromZero     bool
	lastCall          time.Time
	transition        *transition

	averagingEnabled bool
	average          *MovingAverage

	alert              bool
	chartData          []ChartData
	maxChartDataPoints int

	clock clockState

	now        func() time.Time
	dispatcher Dispatcher
}

// New creates a tile from s. The tile starts not visible: events fired
// before the host calls SetVisible(true) are queued.
func New(s Settings) *Tile {
	now := s.Clock
	if now == nil {
		now = time.Now
	}

	t := &Tile{
		kind:                  s.Kind,
		title:                 s.Title,
		text:                  s.Text,
		description:           s.Description,
		unit:                  s.Unit,
		decimals:              s.Decimals,
		minValue:              s.MinValue,
		maxValue:              max(s.MinValue, s.MaxValue),
		checkThreshold:        s.CheckThreshold,
		checkLowerThreshold:   s.CheckLowerThreshold,
		checkSectionsForValue: s.CheckSectionsForValue,
		sectionsVisible:       s.SectionsVisible,
		animated:              s.Animated,
		animationDuration:     clampDuration(s.AnimationDuration),
		startFromZero:         s.StartFromZero,
		averagingEnabled:      s.AveragingEnabled,
		average:               NewMovingAverage(s.AveragingPeriod, now),
		maxChartDataPoints:    s.MaxChartDataPoints,
		now:                   now,
	}
	if s.AnimationDuration == 0 {
		t.animationDuration = DefaultAnimationDuration
	}

	t.valueRange = t.maxValue - t.minValue
	t.threshold = clamp(t.minValue, t.maxValue, s.Threshold)
	t.lowerThreshold = clamp(t.minValue, t.maxValue, s.LowerThreshold)
	t.referenceValue = clamp(t.minValue, t.maxValue, s.ReferenceValue)
	t.returnToZero = s.ReturnToZero && t.minValue <= 0

	v := clamp(t.minValue, t.maxValue, s.Value)
	if t.startFromZero && t.minValue < 0 {
		v = 0
	}
	t.value, t.currentValue, t.oldValue, t.formerValue = v, v, v, v

	// Inverted on purpose: the first observed value widens both.
	t.minMeasuredValue = t.maxValue
	t.maxMeasuredValue = t.minValue

	for _, sec := range s.Sections {
		if sec != nil {
			t.sections = append(t.sections, sec)
		}
	}
	sortSections(t.sections)

	for _, l := range s.Listeners {
		t.dispatcher.AddListener(l)
	}

	t.initClock(s)
	return t
}

func (t *Tile) fire(evt Event) {
	t.dispatcher.Fire(evt)
}

// AddListener registers l for tile events. Adding twice has no effect.
func (t *Tile) AddListener(l Listener) { t.dispatcher.AddListener(l) }

// RemoveListener unregisters l.
func (t *Tile) RemoveListener(l Listener) { t.dispatcher.RemoveListener(l) }

// SetVisible tells the tile whether it is shown. Becoming visible flushes
// all events queued while hidden, in order.
func (t *Tile) SetVisible(visible bool) { t.dispatcher.SetVisible(visible) }

// Visible reports whether events are delivered immediately.
func (t *Tile) Visible() bool { return t.dispatcher.Visible() }

// PendingEvents returns the number of events waiting for visibility.
func (t *Tile) PendingEvents() int { return t.dispatcher.Pending() }

// SetValue sets the target value.
//
// An update arriving sooner than one animation duration after the previous
// one is still accepted, but snaps instead of animating so a transition is
// never restarted faster than it can complete.
func (t *Tile) SetValue(v float64) {
	now := t.now()
	withinSpeedLimit := t.lastCall.IsZero() || now.Sub(t.lastCall) >= t.animationDuration
	t.lastCall = now

	t.oldValue = t.value
	t.value = v
	t.checkRange(v)

	if t.animated && withinSpeedLimit {
		t.startTransition(v, t.animationDuration, false)
	} else {
		t.transition = nil
		t.setCurrentValue(v)
		t.fire(Event{Type: EventFinished})
	}

	if t.averagingEnabled {
		t.average.Add(TimeSample{Timestamp: now, Value: v})
	}
}

// IncreaseValue raises the target by d.
func (t *Tile) IncreaseValue(d float64) { t.SetValue(t.value + d) }

// DecreaseValue lowers the target by d.
func (t *Tile) DecreaseValue(d float64) { t.SetValue(t.value - d) }

func (t *Tile) setCurrentValue(v float64) {
	former := t.currentValue
	t.formerValue = former
	t.currentValue = v
	t.fire(Event{Type: EventValue})

	t.checkThresholds(former, v)
	if t.checkSectionsForValue {
		t.checkSections(v)
	}
	t.trackMeasured(v)
}

func (t *Tile) Value() float64        { return t.value }
func (t *Tile) CurrentValue() float64 { return t.currentValue }
func (t *Tile) OldValue() float64     { return t.oldValue }
func (t *Tile) FormerValue() float64  { return t.formerValue }

func (t *Tile) MinValue() float64 { return t.minValue }
func (t *Tile) MaxValue() float64 { return t.maxValue }

// Range is MaxValue - MinValue.
func (t *Tile) Range() float64 { return t.valueRange }

// SetMinValue sets the lower bound. If it exceeds the upper bound, the
// upper bound follows.
func (t *Tile) SetMinValue(v float64) {
	t.minValue = v
	if v > t.maxValue {
		t.maxValue = v
	}
	t.recalc()
}

// SetMaxValue sets the upper bound. If it is below the lower bound, the
// lower bound follows.
func (t *Tile) SetMaxValue(v float64) {
	t.maxValue = v
	if v < t.minValue {
		t.minValue = v
	}
	t.recalc()
}

func (t *Tile) recalc() {
	t.valueRange = t.maxValue - t.minValue
	t.threshold = clamp(t.minValue, t.maxValue, t.threshold)
	t.lowerThreshold = clamp(t.minValue, t.maxValue, t.lowerThreshold)
	t.referenceValue = clamp(t.minValue, t.maxValue, t.referenceValue)
	if t.minValue > 0 {
		t.returnToZero = false
	}
	t.fire(Event{Type: EventRecalc})
}

func (t *Tile) Threshold() float64      { return t.threshold }
func (t *Tile) LowerThreshold() float64 { return t.lowerThreshold }
func (t *Tile) ReferenceValue() float64 { return t.referenceValue }

// SetThreshold sets the threshold, clamped into [MinValue, MaxValue].
func (t *Tile) SetThreshold(v float64) {
	t.threshold = clamp(t.minValue, t.maxValue, v)
	t.fire(Event{Type: EventResize})
}

// SetLowerThreshold sets the lower threshold, clamped into [MinValue, MaxValue].
func (t *Tile) SetLowerThreshold(v float64) {
	t.lowerThreshold = clamp(t.minValue, t.maxValue, v)
	t.fire(Event{Type: EventResize})
}

// SetReferenceValue sets the reference marker, clamped into the scale.
func (t *Tile) SetReferenceValue(v float64) {
	t.referenceValue = clamp(t.minValue, t.maxValue, v)
	t.fire(Event{Type: EventResize})
}

func (t *Tile) CheckThreshold() bool      { return t.checkThreshold }
func (t *Tile) CheckLowerThreshold() bool { return t.checkLowerThreshold }

func (t *Tile) SetCheckThreshold(v bool)      { t.checkThreshold = v }
func (t *Tile) SetCheckLowerThreshold(v bool) { t.checkLowerThreshold = v }

func (t *Tile) CheckSectionsForValue() bool     { return t.checkSectionsForValue }
func (t *Tile) SetCheckSectionsForValue(v bool) { t.checkSectionsForValue = v }

func (t *Tile) SectionsVisible() bool { return t.sectionsVisible }

func (t *Tile) SetSectionsVisible(v bool) {
	t.sectionsVisible = v
	t.fire(Event{Type: EventVisibility})
}

func (t *Tile) MinMeasuredValue() float64 { return t.minMeasuredValue }
func (t *Tile) MaxMeasuredValue() float64 { return t.maxMeasuredValue }

// ResetMeasuredValues collapses the measured range onto the current value.
func (t *Tile) ResetMeasuredValues() {
	t.minMeasuredValue = t.currentValue
	t.maxMeasuredValue = t.currentValue
	t.fire(Event{Type: EventRedraw})
}

func (t *Tile) Animated() bool                   { return t.animated }
func (t *Tile) AnimationDuration() time.Duration { return t.animationDuration }
func (t *Tile) ReturnToZero() bool               { return t.returnToZero }

// SetAnimated switches animation on or off. Switching off completes any
// in-flight transition immediately.
func (t *Tile) SetAnimated(v bool) {
	if t.animated == v {
		return
	}
	t.animated = v
	if v {
		t.fire(Event{Type: EventAnimatedOn})
		return
	}
	t.fire(Event{Type: EventAnimatedOff})
	if t.transition != nil {
		t.transition = nil
		t.setCurrentValue(t.value)
		t.fire(Event{Type: EventFinished})
	}
}

// SetAnimationDuration sets the transition duration, clamped to
// [MinAnimationDuration, MaxAnimationDuration].
func (t *Tile) SetAnimationDuration(d time.Duration) {
	t.animationDuration = clampDuration(d)
}

// SetReturnToZero enables the follow-up transition back to zero. It is
// ignored when the scale does not include zero.
func (t *Tile) SetReturnToZero(v bool) {
	t.returnToZero = v && t.minValue <= 0
}

func (t *Tile) AveragingEnabled() bool        { return t.averagingEnabled }
func (t *Tile) AveragingPeriod() int          { return t.average.Period() }
func (t *Tile) MovingAverage() *MovingAverage { return t.average }

// Average returns the mean of the averaging window.
func (t *Tile) Average() float64 { return t.average.Average() }

func (t *Tile) SetAveragingEnabled(v bool) {
	t.averagingEnabled = v
	t.fire(Event{Type: EventRedraw})
}

// SetAveragingPeriod resizes the averaging window, keeping the newest samples.
func (t *Tile) SetAveragingPeriod(n int) {
	t.average.SetPeriod(n)
	t.fire(Event{Type: EventRedraw})
}

func (t *Tile) Kind() Kind          { return t.kind }
func (t *Tile) Title() string       { return t.title }
func (t *Tile) Text() string        { return t.text }
func (t *Tile) Description() string { return t.description }
func (t *Tile) Unit() string        { return t.unit }
func (t *Tile) Decimals() int       { return t.decimals }

func (t *Tile) SetTitle(v string)       { t.title = v; t.fire(Event{Type: EventRedraw}) }
func (t *Tile) SetText(v string)        { t.text = v; t.fire(Event{Type: EventRedraw}) }
func (t *Tile) SetDescription(v string) { t.description = v; t.fire(Event{Type: EventRedraw}) }
func (t *Tile) SetUnit(v string)        { t.unit = v; t.fire(Event{Type: EventRedraw}) }

// SetDecimals sets the number of decimals, clamped to [0, 6].
func (t *Tile) SetDecimals(n int) {
	t.decimals = min(max(n, 0), 6)
	t.fire(Event{Type: EventRedraw})
}

func (t *Tile) Alert() bool { return t.alert }

func (t *Tile) SetAlert(v bool) {
	t.alert = v
	t.fire(Event{Type: EventAlert})
}

// ChartData returns a copy of the chart data points.
func (t *Tile) ChartData() []ChartData {
	return slices.Clone(t.chartData)
}

// AddChartData appends data points, dropping the oldest beyond the
// configured maximum.
func (t *Tile) AddChartData(data ...ChartData) {
	now := t.now()
	for _, d := range data {
		if d.Timestamp.IsZero() {
			d.Timestamp = now
		}
		t.chartData = append(t.chartData, d)
	}
	if t.maxChartDataPoints > 0 && len(t.chartData) > t.maxChartDataPoints {
		t.chartData = slices.Delete(t.chartData, 0, len(t.chartData)-t.maxChartDataPoints)
	}
	t.fire(Event{Type: EventData})
}

// ClearChartData removes all chart data points.
func (t *Tile) ClearChartData() {
	t.chartData = nil
	t.fire(Event{Type: EventClearData})
}
