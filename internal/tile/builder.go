package tile

import (
	"time"
)

// DefaultAnimationDuration is used when no duration is configured.
const DefaultAnimationDuration = 800 * time.Millisecond

// Settings is everything New needs to construct a tile.
type Settings struct {
	Kind        Kind
	Title       string
	Text        string
	Description string
	Unit        string
	Decimals    int

	MinValue       float64
	MaxValue       float64
	Value          float64
	Threshold      float64
	LowerThreshold float64
	ReferenceValue float64

	CheckThreshold        bool
	CheckLowerThreshold   bool
	CheckSectionsForValue bool
	SectionsVisible       bool
	Sections              []*Section

	Animated          bool
	AnimationDuration time.Duration
	ReturnToZero      bool
	StartFromZero     bool

	AveragingEnabled bool
	AveragingPeriod  int

	MaxChartDataPoints int

	// Clock tiles.
	Time            time.Time
	Running         bool
	DiscreteSeconds bool
	DiscreteMinutes bool
	AlarmsEnabled   bool
	Alarms          []*Alarm

	// Clock returns the wall time used for speed limiting and samples.
	// Defaults to time.Now.
	Clock func() time.Time

	// Scheduler drives the logical clock while the tile is running.
	Scheduler Scheduler

	Listeners []Listener
}

// DefaultSettings returns the presets for kind k.
func DefaultSettings(k Kind) Settings {
	s := Settings{
		Kind:              k,
		Decimals:          1,
		MinValue:          0,
		MaxValue:          100,
		Threshold:         100,
		AnimationDuration: DefaultAnimationDuration,
		AveragingPeriod:   10,
	}
	applyPreset(k, &s)
	return s
}

// Builder stages tile settings before construction.
//
//	t := tile.NewBuilder(tile.KindGauge).
//		Title("Flow").
//		MaxValue(40).
//		Threshold(30).
//		Build()
type Builder struct {
	s Settings
}

// NewBuilder starts from the presets of kind k.
func NewBuilder(k Kind) *Builder {
	return &Builder{s: DefaultSettings(k)}
}

func (b *Builder) Title(v string) *Builder       { b.s.Title = v; return b }
func (b *Builder) Text(v string) *Builder        { b.s.Text = v; return b }
func (b *Builder) Description(v string) *Builder { b.s.Description = v; return b }
func (b *Builder) Unit(v string) *Builder        { b.s.Unit = v; return b }
func (b *Builder) Decimals(v int) *Builder       { b.s.Decimals = v; return b }

func (b *Builder) MinValue(v float64) *Builder       { b.s.MinValue = v; return b }
func (b *Builder) MaxValue(v float64) *Builder       { b.s.MaxValue = v; return b }
func (b *Builder) Value(v float64) *Builder          { b.s.Value = v; return b }
func (b *Builder) Threshold(v float64) *Builder      { b.s.Threshold = v; return b }
func (b *Builder) LowerThreshold(v float64) *Builder { b.s.LowerThreshold = v; return b }
func (b *Builder) ReferenceValue(v float64) *Builder { b.s.ReferenceValue = v; return b }

func (b *Builder) CheckThreshold(v bool) *Builder        { b.s.CheckThreshold = v; return b }
func (b *Builder) CheckLowerThreshold(v bool) *Builder   { b.s.CheckLowerThreshold = v; return b }
func (b *Builder) CheckSectionsForValue(v bool) *Builder { b.s.CheckSectionsForValue = v; return b }
func (b *Builder) SectionsVisible(v bool) *Builder       { b.s.SectionsVisible = v; return b }

// Sections replaces the staged sections.
func (b *Builder) Sections(sections ...*Section) *Builder {
	b.s.Sections = sections
	return b
}

func (b *Builder) Animated(v bool) *Builder                   { b.s.Animated = v; return b }
func (b *Builder) AnimationDuration(d time.Duration) *Builder { b.s.AnimationDuration = d; return b }
func (b *Builder) ReturnToZero(v bool) *Builder               { b.s.ReturnToZero = v; return b }
func (b *Builder) StartFromZero(v bool) *Builder              { b.s.StartFromZero = v; return b }

func (b *Builder) AveragingEnabled(v bool) *Builder { b.s.AveragingEnabled = v; return b }
func (b *Builder) AveragingPeriod(n int) *Builder   { b.s.AveragingPeriod = n; return b }

func (b *Builder) MaxChartDataPoints(n int) *Builder { b.s.MaxChartDataPoints = n; return b }

func (b *Builder) Time(v time.Time) *Builder       { b.s.Time = v; return b }
func (b *Builder) Running(v bool) *Builder         { b.s.Running = v; return b }
func (b *Builder) DiscreteSeconds(v bool) *Builder { b.s.DiscreteSeconds = v; return b }
func (b *Builder) DiscreteMinutes(v bool) *Builder { b.s.DiscreteMinutes = v; return b }
func (b *Builder) AlarmsEnabled(v bool) *Builder   { b.s.AlarmsEnabled = v; return b }

// Alarms replaces the staged alarms.
func (b *Builder) Alarms(alarms ...*Alarm) *Builder {
	b.s.Alarms = alarms
	return b
}

func (b *Builder) Clock(now func() time.Time) *Builder { b.s.Clock = now; return b }
func (b *Builder) Scheduler(s Scheduler) *Builder      { b.s.Scheduler = s; return b }

// Listener adds a listener that is registered before any event is fired.
func (b *Builder) Listener(l Listener) *Builder {
	b.s.Listeners = append(b.s.Listeners, l)
	return b
}

// Settings returns a copy of the staged settings.
func (b *Builder) Settings() Settings {
	return b.s
}

// Build constructs the tile.
func (b *Builder) Build() *Tile {
	return New(b.s)
}
