package tile

import (
	"time"

	"github.com/gammazero/deque"
)

// MaxAveragingPeriod is the largest number of samples a window keeps.
const MaxAveragingPeriod = 1000

// MovingAverage is a window of at most period time samples. Once full,
// each new sample evicts the oldest one.
// Not safe for concurrent use.
type MovingAverage struct {
	samples deque.Deque[TimeSample]
	period  int
	now     func() time.Time
}

// NewMovingAverage creates a window holding at most period samples.
// The period is clamped to [0, MaxAveragingPeriod].
func NewMovingAverage(period int, now func() time.Time) *MovingAverage {
	if now == nil {
		now = time.Now
	}
	return &MovingAverage{period: clampPeriod(period), now: now}
}

func clampPeriod(period int) int {
	return min(max(period, 0), MaxAveragingPeriod)
}

// Add appends a sample, evicting the oldest one if the window is full.
func (m *MovingAverage) Add(s TimeSample) {
	if m.period == 0 {
		return
	}
	m.samples.PushBack(s)
	m.trim()
}

func (m *MovingAverage) trim() {
	for m.samples.Len() > m.period {
		m.samples.PopFront()
	}
}

// AddValue records v at the current time.
func (m *MovingAverage) AddValue(v float64) {
	m.Add(TimeSample{Timestamp: m.now(), Value: v})
}

// Window returns the retained samples, oldest first.
func (m *MovingAverage) Window() []TimeSample {
	n := m.samples.Len()
	if n == 0 {
		return nil
	}
	out := make([]TimeSample, n)
	for i := range n {
		out[i] = m.samples.At(i)
	}
	return out
}

// Average returns the mean of all retained samples, or 0 if there are none.
func (m *MovingAverage) Average() float64 {
	n := m.samples.Len()
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		sum += m.samples.At(i).Value
	}
	return sum / float64(n)
}

// TimeBasedAverageOf returns the mean of the samples taken within the last d.
func (m *MovingAverage) TimeBasedAverageOf(d time.Duration) float64 {
	now := m.now()
	from := now.Add(-d)

	var sum float64
	var n int
	for i := range m.samples.Len() {
		s := m.samples.At(i)
		if s.Timestamp.Before(from) || s.Timestamp.After(now) {
			continue
		}
		sum += s.Value
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// FirstEntry returns the oldest retained sample.
func (m *MovingAverage) FirstEntry() (TimeSample, bool) {
	if m.samples.Len() == 0 {
		return TimeSample{}, false
	}
	return m.samples.Front(), true
}

// LastEntry returns the newest retained sample.
func (m *MovingAverage) LastEntry() (TimeSample, bool) {
	if m.samples.Len() == 0 {
		return TimeSample{}, false
	}
	return m.samples.Back(), true
}

// TimeSpan is the time between the oldest and the newest sample.
func (m *MovingAverage) TimeSpan() time.Duration {
	first, ok := m.FirstEntry()
	if !ok {
		return 0
	}
	last, _ := m.LastEntry()
	return last.Timestamp.Sub(first.Timestamp)
}

// Period returns the window capacity.
func (m *MovingAverage) Period() int {
	return m.period
}

// SetPeriod changes the capacity. Shrinking drops the oldest samples.
func (m *MovingAverage) SetPeriod(period int) {
	m.period = clampPeriod(period)
	m.trim()
}

// IsFilling reports whether the window has not reached its capacity yet.
func (m *MovingAverage) IsFilling() bool {
	return m.samples.Len() < m.period
}

// Len returns the number of retained samples.
func (m *MovingAverage) Len() int {
	return m.samples.Len()
}

// Reset drops all samples.
func (m *MovingAverage) Reset() {
	m.samples.Clear()
}
