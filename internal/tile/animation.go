package tile

import "time"

// Animation duration limits.
const (
	MinAnimationDuration = 10 * time.Millisecond
	MaxAnimationDuration = 10 * time.Second

	// returnToZeroRatio scales the duration of the transition back to zero.
	returnToZeroRatio = 0.2
)

// transition interpolates the current value from one value to another.
type transition struct {
	from     float64
	to       float64
	start    time.Time
	duration time.Duration
	// returning is set on the follow-up transition back to zero.
	returning bool
}

// valueAt returns the interpolated value at now and whether the
// transition is complete.
func (tr *transition) valueAt(now time.Time) (float64, bool) {
	elapsed := now.Sub(tr.start)
	if elapsed >= tr.duration || tr.duration <= 0 {
		return tr.to, true
	}
	if elapsed <= 0 {
		return tr.from, false
	}
	frac := float64(elapsed) / float64(tr.duration)
	return tr.from + (tr.to-tr.from)*easeBoth(frac), false
}

func clampDuration(d time.Duration) time.Duration {
	return min(max(d, MinAnimationDuration), MaxAnimationDuration)
}

// Ease-in/ease-out cubic bezier with control points (0.5, 0.4), (0.4, 1.0).
const (
	easeX1, easeY1 = 0.5, 0.4
	easeX2, easeY2 = 0.4, 1.0
)

func bezier(t, p1, p2 float64) float64 {
	u := 1 - t
	return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
}

// easeBoth maps linear progress x in [0, 1] onto the curve.
func easeBoth(x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	// x(t) is monotonic for these control points, bisection is enough.
	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < 32; i++ {
		bx := bezier(t, easeX1, easeX2)
		if bx < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bezier(t, easeY1, easeY2)
}

// Animating reports whether a transition is in flight.
func (t *Tile) Animating() bool {
	return t.transition != nil
}

// startTransition cancels any in-flight transition and starts a new one.
func (t *Tile) startTransition(to float64, d time.Duration, returning bool) {
	t.transition = &transition{
		from:      t.currentValue,
		to:        to,
		start:     t.now(),
		duration:  d,
		returning: returning,
	}
}

// Step advances the in-flight transition to now. It returns true while a
// transition is still running. Hosts call it from their frame loop.
func (t *Tile) Step(now time.Time) bool {
	tr := t.transition
	if tr == nil {
		return false
	}
	v, done := tr.valueAt(now)
	if v != t.currentValue {
		t.setCurrentValue(v)
	}
	if !done {
		return true
	}
	t.transition = nil
	t.fire(Event{Type: EventFinished})

	if !tr.returning && t.returnToZero && t.currentValue != 0 {
		t.oldValue = t.value
		t.value = 0
		t.startTransition(0, time.Duration(float64(t.animationDuration)*returnToZeroRatio), true)
		// Keep the follow-up anchored to the completion time.
		t.transition.start = now
		return true
	}
	return false
}
