package tile

// crossing compares a change from former to v against limit.
// Crossing upwards means leaving "below or equal" for "above".
func crossing(former, v, limit float64) (up, down bool) {
	up = former <= limit && v > limit
	down = former > limit && v <= limit
	return up, down
}

// checkThresholds fires threshold events for a change of the current value.
func (t *Tile) checkThresholds(former, v float64) {
	if t.checkThreshold {
		up, down := crossing(former, v, t.threshold)
		if up {
			t.fire(Event{Type: EventThresholdExceeded})
		} else if down {
			t.fire(Event{Type: EventThresholdUnderrun})
		}
	}
	if t.checkLowerThreshold {
		up, down := crossing(former, v, t.lowerThreshold)
		if up {
			t.fire(Event{Type: EventLowerThresholdExceeded})
		} else if down {
			t.fire(Event{Type: EventLowerThresholdUnderrun})
		}
	}
}

// checkRange classifies a new target value against the scale.
func (t *Tile) checkRange(v float64) {
	switch {
	case v > t.maxValue:
		t.fire(Event{Type: EventMaxValueExceeded})
	case v < t.minValue:
		t.fire(Event{Type: EventMinValueUnderrun})
	default:
		t.fire(Event{Type: EventValueInRange})
	}
}

// trackMeasured widens the measured range to include v.
func (t *Tile) trackMeasured(v float64) {
	if v < t.minMeasuredValue {
		t.minMeasuredValue = v
	}
	if v > t.maxMeasuredValue {
		t.maxMeasuredValue = v
	}
}

func clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
