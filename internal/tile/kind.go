package tile

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the presentation type of a tile. It only selects presets;
// all kinds share the same value engine.
type Kind int

const (
	KindGauge Kind = iota
	KindSparkline
	KindBarGauge
	KindSimpleDigitalGauge
	KindPercentage
	KindNumber
	KindText
	KindHighLow
	KindClock
	KindSwitch
	KindLED
	KindSlider
	KindPlusMinus
	KindTimer
	KindCircularProgress
	KindStock
	KindFluid
	KindRadialPercentage
	KindStatus
	KindLineChart
	KindBarChart
	KindCustom
)

var kindNames = map[Kind]string{
	KindGauge:              "gauge",
	KindSparkline:          "sparkline",
	KindBarGauge:           "bar_gauge",
	KindSimpleDigitalGauge: "simple_digital_gauge",
	KindPercentage:         "percentage",
	KindNumber:             "number",
	KindText:               "text",
	KindHighLow:            "high_low",
	KindClock:              "clock",
	KindSwitch:             "switch",
	KindLED:                "led",
	KindSlider:             "slider",
	KindPlusMinus:          "plus_minus",
	KindTimer:              "timer",
	KindCircularProgress:   "circular_progress",
	KindStock:              "stock",
	KindFluid:              "fluid",
	KindRadialPercentage:   "radial_percentage",
	KindStatus:             "status",
	KindLineChart:          "line_chart",
	KindBarChart:           "bar_chart",
	KindCustom:             "custom",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the kind with the given name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown tile kind %q", s)
}

// applyPreset sets the kind-specific defaults on s.
func applyPreset(k Kind, s *Settings) {
	switch k {
	case KindGauge, KindBarGauge, KindSimpleDigitalGauge, KindCircularProgress:
		s.Animated = true
	case KindSparkline:
		s.AveragingEnabled = true
		s.AveragingPeriod = 10
		s.Decimals = 1
	case KindPercentage, KindRadialPercentage:
		s.MaxValue = 100
		s.Unit = "%"
		s.Animated = true
	case KindHighLow, KindStock:
		s.AveragingEnabled = true
		s.AveragingPeriod = 30
	case KindClock:
		s.Running = true
		s.DiscreteSeconds = true
		s.DiscreteMinutes = true
	case KindTimer:
		s.Running = true
		s.DiscreteSeconds = false
		s.DiscreteMinutes = false
	case KindSwitch, KindLED, KindStatus:
		s.MinValue = 0
		s.MaxValue = 1
		s.Threshold = 0.5
		s.CheckThreshold = true
		s.Decimals = 0
	case KindSlider, KindPlusMinus:
		s.Decimals = 0
	case KindFluid:
		s.Animated = true
		s.AnimationDuration = 2 * time.Second
	case KindLineChart, KindBarChart:
		s.MaxChartDataPoints = 100
	}
}
