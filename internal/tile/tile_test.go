package tile

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	tl := NewBuilder(KindNumber).Build()

	require.Equal(t, 0.0, tl.MinValue())
	require.Equal(t, 100.0, tl.MaxValue())
	require.Equal(t, 100.0, tl.Range())
	require.Equal(t, 100.0, tl.Threshold())
	require.Equal(t, 0.0, tl.Value())
	require.Equal(t, 0.0, tl.CurrentValue())
	require.Equal(t, DefaultAnimationDuration, tl.AnimationDuration())
	require.False(t, tl.Visible())

	// Measured range starts inverted.
	require.Equal(t, 100.0, tl.MinMeasuredValue())
	require.Equal(t, 0.0, tl.MaxMeasuredValue())
}

func TestFirstObservationWidensMeasuredRange(t *testing.T) {
	tl := NewBuilder(KindNumber).Build()

	tl.SetValue(40)

	require.Equal(t, 40.0, tl.MinMeasuredValue())
	require.Equal(t, 40.0, tl.MaxMeasuredValue())
}

func TestSetValueNotAnimated(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber))

	tl.SetValue(42)

	require.Equal(t, 42.0, tl.Value())
	require.Equal(t, 42.0, tl.CurrentValue())
	require.Equal(t, 0.0, tl.OldValue())
	require.Equal(t, 0.0, tl.FormerValue())
	require.Equal(t, []EventType{EventValueInRange, EventValue, EventFinished}, rec.types())
}

func TestSetValueOutOfRange(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber))

	tl.SetValue(150)
	require.Equal(t, 150.0, tl.CurrentValue())
	tl.SetValue(-5)
	require.Equal(t, -5.0, tl.CurrentValue())
	tl.SetValue(50)

	require.Equal(t,
		[]EventType{EventMaxValueExceeded, EventMinValueUnderrun, EventValueInRange},
		rec.types(EventMaxValueExceeded, EventMinValueUnderrun, EventValueInRange))
}

func TestIncreaseDecreaseValue(t *testing.T) {
	tl := NewBuilder(KindNumber).Value(10).Build()

	tl.IncreaseValue(5)
	require.Equal(t, 15.0, tl.Value())
	tl.DecreaseValue(20)
	require.Equal(t, -5.0, tl.Value())
}

func TestThresholdsStayInRange(t *testing.T) {
	tl := NewBuilder(KindNumber).Build()
	rng := rand.New(rand.NewSource(1))

	ops := []func(float64){
		tl.SetMinValue,
		tl.SetMaxValue,
		tl.SetThreshold,
		tl.SetLowerThreshold,
	}
	for i := 0; i < 2000; i++ {
		v := rng.Float64()*400 - 200
		ops[rng.Intn(len(ops))](v)

		require.LessOrEqual(t, tl.MinValue(), tl.MaxValue(), "step %d", i)
		require.LessOrEqual(t, tl.MinValue(), tl.Threshold(), "step %d", i)
		require.LessOrEqual(t, tl.Threshold(), tl.MaxValue(), "step %d", i)
		require.LessOrEqual(t, tl.MinValue(), tl.LowerThreshold(), "step %d", i)
		require.LessOrEqual(t, tl.LowerThreshold(), tl.MaxValue(), "step %d", i)
		require.InDelta(t, tl.MaxValue()-tl.MinValue(), tl.Range(), 1e-9, "step %d", i)
	}
}

func TestMinAboveMaxMovesMax(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber))

	tl.SetMinValue(150)

	require.Equal(t, 150.0, tl.MinValue())
	require.Equal(t, 150.0, tl.MaxValue())
	require.Equal(t, 150.0, tl.Threshold())
	require.Equal(t, []EventType{EventRecalc}, rec.types())

	tl.SetMaxValue(-10)
	require.Equal(t, -10.0, tl.MinValue())
	require.Equal(t, -10.0, tl.MaxValue())
}

func TestThresholdClampedOnWrite(t *testing.T) {
	tl := NewBuilder(KindNumber).MaxValue(50).Build()

	tl.SetThreshold(80)
	require.Equal(t, 50.0, tl.Threshold())
	tl.SetLowerThreshold(-3)
	require.Equal(t, 0.0, tl.LowerThreshold())
}

func TestMeasuredValueMonotonicity(t *testing.T) {
	tl := NewBuilder(KindNumber).MinValue(-100).Build()
	rng := rand.New(rand.NewSource(7))

	tl.SetValue(0)
	prevMin, prevMax := tl.MinMeasuredValue(), tl.MaxMeasuredValue()
	for i := 0; i < 500; i++ {
		v := rng.Float64()*300 - 150
		tl.SetValue(v)

		require.LessOrEqual(t, tl.MinMeasuredValue(), prevMin)
		require.GreaterOrEqual(t, tl.MaxMeasuredValue(), prevMax)
		require.LessOrEqual(t, tl.MinMeasuredValue(), v)
		require.GreaterOrEqual(t, tl.MaxMeasuredValue(), v)
		prevMin, prevMax = tl.MinMeasuredValue(), tl.MaxMeasuredValue()
	}

	tl.ResetMeasuredValues()
	require.Equal(t, tl.CurrentValue(), tl.MinMeasuredValue())
	require.Equal(t, tl.CurrentValue(), tl.MaxMeasuredValue())
}

func TestThresholdCrossing(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber).Threshold(50).CheckThreshold(true))

	for _, v := range []float64{40, 60, 40} {
		tl.SetValue(v)
	}

	require.Equal(t,
		[]EventType{EventThresholdExceeded, EventThresholdUnderrun},
		rec.types(EventThresholdExceeded, EventThresholdUnderrun))
}

func TestThresholdNoCrossingOnApproach(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber).Threshold(50).CheckThreshold(true))

	for _, v := range []float64{40, 45, 49} {
		tl.SetValue(v)
	}

	require.Empty(t, rec.types(EventThresholdExceeded, EventThresholdUnderrun))
}

func TestThresholdEqualIsBelow(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber).Threshold(50).CheckThreshold(true))

	tl.SetValue(50)
	require.Empty(t, rec.types(EventThresholdExceeded))
	tl.SetValue(51)
	tl.SetValue(50)

	require.Equal(t,
		[]EventType{EventThresholdExceeded, EventThresholdUnderrun},
		rec.types(EventThresholdExceeded, EventThresholdUnderrun))
}

func TestThresholdCheckDisabled(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber).Threshold(50))

	tl.SetValue(60)
	tl.SetValue(40)

	require.Empty(t, rec.types(EventThresholdExceeded, EventThresholdUnderrun))
}

func TestLowerThresholdIndependent(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber).
		Value(50).
		Threshold(80).
		LowerThreshold(20).
		CheckLowerThreshold(true))

	for _, v := range []float64{10, 30, 90} {
		tl.SetValue(v)
	}

	require.Equal(t,
		[]EventType{EventLowerThresholdUnderrun, EventLowerThresholdExceeded},
		rec.types(EventLowerThresholdUnderrun, EventLowerThresholdExceeded,
			EventThresholdExceeded, EventThresholdUnderrun))
}

func TestSectionEdgeDetection(t *testing.T) {
	sec := NewSection(10, 20, "", "")
	tl, rec := newVisibleTile(NewBuilder(KindNumber).
		Sections(sec).
		CheckSectionsForValue(true))

	var at []float64
	tl.AddListener(&funcListener{fn: func(e Event) {
		if e.Type == EventSectionEntered || e.Type == EventSectionLeft {
			at = append(at, tl.CurrentValue())
			require.Same(t, sec, e.Section)
		}
	}})

	for _, v := range []float64{5, 15, 25, 15, 5} {
		tl.SetValue(v)
	}

	require.Equal(t,
		[]EventType{EventSectionEntered, EventSectionLeft, EventSectionEntered, EventSectionLeft},
		rec.types(EventSectionEntered, EventSectionLeft))
	require.Equal(t, []float64{15, 25, 15, 5}, at)
	require.False(t, sec.Active)
}

func TestSectionBoundsInclusive(t *testing.T) {
	sec := NewSection(10, 20, "", "")

	require.True(t, sec.Contains(10))
	require.True(t, sec.Contains(20))
	require.False(t, sec.Contains(9.999))
	require.False(t, sec.Contains(20.001))
}

func TestOverlappingSectionsFireIndependently(t *testing.T) {
	low := NewSection(0, 50, "low", "")
	mid := NewSection(40, 60, "mid", "")
	tl, rec := newVisibleTile(NewBuilder(KindNumber).
		Value(70).
		Sections(mid, low).
		CheckSectionsForValue(true))

	tl.SetValue(45)

	var entered []*Section
	for _, e := range rec.events {
		if e.Type == EventSectionEntered {
			entered = append(entered, e.Section)
		}
	}
	require.Equal(t, []*Section{low, mid}, entered)
	require.True(t, low.Active)
	require.True(t, mid.Active)
}

func TestSectionsKeptSorted(t *testing.T) {
	a := NewSection(30, 40, "a", "")
	b := NewSection(10, 20, "b", "")
	c := NewSection(0, 5, "c", "")
	tl, rec := newVisibleTile(NewBuilder(KindNumber).Sections(a, b))

	require.Equal(t, []*Section{b, a}, tl.Sections())

	tl.AddSection(c)
	require.Equal(t, []*Section{c, b, a}, tl.Sections())

	tl.UpdateSection(c, 50, 60)
	require.Equal(t, []*Section{b, a, c}, tl.Sections())

	tl.RemoveSection(b)
	require.Equal(t, []*Section{a, c}, tl.Sections())

	tl.SetSections(c, a)
	require.Equal(t, []*Section{a, c}, tl.Sections())

	tl.ClearSections()
	require.Empty(t, tl.Sections())

	require.Equal(t,
		[]EventType{EventSection, EventSectionUpdate, EventSection, EventSection, EventSection},
		rec.types())
}

func TestAveragingFedOnSetValue(t *testing.T) {
	clk := newFakeClock()
	tl := NewBuilder(KindSparkline).
		AveragingPeriod(3).
		Clock(clk.Now).
		Build()

	for _, v := range []float64{1, 2, 3, 4} {
		clk.Advance(time.Second)
		tl.SetValue(v)
	}

	require.Equal(t, 3, tl.AveragingPeriod())
	require.InDelta(t, 3.0, tl.Average(), 1e-9)

	tl.SetAveragingPeriod(2)
	require.InDelta(t, 3.5, tl.Average(), 1e-9)

	tl.SetAveragingEnabled(false)
	tl.SetValue(100)
	require.InDelta(t, 3.5, tl.Average(), 1e-9)
}

func TestEventsQueuedUntilVisible(t *testing.T) {
	rec := &recorder{}
	tl := NewBuilder(KindNumber).Listener(rec).Build()

	tl.SetTitle("A")
	tl.SetText("B")
	tl.SetAlert(true)

	require.Empty(t, rec.events)
	require.Equal(t, 3, tl.PendingEvents())

	tl.SetVisible(true)
	require.Equal(t, []EventType{EventRedraw, EventRedraw, EventAlert}, rec.types())

	tl.SetUnit("kW")
	require.Equal(t, []EventType{EventRedraw, EventRedraw, EventAlert, EventRedraw}, rec.types())
}

func TestChartData(t *testing.T) {
	clk := newFakeClock()
	tl, rec := newVisibleTile(NewBuilder(KindLineChart).MaxChartDataPoints(2).Clock(clk.Now))

	tl.AddChartData(ChartData{Name: "a", Value: 1})
	tl.AddChartData(ChartData{Name: "b", Value: 2}, ChartData{Name: "c", Value: 3})

	data := tl.ChartData()
	require.Len(t, data, 2)
	require.Equal(t, "b", data[0].Name)
	require.Equal(t, clk.Now(), data[0].Timestamp)

	tl.ClearChartData()
	require.Empty(t, tl.ChartData())
	require.Equal(t, []EventType{EventData, EventData, EventClearData}, rec.types())
}

func TestPresentationSetters(t *testing.T) {
	tl, rec := newVisibleTile(NewBuilder(KindNumber))

	tl.SetDecimals(12)
	require.Equal(t, 6, tl.Decimals())
	tl.SetSectionsVisible(true)
	require.True(t, tl.SectionsVisible())
	tl.SetReferenceValue(500)
	require.Equal(t, 100.0, tl.ReferenceValue())
	tl.SetDescription("boiler flow")
	require.Equal(t, "boiler flow", tl.Description())

	require.Equal(t, []EventType{EventRedraw, EventVisibility, EventResize, EventRedraw}, rec.types())
}

func TestKindPresets(t *testing.T) {
	sw := NewBuilder(KindSwitch).Build()
	require.Equal(t, 1.0, sw.MaxValue())
	require.Equal(t, 0.5, sw.Threshold())
	require.True(t, sw.CheckThreshold())

	pct := NewBuilder(KindPercentage).Build()
	require.Equal(t, "%", pct.Unit())
	require.True(t, pct.Animated())

	k, err := ParseKind("Bar_Gauge")
	require.NoError(t, err)
	require.Equal(t, KindBarGauge, k)
	require.Equal(t, "bar_gauge", k.String())

	_, err = ParseKind("world_map")
	require.Error(t, err)
}

func TestStartFromZero(t *testing.T) {
	tl := NewBuilder(KindNumber).MinValue(-50).Value(-20).StartFromZero(true).Build()
	require.Equal(t, 0.0, tl.CurrentValue())

	tl = NewBuilder(KindNumber).MinValue(-50).Value(-20).Build()
	require.Equal(t, -20.0, tl.CurrentValue())
}
