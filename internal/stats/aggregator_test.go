package stats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now, dt float64
}

func (c *fakeClock) Now() float64       { return c.now }
func (c *fakeClock) DeltaTime() float64 { return c.dt }

func (c *fakeClock) tick() {
	c.now += c.dt
}

func TestLifecycle(t *testing.T) {
	a := New(&fakeClock{dt: 0.1}, 0)
	assert.Equal(t, NotStarted, a.State())
	assert.Equal(t, DefaultSamplingFrequency, a.SamplingFrequency())

	a.Pause()
	assert.Equal(t, NotStarted, a.State())

	a.Begin()
	assert.Equal(t, Logging, a.State())
	a.Resume()
	assert.Equal(t, Logging, a.State())
	a.Pause()
	assert.Equal(t, Paused, a.State())
	a.End()
	assert.Equal(t, Paused, a.State(), "end only closes a running log")
	a.Resume()
	a.End()
	assert.Equal(t, Complete, a.State())
	a.Begin()
	assert.Equal(t, Logging, a.State())
}

func TestPauseResumeIdempotent(t *testing.T) {
	clk := &fakeClock{dt: 1.0 / 60}
	a := New(clk, 10)
	a.Begin()
	for i := 0; i < 30; i++ {
		clk.tick()
		a.TranslationGain(0.1, geom.V(0, 0.01))
		a.RotationGain(0.2, 1)
		a.Update(Frame{DeltaPos: 0.02, DeltaPosReal: 0.015, HalfDiameter: 5})
	}
	before := a.Summary(nil)

	a.Pause()
	a.Resume()

	after := a.Summary(nil)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("summary changed across pause/resume (-before +after):\n%s", diff)
	}
}

func TestPausedIgnoresEvents(t *testing.T) {
	clk := &fakeClock{dt: 0.1}
	a := New(clk, 10)
	a.Begin()
	a.Pause()

	a.TranslationGain(1, geom.V(1, 0))
	a.CurvatureGain(1, 5)
	a.ResetTriggered()
	a.Update(Frame{DeltaPos: 1})

	s := a.Summary(nil)
	assert.Equal(t, "0", s.Metrics[KeyResetCount].String())
	assert.Equal(t, "0", s.Metrics[KeySumVirtualDistance].String())
	assert.Equal(t, "N/A", s.Metrics[KeyMinGC].String())
}

func TestSamplingCadence(t *testing.T) {
	clk := &fakeClock{dt: 0.05}
	a := New(clk, 10)
	a.Begin()

	// 0.05 s ticks sample on every third tick: the interval must exceed 0.1 s.
	for i := 0; i < 9; i++ {
		clk.tick()
		a.Update(Frame{DistanceToBoundary: 2, DistanceToCenter: 1, HalfDiameter: 4})
	}

	samples := a.Sampled()
	require.Len(t, samples.Scalars[SeriesDistancesToBoundary], 3)
	for _, v := range samples.Scalars[SeriesDistancesToBoundary] {
		assert.InDelta(t, 2*0.05, v, 1e-12)
	}
	for _, v := range samples.Scalars[SeriesNormDistancesToBoundary] {
		assert.InDelta(t, 2*0.05/4, v, 1e-12)
	}
	for _, iv := range samples.Scalars[SeriesSamplingIntervals] {
		assert.InDelta(t, 0.15, iv, 1e-9)
	}
	assert.Len(t, samples.Vectors[SeriesUserRealPositions], 3)
}

func TestGainEvents(t *testing.T) {
	clk := &fakeClock{dt: 0.1}
	a := New(clk, 10)
	a.Begin()

	a.TranslationGain(0.2, geom.V(0, 0.5))
	a.TranslationGain(-0.1, geom.V(0, 0.25))
	a.RotationGain(0.4, -3)
	a.CurvatureGain(2, 4)

	s := a.Summary(nil)
	assert.InDelta(t, 0.75, s.Metrics[KeySumInjectedTranslation].Scalar, 1e-12)
	assert.InDelta(t, 0.25, s.Metrics[KeySumVirtualDistance].Scalar, 1e-12)
	assert.InDelta(t, -0.1, s.Metrics[KeyMinGT].Scalar, 1e-12)
	assert.InDelta(t, 0.2, s.Metrics[KeyMaxGT].Scalar, 1e-12)
	assert.InDelta(t, 3, s.Metrics[KeySumInjectedRotationGR].Scalar, 1e-12)
	assert.InDelta(t, 4, s.Metrics[KeySumInjectedRotationGC].Scalar, 1e-12)
	assert.Equal(t, Scalar, s.Metrics[KeyMaxGC].Kind)
}

func TestResetEpisodes(t *testing.T) {
	clk := &fakeClock{dt: 1}
	a := New(clk, 10)
	a.Begin()

	clk.tick()
	a.Update(Frame{DeltaPos: 5})
	a.ResetTriggered()
	clk.tick()
	clk.tick()
	a.Update(Frame{DeltaPos: 3})
	a.ResetTriggered()
	clk.tick()
	a.Update(Frame{DeltaPos: 9})
	a.End()

	s := a.Summary([]Field{{Key: "redirector", Value: "s2c"}})
	assert.Equal(t, 2.0, s.Metrics[KeyResetCount].Scalar)
	// Episodes: 5, 3, 9 metres over 1, 2, 1 seconds.
	assert.InDelta(t, 5, s.Metrics[KeyVirtualDistanceResetsMedian].Scalar, 1e-12)
	assert.InDelta(t, 1, s.Metrics[KeyTimeBetweenResetsMedian].Scalar, 1e-12)
	assert.InDelta(t, 4, s.Metrics[KeyExperimentDuration].Scalar, 1e-12)

	v, ok := s.Lookup("redirector")
	assert.True(t, ok)
	assert.Equal(t, "s2c", v)
	assert.Equal(t, []float64{5, 3, 9}, a.Sampled().Scalars[SeriesVirtualDistancesBetweenResets])
}

func TestReorientationUnsupported(t *testing.T) {
	a := New(&fakeClock{dt: 0.1}, 10)
	assert.NoError(t, a.RotationGainReorientation(1, 1))

	a.Begin()
	assert.ErrorIs(t, a.RotationGainReorientation(1, 1), ErrUnsupported)
	assert.ErrorIs(t, a.TranslationGainReorientation(1, geom.V(1, 0)), ErrUnsupported)
}

func TestSummaryIsFinite(t *testing.T) {
	a := New(&fakeClock{dt: 0.1}, 10)
	a.Begin()
	a.End()

	s := a.Summary(nil)
	for _, k := range SummaryKeys {
		v, ok := s.Get(k)
		require.True(t, ok, k)
		assert.NotContains(t, v.String(), "NaN", k)
	}
	assert.Len(t, s.Row(), len(SummaryKeys))
}
