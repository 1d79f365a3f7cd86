package walker

import (
	"testing"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/resetters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *rdw.Manager {
	t.Helper()
	m, err := rdw.New(rdw.DefaultConfig(), nil)
	require.NoError(t, err)
	return m
}

func run(m *rdw.Manager, w *Walker, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		if w.Step(m, 0) {
			return i
		}
		m.Tick(0)
	}
	return -1
}

func TestEmptyPathIsDone(t *testing.T) {
	w := New(DefaultConfig(), nil)
	assert.True(t, w.Done())
	assert.True(t, w.Step(newManager(t), 0))
}

func TestWalksStraightPath(t *testing.T) {
	m := newManager(t)
	w := New(DefaultConfig(), []geom.Vec2{{0, 2}, {0, 4}})

	ticks := run(m, w, 1000)
	require.Positive(t, ticks)
	assert.True(t, w.Done())
	assert.Equal(t, 1, w.Index())
	// 4 m at 1 m/s and 60 ticks per second, less the arrival radius.
	assert.InDelta(t, 240, ticks, 5)
	assert.InDelta(t, 0, m.HeadPose().Position.Sub(geom.V(0, 4)).Len(), 0.06)
}

func TestTurnsBeforeWalking(t *testing.T) {
	m := newManager(t)
	w := New(DefaultConfig(), []geom.Vec2{{2, 0}})

	w.Step(m, 0)
	m.Tick(0)
	assert.InDelta(t, 1.5, geom.Heading(m.HeadPose().Forward), 1e-9)
	assert.Equal(t, geom.V(0, 0), m.HeadPose().Position)

	// 90 degrees at 90 deg/s takes one second.
	for i := 0; i < 59; i++ {
		w.Step(m, 0)
		m.Tick(0)
	}
	assert.InDelta(t, 90, geom.Heading(m.HeadPose().Forward), 1e-6)
	w.Step(m, 0)
	assert.Greater(t, m.HeadPose().Position.X(), 0.0)
}

func TestRealtimeUsesSuppliedDelta(t *testing.T) {
	cfg := rdw.DefaultConfig()
	cfg.ManualTime = false
	m, err := rdw.New(cfg, nil)
	require.NoError(t, err)

	w := New(DefaultConfig(), []geom.Vec2{{0, 5}})
	w.Step(m, 0.5)
	assert.InDelta(t, 0.5, m.HeadPose().Position.Y(), 1e-12)
}

func TestRotatesInPlaceDuringReset(t *testing.T) {
	m := newManager(t)
	m.SetResetter(resetters.NewTwoOneTurn())
	m.PlaceUser(geom.V(4.3, 0), geom.V(1, 0))
	m.Tick(0)
	m.OnResetTrigger()
	require.True(t, m.InReset())

	w := New(DefaultConfig(), []geom.Vec2{{20, 0}})
	before := m.HeadPoseReal()
	w.Step(m, 0)
	after := m.HeadPoseReal()
	assert.Equal(t, before.Position, after.Position)
	assert.InDelta(t, 1.5, geom.SignedAngle(before.Forward, after.Forward), 1e-9)
}

func TestStopsAtBoundaryWithResetter(t *testing.T) {
	m := newManager(t)
	m.SetResetter(resetters.NewTwoOneTurn())
	m.PlaceUser(geom.V(4.495, 0), geom.V(1, 0))
	m.Tick(0)

	w := New(DefaultConfig(), []geom.Vec2{{20, 0}})
	w.Step(m, 0)
	assert.InDelta(t, 4.5+overshoot, m.HeadPoseReal().Position.X(), 1e-9)
}

func TestFullRunWithReset(t *testing.T) {
	m := newManager(t)
	m.SetResetter(resetters.NewTwoOneTurn())
	m.Stats().Begin()
	w := New(DefaultConfig(), []geom.Vec2{{0, 12}})

	ticks := run(m, w, 20000)
	m.Stats().End()
	require.Positive(t, ticks)
	assert.GreaterOrEqual(t, m.Stats().ResetCount(), 1)
	tracked := m.HeadPoseReal().Position
	assert.LessOrEqual(t, tracked.Len(), 5.0, "the user stayed in the tracking area")
}
