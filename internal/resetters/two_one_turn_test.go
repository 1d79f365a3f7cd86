package resetters

import (
	"math"
	"testing"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, r rdw.Resetter) *rdw.Manager {
	t.Helper()
	m, err := rdw.New(rdw.DefaultConfig(), nil)
	require.NoError(t, err)
	m.SetResetter(r)
	return m
}

func TestIsResetRequired(t *testing.T) {
	tests := []struct {
		name string
		pos  geom.Vec2
		dir  geom.Vec2
		want bool
	}{
		{"facing right wall", geom.V(4.3, 0), geom.V(1, 0), true},
		{"facing away from right wall", geom.V(4.3, 0), geom.V(-1, 0), false},
		{"parallel to right wall", geom.V(4.3, 0), geom.V(0, 1), true},
		{"facing away from top wall", geom.V(0, 4.3), geom.V(0.2, -1), false},
		{"facing bottom wall", geom.V(0, -4.3), geom.V(0, -1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTwoOneTurn()
			m := newManager(t, r)
			m.PlaceUser(tt.pos, tt.dir)
			m.Tick(0)
			assert.Equal(t, tt.want, r.IsResetRequired(m))
		})
	}
}

// runTurn feeds per-tick user rotations through a reset and returns the
// number of ticks it took to finish, or -1.
func runTurn(t *testing.T, turns []float64) (*TwoOneTurn, *rdw.Manager, int) {
	t.Helper()
	r := NewTwoOneTurn()
	m := newManager(t, r)
	m.PlaceUser(geom.V(4.3, 0), geom.V(1, 0))
	m.Tick(0)
	m.OnResetTrigger()
	require.True(t, m.InReset())

	for i, deg := range turns {
		m.TurnHead(deg)
		m.Tick(0)
		assert.LessOrEqual(t, r.Injected(), 180+1e-9)
		assert.GreaterOrEqual(t, r.Injected(), -180-1e-9)
		if !m.InReset() {
			return r, m, i
		}
	}
	return r, m, -1
}

func TestTurnEndsExactlyAt180(t *testing.T) {
	r, _, tick := runTurn(t, []float64{60, 60, 60, 60})
	assert.Equal(t, 2, tick)
	assert.InDelta(t, 180, r.Injected(), 1e-9)
}

func TestTurnLandsOn180InSmallSteps(t *testing.T) {
	r, m, tick := runTurn(t, []float64{30, 30, 30, 30, 30, 30, 30, 30})
	assert.Equal(t, 5, tick)
	assert.InDelta(t, 180, r.Injected(), 1e-9)
	assert.False(t, m.InReset())
}

func TestTurnEndsOnEveryStepSize(t *testing.T) {
	for _, deg := range []float64{15, 20, 30, 36, 45, 60, 90, -30, -60} {
		turns := make([]float64, 20)
		for i := range turns {
			turns[i] = deg
		}
		r, _, tick := runTurn(t, turns)
		want := int(math.Round(180/math.Abs(deg))) - 1
		assert.Equal(t, want, tick, "step %v", deg)
		assert.InDelta(t, 180, math.Abs(r.Injected()), 1e-9, "step %v", deg)
	}
}

func TestCompletedTurnEndsReset(t *testing.T) {
	r := NewTwoOneTurn()
	m := newManager(t, r)
	m.PlaceUser(geom.V(4.3, 0), geom.V(1, 0))
	m.Tick(0)
	m.OnResetTrigger()
	r.injected = 180

	m.Tick(0)
	assert.False(t, m.InReset())
	assert.Equal(t, 180.0, r.Injected())
}

func TestTurnClampsOvershoot(t *testing.T) {
	r, _, tick := runTurn(t, []float64{100, 100, 100})
	assert.Equal(t, 1, tick)
	assert.InDelta(t, 180, r.Injected(), 1e-9)
}

func TestTurnFollowsUserDirection(t *testing.T) {
	r, _, tick := runTurn(t, []float64{-45, -45, -45, -45})
	assert.Equal(t, 3, tick)
	assert.InDelta(t, -180, r.Injected(), 1e-9)
}

func TestTurnWaitsForRotation(t *testing.T) {
	r, m, tick := runTurn(t, []float64{0, 0, 0})
	assert.Equal(t, -1, tick)
	assert.Zero(t, r.Injected())
	assert.True(t, m.InReset())
}

func TestVirtualHeadingPreserved(t *testing.T) {
	_, m, tick := runTurn(t, []float64{30, 30, 30, 30, 30, 30})
	require.Equal(t, 5, tick)
	// The user turned 180 in the real world and the world turned another
	// 180 with them, so the virtual heading is back where it started.
	assert.InDelta(t, 90, geom.Heading(m.HeadPose().Forward), 1e-6)
	assert.InDelta(t, -90, geom.Heading(m.HeadPoseReal().Forward), 1e-6)
}

func TestNullNeverResets(t *testing.T) {
	m := newManager(t, Null{})
	m.PlaceUser(geom.V(4.4, 0), geom.V(1, 0))
	m.Tick(0)
	assert.False(t, Null{}.IsResetRequired(m))
	assert.False(t, m.InReset())
}
