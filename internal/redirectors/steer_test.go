package redirectors

import (
	"math"
	"testing"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, r rdw.Redirector) *rdw.Manager {
	t.Helper()
	m, err := rdw.New(rdw.DefaultConfig(), nil)
	require.NoError(t, err)
	m.SetRedirector(r)
	return m
}

// walk moves the user forward by dist in virtual space and ticks once.
func walk(m *rdw.Manager, dist float64) {
	m.MoveHead(m.HeadPose().Forward.Mul(dist))
	m.Tick(0)
}

func TestSteerToCenterTempTarget(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)

	m.PlaceUser(geom.V(6, 0), geom.V(0, 1))
	m.Tick(0)
	_, ok := c.TempTarget(m)
	assert.False(t, ok, "bearing of 90 degrees steers straight at the centre")
	assert.Equal(t, geom.V(0, 0), c.Target())

	m.PlaceUser(geom.V(6, 0), geom.V(1, 0))
	m.Tick(0)
	temp, ok := c.TempTarget(m)
	require.True(t, ok)
	assert.InDelta(t, 4, temp.Sub(geom.V(6, 0)).Len(), 1e-9)
	// Exactly 180 degrees counts as a right turn.
	assert.InDelta(t, 6, temp.X(), 1e-9)
	assert.InDelta(t, -4, temp.Y(), 1e-9)
	assert.Equal(t, temp, c.Target())
	local := m.Frame().ToLocal(temp)

	m.TurnHead(10)
	m.Tick(0)
	reused, ok := c.TempTarget(m)
	require.True(t, ok, "bearing of 170 degrees keeps the side target")
	assert.InDelta(t, 0, m.Frame().ToLocal(reused).Sub(local).Len(), 1e-9)
	assert.InDelta(t, 4, reused.Sub(m.HeadPose().Position).Len(), 1e-9)

	center := m.TrackingCenter()
	m.TurnHead(25)
	m.Tick(0)
	_, ok = c.TempTarget(m)
	assert.False(t, ok, "side target is dropped once the bearing falls below 160")
	assert.Equal(t, center, c.Target())
}

func TestSteerToCenterLeftSide(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	// Centre lies behind and slightly to the left.
	m.PlaceUser(geom.V(6, -0.5), geom.V(1, 0))
	m.Tick(0)
	temp, ok := c.TempTarget(m)
	require.True(t, ok)
	assert.InDelta(t, 6, temp.X(), 1e-9)
	assert.InDelta(t, 3.5, temp.Y(), 1e-9)
}

func TestSteerToCenterDisabledTempTarget(t *testing.T) {
	c := NewSteerToCenter()
	c.DisableTempTarget = true
	m := newManager(t, c)
	m.PlaceUser(geom.V(6, 0), geom.V(1, 0))
	m.Tick(0)
	_, ok := c.TempTarget(m)
	assert.False(t, ok)
	assert.Equal(t, geom.V(0, 0), c.Target())
}

func TestSteerToCurvatureWhileWalking(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	m.PlaceUser(geom.V(3, 0), geom.V(0, 1))

	step := 1.0 / 60
	walk(m, step)

	proposed := geom.Rad2Deg * step / rdw.DefaultGains().CurvatureRadius
	want := DefaultSmoothingFactor * proposed
	assert.InDelta(t, want, c.LastApplied(), 1e-12)
	assert.InDelta(t, want, m.Frame().Yaw, 1e-12, "centre is to the left, so the world turns right")
}

func TestSteerToRotationAgainstUser(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	m.PlaceUser(geom.V(3, 0), geom.V(0, 1))

	// Turning left toward the centre: steering is to the right, so the
	// user's own turn is damped with the minimum rotation gain.
	m.TurnHead(-0.3)
	m.Tick(0)

	proposed := math.Abs(-0.3 * rdw.DefaultGains().MinRot)
	assert.InDelta(t, DefaultSmoothingFactor*proposed, c.LastApplied(), 1e-9)
}

func TestSteerToRotationCap(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	m.PlaceUser(geom.V(3, 0), geom.V(0, 1))

	m.TurnHead(20)
	m.Tick(0)
	capDeg := DefaultRotationRateCap / 60
	assert.InDelta(t, DefaultSmoothingFactor*capDeg, c.LastApplied(), 1e-9)
}

func TestSteerToStationaryInjectsNothing(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	m.PlaceUser(geom.V(3, 0), geom.V(0, 1))
	for i := 0; i < 10; i++ {
		m.Tick(0)
	}
	assert.Zero(t, c.LastApplied())
	assert.Equal(t, geom.Identity(), m.Frame())
}

func TestSteerToFacingTargetIsDamped(t *testing.T) {
	c := NewSteerToCenter()
	m := newManager(t, c)
	m.PlaceUser(geom.V(0, -3), geom.V(0, 1))
	walk(m, 1.0/60)
	assert.InDelta(t, 0, c.LastApplied(), 1e-12)
	assert.InDelta(t, 0, m.Frame().Yaw, 1e-12)
}

func TestSteerToDistanceDampening(t *testing.T) {
	near := NewSteerToCenter()
	mn := newManager(t, near)
	mn.PlaceUser(geom.V(0.5, 0), geom.V(0, 1))
	walk(mn, 1.0/60)

	far := NewSteerToCenter()
	mf := newManager(t, far)
	mf.PlaceUser(geom.V(3, 0), geom.V(0, 1))
	walk(mf, 1.0/60)

	// Both users face 90 degrees off target; only distance differs.
	ratio := near.LastApplied() / far.LastApplied()
	assert.InDelta(t, 0.5/DefaultDistanceThresholdForDampening, ratio, 1e-3)
}

func TestSteerToOrbitCandidates(t *testing.T) {
	o := NewSteerToOrbit()
	m := newManager(t, o)
	m.PlaceUser(geom.V(0, -10), geom.V(1, 0))
	m.Tick(0)

	t1, t2 := o.Candidates(m)
	for _, c := range []geom.Vec2{t1, t2} {
		assert.InDelta(t, DefaultOrbitRadius, c.Len(), 1e-9)
		// Outside the orbit the candidates are tangent points.
		toUser := geom.V(0, -10).Sub(c)
		assert.InDelta(t, 0, toUser.Dot(c), 1e-9)
	}
	assert.InDelta(t, -4.330127, t1.X(), 1e-6)
	assert.InDelta(t, 4.330127, t2.X(), 1e-6)
}

func TestSteerToOrbitPicksSmallerTurn(t *testing.T) {
	tests := []struct {
		name  string
		dir   geom.Vec2
		wantX float64
	}{
		{"facing right", geom.V(1, 0), 4.330127},
		{"facing left", geom.V(-1, 0), -4.330127},
		{"tie goes to first", geom.V(0, 1), -4.330127},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewSteerToOrbit()
			m := newManager(t, o)
			m.PlaceUser(geom.V(0, -10), tt.dir)
			m.Tick(0)
			assert.InDelta(t, tt.wantX, o.Target().X(), 1e-6)
		})
	}
}

func TestSteerToOrbitInside(t *testing.T) {
	o := NewSteerToOrbit()
	m := newManager(t, o)
	m.PlaceUser(geom.V(0, -2), geom.V(0, 1))
	m.Tick(0)

	t1, t2 := o.Candidates(m)
	away := geom.V(0, -1)
	assert.InDelta(t, DefaultOrbitInsideAngle, geom.Angle(away, t1), 1e-9)
	assert.InDelta(t, DefaultOrbitInsideAngle, geom.Angle(away, t2), 1e-9)
}

func TestSteerToOrbitAtCentre(t *testing.T) {
	o := NewSteerToOrbit()
	m := newManager(t, o)
	m.PlaceUser(geom.V(0, 0), geom.V(0, 1))
	for i := 0; i < 30; i++ {
		walk(m, 1.0/60)
	}
	assert.True(t, geom.Finite(m.Frame().Position))
	assert.False(t, math.IsNaN(m.Frame().Yaw))
}
