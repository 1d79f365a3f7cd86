package redirectors

import (
	"math"
	"testing"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zigPath = []geom.Vec2{{0, 3}, {3, 6}, {0, 9}}

func newZigZagManager(t *testing.T, autopilot bool) (*ZigZag, *rdw.Manager) {
	t.Helper()
	cfg := rdw.DefaultConfig()
	cfg.Autopilot = autopilot
	m, err := rdw.New(cfg, nil)
	require.NoError(t, err)
	z := NewZigZag()
	z.SetPath(zigPath)
	m.SetRedirector(z)
	return z, m
}

func TestZigZagPrependsOrigin(t *testing.T) {
	z := NewZigZag()
	z.SetPath(zigPath)
	require.Len(t, z.Waypoints(), 4)
	assert.Equal(t, geom.V(0, 0), z.Waypoints()[0])
	assert.Equal(t, 1, z.Index())
	assert.Equal(t, DefaultAnchors[1], z.ActiveAnchor())
}

func TestZigZagAlignsOnFirstApply(t *testing.T) {
	z, m := newZigZagManager(t, true)
	assert.Equal(t, geom.Identity(), m.Frame())

	m.Tick(0)

	f := m.Frame()
	assert.InDelta(t, -45, f.Yaw, 1e-9)
	p0 := z.Waypoints()[0]
	assert.InDelta(t, 0, f.ToWorld(z.Anchors[0]).Sub(p0).Len(), 1e-9)

	// The second anchor lies on the first path segment's heading.
	toAnchor1 := f.ToWorld(z.Anchors[1]).Sub(p0)
	assert.InDelta(t, geom.Heading(z.Waypoints()[1].Sub(p0)), geom.Heading(toAnchor1), 1e-9)

	assert.Equal(t, autopilotWaypointUpdateDistance, z.UpdateDistance)
	assert.Equal(t, autopilotSlowDownVelocity, z.SlowDownVelocity)
}

func TestZigZagKeepsThresholdsWithoutAutopilot(t *testing.T) {
	z, m := newZigZagManager(t, false)
	m.Tick(0)
	assert.Equal(t, DefaultWaypointUpdateDistance, z.UpdateDistance)
	assert.Equal(t, DefaultSlowDownVelocity, z.SlowDownVelocity)
}

func TestZigZagWaypointAdvance(t *testing.T) {
	tests := []struct {
		name    string
		start   geom.Vec2
		step    float64
		inReset bool
		want    int
	}{
		{"near and still", geom.V(0, 2.8), 0, false, 2},
		{"near but fast", geom.V(0, 2.7), 0.1, false, 1},
		{"far", geom.V(0, 1), 0, false, 1},
		{"near during reset", geom.V(0, 2.8), 0, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := rdw.New(rdw.Config{
				Gains:             rdw.DefaultGains(),
				ManualTime:        true,
				TargetFPS:         60,
				ResetBuffer:       0.5,
				BodyDiameter:      0.3,
				SamplingFrequency: 10,
			}, nil)
			require.NoError(t, err)
			if tt.inReset {
				m.SetResetter(alwaysReset{})
			}
			m.PlaceUser(tt.start, geom.V(0, 1))
			m.MoveHead(geom.V(0, tt.step))
			m.Tick(0)
			if tt.inReset {
				m.OnResetTrigger()
				require.True(t, m.InReset())
			}

			z := NewZigZag()
			z.SetPath(zigPath)
			z.Observe(m)
			assert.Equal(t, tt.want, z.Index())
			assert.Equal(t, tt.want == 2, z.ActiveAnchor() == z.Anchors[0])
		})
	}
}

func TestZigZagStopsAtLastWaypoint(t *testing.T) {
	m, err := rdw.New(rdw.DefaultConfig(), nil)
	require.NoError(t, err)
	z := NewZigZag()
	z.SetPath(zigPath)

	for _, wp := range zigPath {
		m.PlaceUser(wp, geom.V(0, 1))
		m.Tick(0)
		z.Observe(m)
	}
	z.Observe(m)
	assert.Equal(t, len(zigPath), z.Index())
}

func TestZigZagWithoutPathIsNoop(t *testing.T) {
	m, err := rdw.New(rdw.DefaultConfig(), nil)
	require.NoError(t, err)
	z := NewZigZag()
	m.SetRedirector(z)
	m.MoveHead(geom.V(0, 0.02))
	m.Tick(0)
	assert.Equal(t, geom.Identity(), m.Frame())
}

func TestZigZagGainsStayWithinBounds(t *testing.T) {
	z, m := newZigZagManager(t, true)
	m.Stats().Begin()

	for i := 0; i < 600; i++ {
		target := z.Waypoints()[z.Index()]
		pose := m.HeadPose()
		toTarget := target.Sub(pose.Position)
		turn := geom.SignedAngle(pose.Forward, toTarget)
		if math.Abs(turn) > 1 {
			m.TurnHead(geom.Sign(turn) * math.Min(1.5, math.Abs(turn)))
		} else {
			m.MoveHead(geom.Normalize(toTarget).Mul(math.Min(1.0/60, toTarget.Len())))
		}
		m.Tick(0)
		require.True(t, geom.Finite(m.Frame().Position), "tick %d", i)
		require.False(t, math.IsNaN(m.Frame().Yaw), "tick %d", i)
	}
	m.Stats().End()

	res := m.Stats().Summary(nil)
	g := m.Gains()
	if v, ok := res.Get(stats.KeyMaxGT); ok && v.Kind == stats.Scalar {
		assert.LessOrEqual(t, v.Scalar, g.MaxTrans+1e-9)
	}
	if v, ok := res.Get(stats.KeyMinGT); ok && v.Kind == stats.Scalar {
		assert.GreaterOrEqual(t, v.Scalar, g.MinTrans-1e-9)
	}
	assert.Greater(t, z.Index(), 1, "the walker made progress along the path")
}

type alwaysReset struct{ rdw.NullResetter }

func (alwaysReset) IsResetRequired(*rdw.Manager) bool { return true }
