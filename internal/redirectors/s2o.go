package redirectors

import (
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
)

const (
	DefaultOrbitRadius = 5.0

	// DefaultOrbitInsideAngle is the target angle used when the user is
	// already inside the orbit.
	DefaultOrbitInsideAngle = 60.0
)

// SteerToOrbit steers the user onto a circle around the tracking-area
// centre, aiming at whichever tangent point needs the smaller turn.
type SteerToOrbit struct {
	SteerTo

	Radius      float64
	InsideAngle float64
}

func NewSteerToOrbit() *SteerToOrbit {
	o := &SteerToOrbit{
		Radius:      DefaultOrbitRadius,
		InsideAngle: DefaultOrbitInsideAngle,
	}
	o.SteerTo = newSteerTo(o.pickTarget)
	return o
}

func (o *SteerToOrbit) Name() string { return "s2o" }

func (o *SteerToOrbit) Initialize(*rdw.Manager) { o.reset() }

// Candidates returns the two orbit points considered for the current user
// pose.
func (o *SteerToOrbit) Candidates(m *rdw.Manager) (geom.Vec2, geom.Vec2) {
	st := m.State()
	center := m.TrackingCenter()
	toCenter := center.Sub(st.CurrPos)
	d := toCenter.Len()

	alpha := o.InsideAngle
	if d >= o.Radius {
		alpha = math.Acos(o.Radius/d) * geom.Rad2Deg
	}

	away := geom.Normalize(toCenter).Mul(-1)
	t1 := center.Add(geom.Rotate(away, alpha).Mul(o.Radius))
	t2 := center.Add(geom.Rotate(away, -alpha).Mul(o.Radius))
	return t1, t2
}

func (o *SteerToOrbit) pickTarget(m *rdw.Manager) geom.Vec2 {
	st := m.State()
	t1, t2 := o.Candidates(m)
	a1 := geom.Angle(st.CurrDir, t1.Sub(st.CurrPos))
	a2 := geom.Angle(st.CurrDir, t2.Sub(st.CurrPos))
	if a1 <= a2 {
		return t1
	}
	return t2
}
