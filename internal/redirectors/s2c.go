package redirectors

import (
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
)

const (
	// DefaultTempTargetBearing is the bearing to the centre at which steer
	// to centre switches to a side target.
	DefaultTempTargetBearing  = 160.0
	DefaultTempTargetDistance = 4.0
)

// SteerToCenter steers the user toward the tracking-area centre. When the
// centre is nearly behind the user a temporary target to the side avoids
// flip-flopping between left and right turns.
type SteerToCenter struct {
	SteerTo

	TempTargetBearing  float64
	TempTargetDistance float64
	DisableTempTarget  bool

	// temp is held in tracking-area coordinates so it moves with the
	// redirected frame.
	temp    geom.Vec2
	hasTemp bool
}

func NewSteerToCenter() *SteerToCenter {
	c := &SteerToCenter{
		TempTargetBearing:  DefaultTempTargetBearing,
		TempTargetDistance: DefaultTempTargetDistance,
	}
	c.SteerTo = newSteerTo(c.pickTarget)
	return c
}

func (c *SteerToCenter) Name() string { return "s2c" }

func (c *SteerToCenter) Initialize(*rdw.Manager) {
	c.reset()
	c.hasTemp = false
}

// TempTarget reports the active temporary target in world coordinates.
func (c *SteerToCenter) TempTarget(m *rdw.Manager) (geom.Vec2, bool) {
	if !c.hasTemp {
		return geom.Vec2{}, false
	}
	return m.ToWorld(c.temp), true
}

func (c *SteerToCenter) pickTarget(m *rdw.Manager) geom.Vec2 {
	st := m.State()
	center := m.TrackingCenter()
	toCenter := center.Sub(st.CurrPos)
	bearing := geom.Angle(toCenter, st.CurrDir)

	if bearing >= c.TempTargetBearing && !c.DisableTempTarget {
		if !c.hasTemp {
			side := geom.Sign(geom.SignedAngle(st.CurrDir, toCenter))
			offset := geom.Rotate(st.CurrDir, 90*side).Mul(c.TempTargetDistance)
			c.temp = m.Frame().ToLocal(st.CurrPos.Add(offset))
			c.hasTemp = true
		}
		return m.ToWorld(c.temp)
	}

	c.hasTemp = false
	return center
}
