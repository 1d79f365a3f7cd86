package boundary

import (
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
)

// DefaultBodyDiameter is the footprint of the simulated user.
const DefaultBodyDiameter = 0.3

// ResetTrigger fires once each time the user's body leaves the trigger
// zone, the tracking area trimmed by the body diameter and the buffer on
// every side. It is the discrete counterpart of TrackingArea.IsOutOfBounds
// and can miss crossings when a tick moves the user far enough.
type ResetTrigger struct {
	halfX, halfZ float64
	radius       float64
	inside       bool
	primed       bool
}

func NewResetTrigger(area TrackingArea, bodyDiameter float64) *ResetTrigger {
	t := &ResetTrigger{}
	t.Resize(area, bodyDiameter)
	return t
}

// Resize recomputes the zone and forgets the last overlap state.
func (t *ResetTrigger) Resize(area TrackingArea, bodyDiameter float64) {
	trim := bodyDiameter + 2*area.Buffer
	t.halfX = 0.5 * (area.SizeX - trim)
	t.halfZ = 0.5 * (area.SizeZ - trim)
	t.radius = 0.5 * bodyDiameter
	t.primed = false
}

func (t *ResetTrigger) overlaps(p geom.Vec2) bool {
	return math.Abs(p.X()) < t.halfX+t.radius && math.Abs(p.Y()) < t.halfZ+t.radius
}

// Observe feeds the user's real position and reports whether the body has
// just exited the zone.
func (t *ResetTrigger) Observe(p geom.Vec2) bool {
	in := t.overlaps(p)
	exited := t.primed && t.inside && !in
	t.inside = in
	t.primed = true
	return exited
}
