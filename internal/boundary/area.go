// Package boundary answers geometric questions about the physical tracking
// area. Positions and directions passed in are real, i.e. relative to the
// tracking-area centre.
package boundary

import (
	"fmt"
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
)

// DefaultBuffer is the safety margin kept between the user and each wall.
const DefaultBuffer = 0.5

// Edge names one wall of the tracking area.
type Edge int

const (
	Top Edge = iota
	Bottom
	Right
	Left
)

func (e Edge) String() string {
	switch e {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Right:
		return "right"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// Away is the inward normal of the edge, pointing back toward the centre.
func (e Edge) Away() geom.Vec2 {
	switch e {
	case Top:
		return geom.V(0, -1)
	case Bottom:
		return geom.V(0, 1)
	case Right:
		return geom.V(-1, 0)
	case Left:
		return geom.V(1, 0)
	}
	return geom.Vec2{}
}

// TrackingArea is an axis-aligned rectangle centred on the origin.
type TrackingArea struct {
	SizeX, SizeZ float64
	Buffer       float64
}

func NewTrackingArea(sizeX, sizeZ, buffer float64) TrackingArea {
	return TrackingArea{SizeX: sizeX, SizeZ: sizeZ, Buffer: buffer}
}

// MaxX is the usable half-extent along x.
func (a TrackingArea) MaxX() float64 { return 0.5*a.SizeX - a.Buffer }

func (a TrackingArea) MaxZ() float64 { return 0.5*a.SizeZ - a.Buffer }

// Contains reports whether p lies inside the full, unbuffered rectangle.
func (a TrackingArea) Contains(p geom.Vec2) bool {
	return math.Abs(p.X()) <= 0.5*a.SizeX && math.Abs(p.Y()) <= 0.5*a.SizeZ
}

// IsOutOfBounds is a box test against the usable rectangle.
func (a TrackingArea) IsOutOfBounds(p geom.Vec2) bool {
	return math.Abs(p.X()) >= a.MaxX() || math.Abs(p.Y()) >= a.MaxZ()
}

// NearestEdge classifies p by its closest wall. The x walls win ties
// against the z walls, and only when p is on their side of the centre.
func (a TrackingArea) NearestEdge(p geom.Vec2) Edge {
	maxX, maxZ := a.MaxX(), a.MaxZ()
	x, z := p.X(), p.Y()
	toZ := math.Min(math.Abs(maxZ-z), math.Abs(-maxZ-z))
	toX := math.Min(math.Abs(maxX-x), math.Abs(-maxX-x))

	switch {
	case x >= 0 && math.Abs(maxX-x) <= toZ:
		return Right
	case x <= 0 && math.Abs(-maxX-x) <= toZ:
		return Left
	case z >= 0 && math.Abs(maxZ-z) <= toX:
		return Top
	default:
		return Bottom
	}
}

// DistanceToNearestEdge is the distance from p to the wall chosen by
// NearestEdge.
func (a TrackingArea) DistanceToNearestEdge(p geom.Vec2) float64 {
	switch a.NearestEdge(p) {
	case Top:
		return math.Abs(a.MaxZ() - p.Y())
	case Bottom:
		return math.Abs(-a.MaxZ() - p.Y())
	case Right:
		return math.Abs(a.MaxX() - p.X())
	default:
		return math.Abs(-a.MaxX() - p.X())
	}
}

// HalfDiameter is the centre-to-corner distance of the usable rectangle.
func (a TrackingArea) HalfDiameter() float64 {
	return math.Hypot(a.MaxX(), a.MaxZ())
}

func (a TrackingArea) DistanceToCenter(p geom.Vec2) float64 {
	return p.Len()
}

// MaxWalkableDistance is how far the user can walk from p along dir before
// leaving the usable rectangle. An axis with no motion contributes +Inf.
func (a TrackingArea) MaxWalkableDistance(p, dir geom.Vec2) float64 {
	exit := func(max, pos, d float64) float64 {
		if d == 0 {
			return math.Inf(1)
		}
		return math.Max((max-pos)/d, (-max-pos)/d)
	}
	return math.Min(exit(a.MaxX(), p.X(), dir.X()), exit(a.MaxZ(), p.Y(), dir.Y()))
}

// AngleToNearestEdge is the signed angle from dir to the away-from-wall
// direction; facing straight away from the wall is zero.
func (a TrackingArea) AngleToNearestEdge(p, dir geom.Vec2) float64 {
	return geom.SignedAngle(dir, a.NearestEdge(p).Away())
}

// FacingAway reports whether dir points back into the area from the
// nearest wall.
func (a TrackingArea) FacingAway(p, dir geom.Vec2) bool {
	return math.Abs(a.AngleToNearestEdge(p, dir)) < 90
}
