package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a ground-plane vector (x, z).
type Vec2 = mgl64.Vec2

const (
	// Epsilon is the length below which a vector counts as zero.
	Epsilon = 1e-5

	Rad2Deg = 180 / math.Pi
	Deg2Rad = math.Pi / 180
)

// V builds a ground-plane vector.
func V(x, z float64) Vec2 {
	return Vec2{x, z}
}

// Forward is the unit reference direction (+z).
var Forward = Vec2{0, 1}

// Flatten drops the vertical component of a 3D position or direction.
func Flatten(v mgl64.Vec3) Vec2 {
	return Vec2{v.X(), v.Z()}
}

// Unflatten lifts a ground-plane vector back to 3D at height y.
func Unflatten(v Vec2, y float64) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), y, v.Y()}
}

// Normalize returns the unit vector along v, or the zero vector when v is
// too short to have a direction.
func Normalize(v Vec2) Vec2 {
	l := v.Len()
	if l < Epsilon {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

// Sign returns -1 for negative values and +1 otherwise, including zero.
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// Angle is the unsigned angle between a and b in [0, 180] degrees.
func Angle(a, b Vec2) float64 {
	return math.Abs(SignedAngle(a, b))
}

// SignedAngle is the angle that takes a onto b, positive when b lies
// clockwise of a. Exactly opposite vectors give +180.
func SignedAngle(a, b Vec2) float64 {
	if a.Len()*b.Len() < 1e-15 {
		return 0
	}
	cross := a.Y()*b.X() - a.X()*b.Y()
	deg := math.Atan2(cross, a.Dot(b)) * Rad2Deg
	if deg <= -180 {
		return 180
	}
	return deg
}

// Rotate turns v by deg degrees about the up axis.
func Rotate(v Vec2, deg float64) Vec2 {
	s, c := math.Sincos(deg * Deg2Rad)
	return Vec2{v.X()*c + v.Y()*s, -v.X()*s + v.Y()*c}
}

// Heading is the yaw in degrees that turns Forward onto d.
func Heading(d Vec2) float64 {
	return math.Atan2(d.X(), d.Y()) * Rad2Deg
}

// WrapAngle maps an angle into (-180, 180].
func WrapAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Approximately reports whether a and b are equal within float32-style
// tolerance.
func Approximately(a, b float64) bool {
	return math.Abs(b-a) < math.Max(1e-6*math.Max(math.Abs(a), math.Abs(b)), 1e-8)
}

// Finite reports whether every component of v is a real number.
func Finite(v Vec2) bool {
	return !math.IsNaN(v.X()) && !math.IsNaN(v.Y()) && !math.IsInf(v.X(), 0) && !math.IsInf(v.Y(), 0)
}
