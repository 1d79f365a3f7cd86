package rdw

import "github.com/san-kum/rdwsim/internal/geom"

// Pose is a ground-plane position and unit forward direction.
type Pose struct {
	Position geom.Vec2
	Forward  geom.Vec2
}

// UserState is the user's pose for the current and previous tick. Plain
// fields are virtual (world); the Real fields are relative to the tracking
// area. It is recomputed at the start of every tick and not modified
// afterwards.
type UserState struct {
	CurrPos, CurrDir geom.Vec2
	PrevPos, PrevDir geom.Vec2

	CurrPosReal, CurrDirReal geom.Vec2
	PrevPosReal, PrevDirReal geom.Vec2

	DeltaPos geom.Vec2
	// DeltaDir is the signed virtual turn this tick, in (-180, 180].
	DeltaDir float64
}

// DeltaPosReal is this tick's displacement inside the tracking area.
func (s UserState) DeltaPosReal() geom.Vec2 {
	return s.CurrPosReal.Sub(s.PrevPosReal)
}
