package resetters

import (
	"math"

	"github.com/san-kum/rdwsim/internal/rdw"
)

// Null never asks for a reset.
type Null = rdw.NullResetter

// TwoOneTurn doubles the user's own rotation until the virtual world has
// turned 180 degrees, so a real half turn leaves the user facing the same
// virtual direction while physically facing away from the wall.
type TwoOneTurn struct {
	injected float64
}

// turnTolerance absorbs float error in per-tick rotations so a turn that
// lands on 180 finishes on that tick.
const turnTolerance = 1e-6

func NewTwoOneTurn() *TwoOneTurn { return &TwoOneTurn{} }

func (r *TwoOneTurn) Name() string { return "two_one_turn" }

func (r *TwoOneTurn) Initialize(*rdw.Manager) {
	r.injected = 0
}

// IsResetRequired holds while the user is not facing away from the nearest
// wall.
func (r *TwoOneTurn) IsResetRequired(m *rdw.Manager) bool {
	s := m.State()
	return !m.Area().FacingAway(s.CurrPosReal, s.CurrDirReal)
}

func (r *TwoOneTurn) InitializeReset(*rdw.Manager) {
	r.injected = 0
}

// Apply injects this tick's user rotation again, in the same direction,
// and ends the reset on the tick the total reaches 180 degrees.
func (r *TwoOneTurn) Apply(m *rdw.Manager) {
	if math.Abs(r.injected) >= 180-turnTolerance {
		m.OnResetEnd()
		return
	}
	deltaDir := m.State().DeltaDir
	remaining := -180 - r.injected
	if deltaDir > 0 {
		remaining = 180 - r.injected
	}

	if math.Abs(remaining) <= math.Abs(deltaDir)+turnTolerance {
		m.InjectResetRotation(remaining)
		r.injected += remaining
		m.OnResetEnd()
		return
	}
	m.InjectResetRotation(deltaDir)
	r.injected += deltaDir
}

func (r *TwoOneTurn) FinalizeReset(*rdw.Manager) {}

// Injected is the rotation added since the reset started.
func (r *TwoOneTurn) Injected() float64 { return r.injected }
