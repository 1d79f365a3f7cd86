package redirectors

import (
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
)

// Null applies no redirection.
type Null = rdw.NullRedirector

// Steer-to defaults. Rates are per second of simulated time, angles are in
// degrees and distances in metres.
const (
	DefaultMovementThreshold             = 0.2
	DefaultRotationThreshold             = 1.5
	DefaultCurvatureRateCap              = 15.0
	DefaultRotationRateCap               = 30.0
	DefaultDistanceThresholdForDampening = 1.25
	DefaultBearingThresholdForDampening  = 45.0
	DefaultSmoothingFactor               = 0.125
)

// SteerTo shapes rotation and curvature gains so the user ends up walking
// toward a target. The concrete algorithm supplies the target.
type SteerTo struct {
	MovementThreshold             float64
	RotationThreshold             float64
	CurvatureRateCap              float64
	RotationRateCap               float64
	DistanceThresholdForDampening float64
	BearingThresholdForDampening  float64
	SmoothingFactor               float64
	// DisableDampening skips the bearing and distance dampening.
	DisableDampening bool

	pick        func(m *rdw.Manager) geom.Vec2
	target      geom.Vec2
	lastApplied float64
}

func newSteerTo(pick func(m *rdw.Manager) geom.Vec2) SteerTo {
	return SteerTo{
		MovementThreshold:             DefaultMovementThreshold,
		RotationThreshold:             DefaultRotationThreshold,
		CurvatureRateCap:              DefaultCurvatureRateCap,
		RotationRateCap:               DefaultRotationRateCap,
		DistanceThresholdForDampening: DefaultDistanceThresholdForDampening,
		BearingThresholdForDampening:  DefaultBearingThresholdForDampening,
		SmoothingFactor:               DefaultSmoothingFactor,
		pick:                          pick,
	}
}

// Target is the steering target picked on the last Apply, in world
// coordinates.
func (s *SteerTo) Target() geom.Vec2 { return s.target }

// LastApplied is the smoothed rotation injected on the last moving tick.
func (s *SteerTo) LastApplied() float64 { return s.lastApplied }

func (s *SteerTo) reset() {
	s.target = geom.Vec2{}
	s.lastApplied = 0
}

// Apply runs one tick of the shared pipeline.
func (s *SteerTo) Apply(m *rdw.Manager) {
	s.target = s.pick(m)

	dt := m.DeltaTime()
	if dt <= 0 {
		return
	}
	st := m.State()
	gains := m.Gains()
	moved := st.DeltaPos.Len()

	fromCurvature := 0.0
	if moved/dt > s.MovementThreshold {
		fromCurvature = geom.Rad2Deg * (moved / gains.CurvatureRadius)
		fromCurvature = math.Min(fromCurvature, s.CurvatureRateCap*dt)
	}

	desiredFacing := s.target.Sub(st.CurrPos)
	// Steer opposite to the desired turn; the user's correction then
	// points them at the target.
	steering := -geom.Sign(geom.SignedAngle(st.CurrDir, desiredFacing))

	fromRotation := 0.0
	if math.Abs(st.DeltaDir)/dt >= s.RotationThreshold {
		gain := gains.MaxRot
		if st.DeltaDir*steering < 0 {
			gain = gains.MinRot
		}
		fromRotation = math.Min(math.Abs(st.DeltaDir*gain), s.RotationRateCap*dt)
	}

	proposed := steering * math.Max(fromRotation, fromCurvature)
	useCurvature := fromCurvature > fromRotation

	if geom.Approximately(proposed, 0) {
		return
	}

	if !s.DisableDampening {
		bearing := geom.Angle(st.CurrDir, desiredFacing)
		if bearing <= s.BearingThresholdForDampening {
			proposed *= math.Sin(geom.Deg2Rad * 90 * bearing / s.BearingThresholdForDampening)
		}
		if d := desiredFacing.Len(); d <= s.DistanceThresholdForDampening {
			proposed *= d / s.DistanceThresholdForDampening
		}
	}

	final := (1-s.SmoothingFactor)*s.lastApplied + s.SmoothingFactor*proposed
	s.lastApplied = final

	if useCurvature {
		m.InjectCurvature(final)
	} else {
		m.InjectRotation(final)
	}
}
