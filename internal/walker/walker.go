// Package walker drives a simulated user through a virtual path, standing in
// for a tracked headset during batch runs.
package walker

import (
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
)

const (
	minDistanceForRotation = 0.0001
	// headingTolerance is how far off the waypoint bearing the walker may
	// be and still step forward.
	headingTolerance = 1.0
	// overshoot pushes the walker just past the usable area so the reset
	// trigger fires instead of the walker stalling on the edge.
	overshoot = 0.01
)

type Config struct {
	TranslationSpeed float64 `yaml:"translation_speed" mapstructure:"translation_speed"`
	RotationSpeed    float64 `yaml:"rotation_speed" mapstructure:"rotation_speed"`
	// WaypointThreshold is the arrival distance for tracked runs and
	// AutopilotThreshold the one for autopilot runs.
	WaypointThreshold  float64 `yaml:"waypoint_threshold" mapstructure:"waypoint_threshold"`
	AutopilotThreshold float64 `yaml:"autopilot_threshold" mapstructure:"autopilot_threshold"`
}

func DefaultConfig() Config {
	return Config{
		TranslationSpeed:   1,
		RotationSpeed:      90,
		WaypointThreshold:  0.3,
		AutopilotThreshold: 0.05,
	}
}

// Walker turns toward the active waypoint and then walks straight at it.
// During a reset it turns on the spot.
type Walker struct {
	cfg   Config
	path  []geom.Vec2
	index int
	done  bool
}

func New(cfg Config, path []geom.Vec2) *Walker {
	return &Walker{cfg: cfg, path: path, done: len(path) == 0}
}

// Target is the active virtual waypoint.
func (w *Walker) Target() geom.Vec2 {
	if len(w.path) == 0 {
		return geom.Vec2{}
	}
	return w.path[w.index]
}

func (w *Walker) Index() int { return w.index }

// Done reports whether the last waypoint has been reached.
func (w *Walker) Done() bool { return w.done }

func (w *Walker) threshold(m *rdw.Manager) float64 {
	if m.Autopilot() {
		return w.cfg.AutopilotThreshold
	}
	return w.cfg.WaypointThreshold
}

// Step moves the user for one tick of length dt, or 1/TargetFPS under
// manual time. It must run before the manager's Tick so the manager sees
// the motion as this tick's delta. It returns true once the final waypoint
// has been reached.
func (w *Walker) Step(m *rdw.Manager, dt float64) bool {
	if w.done {
		return true
	}
	if m.HeadPose().Position.Sub(w.Target()).Len() < w.threshold(m) {
		if w.index == len(w.path)-1 {
			w.done = true
			return true
		}
		w.index++
	}

	if m.Config().ManualTime {
		dt = 1 / m.Config().TargetFPS
	}
	if m.InReset() {
		m.TurnHead(dt * w.cfg.RotationSpeed)
		return false
	}
	w.turnAndWalk(m, dt)
	return false
}

func (w *Walker) bearing(m *rdw.Manager) (float64, geom.Vec2) {
	pose := m.HeadPose()
	toTarget := w.Target().Sub(pose.Position)
	return geom.SignedAngle(pose.Forward, toTarget), toTarget
}

func (w *Walker) turnAndWalk(m *rdw.Manager, dt float64) {
	angle, toTarget := w.bearing(m)
	if toTarget.Len() > minDistanceForRotation {
		m.TurnHead(geom.Sign(angle) * math.Min(dt*w.cfg.RotationSpeed, math.Abs(angle)))
	}

	angle, toTarget = w.bearing(m)
	if math.Abs(angle) >= headingTolerance {
		return
	}
	dist := math.Min(dt*w.cfg.TranslationSpeed, toTarget.Len())
	// Without a resetter nothing would release the walker from the edge.
	if m.HasResetter() {
		tracked := m.HeadPoseReal()
		limit := overshoot + m.Area().MaxWalkableDistance(tracked.Position, tracked.Forward)
		dist = math.Max(0, math.Min(dist, limit))
	}
	m.MoveHead(m.HeadPose().Forward.Mul(dist))
}
