package rdw

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/rdwsim/internal/boundary"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/stats"
	"go.uber.org/zap"
)

// Config holds the manager's numeric knobs.
type Config struct {
	Gains Gains
	// ManualTime advances a simulated clock by 1/TargetFPS per tick and
	// ignores the dt passed to Tick.
	ManualTime bool
	TargetFPS  float64
	// Autopilot marks a simulated walker that hits waypoints precisely;
	// algorithms tighten their waypoint thresholds accordingly.
	Autopilot         bool
	ResetBuffer       float64
	BodyDiameter      float64
	SamplingFrequency float64
}

func DefaultConfig() Config {
	return Config{
		Gains:             DefaultGains(),
		ManualTime:        true,
		TargetFPS:         60,
		Autopilot:         true,
		ResetBuffer:       boundary.DefaultBuffer,
		BodyDiameter:      boundary.DefaultBodyDiameter,
		SamplingFrequency: stats.DefaultSamplingFrequency,
	}
}

func (c Config) Validate() error {
	if err := c.Gains.Validate(); err != nil {
		return err
	}
	if c.ManualTime && c.TargetFPS <= 0 {
		return fmt.Errorf("%w: target_fps must be positive with manual time", ErrInvalidConfig)
	}
	if c.ResetBuffer < 0 || c.BodyDiameter < 0 {
		return fmt.Errorf("%w: reset buffer and body diameter must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// Manager runs the redirection control loop for one user.
type Manager struct {
	cfg    Config
	gains  Gains
	logger *zap.Logger

	area    boundary.TrackingArea
	trigger *boundary.ResetTrigger

	// frame maps tracking-area coordinates to the virtual world; head is
	// the user's real pose inside it.
	frame geom.Frame
	head  Pose
	state UserState

	redirector Redirector
	resetter   Resetter
	stats      *stats.Aggregator

	inReset            bool
	reorientationNoted bool
	now, dt            float64
}

// New builds a manager with a 10x10 m tracking area and the Null
// algorithms. A nil logger is replaced with a no-op logger.
func New(cfg Config, logger *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		cfg:        cfg,
		gains:      cfg.Gains,
		logger:     logger,
		area:       boundary.NewTrackingArea(10, 10, cfg.ResetBuffer),
		redirector: NullRedirector{},
		resetter:   NullResetter{},
	}
	m.trigger = boundary.NewResetTrigger(m.area, cfg.BodyDiameter)
	m.stats = stats.New(m, cfg.SamplingFrequency)
	m.PlaceUser(geom.V(0, 0), geom.Forward)
	return m, nil
}

// Now is the manager clock in seconds.
func (m *Manager) Now() float64 { return m.now }

// DeltaTime is the duration of the current tick.
func (m *Manager) DeltaTime() float64 { return m.dt }

func (m *Manager) Config() Config              { return m.cfg }
func (m *Manager) Gains() Gains                { return m.gains }
func (m *Manager) Logger() *zap.Logger         { return m.logger }
func (m *Manager) Area() boundary.TrackingArea { return m.area }
func (m *Manager) Frame() geom.Frame           { return m.frame }
func (m *Manager) State() UserState            { return m.state }
func (m *Manager) InReset() bool               { return m.inReset }
func (m *Manager) Stats() *stats.Aggregator    { return m.stats }
func (m *Manager) Redirector() Redirector      { return m.redirector }
func (m *Manager) Resetter() Resetter          { return m.resetter }
func (m *Manager) Autopilot() bool             { return m.cfg.Autopilot }
func (m *Manager) TrackingCenter() geom.Vec2   { return m.frame.Position }

// ToWorld maps a tracking-area point into the virtual world.
func (m *Manager) ToWorld(local geom.Vec2) geom.Vec2 { return m.frame.ToWorld(local) }

// AlignFrame replaces the redirected frame outright. No gain is recorded.
func (m *Manager) AlignFrame(f geom.Frame) { m.frame = f }

// SetGains replaces the active gain bounds, e.g. with a scaled copy for one
// experiment.
func (m *Manager) SetGains(g Gains) { m.gains = g }

// SetRedirector installs r and initialises it. nil installs the Null
// redirector.
func (m *Manager) SetRedirector(r Redirector) {
	if r == nil {
		r = NullRedirector{}
	}
	m.redirector = r
	r.Initialize(m)
}

// SetResetter installs r, abandoning any reset in progress.
func (m *Manager) SetResetter(r Resetter) {
	if r == nil {
		r = NullResetter{}
	}
	m.inReset = false
	m.resetter = r
	r.Initialize(m)
}

// HasResetter reports whether a resetter other than the Null one is
// installed.
func (m *Manager) HasResetter() bool {
	_, null := m.resetter.(NullResetter)
	return !null
}

// ResizeTrackingArea changes the physical area and re-initialises the
// resetter.
func (m *Manager) ResizeTrackingArea(sizeX, sizeZ float64) error {
	area := boundary.NewTrackingArea(sizeX, sizeZ, m.cfg.ResetBuffer)
	if area.MaxX() <= 0 || area.MaxZ() <= 0 {
		return fmt.Errorf("%w: %gx%g with buffer %g", ErrInvalidTrackingArea, sizeX, sizeZ, m.cfg.ResetBuffer)
	}
	m.area = area
	m.trigger.Resize(area, m.cfg.BodyDiameter)
	m.resetter.Initialize(m)
	return nil
}

// PlaceUser resets the redirected frame to identity and puts the user at a
// real pose with no motion history.
func (m *Manager) PlaceUser(pos, forward geom.Vec2) {
	m.frame = geom.Identity()
	m.inReset = false
	fwd := geom.Normalize(forward)
	if fwd == (geom.Vec2{}) {
		fwd = geom.Forward
	}
	m.head = Pose{Position: pos, Forward: fwd}
	m.updateCurrentState()
	m.state.DeltaPos = geom.Vec2{}
	m.state.DeltaDir = 0
	m.snapshotPrevious()
	m.trigger.Resize(m.area, m.cfg.BodyDiameter)
}

// HeadPose is the user's virtual pose right now, including injections made
// earlier in the current tick.
func (m *Manager) HeadPose() Pose {
	return Pose{
		Position: m.frame.ToWorld(m.head.Position),
		Forward:  m.frame.DirToWorld(m.head.Forward),
	}
}

// HeadPoseReal is the user's pose inside the tracking area.
func (m *Manager) HeadPoseReal() Pose { return m.head }

// MoveHead displaces the user by a virtual-space offset.
func (m *Manager) MoveHead(worldDelta geom.Vec2) {
	m.head.Position = m.head.Position.Add(m.frame.DirToLocal(worldDelta))
}

// TurnHead turns the user about the up axis.
func (m *Manager) TurnHead(deg float64) {
	m.head.Forward = geom.Normalize(geom.Rotate(m.head.Forward, deg))
}

// Tick advances the loop by one frame. dt is ignored under manual time.
func (m *Manager) Tick(dt float64) {
	if m.cfg.ManualTime {
		m.dt = 1 / m.cfg.TargetFPS
	} else {
		m.dt = dt
	}
	m.now += m.dt

	m.updateCurrentState()
	m.state.DeltaPos = m.state.CurrPos.Sub(m.state.PrevPos)
	m.state.DeltaDir = geom.SignedAngle(m.state.PrevDir, m.state.CurrDir)

	if o, ok := m.redirector.(Observer); ok {
		o.Observe(m)
	}

	if m.trigger.Observe(m.state.CurrPosReal) {
		m.OnResetTrigger()
	}
	if m.HasResetter() && !m.inReset && m.IsUserOutOfBounds() {
		m.logger.Warn("reset aid helped",
			zap.Float64("x", m.state.CurrPosReal.X()),
			zap.Float64("z", m.state.CurrPosReal.Y()),
			zap.Float64("t", m.now))
		m.OnResetTrigger()
	}

	if m.inReset {
		m.resetter.Apply(m)
	} else {
		m.redirector.Apply(m)
	}

	m.stats.Update(m.sample())
	m.snapshotPrevious()
}

func (m *Manager) updateCurrentState() {
	pose := m.HeadPose()
	m.state.CurrPos = pose.Position
	m.state.CurrDir = pose.Forward
	m.state.CurrPosReal = m.head.Position
	m.state.CurrDirReal = m.head.Forward
}

// snapshotPrevious reads the live pose, so injections made this tick do not
// show up in the next tick's deltas.
func (m *Manager) snapshotPrevious() {
	pose := m.HeadPose()
	m.state.PrevPos = pose.Position
	m.state.PrevDir = pose.Forward
	m.state.PrevPosReal = m.head.Position
	m.state.PrevDirReal = m.head.Forward
}

func (m *Manager) sample() stats.Frame {
	s := m.state
	return stats.Frame{
		DeltaPos:           s.DeltaPos.Len(),
		DeltaPosReal:       s.DeltaPosReal().Len(),
		RealPos:            s.CurrPosReal,
		VirtualPos:         s.CurrPos,
		DistanceToBoundary: m.area.DistanceToNearestEdge(s.CurrPosReal),
		DistanceToCenter:   m.area.DistanceToCenter(s.CurrPosReal),
		HalfDiameter:       m.area.HalfDiameter(),
	}
}

// IsUserOutOfBounds tests the current real position against the usable
// rectangle.
func (m *Manager) IsUserOutOfBounds() bool {
	return m.area.IsOutOfBounds(m.state.CurrPosReal)
}

// OnResetTrigger starts a reset if none is active and the resetter asks for
// one.
func (m *Manager) OnResetTrigger() {
	if m.inReset {
		return
	}
	if !m.resetter.IsResetRequired(m) {
		return
	}
	m.resetter.InitializeReset(m)
	m.stats.ResetTriggered()
	m.inReset = true
	m.reorientationNoted = false
	m.logger.Debug("reset started",
		zap.String("resetter", m.resetter.Name()),
		zap.Float64("t", m.now))
}

// OnResetEnd is called by the resetter when its maneuver is complete.
func (m *Manager) OnResetEnd() {
	m.resetter.FinalizeReset(m)
	m.inReset = false
	m.logger.Debug("reset finished", zap.Float64("t", m.now))
}

// ratio divides with a zero result for a vanishing denominator.
func ratio(num, den float64) float64 {
	if math.Abs(den) < 1e-9 {
		return 0
	}
	return num / den
}

// InjectRotation turns the virtual world about the user by deg degrees and
// reports it as rotation gain.
func (m *Manager) InjectRotation(deg float64) {
	if deg == 0 {
		return
	}
	m.frame.RotateAround(m.HeadPose().Position, deg)
	m.stats.RotationGain(ratio(deg, m.state.DeltaDir), deg)
}

// InjectCurvature is InjectRotation reported as curvature gain, in degrees
// per metre walked.
func (m *Manager) InjectCurvature(deg float64) {
	if deg == 0 {
		return
	}
	m.frame.RotateAround(m.HeadPose().Position, deg)
	m.stats.CurvatureGain(ratio(deg, m.state.DeltaPos.Len()), deg)
}

// InjectTranslation shifts the virtual world by t. The reported gain is
// negative when t opposes the user's motion.
func (m *Manager) InjectTranslation(t geom.Vec2) {
	mag := t.Len()
	if mag == 0 {
		return
	}
	m.frame.Translate(t)
	gT := geom.Sign(t.Dot(m.state.DeltaPos)) * ratio(mag, m.state.DeltaPos.Len())
	m.stats.TranslationGain(gT, t)
}

// InjectResetRotation turns the virtual world during a reset. Reorientation
// gains have no accounting; the rotation is applied regardless.
func (m *Manager) InjectResetRotation(deg float64) {
	if deg == 0 {
		return
	}
	m.frame.RotateAround(m.HeadPose().Position, deg)
	err := m.stats.RotationGainReorientation(ratio(deg, m.state.DeltaDir), deg)
	if errors.Is(err, stats.ErrUnsupported) && !m.reorientationNoted {
		m.reorientationNoted = true
		m.logger.Debug("reorientation gain not recorded", zap.Error(err))
	}
}
