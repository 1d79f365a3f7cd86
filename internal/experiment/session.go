package experiment

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/pathgen"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/redirectors"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/trail"
	"github.com/san-kum/rdwsim/internal/walker"
	"go.uber.org/zap"
)

const fallbackFPS = 60.0

// Outcome is everything one finished experiment produced.
type Outcome struct {
	Result  stats.Result
	Samples *stats.Samples
	Trail   *trail.Trail
	Ticks   int
}

// Session is one experiment in progress. The batch runner drives it to
// completion; the watch view steps it one frame at a time.
type Session struct {
	Setup Setup
	Path  pathgen.Path

	cfg      *config.Config
	manager  *rdw.Manager
	walker   *walker.Walker
	recorder *trail.Recorder
	dt       float64
	ticks    int
	timedOut bool
	done     bool
}

// NewSession prepares setup for its first tick: it places the user, sizes
// the tracking area, generates the virtual path, assigns the algorithms
// and starts statistics logging.
func NewSession(cfg *config.Config, reg *Registry, setup Setup, logger *zap.Logger) (*Session, error) {
	m, err := rdw.New(cfg.Manager.RDW(), logger)
	if err != nil {
		return nil, err
	}
	m.SetGains(cfg.Manager.Gains.Scaled(setup.GainScale))

	m.PlaceUser(setup.Pose.Position, setup.Pose.Forward)
	if err := m.ResizeTrackingArea(setup.Size.X, setup.Size.Z); err != nil {
		return nil, err
	}

	gen := pathgen.NewGenerator(rand.New(rand.NewSource(setup.Seed)))
	path := gen.GeneratePath(setup.Path, setup.Pose.Position, m.HeadPose().Forward)

	red, err := reg.GetRedirector(setup.Redirector)
	if err != nil {
		return nil, err
	}
	if zz, ok := red.(*redirectors.ZigZag); ok {
		zz.SetPath(path.Waypoints)
	}
	res, err := reg.GetResetter(setup.Resetter)
	if err != nil {
		return nil, err
	}
	m.SetRedirector(red)
	m.SetResetter(res)

	fps := cfg.Manager.TargetFPS
	if fps <= 0 {
		fps = fallbackFPS
	}
	s := &Session{
		Setup:   setup,
		Path:    path,
		cfg:     cfg,
		manager: m,
		walker:  walker.New(cfg.Walker, path.Waypoints),
		dt:      1 / fps,
	}
	if cfg.Run.RecordTrails {
		label := fmt.Sprintf("%s %s trial %d", setup.Redirector, setup.Path.Name, setup.Trial)
		s.recorder = trail.NewRecorder(label, setup.Size.X, setup.Size.Z)
		s.record()
	}

	m.Stats().Begin()
	return s, nil
}

func (s *Session) record() {
	if s.recorder != nil {
		s.recorder.Record(s.manager.HeadPoseReal().Position, s.manager.HeadPose().Position)
	}
}

// Step advances one frame: the walker moves the head, then the manager
// ticks. It reports whether the experiment is over.
func (s *Session) Step() bool {
	if s.done {
		return true
	}
	if s.walker.Step(s.manager, s.dt) {
		s.done = true
		return true
	}
	s.manager.Tick(s.dt)
	s.ticks++
	s.record()

	if limit := s.cfg.Run.MaxTicks; limit > 0 && s.ticks >= limit {
		s.timedOut = true
		s.done = true
	}
	return s.done
}

func (s *Session) Done() bool                { return s.done }
func (s *Session) TimedOut() bool            { return s.timedOut }
func (s *Session) Ticks() int                { return s.ticks }
func (s *Session) Manager() *rdw.Manager     { return s.manager }
func (s *Session) Walker() *walker.Walker    { return s.walker }
func (s *Session) Recorder() *trail.Recorder { return s.recorder }

// Finish ends logging and collects the summary, plus the sampled series and
// trail when the configuration asks for them.
func (s *Session) Finish() Outcome {
	st := s.manager.Stats()
	st.End()

	out := Outcome{
		Result: st.Summary(s.Setup.Descriptor(s.timedOut)),
		Ticks:  s.ticks,
	}
	if s.cfg.Run.SampledSeries {
		samples := st.Sampled()
		out.Samples = &samples
	}
	if s.recorder != nil {
		t := s.recorder.Trail()
		out.Trail = &t
	}
	return out
}
