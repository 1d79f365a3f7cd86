// Package experiment expands a batch configuration into experiment setups
// and runs each one against a fresh redirection manager.
package experiment

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/pathgen"
	"github.com/san-kum/rdwsim/internal/rdw"
	"github.com/san-kum/rdwsim/internal/stats"
	"go.uber.org/zap"
)

// Experiment types.
const (
	Fixed         = "fixed"
	VaryingSizes  = "varying_sizes"
	VaryingShapes = "varying_shapes"
	GainScales    = "gain_scales"
)

var Types = []string{Fixed, VaryingSizes, VaryingShapes, GainScales}

const (
	minSquareSize = 2.0
	maxSquareSize = 60.0
	gainScaleArea = 10.0
)

type Size struct {
	X, Z float64
}

// Pose is an initial user pose. Random and Diagonal poses are placeholders
// that NewPlan resolves per setup.
type Pose struct {
	Position geom.Vec2
	Forward  geom.Vec2
	Random   bool
	Diagonal bool
}

// DefaultPose stands at the centre facing +z.
var DefaultPose = Pose{Forward: geom.Forward}

// Setup is one fully resolved experiment.
type Setup struct {
	Index int
	// Group numbers the repetitions of one configuration; all trials of a
	// group are consecutive.
	Group      int
	Experiment string
	Redirector string
	Resetter   string
	Path       pathgen.PathSeed
	Size       Size
	Pose       Pose
	GainScale  rdw.GainScale
	Trial      int
	// Seed drives this setup's path generator.
	Seed int64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Descriptor identifies the setup in results and file names.
func (s Setup) Descriptor(timedOut bool) []stats.Field {
	d := []stats.Field{
		{Key: "redirector", Value: s.Redirector},
		{Key: "resetter", Value: s.Resetter},
		{Key: "tracking_size_x", Value: formatFloat(s.Size.X)},
		{Key: "tracking_size_z", Value: formatFloat(s.Size.Z)},
		{Key: "path", Value: s.Path.Name},
		{Key: "trial", Value: strconv.Itoa(s.Trial)},
		{Key: "experiment", Value: s.Experiment},
	}
	if s.Experiment == GainScales {
		d = append(d, stats.Field{Key: "gain_scale", Value: s.GainScale.String()})
	}
	return append(d, stats.Field{Key: "timed_out", Value: strconv.FormatBool(timedOut)})
}

func descriptorString(d []stats.Field) string {
	parts := make([]string, len(d))
	for i, f := range d {
		parts[i] = f.Key + "=" + f.Value
	}
	return strings.Join(parts, ",")
}

// Plan is the ordered list of setups of one batch.
type Plan struct {
	Seed   int64
	Setups []Setup
}

// Groups returns the number of distinct configurations in the plan.
func (p *Plan) Groups() int {
	if len(p.Setups) == 0 {
		return 0
	}
	return p.Setups[len(p.Setups)-1].Group + 1
}

func trackingSizes(cfg *config.Config) ([]Size, error) {
	switch cfg.Experiment {
	case Fixed:
		return []Size{{cfg.TrackingSize.X, cfg.TrackingSize.Z}}, nil
	case VaryingSizes:
		n := int(math.Floor((maxSquareSize-minSquareSize)/cfg.SizeStep + 1e-9))
		sizes := make([]Size, 0, n+1)
		for i := 0; i <= n; i++ {
			s := minSquareSize + float64(i)*cfg.SizeStep
			sizes = append(sizes, Size{s, s})
		}
		return sizes, nil
	case VaryingShapes:
		var sizes []Size
		for area := 100.0; area <= 200; area += 50 {
			for ratio := 1.0; ratio <= 2; ratio += 0.5 {
				sizes = append(sizes, Size{math.Sqrt(area) / math.Sqrt(ratio), math.Sqrt(area) * math.Sqrt(ratio)})
			}
		}
		return sizes, nil
	case GainScales:
		return []Size{{gainScaleArea, gainScaleArea}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExperiment, cfg.Experiment)
	}
}

func initialPoses(cfg *config.Config) []Pose {
	if cfg.Experiment == VaryingShapes {
		return []Pose{
			{Forward: geom.V(0, 1)},
			{Forward: geom.V(1, 0)},
			{Diagonal: true},
		}
	}
	pos := geom.V(cfg.Pose.Position.X, cfg.Pose.Position.Z)
	if cfg.Pose.Random {
		return []Pose{{Position: pos, Forward: geom.Forward, Random: true}}
	}
	return []Pose{{Position: pos, Forward: geom.Normalize(geom.V(cfg.Pose.Forward.X, cfg.Pose.Forward.Z))}}
}

func gainScales(cfg *config.Config) []rdw.GainScale {
	if cfg.Experiment != GainScales {
		return []rdw.GainScale{rdw.UnitScale}
	}
	steps := []float64{0, 0.5, 1, 1.5}
	scales := make([]rdw.GainScale, 0, len(steps)*len(steps)*len(steps))
	for _, t := range steps {
		for _, r := range steps {
			for _, c := range steps {
				scales = append(scales, rdw.GainScale{Translation: t, Rotation: r, Curvature: c})
			}
		}
	}
	return scales
}

func trialCount(cfg *config.Config, seed pathgen.PathSeed) int {
	switch {
	case cfg.Trials > 0:
		return cfg.Trials
	case seed.Trials > 0:
		return seed.Trials
	default:
		return pathgen.DefaultTrials
	}
}

// NewPlan enumerates path x size x pose x gain scale x trial, resolves the
// initial poses and draws a path seed per setup from the batch RNG.
func NewPlan(cfg *config.Config, reg *Registry, logger *zap.Logger) (*Plan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := reg.GetRedirector(cfg.Redirector); err != nil {
		return nil, err
	}
	if _, err := reg.GetResetter(cfg.Resetter); err != nil {
		return nil, err
	}
	seeds := make([]pathgen.PathSeed, 0, len(cfg.Paths))
	for _, name := range cfg.Paths {
		seed, err := reg.GetPath(name)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, seed)
	}
	sizes, err := trackingSizes(cfg)
	if err != nil {
		return nil, err
	}
	poses := initialPoses(cfg)
	scales := gainScales(cfg)

	var setups []Setup
	group := 0
	for _, seed := range seeds {
		trials := trialCount(cfg, seed)
		for _, size := range sizes {
			for _, pose := range poses {
				for _, scale := range scales {
					for trial := 1; trial <= trials; trial++ {
						setups = append(setups, Setup{
							Index:      len(setups),
							Group:      group,
							Experiment: cfg.Experiment,
							Redirector: cfg.Redirector,
							Resetter:   cfg.Resetter,
							Path:       seed,
							Size:       size,
							Pose:       pose,
							GainScale:  scale,
							Trial:      trial,
						})
					}
					group++
				}
			}
		}
	}
	if len(setups) == 0 {
		return nil, ErrEmptyPlan
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	resolvePoses(setups, pathgen.NewGenerator(rng), cfg.Pose.ForwardOnly, logger)
	for i := range setups {
		setups[i].Seed = rng.Int63()
	}
	return &Plan{Seed: cfg.Seed, Setups: setups}, nil
}

func resolvePoses(setups []Setup, gen *pathgen.Generator, forwardOnly bool, logger *zap.Logger) {
	for i := range setups {
		s := &setups[i]
		hx, hz := 0.5*s.Size.X, 0.5*s.Size.Z

		switch {
		case s.Pose.Random:
			if !forwardOnly {
				s.Pose.Position = gen.RandomPositionWithinBounds(-hx, hx, -hz, hz)
			}
			s.Pose.Forward = gen.RandomForward()
		case math.Abs(s.Pose.Position.X()) > hx || math.Abs(s.Pose.Position.Y()) > hz:
			logger.Error("invalid initial position, defaulting to (0, 0) facing (0, 1)",
				zap.Int("setup", s.Index),
				zap.Float64("x", s.Pose.Position.X()),
				zap.Float64("z", s.Pose.Position.Y()),
				zap.Float64("tracking_size_x", s.Size.X),
				zap.Float64("tracking_size_z", s.Size.Z))
			s.Pose = DefaultPose
		}

		if !s.Pose.Random && s.Pose.Diagonal {
			s.Pose.Forward = geom.Normalize(geom.V(s.Size.X, s.Size.Z))
			s.Pose.Diagonal = false
		}
	}
}
