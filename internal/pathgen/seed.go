package pathgen

import (
	"fmt"
	"sort"
)

type DistributionKind int

const (
	Uniform DistributionKind = iota
	Normal
)

func (k DistributionKind) String() string {
	switch k {
	case Uniform:
		return "uniform"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("DistributionKind(%d)", int(k))
	}
}

// Alternation controls how the sign of sampled turn angles varies between
// steps.
type Alternation int

const (
	// NoAlternation keeps the sampled sign.
	NoAlternation Alternation = iota
	// RandomAlternation negates the sample with probability 0.5.
	RandomAlternation
	// ConstantAlternation multiplies by +1, -1, +1, ... regardless of the
	// sampled sign.
	ConstantAlternation
)

func (a Alternation) String() string {
	switch a {
	case NoAlternation:
		return "none"
	case RandomAlternation:
		return "random"
	case ConstantAlternation:
		return "constant"
	default:
		return fmt.Sprintf("Alternation(%d)", int(a))
	}
}

// Distribution describes how one scalar is sampled. Normal samples are
// clamped to [Min, Max].
type Distribution struct {
	Kind        DistributionKind
	Min, Max    float64
	Mu, Sigma   float64
	Alternation Alternation
}

func UniformDist(min, max float64) Distribution {
	return Distribution{Kind: Uniform, Min: min, Max: max}
}

func NormalDist(mu, sigma, min, max float64) Distribution {
	return Distribution{Kind: Normal, Mu: mu, Sigma: sigma, Min: min, Max: max}
}

// WithAlternation returns a copy of d using the given sign policy.
func (d Distribution) WithAlternation(a Alternation) Distribution {
	d.Alternation = a
	return d
}

// PathSeed is a recipe for one virtual path.
type PathSeed struct {
	Name          string
	Distance      Distribution
	Angle         Distribution
	WaypointCount int
	// Trials is the number of repetitions an experiment batch runs for
	// this seed. Zero means the batch default.
	Trials int
}

const DefaultTrials = 10

func Office() PathSeed {
	return PathSeed{
		Name:          "office",
		Distance:      UniformDist(2, 8),
		Angle:         UniformDist(90, 90).WithAlternation(RandomAlternation),
		WaypointCount: 200,
		Trials:        DefaultTrials,
	}
}

func ZigZag() PathSeed {
	return PathSeed{
		Name:          "zigzag",
		Distance:      UniformDist(5.5, 5.5),
		Angle:         UniformDist(140, 140).WithAlternation(ConstantAlternation),
		WaypointCount: 6,
		Trials:        DefaultTrials,
	}
}

func ExplorationSmall() PathSeed {
	return PathSeed{
		Name:          "exploration_small",
		Distance:      UniformDist(2, 6),
		Angle:         UniformDist(-180, 180),
		WaypointCount: 250,
		Trials:        DefaultTrials,
	}
}

func ExplorationLarge() PathSeed {
	return PathSeed{
		Name:          "exploration_large",
		Distance:      UniformDist(8, 12),
		Angle:         UniformDist(-180, 180),
		WaypointCount: 100,
		Trials:        DefaultTrials,
	}
}

// LongWalk is a single straight 1 km segment, run once.
func LongWalk() PathSeed {
	return PathSeed{
		Name:          "long_walk",
		Distance:      UniformDist(1000, 1000),
		Angle:         UniformDist(0, 0),
		WaypointCount: 1,
		Trials:        1,
	}
}

var seeds = map[string]func() PathSeed{
	"office":            Office,
	"zigzag":            ZigZag,
	"exploration_small": ExplorationSmall,
	"exploration_large": ExplorationLarge,
	"long_walk":         LongWalk,
}

// Lookup returns the catalogue seed with the given name.
func Lookup(name string) (PathSeed, error) {
	fn, ok := seeds[name]
	if !ok {
		return PathSeed{}, fmt.Errorf("unknown path seed: %s", name)
	}
	return fn(), nil
}

// Names lists the catalogue seeds in sorted order.
func Names() []string {
	names := make([]string, 0, len(seeds))
	for name := range seeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
