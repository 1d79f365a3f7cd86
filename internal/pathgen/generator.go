package pathgen

import (
	"math"
	"math/rand"

	"github.com/san-kum/rdwsim/internal/geom"
)

// DefaultSeed seeds batch generators when the configuration leaves it unset.
const DefaultSeed = 3041

// Path is a generated waypoint sequence and its bookkeeping.
type Path struct {
	Waypoints []geom.Vec2
	// SumDistance is the total straight-line length of all segments.
	SumDistance float64
	// SumRotation accumulates absolute turn magnitudes, including the
	// trailing turn after the last segment.
	SumRotation float64
}

// Generator samples paths from a caller-owned random source.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

// normal draws with the Box-Muller transform and clamps to [min, max].
func (g *Generator) normal(mu, sigma, min, max float64) float64 {
	r1 := 1 - g.rng.Float64() // (0, 1], keeps the log finite
	r2 := g.rng.Float64()
	z := math.Sqrt(-2*math.Log(r1)) * math.Sin(2*math.Pi*r2)
	return math.Max(math.Min(mu+z*sigma, max), min)
}

// Sample draws one value from d, applying random alternation if set.
// Constant alternation is handled by GeneratePath since it depends on the
// step index.
func (g *Generator) Sample(d Distribution) float64 {
	var v float64
	switch d.Kind {
	case Uniform:
		v = g.uniform(d.Min, d.Max)
	case Normal:
		v = g.normal(d.Mu, d.Sigma, d.Min, d.Max)
	}
	if d.Alternation == RandomAlternation && g.rng.Float64() < 0.5 {
		v = -v
	}
	return v
}

// GeneratePath walks then turns WaypointCount times starting at pos facing
// fwd, so the first segment always runs straight along fwd.
func (g *Generator) GeneratePath(seed PathSeed, pos, fwd geom.Vec2) Path {
	n := seed.WaypointCount
	if n < 0 {
		n = 0
	}
	path := Path{Waypoints: make([]geom.Vec2, 0, n)}
	forward := geom.Normalize(fwd)
	alternator := 1.0

	for i := 0; i < n; i++ {
		dist := g.Sample(seed.Distance)
		turn := g.Sample(seed.Angle)
		if seed.Angle.Alternation == ConstantAlternation {
			turn *= alternator
		}

		pos = pos.Add(forward.Mul(dist))
		forward = geom.Normalize(geom.Rotate(forward, turn))
		path.Waypoints = append(path.Waypoints, pos)
		path.SumDistance += dist
		path.SumRotation += math.Abs(turn)
		alternator = -alternator
	}
	return path
}

// RandomPositionWithinBounds draws a point uniformly from the rectangle.
func (g *Generator) RandomPositionWithinBounds(minX, maxX, minZ, maxZ float64) geom.Vec2 {
	return geom.V(g.uniform(minX, maxX), g.uniform(minZ, maxZ))
}

// RandomForward returns a unit direction at a uniform angle in [0, 360).
func (g *Generator) RandomForward() geom.Vec2 {
	return geom.Normalize(geom.Rotate(geom.Forward, g.uniform(0, 360)))
}
