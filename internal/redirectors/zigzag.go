package redirectors

import (
	"math"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/rdw"
)

const (
	DefaultWaypointUpdateDistance = 0.4
	DefaultSlowDownVelocity       = 0.25

	autopilotWaypointUpdateDistance = 0.1
	autopilotSlowDownVelocity       = 100.0

	// minRealTargetDistance disables every gain when the user is this
	// close to the active real anchor.
	minRealTargetDistance = 0.1
)

// DefaultAnchors are the two real targets, in tracking-area coordinates.
var DefaultAnchors = [2]geom.Vec2{{0, 0}, {3, 3}}

// ZigZag folds a zig-zag virtual path onto two real anchors. Each virtual
// waypoint is paired with one anchor, alternating, and every tick the
// translation, rotation and curvature gains are solved so the virtual
// waypoint and its anchor coincide when the user arrives.
type ZigZag struct {
	Anchors [2]geom.Vec2
	// UpdateDistance and SlowDownVelocity gate waypoint advancement.
	// Autopilot runs override both on the first Apply.
	UpdateDistance   float64
	SlowDownVelocity float64

	waypoints   []geom.Vec2
	index       int
	toAnchor0   bool
	initialized bool
}

func NewZigZag() *ZigZag {
	z := &ZigZag{Anchors: DefaultAnchors}
	z.restart()
	return z
}

func (z *ZigZag) Name() string { return "zigzag" }

func (z *ZigZag) restart() {
	z.UpdateDistance = DefaultWaypointUpdateDistance
	z.SlowDownVelocity = DefaultSlowDownVelocity
	z.index = 1
	z.toAnchor0 = false
	z.initialized = false
}

func (z *ZigZag) Initialize(*rdw.Manager) { z.restart() }

// SetPath installs the virtual path. The origin is prepended as the
// waypoint paired with the first anchor.
func (z *ZigZag) SetPath(path []geom.Vec2) {
	z.waypoints = append([]geom.Vec2{{0, 0}}, path...)
	z.restart()
}

// Waypoints returns the virtual waypoints including the prepended origin.
func (z *ZigZag) Waypoints() []geom.Vec2 { return z.waypoints }

// Index is the virtual waypoint currently being solved for.
func (z *ZigZag) Index() int { return z.index }

// ActiveAnchor is the real anchor paired with the current waypoint.
func (z *ZigZag) ActiveAnchor() geom.Vec2 {
	if z.toAnchor0 {
		return z.Anchors[0]
	}
	return z.Anchors[1]
}

func (z *ZigZag) ready() bool { return len(z.waypoints) >= 2 }

// align pins the first anchor onto the first waypoint and turns the frame
// so the anchor-to-anchor direction matches the first path segment.
func (z *ZigZag) align(m *rdw.Manager) {
	p0, p1 := z.waypoints[0], z.waypoints[1]
	realDir := z.Anchors[1].Sub(z.Anchors[0])
	yaw := geom.WrapAngle(geom.Heading(p1.Sub(p0)) - geom.Heading(realDir))
	m.AlignFrame(geom.Frame{
		Position: p0.Sub(geom.Rotate(z.Anchors[0], yaw)),
		Yaw:      yaw,
	})

	if m.Autopilot() {
		z.UpdateDistance = autopilotWaypointUpdateDistance
		z.SlowDownVelocity = autopilotSlowDownVelocity
	}
	m.Logger().Debug("zigzag aligned")
}

// Observe advances to the next waypoint once the user is close to the
// current one, has slowed down and is not resetting.
func (z *ZigZag) Observe(m *rdw.Manager) {
	if !z.ready() {
		return
	}
	st := m.State()
	near := st.CurrPos.Sub(z.waypoints[z.index]).Len() < z.UpdateDistance
	speed := 0.0
	if dt := m.DeltaTime(); dt > 0 {
		speed = st.DeltaPos.Len() / dt
	}
	slow := speed < z.SlowDownVelocity
	more := z.index < len(z.waypoints)-1

	if near && slow && more && !m.InReset() {
		z.index++
		z.toAnchor0 = !z.toAnchor0
	}
}

func (z *ZigZag) Apply(m *rdw.Manager) {
	if !z.ready() {
		return
	}
	if !z.initialized {
		z.align(m)
		z.initialized = true
	}

	st := m.State()
	g := m.Gains()

	anchor := z.ActiveAnchor()
	virtualTarget := z.waypoints[z.index]
	realTarget := m.ToWorld(anchor)

	userToVirtual := virtualTarget.Sub(st.CurrPos)
	userToReal := realTarget.Sub(st.CurrPos)
	angleToReal := geom.SignedAngle(st.CurrDir, userToReal)
	angleToVirtual := geom.SignedAngle(st.CurrDir, userToVirtual)
	distanceToReal := anchor.Sub(st.CurrPosReal).Len()
	requiredAngle := geom.SignedAngle(userToReal, userToVirtual)

	minTransRemaining := userToVirtual.Len() / (1 + g.MaxTrans)
	minRotRemaining := angleToVirtual

	curvatureRate := geom.Rad2Deg / g.CurvatureRadius
	fromRotation := geom.Sign(requiredAngle) * math.Min(math.Abs(requiredAngle), math.Abs(minRotRemaining*g.MinRot))
	fromCurvature := geom.Sign(requiredAngle) * math.Min(minTransRemaining*curvatureRate, math.Abs(2*(requiredAngle-fromRotation)))
	requiredTranslation := realTarget.Sub(virtualTarget).Len()

	var gC, gR, gT float64
	if distanceToReal >= minRealTargetDistance {
		gC = safeDiv(fromCurvature, minTransRemaining)
		gT = safeDiv(requiredTranslation, distanceToReal)
		// The threshold is compared in radians against degrees, which
		// makes it about 0.017 degrees.
		if math.Abs(angleToReal) >= geom.Deg2Rad*1 {
			gR = safeDiv(fromRotation, math.Abs(minRotRemaining))
		}
	}

	// Translation gain turns negative when the user walks away from the
	// virtual target's offset.
	alignment := geom.SignedAngle(st.DeltaPos, virtualTarget.Sub(realTarget))
	gT = math.Cos(geom.Deg2Rad*alignment) * math.Abs(gT)
	gR *= geom.Sign(st.DeltaDir)

	gT = clampGain(gT, g.MinTrans, g.MaxTrans)
	gR = clampGain(gR, g.MinRot, g.MaxRot)
	gC = clampGain(gC, -curvatureRate, curvatureRate)

	// Hold translation while the user is still at the previous waypoint.
	if st.CurrPos.Sub(z.waypoints[z.index-1]).Len() < z.UpdateDistance {
		gT = 0
	}

	m.InjectTranslation(st.DeltaPos.Mul(gT))
	m.InjectRotation(gR * st.DeltaDir)
	m.InjectCurvature(gC * st.DeltaPos.Len())
}

func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) {
		return 0
	}
	return num / den
}

func clampGain(g, lo, hi float64) float64 {
	if g > 0 {
		return math.Min(g, hi)
	}
	return math.Max(g, lo)
}
