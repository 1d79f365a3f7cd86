package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/stats"
)

const (
	maxSpeed     = 256
	maxTrail     = 20000
	historyWidth = 36
)

type TickMsg time.Time

// Watch steps one experiment session and draws it.
type Watch struct {
	session *experiment.Session
	canvas  *Canvas

	running bool
	speed   int
	virtual bool

	realTrail    []geom.Vec2
	virtualTrail []geom.Vec2
	history      []float64

	outcome  *experiment.Outcome
	quitting bool
}

// NewWatch wraps s with a canvas of w x h terminal cells.
func NewWatch(s *experiment.Session, w, h int) *Watch {
	m := &Watch{
		session: s,
		canvas:  NewCanvas(w, h),
		running: true,
		speed:   1,
	}
	m.track()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Watch) Init() tea.Cmd {
	return tick()
}

// Outcome is the finished experiment, if it has finished.
func (m *Watch) Outcome() (experiment.Outcome, bool) {
	if m.outcome == nil {
		return experiment.Outcome{}, false
	}
	return *m.outcome, true
}

func (m *Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "v":
			m.virtual = !m.virtual
		case "+", "=":
			m.speed = min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		}
		return m, nil

	case TickMsg:
		if m.running {
			for i := 0; i < m.speed && m.outcome == nil; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Watch) step() {
	if m.outcome != nil {
		return
	}
	done := m.session.Step()
	m.track()
	if done {
		out := m.session.Finish()
		m.outcome = &out
		m.running = false
	}
}

func (m *Watch) track() {
	mgr := m.session.Manager()
	pos := mgr.HeadPoseReal().Position
	m.realTrail = appendCapped(m.realTrail, pos, maxTrail)
	m.virtualTrail = appendCapped(m.virtualTrail, mgr.HeadPose().Position, maxTrail)
	m.history = appendCapped(m.history, mgr.Area().DistanceToNearestEdge(pos), historyWidth)
}

func appendCapped[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}

// areaCorners are the tracking area corners in tracking space.
func (m *Watch) areaCorners() []geom.Vec2 {
	a := m.session.Manager().Area()
	hx, hz := 0.5*a.SizeX, 0.5*a.SizeZ
	return []geom.Vec2{geom.V(-hx, -hz), geom.V(hx, -hz), geom.V(hx, hz), geom.V(-hx, hz)}
}

func (m *Watch) drawReal() {
	mgr := m.session.Manager()
	a := mgr.Area()
	vp := Fit(m.canvas, -0.5*a.SizeX, 0.5*a.SizeX, -0.5*a.SizeZ, 0.5*a.SizeZ)

	vp.Polyline(m.areaCorners(), true)
	vp.Polyline(m.realTrail, false)
	head := mgr.HeadPoseReal()
	vp.Marker(head.Position, head.Forward, 0.05*math.Max(a.SizeX, a.SizeZ))
}

func (m *Watch) drawVirtual() {
	mgr := m.session.Manager()
	frame := mgr.Frame()

	corners := m.areaCorners()
	for i, c := range corners {
		corners[i] = frame.ToWorld(c)
	}
	waypoints := m.session.Path.Waypoints

	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, set := range [][]geom.Vec2{corners, waypoints, m.virtualTrail} {
		for _, p := range set {
			minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
			minZ, maxZ = math.Min(minZ, p.Y()), math.Max(maxZ, p.Y())
		}
	}
	vp := Fit(m.canvas, minX, maxX, minZ, maxZ)

	vp.Polyline(waypoints, false)
	vp.Polyline(corners, true)
	vp.Polyline(m.virtualTrail, false)
	head := mgr.HeadPose()
	vp.Marker(head.Position, head.Forward, 0.03*math.Max(maxX-minX, maxZ-minZ))
}

func (m *Watch) header() string {
	s := m.session.Setup
	return headerStyle.Render(fmt.Sprintf("%s + %s  %s trial %d  %gx%g m",
		s.Redirector, s.Resetter, s.Path.Name, s.Trial, s.Size.X, s.Size.Z))
}

func (m *Watch) status() string {
	switch {
	case m.outcome != nil:
		return statusPaused.Render("DONE")
	case m.session.Manager().InReset():
		return statusReset.Render("RESET")
	case m.running:
		return statusRunning.Render("RUNNING")
	}
	return statusPaused.Render("PAUSED")
}

func (m *Watch) panel() string {
	mgr := m.session.Manager()
	head := mgr.HeadPoseReal()
	view := "real"
	if m.virtual {
		view = "virtual"
	}

	var b strings.Builder
	b.WriteString(m.status() + "\n\n")
	b.WriteString(kv("view", view) + "\n")
	b.WriteString(kv("time", fmt.Sprintf("%.1f s", mgr.Now())) + "\n")
	b.WriteString(kv("ticks", fmt.Sprintf("%d  x%d", m.session.Ticks(), m.speed)) + "\n")
	b.WriteString(kv("resets", fmt.Sprintf("%d", mgr.Stats().ResetCount())) + "\n")
	b.WriteString(kv("waypoint", fmt.Sprintf("%d/%d", min(m.session.Walker().Index()+1, len(m.session.Path.Waypoints)), len(m.session.Path.Waypoints))) + "\n")
	b.WriteString(kv("real", fmt.Sprintf("(%.2f, %.2f)", head.Position.X(), head.Position.Y())) + "\n")
	virt := mgr.HeadPose().Position
	b.WriteString(kv("virtual", fmt.Sprintf("(%.2f, %.2f)", virt.X(), virt.Y())) + "\n")

	if len(m.history) > 1 {
		b.WriteString("\n" + asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(30),
			asciigraph.Caption("distance to edge (m)"),
		) + "\n")
	}
	if m.outcome != nil {
		if v, ok := m.outcome.Result.Lookup(stats.KeySumVirtualDistance); ok {
			b.WriteString("\n" + kv("virtual distance", v) + "\n")
		}
	}
	return panelStyle.Render(b.String())
}

func (m *Watch) View() string {
	if m.quitting {
		return ""
	}
	m.canvas.Clear()
	if m.virtual {
		m.drawVirtual()
	} else {
		m.drawReal()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(strings.TrimRight(m.canvas.String(), "\n")),
		m.panel(),
	)
	help := keyHint.Render("space pause  n step  v view  +/- speed  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, help)
}
