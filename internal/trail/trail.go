// Package trail records the real and virtual paths of one experiment and
// renders them as a top-down image.
package trail

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/san-kum/rdwsim/internal/geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultMinDistance is the spacing between recorded points.
const DefaultMinDistance = 0.1

var ErrEmpty = errors.New("trail: nothing recorded")

// Trail is the pair of paths walked in one experiment. Real points are in
// tracking-area coordinates, virtual points in world coordinates.
type Trail struct {
	Label   string
	SizeX   float64
	SizeZ   float64
	Real    []geom.Vec2
	Virtual []geom.Vec2
}

// Recorder appends a point pair each time the user has moved far enough in
// either space.
type Recorder struct {
	MinDistance float64
	trail       Trail
}

func NewRecorder(label string, sizeX, sizeZ float64) *Recorder {
	return &Recorder{
		MinDistance: DefaultMinDistance,
		trail:       Trail{Label: label, SizeX: sizeX, SizeZ: sizeZ},
	}
}

func (r *Recorder) Record(tracked, virtual geom.Vec2) {
	n := len(r.trail.Real)
	if n > 0 &&
		tracked.Sub(r.trail.Real[n-1]).Len() < r.MinDistance &&
		virtual.Sub(r.trail.Virtual[n-1]).Len() < r.MinDistance {
		return
	}
	r.trail.Real = append(r.trail.Real, tracked)
	r.trail.Virtual = append(r.trail.Virtual, virtual)
}

func (r *Recorder) Len() int { return len(r.trail.Real) }

// Trail returns a copy of everything recorded so far.
func (r *Recorder) Trail() Trail {
	t := r.trail
	t.Real = append([]geom.Vec2(nil), r.trail.Real...)
	t.Virtual = append([]geom.Vec2(nil), r.trail.Virtual...)
	return t
}

func xys(points []geom.Vec2) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i].X = p.X()
		pts[i].Y = p.Y()
	}
	return pts
}

func boundary(sizeX, sizeZ float64) plotter.XYs {
	hx, hz := 0.5*sizeX, 0.5*sizeZ
	return plotter.XYs{{X: -hx, Y: -hz}, {X: hx, Y: -hz}, {X: hx, Y: hz}, {X: -hx, Y: hz}, {X: -hx, Y: -hz}}
}

// Plot builds the trail image: tracking area outline, real trail and
// virtual trail.
func (t Trail) Plot() (*plot.Plot, error) {
	if len(t.Real) == 0 {
		return nil, ErrEmpty
	}

	p := plot.New()
	p.Title.Text = t.Label
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "z (m)"
	p.Add(plotter.NewGrid())

	lines := []struct {
		name  string
		pts   plotter.XYs
		color color.Color
		width float64
	}{
		{"tracking area", boundary(t.SizeX, t.SizeZ), color.Gray{Y: 96}, 2},
		{"virtual", xys(t.Virtual), color.RGBA{R: 220, G: 60, B: 60, A: 255}, 1},
		{"real", xys(t.Real), color.RGBA{R: 40, G: 90, B: 220, A: 255}, 1.5},
	}
	for _, l := range lines {
		line, err := plotter.NewLine(l.pts)
		if err != nil {
			return nil, err
		}
		line.Color = l.color
		line.Width = vg.Points(l.width)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePNG renders t into path, creating parent directories.
func SavePNG(t Trail, path string) error {
	p, err := t.Plot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
