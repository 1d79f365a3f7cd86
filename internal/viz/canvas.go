package viz

import (
	"math"
	"strings"

	"github.com/san-kum/rdwsim/internal/geom"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const emptyCell = 0x2800

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at sub-pixel (x, y). The canvas is Width*2 by
// Height*4 dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = emptyCell
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps ground-plane metres onto canvas dots with +z pointing up.
type Viewport struct {
	canvas     *Canvas
	cx, cz     float64
	scale      float64
	offX, offY float64
}

// Fit returns a viewport showing [minX,maxX] x [minZ,maxZ] with a margin,
// keeping the aspect ratio.
func Fit(c *Canvas, minX, maxX, minZ, maxZ float64) Viewport {
	const margin = 0.05
	w, h := float64(c.Width*2), float64(c.Height*4)
	spanX := math.Max(maxX-minX, 1e-6) * (1 + 2*margin)
	spanZ := math.Max(maxZ-minZ, 1e-6) * (1 + 2*margin)
	scale := math.Min(w/spanX, h/spanZ)

	cx, cz := 0.5*(minX+maxX), 0.5*(minZ+maxZ)
	return Viewport{
		canvas: c,
		cx:     cx,
		cz:     cz,
		scale:  scale,
		offX:   0.5 * w,
		offY:   0.5 * h,
	}
}

// Project returns the dot coordinates of a world point.
func (v Viewport) Project(p geom.Vec2) (int, int) {
	x := v.offX + (p.X()-v.cx)*v.scale
	y := v.offY - (p.Y()-v.cz)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

func (v Viewport) Point(p geom.Vec2) {
	x, y := v.Project(p)
	v.canvas.Set(x, y)
}

func (v Viewport) Line(a, b geom.Vec2) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	v.canvas.DrawLine(x0, y0, x1, y1)
}

// Polyline connects consecutive points; closed joins the last to the first.
func (v Viewport) Polyline(points []geom.Vec2, closed bool) {
	for i := 1; i < len(points); i++ {
		v.Line(points[i-1], points[i])
	}
	if closed && len(points) > 2 {
		v.Line(points[len(points)-1], points[0])
	}
}

// Marker draws a small arrow at p pointing along dir.
func (v Viewport) Marker(p, dir geom.Vec2, length float64) {
	tip := p.Add(geom.Normalize(dir).Mul(length))
	v.Line(p, tip)
	v.Line(tip, tip.Add(geom.Rotate(geom.Normalize(dir), 150).Mul(0.4*length)))
	v.Line(tip, tip.Add(geom.Rotate(geom.Normalize(dir), -150).Mul(0.4*length)))
}
