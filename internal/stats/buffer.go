package stats

import (
	"math"
	"sort"

	"github.com/san-kum/rdwsim/internal/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Buffer collects time-weighted values between two sampling instants.
type Buffer struct {
	values []float64
}

func (b *Buffer) Add(v float64) {
	b.values = append(b.values, v)
}

func (b *Buffer) Len() int {
	return len(b.values)
}

// Flush returns the arithmetic mean of the buffered values and empties the
// buffer. An empty buffer yields 0.
func (b *Buffer) Flush() float64 {
	n := len(b.values)
	if n == 0 {
		return 0
	}
	mean := floats.Sum(b.values) / float64(n)
	b.values = b.values[:0]
	return mean
}

// VecBuffer is the two-dimensional counterpart of [Buffer].
type VecBuffer struct {
	values []geom.Vec2
}

func (b *VecBuffer) Add(v geom.Vec2) {
	b.values = append(b.values, v)
}

func (b *VecBuffer) Len() int {
	return len(b.values)
}

func (b *VecBuffer) Flush() geom.Vec2 {
	n := len(b.values)
	if n == 0 {
		return geom.Vec2{}
	}
	var sum geom.Vec2
	for _, v := range b.values {
		sum = sum.Add(v)
	}
	b.values = b.values[:0]
	return sum.Mul(1 / float64(n))
}

// Median of xs: the middle element for odd counts, the mean of the two
// middle elements for even counts, and 0 for an empty slice.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	s := make([]float64, n)
	copy(s, xs)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Mean returns 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

func MeanAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	abs := make([]float64, len(xs))
	for i, x := range xs {
		abs[i] = math.Abs(x)
	}
	return stat.Mean(abs, nil)
}

func MeanVec(vs []geom.Vec2) geom.Vec2 {
	if len(vs) == 0 {
		return geom.Vec2{}
	}
	var sum geom.Vec2
	for _, v := range vs {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(vs)))
}

// Scale returns xs multiplied by k, or a zero-filled copy when k is not
// finite.
func Scale(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	if math.IsNaN(k) || math.IsInf(k, 0) {
		for i := range out {
			out[i] = 0
		}
		return out
	}
	floats.Scale(k, out)
	return out
}
