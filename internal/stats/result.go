package stats

import (
	"fmt"
	"strconv"

	"github.com/san-kum/rdwsim/internal/geom"
)

type ValueKind int

const (
	Missing ValueKind = iota
	Scalar
	Vector
)

// Value is one summary metric: a number, a ground-plane vector, or missing
// (reported as "N/A").
type Value struct {
	Kind   ValueKind
	Scalar float64
	Vec    geom.Vec2
}

func ScalarValue(v float64) Value { return Value{Kind: Scalar, Scalar: v} }

func VectorValue(v geom.Vec2) Value { return Value{Kind: Vector, Vec: v} }

func (v Value) String() string {
	switch v.Kind {
	case Scalar:
		return strconv.FormatFloat(v.Scalar, 'g', -1, 64)
	case Vector:
		return fmt.Sprintf("(%s, %s)",
			strconv.FormatFloat(v.Vec.X(), 'g', -1, 64),
			strconv.FormatFloat(v.Vec.Y(), 'g', -1, 64))
	default:
		return "N/A"
	}
}

// Field is one descriptor entry, e.g. redirector=s2c.
type Field struct {
	Key   string
	Value string
}

// Result is the summary row for one experiment.
type Result struct {
	Descriptor []Field
	Metrics    map[string]Value
}

// Get returns the named metric.
func (r Result) Get(name string) (Value, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Lookup returns the descriptor value for key.
func (r Result) Lookup(key string) (string, bool) {
	for _, f := range r.Descriptor {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Header lists descriptor keys followed by SummaryKeys.
func (r Result) Header() []string {
	h := make([]string, 0, len(r.Descriptor)+len(SummaryKeys))
	for _, f := range r.Descriptor {
		h = append(h, f.Key)
	}
	return append(h, SummaryKeys...)
}

// Row renders the result in Header order.
func (r Result) Row() []string {
	row := make([]string, 0, len(r.Descriptor)+len(SummaryKeys))
	for _, f := range r.Descriptor {
		row = append(row, f.Value)
	}
	for _, k := range SummaryKeys {
		row = append(row, r.Metrics[k].String())
	}
	return row
}

// Merge averages every metric over consecutive groups of trials results.
// Each group keeps the descriptor of its first member. Missing values are
// skipped; a metric missing from the whole group stays missing. A trailing
// short group is averaged over its own size.
func Merge(results []Result, trials int) []Result {
	if trials <= 1 {
		out := make([]Result, len(results))
		copy(out, results)
		return out
	}

	merged := make([]Result, 0, (len(results)+trials-1)/trials)
	for start := 0; start < len(results); start += trials {
		end := min(start+trials, len(results))
		merged = append(merged, mergeGroup(results[start:end]))
	}
	return merged
}

func mergeGroup(group []Result) Result {
	first := group[0]
	out := Result{
		Descriptor: append([]Field(nil), first.Descriptor...),
		Metrics:    make(map[string]Value, len(first.Metrics)),
	}

	for name, v0 := range first.Metrics {
		var (
			n      int
			sum    float64
			vecSum geom.Vec2
			kind   = v0.Kind
		)
		for _, r := range group {
			v, ok := r.Metrics[name]
			if !ok || v.Kind == Missing {
				continue
			}
			if kind == Missing {
				kind = v.Kind
			}
			if v.Kind != kind {
				continue
			}
			n++
			sum += v.Scalar
			vecSum = vecSum.Add(v.Vec)
		}

		switch {
		case n == 0:
			out.Metrics[name] = Value{}
		case kind == Vector:
			out.Metrics[name] = VectorValue(vecSum.Mul(1 / float64(n)))
		default:
			out.Metrics[name] = ScalarValue(sum / float64(n))
		}
	}
	return out
}
