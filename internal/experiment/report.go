package experiment

import (
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/trail"
)

// Report is the outcome of a batch, in setup order.
type Report struct {
	Seed    int64
	Results []stats.Result
	// Merged holds one averaged row per configuration when trial averaging
	// is on.
	Merged []stats.Result
	// Samples and Trails are parallel to Results; entries are nil when the
	// batch did not ask for them.
	Samples []*stats.Samples
	Trails  []*trail.Trail
}

func newReport(plan *Plan, outcomes []Outcome, average bool) *Report {
	r := &Report{
		Seed:    plan.Seed,
		Results: make([]stats.Result, len(outcomes)),
		Samples: make([]*stats.Samples, len(outcomes)),
		Trails:  make([]*trail.Trail, len(outcomes)),
	}
	for i, o := range outcomes {
		r.Results[i] = o.Result
		r.Samples[i] = o.Samples
		r.Trails[i] = o.Trail
	}
	if average {
		r.Merged = mergeGroups(plan.Setups, r.Results)
	}
	return r
}

// Summary returns the merged rows when present, else the raw rows.
func (r *Report) Summary() []stats.Result {
	if r.Merged != nil {
		return r.Merged
	}
	return r.Results
}

// MergeTrials averages every metric over each consecutive group of trials
// results, keeping the group's first descriptor.
func MergeTrials(results []stats.Result, trials int) []stats.Result {
	return stats.Merge(results, trials)
}

// mergeGroups merges per configuration group, so paths with different
// trial counts can share a batch.
func mergeGroups(setups []Setup, results []stats.Result) []stats.Result {
	var merged []stats.Result
	for start := 0; start < len(results); {
		end := start + 1
		for end < len(results) && setups[end].Group == setups[start].Group {
			end++
		}
		merged = append(merged, MergeTrials(results[start:end], end-start)...)
		start = end
	}
	return merged
}
