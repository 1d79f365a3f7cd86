// Package storage persists batch results: one directory per run plus an
// optional SQLite results table.
package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/trail"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	summaryFile  = "summary.csv"
	samplesDir   = "samples"
	trailsDir    = "trails"
	separator    = ';'
)

var ErrSeriesNotFound = errors.New("storage: series not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Experiment  string    `json:"experiment"`
	Redirector  string    `json:"redirector"`
	Resetter    string    `json:"resetter"`
	Paths       []string  `json:"paths"`
	Experiments int       `json:"experiments"`
	Averaged    bool      `json:"averaged"`
	// Config names the snapshot of the batch configuration in the run
	// directory.
	Config string `json:"config"`
}

// ExperimentKey joins descriptor values with "+". It names the sample and
// trail entries of one experiment.
func ExperimentKey(d []stats.Field) string {
	parts := make([]string, len(d))
	for i, f := range d {
		parts[i] = strings.ReplaceAll(f.Value, string(filepath.Separator), "_")
	}
	return strings.Join(parts, "+")
}

// Save writes a batch to a fresh run directory and returns its id.
func (s *Store) Save(cfg *config.Config, report *experiment.Report) (string, error) {
	runID := uuid.New().String()
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Seed:        report.Seed,
		Experiment:  cfg.Experiment,
		Redirector:  cfg.Redirector,
		Resetter:    cfg.Resetter,
		Paths:       cfg.Paths,
		Experiments: len(report.Results),
		Averaged:    report.Merged != nil,
		Config:      configFile,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSummary(filepath.Join(runDir, summaryFile), report.Summary()); err != nil {
		return "", err
	}

	for i, r := range report.Results {
		key := ExperimentKey(r.Descriptor)
		if samples := report.Samples[i]; samples != nil {
			if err := writeSamples(filepath.Join(runDir, samplesDir, key), samples); err != nil {
				return "", err
			}
		}
		if t := report.Trails[i]; t != nil && len(t.Real) > 0 {
			if err := trail.SavePNG(*t, filepath.Join(runDir, trailsDir, key+".png")); err != nil {
				return "", err
			}
		}
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummary(path string, results []stats.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = separator
	if len(results) > 0 {
		if err := w.Write(results[0].Header()); err != nil {
			return err
		}
	}
	for _, r := range results {
		if err := w.Write(r.Row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSamples(dir string, samples *stats.Samples) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for name, series := range samples.Scalars {
		lines := make([]string, len(series))
		for i, v := range series {
			lines[i] = formatFloat(v)
		}
		if err := writeLines(filepath.Join(dir, name+".csv"), lines); err != nil {
			return err
		}
	}
	for name, series := range samples.Vectors {
		lines := make([]string, len(series))
		for i, v := range series {
			lines[i] = formatFloat(v.X()) + string(separator) + formatFloat(v.Y())
		}
		if err := writeLines(filepath.Join(dir, name+".csv"), lines); err != nil {
			return err
		}
	}
	return nil
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads the configuration snapshot of a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.Dir(runID), configFile))
}

// LoadSummary returns the header and rows of summary.csv.
func (s *Store) LoadSummary(runID string) ([]string, [][]string, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), summaryFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = separator
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return []string{}, [][]string{}, nil
	}
	return records[0], records[1:], nil
}

// Experiments lists the experiment keys that have sampled series.
func (s *Store) Experiments(runID string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir(runID), samplesDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Series is one sampled series read back from disk. Exactly one of Values
// and Points is set.
type Series struct {
	Values []float64
	Points []geom.Vec2
}

func (s *Store) LoadSeries(runID, experimentKey, series string) (*Series, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), samplesDir, experimentKey, series+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSeriesNotFound, experimentKey, series)
		}
		return nil, err
	}

	out := &Series{}
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		if x, z, ok := strings.Cut(line, string(separator)); ok {
			px, err1 := strconv.ParseFloat(x, 64)
			pz, err2 := strconv.ParseFloat(z, 64)
			if err := errors.Join(err1, err2); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			out.Points = append(out.Points, geom.V(px, pz))
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out.Values = append(out.Values, v)
	}
	return out, nil
}
