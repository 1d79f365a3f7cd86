package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/san-kum/rdwsim/internal/stats"
	"github.com/san-kum/rdwsim/internal/trail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(trial string, resets float64) stats.Result {
	return stats.Result{
		Descriptor: []stats.Field{
			{Key: "redirector", Value: "s2c"},
			{Key: "path", Value: "office"},
			{Key: "trial", Value: trial},
		},
		Metrics: map[string]stats.Value{
			stats.KeyResetCount:          stats.ScalarValue(resets),
			stats.KeyRealPositionAverage: stats.VectorValue(geom.V(0.5, -1)),
		},
	}
}

func sampleReport() *experiment.Report {
	samples := &stats.Samples{
		Scalars: map[string][]float64{stats.SeriesGR: {0.1, -0.2, 0.3}},
		Vectors: map[string][]geom.Vec2{stats.SeriesUserRealPositions: {geom.V(0, 0), geom.V(1.5, -2)}},
	}
	tr := &trail.Trail{Label: "t", SizeX: 10, SizeZ: 10, Real: []geom.Vec2{geom.V(0, 0), geom.V(1, 1)}, Virtual: []geom.Vec2{geom.V(0, 0), geom.V(1, 2)}}
	return &experiment.Report{
		Seed:    3041,
		Results: []stats.Result{result("1", 2), result("2", 4)},
		Samples: []*stats.Samples{samples, nil},
		Trails:  []*trail.Trail{tr, nil},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	cfg := config.DefaultConfig()

	runID, err := st.Save(cfg, sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, int64(3041), meta.Seed)
	assert.Equal(t, "s2c", meta.Redirector)
	assert.Equal(t, 2, meta.Experiments)
	assert.False(t, meta.Averaged)

	loaded, err := st.LoadConfig(runID)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config snapshot mismatch (-want +got):\n%s", diff)
	}

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)

	_, err = os.Stat(filepath.Join(st.Dir(runID), trailsDir, "s2c+office+1.png"))
	assert.NoError(t, err)
}

func TestSummaryCSV(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleReport())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(st.Dir(runID), summaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "redirector;path;trial;reset_count;")

	header, rows, err := st.LoadSummary(runID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, result("1", 0).Header(), header)
	assert.Equal(t, "4", rows[1][3])

	col := map[string]int{}
	for i, h := range header {
		col[h] = i
	}
	assert.Equal(t, "(0.5, -1)", rows[0][col[stats.KeyRealPositionAverage]])
	assert.Equal(t, "N/A", rows[0][col[stats.KeyMinGT]])
}

func TestSummaryUsesMergedRows(t *testing.T) {
	st := New(t.TempDir())
	report := sampleReport()
	report.Merged = experiment.MergeTrials(report.Results, 2)

	runID, err := st.Save(config.DefaultConfig(), report)
	require.NoError(t, err)

	_, rows, err := st.LoadSummary(runID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0][3])
}

func TestLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleReport())
	require.NoError(t, err)

	keys, err := st.Experiments(runID)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2c+office+1"}, keys)

	gr, err := st.LoadSeries(runID, keys[0], stats.SeriesGR)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, -0.2, 0.3}, gr.Values)
	assert.Nil(t, gr.Points)

	pos, err := st.LoadSeries(runID, keys[0], stats.SeriesUserRealPositions)
	require.NoError(t, err)
	assert.Equal(t, []geom.Vec2{geom.V(0, 0), geom.V(1.5, -2)}, pos.Points)

	_, err = st.LoadSeries(runID, keys[0], "missing")
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExperimentKey(t *testing.T) {
	d := []stats.Field{{Key: "a", Value: "s2c"}, {Key: "b", Value: "x/y"}}
	assert.Equal(t, "s2c+x_y", ExperimentKey(d))
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), sampleReport())
	require.NoError(t, err)

	data, err := st.Export(runID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, data))

	var decoded struct {
		Run         RunMetadata      `json:"run"`
		Experiments []map[string]any `json:"experiments"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, runID, decoded.Run.ID)
	require.Len(t, decoded.Experiments, 2)
	assert.Equal(t, 2.0, decoded.Experiments[0][stats.KeyResetCount])
	assert.Equal(t, "office", decoded.Experiments[0]["path"])
	assert.Nil(t, decoded.Experiments[0][stats.KeyMaxGC])

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportJSONFile(path, data))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestResultsDB(t *testing.T) {
	ctx := context.Background()
	db, err := OpenResultsDB(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer db.Close()

	results := sampleReport().Results
	require.NoError(t, db.Insert(ctx, "run-a", results))
	require.NoError(t, db.Insert(ctx, "run-b", results[:1]))

	rows, err := db.Query(ctx, "run-a")
	require.NoError(t, err)
	// the real position average splits into .x and .z
	perExperiment := len(stats.SummaryKeys) + 1
	require.Len(t, rows, 2*perExperiment)

	byKey := map[string]Row{}
	for _, r := range rows {
		if r.Index == 1 {
			byKey[r.Key] = r
		}
	}
	assert.Equal(t, "s2c+office+2", byKey[stats.KeyResetCount].Experiment)
	assert.Equal(t, 4.0, byKey[stats.KeyResetCount].Value.Float64)
	assert.Equal(t, -1.0, byKey[stats.KeyRealPositionAverage+".z"].Value.Float64)
	assert.False(t, byKey[stats.KeyMaxGT].Value.Valid)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-a", "run-b"}, runs)
}
