package optim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rdwsim/internal/config"
	"github.com/san-kum/rdwsim/internal/experiment"
	"github.com/san-kum/rdwsim/internal/stats"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Paths = []string{"zigzag"}
	cfg.Trials = 1
	cfg.Run.MaxTicks = 400
	return cfg
}

func TestNewGridSearchValidates(t *testing.T) {
	_, err := NewGridSearch(nil, nil)
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"a"}, [][]float64{{1}, {2}})
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"a"}, [][]float64{{}})
	assert.Error(t, err)

	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2, 3}, {4, 5}})
	require.NoError(t, err)
	assert.Equal(t, 6, g.Size())
}

func TestSearchVisitsGridInOrder(t *testing.T) {
	g, err := NewGridSearch(
		[]string{"tracking_size", "reset_buffer"},
		[][]float64{{4, 20}, {0.5, 0.25}},
	)
	require.NoError(t, err)

	best, all, err := g.Search(context.Background(), baseConfig(), experiment.NewRegistry(), stats.KeyResetCount, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)

	assert.Equal(t, map[string]float64{"tracking_size": 4, "reset_buffer": 0.5}, all[0].Params)
	assert.Equal(t, map[string]float64{"tracking_size": 4, "reset_buffer": 0.25}, all[1].Params)
	assert.Equal(t, map[string]float64{"tracking_size": 20, "reset_buffer": 0.5}, all[2].Params)

	for _, e := range all {
		assert.GreaterOrEqual(t, e.Value, best.Value)
	}
	assert.Equal(t, 20.0, best.Params["tracking_size"], "a larger area never needs more resets")
}

func TestSearchMaximize(t *testing.T) {
	g, err := NewGridSearch([]string{"tracking_size"}, [][]float64{{4, 20}})
	require.NoError(t, err)
	g.Maximize = true

	best, _, err := g.Search(context.Background(), baseConfig(), experiment.NewRegistry(), stats.KeyResetCount, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, best.Params["tracking_size"])
}

func TestSearchMissingMetric(t *testing.T) {
	g, err := NewGridSearch([]string{"tracking_size"}, [][]float64{{8}})
	require.NoError(t, err)

	_, all, err := g.Search(context.Background(), baseConfig(), experiment.NewRegistry(), "no_such_metric", nil)
	assert.Error(t, err)
	require.Len(t, all, 1)
	assert.True(t, math.IsNaN(all[0].Value))
}

func TestSearchErrors(t *testing.T) {
	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{1}})
	require.NoError(t, err)
	_, _, err = g.Search(context.Background(), baseConfig(), experiment.NewRegistry(), stats.KeyResetCount, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)

	g, err = NewGridSearch([]string{"tracking_size"}, [][]float64{{8}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, baseConfig(), experiment.NewRegistry(), stats.KeyResetCount, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
