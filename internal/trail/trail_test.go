package trail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rdwsim/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderSpacing(t *testing.T) {
	r := NewRecorder("s2c", 10, 10)

	r.Record(geom.V(0, 0), geom.V(0, 0))
	r.Record(geom.V(0, 0.05), geom.V(0, 0.05))
	r.Record(geom.V(0, 0.1), geom.V(0, 0.1))
	r.Record(geom.V(0, 0.15), geom.V(0, 0.3))

	got := r.Trail()
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []geom.Vec2{geom.V(0, 0), geom.V(0, 0.1), geom.V(0, 0.15)}, got.Real)
	assert.Equal(t, geom.V(0, 0.3), got.Virtual[2])
}

func TestRecorderFirstPointAlwaysKept(t *testing.T) {
	r := NewRecorder("x", 4, 4)
	r.MinDistance = 100

	r.Record(geom.V(1, 1), geom.V(2, 2))
	r.Record(geom.V(3, 1), geom.V(2, 2))

	assert.Equal(t, 1, r.Len())
}

func TestTrailIsCopy(t *testing.T) {
	r := NewRecorder("x", 4, 4)
	r.Record(geom.V(1, 1), geom.V(1, 1))

	tr := r.Trail()
	tr.Real[0] = geom.V(9, 9)

	assert.Equal(t, geom.V(1, 1), r.Trail().Real[0])
}

func TestSavePNG(t *testing.T) {
	r := NewRecorder("office trial 1", 10, 10)
	for i := 0; i < 20; i++ {
		r.Record(geom.V(float64(i)*0.2, 0), geom.V(float64(i)*0.2, float64(i)*0.1))
	}

	path := filepath.Join(t.TempDir(), "trails", "office.png")
	require.NoError(t, SavePNG(r.Trail(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSavePNGEmpty(t *testing.T) {
	err := SavePNG(Trail{Label: "empty"}, filepath.Join(t.TempDir(), "e.png"))
	assert.ErrorIs(t, err, ErrEmpty)
}
