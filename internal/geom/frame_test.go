package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got Vec2) {
	t.Helper()
	assert.InDelta(t, want.X(), got.X(), 1e-9, "x")
	assert.InDelta(t, want.Y(), got.Y(), 1e-9, "z")
}

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Position: V(2, -1), Yaw: 37}
	for _, p := range []Vec2{V(0, 0), V(1, 2), V(-3, 0.5)} {
		assertVec(t, p, f.ToLocal(f.ToWorld(p)))
		assertVec(t, p, f.DirToLocal(f.DirToWorld(p)))
	}
}

func TestFrameRotateAroundKeepsPivot(t *testing.T) {
	f := Identity()
	local := V(1, 1)
	pivot := f.ToWorld(local)

	f.RotateAround(pivot, 30)

	assertVec(t, pivot, f.ToWorld(local))
	assert.InDelta(t, 30, f.Yaw, 1e-9)
	assertVec(t, Rotate(Forward, 30), f.DirToWorld(Forward))
}

func TestFrameTranslate(t *testing.T) {
	f := Frame{Yaw: 90}
	f.Translate(V(1, 0))
	assertVec(t, V(1, 0), f.ToWorld(V(0, 0)))
	assertVec(t, V(2, 0), f.ToWorld(V(0, 1)))
}
