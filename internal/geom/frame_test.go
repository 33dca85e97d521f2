package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-12

func TestVec3_Basics(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	assert.Equal(t, V3(5, 7, 9), a.Add(b))
	assert.Equal(t, V3(-3, -3, -3), a.Sub(b))
	assert.Equal(t, 32.0, a.Dot(b))
	assert.Equal(t, V3(-3, 6, -3), a.Cross(b))
	assert.InDelta(t, math.Sqrt(14), a.Norm(), eps)
	assert.InDelta(t, 1.0, a.Normalized().Norm(), eps)
	assert.Equal(t, Vec3{}, Vec3{}.Normalized())
}

func TestNewFrame_Orthonormal(t *testing.T) {
	f := NewFrame(V3(1, -2, 0.5), V3(0.3, -0.4, 0.866))

	assert.InDelta(t, 1.0, f.Tangent.Norm(), eps)
	assert.InDelta(t, 1.0, f.Bitangent.Norm(), eps)
	assert.InDelta(t, 1.0, f.Normal.Norm(), eps)
	assert.InDelta(t, 0.0, f.Tangent.Dot(f.Normal), eps)
	assert.InDelta(t, 0.0, f.Tangent.Dot(f.Bitangent), eps)
	assert.InDelta(t, 0.0, f.Bitangent.Dot(f.Normal), eps)
}

func TestNewFrame_ParallelFallback(t *testing.T) {
	// Normal along +X is parallel to the candidate tangent; the fallback
	// candidate is world +Y.
	f := NewFrame(Vec3{}, V3(1, 0, 0))

	assert.InDelta(t, 1.0, f.Tangent.Dot(V3(0, 1, 0)), eps)
	assert.InDelta(t, 1.0, f.Bitangent.Dot(V3(0, 0, 1)), eps)
}

func TestFrame_RoundTrip(t *testing.T) {
	f := NewFrame(V3(3, 1, -7), V3(0.1, 0.9, 0.2))
	points := []Vec3{
		V3(0, 0, 0),
		V3(3, 1, -7),
		V3(-2.5, 4.25, 11),
	}
	for _, p := range points {
		back := f.ToWorld(f.ToLocal(p))
		assert.InDelta(t, p.X, back.X, 1e-10)
		assert.InDelta(t, p.Y, back.Y, 1e-10)
		assert.InDelta(t, p.Z, back.Z, 1e-10)
	}
}

func TestFrame_SeedAtOrigin(t *testing.T) {
	origin := V3(5, 5, 5)
	f := NewFrame(origin, V3(0, 0, 1))
	l := f.ToLocal(origin)
	assert.Equal(t, Vec3{}, l)

	// For an upward normal the local z is the height above the seed plane.
	h := f.ToLocal(V3(6, 7, 5.25))
	assert.InDelta(t, 0.25, h.Z, eps)
}
