package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-codec/internal/geom"
	apperrors "github.com/mesh-codec/pkg/errors"
)

func triangle() *Mesh {
	return &Mesh{
		Positions: []geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		Normals:   []geom.Vec3{geom.V3(0, 0, 1), geom.V3(0, 0, 1), geom.V3(0, 0, 1)},
		Faces:     [][3]int{{0, 1, 2}},
	}
}

func TestMesh_Validate_OK(t *testing.T) {
	require.NoError(t, triangle().Validate())
}

func TestMesh_Validate_Empty(t *testing.T) {
	err := (&Mesh{}).Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInputIllFormed, apperrors.GetErrorCode(err))
}

func TestMesh_Validate_NormalMismatch(t *testing.T) {
	m := triangle()
	m.Normals = m.Normals[:2]
	err := m.Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInputIllFormed, apperrors.GetErrorCode(err))
}

func TestMesh_Validate_FaceOutOfRange(t *testing.T) {
	m := triangle()
	m.Faces = append(m.Faces, [3]int{0, 1, 3})
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face 1")
}

func TestMesh_NormalizeNormals(t *testing.T) {
	m := triangle()
	m.Normals[0] = geom.V3(0, 0, 5)
	m.NormalizeNormals()
	assert.InDelta(t, 1.0, m.Normals[0].Norm(), 1e-12)
}

func TestPatchColor_Ramp(t *testing.T) {
	assert.Equal(t, [3]float64{1, 0, 0}, PatchColor(0, 1))
	assert.Equal(t, [3]float64{1, 0, 0}, PatchColor(0, 5))
	// Midpoint of the ramp is pure green.
	assert.Equal(t, [3]float64{0, 1, 0}, PatchColor(2, 5))
	// End of the ramp is pure blue.
	assert.Equal(t, [3]float64{0, 0, 1}, PatchColor(4, 5))
}

func TestFaceColors_Shape(t *testing.T) {
	m := triangle()
	colors := FaceColors(m.Faces, []int{0, 0, 1}, 2)
	require.Len(t, colors, 9)
	assert.Equal(t, 1.0, colors[0]) // patch 0 of 2 is red
}
