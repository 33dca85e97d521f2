package objfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mesh-codec/pkg/errors"
)

const triangleObj = `# simple triangle
v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

func TestLoad_TriangleWithNormals(t *testing.T) {
	m, err := Load(strings.NewReader(triangleObj))
	require.NoError(t, err)

	require.Equal(t, 3, m.VertexCount())
	require.Equal(t, 1, m.FaceCount())
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
	for _, n := range m.Normals {
		assert.InDelta(t, 1.0, n.Z, 1e-12)
	}
	require.NoError(t, m.Validate())
}

func TestLoad_QuadFanTriangulation(t *testing.T) {
	obj := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	m, err := Load(strings.NewReader(obj))
	require.NoError(t, err)

	require.Equal(t, 2, m.FaceCount())
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
	assert.Equal(t, [3]int{0, 2, 3}, m.Faces[1])
}

func TestLoad_FaceNormalFallback(t *testing.T) {
	obj := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`
	m, err := Load(strings.NewReader(obj))
	require.NoError(t, err)

	// Counter-clockwise triangle in the xy plane: accumulated +z normal.
	for _, n := range m.Normals {
		assert.InDelta(t, 1.0, n.Z, 1e-12)
		assert.InDelta(t, 1.0, n.Norm(), 1e-12)
	}
}

func TestLoad_NegativeIndices(t *testing.T) {
	obj := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	m, err := Load(strings.NewReader(obj))
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		obj  string
	}{
		{"empty", ""},
		{"bad float", "v 0 zero 0\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"isolated vertex no normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 5 5 5\nf 1 2 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.obj))
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeInputIllFormed, apperrors.GetErrorCode(err))
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	m, err := Load(strings.NewReader(triangleObj))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, 4))

	back, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, m.VertexCount(), back.VertexCount())
	require.Equal(t, m.FaceCount(), back.FaceCount())
	for i := range m.Positions {
		assert.InDelta(t, m.Positions[i].X, back.Positions[i].X, 1e-4)
		assert.InDelta(t, m.Positions[i].Y, back.Positions[i].Y, 1e-4)
		assert.InDelta(t, m.Positions[i].Z, back.Positions[i].Z, 1e-4)
	}
}

func TestWrite_NoNormals(t *testing.T) {
	m, err := Load(strings.NewReader(triangleObj))
	require.NoError(t, err)
	m.Normals = nil

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, m, 2))
	assert.NotContains(t, buf.String(), "vn ")
	assert.Contains(t, buf.String(), "f 1 2 3")
}
