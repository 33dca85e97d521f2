// Package mesh defines the triangle-mesh bundle shared by the loader, the
// codec and the debug channels.
package mesh

import (
	"github.com/mesh-codec/internal/geom"
	apperrors "github.com/mesh-codec/pkg/errors"
)

// Mesh is the immutable input bundle: positions, per-vertex unit normals
// and triangular faces. The codec borrows it read-only for the duration of
// a compression call.
type Mesh struct {
	Positions []geom.Vec3
	Normals   []geom.Vec3
	Faces     [][3]int
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Validate checks the structural preconditions: a normal per vertex and
// in-range face indices. Triangulation is a loader precondition, so the
// face type already enforces arity.
func (m *Mesh) Validate() error {
	if len(m.Positions) == 0 {
		return apperrors.New(apperrors.CodeInputIllFormed, "mesh has no vertices")
	}
	if len(m.Normals) != len(m.Positions) {
		return apperrors.Newf(apperrors.CodeInputIllFormed,
			"vertex/normal count mismatch: %d vertices, %d normals", len(m.Positions), len(m.Normals))
	}
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Positions) {
				return apperrors.Newf(apperrors.CodeInputIllFormed,
					"face %d references vertex %d, mesh has %d vertices", i, v, len(m.Positions))
			}
		}
	}
	return nil
}

// NormalizeNormals renormalizes all normals in place. Loaders are expected
// to deliver unit normals already; this is the defensive path the input
// contract permits.
func (m *Mesh) NormalizeNormals() {
	for i, n := range m.Normals {
		m.Normals[i] = n.Normalized()
	}
}
