// Package testutil provides mesh fixtures shared by tests.
package testutil

import (
	"github.com/mesh-codec/internal/geom"
	"github.com/mesh-codec/internal/mesh"
)

// UnitTriangle returns a flat unit triangle with +z normals.
func UnitTriangle() *mesh.Mesh {
	up := geom.V3(0, 0, 1)
	return &mesh.Mesh{
		Positions: []geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0)},
		Normals:   []geom.Vec3{up, up, up},
		Faces:     [][3]int{{0, 1, 2}},
	}
}

// CoplanarQuad returns two coplanar triangles sharing an edge.
func CoplanarQuad() *mesh.Mesh {
	up := geom.V3(0, 0, 1)
	return &mesh.Mesh{
		Positions: []geom.Vec3{
			geom.V3(0, 0, 0), geom.V3(1, 0, 0), geom.V3(0, 1, 0), geom.V3(1, 1, 0),
		},
		Normals: []geom.Vec3{up, up, up, up},
		Faces:   [][3]int{{0, 1, 2}, {1, 3, 2}},
	}
}

// BumpyGrid returns a (side+1)^2-vertex height-field grid over [0,1]^2
// with a parabolic bump, +z normals and 2*side^2 triangles. It exercises
// multi-patch segmentation with nonzero heights.
func BumpyGrid(side int) *mesh.Mesh {
	m := &mesh.Mesh{}
	up := geom.V3(0, 0, 1)
	n := side + 1
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := float64(i) / float64(side)
			y := float64(j) / float64(side)
			z := 0.25 * (x*(1-x) + y*(1-y))
			m.Positions = append(m.Positions, geom.V3(x, y, z))
			m.Normals = append(m.Normals, up)
		}
	}
	at := func(i, j int) int { return j*n + i }
	for j := 0; j < side; j++ {
		for i := 0; i < side; i++ {
			m.Faces = append(m.Faces,
				[3]int{at(i, j), at(i+1, j), at(i, j+1)},
				[3]int{at(i+1, j), at(i+1, j+1), at(i, j+1)},
			)
		}
	}
	return m
}
