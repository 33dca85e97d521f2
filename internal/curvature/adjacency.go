// Package curvature builds the edge-parameter adjacency and the per-vertex
// curvature proxy that drives patch seeding.
package curvature

import (
	"github.com/mesh-codec/internal/mesh"
	apperrors "github.com/mesh-codec/pkg/errors"
)

// EdgeRecord holds the parameters of one directed edge occurrence.
type EdgeRecord struct {
	// To is the neighbor vertex.
	To int
	// Length is the Euclidean edge length.
	Length float64
	// Curvature is the discrete normal-variation estimate along the edge:
	// (n_i - n_j) . (p_i - p_j) / |p_i - p_j|^2.
	Curvature float64
}

// Adjacency is a CSR-style per-vertex edge store. Records keep their
// first-insertion order as produced by face iteration, and an edge shared
// by two faces contributes one record per incident face; BFS visitation
// order during segmentation depends on both properties, so they are part
// of the determinism contract.
type Adjacency struct {
	offsets []int
	records []EdgeRecord
}

// Neighbors returns the edge records of vertex v in storage order. The
// returned slice aliases internal storage and must not be mutated.
func (a *Adjacency) Neighbors(v int) []EdgeRecord {
	return a.records[a.offsets[v]:a.offsets[v+1]]
}

// VertexCount returns the number of vertices covered by the adjacency.
func (a *Adjacency) VertexCount() int {
	return len(a.offsets) - 1
}

// EdgeRecordCount returns the total number of stored edge records.
func (a *Adjacency) EdgeRecordCount() int {
	return len(a.records)
}

// BuildAdjacency computes edge lengths and curvatures for every face edge,
// stored symmetrically for both endpoints. A zero-length edge would divide
// by zero in the curvature estimate and is rejected as degenerate.
func BuildAdjacency(m *mesh.Mesh) (*Adjacency, error) {
	n := m.VertexCount()
	perVertex := make([][]EdgeRecord, n)

	// Insertion order per face is fixed:
	// (v0,v1), (v0,v2), (v1,v0), (v1,v2), (v2,v0), (v2,v1).
	edgeOrder := [6][2]int{{0, 1}, {0, 2}, {1, 0}, {1, 2}, {2, 0}, {2, 1}}

	for fi, face := range m.Faces {
		var length, curv [3][3]float64
		pairs := [3][2]int{{0, 1}, {0, 2}, {1, 2}}
		for _, pr := range pairs {
			i, j := pr[0], pr[1]
			d := m.Positions[face[i]].Sub(m.Positions[face[j]])
			distSq := d.NormSq()
			if distSq == 0 {
				return nil, apperrors.Newf(apperrors.CodeDegenerateGeometry,
					"zero-length edge %d-%d in face %d", face[i], face[j], fi)
			}
			dn := m.Normals[face[i]].Sub(m.Normals[face[j]])
			length[i][j] = d.Norm()
			length[j][i] = length[i][j]
			curv[i][j] = dn.Dot(d) / distSq
			curv[j][i] = curv[i][j]
		}

		for _, e := range edgeOrder {
			from, to := face[e[0]], face[e[1]]
			perVertex[from] = append(perVertex[from], EdgeRecord{
				To:        to,
				Length:    length[e[0]][e[1]],
				Curvature: curv[e[0]][e[1]],
			})
		}
	}

	adj := &Adjacency{
		offsets: make([]int, n+1),
	}
	total := 0
	for i, recs := range perVertex {
		adj.offsets[i] = total
		total += len(recs)
	}
	adj.offsets[n] = total
	adj.records = make([]EdgeRecord, 0, total)
	for _, recs := range perVertex {
		adj.records = append(adj.records, recs...)
	}
	return adj, nil
}
