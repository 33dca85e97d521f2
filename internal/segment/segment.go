// Package segment grows near-planar patches over the vertex adjacency
// graph by curvature-prioritized seeded region growing.
package segment

import (
	"math"
	"sort"

	"github.com/mesh-codec/internal/curvature"
	"github.com/mesh-codec/internal/geom"
	"github.com/mesh-codec/pkg/collections"
)

// Options control patch growth.
type Options struct {
	// SizeLimit caps patch membership, seed included.
	SizeLimit int
	// NormalToleranceDeg is the normal-cone half angle in degrees; a
	// neighbor w joins only when n_seed . n_w > cos(tolerance).
	NormalToleranceDeg float64
}

// Result holds the patch partition.
type Result struct {
	// Patches lists member vertex ids per patch, seed first.
	Patches [][]int
	// VertexToPatch maps every vertex to its owning patch.
	VertexToPatch []int
}

// PatchCount returns the number of patches.
func (r *Result) PatchCount() int {
	return len(r.Patches)
}

// Sizes returns the member count per patch.
func (r *Result) Sizes() []int {
	sizes := make([]int, len(r.Patches))
	for i, p := range r.Patches {
		sizes[i] = len(p)
	}
	return sizes
}

// Segment partitions all vertices into patches. Vertices are ranked by
// |kappa| descending (ties by index, keeping the ranking stable); the
// highest-ranked uncovered vertex seeds each new patch, which floods
// outward breadth-first until the normal cone or the size cap stops it.
// Every iteration covers at least one vertex, so termination is
// unconditional; isolated vertices become singleton patches.
func Segment(adj *curvature.Adjacency, normals []geom.Vec3, kappa []float64, opts Options) *Result {
	n := adj.VertexCount()

	rank := make([]int, n)
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool {
		return math.Abs(kappa[rank[a]]) > math.Abs(kappa[rank[b]])
	})

	cosTolerance := math.Cos(opts.NormalToleranceDeg * math.Pi / 180)

	res := &Result{
		VertexToPatch: make([]int, n),
	}
	for i := range res.VertexToPatch {
		res.VertexToPatch[i] = -1
	}

	// Covered vertices can be re-reached by later floods but cannot seed.
	covered := collections.NewBitset(n)
	next := 0

	for {
		for next < n && covered.Test(rank[next]) {
			next++
		}
		if next == n {
			break
		}
		seed := rank[next]

		patchID := len(res.Patches)
		members := []int{seed}
		res.VertexToPatch[seed] = patchID
		covered.Set(seed)

		queue := []int{seed}
		// Apart from a limit of one, which the seed alone fills, the fullness
		// check fires inside the neighbor scan, after a member is admitted.
		full := len(members) >= opts.SizeLimit

		for len(queue) > 0 && !full {
			v := queue[0]
			queue = queue[1:]
			for _, e := range adj.Neighbors(v) {
				w := e.To
				if covered.Test(w) {
					continue
				}
				if normals[seed].Dot(normals[w]) <= cosTolerance {
					continue
				}
				queue = append(queue, w)
				members = append(members, w)
				res.VertexToPatch[w] = patchID
				covered.Set(w)

				if len(members) >= opts.SizeLimit {
					full = true
					break
				}
			}
		}

		res.Patches = append(res.Patches, members)
	}

	return res
}
