// Package connectivity classifies original faces by the patches their
// vertices span, so mesh connectivity survives the codec.
package connectivity

import "sort"

// PatchGrid addresses one reconstructed vertex: a patch id and a cell id.
// Seeds carry the -1 sentinel cell and sort like any other id.
type PatchGrid struct {
	Patch int
	Grid  int
}

// Less orders PatchGrid pairs by patch, then grid.
func (p PatchGrid) Less(o PatchGrid) bool {
	if p.Patch != o.Patch {
		return p.Patch < o.Patch
	}
	return p.Grid < o.Grid
}

// BiCrack is a face with exactly two vertices in one patch: the shared
// patch's two cells in ascending order plus the remaining vertex.
type BiCrack struct {
	G0, G1 int
	Other  PatchGrid
}

// TriCrack is a face spanning three distinct patches, in canonical sorted
// order.
type TriCrack [3]PatchGrid

// Result holds the face classification. Per-patch and global sets are
// deduplicated and emitted in sorted order; the serializer depends on
// this for byte-identical output.
type Result struct {
	// PatchFaces lists intra-patch faces per patch as grid triples in
	// ascending order; same-cell degeneracies are dropped.
	PatchFaces [][][3]int
	// BiCracks lists bi-patch crack faces per shared patch.
	BiCracks [][]BiCrack
	// TriCracks lists faces spanning three distinct patches.
	TriCracks []TriCrack
	// PatchOriginFaces records original face indices per patch (debug
	// channel; includes dropped same-cell degeneracies).
	PatchOriginFaces [][]int
}

// Record classifies every face. The classification partitions the face
// multiset: intra-patch, bi-crack or tri-crack.
func Record(faces [][3]int, vertexToPatch, vertexToGrid []int, patchCount int) *Result {
	res := &Result{
		PatchFaces:       make([][][3]int, patchCount),
		BiCracks:         make([][]BiCrack, patchCount),
		PatchOriginFaces: make([][]int, patchCount),
	}

	for fi, face := range faces {
		pg := [3]PatchGrid{
			{vertexToPatch[face[0]], vertexToGrid[face[0]]},
			{vertexToPatch[face[1]], vertexToGrid[face[1]]},
			{vertexToPatch[face[2]], vertexToGrid[face[2]]},
		}
		sortPatchGrid(&pg)

		p0, p1, p2 := pg[0].Patch, pg[1].Patch, pg[2].Patch
		switch {
		case p0 == p1 && p0 == p2:
			res.PatchOriginFaces[p0] = append(res.PatchOriginFaces[p0], fi)
			g0, g1, g2 := pg[0].Grid, pg[1].Grid, pg[2].Grid
			// A face collapsing into fewer than three cells cannot be
			// rebuilt as a triangle and is dropped.
			if g0 != g1 && g0 != g2 && g1 != g2 {
				res.PatchFaces[p0] = append(res.PatchFaces[p0], [3]int{g0, g1, g2})
			}
		case p0 != p1 && p0 != p2 && p1 != p2:
			res.TriCracks = append(res.TriCracks, TriCrack(pg))
		default:
			// Exactly two vertices share a patch; the sort already put the
			// shared pair's grids in ascending order.
			switch {
			case p0 == p1:
				res.BiCracks[p0] = append(res.BiCracks[p0], BiCrack{pg[0].Grid, pg[1].Grid, pg[2]})
			case p1 == p2:
				res.BiCracks[p1] = append(res.BiCracks[p1], BiCrack{pg[1].Grid, pg[2].Grid, pg[0]})
			default: // p0 == p2
				res.BiCracks[p0] = append(res.BiCracks[p0], BiCrack{pg[0].Grid, pg[2].Grid, pg[1]})
			}
		}
	}

	for p := 0; p < patchCount; p++ {
		res.PatchFaces[p] = dedupTriples(res.PatchFaces[p])
		res.BiCracks[p] = dedupBiCracks(res.BiCracks[p])
	}
	res.TriCracks = dedupTriCracks(res.TriCracks)

	return res
}

func sortPatchGrid(pg *[3]PatchGrid) {
	if pg[1].Less(pg[0]) {
		pg[0], pg[1] = pg[1], pg[0]
	}
	if pg[2].Less(pg[1]) {
		pg[1], pg[2] = pg[2], pg[1]
	}
	if pg[1].Less(pg[0]) {
		pg[0], pg[1] = pg[1], pg[0]
	}
}

func dedupTriples(in [][3]int) [][3]int {
	sort.Slice(in, func(a, b int) bool {
		if in[a][0] != in[b][0] {
			return in[a][0] < in[b][0]
		}
		if in[a][1] != in[b][1] {
			return in[a][1] < in[b][1]
		}
		return in[a][2] < in[b][2]
	})
	out := in[:0]
	for i, t := range in {
		if i == 0 || t != in[i-1] {
			out = append(out, t)
		}
	}
	return out
}

func dedupBiCracks(in []BiCrack) []BiCrack {
	sort.Slice(in, func(a, b int) bool {
		if in[a].G0 != in[b].G0 {
			return in[a].G0 < in[b].G0
		}
		if in[a].G1 != in[b].G1 {
			return in[a].G1 < in[b].G1
		}
		if in[a].Other.Patch != in[b].Other.Patch {
			return in[a].Other.Patch < in[b].Other.Patch
		}
		return in[a].Other.Grid < in[b].Other.Grid
	})
	out := in[:0]
	for i, c := range in {
		if i == 0 || c != in[i-1] {
			out = append(out, c)
		}
	}
	return out
}

func dedupTriCracks(in []TriCrack) []TriCrack {
	sort.Slice(in, func(a, b int) bool {
		for k := 0; k < 3; k++ {
			if in[a][k] != in[b][k] {
				return in[a][k].Less(in[b][k])
			}
		}
		return false
	})
	out := in[:0]
	for i, c := range in {
		if i == 0 || c != in[i-1] {
			out = append(out, c)
		}
	}
	return out
}
