package codec

import (
	"github.com/mesh-codec/internal/connectivity"
	"github.com/mesh-codec/internal/dict"
	"github.com/mesh-codec/internal/geom"
	"github.com/mesh-codec/internal/mesh"
	apperrors "github.com/mesh-codec/pkg/errors"
)

// gridKey packs a (patch, grid) pair into a non-negative map key. The seed
// sentinel -1 is encoded as N*N to keep keys dense and non-negative.
func gridKey(cells, patch, grid int) int {
	enc := grid
	if grid < 0 {
		enc = cells
	}
	return patch*(cells+1) + enc
}

// Reconstruct inverts the pipeline: it restores the height matrix from
// dictionary and codes, lifts each patch's masked cells back to 3D in the
// seed frame, and resolves the recorded faces against the restored
// vertices. Crack-adjacent vertices are not welded; seams remain visible.
func Reconstruct(enc *Encoded) (*mesh.Mesh, *DebugInfo, error) {
	cells := enc.NBins * enc.NBins
	heights := dict.Decode(enc.Dictionary, enc.Code)

	out := &mesh.Mesh{}
	gridToVertex := make(map[int]int)
	debug := &DebugInfo{
		FeatureLen: cells,
		Atoms:      enc.Atoms,
		PatchSizes: make([]int, enc.PatchCount),
		PatchFaces: make([][]int, enc.PatchCount),
	}

	// Pending faces in read order: tri-cracks first, then per patch the
	// intra faces followed by the bi-cracks.
	var pending [][3]connectivity.PatchGrid
	for _, tc := range enc.TriCracks {
		pending = append(pending, [3]connectivity.PatchGrid(tc))
	}

	for p, patch := range enc.Patches {
		// The seed is restored directly from its stored position and owns
		// no cell.
		gridToVertex[gridKey(cells, p, -1)] = len(out.Positions)
		out.Positions = append(out.Positions, patch.SeedPos)
		debug.VertexToPatch = append(debug.VertexToPatch, p)
		debug.PatchSizes[p] = 1

		frame := geom.NewFrame(patch.SeedPos, patch.SeedNormal)
		base := -patch.Span * float64(enc.NBins) / 2

		for _, g := range patch.Mask {
			gx := g % enc.NBins
			gy := g / enc.NBins
			local := geom.V3(
				base+(float64(gx)+0.5)*patch.Span+patch.Bias.X,
				base+(float64(gy)+0.5)*patch.Span+patch.Bias.Y,
				heights.At(g, p),
			)
			gridToVertex[gridKey(cells, p, g)] = len(out.Positions)
			out.Positions = append(out.Positions, frame.ToWorld(local))
			debug.VertexToPatch = append(debug.VertexToPatch, p)
			debug.PatchSizes[p]++
		}

		for _, f := range patch.Faces {
			pending = append(pending, [3]connectivity.PatchGrid{
				{Patch: p, Grid: f[0]},
				{Patch: p, Grid: f[1]},
				{Patch: p, Grid: f[2]},
			})
		}
		for _, bc := range patch.BiCracks {
			pending = append(pending, [3]connectivity.PatchGrid{
				{Patch: p, Grid: bc.G0},
				{Patch: p, Grid: bc.G1},
				bc.Other,
			})
		}
	}

	for _, face := range pending {
		var resolved [3]int
		for k, pg := range face {
			v, ok := gridToVertex[gridKey(cells, pg.Patch, pg.Grid)]
			if !ok {
				return nil, nil, apperrors.Newf(apperrors.CodeIOFailure,
					"face references unknown patch/grid %d/%d", pg.Patch, pg.Grid)
			}
			resolved[k] = v
		}
		out.Faces = append(out.Faces, resolved)

		if face[0].Patch == face[1].Patch && face[0].Patch == face[2].Patch {
			p := face[0].Patch
			debug.PatchFaces[p] = append(debug.PatchFaces[p], len(out.Faces)-1)
		}
	}

	debug.FaceColors = mesh.FaceColors(out.Faces, debug.VertexToPatch, enc.PatchCount)
	return out, debug, nil
}
