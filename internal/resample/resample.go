// Package resample reparameterizes each patch onto a fixed-size height
// grid in the seed's tangent frame.
package resample

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/mesh-codec/internal/geom"
	"github.com/mesh-codec/internal/mesh"
	apperrors "github.com/mesh-codec/pkg/errors"
	"github.com/mesh-codec/pkg/parallel"
)

// Patch holds the per-patch resampling products.
type Patch struct {
	// Seed is the seed vertex id; Members lists all member ids, seed first.
	Seed    int
	Members []int
	// Span is the side length of one grid cell in the tangent plane.
	Span float64
	// Bias is the 2D offset of the grid center from the seed (the extent
	// midpoint of the member projections).
	Bias geom.Vec2
	// Mask lists, in ascending order, the cells that received at least one
	// vertex. The seed itself is assigned no cell.
	Mask []int
}

// Result holds the full resampling output.
type Result struct {
	Patches []Patch
	// Heights is the (N*N, P) height matrix; column p is patch p's
	// per-cell mean heights, zero at unmasked cells.
	Heights *mat.Dense
	// VertexToGrid maps each vertex to its cell id; seeds keep -1.
	VertexToGrid []int
}

// patchSample is the per-patch intermediate produced by one worker.
type patchSample struct {
	span    float64
	bias    geom.Vec2
	mask    []int
	heights []float64
	// grids[i] is the cell of Members[i+1] (the seed has none).
	grids []int
}

// Resample projects every patch into its seed frame and bins the members
// onto an N x N grid. The per-patch loop is embarrassingly parallel; slots
// are indexed by patch id, so output ordering is deterministic regardless
// of scheduling.
func Resample(ctx context.Context, m *mesh.Mesh, patches [][]int, nBins int, pool parallel.PoolConfig) (*Result, error) {
	p := len(patches)
	cells := nBins * nBins

	samples, err := parallel.Map(ctx, pool, p, func(_ context.Context, patchID int) (patchSample, error) {
		return resamplePatch(m, patchID, patches[patchID], nBins)
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Patches:      make([]Patch, p),
		Heights:      mat.NewDense(cells, p, nil),
		VertexToGrid: make([]int, m.VertexCount()),
	}
	for i := range res.VertexToGrid {
		res.VertexToGrid[i] = -1
	}

	for patchID, s := range samples {
		res.Patches[patchID] = Patch{
			Seed:    patches[patchID][0],
			Members: patches[patchID],
			Span:    s.span,
			Bias:    s.bias,
			Mask:    s.mask,
		}
		for cell, h := range s.heights {
			if h != 0 {
				res.Heights.Set(cell, patchID, h)
			}
		}
		for i, g := range s.grids {
			res.VertexToGrid[patches[patchID][i+1]] = g
		}
	}
	return res, nil
}

func resamplePatch(m *mesh.Mesh, patchID int, members []int, nBins int) (patchSample, error) {
	seed := members[0]
	frame := geom.NewFrame(m.Positions[seed], m.Normals[seed])

	// The extent always includes the seed origin: min/max start at zero.
	locals := make([]geom.Vec3, 0, len(members)-1)
	var minX, maxX, minY, maxY float64
	for _, v := range members[1:] {
		l := frame.ToLocal(m.Positions[v])
		locals = append(locals, l)
		if l.X < minX {
			minX = l.X
		}
		if l.X > maxX {
			maxX = l.X
		}
		if l.Y < minY {
			minY = l.Y
		}
		if l.Y > maxY {
			maxY = l.Y
		}
	}

	reach := maxX - minX
	if dy := maxY - minY; dy > reach {
		reach = dy
	}
	// Widen so that extremal members land strictly inside the grid.
	reach = reach * float64(nBins) / float64(nBins-1)

	sample := patchSample{
		bias: geom.Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
	}

	if len(locals) == 0 {
		// Singleton patch: only the seed, no cells to assign.
		return sample, nil
	}
	if reach == 0 {
		return sample, apperrors.Newf(apperrors.CodeDegenerateGeometry,
			"patch %d (seed %d) has zero tangent-plane extent for %d members",
			patchID, seed, len(members))
	}

	span := reach / float64(nBins)
	sample.span = span
	sample.grids = make([]int, len(locals))

	cells := nBins * nBins
	buckets := make([][]float64, cells)
	for i, l := range locals {
		x := l.X - sample.bias.X
		y := l.Y - sample.bias.Y
		gx := clampCell(int((x+reach/2)/span), nBins)
		gy := clampCell(int((y+reach/2)/span), nBins)
		cell := nBins*gy + gx
		buckets[cell] = append(buckets[cell], l.Z)
		sample.grids[i] = cell
	}

	sample.heights = make([]float64, cells)
	for cell, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		total := 0.0
		for _, h := range bucket {
			total += h
		}
		sample.heights[cell] = total / float64(len(bucket))
		sample.mask = append(sample.mask, cell)
	}
	return sample, nil
}

// clampCell floors into [0, n-1]. A member exactly on the max extent can
// round onto the upper edge; it belongs to the last cell.
func clampCell(g, n int) int {
	if g < 0 {
		return 0
	}
	if g >= n {
		return n - 1
	}
	return g
}
