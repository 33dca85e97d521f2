package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_IntraPatch(t *testing.T) {
	faces := [][3]int{{0, 1, 2}}
	vToPatch := []int{0, 0, 0}
	vToGrid := []int{-1, 3, 12}

	res := Record(faces, vToPatch, vToGrid, 1)

	require.Len(t, res.PatchFaces[0], 1)
	assert.Equal(t, [3]int{-1, 3, 12}, res.PatchFaces[0][0])
	assert.Empty(t, res.TriCracks)
	assert.Empty(t, res.BiCracks[0])
	assert.Equal(t, []int{0}, res.PatchOriginFaces[0])
}

func TestRecord_SameCellDegenerateDropped(t *testing.T) {
	faces := [][3]int{{0, 1, 2}}
	vToPatch := []int{0, 0, 0}
	vToGrid := []int{5, 5, 9}

	res := Record(faces, vToPatch, vToGrid, 1)

	assert.Empty(t, res.PatchFaces[0])
	// The origin-face debug channel still records it.
	assert.Equal(t, []int{0}, res.PatchOriginFaces[0])
}

func TestRecord_TriCrackCanonicalOrder(t *testing.T) {
	faces := [][3]int{{0, 1, 2}}
	vToPatch := []int{2, 0, 1}
	vToGrid := []int{7, -1, 4}

	res := Record(faces, vToPatch, vToGrid, 3)

	require.Len(t, res.TriCracks, 1)
	want := TriCrack{{0, -1}, {1, 4}, {2, 7}}
	assert.Equal(t, want, res.TriCracks[0])
}

func TestRecord_BiCrackSharedPair(t *testing.T) {
	// Vertices 0 and 2 share patch 1; vertex 1 is in patch 0.
	faces := [][3]int{{0, 1, 2}}
	vToPatch := []int{1, 0, 1}
	vToGrid := []int{9, 2, 4}

	res := Record(faces, vToPatch, vToGrid, 2)

	require.Len(t, res.BiCracks[1], 1)
	got := res.BiCracks[1][0]
	// Shared grids ascending, other vertex carried as patch/grid.
	assert.Equal(t, BiCrack{G0: 4, G1: 9, Other: PatchGrid{0, 2}}, got)
	assert.Empty(t, res.BiCracks[0])
}

func TestRecord_SeedSentinelSortsFirst(t *testing.T) {
	// The seed's -1 grid participates in sorting like any cell id.
	faces := [][3]int{{0, 1, 2}}
	vToPatch := []int{0, 0, 1}
	vToGrid := []int{4, -1, 0}

	res := Record(faces, vToPatch, vToGrid, 2)

	require.Len(t, res.BiCracks[0], 1)
	assert.Equal(t, BiCrack{G0: -1, G1: 4, Other: PatchGrid{1, 0}}, res.BiCracks[0][0])
}

func TestRecord_DedupAndSort(t *testing.T) {
	// Two faces over the same cells produce one canonical record; a third
	// distinct face sorts before it.
	faces := [][3]int{
		{0, 1, 2},
		{2, 1, 0}, // same triple, different winding
		{0, 1, 3},
	}
	vToPatch := []int{0, 0, 0, 0}
	vToGrid := []int{8, 1, 5, 2}

	res := Record(faces, vToPatch, vToGrid, 1)

	require.Len(t, res.PatchFaces[0], 2)
	assert.Equal(t, [3]int{1, 2, 8}, res.PatchFaces[0][0])
	assert.Equal(t, [3]int{1, 5, 8}, res.PatchFaces[0][1])
}

func TestRecord_PartitionProperty(t *testing.T) {
	// Every face lands in exactly one class.
	faces := [][3]int{
		{0, 1, 2}, // intra patch 0
		{0, 1, 3}, // bi-crack
		{0, 3, 4}, // tri-crack
	}
	vToPatch := []int{0, 0, 0, 1, 2}
	vToGrid := []int{-1, 1, 2, -1, -1}

	res := Record(faces, vToPatch, vToGrid, 3)

	intra := 0
	for _, pf := range res.PatchFaces {
		intra += len(pf)
	}
	bi := 0
	for _, bc := range res.BiCracks {
		bi += len(bc)
	}
	assert.Equal(t, 1, intra)
	assert.Equal(t, 1, bi)
	assert.Len(t, res.TriCracks, 1)
}
