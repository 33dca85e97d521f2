// Package codec assembles the compression pipeline and owns the encoded
// artifact, its wire format and the reconstructor.
package codec

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mesh-codec/internal/connectivity"
	"github.com/mesh-codec/internal/geom"
)

// Encoded is everything the decoder needs, in memory. The serializer maps
// it onto the wire format section by section.
type Encoded struct {
	// NBins is the grid dimension N.
	NBins int
	// PatchCount is the number of patches P.
	PatchCount int
	// Atoms is the emitted dictionary width A' (possibly smaller than the
	// requested atom count).
	Atoms int
	// Dictionary is the (N*N, A') height-basis matrix, columns ordered by
	// descending singular value.
	Dictionary *mat.Dense
	// Code is the (A', P) coefficient matrix; column p reconstructs patch
	// p's height grid.
	Code *mat.Dense
	// TriCracks lists faces spanning three distinct patches.
	TriCracks []connectivity.TriCrack
	// Patches holds the per-patch records in patch-id order.
	Patches []EncodedPatch
}

// EncodedPatch is the per-patch section of the artifact.
type EncodedPatch struct {
	SeedPos    geom.Vec3
	SeedNormal geom.Vec3
	Span       float64
	Bias       geom.Vec2
	// Mask lists occupied cells in ascending order.
	Mask []int
	// Faces are intra-patch grid triples.
	Faces [][3]int
	// BiCracks are crack faces whose shared pair lives in this patch.
	BiCracks []connectivity.BiCrack
}

// DebugInfo carries the channels a visualization collaborator may read:
// per-patch face lists, the vertex-to-patch map and per-patch sizes. Both
// the compressor and the reconstructor surface one.
type DebugInfo struct {
	FeatureLen    int   `json:"feature_len"`
	Atoms         int   `json:"atoms"`
	VertexToPatch []int `json:"vertex_to_patch"`
	PatchSizes    []int `json:"patch_sizes"`
	// PatchFaces holds face indices per patch: original indices on the
	// compression side, restored indices on the decompression side.
	PatchFaces [][]int `json:"patch_faces"`
	// FaceColors is a flat per-corner RGB array over the face list,
	// coloring each corner by its patch rank.
	FaceColors []float64 `json:"face_colors,omitempty"`
}
