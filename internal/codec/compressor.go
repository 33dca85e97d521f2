package codec

import (
	"context"
	"sort"

	"github.com/mesh-codec/internal/connectivity"
	"github.com/mesh-codec/internal/curvature"
	"github.com/mesh-codec/internal/dict"
	"github.com/mesh-codec/internal/mesh"
	"github.com/mesh-codec/internal/resample"
	"github.com/mesh-codec/internal/segment"
	"github.com/mesh-codec/pkg/config"
	"github.com/mesh-codec/pkg/parallel"
	"github.com/mesh-codec/pkg/utils"
)

// Compressor runs the compression pipeline: curvature analysis, patch
// segmentation, tangent-plane resampling, dictionary coding and
// connectivity recording. The input mesh is borrowed read-only for the
// duration of a Compress call.
type Compressor struct {
	cfg    config.CodecConfig
	logger utils.Logger
	pool   parallel.PoolConfig
}

// NewCompressor creates a Compressor. A nil logger disables logging.
func NewCompressor(cfg config.CodecConfig, logger utils.Logger) *Compressor {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	pool := parallel.DefaultPoolConfig()
	if cfg.MaxWorker > 0 {
		pool = pool.WithWorkers(cfg.MaxWorker)
	}
	return &Compressor{cfg: cfg, logger: logger, pool: pool}
}

// Compress encodes the mesh. Configuration and input validation run before
// any work; the returned DebugInfo carries the patch channels a
// visualization collaborator may read.
func (c *Compressor) Compress(ctx context.Context, m *mesh.Mesh) (*Encoded, *DebugInfo, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	adj, err := curvature.BuildAdjacency(m)
	if err != nil {
		return nil, nil, err
	}
	kappa := curvature.VertexCurvatures(adj)

	seg := segment.Segment(adj, m.Normals, kappa, segment.Options{
		SizeLimit:          c.cfg.PatchSizeLimit,
		NormalToleranceDeg: c.cfg.PatchNormalTolerance,
	})
	c.logPatchStats(seg)

	rs, err := resample.Resample(ctx, m, seg.Patches, c.cfg.NBins, c.pool)
	if err != nil {
		return nil, nil, err
	}

	dictionary, code, atoms, err := dict.NewCoder(c.logger).Encode(rs.Heights, c.cfg.Atoms)
	if err != nil {
		return nil, nil, err
	}

	conn := connectivity.Record(m.Faces, seg.VertexToPatch, rs.VertexToGrid, seg.PatchCount())

	enc := &Encoded{
		NBins:      c.cfg.NBins,
		PatchCount: seg.PatchCount(),
		Atoms:      atoms,
		Dictionary: dictionary,
		Code:       code,
		TriCracks:  conn.TriCracks,
		Patches:    make([]EncodedPatch, seg.PatchCount()),
	}
	for p := range enc.Patches {
		rp := rs.Patches[p]
		enc.Patches[p] = EncodedPatch{
			SeedPos:    m.Positions[rp.Seed],
			SeedNormal: m.Normals[rp.Seed],
			Span:       rp.Span,
			Bias:       rp.Bias,
			Mask:       rp.Mask,
			Faces:      conn.PatchFaces[p],
			BiCracks:   conn.BiCracks[p],
		}
	}

	debug := &DebugInfo{
		FeatureLen:    c.cfg.NBins * c.cfg.NBins,
		Atoms:         atoms,
		VertexToPatch: seg.VertexToPatch,
		PatchSizes:    seg.Sizes(),
		PatchFaces:    conn.PatchOriginFaces,
		FaceColors:    mesh.FaceColors(m.Faces, seg.VertexToPatch, seg.PatchCount()),
	}
	return enc, debug, nil
}

// logPatchStats reports the segmentation shape at debug level.
func (c *Compressor) logPatchStats(seg *segment.Result) {
	sizes := seg.Sizes()
	if len(sizes) == 0 {
		return
	}
	sorted := make([]int, len(sizes))
	copy(sorted, sizes)
	sort.Ints(sorted)

	total := 0
	for _, s := range sorted {
		total += s
	}
	mean := float64(total) / float64(len(sorted))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid]+sorted[mid-1]) / 2
	}

	c.logger.Debug("segmentation: %d patches, mean size %.2f, median size %.1f",
		len(sorted), mean, median)
}
