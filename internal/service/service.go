// Package service orchestrates the full pipeline: load, compress,
// serialize, archive and record.
package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-codec/internal/codec"
	"github.com/mesh-codec/internal/mesh"
	"github.com/mesh-codec/internal/objfile"
	"github.com/mesh-codec/internal/repository"
	"github.com/mesh-codec/internal/storage"
	"github.com/mesh-codec/pkg/compression"
	"github.com/mesh-codec/pkg/config"
	apperrors "github.com/mesh-codec/pkg/errors"
	"github.com/mesh-codec/pkg/utils"
)

const tracerName = "github.com/mesh-codec/internal/service"

// RunSummary is the outcome of one compression run.
type RunSummary struct {
	RunUUID      string  `json:"run_uuid"`
	InputFile    string  `json:"input_file"`
	Artifact     string  `json:"artifact"`
	VertexCount  int     `json:"vertex_count"`
	FaceCount    int     `json:"face_count"`
	PatchCount   int     `json:"patch_count"`
	Atoms        int     `json:"atoms"`
	EmittedAtoms int     `json:"emitted_atoms"`
	InputBytes   int64   `json:"input_bytes"`
	OutputBytes  int64   `json:"output_bytes"`
	Ratio        float64 `json:"ratio"`
	DurationMs   int64   `json:"duration_ms"`
	ArchiveURL   string  `json:"archive_url,omitempty"`
}

// Pipeline wires the codec to its collaborators. Storage and repository
// are optional; a nil collaborator disables that step.
type Pipeline struct {
	cfg    *config.Config
	logger utils.Logger
	store  storage.Storage
	repo   repository.RunRepository
	tracer trace.Tracer
}

// New creates a Pipeline. A nil logger disables logging.
func New(cfg *config.Config, logger utils.Logger, store storage.Storage, repo repository.RunRepository) *Pipeline {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		store:  store,
		repo:   repo,
		tracer: otel.Tracer(tracerName),
	}
}

// CompressFile loads an OBJ mesh, compresses it, writes the artifact and
// optionally archives and records the run.
func (p *Pipeline) CompressFile(ctx context.Context, runUUID, inputPath, outputPath string) (*RunSummary, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.compress",
		trace.WithAttributes(attribute.String("run.uuid", runUUID)))
	defer span.End()

	start := time.Now()

	m, err := p.loadMesh(ctx, inputPath)
	if err != nil {
		return nil, p.recordFailure(runUUID, inputPath, outputPath, err)
	}

	enc, debug, err := p.compress(ctx, m)
	if err != nil {
		return nil, p.recordFailure(runUUID, inputPath, outputPath, err)
	}

	if err := p.serialize(ctx, outputPath, enc); err != nil {
		return nil, p.recordFailure(runUUID, inputPath, outputPath, err)
	}

	summary := &RunSummary{
		RunUUID:      runUUID,
		InputFile:    inputPath,
		Artifact:     outputPath,
		VertexCount:  m.VertexCount(),
		FaceCount:    m.FaceCount(),
		PatchCount:   enc.PatchCount,
		Atoms:        p.cfg.Codec.Atoms,
		EmittedAtoms: debug.Atoms,
		InputBytes:   fileSize(inputPath),
		OutputBytes:  fileSize(outputPath),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if summary.InputBytes > 0 {
		summary.Ratio = float64(summary.OutputBytes) / float64(summary.InputBytes)
	}

	if p.store != nil {
		url, err := p.archive(ctx, outputPath)
		if err != nil {
			return nil, err
		}
		summary.ArchiveURL = url
	}

	if p.repo != nil {
		if err := p.record(ctx, summary, ""); err != nil {
			// Recording is bookkeeping; the artifact is already committed.
			p.logger.Warn("failed to record run: %v", err)
		}
	}

	p.logger.Info("compressed %s: %d vertices, %d patches, ratio %.3f",
		inputPath, summary.VertexCount, summary.PatchCount, summary.Ratio)
	return summary, nil
}

// DecompressFile reads an artifact, reconstructs the mesh and writes OBJ.
func (p *Pipeline) DecompressFile(ctx context.Context, inputPath, outputPath string) (*codec.DebugInfo, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.decompress")
	defer span.End()

	_, readSpan := p.tracer.Start(ctx, "artifact.read")
	enc, err := codec.ReadFile(inputPath)
	readSpan.End()
	if err != nil {
		return nil, err
	}

	_, reconSpan := p.tracer.Start(ctx, "codec.reconstruct")
	restored, debug, err := codec.Reconstruct(enc)
	reconSpan.End()
	if err != nil {
		return nil, err
	}

	if err := objfile.WriteFile(outputPath, restored, p.cfg.Codec.FloatPrecision); err != nil {
		return nil, err
	}

	p.logger.Info("decompressed %s: %d vertices, %d faces",
		inputPath, restored.VertexCount(), restored.FaceCount())
	return debug, nil
}

func (p *Pipeline) loadMesh(ctx context.Context, path string) (*mesh.Mesh, error) {
	_, span := p.tracer.Start(ctx, "mesh.load")
	defer span.End()
	return objfile.LoadFile(path)
}

func (p *Pipeline) compress(ctx context.Context, m *mesh.Mesh) (*codec.Encoded, *codec.DebugInfo, error) {
	ctx, span := p.tracer.Start(ctx, "codec.compress")
	defer span.End()
	return codec.NewCompressor(p.cfg.Codec, p.logger).Compress(ctx, m)
}

func (p *Pipeline) serialize(ctx context.Context, path string, enc *codec.Encoded) error {
	_, span := p.tracer.Start(ctx, "artifact.write")
	defer span.End()
	return codec.WriteFile(path, enc, p.cfg.Codec.FloatPrecision)
}

// archive uploads the artifact to the configured storage backend,
// compressing it first when the config asks for it.
func (p *Pipeline) archive(ctx context.Context, artifactPath string) (string, error) {
	ctx, span := p.tracer.Start(ctx, "artifact.archive")
	defer span.End()

	comp, err := compression.New(p.cfg.Storage.Compress)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeConfigInvalid, "invalid archive compression", err)
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to read artifact", err)
	}
	packed, err := comp.Compress(data)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeStorageError, "failed to compress artifact", err)
	}

	key := filepath.Base(artifactPath) + comp.Ext()
	if err := p.store.Upload(ctx, key, bytes.NewReader(packed)); err != nil {
		return "", err
	}

	url := p.store.GetURL(key)
	p.logger.Info("archived artifact to %s", url)
	return url, nil
}

func (p *Pipeline) record(ctx context.Context, s *RunSummary, errCode string) error {
	return p.repo.SaveRun(ctx, &repository.CompressionRun{
		RunUUID:         s.RunUUID,
		InputFile:       s.InputFile,
		Artifact:        s.Artifact,
		Atoms:           p.cfg.Codec.Atoms,
		EmittedAtoms:    s.EmittedAtoms,
		NBins:           p.cfg.Codec.NBins,
		PatchSizeLimit:  p.cfg.Codec.PatchSizeLimit,
		NormalTolerance: p.cfg.Codec.PatchNormalTolerance,
		FloatPrecision:  p.cfg.Codec.FloatPrecision,
		VertexCount:     s.VertexCount,
		FaceCount:       s.FaceCount,
		PatchCount:      s.PatchCount,
		InputBytes:      s.InputBytes,
		OutputBytes:     s.OutputBytes,
		Ratio:           s.Ratio,
		DurationMs:      s.DurationMs,
		ErrorCode:       errCode,
	})
}

// recordFailure stores a failed run when a repository is wired, then
// passes the original error through.
func (p *Pipeline) recordFailure(runUUID, inputPath, outputPath string, cause error) error {
	if p.repo != nil {
		run := &repository.CompressionRun{
			RunUUID:      runUUID,
			InputFile:    inputPath,
			Artifact:     outputPath,
			ErrorCode:    apperrors.GetErrorCode(cause),
			ErrorMessage: cause.Error(),
		}
		if err := p.repo.SaveRun(context.Background(), run); err != nil {
			p.logger.Warn("failed to record failed run: %v", err)
		}
	}
	return cause
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// GenerateRunUUID builds a timestamp-based run id.
func GenerateRunUUID() string {
	return fmt.Sprintf("run-%s", time.Now().Format("20060102-150405"))
}
