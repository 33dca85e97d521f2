package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-codec/internal/objfile"
	"github.com/mesh-codec/internal/repository"
	"github.com/mesh-codec/internal/storage"
	"github.com/mesh-codec/internal/testutil"
	"github.com/mesh-codec/pkg/config"
	apperrors "github.com/mesh-codec/pkg/errors"
	"github.com/mesh-codec/pkg/utils"
)

func testConfig() *config.Config {
	cfg, err := config.LoadFromReader("yaml", []byte(`
codec:
  atoms: 3
  n_bins: 4
  patch_size_limit: 22
  patch_normal_tolerance: 90.0
  float_precision: 4
  max_worker: 2
`))
	if err != nil {
		panic(err)
	}
	return cfg
}

func writeInputOBJ(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.obj")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, objfile.Write(f, testutil.CoplanarQuad(), 4))
	return path
}

func TestPipeline_CompressDecompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeInputOBJ(t, dir)
	artifact := filepath.Join(dir, "mesh.data")
	restored := filepath.Join(dir, "restored.obj")

	p := New(testConfig(), &utils.NullLogger{}, nil, nil)

	summary, err := p.CompressFile(context.Background(), "run-test", input, artifact)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.VertexCount)
	assert.Equal(t, 2, summary.FaceCount)
	assert.Equal(t, 1, summary.PatchCount)
	assert.Positive(t, summary.OutputBytes)

	debug, err := p.DecompressFile(context.Background(), artifact, restored)
	require.NoError(t, err)
	assert.Equal(t, 16, debug.FeatureLen)

	back, err := objfile.LoadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, 4, back.VertexCount())
	assert.Equal(t, 2, back.FaceCount())
}

func TestPipeline_ArchivesToStorage(t *testing.T) {
	dir := t.TempDir()
	input := writeInputOBJ(t, dir)
	artifact := filepath.Join(dir, "mesh.data")

	cfg := testConfig()
	cfg.Storage.Compress = "gzip"
	store, err := storage.NewLocalStorage(filepath.Join(dir, "archive"))
	require.NoError(t, err)

	p := New(cfg, &utils.NullLogger{}, store, nil)
	summary, err := p.CompressFile(context.Background(), "run-arch", input, artifact)
	require.NoError(t, err)
	require.NotEmpty(t, summary.ArchiveURL)

	ok, err := store.Exists(context.Background(), "mesh.data.gz")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPipeline_RecordsRun(t *testing.T) {
	dir := t.TempDir()
	input := writeInputOBJ(t, dir)
	artifact := filepath.Join(dir, "mesh.data")

	cfg := testConfig()
	cfg.Database.Enabled = true
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = filepath.Join(dir, "runs.db")

	db, err := repository.NewGormDB(&cfg.Database)
	require.NoError(t, err)
	defer repository.Close(db)
	repo := repository.NewGormRunRepository(db)

	p := New(cfg, &utils.NullLogger{}, nil, repo)
	_, err = p.CompressFile(context.Background(), "run-db", input, artifact)
	require.NoError(t, err)

	run, err := repo.GetRunByUUID(context.Background(), "run-db")
	require.NoError(t, err)
	assert.Equal(t, 1, run.PatchCount)
	assert.Empty(t, run.ErrorCode)
}

func TestPipeline_MissingInputFails(t *testing.T) {
	dir := t.TempDir()
	p := New(testConfig(), &utils.NullLogger{}, nil, nil)

	_, err := p.CompressFile(context.Background(), "run-miss",
		filepath.Join(dir, "absent.obj"), filepath.Join(dir, "out.data"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIOFailure, apperrors.GetErrorCode(err))
}

func TestPipeline_RecordsFailure(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig()
	cfg.Database.Enabled = true
	cfg.Database.Path = filepath.Join(dir, "runs.db")
	db, err := repository.NewGormDB(&cfg.Database)
	require.NoError(t, err)
	defer repository.Close(db)
	repo := repository.NewGormRunRepository(db)

	p := New(cfg, &utils.NullLogger{}, nil, repo)
	_, err = p.CompressFile(context.Background(), "run-fail",
		filepath.Join(dir, "absent.obj"), filepath.Join(dir, "out.data"))
	require.Error(t, err)

	run, err := repo.GetRunByUUID(context.Background(), "run-fail")
	require.NoError(t, err)
	assert.Equal(t, apperrors.CodeIOFailure, run.ErrorCode)
}

func TestPipeline_BumpyGridMultiPatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "grid.obj")
	f, err := os.Create(input)
	require.NoError(t, err)
	require.NoError(t, objfile.Write(f, testutil.BumpyGrid(6), 6))
	f.Close()

	cfg := testConfig()
	cfg.Codec.PatchSizeLimit = 9

	artifact := filepath.Join(dir, "grid.data")
	p := New(cfg, &utils.NullLogger{}, nil, nil)

	summary, err := p.CompressFile(context.Background(), "run-grid", input, artifact)
	require.NoError(t, err)
	assert.Equal(t, 49, summary.VertexCount)
	assert.Greater(t, summary.PatchCount, 1)

	restored := filepath.Join(dir, "grid-restored.obj")
	debug, err := p.DecompressFile(context.Background(), artifact, restored)
	require.NoError(t, err)
	assert.Equal(t, summary.PatchCount, len(debug.PatchSizes))

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\nf ")
}
