package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-codec/internal/repository"
	"github.com/mesh-codec/internal/service"
	"github.com/mesh-codec/internal/storage"
	"github.com/mesh-codec/pkg/writer"
)

var (
	// Compress command flags
	compressInput  string
	compressOutput string
	compressUUID   string
	archiveAfter   bool
	recordRun      bool

	// Codec parameter overrides; zero means "use config".
	flagAtoms      int
	flagBins       int
	flagPatchLimit int
	flagTolerance  float64
	flagPrecision  int
)

// compressCmd represents the compress command
var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a triangle mesh into a codec artifact",
	Long: `Compress an OBJ mesh into the codec's text artifact.

The pipeline segments the surface into curvature-seeded patches under a
normal-cone constraint, resamples each patch onto an N x N height grid,
factors the stacked grids via truncated SVD, and records the faces that
cross patch boundaries so connectivity survives decompression.`,
	RunE: runCompress,
}

func init() {
	rootCmd.AddCommand(compressCmd)

	compressCmd.Flags().StringVarP(&compressInput, "input", "i", "", "Input OBJ mesh (required)")
	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "Output artifact path (default: input with .data)")
	compressCmd.MarkFlagRequired("input")

	compressCmd.Flags().StringVar(&compressUUID, "uuid", "", "Run UUID (auto-generated if empty)")
	compressCmd.Flags().BoolVar(&archiveAfter, "archive", false, "Upload the artifact to the configured storage backend")
	compressCmd.Flags().BoolVar(&recordRun, "record", false, "Record the run in the configured database")

	compressCmd.Flags().IntVar(&flagAtoms, "atoms", 0, "Requested dictionary size (overrides config)")
	compressCmd.Flags().IntVar(&flagBins, "bins", 0, "Resampling grid dimension N (overrides config)")
	compressCmd.Flags().IntVar(&flagPatchLimit, "patch-limit", 0, "Max vertices per patch (overrides config)")
	compressCmd.Flags().Float64Var(&flagTolerance, "tolerance", 0, "Normal-cone tolerance in degrees (overrides config)")
	compressCmd.Flags().IntVar(&flagPrecision, "precision", 0, "Serialized float precision (overrides config)")
}

func runCompress(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	if _, err := os.Stat(compressInput); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", compressInput)
	}

	applyCodecOverrides()

	output := compressOutput
	if output == "" {
		output = strings.TrimSuffix(compressInput, filepath.Ext(compressInput)) + ".data"
	}

	uuid := compressUUID
	if uuid == "" {
		uuid = service.GenerateRunUUID()
	}

	var store storage.Storage
	if archiveAfter {
		s, err := storage.New(&cfg.Storage)
		if err != nil {
			return err
		}
		store = s
	}

	var repo repository.RunRepository
	if recordRun || cfg.Database.Enabled {
		db, err := repository.NewGormDB(&cfg.Database)
		if err != nil {
			return err
		}
		defer repository.Close(db)
		repo = repository.NewGormRunRepository(db)
	}

	log.Info("=== mesh-codec compress ===")
	log.Info("Input:     %s", compressInput)
	log.Info("Output:    %s", output)
	log.Info("Run UUID:  %s", uuid)
	log.Info("Codec:     atoms=%d n_bins=%d patch_limit=%d tolerance=%.1f precision=%d",
		cfg.Codec.Atoms, cfg.Codec.NBins, cfg.Codec.PatchSizeLimit,
		cfg.Codec.PatchNormalTolerance, cfg.Codec.FloatPrecision)

	pipeline := service.New(cfg, log, store, repo)
	summary, err := pipeline.CompressFile(cmd.Context(), uuid, compressInput, output)
	if err != nil {
		return err
	}

	log.Info("Patches:   %d", summary.PatchCount)
	log.Info("Atoms:     %d emitted (%d requested)", summary.EmittedAtoms, summary.Atoms)
	log.Info("Size:      %d -> %d bytes (ratio %.3f)", summary.InputBytes, summary.OutputBytes, summary.Ratio)

	summaryPath := output + ".summary.json"
	if err := writer.NewPrettyJSONWriter[*service.RunSummary]().WriteToFile(summary, summaryPath); err != nil {
		log.Warn("failed to write summary: %v", err)
	} else {
		log.Info("Summary:   %s", summaryPath)
	}
	return nil
}

// applyCodecOverrides folds non-zero flag values into the loaded config.
func applyCodecOverrides() {
	if flagAtoms > 0 {
		cfg.Codec.Atoms = flagAtoms
	}
	if flagBins > 0 {
		cfg.Codec.NBins = flagBins
	}
	if flagPatchLimit > 0 {
		cfg.Codec.PatchSizeLimit = flagPatchLimit
	}
	if flagTolerance > 0 {
		cfg.Codec.PatchNormalTolerance = flagTolerance
	}
	if flagPrecision > 0 {
		cfg.Codec.FloatPrecision = flagPrecision
	}
}
