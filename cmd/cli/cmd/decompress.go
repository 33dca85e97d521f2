package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-codec/internal/codec"
	"github.com/mesh-codec/internal/service"
	"github.com/mesh-codec/pkg/writer"
)

var (
	// Decompress command flags
	decompressInput  string
	decompressOutput string
	debugBundle      bool
)

// decompressCmd represents the decompress command
var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Reconstruct a mesh from a codec artifact",
	Long: `Decompress a codec artifact back into an OBJ mesh.

Reconstruction restores the height grids from the dictionary and codes,
lifts them to 3D in each patch's seed frame, and resolves the recorded
intra-patch and crack faces. Patch seams are not welded.`,
	RunE: runDecompress,
}

func init() {
	rootCmd.AddCommand(decompressCmd)

	decompressCmd.Flags().StringVarP(&decompressInput, "input", "i", "", "Input artifact (required)")
	decompressCmd.Flags().StringVarP(&decompressOutput, "output", "o", "", "Output OBJ path (default: input with .obj)")
	decompressCmd.MarkFlagRequired("input")

	decompressCmd.Flags().BoolVar(&debugBundle, "debug-bundle", false,
		"Write the patch debug channels next to the output as gzipped JSON")
}

func runDecompress(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	if _, err := os.Stat(decompressInput); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", decompressInput)
	}

	output := decompressOutput
	if output == "" {
		output = strings.TrimSuffix(decompressInput, filepath.Ext(decompressInput)) + ".obj"
	}

	log.Info("=== mesh-codec decompress ===")
	log.Info("Input:  %s", decompressInput)
	log.Info("Output: %s", output)

	pipeline := service.New(cfg, log, nil, nil)
	debug, err := pipeline.DecompressFile(cmd.Context(), decompressInput, output)
	if err != nil {
		return err
	}

	log.Info("Patches: %d, feature length %d, atoms %d",
		len(debug.PatchSizes), debug.FeatureLen, debug.Atoms)

	if debugBundle {
		bundlePath := output + ".debug.json.gz"
		if err := writer.NewGzipJSONWriter[*codec.DebugInfo]().WriteToFile(debug, bundlePath); err != nil {
			log.Warn("failed to write debug bundle: %v", err)
		} else {
			log.Info("Debug bundle: %s", bundlePath)
		}
	}
	return nil
}
