package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-codec/pkg/config"
	"github.com/mesh-codec/pkg/telemetry"
	"github.com/mesh-codec/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mesh-codec",
	Short: "A lossy geometry compressor for triangle meshes",
	Long: `mesh-codec compresses triangle meshes by segmenting the surface into
near-planar patches, resampling each patch onto a regular height grid in
its seed's tangent frame, and factoring the stacked grids into a shared
dictionary with per-patch codes. Decompression inverts the pipeline and
reassembles the mesh, including the triangles crossing patch boundaries.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		telemetryShutdown, err = telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			return telemetryShutdown(context.Background())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	binName := BinName()
	rootCmd.Example = `  # Compress a mesh with the default parameters
  ` + binName + ` compress -i bunny.obj -o bunny.data

  # Compress with a finer grid and fewer atoms
  ` + binName + ` compress -i bunny.obj -o bunny.data --bins 16 --atoms 6

  # Decompress and write the restored mesh
  ` + binName + ` decompress -i bunny.data -o bunny-restored.obj

  # Inspect an artifact without reconstructing it
  ` + binName + ` info -i bunny.data`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
