package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-codec/internal/codec"
)

var infoInput string

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe a codec artifact without reconstructing it",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoInput, "input", "i", "", "Input artifact (required)")
	infoCmd.MarkFlagRequired("input")
}

func runInfo(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(infoInput); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", infoInput)
	}

	enc, err := codec.ReadFile(infoInput)
	if err != nil {
		return err
	}

	maskTotal := 0
	intraFaces := 0
	biCracks := 0
	for _, p := range enc.Patches {
		maskTotal += len(p.Mask)
		intraFaces += len(p.Faces)
		biCracks += len(p.BiCracks)
	}

	fmt.Printf("Artifact:        %s\n", infoInput)
	fmt.Printf("Grid dimension:  %d (%d cells)\n", enc.NBins, enc.NBins*enc.NBins)
	fmt.Printf("Patches:         %d\n", enc.PatchCount)
	fmt.Printf("Atoms:           %d\n", enc.Atoms)
	fmt.Printf("Vertices:        %d (%d seeds + %d grid cells)\n",
		enc.PatchCount+maskTotal, enc.PatchCount, maskTotal)
	fmt.Printf("Intra faces:     %d\n", intraFaces)
	fmt.Printf("Bi-patch cracks: %d\n", biCracks)
	fmt.Printf("Tri-patch cracks:%d\n", len(enc.TriCracks))
	return nil
}
