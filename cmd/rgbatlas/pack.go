package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vearutop/rgbatlas"
)

var packCmd = &cobra.Command{
	Use:   "pack [flags] inputs...",
	Short: "Decode images and pack them into one RGBA8 atlas, row by row",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPack,
}

func init() {
	packCmd.Flags().IntP("columns", "c", 1, "Number of atlas columns, must divide the number of inputs")
	packCmd.Flags().StringP("output", "o", "", "Output raw RGBA8 file, zstd-compressed if it ends with .zst")
	packCmd.Flags().String("meta", "", "Write atlas dimensions as JSON to this file")
	packCmd.Flags().Int("workers", 0, "Concurrent decodes, 0 uses all CPUs")
	packCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	columns, _ := cmd.Flags().GetInt("columns")
	outputPath, _ := cmd.Flags().GetString("output")
	metaPath, _ := cmd.Flags().GetString("meta")
	workers, _ := cmd.Flags().GetInt("workers")
	noFast, _ := cmd.Flags().GetBool("no-fast")

	inputs, err := readInputs(args)
	if err != nil {
		return err
	}

	atlas, err := rgbatlas.DecodeAndComposite(inputs, columns, !noFast, func(o *rgbatlas.Options) {
		o.Workers = workers
	})
	if err != nil {
		return fmt.Errorf("packing: %w", err)
	}

	n, err := writeRaw(outputPath, atlas)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := writeMeta(metaPath, outputPath, atlas); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Packed %d images into %dx%d atlas (%d columns)\n", len(inputs), atlas.Width, atlas.Height, columns)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s (%d bytes)\n", outputPath, n)

	return nil
}
