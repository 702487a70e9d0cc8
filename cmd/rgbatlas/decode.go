package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vearutop/rgbatlas"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode one image into a raw RGBA8 buffer",
	RunE:  runDecode,
}

func init() {
	decodeCmd.Flags().StringP("input", "i", "", "Input image path or http(s) URL")
	decodeCmd.Flags().StringP("output", "o", "", "Output raw RGBA8 file, zstd-compressed if it ends with .zst")
	decodeCmd.Flags().String("meta", "", "Write dimensions as JSON to this file")
	decodeCmd.Flags().Bool("auto-rotate", false, "Apply EXIF orientation on the fast path")
	decodeCmd.MarkFlagRequired("input")
	decodeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, _ []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	metaPath, _ := cmd.Flags().GetString("meta")
	autoRotate, _ := cmd.Flags().GetBool("auto-rotate")
	noFast, _ := cmd.Flags().GetBool("no-fast")

	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	img, err := rgbatlas.DecodeOne(data, !noFast, func(o *rgbatlas.Options) {
		o.AutoRotate = autoRotate
	})
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	n, err := writeRaw(outputPath, img)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := writeMeta(metaPath, outputPath, img); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Decoded %dx%d via %s path\n", img.Width, img.Height, rgbatlas.Dispatch(data, !noFast))
	fmt.Fprintf(cmd.OutOrStdout(), "Input:  %s (%d bytes)\n", inputPath, len(data))
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s (%d bytes)\n", outputPath, n)

	return nil
}
