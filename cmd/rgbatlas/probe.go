package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vearutop/rgbatlas"
)

var probeCmd = &cobra.Command{
	Use:   "probe inputs...",
	Short: "Print decode route, format and dimensions of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	noFast, _ := cmd.Flags().GetBool("no-fast")

	for _, src := range args {
		data, err := readInput(src)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		res, err := rgbatlas.Probe(data, !noFast)
		if err != nil {
			return fmt.Errorf("probing %s: %w", src, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %dx%d (%s path)\n", src, res.Format, res.Width, res.Height, res.Route)
	}

	return nil
}
