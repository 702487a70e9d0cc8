package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vearutop/rgbatlas"
)

var rootCmd = &cobra.Command{
	Use:   "rgbatlas",
	Short: "Decode images into raw RGBA8 buffers and pack them into atlases",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			rgbatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log decode routing and atlas layout to stderr")
	rootCmd.PersistentFlags().Bool("no-fast", false, "Disable the fast JPEG path, decode everything with the generic decoder")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
