package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "campuscycle",
	Short: "Garbage classification and waste complaint tracking",
	Long: `CampusCycle classifies garbage images with an ONNX model and tracks
waste complaints and bin fill levels for a campus. Run "serve" for the
HTTP API, "capture" to classify frames dropped into a directory,
"classify" for a one-shot prediction and "sweep" for a bin report.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
