package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"campuscycle/internal/app"
	"campuscycle/internal/capture"
)

var captureDir string

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Watch a directory and classify every image dropped into it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(true)
		if err != nil {
			return err
		}
		defer a.Close()

		dir := captureDir
		if dir == "" {
			dir = a.Config.WatchDir
		}
		source, err := capture.NewWatchSource(dir, a.Config.AcquireTimeout())
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		return a.Capture(cmd.Context(), source)
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureDir, "dir", "", "directory to watch (defaults to watch_dir from config)")
	rootCmd.AddCommand(captureCmd)
}
