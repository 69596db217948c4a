package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"campuscycle/internal/app"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <image>...",
	Short: "Classify image files and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(true)
		if err != nil {
			return err
		}
		defer a.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, path := range args {
			res, err := a.Classifier.ClassifyFile(path)
			if err != nil {
				return err
			}
			if err := enc.Encode(res); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
