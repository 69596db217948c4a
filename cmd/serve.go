package cmd

import (
	"github.com/spf13/cobra"

	"campuscycle/internal/app"
)

var serveSkipModel bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduled bin sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(!serveSkipModel)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveSkipModel, "no-model", false,
		"start without the classifier; /v1/predict returns 503")
	rootCmd.AddCommand(serveCmd)
}
