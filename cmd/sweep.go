package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"campuscycle/internal/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Report bins that need emptying and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(false)
		if err != nil {
			return err
		}
		defer a.Close()

		full, err := a.Registry.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d bin(s) full\n", full)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
