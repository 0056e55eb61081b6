package cmd

import (
	"github.com/spf13/cobra"
)

// randomCmd represents the random command
var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random card",
	Long: `Random asks the card database for one random card and displays it.
Restrict it to a color with --color using one of w, u, b, r, g or c.

Examples:
  scrybe random
  scrybe random --color b`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")

		b := newBrowser()
		defer b.Close()

		if err := b.Random(cmd.Context(), color); err != nil {
			return err
		}
		st, err := b.Snapshot()
		if err != nil {
			return err
		}
		displayState(cmd.Context(), st)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(randomCmd)

	randomCmd.Flags().StringP("color", "c", "", "Only pick cards of this color (w, u, b, r, g, c)")
	addDisplayFlags(randomCmd)
}
