package cmd

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [card_id]",
	Short: "Display information about a specific card with ANSI art",
	Long: `Show displays detailed information about a card with ANSI terminal art.
Use the card's database identifier, as printed by the random and search
commands or found in a share link.

Examples:
  scrybe show 0000579f-7b35-4ed3-b44c-db2a538066fe
  scrybe show --no-art 0000579f-7b35-4ed3-b44c-db2a538066fe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := newBrowser()
		defer b.Close()

		if err := b.LoadCard(cmd.Context(), args[0]); err != nil {
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
	RootCmd.AddCommand(showCmd)

	addDisplayFlags(showCmd)
}
