package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/scrybe/internal/card"
)

// printsCmd represents the prints command
var printsCmd = &cobra.Command{
	Use:   "prints [card_id]",
	Short: "List the alternate arts of a card",
	Long: `Prints lists every print of a card that has its own image, the same
list the web UI shows as alternate arts.

Examples:
  scrybe prints 0000579f-7b35-4ed3-b44c-db2a538066fe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		c, err := client.Card(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !c.HasPrints() {
			fmt.Printf("%s has no prints link.\n", c.Name)
			return nil
		}

		prints, err := client.Prints(cmd.Context(), c.PrintsSearchURI)
		if err != nil {
			return err
		}
		arts := card.AlternateArts(prints)

		fmt.Println(colorize.CyanString("%s: ", c.Name) + colorize.HiWhiteString("%d alternate arts", len(arts)))
		for _, a := range arts {
			fmt.Printf("  %s  %s\n", colorize.HiWhiteString(a.ID), a.Image)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(printsCmd)
}
