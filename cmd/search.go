package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/scryfall"
	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for a card by name and show the first match",
	Long: `Search looks cards up by free text, optionally narrowed to a set, a card
type and a rarity, and displays the first match.

Examples:
  scrybe search Lightning Bolt
  scrybe search --rarity common Lightning Bolt
  scrybe search --set eld --type creature knight`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, _ := cmd.Flags().GetString("set")
		typ, _ := cmd.Flags().GetString("type")
		rarity, _ := cmd.Flags().GetString("rarity")

		b := newBrowser()
		defer b.Close()

		err := b.Search(cmd.Context(), strings.Join(args, " "), scryfall.Filters{
			Set:    set,
			Type:   typ,
			Rarity: rarity,
		})
		switch {
		case errors.Is(err, browser.ErrEmptyQuery):
			return fmt.Errorf("search query must not be blank")
		case errors.Is(err, scryfall.ErrEmptyResult):
			fmt.Println("No cards matched.")
			return nil
		case err != nil:
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
	RootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("set", "s", "", "Restrict to a set code (e.g. eld)")
	searchCmd.Flags().StringP("type", "t", "", "Restrict to a card type (e.g. creature)")
	searchCmd.Flags().StringP("rarity", "r", "", "Restrict to a rarity (common, uncommon, rare, mythic)")
	addDisplayFlags(searchCmd)
}
