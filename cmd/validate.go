package cmd

import (
	"fmt"

	"github.com/arcanaland/scrybe/internal/validator"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [card_id]",
	Short: "Check that a card record can be displayed",
	Long: `Validate fetches a card record as is and checks that it carries what the
browser needs: an id, a name, an image and a prints link.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID := args[0]

		c, err := newClient().CardRecord(cmd.Context(), cardID)
		if err != nil {
			return err
		}

		results := validator.ValidateCard(c)

		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		if results.Valid() {
			fmt.Printf("✅ Card '%s' (%s) is usable.\n", c.Name, cardID)
		} else {
			fmt.Printf("❌ Card '%s' has %d validation errors:\n", cardID, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, err)
			}
			return fmt.Errorf("validation failed")
		}

		if len(results.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
