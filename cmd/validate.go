package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/validator"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [deck]",
	Short: "Validate a deck file",
	Long: `Validate checks that a deck decodes and can be played, then reports
authoring problems: empty prompts or choice texts, jump targets outside the deck
(hidden in the graph view), choices that loop to their own card without changing
any stat, and cards no path reaches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deckPath, err := config.GetDeckPath(args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(deckPath)
		if err != nil {
			return fmt.Errorf("error reading deck file: %w", err)
		}

		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		d, err := deck.Decode(data)
		if err != nil {
			fmt.Printf("❌ Deck '%s' could not be loaded:\n1. %s\n", deckPath, decodeHint(err))
			return fmt.Errorf("validation failed")
		}

		results := validator.Validate(d)
		if results.Valid() {
			fmt.Printf("✅ Deck '%s' is valid (%d cards).\n", deckPath, d.Len())
		} else {
			fmt.Printf("❌ Deck '%s' has %d validation errors:\n", deckPath, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Printf("%d. %s\n", i+1, warn)
			}
		}

		if !results.Valid() {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func decodeHint(err error) string {
	switch {
	case errors.Is(err, deck.ErrParse):
		return "the file is not valid JSON"
	case errors.Is(err, deck.ErrEmptyDeck):
		return "the deck has no cards"
	}
	return err.Error()
}
