package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [deck] [index]",
	Short: "Display a card with ANSI art",
	Long: `Show displays one card of a deck, with ANSI terminal art when the card's
imageUrl points at a local image file. Card indices start at 0.

The deck is looked up in your deck library (XDG_DATA_HOME/reality-reigns/decks)
or used as a path. Stat names follow the chosen reality.

Examples:
  reigns show neon-uprising 0
  reigns show ./my-story.json 4 --reality mystical`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}

		index, err := parseIndex(d, args[1])
		if err != nil {
			return err
		}

		realityID, _ := cmd.Flags().GetString("reality")
		r, err := resolveReality(realityID)
		if err != nil {
			return err
		}

		if d.Name != "" {
			fmt.Println(colorize.CyanString("Deck: ") + colorize.HiWhiteString(d.Name))
		}
		c := d.Cards[index]
		displayCard(r, c, index, d.Len(), true)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().StringP("reality", "r", "", "Reality whose stat names are shown")
}
