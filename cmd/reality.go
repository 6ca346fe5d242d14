package cmd

import (
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/config"
)

var realityCmd = &cobra.Command{
	Use:   "reality",
	Short: "Manage realities",
	Long: `A reality is the theme a deck is played in: the names of the four stats, the
instruction given to the generator and where its deck comes from.

Realities are built in or read from TOML files in XDG_CONFIG_HOME/reality-reigns/realities.`,
}

var realityListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available realities",
	RunE: func(cmd *cobra.Command, args []string) error {
		realities, err := loadRealities()
		if err != nil {
			return err
		}

		for _, r := range realities {
			if r.ID == cfg.DefaultReality {
				fmt.Printf("* %s (%s) [DEFAULT]\n", r.ID, r.Name)
			} else {
				fmt.Printf("  %s (%s)\n", r.ID, r.Name)
			}
		}
		return nil
	},
}

var realityShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a reality",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		r, err := resolveReality(id)
		if err != nil {
			return err
		}

		fmt.Println(colorize.CyanString("Reality: ") + colorize.HiWhiteString("%s (%s)", r.Name, r.ID))
		fmt.Println(colorize.CyanString("About:   ") + r.Description)
		for _, stat := range card.AllStats {
			fmt.Printf("%s %s\n", colorize.CyanString("%-9s", stat.String()+":"), r.StatName(stat))
		}

		switch {
		case r.DeckFile != "":
			fmt.Println(colorize.CyanString("Deck:    ") + r.DeckFile)
		case r.DeckURL != "":
			fmt.Println(colorize.CyanString("Deck:    ") + r.DeckURL)
		default:
			fmt.Println(colorize.CyanString("Deck:    ") + "generated on each play")
		}
		if len(r.ImageSet) > 0 {
			fmt.Println(colorize.CyanString("Images:  ") + fmt.Sprintf("%d fallback images", len(r.ImageSet)))
		}
		return nil
	},
}

// realitySetDefaultCmd represents the reality set-default command
var realitySetDefaultCmd = &cobra.Command{
	Use:   "set-default [id]",
	Short: "Set the default reality",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveReality(args[0])
		if err != nil {
			return err
		}

		if err := config.SetDefaultReality(r.ID); err != nil {
			return fmt.Errorf("error setting default reality: %w", err)
		}

		fmt.Printf("Default reality set to: %s\n", r.ID)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(realityCmd)
	realityCmd.AddCommand(realityListCmd)
	realityCmd.AddCommand(realityShowCmd)
	realityCmd.AddCommand(realitySetDefaultCmd)
}
