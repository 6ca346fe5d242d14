package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Browse and contribute to the community store",
	Long: `Store commands talk to the community catalog configured under [catalog]
(override with REIGNS_CATALOG_URL).`,
}

var storeRealitiesCmd = &cobra.Command{
	Use:   "realities",
	Short: "List realities offered by the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		realities, err := newCatalog().ListRealities(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not load the store: %w", err)
		}
		if len(realities) == 0 {
			fmt.Println("The store has no realities yet.")
			return nil
		}
		for _, r := range realities {
			fmt.Printf("  %s (%s)\n    %s\n", colorize.HiWhiteString(r.ID), r.Name, colorize.HiBlackString(r.Description))
		}
		return nil
	},
}

var storeDecksCmd = &cobra.Command{
	Use:   "decks",
	Short: "List decks offered by the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		decks, err := newCatalog().ListDecks(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not load the store: %w", err)
		}
		if len(decks) == 0 {
			fmt.Println("The store has no decks yet.")
			return nil
		}
		for i, d := range decks {
			fmt.Printf("  %2d  %s (%d cards)\n      %s\n", i, colorize.HiWhiteString(d.Name), d.Len(), colorize.HiBlackString(d.Description))
		}
		return nil
	},
}

var storeImportDeckCmd = &cobra.Command{
	Use:   "import-deck [number|name]",
	Short: "Copy a store deck into your deck library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := findStoreDeck(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return saveNewDeck(d, d.Name)
	},
}

var storeImportRealityCmd = &cobra.Command{
	Use:   "import-reality [id]",
	Short: "Install a store reality into your realities directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		realities, err := newCatalog().ListRealities(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not load the store: %w", err)
		}
		r, err := reality.Find(realities, args[0])
		if err != nil {
			return err
		}

		path := filepath.Join(config.GetRealitiesPath(), config.Slug(r.ID)+".toml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("a reality file already exists at %s", path)
		}
		if err := reality.SaveFile(path, r); err != nil {
			return err
		}
		fmt.Printf("Installed %s to %s\n", r.Name, path)
		return nil
	},
}

var storeSubmitCmd = &cobra.Command{
	Use:   "submit [reality-id]",
	Short: "Submit one of your realities to the store for review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := resolveReality(args[0])
		if err != nil {
			return err
		}

		msg, err := newCatalog().SubmitReality(cmd.Context(), r)
		if err != nil {
			return err
		}
		colorize.Green("%s", msg)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeRealitiesCmd)
	storeCmd.AddCommand(storeDecksCmd)
	storeCmd.AddCommand(storeImportDeckCmd)
	storeCmd.AddCommand(storeImportRealityCmd)
	storeCmd.AddCommand(storeSubmitCmd)
}

// findStoreDeck selects a store deck by its position in 'store decks' or by name
func findStoreDeck(ctx context.Context, ref string) (*deck.Deck, error) {
	decks, err := newCatalog().ListDecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load the store: %w", err)
	}

	if i, err := strconv.Atoi(ref); err == nil {
		if i < 0 || i >= len(decks) {
			return nil, fmt.Errorf("no store deck numbered %d", i)
		}
		return decks[i], nil
	}
	for _, d := range decks {
		if d.Name == ref || config.Slug(d.Name) == config.Slug(ref) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no store deck named %q", ref)
}
