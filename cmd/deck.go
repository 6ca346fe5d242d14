package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage decks in your deck library",
	Long: `Commands for managing and editing decks in your deck library.

Every edit loads the deck, applies the change to a copy and writes the copy
back, so a failed edit never leaves a half-written deck.`,
}

// deckListCmd represents the deck list command
var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List decks in your deck library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetDeckLibraryPath()
		if resolved, err := filepath.EvalSymlinks(libraryPath); err == nil {
			libraryPath = resolved
		}

		// Check if deck library exists
		if _, err := os.Stat(libraryPath); os.IsNotExist(err) {
			fmt.Printf("Deck library at %s does not exist.\n", libraryPath)
			fmt.Println("Run 'reigns deck init' to create it.")
			return nil
		}

		entries, err := os.ReadDir(libraryPath)
		if err != nil {
			return fmt.Errorf("error reading deck library: %w", err)
		}

		found := 0
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
				continue
			}

			d, err := deck.LoadFile(filepath.Join(libraryPath, entry.Name()))
			if err != nil {
				// Not a valid deck, skip
				log.Debug("skipping library entry", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}

			found++
			name := strings.TrimSuffix(entry.Name(), ".json")
			fmt.Printf("  %s (%s, %d cards)\n", name, d.Name, d.Len())
		}

		if found == 0 {
			fmt.Println("No decks found in your deck library.")
			fmt.Println("Import one with 'reigns deck import' or generate one with 'reigns generate'.")
		}
		return nil
	},
}

// deckInitCmd represents the deck init command
var deckInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the deck library",
	RunE: func(cmd *cobra.Command, args []string) error {
		libraryPath := config.GetDeckLibraryPath()

		// Create the deck library directory if it doesn't exist
		if err := os.MkdirAll(libraryPath, 0755); err != nil {
			return fmt.Errorf("error creating deck library: %w", err)
		}
		if err := os.MkdirAll(config.GetRealitiesPath(), 0755); err != nil {
			return fmt.Errorf("error creating realities directory: %w", err)
		}

		fmt.Println("Deck library initialized at:", libraryPath)
		fmt.Println("Reality files go in:", config.GetRealitiesPath())
		fmt.Println("Config file initialized at:", config.GetConfigFilePath())
		return nil
	},
}

var deckImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a deck file into your deck library",
	Long: `Import decodes a deck file and copies it into your deck library. Both the
wrapped form ({"name", "description", "cards"}) and a bare array of cards are
accepted. Nothing is written unless the whole file decodes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deck.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = d.Name
		}
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		if d.Name == "" {
			d.Name = name
		}

		return saveNewDeck(d, name)
	},
}

var deckExportCmd = &cobra.Command{
	Use:   "export [deck] [file]",
	Short: "Export a deck as interchange JSON",
	Long:  `Export writes a deck in the wrapped interchange format. Use "-" or omit the file to write to stdout.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}

		if len(args) == 1 || args[1] == "-" {
			data, err := deck.Encode(d)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if err := deck.SaveFile(args[1], d); err != nil {
			return err
		}
		fmt.Printf("Exported %d cards to %s\n", d.Len(), args[1])
		return nil
	},
}

var deckAddCardCmd = &cobra.Command{
	Use:   "add-card [deck]",
	Short: "Append a card to a deck",
	Long: `Add-card appends a card. Without flags the card has a placeholder prompt and
two choices, "Option A" and "Option B", that change nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, path, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}

		c := card.Blank()
		if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
			c.Prompt = prompt
		}
		if text, _ := cmd.Flags().GetString("left"); text != "" {
			c.LeftChoice.Text = text
		}
		if text, _ := cmd.Flags().GetString("right"); text != "" {
			c.RightChoice.Text = text
		}
		if image, _ := cmd.Flags().GetString("image"); image != "" {
			c.ImageURL = image
		}

		out := deck.AddCard(d, c)
		if err := deck.SaveFile(path, out); err != nil {
			return err
		}
		fmt.Printf("Added card %d to %s\n", out.Len()-1, path)
		return nil
	},
}

var deckRemoveCardCmd = &cobra.Command{
	Use:   "rm-card [deck] [index]",
	Short: "Remove a card from a deck",
	Long: `Rm-card removes the card at index. Later cards shift down by one; explicit
jump targets are not renumbered, so run 'reigns validate' afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, path, err := loadDeckArg(args[0])
		if err != nil {
			return err
		}
		index, err := parseIndex(d, args[1])
		if err != nil {
			return err
		}
		if d.Len() == 1 {
			return fmt.Errorf("cannot remove the last card of a deck")
		}

		out, err := deck.RemoveCard(d, index)
		if err != nil {
			return err
		}
		if err := deck.SaveFile(path, out); err != nil {
			return err
		}
		fmt.Printf("Removed card %d from %s (%d cards left)\n", index, path, out.Len())
		return nil
	},
}

var deckSetNextCmd = &cobra.Command{
	Use:   "set-next [deck] [index] [left|right] [target]",
	Short: "Make a choice jump to another card",
	Long: `Set-next sets the explicit jump target of one choice. Targets past the last
card win the game and negative targets lose it; neither is shown in the graph view.`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid target %q", args[3])
		}
		return editTarget(args[0], args[1], args[2], &target)
	},
}

var deckClearNextCmd = &cobra.Command{
	Use:   "clear-next [deck] [index] [left|right]",
	Short: "Make a choice advance to the following card",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editTarget(args[0], args[1], args[2], nil)
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckInitCmd)
	deckCmd.AddCommand(deckImportCmd)
	deckCmd.AddCommand(deckExportCmd)
	deckCmd.AddCommand(deckAddCardCmd)
	deckCmd.AddCommand(deckRemoveCardCmd)
	deckCmd.AddCommand(deckSetNextCmd)
	deckCmd.AddCommand(deckClearNextCmd)

	deckImportCmd.Flags().StringP("name", "n", "", "Library name for the deck (defaults to the deck's name)")

	deckAddCardCmd.Flags().String("prompt", "", "Scenario text")
	deckAddCardCmd.Flags().String("left", "", "Left choice text")
	deckAddCardCmd.Flags().String("right", "", "Right choice text")
	deckAddCardCmd.Flags().String("image", "", "Image reference")
}

func editTarget(deckArg, indexArg, sideArg string, target *int) error {
	d, path, err := loadDeckArg(deckArg)
	if err != nil {
		return err
	}
	index, err := parseIndex(d, indexArg)
	if err != nil {
		return err
	}
	side, err := card.ParseSide(sideArg)
	if err != nil {
		return err
	}

	out, err := deck.SetNextTarget(d, index, side, target)
	if err != nil {
		return err
	}
	if err := deck.SaveFile(path, out); err != nil {
		return err
	}

	if target == nil {
		fmt.Printf("Card %d %s choice now advances to the next card\n", index, side)
		return nil
	}
	fmt.Printf("Card %d %s choice now jumps to %d\n", index, side, *target)
	if *target < 0 || *target >= out.Len() {
		colorize.Yellow("Target %d is outside the deck and will not appear in the graph view.", *target)
	}
	return nil
}

// saveNewDeck writes d into the library under name, refusing to overwrite
func saveNewDeck(d *deck.Deck, name string) error {
	path := config.LibraryDeckPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("a deck named %q already exists at %s", config.Slug(name), path)
	}
	if err := deck.SaveFile(path, d); err != nil {
		return err
	}
	fmt.Printf("Saved %q (%d cards) to %s\n", d.Name, d.Len(), path)
	return nil
}
