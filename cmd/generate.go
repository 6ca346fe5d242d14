package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/generator"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck with a language model",
	Long: `Generate asks the configured backend (OpenAI or a local Ollama server) to write
a deck for a reality.

Without --prompt the deck opens a new game from the configured baseline stats.
With --prompt it follows your story idea and branches with jump targets.

The API key is read from REIGNS_API_KEY.

Examples:
  reigns generate --reality space
  reigns generate --prompt "A heist on a generation ship" --size 12
  reigns generate --prompt "Court intrigue" --out ./court.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		realityID, _ := cmd.Flags().GetString("reality")
		prompt, _ := cmd.Flags().GetString("prompt")
		size, _ := cmd.Flags().GetInt("size")
		out, _ := cmd.Flags().GetString("out")

		r, err := resolveReality(realityID)
		if err != nil {
			return err
		}

		gen, err := newGenerator()
		if err != nil {
			return err
		}

		req := generator.Request{Reality: r, StoryPrompt: prompt, Size: size}
		if prompt == "" {
			stats := cfg.Baseline.Stats()
			req.Stats = &stats
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Printf("Generating a deck for %s...\n", r.Name)
		d, err := generate(ctx, gen, req)
		if err != nil {
			return err
		}

		if out != "" {
			if err := deck.SaveFile(out, d); err != nil {
				return err
			}
			fmt.Printf("Saved %q (%d cards) to %s\n", d.Name, d.Len(), out)
			return nil
		}
		return saveNewDeck(d, d.Name)
	},
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("reality", "r", "", "Reality to write for (defaults to the configured reality)")
	generateCmd.Flags().StringP("prompt", "p", "", "Story idea for a branching deck")
	generateCmd.Flags().Int("size", 0, "Number of cards (defaults to generator.deck_size)")
	generateCmd.Flags().StringP("out", "o", "", "Write to this file instead of the deck library")
}

func generate(ctx context.Context, gen generator.Generator, req generator.Request) (*deck.Deck, error) {
	d, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if d.Name == "" && req.StoryPrompt != "" {
		d.Name = truncate(req.StoryPrompt, 40)
	}
	if d.Description == "" {
		d.Description = req.StoryPrompt
	}
	return d, nil
}
