package generator

import (
	"fmt"
	"strings"

	"github.com/retroverse-studios/reality-reigns/internal/card"
)

const (
	statsTemperature  = 1.0
	promptTemperature = 0.9
)

// schemaInstruction describes the interchange format the reply must use
const schemaInstruction = `Reply with a single JSON object and nothing else, shaped as:
{
  "name": string,            // a cool, thematic title for this deck/story
  "description": string,     // a brief, one-sentence synopsis
  "cards": [
    {
      "prompt": string,      // the scenario, a single concise paragraph
      "imageUrl": string,    // optional
      "leftChoice": Choice,
      "rightChoice": Choice
    }
  ]
}
where Choice is:
{
  "text": string,            // brief
  "effects": {"Power": int, "Wealth": int, "People": int, "Knowledge": int},
  "nextCardIndex": int,      // optional 0-based card to jump to; omit to continue sequentially
  "soundUrl": string         // optional
}`

// buildPrompt returns the user message and sampling temperature for a request
func buildPrompt(req Request) (string, float32) {
	r := req.Reality
	var sb strings.Builder

	if strings.TrimSpace(req.StoryPrompt) != "" {
		fmt.Fprintf(&sb, "A story creator wants a deck of %d cards for the game based on this high-level prompt: %q.\n", req.Size, req.StoryPrompt)
		fmt.Fprintf(&sb, "Generate a full, unique, and challenging deck of %d scenario cards that follows the creator's prompt.\n", req.Size)
		sb.WriteString("Give the generated deck a cool, thematic name based on the prompt, and use the prompt itself as the deck's description.\n")
		fmt.Fprintf(&sb, "Create a branching narrative using the 'nextCardIndex' property on choices to make the story interactive and replayable. "+
			"Make sure jumps are valid (within the 0 to %d range). The final card in the array (index %d) should be the 'win' or final ending card.\n",
			req.Size-1, req.Size-1)
	} else {
		fmt.Fprintf(&sb, "The player is starting a new game with this situation: %s.\n", statsSummary(req))
		fmt.Fprintf(&sb, "Generate a full, unique, and challenging deck of %d scenario cards for the game.\n", req.Size)
		sb.WriteString("Give the deck a cool, thematic name and a one-sentence synopsis.\n")
		sb.WriteString("Optionally create branching narratives by setting the 'nextCardIndex' property on choices to jump to other cards. " +
			"If you create branches, ensure they create an interesting, potentially looping story. The final card in the deck is the win condition.\n")
	}

	sb.WriteString("The choices should have plausible but non-obvious consequences.\n")
	sb.WriteString("Stat changes should generally be between -35 and +35.\n")
	fmt.Fprintf(&sb, "Ensure the prompts are engaging, varied, and fit the %s theme. Do not repeat scenarios within the deck.\n", r.Name)
	for _, stat := range card.AllStats {
		fmt.Fprintf(&sb, "The %s stat is named %s.\n", stat, r.StatName(stat))
	}
	sb.WriteString("Optionally, you can provide an image URL for each card that fits the scenario.\n")
	sb.WriteString("Optionally, you can provide a sound effect URL for each choice.\n")

	if strings.TrimSpace(req.StoryPrompt) != "" {
		return sb.String(), promptTemperature
	}
	return sb.String(), statsTemperature
}

func statsSummary(req Request) string {
	parts := make([]string, 0, card.StatCount)
	for _, stat := range card.AllStats {
		parts = append(parts, fmt.Sprintf("%s: %d", req.Reality.StatName(stat), req.Stats.Get(stat)))
	}
	return strings.Join(parts, ", ")
}
