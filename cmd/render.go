package cmd

import (
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/retroverse-studios/reality-reigns/internal/ansiart"
	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/engine"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

const statBarWidth = 20

// terminalWidth returns the width of stdout, 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// statBar draws one stat as a coloured gauge. Values near either boundary are red.
func statBar(name string, value int) string {
	filled := value * statBarWidth / card.MaxStatValue
	bar := strings.Repeat("█", filled) + strings.Repeat("░", statBarWidth-filled)

	paint := colorize.New(colorize.FgGreen).SprintFunc()
	switch {
	case value <= 20 || value >= 80:
		paint = colorize.New(colorize.FgRed).SprintFunc()
	case value <= 35 || value >= 65:
		paint = colorize.New(colorize.FgYellow).SprintFunc()
	}
	return fmt.Sprintf("%-12s %s %3d", name, paint(bar), value)
}

// statLines renders all four stats using the reality's display names
func statLines(r *reality.Reality, stats card.Stats) []string {
	lines := make([]string, 0, card.StatCount)
	for _, stat := range card.AllStats {
		lines = append(lines, statBar(r.StatName(stat), stats.Get(stat)))
	}
	return lines
}

// effectsSummary lists a choice's non-zero deltas, e.g. "Credits +10, Influence -5"
func effectsSummary(r *reality.Reality, e card.Effects) string {
	var parts []string
	for _, stat := range card.AllStats {
		if d := e.Delta(stat); d != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", r.StatName(stat), d))
		}
	}
	if len(parts) == 0 {
		return "no effect"
	}
	return strings.Join(parts, ", ")
}

// targetSummary describes where a choice leads
func targetSummary(c card.Choice, index, size int) string {
	next, ok := c.NextTarget()
	switch {
	case !ok && index+1 >= size:
		return "→ end"
	case !ok:
		return "→ next"
	case next < 0:
		return fmt.Sprintf("→ %d (void)", next)
	case next >= size:
		return fmt.Sprintf("→ %d (end)", next)
	}
	return fmt.Sprintf("→ %d", next)
}

// cardArt renders the card image when it is a local file, "" otherwise
func cardArt(c card.Card) string {
	if !ansiart.IsLocal(c.ImageURL) {
		return ""
	}
	art, err := ansiart.NewRenderer(config.GetCacheDir()).Render(c.ImageURL)
	if err != nil {
		log.Debug("no art for card", zap.String("image", c.ImageURL), zap.Error(err))
		return ""
	}
	return art
}

// cardInfo builds the text block shown next to a card's art
func cardInfo(r *reality.Reality, c card.Card, index, size int, width int, spoilers bool) []string {
	var info []string
	info = append(info, colorize.CyanString("Node: ")+colorize.HiWhiteString("%d / %d", index+1, size))
	info = append(info, "")
	info = append(info, ansiart.WrapText(c.Prompt, width)...)
	info = append(info, "")

	for _, side := range []card.Side{card.Left, card.Right} {
		choice := c.Choice(side)
		key := "← "
		if side == card.Right {
			key = "→ "
		}
		info = append(info, colorize.CyanString(key)+colorize.HiWhiteString(choice.Text))
		if spoilers {
			info = append(info, "   "+colorize.HiBlackString("%s %s",
				effectsSummary(r, choice.Effects), targetSummary(choice, index, size)))
		}
	}
	return info
}

// displayCard prints a card with its art on the left and the text on the right
func displayCard(r *reality.Reality, c card.Card, index, size int, spoilers bool) {
	art := cardArt(c)
	width := terminalWidth()
	infoWidth := width - 4
	if art != "" {
		infoWidth = width - ansiart.DefaultWidth - 8
	}
	if infoWidth < 20 {
		infoWidth = 20
	}

	fmt.Println()
	fmt.Print(ansiart.SideBySide(art, cardInfo(r, c, index, size, infoWidth, spoilers), 4))
	fmt.Println()
}

// displayVerdict prints the end of a playthrough in the reality's words
func displayVerdict(r *reality.Reality, result engine.Result) {
	fmt.Println()
	if result.Verdict == engine.Win {
		colorize.New(colorize.FgGreen, colorize.Bold).Println("WIN")
	} else {
		colorize.New(colorize.FgRed, colorize.Bold).Println("GAME OVER")
	}
	fmt.Println(r.Narrate(result))
	fmt.Println()
	for _, line := range statLines(r, result.Stats) {
		fmt.Println("  " + line)
	}
	fmt.Println()
}
