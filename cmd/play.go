package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
	"github.com/retroverse-studios/reality-reigns/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a reality",
	Long: `Play starts a playthrough in a reality. The deck comes from the reality's
embedded deck file, its deck URL, or the generator, in that order.

Use --deck to play a deck from your library or a file instead.

Keys: ← or a chooses left, → or d chooses right, i imports a deck file
mid-game, q quits.

Examples:
  reigns play
  reigns play --reality mystical
  reigns play --deck ./my-story.json --spoilers`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		realityID, _ := cmd.Flags().GetString("reality")
		deckName, _ := cmd.Flags().GetString("deck")
		spoilers, _ := cmd.Flags().GetBool("spoilers")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		if maxSteps < 0 {
			maxSteps = cfg.MaxSteps
		}

		r, err := resolveReality(realityID)
		if err != nil {
			return err
		}

		gen, err := newGenerator()
		if err != nil {
			// Decks from files and URLs still play without a generator
			log.Warn("generator unavailable", zap.Error(err))
		}

		sess, err := session.New(session.Config{
			Generator: gen,
			Fetcher:   newCatalog(),
			Baseline:  cfg.Baseline.Stats(),
			MaxSteps:  maxSteps,
			Logger:    log.Named("session"),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		in := newInput()
		if err := loadForPlay(ctx, sess, r, deckName, in); err != nil {
			return err
		}
		return playLoop(sess, r, in, spoilers, maxSteps)
	},
}

func init() {
	RootCmd.AddCommand(playCmd)

	playCmd.Flags().StringP("reality", "r", "", "Reality to play (defaults to the configured reality)")
	playCmd.Flags().StringP("deck", "d", "", "Play a deck from your deck library or a path to a deck file")
	playCmd.Flags().Bool("spoilers", false, "Show each choice's effects and target")
	playCmd.Flags().Int("max-steps", -1, "Stop after this many choices (0 for unlimited, default from config)")
}

func loadForPlay(ctx context.Context, sess *session.Session, r *reality.Reality, deckName string, in *input) error {
	if deckName != "" {
		path, err := config.GetDeckPath(deckName)
		if err != nil {
			return err
		}
		token := sess.BeginLoad(r)
		d, err := deck.LoadFile(path)
		return sess.CompleteLoad(token, d, session.SourceImport, err)
	}

	fmt.Printf("Entering %s...\n", colorize.HiWhiteString(r.Name))
	err := sess.Load(ctx, r)

	var le *session.LoadError
	if !errors.As(err, &le) {
		return err
	}
	colorize.Red("%s", le.Message())
	if !le.CanRetryWithGenerator || !in.confirm("Generate a new deck with the AI instead? [y/N] ") {
		return err
	}

	fmt.Println("Contacting the generator...")
	err = sess.RetryWithGenerator(ctx)
	if errors.As(err, &le) {
		colorize.Red("%s", le.Message())
	}
	return err
}

func playLoop(sess *session.Session, r *reality.Reality, in *input, spoilers bool, maxSteps int) error {
	log.Debug("playthrough ready",
		zap.String("session_id", sess.ID()),
		zap.String("source", sess.Source().String()),
	)
	if d := sess.Deck(); d.Name != "" {
		fmt.Printf("%s  %s\n", colorize.HiWhiteString(d.Name), colorize.HiBlackString(d.Description))
	}

	for {
		c, ok := sess.Card()
		if !ok {
			return nil
		}
		state := sess.State()

		fmt.Println()
		for _, line := range statLines(r, state.Stats) {
			fmt.Println("  " + line)
		}
		displayCard(r, c, state.Index, sess.Deck().Len(), spoilers)
		fmt.Println(colorize.HiBlackString("  ←/a left   →/d right   i import   q quit"))

		act, err := in.next()
		if err != nil {
			return err
		}

		switch act {
		case actQuit:
			return nil
		case actImport:
			importDuringPlay(sess, in)
		case actLeft, actRight:
			side := card.Left
			if act == actRight {
				side = card.Right
			}
			result, err := sess.Choose(side)
			if errors.Is(err, session.ErrStepBudget) {
				colorize.Yellow("The story stops after %d choices.", maxSteps)
				return nil
			}
			if err != nil {
				return err
			}
			if !result.Over() {
				continue
			}

			displayVerdict(r, result)
			if !in.confirm("Play again? [y/N] ") {
				return nil
			}
			if err := sess.Restart(); err != nil {
				return err
			}
		}
	}
}

// importDuringPlay replaces the deck mid-game; a bad file keeps the current game going
func importDuringPlay(sess *session.Session, in *input) {
	path := in.readLine("Deck file to import: ")
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err == nil {
		err = sess.Import(data)
	}
	if err != nil {
		colorize.Red("Import failed, the current deck is unchanged: %v", err)
		return
	}
	colorize.Green("Imported %q, starting over.", sess.Deck().Name)
}

type action int

const (
	actNone action = iota
	actLeft
	actRight
	actImport
	actQuit
)

// input reads single keys from a terminal, or whole lines when stdin is piped
type input struct {
	fd     int
	raw    bool
	reader *bufio.Reader
}

func newInput() *input {
	fd := int(os.Stdin.Fd())
	return &input{fd: fd, raw: term.IsTerminal(fd), reader: bufio.NewReader(os.Stdin)}
}

func (in *input) next() (action, error) {
	if !in.raw {
		line, err := in.reader.ReadString('\n')
		if err != nil && line == "" {
			// EOF on piped input ends the game
			return actQuit, nil
		}
		return lineAction(line), nil
	}

	state, err := term.MakeRaw(in.fd)
	if err != nil {
		return actNone, fmt.Errorf("error setting terminal to raw mode: %w", err)
	}
	defer term.Restore(in.fd, state)

	buf := make([]byte, 3)
	n, err := os.Stdin.Read(buf)
	if err != nil {
		return actNone, fmt.Errorf("error reading key: %w", err)
	}
	return keyAction(buf[:n]), nil
}

// keyAction maps a raw key press, including arrow escape sequences
func keyAction(key []byte) action {
	if len(key) == 3 && key[0] == 0x1b && key[1] == '[' {
		switch key[2] {
		case 'D':
			return actLeft
		case 'C':
			return actRight
		}
		return actNone
	}
	if len(key) == 0 {
		return actNone
	}
	switch key[0] {
	case 'a', 'h':
		return actLeft
	case 'd', 'l':
		return actRight
	case 'i':
		return actImport
	case 'q', 0x03, 0x04: // q, ctrl-c, ctrl-d
		return actQuit
	}
	return actNone
}

// lineAction maps a typed command
func lineAction(line string) action {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case "q", "quit", "exit":
		return actQuit
	case "i", "import":
		return actImport
	}
	side, err := card.ParseSide(word)
	if err != nil {
		return actNone
	}
	if side == card.Right {
		return actRight
	}
	return actLeft
}

func (in *input) readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := in.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func (in *input) confirm(prompt string) bool {
	answer := strings.ToLower(in.readLine(prompt))
	return answer == "y" || answer == "yes"
}
