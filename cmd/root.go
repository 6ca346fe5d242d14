package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/retroverse-studios/reality-reigns/internal/catalog"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/generator"
	"github.com/retroverse-studios/reality-reigns/internal/logger"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

var (
	cfg *config.Config
	log *zap.Logger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "reigns",
	Short: "Play and author branching card decks",
	Long: `Reality Reigns is a decision game played one card at a time. Every card offers
two choices that move four stats; keep them all away from 0 and 100 until the
deck runs out.

Decks are JSON files kept in your deck library (XDG_DATA_HOME/reality-reigns/decks).
They can be written by hand, generated by a language model, or imported from
the community store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			c.LogLevel = level
		}

		l, err := logger.New(logger.Config{Level: c.LogLevel, Encoding: c.LogEncoding})
		if err != nil {
			return err
		}

		cfg, log = c, l
		log.Debug("config loaded", zap.String("path", config.GetConfigFilePath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// loadRealities returns the built-in and user realities
func loadRealities() ([]*reality.Reality, error) {
	return reality.LoadAll(config.GetRealitiesPath())
}

// resolveReality finds the reality named by id, or the configured default when id is empty
func resolveReality(id string) (*reality.Reality, error) {
	realities, err := loadRealities()
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = cfg.DefaultReality
	}
	return reality.Find(realities, id)
}

// loadDeckArg resolves a deck name or path and loads it
func loadDeckArg(name string) (*deck.Deck, string, error) {
	path, err := config.GetDeckPath(name)
	if err != nil {
		return nil, "", err
	}
	d, err := deck.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	return d, path, nil
}

func newGenerator() (generator.Generator, error) {
	return generator.New(cfg.Generator, log.Named("generator"))
}

func newCatalog() catalog.Client {
	return catalog.NewClient(cfg.Catalog, log.Named("catalog"))
}

// parseIndex parses a card index argument and checks it against the deck
func parseIndex(d *deck.Deck, arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid card index %q", arg)
	}
	if _, ok := deck.CardAt(d, i); !ok {
		return 0, fmt.Errorf("card index %d out of range (deck has %d cards)", i, d.Len())
	}
	return i, nil
}
