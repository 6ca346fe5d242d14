// Package generator asks a language model to author whole decks.
//
// Generation is the only slow, fallible way of acquiring a deck. Every failure,
// including a reply that decodes to an empty or malformed deck, is reported as
// ErrGenerationFailed and never retried here.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

// ErrGenerationFailed wraps every generation failure
var ErrGenerationFailed = errors.New("deck generation failed")

// DefaultDeckSize is used when a request does not set Size
const DefaultDeckSize = 20

// Request describes the deck to generate. Exactly one of Stats and StoryPrompt
// is expected: Stats asks for an opening deck for that situation, StoryPrompt
// asks for a branching deck following the author's idea.
type Request struct {
	Reality     *reality.Reality
	Stats       *card.Stats
	StoryPrompt string
	Size        int
}

// Generator produces decks
type Generator interface {
	Generate(ctx context.Context, req Request) (*deck.Deck, error)
}

// completer sends one system+user exchange to a model and returns the reply text
type completer interface {
	complete(ctx context.Context, system, user string, temperature float32) (string, error)
	name() string
}

type llmGenerator struct {
	backend completer
	size    int
	logger  *zap.Logger
}

// New creates the generator selected by cfg.Backend
func New(cfg config.GeneratorConfig, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var backend completer
	var err error
	switch strings.ToLower(cfg.Backend) {
	case "openai", "":
		backend, err = newOpenAIBackend(cfg)
	case "ollama":
		backend, err = newOllamaBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown generator backend: %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("generator created",
		zap.String("backend", backend.name()),
		zap.String("model", cfg.Model),
		zap.String("base_url", cfg.BaseURL),
	)
	return newLLMGenerator(backend, cfg.DeckSize, logger), nil
}

func newLLMGenerator(backend completer, size int, logger *zap.Logger) *llmGenerator {
	if size <= 0 {
		size = DefaultDeckSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &llmGenerator{backend: backend, size: size, logger: logger}
}

// Generate builds the prompt, calls the model and decodes its reply
func (g *llmGenerator) Generate(ctx context.Context, req Request) (*deck.Deck, error) {
	if req.Reality == nil {
		return nil, fmt.Errorf("%w: no reality given", ErrGenerationFailed)
	}
	if req.Stats == nil && strings.TrimSpace(req.StoryPrompt) == "" {
		return nil, fmt.Errorf("%w: either stats or a story prompt is required", ErrGenerationFailed)
	}
	if req.Size <= 0 {
		req.Size = g.size
	}

	user, temperature := buildPrompt(req)
	system := req.Reality.SystemInstruction + "\n\n" + schemaInstruction

	start := time.Now()
	g.logger.Info("requesting deck",
		zap.String("backend", g.backend.name()),
		zap.String("reality", req.Reality.ID),
		zap.Int("size", req.Size),
		zap.Bool("from_prompt", req.StoryPrompt != ""),
	)

	reply, err := g.backend.complete(ctx, system, user, temperature)
	if err != nil {
		g.logger.Error("generation request failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	d, err := deck.Decode([]byte(stripFences(reply)))
	if err != nil {
		g.logger.Warn("generator returned an unusable deck",
			zap.Int("reply_bytes", len(reply)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.Info("deck generated",
		zap.String("name", d.Name),
		zap.Int("cards", d.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return d, nil
}

// stripFences removes a markdown code fence some models wrap JSON in
func stripFences(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
