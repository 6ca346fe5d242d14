// Package session runs one playthrough: it acquires a deck for a reality,
// owns the traversal state and feeds player choices to the engine.
//
// A session has a single writer. Deck acquisition may run on another goroutine,
// so every load is stamped with a token; a result whose token is no longer
// current (the player reset or started another load) is discarded.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/engine"
	"github.com/retroverse-studios/reality-reigns/internal/generator"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

// DeckFetcher downloads a deck referenced by URL
type DeckFetcher interface {
	FetchDeck(ctx context.Context, url string) (*deck.Deck, error)
}

// Config holds the session's collaborators
type Config struct {
	Generator generator.Generator
	Fetcher   DeckFetcher
	Baseline  card.Stats
	MaxSteps  int // 0 means unlimited
	Logger    *zap.Logger
	Pick      func(n int) int // chooses fallback images; defaults to math/rand
}

// Validate ensures the config can run a session
func (c *Config) Validate() error {
	for _, stat := range card.AllStats {
		if v := c.Baseline[stat]; v <= card.MinStatValue || v >= card.MaxStatValue {
			return fmt.Errorf("baseline %s=%d is already at a boundary", stat, v)
		}
	}
	if c.MaxSteps < 0 {
		return errors.New("max steps must not be negative")
	}
	return nil
}

// Session is one playthrough
type Session struct {
	mu sync.Mutex

	id      string
	token   uint64
	cfg     Config
	logger  *zap.Logger
	reality *reality.Reality

	deck     *deck.Deck
	source   Source
	state    engine.State
	steps    int
	last     *engine.Result
	loadErr  *LoadError
	retried  bool
	finished bool
}

// New creates an empty session
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Pick == nil {
		cfg.Pick = rand.IntN
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		cfg:    cfg,
		logger: cfg.Logger.With(zap.String("session_id", id)),
		state:  engine.NewState(cfg.Baseline),
	}, nil
}

// ID returns the session's unique identifier
func (s *Session) ID() string {
	return s.id
}

// BeginLoad starts a new acquisition for r and returns its token.
// Any load still in flight becomes stale.
func (s *Session) BeginLoad(r *reality.Reality) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.reality = r
	s.loadErr = nil
	s.retried = false
	return s.token
}

// CompleteLoad applies the outcome of the acquisition started with token.
// A stale token returns ErrStaleLoad and changes nothing.
func (s *Session) CompleteLoad(token uint64, d *deck.Deck, source Source, loadErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		s.logger.Info("discarding stale load", zap.Uint64("token", token), zap.Uint64("current", s.token))
		return ErrStaleLoad
	}

	if loadErr == nil && d.Len() == 0 {
		loadErr = deck.ErrEmptyDeck
	}
	if loadErr != nil {
		var le *LoadError
		if !errors.As(loadErr, &le) {
			le = newLoadError(source, loadErr, source == SourceURL && !s.retried)
		}
		s.loadErr = le
		s.logger.Warn("deck load failed",
			zap.String("source", le.Source.String()),
			zap.String("kind", le.Kind.String()),
			zap.Bool("can_retry", le.CanRetryWithGenerator),
			zap.Error(le.Err),
		)
		return le
	}

	var images []string
	if s.reality != nil {
		images = s.reality.ImageSet
	}
	s.start(deck.WithFallbackImages(d, images, s.cfg.Pick), source)
	return nil
}

// Load acquires a deck for r: an embedded deck file when it has cards, else the
// reality's deck URL, else the generator seeded with the baseline stats.
func (s *Session) Load(ctx context.Context, r *reality.Reality) error {
	token := s.BeginLoad(r)
	d, source, err := s.acquire(ctx, r)
	return s.CompleteLoad(token, d, source, err)
}

// RetryWithGenerator is the one-time recovery offered after a URL load failed
func (s *Session) RetryWithGenerator(ctx context.Context) error {
	s.mu.Lock()
	if s.loadErr == nil || !s.loadErr.CanRetryWithGenerator || s.retried {
		s.mu.Unlock()
		return ErrNoRetry
	}
	s.token++
	s.retried = true
	s.loadErr = nil
	token := s.token
	r := s.reality
	s.mu.Unlock()

	d, err := s.generate(ctx, r)
	return s.CompleteLoad(token, d, SourceGenerator, err)
}

func (s *Session) acquire(ctx context.Context, r *reality.Reality) (*deck.Deck, Source, error) {
	if r == nil {
		return nil, SourceNone, errors.New("no reality selected")
	}

	if r.DeckFile != "" {
		d, err := deck.LoadFile(r.DeckFile)
		if err == nil && d.Len() > 0 {
			s.logger.Info("loading embedded narrative", zap.String("file", r.DeckFile))
			return d, SourceEmbedded, nil
		}
		s.logger.Warn("embedded deck unusable, falling back", zap.String("file", r.DeckFile), zap.Error(err))
	}

	if r.DeckURL != "" {
		s.logger.Info("loading transmission", zap.String("reality", r.ID), zap.String("url", r.DeckURL))
		if s.cfg.Fetcher == nil {
			return nil, SourceURL, errors.New("no deck fetcher configured")
		}
		d, err := s.cfg.Fetcher.FetchDeck(ctx, r.DeckURL)
		return d, SourceURL, err
	}

	d, err := s.generate(ctx, r)
	return d, SourceGenerator, err
}

func (s *Session) generate(ctx context.Context, r *reality.Reality) (*deck.Deck, error) {
	if s.cfg.Generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", generator.ErrGenerationFailed)
	}
	baseline := s.cfg.Baseline
	s.logger.Info("contacting generator", zap.String("reality", r.ID))
	return s.cfg.Generator.Generate(ctx, generator.Request{Reality: r, Stats: &baseline})
}

// Import replaces the deck with interchange data and restarts the playthrough.
// On any error the current deck and state are left untouched.
func (s *Session) Import(data []byte) error {
	d, err := deck.Decode(data)
	if err != nil {
		return fmt.Errorf("could not import deck: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.loadErr = nil
	s.start(d, SourceImport)
	return nil
}

// Reset abandons the playthrough. In-flight loads become stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	s.deck = nil
	s.source = SourceNone
	s.loadErr = nil
	s.retried = false
	s.state = engine.NewState(s.cfg.Baseline)
	s.steps = 0
	s.last = nil
	s.finished = false
	s.logger.Info("session reset")
}

// Restart replays the current deck from the first card
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck == nil {
		return ErrNotLoaded
	}
	s.start(s.deck, s.source)
	return nil
}

// start must be called with mu held
func (s *Session) start(d *deck.Deck, source Source) {
	s.deck = d
	s.source = source
	s.state = engine.NewState(s.cfg.Baseline)
	s.steps = 0
	s.last = nil
	s.finished = false
	s.logger.Info("playthrough started",
		zap.String("deck", d.Name),
		zap.Int("cards", d.Len()),
		zap.String("source", source.String()),
	)
}

// Choose resolves the current card in the given direction
func (s *Session) Choose(side card.Side) (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.deck == nil:
		return engine.Result{}, ErrNotLoaded
	case s.finished:
		return *s.last, ErrFinished
	case s.cfg.MaxSteps > 0 && s.steps >= s.cfg.MaxSteps:
		s.finished = true
		return engine.Result{Verdict: engine.Active, Stats: s.state.Stats, Index: s.state.Index}, ErrStepBudget
	}

	result := engine.ApplyChoice(s.deck, s.state, side)
	s.steps++
	s.last = &result
	s.state.Stats = result.Stats
	if result.Over() {
		s.finished = true
		s.logger.Info("playthrough over",
			zap.String("verdict", result.Verdict.String()),
			zap.String("reason", string(result.Reason)),
			zap.Int("steps", s.steps),
		)
	} else {
		s.state.Index = result.Index
	}
	return result, nil
}

// Deck returns the current deck, nil before a load
func (s *Session) Deck() *deck.Deck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck
}

// Source returns where the current deck came from
func (s *Session) Source() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// State returns the current traversal state
func (s *Session) State() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Card returns the card the player is facing
func (s *Session) Card() (card.Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return card.Card{}, false
	}
	return deck.CardAt(s.deck, s.state.Index)
}

// Steps returns how many choices were made in this playthrough
func (s *Session) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

// Finished reports whether the playthrough has ended
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// LastResult returns the result of the latest choice
func (s *Session) LastResult() (engine.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return engine.Result{}, false
	}
	return *s.last, true
}

// LoadError returns the error of the latest failed load, if any
func (s *Session) LoadError() *LoadError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Reality returns the reality being played
func (s *Session) Reality() *reality.Reality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reality
}
