package session

import (
	"errors"
	"fmt"

	"github.com/retroverse-studios/reality-reigns/internal/deck"
)

var (
	// ErrStaleLoad is returned when a load finishes after the session was reset or reloaded
	ErrStaleLoad = errors.New("load result discarded: session has moved on")
	// ErrNotLoaded is returned when playing before a deck was loaded
	ErrNotLoaded = errors.New("no deck loaded")
	// ErrFinished is returned when playing after a WIN or LOSS
	ErrFinished = errors.New("playthrough is over")
	// ErrStepBudget is returned when the configured step budget is spent
	ErrStepBudget = errors.New("step budget exhausted")
	// ErrNoRetry is returned when a generator retry is not on offer
	ErrNoRetry = errors.New("retry with generator is not available")
)

// Source says where a deck came from
type Source int

const (
	SourceNone Source = iota
	SourceEmbedded
	SourceURL
	SourceGenerator
	SourceImport
)

func (s Source) String() string {
	switch s {
	case SourceEmbedded:
		return "embedded"
	case SourceURL:
		return "url"
	case SourceGenerator:
		return "generator"
	case SourceImport:
		return "import"
	default:
		return "none"
	}
}

// ErrorKind classifies a failed load
type ErrorKind int

const (
	// KindInvalidDeck means a deck arrived but was empty or failed shape checks
	KindInvalidDeck ErrorKind = iota
	// KindTransport means the source itself could not be reached
	KindTransport
)

func (k ErrorKind) String() string {
	if k == KindTransport {
		return "transport"
	}
	return "invalid_deck"
}

// LoadError reports a failed deck acquisition and the recovery on offer
type LoadError struct {
	Kind                  ErrorKind
	Source                Source
	CanRetryWithGenerator bool
	Err                   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading deck from %s failed (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text for the error
func (e *LoadError) Message() string {
	switch {
	case e.Source == SourceGenerator && e.Kind == KindTransport:
		return "The connection to the AI failed. We cannot generate a new reality at this time."
	case e.Kind == KindInvalidDeck:
		return "The received deck data was empty or invalid."
	default:
		return e.Err.Error()
	}
}

func newLoadError(source Source, err error, canRetry bool) *LoadError {
	kind := KindTransport
	if errors.Is(err, deck.ErrEmptyDeck) || errors.Is(err, deck.ErrInvalidDeck) || errors.Is(err, deck.ErrParse) {
		kind = KindInvalidDeck
	}
	return &LoadError{Kind: kind, Source: source, CanRetryWithGenerator: canRetry, Err: err}
}
