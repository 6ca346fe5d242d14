package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroverse-studios/reality-reigns/internal/card"
)

var (
	// ErrParse is returned when interchange data is not well-formed JSON
	ErrParse = errors.New("deck data is not valid JSON")
	// ErrInvalidDeck is returned when the data fails the minimal shape checks
	ErrInvalidDeck = errors.New("deck data is invalid")
	// ErrEmptyDeck is returned when a deck has no cards
	ErrEmptyDeck = errors.New("deck has no cards")
)

// Deck is an ordered sequence of cards plus optional display metadata.
// Decks are treated as immutable values: every structural edit returns a new Deck.
type Deck struct {
	Name        string
	Description string
	Cards       []card.Card
}

// New creates a deck from a list of cards
func New(name, description string, cards ...card.Card) *Deck {
	d := &Deck{Name: name, Description: description, Cards: make([]card.Card, 0, len(cards))}
	for _, c := range cards {
		d.Cards = append(d.Cards, c.Clone())
	}
	return d
}

// Len returns the number of cards, 0 for a nil deck
func (d *Deck) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Cards)
}

// CardAt returns the card at index, or false when the index is outside the deck
func CardAt(d *Deck, index int) (card.Card, bool) {
	if index < 0 || index >= d.Len() {
		return card.Card{}, false
	}
	return d.Cards[index], true
}

// Clone returns a deep copy of the deck
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	return New(d.Name, d.Description, d.Cards...)
}

// WithCard returns a new deck with the card at index replaced
func WithCard(d *Deck, index int, c card.Card) (*Deck, error) {
	if index < 0 || index >= d.Len() {
		return nil, fmt.Errorf("card index %d out of range (deck has %d cards)", index, d.Len())
	}
	out := d.Clone()
	out.Cards[index] = c.Clone()
	return out, nil
}

// SetNextTarget returns a new deck whose choice at (index, side) targets next.
// A nil next clears the explicit target. The target itself is not range-checked.
func SetNextTarget(d *Deck, index int, side card.Side, next *int) (*Deck, error) {
	c, ok := CardAt(d, index)
	if !ok {
		return nil, fmt.Errorf("card index %d out of range (deck has %d cards)", index, d.Len())
	}
	return WithCard(d, index, c.WithChoice(side, c.Choice(side).WithNext(next)))
}

// AddCard returns a new deck with c appended
func AddCard(d *Deck, c card.Card) *Deck {
	out := d.Clone()
	if out == nil {
		out = &Deck{}
	}
	out.Cards = append(out.Cards, c.Clone())
	return out
}

// RemoveCard returns a new deck without the card at index.
// Explicit targets of the remaining cards are left as they are.
func RemoveCard(d *Deck, index int) (*Deck, error) {
	if index < 0 || index >= d.Len() {
		return nil, fmt.Errorf("card index %d out of range (deck has %d cards)", index, d.Len())
	}
	out := &Deck{Name: d.Name, Description: d.Description, Cards: make([]card.Card, 0, d.Len()-1)}
	for i, c := range d.Cards {
		if i == index {
			continue
		}
		out.Cards = append(out.Cards, c.Clone())
	}
	return out, nil
}

// WithFallbackImages returns a new deck where every card lacking an image gets one
// from images, chosen by pick(len(images))
func WithFallbackImages(d *Deck, images []string, pick func(n int) int) *Deck {
	out := d.Clone()
	if len(images) == 0 || out == nil {
		return out
	}
	for i := range out.Cards {
		if out.Cards[i].ImageURL == "" {
			out.Cards[i].ImageURL = images[pick(len(images))]
		}
	}
	return out
}

// LoadFile loads a deck from an interchange file
func LoadFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading deck file: %w", err)
	}

	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", filepath.Base(path), err)
	}
	return d, nil
}

// SaveFile writes a deck in the wrapped interchange format
func SaveFile(path string, d *Deck) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating deck directory: %w", err)
	}

	// Write through a temp file so a failed save never leaves a truncated deck
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error writing deck file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("error replacing deck file: %w", err)
	}
	return nil
}
