package validator

import (
	"fmt"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/graph"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	Deck    *deck.Deck
	Results ValidationResults
}

func NewValidator(d *deck.Deck) *Validator {
	return &Validator{
		Deck:    d,
		Results: ValidationResults{},
	}
}

// Validate checks a deck for authoring problems. The engine plays any
// non-empty deck; everything here except an empty deck is advisory.
func Validate(d *deck.Deck) ValidationResults {
	return NewValidator(d).Validate()
}

func (v *Validator) Validate() ValidationResults {
	if v.Deck.Len() == 0 {
		v.Results.Errors = append(v.Results.Errors, "deck has no cards")
		return v.Results
	}

	v.validateMetadata()
	v.validateCards()
	v.validateTargets()
	v.validateLoops()
	v.validateReachability()

	return v.Results
}

// validateMetadata checks the optional display fields
func (v *Validator) validateMetadata() {
	if v.Deck.Name == "" {
		v.Results.Warnings = append(v.Results.Warnings, "deck has no name")
	}
	if v.Deck.Description == "" {
		v.Results.Warnings = append(v.Results.Warnings, "deck has no description")
	}
}

// validateCards checks that every card can be presented
func (v *Validator) validateCards() {
	for i, c := range v.Deck.Cards {
		if c.Prompt == "" {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("card %d has an empty prompt", i))
		}
		for _, side := range []card.Side{card.Left, card.Right} {
			if c.Choice(side).Text == "" {
				v.Results.Errors = append(v.Results.Errors,
					fmt.Sprintf("card %d: %s choice has no text", i, side))
			}
		}
	}
}

// validateTargets reports explicit targets the graph editor cannot show
func (v *Validator) validateTargets() {
	g := graph.Project(v.Deck)
	for _, h := range g.Hidden {
		outcome := "ends the game with a win"
		if h.Target < 0 {
			outcome = "ends the game with a loss to the void"
		}
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("card %d: %s choice targets %d, outside the deck (%s); it is hidden in the graph view",
				h.Source, h.Side, h.Target, outcome))
	}
}

// validateLoops warns about choices that return to their own card without
// changing any stat, which lets a player repeat the card forever
func (v *Validator) validateLoops() {
	for i, c := range v.Deck.Cards {
		for _, side := range []card.Side{card.Left, card.Right} {
			choice := c.Choice(side)
			if target, ok := choice.NextTarget(); ok && target == i && choice.Effects.IsZero() {
				v.Results.Warnings = append(v.Results.Warnings,
					fmt.Sprintf("card %d: %s choice loops back to itself with no stat change", i, side))
			}
		}
	}
}

// validateReachability warns about cards no path from the first card reaches
func (v *Validator) validateReachability() {
	n := v.Deck.Len()
	seen := make([]bool, n)
	queue := []int{0}
	seen[0] = true

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, side := range []card.Side{card.Left, card.Right} {
			next := i + 1
			if target, ok := v.Deck.Cards[i].Choice(side).NextTarget(); ok {
				next = target
			}
			if next >= 0 && next < n && !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	for i, ok := range seen {
		if !ok {
			v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf("card %d is unreachable from the first card", i))
		}
	}
}
