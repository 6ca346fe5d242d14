// Package engine resolves player choices against a deck.
//
// ApplyChoice is the single state-transition function of the game. It is pure:
// the same deck, state and side always produce the same Result, and neither the
// deck nor the caller's state is modified.
package engine

import (
	"fmt"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
)

// Verdict is the outcome of one step
type Verdict int

const (
	Active Verdict = iota
	Win
	Loss
)

func (v Verdict) String() string {
	switch v {
	case Win:
		return "WIN"
	case Loss:
		return "LOSS"
	default:
		return "ACTIVE"
	}
}

// Reason explains a LOSS: either a stat key or ReasonVoid
type Reason string

const (
	ReasonNone Reason = ""
	ReasonVoid Reason = "void"
)

// StatReason returns the reason naming a stat
func StatReason(stat card.Stat) Reason {
	return Reason(stat.String())
}

// Stat returns the stat named by the reason, if any
func (r Reason) Stat() (card.Stat, bool) {
	if r == ReasonNone || r == ReasonVoid {
		return 0, false
	}
	stat, err := card.ParseStat(string(r))
	if err != nil {
		return 0, false
	}
	return stat, true
}

// State is the traversal state of one playthrough
type State struct {
	Index int
	Stats card.Stats
}

// NewState starts a playthrough at the first card with the baseline stats
func NewState(baseline card.Stats) State {
	return State{Index: 0, Stats: baseline}
}

// Result is what one step produces.
//
// For ACTIVE, Index is the card to show next. For WIN and for a void LOSS it is
// the out-of-range target that ended the game. For a stat LOSS it is the index
// of the card whose choice caused it.
type Result struct {
	Verdict Verdict
	Reason  Reason
	Stats   card.Stats
	Index   int
}

// State returns the traversal state after this step
func (r Result) State() State {
	return State{Index: r.Index, Stats: r.Stats}
}

// Over reports whether the playthrough has ended
func (r Result) Over() bool {
	return r.Verdict != Active
}

// ApplyChoice resolves side on the card at state.Index.
// It panics if the deck is empty or the index is outside it; WIN and LOSS
// verdicts guarantee callers never reach that state.
func ApplyChoice(d *deck.Deck, state State, side card.Side) Result {
	if d.Len() == 0 {
		panic("engine: ApplyChoice called with an empty deck")
	}
	c, ok := deck.CardAt(d, state.Index)
	if !ok {
		panic(fmt.Sprintf("engine: card index %d outside deck of %d cards", state.Index, d.Len()))
	}

	choice := c.Choice(side)

	var stats card.Stats
	for _, stat := range card.AllStats {
		stats[stat] = clamp(state.Stats[stat] + saturate(choice.Effects.Delta(stat)))
	}

	// Boundary check runs on the complete update; the first stat in canonical order wins ties
	for _, stat := range card.AllStats {
		if stats[stat] == card.MinStatValue || stats[stat] == card.MaxStatValue {
			return Result{Verdict: Loss, Reason: StatReason(stat), Stats: stats, Index: state.Index}
		}
	}

	next := state.Index + 1
	if target, ok := choice.NextTarget(); ok {
		next = target
	}

	switch {
	case next >= d.Len():
		return Result{Verdict: Win, Stats: stats, Index: next}
	case next < 0:
		return Result{Verdict: Loss, Reason: ReasonVoid, Stats: stats, Index: next}
	}
	return Result{Verdict: Active, Stats: stats, Index: next}
}

func clamp(v int) int {
	if v < card.MinStatValue {
		return card.MinStatValue
	}
	if v > card.MaxStatValue {
		return card.MaxStatValue
	}
	return v
}

// saturate bounds a delta to the stat range; any larger magnitude clamps the same way
func saturate(delta int) int {
	if delta > card.MaxStatValue {
		return card.MaxStatValue
	}
	if delta < -card.MaxStatValue {
		return -card.MaxStatValue
	}
	return delta
}
