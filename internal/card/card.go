package card

import (
	"fmt"
	"strings"
)

// Stat is one of the four canonical resource axes.
// The declaration order is the canonical enumeration order.
type Stat int

const (
	Power Stat = iota
	Wealth
	People
	Knowledge
)

// StatCount is the number of canonical stats
const StatCount = 4

const (
	MinStatValue = 0
	MaxStatValue = 100
)

// AllStats lists the stats in canonical order
var AllStats = [StatCount]Stat{Power, Wealth, People, Knowledge}

var statKeys = [StatCount]string{"Power", "Wealth", "People", "Knowledge"}

// String returns the canonical key (e.g., "Power")
func (s Stat) String() string {
	if s < 0 || int(s) >= StatCount {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statKeys[s]
}

// ParseStat resolves a canonical key, case-insensitively
func ParseStat(key string) (Stat, error) {
	for i, k := range statKeys {
		if strings.EqualFold(k, key) {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stat: %s", key)
}

// Stats holds the current value of every stat, indexed by Stat
type Stats [StatCount]int

// Get returns the value of a stat
func (s Stats) Get(stat Stat) int {
	return s[stat]
}

// With returns a copy of s with stat set to value
func (s Stats) With(stat Stat, value int) Stats {
	s[stat] = value
	return s
}

// Effects maps a subset of the stats to a delta. A nil entry means no change.
type Effects struct {
	Power     *int
	Wealth    *int
	People    *int
	Knowledge *int
}

// Delta returns the delta for a stat, 0 when absent
func (e Effects) Delta(stat Stat) int {
	if p := e.ref(stat); p != nil {
		return *p
	}
	return 0
}

// Has reports whether the stat has an explicit entry
func (e Effects) Has(stat Stat) bool {
	return e.ref(stat) != nil
}

// With returns a copy of e with the stat's delta set
func (e Effects) With(stat Stat, delta int) Effects {
	v := delta
	switch stat {
	case Power:
		e.Power = &v
	case Wealth:
		e.Wealth = &v
	case People:
		e.People = &v
	case Knowledge:
		e.Knowledge = &v
	}
	return e
}

// IsZero reports whether every delta is 0 or absent
func (e Effects) IsZero() bool {
	for _, stat := range AllStats {
		if e.Delta(stat) != 0 {
			return false
		}
	}
	return true
}

func (e Effects) ref(stat Stat) *int {
	switch stat {
	case Power:
		return e.Power
	case Wealth:
		return e.Wealth
	case People:
		return e.People
	case Knowledge:
		return e.Knowledge
	}
	return nil
}

// clone deep-copies the pointer fields so edits never alias
func (e Effects) clone() Effects {
	var out Effects
	for _, stat := range AllStats {
		if p := e.ref(stat); p != nil {
			out = out.With(stat, *p)
		}
	}
	return out
}

// Side is the direction a player resolves a card in
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right"
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// ParseSide accepts "left"/"l" and "right"/"r"
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "l":
		return Left, nil
	case "right", "r":
		return Right, nil
	}
	return Left, fmt.Errorf("invalid side: %q (expected left or right)", value)
}

// Choice is one side of a card's decision
type Choice struct {
	Text     string
	Effects  Effects
	Next     *int   // Explicit next-target; nil means "advance by one"
	SoundURL string // Opaque sound asset reference
}

// NextTarget returns the explicit next-target, if any
func (c Choice) NextTarget() (int, bool) {
	if c.Next == nil {
		return 0, false
	}
	return *c.Next, true
}

// WithNext returns a copy of c whose next-target is set to target, or cleared when target is nil
func (c Choice) WithNext(target *int) Choice {
	out := c.Clone()
	out.Next = nil
	if target != nil {
		v := *target
		out.Next = &v
	}
	return out
}

// Clone returns a deep copy of the choice
func (c Choice) Clone() Choice {
	out := c
	out.Effects = c.Effects.clone()
	if c.Next != nil {
		v := *c.Next
		out.Next = &v
	}
	return out
}

// Card is one scenario unit, addressed only by its position in a deck
type Card struct {
	Prompt      string
	ImageURL    string // Opaque image reference
	LeftChoice  Choice
	RightChoice Choice
}

// Choice returns the choice for a side
func (c Card) Choice(side Side) Choice {
	if side == Right {
		return c.RightChoice
	}
	return c.LeftChoice
}

// WithChoice returns a copy of c with the side's choice replaced
func (c Card) WithChoice(side Side, choice Choice) Card {
	out := c.Clone()
	if side == Right {
		out.RightChoice = choice.Clone()
	} else {
		out.LeftChoice = choice.Clone()
	}
	return out
}

// Clone returns a deep copy of the card
func (c Card) Clone() Card {
	out := c
	out.LeftChoice = c.LeftChoice.Clone()
	out.RightChoice = c.RightChoice.Clone()
	return out
}

// Blank returns the card an editor inserts by default
func Blank() Card {
	zero := Effects{}
	for _, stat := range AllStats {
		zero = zero.With(stat, 0)
	}
	return Card{
		Prompt:      "A new scenario unfolds...",
		LeftChoice:  Choice{Text: "Option A", Effects: zero},
		RightChoice: Choice{Text: "Option B", Effects: zero.clone()},
	}
}
