// Package graph converts between a deck's index-based jump targets and the
// node/edge view used by the visual editor.
//
// The deck is always the source of truth. A projection is derived, never
// persisted, and edits made on it are routed back to the deck with Connect,
// Disconnect or Apply, each of which returns a new deck.
package graph

import (
	"fmt"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
)

// Node is one card in the projection
type Node struct {
	Index     int
	Prompt    string
	LeftText  string
	RightText string
	Start     bool // The first card of the deck
}

// ID returns the node identifier used by graph renderers
func (n Node) ID() string {
	return fmt.Sprintf("%d", n.Index)
}

// Edge is an explicit, in-range jump from one choice to a card
type Edge struct {
	Source int
	Side   card.Side
	Target int
}

// ID returns a stable identifier for the edge
func (e Edge) ID() string {
	return fmt.Sprintf("e-%d-%d-%s", e.Source, e.Target, e.Side)
}

// HiddenTarget is an explicit target that the projection cannot draw
// because it is negative or past the end of the deck
type HiddenTarget struct {
	Source int
	Side   card.Side
	Target int
}

// Graph is the projection of a deck
type Graph struct {
	Nodes  []Node
	Edges  []Edge
	Hidden []HiddenTarget
}

// EdgeFrom returns the edge leaving (source, side), if any
func (g Graph) EdgeFrom(source int, side card.Side) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Side == side {
			return e, true
		}
	}
	return Edge{}, false
}

// Project builds the node/edge view of a deck. Explicit targets outside
// [0, len) produce no edge and are reported in Hidden instead.
func Project(d *deck.Deck) Graph {
	g := Graph{Nodes: make([]Node, 0, d.Len())}
	for i := 0; i < d.Len(); i++ {
		c := d.Cards[i]
		g.Nodes = append(g.Nodes, Node{
			Index:     i,
			Prompt:    c.Prompt,
			LeftText:  c.LeftChoice.Text,
			RightText: c.RightChoice.Text,
			Start:     i == 0,
		})

		for _, side := range []card.Side{card.Left, card.Right} {
			target, ok := c.Choice(side).NextTarget()
			if !ok {
				continue
			}
			if inRange(d, target) {
				g.Edges = append(g.Edges, Edge{Source: i, Side: side, Target: target})
			} else {
				g.Hidden = append(g.Hidden, HiddenTarget{Source: i, Side: side, Target: target})
			}
		}
	}
	return g
}

// Connect returns a new deck whose (source, side) choice targets target.
// The target is not range-checked. An unknown source leaves the deck unchanged.
func Connect(d *deck.Deck, source int, side card.Side, target int) *deck.Deck {
	out, err := deck.SetNextTarget(d, source, side, &target)
	if err != nil {
		return d.Clone()
	}
	return out
}

// Disconnect returns a new deck whose (source, side) choice has no explicit
// target, reverting it to sequential advance. An unknown source leaves the deck unchanged.
func Disconnect(d *deck.Deck, source int, side card.Side) *deck.Deck {
	out, err := deck.SetNextTarget(d, source, side, nil)
	if err != nil {
		return d.Clone()
	}
	return out
}

// Apply re-derives a deck from an edited graph. Every choice with an edge is
// connected to the edge's target; every choice whose in-range target has no edge
// any more is disconnected. Hidden targets are left untouched.
func Apply(d *deck.Deck, g Graph) *deck.Deck {
	out := d.Clone()
	for i := 0; i < out.Len(); i++ {
		for _, side := range []card.Side{card.Left, card.Right} {
			if e, ok := g.EdgeFrom(i, side); ok {
				out = Connect(out, i, side, e.Target)
				continue
			}
			target, ok := out.Cards[i].Choice(side).NextTarget()
			if ok && inRange(out, target) {
				out = Disconnect(out, i, side)
			}
		}
	}
	return out
}

func inRange(d *deck.Deck, target int) bool {
	return target >= 0 && target < d.Len()
}
