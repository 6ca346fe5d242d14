package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/graph"
)

func target(i int) *int {
	return &i
}

func node(prompt string, left, right *int) card.Card {
	return card.Card{
		Prompt:      prompt,
		LeftChoice:  card.Choice{Text: prompt + "-left", Next: left},
		RightChoice: card.Choice{Text: prompt + "-right", Next: right},
	}
}

// explicitTargets lists every explicit target keyed by source and side
func explicitTargets(d *deck.Deck) map[[2]int]int {
	out := make(map[[2]int]int)
	for i, c := range d.Cards {
		for _, side := range []card.Side{card.Left, card.Right} {
			if t, ok := c.Choice(side).NextTarget(); ok {
				out[[2]int{i, int(side)}] = t
			}
		}
	}
	return out
}

type GraphTestSuite struct {
	suite.Suite
	deck *deck.Deck
}

func (s *GraphTestSuite) SetupTest() {
	s.deck = deck.New("Branches", "",
		node("start", target(2), nil),
		node("middle", target(0), target(7)),
		node("end", nil, target(-1)),
	)
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

func (s *GraphTestSuite) TestProject() {
	g := graph.Project(s.deck)

	s.Require().Len(g.Nodes, 3)
	s.True(g.Nodes[0].Start)
	s.False(g.Nodes[1].Start)
	s.Equal("middle", g.Nodes[1].Prompt)
	s.Equal("middle-right", g.Nodes[1].RightText)
	s.Equal("1", g.Nodes[1].ID())

	s.Equal([]graph.Edge{
		{Source: 0, Side: card.Left, Target: 2},
		{Source: 1, Side: card.Left, Target: 0},
	}, g.Edges)

	s.Equal([]graph.HiddenTarget{
		{Source: 1, Side: card.Right, Target: 7},
		{Source: 2, Side: card.Right, Target: -1},
	}, g.Hidden)

	e, ok := g.EdgeFrom(0, card.Left)
	s.True(ok)
	s.Equal("e-0-2-left", e.ID())
	_, ok = g.EdgeFrom(0, card.Right)
	s.False(ok)
}

func (s *GraphTestSuite) TestApplyUneditedGraphIsANoOp() {
	inRange := deck.New("", "",
		node("a", target(1), target(2)),
		node("b", nil, target(0)),
		node("c", target(2), nil),
	)

	out := graph.Apply(inRange, graph.Project(inRange))
	s.Equal(explicitTargets(inRange), explicitTargets(out))
	s.Equal(inRange, out)
}

func (s *GraphTestSuite) TestHiddenTargetsSurviveProjection() {
	out := s.deck
	for i := 0; i < 3; i++ {
		out = graph.Apply(out, graph.Project(out))
	}
	s.Equal(explicitTargets(s.deck), explicitTargets(out))

	// Editing a different choice leaves the hidden ones alone
	out = graph.Connect(out, 2, card.Left, 1)
	targets := explicitTargets(out)
	s.Equal(7, targets[[2]int{1, int(card.Right)}])
	s.Equal(-1, targets[[2]int{2, int(card.Right)}])
	s.Equal(1, targets[[2]int{2, int(card.Left)}])
}

func (s *GraphTestSuite) TestApplyEditedGraph() {
	g := graph.Project(s.deck)
	g.Edges = []graph.Edge{
		{Source: 0, Side: card.Left, Target: 1},
		{Source: 2, Side: card.Left, Target: 0},
	}

	out := graph.Apply(s.deck, g)
	targets := explicitTargets(out)

	s.Equal(1, targets[[2]int{0, int(card.Left)}])
	s.Equal(0, targets[[2]int{2, int(card.Left)}])
	s.NotContains(targets, [2]int{1, int(card.Left)}, "a removed edge becomes sequential")
	s.Equal(7, targets[[2]int{1, int(card.Right)}])
	s.Equal(-1, targets[[2]int{2, int(card.Right)}])
}

func (s *GraphTestSuite) TestConnectAndDisconnect() {
	connected := graph.Connect(s.deck, 2, card.Left, 1)
	next, ok := connected.Cards[2].LeftChoice.NextTarget()
	s.True(ok)
	s.Equal(1, next)
	_, ok = s.deck.Cards[2].LeftChoice.NextTarget()
	s.False(ok, "connect returns a new deck")

	// Out-of-range targets are accepted and then hidden
	far := graph.Connect(s.deck, 0, card.Right, 50)
	next, _ = far.Cards[0].RightChoice.NextTarget()
	s.Equal(50, next)
	_, ok = graph.Project(far).EdgeFrom(0, card.Right)
	s.False(ok)

	disconnected := graph.Disconnect(s.deck, 1, card.Right)
	_, ok = disconnected.Cards[1].RightChoice.NextTarget()
	s.False(ok)
	next, _ = s.deck.Cards[1].RightChoice.NextTarget()
	s.Equal(7, next)
}

func (s *GraphTestSuite) TestUnknownSourceIsIgnored() {
	s.Equal(s.deck, graph.Connect(s.deck, 9, card.Left, 0))
	s.Equal(s.deck, graph.Disconnect(s.deck, -1, card.Left))
}

func TestProjectEmptyDeck(t *testing.T) {
	g := graph.Project(deck.New("", ""))
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.Hidden)
}

func TestConnectPreservesOtherFields(t *testing.T) {
	c := node("x", nil, nil)
	c.LeftChoice.Effects = card.Effects{}.With(card.Power, 4)
	c.LeftChoice.SoundURL = "boom.ogg"
	d := deck.New("", "", c, node("y", nil, nil))

	out := graph.Connect(d, 0, card.Left, 1)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 4, out.Cards[0].LeftChoice.Effects.Delta(card.Power))
	assert.Equal(t, "boom.ogg", out.Cards[0].LeftChoice.SoundURL)
	assert.Equal(t, "x-left", out.Cards[0].LeftChoice.Text)
}
