package deck_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
)

type InterchangeTestSuite struct {
	suite.Suite
}

func TestInterchangeSuite(t *testing.T) {
	suite.Run(t, new(InterchangeTestSuite))
}

const wrappedDeck = `{
  "name": "Neon Uprising",
  "description": "The towers are burning.",
  "cards": [
    {
      "prompt": "A fixer offers you a job.",
      "imageUrl": "art/fixer.png",
      "leftChoice": {"text": "Refuse", "effects": {"Wealth": -10}},
      "rightChoice": {"text": "Accept", "effects": {"Wealth": 15, "People": -5}, "nextCardIndex": 2, "soundUrl": "sfx/deal.ogg"}
    },
    {
      "prompt": "The job goes wrong.",
      "leftChoice": {"text": "Run", "effects": {}},
      "rightChoice": {"text": "Fight", "effects": {"Power": 10}}
    },
    {
      "prompt": "You are paid.",
      "leftChoice": {"text": "Spend", "effects": {"Wealth": -20}, "nextCardIndex": null},
      "rightChoice": {"text": "Save", "effects": {"Knowledge": 5}, "nextCardIndex": -1}
    }
  ]
}`

func (s *InterchangeTestSuite) TestDecodeWrapped() {
	d, err := deck.Decode([]byte(wrappedDeck))
	s.Require().NoError(err)

	s.Equal("Neon Uprising", d.Name)
	s.Equal("The towers are burning.", d.Description)
	s.Require().Equal(3, d.Len())

	first := d.Cards[0]
	s.Equal("art/fixer.png", first.ImageURL)
	s.Equal(-10, first.LeftChoice.Effects.Delta(card.Wealth))
	s.False(first.LeftChoice.Effects.Has(card.Power))
	s.Equal("sfx/deal.ogg", first.RightChoice.SoundURL)

	next, ok := first.RightChoice.NextTarget()
	s.True(ok)
	s.Equal(2, next)

	_, ok = d.Cards[2].LeftChoice.NextTarget()
	s.False(ok, "null nextCardIndex means sequential advance")

	next, ok = d.Cards[2].RightChoice.NextTarget()
	s.True(ok)
	s.Equal(-1, next)
}

func (s *InterchangeTestSuite) TestDecodeLegacyArray() {
	data := `[
	  {"prompt": "Alone.", "leftChoice": {"text": "Wait", "effects": {"People": -5}}, "rightChoice": {"text": "Call out", "effects": {"People": 5}}}
	]`

	d, err := deck.Decode([]byte(data))
	s.Require().NoError(err)
	s.Equal("", d.Name)
	s.Equal("", d.Description)
	s.Require().Equal(1, d.Len())
	s.Equal(5, d.Cards[0].RightChoice.Effects.Delta(card.People))
}

func (s *InterchangeTestSuite) TestDecodeCoercesEffects() {
	data := `[{
	  "prompt": "Odd numbers.",
	  "leftChoice": {"text": "A", "effects": {"Power": "10", "Wealth": 5.5, "People": -3, "Knowledge": 2.0, "Luck": 9}},
	  "rightChoice": {"text": "B", "effects": {"Power": null, "Wealth": true, "People": [1]}}
	}]`

	d, err := deck.Decode([]byte(data))
	s.Require().NoError(err)

	left := d.Cards[0].LeftChoice.Effects
	s.Equal(0, left.Delta(card.Power))
	s.True(left.Has(card.Power))
	s.Equal(0, left.Delta(card.Wealth))
	s.Equal(-3, left.Delta(card.People))
	s.Equal(2, left.Delta(card.Knowledge))

	right := d.Cards[0].RightChoice.Effects
	s.True(right.IsZero())

	huge := `[{
	  "prompt": "Out of range.",
	  "leftChoice": {"text": "A", "effects": {"Power": 1e30, "Wealth": 100000000000000000000, "People": 2147483648, "Knowledge": -1e30}},
	  "rightChoice": {"text": "B", "effects": {"Power": -100000000000000000000, "Wealth": 1e3}}
	}]`

	d, err = deck.Decode([]byte(huge))
	s.Require().NoError(err)

	left = d.Cards[0].LeftChoice.Effects
	s.Equal(math.MaxInt32, left.Delta(card.Power), "huge positive floats keep their sign")
	s.Equal(math.MaxInt32, left.Delta(card.Wealth))
	s.Equal(math.MaxInt32, left.Delta(card.People))
	s.Equal(math.MinInt32, left.Delta(card.Knowledge))

	right = d.Cards[0].RightChoice.Effects
	s.Equal(math.MinInt32, right.Delta(card.Power))
	s.Equal(1000, right.Delta(card.Wealth))
}

func (s *InterchangeTestSuite) TestDecodeIntegralFloatTargets() {
	data := `[{
	  "prompt": "Jump.",
	  "leftChoice": {"text": "A", "nextCardIndex": 0.0},
	  "rightChoice": {"text": "B", "nextCardIndex": 1e30}
	}]`

	d, err := deck.Decode([]byte(data))
	s.Require().NoError(err)

	next, ok := d.Cards[0].LeftChoice.NextTarget()
	s.True(ok)
	s.Equal(0, next)

	next, ok = d.Cards[0].RightChoice.NextTarget()
	s.True(ok)
	s.Equal(math.MaxInt32, next)

	_, err = deck.Decode([]byte(`[{"prompt": "x", "leftChoice": {"text": "a", "nextCardIndex": 2.5}, "rightChoice": {"text": "b"}}]`))
	s.ErrorIs(err, deck.ErrInvalidDeck)
}

func (s *InterchangeTestSuite) TestDecodeFailures() {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "not json", data: `{"cards": [`, wantErr: deck.ErrParse},
		{name: "blank input", data: "   ", wantErr: deck.ErrParse},
		{name: "scalar", data: `"deck"`, wantErr: deck.ErrInvalidDeck},
		{name: "object without cards", data: `{"name": "x"}`, wantErr: deck.ErrInvalidDeck},
		{name: "null cards", data: `{"name": "x", "cards": null}`, wantErr: deck.ErrInvalidDeck},
		{name: "cards not a list", data: `{"cards": {"prompt": "x"}}`, wantErr: deck.ErrInvalidDeck},
		{name: "empty wrapped", data: `{"name": "x", "cards": []}`, wantErr: deck.ErrEmptyDeck},
		{name: "empty array", data: `[]`, wantErr: deck.ErrEmptyDeck},
		{
			name:    "missing right choice",
			data:    `[{"prompt": "x", "leftChoice": {"text": "a"}}]`,
			wantErr: deck.ErrInvalidDeck,
		},
		{
			name:    "fractional target",
			data:    `[{"prompt": "x", "leftChoice": {"text": "a", "nextCardIndex": 1.5}, "rightChoice": {"text": "b"}}]`,
			wantErr: deck.ErrInvalidDeck,
		},
		{
			name:    "effects not an object",
			data:    `[{"prompt": "x", "leftChoice": {"text": "a", "effects": 3}, "rightChoice": {"text": "b"}}]`,
			wantErr: deck.ErrInvalidDeck,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			d, err := deck.Decode([]byte(tt.data))
			s.ErrorIs(err, tt.wantErr)
			s.Nil(d)
		})
	}
}

func (s *InterchangeTestSuite) TestEncodeWritesWrappedForm() {
	d, err := deck.Decode([]byte(wrappedDeck))
	s.Require().NoError(err)

	data, err := deck.Encode(d)
	s.Require().NoError(err)

	var raw map[string]interface{}
	s.Require().NoError(json.Unmarshal(data, &raw))
	s.Equal("Neon Uprising", raw["name"])

	cards := raw["cards"].([]interface{})
	s.Len(cards, 3)

	second := cards[1].(map[string]interface{})
	left := second["leftChoice"].(map[string]interface{})
	s.NotContains(left, "nextCardIndex", "sequential choices omit the target")
	s.Contains(left, "effects")

	again, err := deck.Decode(data)
	s.Require().NoError(err)
	s.Equal(d, again)
}

func TestEncodeNil(t *testing.T) {
	_, err := deck.Encode(nil)
	require.Error(t, err)
}

func TestDecodeClampsHugeTargets(t *testing.T) {
	data := `[{"prompt": "x", "leftChoice": {"text": "a", "nextCardIndex": 99999999999}, "rightChoice": {"text": "b"}}]`

	d, err := deck.Decode([]byte(data))
	require.NoError(t, err)

	next, ok := d.Cards[0].LeftChoice.NextTarget()
	require.True(t, ok)
	assert.Greater(t, next, 1, "a huge target still wins the game")
}
