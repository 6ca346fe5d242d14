package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/retroverse-studios/reality-reigns/internal/card"
)

// Interchange structures. Field names follow the JSON deck format shared with
// the generator and the community store.
type wireDeck struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cards       []wireCard `json:"cards"`
}

type wireCard struct {
	Prompt      string      `json:"prompt"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	LeftChoice  *wireChoice `json:"leftChoice"`
	RightChoice *wireChoice `json:"rightChoice"`
}

type wireChoice struct {
	Text          string          `json:"text"`
	Effects       json.RawMessage `json:"effects,omitempty"`
	NextCardIndex json.RawMessage `json:"nextCardIndex,omitempty"`
	SoundURL      string          `json:"soundUrl,omitempty"`
}

type wireEffects struct {
	Power     *int `json:"Power,omitempty"`
	Wealth    *int `json:"Wealth,omitempty"`
	People    *int `json:"People,omitempty"`
	Knowledge *int `json:"Knowledge,omitempty"`
}

type wireOutChoice struct {
	Text          string      `json:"text"`
	Effects       wireEffects `json:"effects"`
	NextCardIndex *int        `json:"nextCardIndex,omitempty"`
	SoundURL      string      `json:"soundUrl,omitempty"`
}

type wireOutCard struct {
	Prompt      string        `json:"prompt"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	LeftChoice  wireOutChoice `json:"leftChoice"`
	RightChoice wireOutChoice `json:"rightChoice"`
}

type wireOutDeck struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Cards       []wireOutCard `json:"cards"`
}

// Decode parses interchange data. Both the wrapped form ({name, description, cards})
// and the legacy bare array of cards are accepted; the latter gets empty metadata.
// Non-integer effect deltas are coerced to 0. Decoding is all-or-nothing.
func Decode(data []byte) (*Deck, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, ErrParse
	}

	var wd wireDeck
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &wd.Cards); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
		}
	case '{':
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
		}
		if raw, ok := probe["cards"]; !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, fmt.Errorf("%w: missing cards", ErrInvalidDeck)
		}
		if err := json.Unmarshal(trimmed, &wd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDeck, err)
		}
	default:
		return nil, fmt.Errorf("%w: expected an object or an array", ErrInvalidDeck)
	}

	if len(wd.Cards) == 0 {
		return nil, ErrEmptyDeck
	}

	d := &Deck{Name: wd.Name, Description: wd.Description, Cards: make([]card.Card, 0, len(wd.Cards))}
	for i, wc := range wd.Cards {
		c, err := wc.toCard()
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", ErrInvalidDeck, i, err)
		}
		d.Cards = append(d.Cards, c)
	}
	return d, nil
}

// Encode writes a deck in the wrapped interchange format
func Encode(d *Deck) ([]byte, error) {
	if d == nil {
		return nil, errors.New("cannot encode a nil deck")
	}

	out := wireOutDeck{Name: d.Name, Description: d.Description, Cards: make([]wireOutCard, 0, d.Len())}
	for _, c := range d.Cards {
		out.Cards = append(out.Cards, wireOutCard{
			Prompt:      c.Prompt,
			ImageURL:    c.ImageURL,
			LeftChoice:  fromChoice(c.LeftChoice),
			RightChoice: fromChoice(c.RightChoice),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding deck: %w", err)
	}
	return data, nil
}

func (wc wireCard) toCard() (card.Card, error) {
	if wc.LeftChoice == nil {
		return card.Card{}, errors.New("missing leftChoice")
	}
	if wc.RightChoice == nil {
		return card.Card{}, errors.New("missing rightChoice")
	}

	left, err := wc.LeftChoice.toChoice()
	if err != nil {
		return card.Card{}, fmt.Errorf("leftChoice: %v", err)
	}
	right, err := wc.RightChoice.toChoice()
	if err != nil {
		return card.Card{}, fmt.Errorf("rightChoice: %v", err)
	}

	return card.Card{
		Prompt:      wc.Prompt,
		ImageURL:    wc.ImageURL,
		LeftChoice:  left,
		RightChoice: right,
	}, nil
}

func (wc wireChoice) toChoice() (card.Choice, error) {
	effects, err := decodeEffects(wc.Effects)
	if err != nil {
		return card.Choice{}, err
	}

	next, err := decodeNext(wc.NextCardIndex)
	if err != nil {
		return card.Choice{}, err
	}

	return card.Choice{
		Text:     wc.Text,
		Effects:  effects,
		Next:     next,
		SoundURL: wc.SoundURL,
	}, nil
}

// decodeEffects keeps the four canonical keys and coerces anything that is not an
// integer to a delta of 0. Unknown keys are ignored.
func decodeEffects(raw json.RawMessage) (card.Effects, error) {
	var effects card.Effects
	if isNull(raw) {
		return effects, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return effects, fmt.Errorf("effects must be an object")
	}

	for _, stat := range card.AllStats {
		value, ok := entries[stat.String()]
		if !ok {
			continue
		}
		effects = effects.With(stat, coerceInt(value))
	}
	return effects, nil
}

func coerceInt(raw json.RawMessage) int {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0
	}

	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	i, _ := numberToInt(n)
	return i
}

// numberToInt accepts any integral JSON number, including forms like 2.0 or 1e3,
// saturating at the int32 range. Fractions and infinities are rejected.
func numberToInt(n json.Number) (int, bool) {
	if i, err := n.Int64(); err == nil {
		return clampInt64(i), true
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32, true
	case f <= math.MinInt32:
		return math.MinInt32, true
	}
	return int(f), true
}

func clampInt64(i int64) int {
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	return int(i)
}

func decodeNext(raw json.RawMessage) (*int, error) {
	if isNull(raw) {
		return nil, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("nextCardIndex must be an integer")
	}
	v, ok := numberToInt(n)
	if !ok {
		return nil, fmt.Errorf("nextCardIndex must be an integer, got %s", n)
	}
	return &v, nil
}

func fromChoice(c card.Choice) wireOutChoice {
	out := wireOutChoice{Text: c.Text, SoundURL: c.SoundURL}
	if c.Effects.Has(card.Power) {
		out.Effects.Power = intPtr(c.Effects.Delta(card.Power))
	}
	if c.Effects.Has(card.Wealth) {
		out.Effects.Wealth = intPtr(c.Effects.Delta(card.Wealth))
	}
	if c.Effects.Has(card.People) {
		out.Effects.People = intPtr(c.Effects.Delta(card.People))
	}
	if c.Effects.Has(card.Knowledge) {
		out.Effects.Knowledge = intPtr(c.Effects.Delta(card.Knowledge))
	}
	if target, ok := c.NextTarget(); ok {
		out.NextCardIndex = intPtr(target)
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func intPtr(v int) *int {
	return &v
}
