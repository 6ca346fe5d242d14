// Package reality holds the theme configuration a deck is played in: the
// display names of the four stats, the generator's authoring instruction and
// where the deck comes from.
package reality

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/engine"
)

// Reality is a playable theme
type Reality struct {
	ID                string       `toml:"id" json:"id"`
	Name              string       `toml:"name" json:"name"`
	Description       string       `toml:"description" json:"description"`
	SystemInstruction string       `toml:"system_instruction" json:"systemInstruction"`
	StatNames         StatNames    `toml:"stat_names" json:"statNames"`
	ImageSet          []string     `toml:"image_set,omitempty" json:"imageSet,omitempty"`
	DeckURL           string       `toml:"deck_url,omitempty" json:"deckUrl,omitempty"`
	DeckFile          string       `toml:"deck_file,omitempty" json:"-"`
	Sounds            *SoundConfig `toml:"sounds,omitempty" json:"soundConfig,omitempty"`
}

// StatNames are the display names of the canonical stats
type StatNames struct {
	Power     string `toml:"power" json:"Power"`
	Wealth    string `toml:"wealth" json:"Wealth"`
	People    string `toml:"people" json:"People"`
	Knowledge string `toml:"knowledge" json:"Knowledge"`
}

// SoundConfig references the theme's audio assets. The engine never reads them.
type SoundConfig struct {
	BackgroundMusicURL string `toml:"background_music_url,omitempty" json:"backgroundMusicUrl,omitempty"`
	SwipeLeftURL       string `toml:"swipe_left_url,omitempty" json:"swipeLeftUrl,omitempty"`
	SwipeRightURL      string `toml:"swipe_right_url,omitempty" json:"swipeRightUrl,omitempty"`
	GameStartURL       string `toml:"game_start_url,omitempty" json:"gameStartUrl,omitempty"`
	GameWinURL         string `toml:"game_win_url,omitempty" json:"gameWinUrl,omitempty"`
	GameLoseURL        string `toml:"game_lose_url,omitempty" json:"gameLoseUrl,omitempty"`
}

// StatName returns the display name of a stat, falling back to the canonical key
func (r *Reality) StatName(stat card.Stat) string {
	var name string
	switch stat {
	case card.Power:
		name = r.StatNames.Power
	case card.Wealth:
		name = r.StatNames.Wealth
	case card.People:
		name = r.StatNames.People
	case card.Knowledge:
		name = r.StatNames.Knowledge
	}
	if name == "" {
		return stat.String()
	}
	return name
}

// Narrate describes a finished playthrough in the theme's words
func (r *Reality) Narrate(result engine.Result) string {
	switch result.Verdict {
	case engine.Win:
		return fmt.Sprintf("You have successfully navigated the challenges of %s and reached the final node. Your story ends here.", r.Name)
	case engine.Loss:
		stat, ok := result.Reason.Stat()
		if !ok {
			return "You chose a path that leads to nowhere and were lost to the void."
		}
		name := strings.ToLower(r.StatName(stat))
		if result.Stats[stat] <= card.MinStatValue {
			return fmt.Sprintf("Your %s has vanished.", name)
		}
		return fmt.Sprintf("You've been overwhelmed by your %s.", name)
	}
	return ""
}

// Validate checks the fields a reality needs to be shared
func (r *Reality) Validate() error {
	if r.ID == "" || r.Name == "" || r.Description == "" {
		return fmt.Errorf("reality name, description, and ID are required")
	}
	return nil
}

// LoadFile decodes a reality TOML file
func LoadFile(path string) (*Reality, error) {
	var r Reality
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filepath.Base(path), err)
	}
	if r.ID == "" {
		r.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	// Relative deck files resolve against the reality file
	if r.DeckFile != "" && !filepath.IsAbs(r.DeckFile) {
		r.DeckFile = filepath.Join(filepath.Dir(path), r.DeckFile)
	}
	return &r, nil
}

// SaveFile writes a reality as TOML
func SaveFile(path string, r *Reality) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating realities directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating reality file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(r); err != nil {
		return fmt.Errorf("error encoding reality: %w", err)
	}
	return nil
}

// LoadAll returns the built-in realities followed by every *.toml file in dir.
// A user file with a built-in's ID replaces it. A missing dir is not an error.
func LoadAll(dir string) ([]*Reality, error) {
	byID := make(map[string]*Reality)
	var order []string
	for _, r := range Builtin() {
		byID[r.ID] = r
		order = append(order, r.ID)
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading realities directory: %w", err)
	}

	var userIDs []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		r, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, exists := byID[r.ID]; !exists {
			userIDs = append(userIDs, r.ID)
		}
		byID[r.ID] = r
	}
	sort.Strings(userIDs)
	order = append(order, userIDs...)

	out := make([]*Reality, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, nil
}

// Find returns the reality with the given ID
func Find(realities []*Reality, id string) (*Reality, error) {
	for _, r := range realities {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("reality not found: %s", id)
}
