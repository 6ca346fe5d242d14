package reality_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retroverse-studios/reality-reigns/internal/card"
	"github.com/retroverse-studios/reality-reigns/internal/engine"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

func TestBuiltin(t *testing.T) {
	realities := reality.Builtin()
	require.Len(t, realities, 3)

	ids := make([]string, 0, len(realities))
	for _, r := range realities {
		ids = append(ids, r.ID)
		assert.NoError(t, r.Validate())
		assert.NotEmpty(t, r.SystemInstruction)
		for _, stat := range card.AllStats {
			assert.NotEqual(t, stat.String(), r.StatName(stat), "%s names every stat", r.ID)
		}
	}
	assert.Equal(t, []string{"cyberpunk", "mystical", "space"}, ids)

	// Fresh copies every call
	realities[0].Name = "changed"
	assert.Equal(t, "Cyberpunk Dystopia", reality.Builtin()[0].Name)
}

func TestStatNameFallsBack(t *testing.T) {
	r := &reality.Reality{StatNames: reality.StatNames{Power: "Might"}}
	assert.Equal(t, "Might", r.StatName(card.Power))
	assert.Equal(t, "Wealth", r.StatName(card.Wealth))
}

func TestNarrate(t *testing.T) {
	r := &reality.Reality{
		Name:      "Mystical Kingdom",
		StatNames: reality.StatNames{Power: "Authority", Wealth: "Treasury", People: "Favor", Knowledge: "Arcane Lore"},
	}

	tests := []struct {
		name   string
		result engine.Result
		want   string
	}{
		{
			name:   "win",
			result: engine.Result{Verdict: engine.Win, Stats: card.Stats{50, 50, 50, 50}, Index: 5},
			want:   "You have successfully navigated the challenges of Mystical Kingdom and reached the final node. Your story ends here.",
		},
		{
			name:   "stat at zero",
			result: engine.Result{Verdict: engine.Loss, Reason: engine.StatReason(card.Wealth), Stats: card.Stats{50, 0, 50, 50}},
			want:   "Your treasury has vanished.",
		},
		{
			name:   "stat at one hundred",
			result: engine.Result{Verdict: engine.Loss, Reason: engine.StatReason(card.Knowledge), Stats: card.Stats{50, 50, 50, 100}},
			want:   "You've been overwhelmed by your arcane lore.",
		},
		{
			name:   "void",
			result: engine.Result{Verdict: engine.Loss, Reason: engine.ReasonVoid, Stats: card.Stats{50, 50, 50, 50}, Index: -1},
			want:   "You chose a path that leads to nowhere and were lost to the void.",
		},
		{
			name:   "active",
			result: engine.Result{Verdict: engine.Active},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Narrate(tt.result))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&reality.Reality{ID: "x", Name: "X", Description: "d"}).Validate())
	assert.Error(t, (&reality.Reality{ID: "x", Name: "X"}).Validate())
	assert.Error(t, (&reality.Reality{Name: "X", Description: "d"}).Validate())
}

const desertReality = `
name = "Desert Caravan"
description = "Cross the dunes."
system_instruction = "Write about sand."
deck_file = "decks/caravan.json"
image_set = ["dune.png", "oasis.png"]

[stat_names]
power = "Guards"
wealth = "Water"
people = "Camels"
knowledge = "Maps"
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desert.toml")
	require.NoError(t, os.WriteFile(path, []byte(desertReality), 0644))

	r, err := reality.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "desert", r.ID, "the file name is the default ID")
	assert.Equal(t, "Water", r.StatName(card.Wealth))
	assert.Equal(t, []string{"dune.png", "oasis.png"}, r.ImageSet)
	assert.Equal(t, filepath.Join(dir, "decks", "caravan.json"), r.DeckFile)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "realities", "space.toml")
	original := reality.Builtin()[2]
	original.DeckURL = "https://decks.example/space.json"
	original.Sounds = &reality.SoundConfig{GameWinURL: "win.ogg"}

	require.NoError(t, reality.SaveFile(path, original))

	loaded, err := reality.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestLoadAll(t *testing.T) {
	t.Run("missing directory yields the built-ins", func(t *testing.T) {
		realities, err := reality.LoadAll(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Len(t, realities, 3)
	})

	t.Run("user files are added and override built-ins", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "desert.toml"), []byte(desertReality), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "space.toml"),
			[]byte("name = \"My Space\"\ndescription = \"Mine\"\n"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

		realities, err := reality.LoadAll(dir)
		require.NoError(t, err)

		ids := make([]string, 0, len(realities))
		for _, r := range realities {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, []string{"cyberpunk", "mystical", "space", "desert"}, ids)

		space, err := reality.Find(realities, "space")
		require.NoError(t, err)
		assert.Equal(t, "My Space", space.Name)
	})

	t.Run("a broken file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("name = "), 0644))

		_, err := reality.LoadAll(dir)
		assert.Error(t, err)
	})
}

func TestFind(t *testing.T) {
	_, err := reality.Find(reality.Builtin(), "atlantis")
	assert.Error(t, err)
}
