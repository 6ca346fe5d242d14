package reality

const instructionPrefix = `You are a creative storyteller for the interactive fiction game "Reality Reigns". `

// Builtin returns fresh copies of the realities shipped with the game
func Builtin() []*Reality {
	return []*Reality{
		{
			ID:          "cyberpunk",
			Name:        "Cyberpunk Dystopia",
			Description: "Navigate the neon-drenched streets of a corporate-controlled future. Balance chrome and consciousness to survive.",
			SystemInstruction: instructionPrefix +
				"You create challenging scenarios for a player in a Cyberpunk Dystopia. The player's goal is to balance four stats: " +
				"Corporate Power, Street Cred, Citizen Trust, and Banned Tech. If any stat reaches 0 or 100, the player loses.",
			StatNames: StatNames{Power: "Corp. Power", Wealth: "Street Cred", People: "Citizen Trust", Knowledge: "Banned Tech"},
		},
		{
			ID:          "mystical",
			Name:        "Mystical Kingdom",
			Description: "Rule a land of magic and myth. Your decisions will shape the fate of your kingdom and the balance of ancient forces.",
			SystemInstruction: instructionPrefix +
				"You create challenging scenarios for a player ruling a Mystical Kingdom. The player's goal is to balance four stats: " +
				"Royal Authority, Kingdom's Treasury, People's Favor, and Arcane Lore. If any stat reaches 0 or 100, the player loses.",
			StatNames: StatNames{Power: "Authority", Wealth: "Treasury", People: "Favor", Knowledge: "Arcane Lore"},
		},
		{
			ID:          "space",
			Name:        "Galactic Imperium",
			Description: "Command a star-spanning empire at the edge of the known universe. Forge alliances, explore anomalies, and quell rebellions.",
			SystemInstruction: instructionPrefix +
				"You create challenging scenarios for a player leading a Galactic Imperium. The player's goal is to balance four stats: " +
				"Fleet Strength, Galactic Credits, Alien Relations, and Precursor Data. If any stat reaches 0 or 100, the player loses.",
			StatNames: StatNames{Power: "Fleet", Wealth: "Credits", People: "Relations", Knowledge: "Precursor Data"},
		},
	}
}
