package domain

import "strings"

// rarityRanking orders the known rarity vocabulary from rarest to most common.
// Sorting by rarity descending yields this order; any value not in the list
// ranks below all of them.
var rarityRanking = []string{
	"secret rare",
	"rare rainbow",
	"rare holo gx",
	"rare holo v",
	"rare holo vmax",
	"rare holo",
	"rare ultra",
	"ultra rare",
	"rare",
	"uncommon",
	"common",
}

// rarityRanks maps a normalized rarity to its priority. Higher is rarer;
// unknown rarities get priority 0.
var rarityRanks = func() map[string]int {
	m := make(map[string]int, len(rarityRanking))
	for i, r := range rarityRanking {
		m[r] = len(rarityRanking) - i
	}
	return m
}()

// RarityRank returns the priority of a rarity label, matched
// case-insensitively. Unknown labels return 0.
func RarityRank(rarity string) int {
	return rarityRanks[strings.ToLower(strings.TrimSpace(rarity))]
}

// RarityRanking returns the known rarity vocabulary from rarest to most
// common. The slice is a copy; callers may not mutate the vocabulary.
func RarityRanking() []string {
	out := make([]string, len(rarityRanking))
	copy(out, rarityRanking)
	return out
}
