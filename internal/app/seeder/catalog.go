// Package seeder builds the demo card catalog and loads it into the
// database. The catalog is deterministic: the same target size always
// produces the same cards, so reseeding is an idempotent refresh.
package seeder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ferrisbrook/cardbinder-backend/internal/domain"
)

type family struct {
	name   string
	typ    string
	baseHp int
}

var families = []family{
	{"Pikachu", "Lightning", 60},
	{"Raichu", "Lightning", 100},
	{"Charmander", "Fire", 70},
	{"Charmeleon", "Fire", 90},
	{"Charizard", "Fire", 160},
	{"Squirtle", "Water", 70},
	{"Wartortle", "Water", 90},
	{"Blastoise", "Water", 160},
	{"Bulbasaur", "Grass", 70},
	{"Ivysaur", "Grass", 90},
	{"Venusaur", "Grass", 160},
	{"Eevee", "Colorless", 70},
	{"Snorlax", "Colorless", 150},
	{"Gengar", "Psychic", 130},
	{"Alakazam", "Psychic", 120},
	{"Machop", "Fighting", 80},
	{"Machamp", "Fighting", 150},
	{"Onix", "Fighting", 110},
	{"Jigglypuff", "Fairy", 90},
	{"Clefairy", "Fairy", 90},
	{"Dragonite", "Dragon", 160},
	{"Dratini", "Dragon", 70},
	{"Metagross", "Metal", 160},
	{"Lucario", "Fighting", 130},
	{"Umbreon", "Dark", 120},
	{"Absol", "Dark", 110},
	{"Lapras", "Water", 130},
	{"Gyarados", "Water", 170},
	{"Arcanine", "Fire", 140},
	{"Flareon", "Fire", 130},
}

var sets = []string{
	"Base Set",
	"Jungle",
	"Fossil",
	"Team Rocket",
	"Gym Heroes",
	"Gym Challenge",
	"Neo Genesis",
	"Neo Discovery",
}

var rarities = []string{"Common", "Uncommon", "Rare", "Ultra Rare", "Secret Rare"}

var typeImage = map[string]string{
	"Fire":      "/img/cards/charizard_base.jpg",
	"Water":     "/img/cards/blastoise_ex.jpg",
	"Grass":     "/img/cards/tangela.jpg",
	"Lightning": "/img/pikachu.png",
	"Electric":  "/img/pikachu.png",
	"Psychic":   "/img/pikachu.png",
	"Fighting":  "/img/cards/magmar.jpg",
	"Colorless": "/img/cards/vulpix.jpg",
	"Fairy":     "/img/cards/vulpix.jpg",
	"Dragon":    "/img/cards/charizard_mega.jpg",
	"Metal":     "/img/cards/arcanine.jpg",
	"Dark":      "/img/cards/slowbro_ex.jpg",
}

var typeWeakness = map[string]string{
	"Fire":      "Water x2",
	"Water":     "Electric x2",
	"Grass":     "Fire x2",
	"Lightning": "Fighting x2",
	"Electric":  "Fighting x2",
	"Psychic":   "Dark x2",
	"Fighting":  "Psychic x2",
	"Colorless": "Fighting x2",
	"Fairy":     "Metal x2",
	"Dragon":    "Fairy x2",
	"Metal":     "Fire x2",
	"Dark":      "Fighting x2",
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// BuildCatalog generates targetSize demo cards by walking the family, set,
// and rarity grids in a fixed order. HP varies with position and rarity;
// retreat cost is derived from HP and clamped to the 1..4 range.
func BuildCatalog(targetSize int) []domain.Card {
	cards := make([]domain.Card, 0, targetSize)
	counter := 1

	for _, fam := range families {
		for _, setName := range sets {
			for _, rarity := range rarities {
				hp := fam.baseHp + (counter%5)*10
				switch rarity {
				case "Ultra Rare":
					hp += 20
				case "Secret Rare":
					hp += 30
				}

				retreat := hp / 50
				if retreat < 1 {
					retreat = 1
				}
				if retreat > 4 {
					retreat = 4
				}

				typeKey := fam.typ
				if _, ok := typeImage[typeKey]; !ok {
					typeKey = "Colorless"
				}

				slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(fam.name), "-"), "-")

				cards = append(cards, domain.Card{
					ID:         fmt.Sprintf("demo-%s-%04d", slug, counter),
					Name:       fam.name,
					SetName:    setName,
					Number:     fmt.Sprintf("%s-%04d", strings.ToUpper(setName[:3]), counter),
					Rarity:     rarity,
					ImageURL:   typeImage[typeKey],
					Type:       fam.typ,
					HP:         hp,
					Weaknesses: typeWeakness[typeKey],
					Retreat:    retreat,
				})
				counter++

				if len(cards) >= targetSize {
					return cards
				}
			}
		}
	}

	return cards
}
