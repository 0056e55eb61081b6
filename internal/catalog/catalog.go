package catalog

import (
	"fmt"
	"strings"
)

// Color is one of the color buttons of the browser.
type Color struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Symbol string `json:"symbol"`
}

// Option is a value/label pair for a filter dropdown.
type Option struct {
	Value string `json:"value" toml:"code"`
	Label string `json:"label" toml:"name"`
}

// Catalog holds the choices the browser offers for colors and filters.
type Catalog struct {
	Colors   []Color  `json:"colors"`
	Sets     []Option `json:"sets"`
	Types    []Option `json:"types"`
	Rarities []Option `json:"rarities"`
}

const symbolBase = "https://svgs.scryfall.io/card-symbols/"

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Colors: []Color{
			{Key: "w", Label: "White", Symbol: symbolBase + "W.svg"},
			{Key: "u", Label: "Blue", Symbol: symbolBase + "U.svg"},
			{Key: "b", Label: "Black", Symbol: symbolBase + "B.svg"},
			{Key: "r", Label: "Red", Symbol: symbolBase + "R.svg"},
			{Key: "g", Label: "Green", Symbol: symbolBase + "G.svg"},
			{Key: "c", Label: "Colorless", Symbol: symbolBase + "C.svg"},
		},
		Sets: []Option{
			{Value: "eld", Label: "Throne of Eldraine"},
			{Value: "khm", Label: "Kaldheim"},
			{Value: "iko", Label: "Ikoria"},
			{Value: "mom", Label: "March of the Machine"},
		},
		Types: []Option{
			{Value: "creature", Label: "Creature"},
			{Value: "instant", Label: "Instant"},
			{Value: "sorcery", Label: "Sorcery"},
			{Value: "enchantment", Label: "Enchantment"},
			{Value: "artifact", Label: "Artifact"},
			{Value: "planeswalker", Label: "Planeswalker"},
			{Value: "land", Label: "Land"},
		},
		Rarities: []Option{
			{Value: "common", Label: "common"},
			{Value: "uncommon", Label: "uncommon"},
			{Value: "rare", Label: "rare"},
			{Value: "mythic", Label: "mythic"},
		},
	}
}

// WithSets returns a copy of the catalog with the set list replaced.
// An empty list keeps the current sets.
func (c *Catalog) WithSets(sets []Option) *Catalog {
	out := *c
	if len(sets) > 0 {
		out.Sets = append([]Option(nil), sets...)
	}
	return &out
}

// NormalizeColor lower-cases and validates a color key. The empty string
// means "no color" and is always accepted.
func (c *Catalog) NormalizeColor(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", nil
	}
	for _, col := range c.Colors {
		if col.Key == key {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", key)
}

// ColorLabel returns the label of a color key, or the key itself.
func (c *Catalog) ColorLabel(key string) string {
	for _, col := range c.Colors {
		if col.Key == key {
			return col.Label
		}
	}
	return key
}
