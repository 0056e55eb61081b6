package scryfall

import "strings"

// Filters are the optional exact-match search qualifiers.
type Filters struct {
	Set    string `json:"set"`
	Type   string `json:"type"`
	Rarity string `json:"rarity"`
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// BuildQuery combines the trimmed free-text term with key:value clauses
// for each non-empty filter, in set, type, rarity order.
func BuildQuery(text string, f Filters) string {
	q := strings.TrimSpace(text)
	if f.Set != "" {
		q += " set:" + f.Set
	}
	if f.Type != "" {
		q += " type:" + f.Type
	}
	if f.Rarity != "" {
		q += " rarity:" + f.Rarity
	}
	return q
}

// ColorQuery returns the random-card filter for a color key, or "".
func ColorQuery(color string) string {
	if color == "" {
		return ""
	}
	return "color:" + color
}
