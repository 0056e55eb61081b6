package card

// Image sizes published by the card API.
const (
	ImageSmall      = "small"
	ImageNormal     = "normal"
	ImageLarge      = "large"
	ImagePNG        = "png"
	ImageArtCrop    = "art_crop"
	ImageBorderCrop = "border_crop"
)

// Card represents one printing of a Magic: The Gathering card as returned by
// the card API. Only the fields the browser reads are decoded.
type Card struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	ManaCost        string            `json:"mana_cost,omitempty"`
	TypeLine        string            `json:"type_line,omitempty"`
	OracleText      string            `json:"oracle_text,omitempty"`
	Set             string            `json:"set,omitempty"`
	SetName         string            `json:"set_name,omitempty"`
	Rarity          string            `json:"rarity,omitempty"`
	Colors          []string          `json:"colors,omitempty"`
	ScryfallURI     string            `json:"scryfall_uri,omitempty"`
	ImageURIs       map[string]string `json:"image_uris,omitempty"`
	Faces           []Face            `json:"card_faces,omitempty"`
	PrintsSearchURI string            `json:"prints_search_uri,omitempty"`
}

// Face is one side of a multi-faced card
type Face struct {
	Name       string            `json:"name"`
	ManaCost   string            `json:"mana_cost,omitempty"`
	TypeLine   string            `json:"type_line,omitempty"`
	OracleText string            `json:"oracle_text,omitempty"`
	ImageURIs  map[string]string `json:"image_uris,omitempty"`
}

// AlternateArt is the thumbnail projection of a print.
type AlternateArt struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

// ImageURL returns the image of the given size, falling back to the first
// face for double-faced cards. It returns "" when neither carries one.
func (c *Card) ImageURL(size string) string {
	if c == nil {
		return ""
	}
	if u := c.ImageURIs[size]; u != "" {
		return u
	}
	if len(c.Faces) > 0 {
		return c.Faces[0].ImageURIs[size]
	}
	return ""
}

// HasImage reports whether the card carries any image at all.
func (c *Card) HasImage() bool {
	if c == nil {
		return false
	}
	if len(c.ImageURIs) > 0 {
		return true
	}
	for _, f := range c.Faces {
		if len(f.ImageURIs) > 0 {
			return true
		}
	}
	return false
}

// HasPrints reports whether the card links to its print history.
func (c *Card) HasPrints() bool {
	return c != nil && c.PrintsSearchURI != ""
}

// Text returns the oracle text, joining faces when the card has no
// top-level text.
func (c *Card) Text() string {
	if c.OracleText != "" || len(c.Faces) == 0 {
		return c.OracleText
	}
	text := ""
	for i, f := range c.Faces {
		if i > 0 {
			text += "\n//\n"
		}
		text += f.OracleText
	}
	return text
}

// AlternateArts projects prints to thumbnails. Prints without top-level
// image data are skipped.
func AlternateArts(prints []Card) []AlternateArt {
	arts := make([]AlternateArt, 0, len(prints))
	for _, p := range prints {
		if len(p.ImageURIs) == 0 {
			continue
		}
		arts = append(arts, AlternateArt{ID: p.ID, Image: p.ImageURIs[ImageSmall]})
	}
	return arts
}
