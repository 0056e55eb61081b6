package validator

import (
	"fmt"

	"github.com/arcanaland/scrybe/internal/card"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were recorded.
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

type Validator struct {
	Card    *card.Card
	Results ValidationResults
}

func NewValidator(c *card.Card) *Validator {
	return &Validator{
		Card:    c,
		Results: ValidationResults{},
	}
}

// ValidateCard is a shorthand for NewValidator(c).Validate().
func ValidateCard(c *card.Card) ValidationResults {
	return NewValidator(c).Validate()
}

func (v *Validator) Validate() ValidationResults {
	if v.Card == nil {
		v.Results.Errors = append(v.Results.Errors, "card record is empty")
		return v.Results
	}

	v.validateIdentity()
	v.validateImages()
	v.validateFaces()
	v.validatePrints()

	return v.Results
}

func (v *Validator) validateIdentity() {
	if v.Card.ID == "" {
		v.Results.Errors = append(v.Results.Errors, "id is required")
	}
	if v.Card.Name == "" {
		v.Results.Errors = append(v.Results.Errors, "name is required")
	}
}

func (v *Validator) validateImages() {
	if !v.Card.HasImage() {
		v.Results.Warnings = append(v.Results.Warnings, "card has no image in any size")
		return
	}
	if v.Card.ImageURL(card.ImageNormal) == "" {
		v.Results.Warnings = append(v.Results.Warnings, "card has no normal-size image")
	}
	if v.Card.ImageURL(card.ImageSmall) == "" {
		v.Results.Warnings = append(v.Results.Warnings, "card has no small-size image")
	}
}

func (v *Validator) validateFaces() {
	for i, f := range v.Card.Faces {
		if f.Name == "" {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("card_faces[%d] has no name", i))
		}
	}
}

func (v *Validator) validatePrints() {
	if !v.Card.HasPrints() {
		v.Results.Warnings = append(v.Results.Warnings,
			"prints_search_uri is missing, alternate arts are unavailable")
	}
}
