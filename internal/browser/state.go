package browser

import (
	"errors"

	"github.com/arcanaland/scrybe/internal/card"
	"github.com/arcanaland/scrybe/internal/scryfall"
)

// RecentLimit caps the recently viewed list.
const RecentLimit = 10

// Operation names an action that opens a request generation.
type Operation string

const (
	OpLoad   Operation = "load"
	OpRandom Operation = "random"
	OpSearch Operation = "search"
)

// FailureKind classifies the errors surfaced to the UI.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"
	FailureMalformed FailureKind = "malformed"
	FailureEmpty     FailureKind = "empty"
	FailureNotFound  FailureKind = "not_found"
	FailureAPI       FailureKind = "api"
)

// Failure is the error slot of the state.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Op      Operation   `json:"op"`
	Message string      `json:"message"`
}

// Classify maps an error to its failure kind.
func Classify(err error) FailureKind {
	var apiErr *scryfall.APIError
	switch {
	case errors.Is(err, scryfall.ErrEmptyResult):
		return FailureEmpty
	case errors.Is(err, scryfall.ErrNotFound):
		return FailureNotFound
	case errors.Is(err, scryfall.ErrMalformed):
		return FailureMalformed
	case errors.As(err, &apiErr):
		return FailureAPI
	default:
		return FailureNetwork
	}
}

// State is everything the browser shows. It is owned by the actor
// goroutine; everyone else sees copies via Snapshot.
type State struct {
	Generation    uint64              `json:"generation"`
	Op            Operation           `json:"op,omitempty"`
	Loading       bool                `json:"loading"`
	Card          *card.Card          `json:"card,omitempty"`
	AlternateArts []card.AlternateArt `json:"alternate_arts"`
	Recent        []*card.Card        `json:"recent"`
	SelectedColor string              `json:"selected_color,omitempty"`
	Query         string              `json:"query,omitempty"`
	Filters       scryfall.Filters    `json:"filters"`
	Failure       *Failure            `json:"failure,omitempty"`
}

// Snapshot returns a copy that shares no slices with s.
func (s *State) Snapshot() State {
	out := *s
	out.AlternateArts = append([]card.AlternateArt{}, s.AlternateArts...)
	out.Recent = append([]*card.Card{}, s.Recent...)
	if s.Failure != nil {
		f := *s.Failure
		out.Failure = &f
	}
	return out
}

// Event is a state transition. Apply reports whether the state changed.
type Event interface {
	Apply(s *State) bool
}

// Started opens a new generation for an action.
type Started struct {
	Op      Operation
	Query   string
	Filters scryfall.Filters
}

func (e Started) Apply(s *State) bool {
	s.Generation++
	s.Op = e.Op
	s.Loading = true
	s.Failure = nil
	if e.Op == OpSearch {
		s.Query = e.Query
		s.Filters = e.Filters
	}
	return true
}

// ColorSelected records the last pressed color button.
type ColorSelected struct {
	Color string
}

func (e ColorSelected) Apply(s *State) bool {
	if s.SelectedColor == e.Color {
		return false
	}
	s.SelectedColor = e.Color
	return true
}

// CardLoaded commits a fetched card.
type CardLoaded struct {
	Generation uint64
	Card       *card.Card
}

func (e CardLoaded) Apply(s *State) bool {
	if e.Generation != s.Generation || e.Card == nil {
		return false
	}
	s.Card = e.Card
	s.Recent = PushRecent(s.Recent, e.Card)
	s.AlternateArts = nil
	return true
}

// ArtsLoaded replaces the alternate arts of the current card.
type ArtsLoaded struct {
	Generation uint64
	CardID     string
	Arts       []card.AlternateArt
}

func (e ArtsLoaded) Apply(s *State) bool {
	if e.Generation != s.Generation || s.Card == nil || s.Card.ID != e.CardID {
		return false
	}
	s.AlternateArts = e.Arts
	return true
}

// Failed records an error of the current generation.
type Failed struct {
	Generation uint64
	Op         Operation
	Err        error
}

func (e Failed) Apply(s *State) bool {
	if e.Generation != s.Generation || e.Err == nil {
		return false
	}
	s.Failure = &Failure{
		Kind:    Classify(e.Err),
		Op:      e.Op,
		Message: e.Err.Error(),
	}
	return true
}

// Settled clears the loading flag once the primary fetch of the current
// generation is done.
type Settled struct {
	Generation uint64
}

func (e Settled) Apply(s *State) bool {
	if e.Generation != s.Generation || !s.Loading {
		return false
	}
	s.Loading = false
	return true
}

// PushRecent moves c to the front of recent, dropping any entry with the
// same id, and truncates to RecentLimit.
func PushRecent(recent []*card.Card, c *card.Card) []*card.Card {
	out := make([]*card.Card, 0, RecentLimit)
	out = append(out, c)
	for _, r := range recent {
		if len(out) == RecentLimit {
			break
		}
		if r.ID != c.ID {
			out = append(out, r)
		}
	}
	return out
}
