package models

import (
	"time"

	"github.com/google/uuid"
)

// ActionType identifies one of the four once-per-round actions.
type ActionType string

const (
	ActionSecret  ActionType = "SECRET"
	ActionDiscard ActionType = "DISCARD"
	ActionGift    ActionType = "GIFT"
	ActionCompete ActionType = "COMPETE"
)

// ActionTypes lists every action in marker order.
var ActionTypes = []ActionType{ActionSecret, ActionDiscard, ActionGift, ActionCompete}

// Arity is the number of cards the action consumes, or 0 for an unknown action.
func (t ActionType) Arity() int {
	switch t {
	case ActionSecret:
		return 1
	case ActionDiscard:
		return 2
	case ActionGift:
		return 3
	case ActionCompete:
		return 4
	}
	return 0
}

// Interactive reports whether the opponent has to pick a group to finish the action.
func (t ActionType) Interactive() bool {
	return t == ActionGift || t == ActionCompete
}

// Valid reports whether t is one of the four known actions.
func (t ActionType) Valid() bool {
	return t.Arity() > 0
}

// ActionMarker is a player's once-per-round permission for one action type.
type ActionMarker struct {
	ActionType ActionType `json:"action_type"`
	Used       bool       `json:"used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
}

// Player is one of the two seats in a game. Card collections hold card ids; the
// cards themselves live in Game.Cards.
type Player struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	HandCards      []uuid.UUID    `json:"hand_cards"`
	AllocatedCards []uuid.UUID    `json:"allocated_cards"`
	SecretCards    []uuid.UUID    `json:"secret_cards"`
	ActionMarkers  []ActionMarker `json:"action_markers"`
}

// NewPlayer builds a player with a fresh id and one unused marker per action type.
func NewPlayer(name string) *Player {
	p := &Player{
		ID:             uuid.New(),
		Name:           name,
		HandCards:      []uuid.UUID{},
		AllocatedCards: []uuid.UUID{},
		SecretCards:    []uuid.UUID{},
	}
	p.ResetMarkers()
	return p
}

// ResetMarkers sets every marker back to unused.
func (p *Player) ResetMarkers() {
	p.ActionMarkers = make([]ActionMarker, 0, len(ActionTypes))
	for _, t := range ActionTypes {
		p.ActionMarkers = append(p.ActionMarkers, ActionMarker{ActionType: t})
	}
}

// MarkerUsed reports whether the marker for t was already spent this round.
func (p *Player) MarkerUsed(t ActionType) bool {
	for _, m := range p.ActionMarkers {
		if m.ActionType == t {
			return m.Used
		}
	}
	return false
}

// UseMarker flips the marker for t. It returns false if the marker is missing or
// already used.
func (p *Player) UseMarker(t ActionType, at time.Time) bool {
	for i := range p.ActionMarkers {
		if p.ActionMarkers[i].ActionType != t {
			continue
		}
		if p.ActionMarkers[i].Used {
			return false
		}
		p.ActionMarkers[i].Used = true
		p.ActionMarkers[i].UsedAt = &at
		return true
	}
	return false
}

// AllMarkersUsed reports whether the player has finished all four actions.
func (p *Player) AllMarkersUsed() bool {
	for _, m := range p.ActionMarkers {
		if !m.Used {
			return false
		}
	}
	return len(p.ActionMarkers) == len(ActionTypes)
}

// UsedActions lists the spent markers in marker order.
func (p *Player) UsedActions() []ActionType {
	used := []ActionType{}
	for _, m := range p.ActionMarkers {
		if m.Used {
			used = append(used, m.ActionType)
		}
	}
	return used
}

// HasInHand reports whether the card id is in the player's hand.
func (p *Player) HasInHand(cardID uuid.UUID) bool {
	return indexOf(p.HandCards, cardID) >= 0
}

// RemoveFromHand drops the card id from the hand, keeping the order of the rest.
func (p *Player) RemoveFromHand(cardID uuid.UUID) bool {
	idx := indexOf(p.HandCards, cardID)
	if idx < 0 {
		return false
	}
	p.HandCards = append(p.HandCards[:idx], p.HandCards[idx+1:]...)
	return true
}

// ClearCards empties every card collection, used between rounds.
func (p *Player) ClearCards() {
	p.HandCards = []uuid.UUID{}
	p.AllocatedCards = []uuid.UUID{}
	p.SecretCards = []uuid.UUID{}
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
