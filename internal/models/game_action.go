package models

import (
	"time"

	"github.com/google/uuid"
)

// Action is a player's move as submitted by a caller.
type Action struct {
	PlayerID       uuid.UUID     `json:"player_id"`
	ActionType     ActionType    `json:"action_type"`
	CardIDs        []uuid.UUID   `json:"card_ids"`
	TargetGeishaID string        `json:"target_geisha_id,omitempty"`
	Groupings      [][]uuid.UUID `json:"groupings,omitempty"`
}

// Choice is the opponent's pick of one group of a pending Gift or Compete.
type Choice struct {
	PlayerID   uuid.UUID `json:"player_id"`
	GroupIndex int       `json:"group_index"`
}

// RecordType names an entry in a game's action log.
type RecordType string

const (
	RecordRoundStart     RecordType = "round_start"
	RecordCardDrawn      RecordType = "card_drawn"
	RecordOfferProposed  RecordType = "offer_proposed"
	RecordActionResolved RecordType = "action_resolved"
	RecordRoundEnd       RecordType = "round_end"
	RecordPlayerResigned RecordType = "player_resigned"
	RecordGameEnd        RecordType = "game_end"
)

// ActionRecord is one state change, kept for display and for the historian.
type ActionRecord struct {
	Index       int           `json:"index"`
	Round       int           `json:"round"`
	Type        RecordType    `json:"type"`
	PlayerID    uuid.UUID     `json:"player_id"`
	ActionType  ActionType    `json:"action_type,omitempty"`
	CardIDs     []uuid.UUID   `json:"card_ids,omitempty"`
	GeishaID    string        `json:"geisha_id,omitempty"`
	Groups      [][]uuid.UUID `json:"groups,omitempty"`
	ChosenGroup *int          `json:"chosen_group,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
}
