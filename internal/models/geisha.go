// internal/models/geisha.go
package models

import "github.com/google/uuid"

// Geisha is one of the seven characters players compete for.
type Geisha struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CharmValue   int    `json:"charm_value"`
	GiftItemName string `json:"gift_item_name"`

	// FavoredPlayer is derived from card ownership after every resolved action.
	// uuid.Nil means neutral.
	FavoredPlayer uuid.UUID `json:"favored_player"`
}
