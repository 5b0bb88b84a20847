// internal/models/card.go
package models

import "github.com/google/uuid"

// CardStatus is the location of a gift card within a game.
type CardStatus string

const (
	CardInDeck    CardStatus = "IN_DECK"
	CardInHand    CardStatus = "IN_HAND"
	CardAllocated CardStatus = "ALLOCATED"
	CardSecret    CardStatus = "SECRET"
	CardDiscarded CardStatus = "DISCARDED"
	CardRemoved   CardStatus = "REMOVED"
)

// AllocationMethod records how an allocated or secret card reached its owner.
type AllocationMethod string

const (
	AllocationNone    AllocationMethod = ""
	AllocationGift    AllocationMethod = "GIFT"
	AllocationCompete AllocationMethod = "COMPETE"
	AllocationDirect  AllocationMethod = "DIRECT"
)

// GiftCard is one of the 21 cards in a game. GeishaID, ItemName and CharmValue are
// fixed at creation; Status, OwnerID and AllocationMethod move with the card.
type GiftCard struct {
	ID               uuid.UUID        `json:"id"`
	GeishaID         string           `json:"geisha_id"`
	ItemName         string           `json:"item_name"`
	CharmValue       int              `json:"charm_value"`
	Status           CardStatus       `json:"status"`
	OwnerID          uuid.UUID        `json:"owner_id"`
	AllocationMethod AllocationMethod `json:"allocation_method,omitempty"`
}

// Influences reports whether the card counts toward its owner's influence.
func (c *GiftCard) Influences() bool {
	return c.Status == CardAllocated || c.Status == CardSecret
}

// ResetToDeck returns the card to the undealt pool.
func (c *GiftCard) ResetToDeck() {
	c.Status = CardInDeck
	c.OwnerID = uuid.Nil
	c.AllocationMethod = AllocationNone
}
