package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionArity(t *testing.T) {
	assert.Equal(t, 1, ActionSecret.Arity())
	assert.Equal(t, 2, ActionDiscard.Arity())
	assert.Equal(t, 3, ActionGift.Arity())
	assert.Equal(t, 4, ActionCompete.Arity())
	assert.Equal(t, 0, ActionType("PASS").Arity())
	assert.False(t, ActionType("PASS").Valid())
	assert.True(t, ActionGift.Interactive())
	assert.False(t, ActionDiscard.Interactive())
}

func TestPlayerMarkers(t *testing.T) {
	p := NewPlayer("Alice")
	require.Len(t, p.ActionMarkers, 4)
	assert.False(t, p.AllMarkersUsed())

	now := time.Now()
	assert.True(t, p.UseMarker(ActionDiscard, now))
	assert.False(t, p.UseMarker(ActionDiscard, now), "marker can only be spent once")
	assert.True(t, p.MarkerUsed(ActionDiscard))
	assert.Equal(t, []ActionType{ActionDiscard}, p.UsedActions())

	for _, at := range ActionTypes {
		p.UseMarker(at, now)
	}
	assert.True(t, p.AllMarkersUsed())

	p.ResetMarkers()
	assert.Empty(t, p.UsedActions())
}

func TestPlayerHand(t *testing.T) {
	p := NewPlayer("Bob")
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p.HandCards = []uuid.UUID{a, b, c}

	assert.True(t, p.RemoveFromHand(b))
	assert.False(t, p.RemoveFromHand(b))
	assert.Equal(t, []uuid.UUID{a, c}, p.HandCards)
	assert.True(t, p.HasInHand(c))
}

func TestGameCloneIsDeep(t *testing.T) {
	p1, p2 := NewPlayer("Alice"), NewPlayer("Bob")
	card := &GiftCard{ID: uuid.New(), GeishaID: "g1", Status: CardInHand, OwnerID: p1.ID}
	p1.HandCards = []uuid.UUID{card.ID}
	g := &Game{
		ID:          uuid.New(),
		Players:     []*Player{p1, p2},
		Geishas:     []*Geisha{{ID: "g1", CharmValue: 2}},
		Cards:       []*GiftCard{card},
		Round:       &Round{Number: 1, CurrentPlayerID: p1.ID, PendingOffer: &Offer{Groups: [][]uuid.UUID{{card.ID}, {}}}},
		FavorRecord: map[string]uuid.UUID{"g1": p1.ID},
	}

	c := g.Clone()
	c.Cards[0].Status = CardDiscarded
	c.Players[0].HandCards[0] = uuid.Nil
	c.Round.PendingOffer.Groups[0][0] = uuid.Nil
	c.FavorRecord["g1"] = p2.ID
	c.Geishas[0].FavoredPlayer = p2.ID

	assert.Equal(t, CardInHand, g.Cards[0].Status)
	assert.Equal(t, card.ID, g.Players[0].HandCards[0])
	assert.Equal(t, card.ID, g.Round.PendingOffer.Groups[0][0])
	assert.Equal(t, p1.ID, g.FavorRecord["g1"])
	assert.Equal(t, uuid.Nil, g.Geishas[0].FavoredPlayer)
}

func TestGameLookups(t *testing.T) {
	p1, p2 := NewPlayer("Alice"), NewPlayer("Bob")
	g := &Game{Players: []*Player{p1, p2}, Round: &Round{CurrentPlayerID: p2.ID}}

	assert.Equal(t, p2, g.Opponent(p1.ID))
	assert.Equal(t, p1, g.Opponent(p2.ID))
	assert.Nil(t, g.Opponent(uuid.New()))
	assert.Equal(t, p2, g.CurrentPlayer())
}
