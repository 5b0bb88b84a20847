package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeFavor(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	card := func(owner uuid.UUID, status models.CardStatus) *models.GiftCard {
		return &models.GiftCard{ID: uuid.New(), GeishaID: "geisha_7", OwnerID: owner, Status: status}
	}
	repeat := func(n int, owner uuid.UUID, status models.CardStatus) []*models.GiftCard {
		out := make([]*models.GiftCard, n)
		for i := range out {
			out[i] = card(owner, status)
		}
		return out
	}
	join := func(sets ...[]*models.GiftCard) []*models.GiftCard {
		var out []*models.GiftCard
		for _, s := range sets {
			out = append(out, s...)
		}
		return out
	}

	tests := []struct {
		name  string
		cards []*models.GiftCard
		want  uuid.UUID
	}{
		{"no cards", nil, uuid.Nil},
		{"two each is neutral", join(repeat(2, a, models.CardAllocated), repeat(2, b, models.CardAllocated)), uuid.Nil},
		{"three to one", join(repeat(3, a, models.CardAllocated), repeat(1, b, models.CardAllocated)), a},
		{"secret counts", join(repeat(1, a, models.CardAllocated), repeat(1, b, models.CardAllocated), repeat(1, b, models.CardSecret)), b},
		{"hand does not count", join(repeat(1, a, models.CardAllocated), repeat(3, b, models.CardInHand)), a},
		{"discard does not count", join(repeat(2, a, models.CardDiscarded), repeat(1, b, models.CardAllocated)), b},
		{"other geisha ignored", append(repeat(1, a, models.CardAllocated), &models.GiftCard{
			ID: uuid.New(), GeishaID: "geisha_1", OwnerID: b, Status: models.CardAllocated,
		}), a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeFavor("geisha_7", tt.cards))
		})
	}

	cards := join(repeat(2, a, models.CardAllocated), repeat(1, a, models.CardSecret), repeat(1, a, models.CardInHand))
	assert.Equal(t, 3, Influence("geisha_7", a, cards))
	assert.Equal(t, 0, Influence("geisha_7", b, cards))
}

func TestFavorTotals(t *testing.T) {
	e := newTestEngine(t)
	g, alice, bob, _ := setupTestGame(t, e)

	favor := map[string]uuid.UUID{
		"geisha_1": alice.ID,
		"geisha_7": alice.ID,
		"geisha_4": bob.ID,
		"geisha_2": uuid.Nil,
	}
	geishas, charm := favorTotals(g, favor)
	assert.Equal(t, 2, geishas[alice.ID])
	assert.Equal(t, 7, charm[alice.ID])
	assert.Equal(t, 1, geishas[bob.ID])
	assert.Equal(t, 3, charm[bob.ID])
}
