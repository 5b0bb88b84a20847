package catalog

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// Shuffler permutes n elements through swap. rand.Shuffle satisfies it.
type Shuffler func(n int, swap func(i, j int))

// RandomShuffle is a uniform shuffle backed by the auto-seeded global source.
var RandomShuffle Shuffler = rand.Shuffle

// NewDeck instantiates every card from the templates, all IN_DECK, permuted by shuffle.
// A nil shuffle leaves the cards in template order.
func (c *Catalog) NewDeck(shuffle Shuffler) []*models.GiftCard {
	deck := make([]*models.GiftCard, 0, DeckSize)
	for _, t := range c.Cards {
		for i := 0; i < t.Count; i++ {
			deck = append(deck, &models.GiftCard{
				ID:         uuid.New(),
				GeishaID:   t.GeishaID,
				ItemName:   t.Name,
				CharmValue: t.CharmValue,
				Status:     models.CardInDeck,
			})
		}
	}
	if shuffle != nil {
		shuffle(len(deck), func(i, j int) {
			deck[i], deck[j] = deck[j], deck[i]
		})
	}
	return deck
}
