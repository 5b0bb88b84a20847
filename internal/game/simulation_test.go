package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRandomPlay drives many seeded games with random legal moves and checks the card
// and turn invariants after every transition.
func TestRandomPlay(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		e := newTestEngine(t,
			WithShuffler(rng.Shuffle),
			WithRules(rulesWith(func(r *models.HouseRules) { r.SingleGeishaOffers = false })),
		)
		g, err := e.CreateGame("Alice", "Bob")
		require.NoError(t, err)

		for step := 0; step < 400 && g.Status == models.GameInProgress; step++ {
			round := g.Round.Number
			if offer := g.Round.PendingOffer; offer != nil {
				chooser := g.Opponent(offer.ProposerID)
				g = mustChoose(t, e, g, chooser.ID, rng.Intn(2))
				if g.Round.Number == round && g.Status == models.GameInProgress {
					assert.Equal(t, chooser.ID, g.Round.CurrentPlayerID, "seed %d: turn passes to the chooser", seed)
				}
			} else {
				actor := g.Round.CurrentPlayerID
				a := randomAction(t, g, actor, rng)
				g = mustApply(t, e, g, a)
				if !a.ActionType.Interactive() && g.Round.Number == round && g.Status == models.GameInProgress {
					assert.NotEqual(t, actor, g.Round.CurrentPlayerID, "seed %d: turn must flip", seed)
				}
			}

			require.NoError(t, CheckInvariants(g), "seed %d step %d", seed, step)
			total := 0
			for _, s := range []models.CardStatus{
				models.CardInDeck, models.CardInHand, models.CardAllocated,
				models.CardSecret, models.CardDiscarded, models.CardRemoved,
			} {
				total += countStatus(g, s)
			}
			assert.Equal(t, 21, total)
			assert.Equal(t, 1, countStatus(g, models.CardRemoved))
		}
		if g.Status == models.GameFinished {
			assert.NotEqual(t, uuid.Nil, g.WinnerID, "seed %d", seed)
		}
	}
}

func randomAction(t *testing.T, g *models.Game, actor uuid.UUID, rng *rand.Rand) models.Action {
	t.Helper()
	v, err := SnapshotFor(g, actor)
	require.NoError(t, err)

	available := seat(v, actor).AvailableActions
	require.NotEmpty(t, available, "a legal action always exists when offers may mix geishas")
	at := available[rng.Intn(len(available))]

	var hand []uuid.UUID
	for _, c := range seat(v, actor).Hand {
		hand = append(hand, c.ID)
	}
	if v.NextDraw != nil {
		hand = append(hand, v.NextDraw.ID)
	}
	rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
	cards := hand[:at.Arity()]

	a := models.Action{PlayerID: actor, ActionType: at, CardIDs: cards}
	if at.Interactive() {
		split := 1 + rng.Intn(len(cards)-1)
		a.Groupings = [][]uuid.UUID{
			append([]uuid.UUID(nil), cards[:split]...),
			append([]uuid.UUID(nil), cards[split:]...),
		}
	}
	return a
}
