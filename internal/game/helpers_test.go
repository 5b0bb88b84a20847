package game

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testClock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestEngine builds an engine with template card order and a frozen clock. With the
// default catalog the deal is:
//
//	c0-c5   Alice's hand: geisha_1 x2, geisha_2 x2, geisha_3 x2
//	c6-c11  Bob's hand:   geisha_4 x3, geisha_5 x3
//	c12-c19 deck:         geisha_6 x4, geisha_7 x4
//	c20     removed:      geisha_7
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	base := []Option{
		WithShuffler(nil),
		WithClock(func() time.Time { return testClock }),
		WithLogger(logrus.NewEntry(logger)),
	}
	e, err := NewEngine(cat, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

// setupTestGame creates Alice vs Bob and returns the game with both players and the
// card ids in deal order.
func setupTestGame(t *testing.T, e *Engine) (*models.Game, *models.Player, *models.Player, []uuid.UUID) {
	t.Helper()
	g, err := e.CreateGame("Alice", "Bob")
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(g.Cards))
	for i, c := range g.Cards {
		ids[i] = c.ID
	}
	return g, g.Players[0], g.Players[1], ids
}

func rulesWith(mutate func(r *models.HouseRules)) models.HouseRules {
	r := DefaultHouseRules()
	mutate(&r)
	return r
}

func pick(ids []uuid.UUID, idx ...int) []uuid.UUID {
	out := make([]uuid.UUID, len(idx))
	for i, n := range idx {
		out[i] = ids[n]
	}
	return out
}

func groups(ids []uuid.UUID, a, b []int) [][]uuid.UUID {
	return [][]uuid.UUID{pick(ids, a...), pick(ids, b...)}
}

func mustApply(t *testing.T, e *Engine, g *models.Game, a models.Action) *models.Game {
	t.Helper()
	ng, err := e.ApplyAction(g, a)
	require.NoError(t, err)
	require.NotNil(t, ng)
	return ng
}

func mustChoose(t *testing.T, e *Engine, g *models.Game, playerID uuid.UUID, idx int) *models.Game {
	t.Helper()
	ng, err := e.ChooseGroup(g, models.Choice{PlayerID: playerID, GroupIndex: idx})
	require.NoError(t, err)
	require.NotNil(t, ng)
	return ng
}

// playScriptedRound plays one full round from the template deal with multi-geisha
// offers allowed. Afterwards Alice holds geisha_3, 4, 5 and 6 (charm 12) and Bob holds
// geisha_2 and 7; geisha_1 is untouched.
func playScriptedRound(t *testing.T, e *Engine, g *models.Game, alice, bob uuid.UUID, c []uuid.UUID) *models.Game {
	t.Helper()
	// Alice draws c12 and hides it.
	g = mustApply(t, e, g, models.Action{PlayerID: alice, ActionType: models.ActionSecret, CardIDs: pick(c, 12)})
	// Bob draws c13 and gifts geisha_4 cards; Alice takes the pair.
	g = mustApply(t, e, g, models.Action{
		PlayerID: bob, ActionType: models.ActionGift, CardIDs: pick(c, 6, 7, 8),
		TargetGeishaID: "geisha_4", Groupings: groups(c, []int{6}, []int{7, 8}),
	})
	g = mustChoose(t, e, g, alice, 1)
	// Alice draws c14 and discards both geisha_1 cards.
	g = mustApply(t, e, g, models.Action{PlayerID: alice, ActionType: models.ActionDiscard, CardIDs: pick(c, 0, 1)})
	// Bob draws c15 and hides it.
	g = mustApply(t, e, g, models.Action{PlayerID: bob, ActionType: models.ActionSecret, CardIDs: pick(c, 15)})
	// Alice draws c16 and competes with geisha_2 against geisha_3; Bob takes geisha_2.
	g = mustApply(t, e, g, models.Action{
		PlayerID: alice, ActionType: models.ActionCompete, CardIDs: pick(c, 2, 3, 4, 5),
		Groupings: groups(c, []int{2, 3}, []int{4, 5}),
	})
	g = mustChoose(t, e, g, bob, 0)
	// Bob draws c17 and discards two geisha_5 cards.
	g = mustApply(t, e, g, models.Action{PlayerID: bob, ActionType: models.ActionDiscard, CardIDs: pick(c, 9, 10)})
	// Alice draws c18 and gifts; Bob takes the geisha_7 pair.
	g = mustApply(t, e, g, models.Action{
		PlayerID: alice, ActionType: models.ActionGift, CardIDs: pick(c, 14, 16, 18),
		Groupings: groups(c, []int{14}, []int{16, 18}),
	})
	g = mustChoose(t, e, g, bob, 1)
	// Bob draws c19 and competes; Alice takes geisha_5 and geisha_6.
	g = mustApply(t, e, g, models.Action{
		PlayerID: bob, ActionType: models.ActionCompete, CardIDs: pick(c, 11, 13, 17, 19),
		Groupings: groups(c, []int{11, 13}, []int{17, 19}),
	})
	return mustChoose(t, e, g, alice, 0)
}

func countStatus(g *models.Game, status models.CardStatus) int {
	n := 0
	for _, c := range g.Cards {
		if c.Status == status {
			n++
		}
	}
	return n
}
