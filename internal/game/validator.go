package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// Validate checks an action against the game without changing it. It returns nil
// or a *RejectedError. The checks run in a fixed order so the first failing rule is
// the one reported: turn, marker, card ownership, card count, grouping.
func Validate(g *models.Game, a models.Action) error {
	if g.Status != models.GameInProgress || g.Round == nil {
		return reject(ReasonGameNotInProgress, "game is %s", g.Status)
	}
	if g.Round.PendingOffer != nil {
		return reject(ReasonChoicePending, "waiting for the opponent to choose a group")
	}
	if !a.ActionType.Valid() {
		return reject(ReasonUnknownAction, "unknown action type %q", a.ActionType)
	}
	player := g.Player(a.PlayerID)
	if player == nil {
		return reject(ReasonUnknownPlayer, "player %s is not in this game", a.PlayerID)
	}

	if g.Round.CurrentPlayerID != a.PlayerID {
		return reject(ReasonNotYourTurn, "it is not %s's turn", player.Name)
	}
	if player.MarkerUsed(a.ActionType) {
		return reject(ReasonMarkerUsed, "%s already used this round", a.ActionType)
	}

	seen := make(map[uuid.UUID]bool, len(a.CardIDs))
	for _, id := range a.CardIDs {
		if seen[id] {
			return reject(ReasonDuplicateCard, "card %s referenced twice", id)
		}
		seen[id] = true
		card := g.Card(id)
		if card == nil || card.Status != models.CardInHand || card.OwnerID != a.PlayerID || !player.HasInHand(id) {
			return reject(ReasonCardNotInHand, "card %s is not in your hand", id)
		}
	}

	if want := a.ActionType.Arity(); len(a.CardIDs) != want {
		return reject(ReasonWrongCardCount, "%s takes %d cards, got %d", a.ActionType, want, len(a.CardIDs))
	}

	if !a.ActionType.Interactive() {
		if len(a.Groupings) > 0 {
			return reject(ReasonInvalidGrouping, "%s does not take groupings", a.ActionType)
		}
		return nil
	}
	return validateOffer(g, a, seen)
}

// validateOffer checks the two-group partition and the target geisha of a Gift or Compete.
func validateOffer(g *models.Game, a models.Action, cards map[uuid.UUID]bool) error {
	if err := checkPartition(a.Groupings, cards); err != nil {
		return reject(ReasonInvalidGrouping, "%s", err.Detail)
	}

	if a.TargetGeishaID == "" && !g.Rules.SingleGeishaOffers {
		return nil
	}
	if g.Geisha(a.TargetGeishaID) == nil {
		return reject(ReasonUnknownGeisha, "unknown geisha %q", a.TargetGeishaID)
	}
	if !g.Rules.SingleGeishaOffers {
		return nil
	}
	for _, id := range a.CardIDs {
		if c := g.Card(id); c.GeishaID != a.TargetGeishaID {
			return reject(ReasonGeishaMismatch, "card %s belongs to %s, not %s", id, c.GeishaID, a.TargetGeishaID)
		}
	}
	return nil
}

// checkPartition verifies groups are exactly two non-empty sets covering cards with
// no duplicates and nothing foreign. The resolver reuses it as a structural check.
func checkPartition(groups [][]uuid.UUID, cards map[uuid.UUID]bool) *InvariantViolation {
	if len(groups) != 2 {
		return violation("expected 2 groups, got %d", len(groups))
	}
	covered := make(map[uuid.UUID]bool, len(cards))
	for i, grp := range groups {
		if len(grp) == 0 {
			return violation("group %d is empty", i)
		}
		for _, id := range grp {
			if !cards[id] {
				return violation("card %s is not part of the action", id)
			}
			if covered[id] {
				return violation("card %s appears in more than one group", id)
			}
			covered[id] = true
		}
	}
	if len(covered) != len(cards) {
		return violation("groups cover %d of %d cards", len(covered), len(cards))
	}
	return nil
}

// AvailableActions lists the unused actions the player could legally start with
// their current hand plus the pending draw, if any.
func AvailableActions(g *models.Game, playerID uuid.UUID) []models.ActionType {
	player := g.Player(playerID)
	if player == nil || g.Status != models.GameInProgress || g.Round == nil {
		return []models.ActionType{}
	}
	perGeisha := make(map[string]int)
	hand := len(player.HandCards)
	for _, id := range player.HandCards {
		if c := g.Card(id); c != nil {
			perGeisha[c.GeishaID]++
		}
	}
	if g.Round.CurrentPlayerID == playerID && g.Rules.DrawEachTurn && !g.Round.TurnDrawn && len(g.Round.Deck) > 0 {
		if c := g.Card(g.Round.Deck[0]); c != nil {
			perGeisha[c.GeishaID]++
			hand++
		}
	}
	maxSame := 0
	for _, n := range perGeisha {
		if n > maxSame {
			maxSame = n
		}
	}

	out := []models.ActionType{}
	for _, at := range models.ActionTypes {
		if player.MarkerUsed(at) || hand < at.Arity() {
			continue
		}
		if at.Interactive() && g.Rules.SingleGeishaOffers && maxSame < at.Arity() {
			continue
		}
		out = append(out, at)
	}
	return out
}
