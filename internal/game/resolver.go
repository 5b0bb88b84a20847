// internal/game/resolver.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// resolveSecret moves one card from the actor's hand into their secret set.
func resolveSecret(g *models.Game, actor *models.Player, cardID uuid.UUID) error {
	card := g.Card(cardID)
	if card == nil || !actor.RemoveFromHand(cardID) {
		return violation("secret card %s missing from hand of %s", cardID, actor.ID)
	}
	card.Status = models.CardSecret
	card.OwnerID = actor.ID
	card.AllocationMethod = models.AllocationDirect
	actor.SecretCards = append(actor.SecretCards, cardID)
	return nil
}

// resolveDiscard takes cards out of play for the rest of the round. The owner stays
// recorded so only the discarding player sees which cards they were.
func resolveDiscard(g *models.Game, actor *models.Player, cardIDs []uuid.UUID) error {
	for _, id := range cardIDs {
		card := g.Card(id)
		if card == nil || !actor.RemoveFromHand(id) {
			return violation("discarded card %s missing from hand of %s", id, actor.ID)
		}
		card.Status = models.CardDiscarded
		card.OwnerID = actor.ID
		card.AllocationMethod = models.AllocationNone
		g.Round.Discarded = append(g.Round.Discarded, id)
	}
	return nil
}

// proposeOffer parks a Gift or Compete until the opponent picks a group. The cards
// stay in the proposer's hand meanwhile.
func proposeOffer(g *models.Game, a models.Action, at time.Time) {
	g.Round.PendingOffer = &models.Offer{
		ProposerID: a.PlayerID,
		ActionType: a.ActionType,
		GeishaID:   a.TargetGeishaID,
		Groups:     copyGroups(a.Groupings),
		ProposedAt: at,
	}
}

// resolveOffer gives the chosen group to the chooser and the other group to the
// proposer, then clears the pending offer.
func resolveOffer(g *models.Game, chooser *models.Player, groupIndex int) error {
	offer := g.Round.PendingOffer
	proposer := g.Player(offer.ProposerID)
	if proposer == nil {
		return violation("offer proposer %s is not a player", offer.ProposerID)
	}

	offered := make(map[uuid.UUID]bool)
	for _, id := range offer.Cards() {
		offered[id] = true
	}
	if v := checkPartition(offer.Groups, offered); v != nil {
		return v
	}
	if len(offered) != offer.ActionType.Arity() {
		return violation("%s offer holds %d cards", offer.ActionType, len(offered))
	}

	method := models.AllocationGift
	if offer.ActionType == models.ActionCompete {
		method = models.AllocationCompete
	}
	for i, grp := range offer.Groups {
		receiver := proposer
		if i == groupIndex {
			receiver = chooser
		}
		for _, id := range grp {
			card := g.Card(id)
			if card == nil || card.Status != models.CardInHand || !proposer.RemoveFromHand(id) {
				return violation("offered card %s left the proposer's hand", id)
			}
			card.Status = models.CardAllocated
			card.OwnerID = receiver.ID
			card.AllocationMethod = method
			receiver.AllocatedCards = append(receiver.AllocatedCards, id)
		}
	}
	g.Round.PendingOffer = nil
	return nil
}

func copyGroups(groups [][]uuid.UUID) [][]uuid.UUID {
	out := make([][]uuid.UUID, len(groups))
	for i, grp := range groups {
		out[i] = append([]uuid.UUID(nil), grp...)
	}
	return out
}
