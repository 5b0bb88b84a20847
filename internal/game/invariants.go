package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

type location struct {
	status models.CardStatus
	owner  uuid.UUID
}

// CheckInvariants verifies the structural rules every game state must satisfy. It
// returns an *InvariantViolation on the first broken rule.
func CheckInvariants(g *models.Game) error {
	if len(g.Players) != 2 {
		return violation("game has %d players", len(g.Players))
	}
	if len(g.Geishas) != catalog.GeishaCount {
		return violation("game has %d geishas", len(g.Geishas))
	}
	if len(g.Cards) != catalog.DeckSize {
		return violation("game has %d cards", len(g.Cards))
	}
	for _, p := range g.Players {
		if err := checkMarkers(p); err != nil {
			return err
		}
	}
	if g.Round == nil {
		for _, c := range g.Cards {
			if c.Status != models.CardInDeck {
				return violation("card %s is %s before the first deal", c.ID, c.Status)
			}
		}
		return nil
	}

	if err := checkLocations(g); err != nil {
		return err
	}
	if err := checkOffer(g); err != nil {
		return err
	}
	for _, gs := range g.Geishas {
		if want := ComputeFavor(gs.ID, g.Cards); gs.FavoredPlayer != want {
			return violation("geisha %s favors %s, cards say %s", gs.ID, gs.FavoredPlayer, want)
		}
	}
	return nil
}

func checkMarkers(p *models.Player) error {
	if len(p.ActionMarkers) != len(models.ActionTypes) {
		return violation("player %s has %d markers", p.ID, len(p.ActionMarkers))
	}
	seen := make(map[models.ActionType]bool, len(models.ActionTypes))
	for _, m := range p.ActionMarkers {
		if !m.ActionType.Valid() || seen[m.ActionType] {
			return violation("player %s has a bad or repeated %s marker", p.ID, m.ActionType)
		}
		seen[m.ActionType] = true
	}
	return nil
}

// checkLocations ensures each card sits in exactly one list and that the list agrees
// with the card's status and owner.
func checkLocations(g *models.Game) error {
	where := make(map[uuid.UUID]location, len(g.Cards))
	place := func(ids []uuid.UUID, loc location) error {
		for _, id := range ids {
			if prev, ok := where[id]; ok {
				return violation("card %s is both %s and %s", id, prev.status, loc.status)
			}
			where[id] = loc
		}
		return nil
	}

	if err := place(g.Round.Deck, location{status: models.CardInDeck}); err != nil {
		return err
	}
	if err := place([]uuid.UUID{g.Round.RemovedCard}, location{status: models.CardRemoved}); err != nil {
		return err
	}
	for _, p := range g.Players {
		if err := place(p.HandCards, location{models.CardInHand, p.ID}); err != nil {
			return err
		}
		if err := place(p.AllocatedCards, location{models.CardAllocated, p.ID}); err != nil {
			return err
		}
		if err := place(p.SecretCards, location{models.CardSecret, p.ID}); err != nil {
			return err
		}
	}
	if err := place(g.Round.Discarded, location{status: models.CardDiscarded}); err != nil {
		return err
	}

	if len(where) != len(g.Cards) {
		return violation("%d card locations for %d cards", len(where), len(g.Cards))
	}
	for _, c := range g.Cards {
		loc, ok := where[c.ID]
		if !ok {
			return violation("card %s is in no location", c.ID)
		}
		if c.Status != loc.status {
			return violation("card %s has status %s but sits in %s", c.ID, c.Status, loc.status)
		}
		switch c.Status {
		case models.CardInDeck, models.CardRemoved:
			if c.OwnerID != uuid.Nil {
				return violation("unowned card %s has owner %s", c.ID, c.OwnerID)
			}
		case models.CardDiscarded:
		default:
			if c.OwnerID != loc.owner {
				return violation("card %s owned by %s but held by %s", c.ID, c.OwnerID, loc.owner)
			}
		}
	}
	return nil
}

func checkOffer(g *models.Game) error {
	offer := g.Round.PendingOffer
	if offer == nil {
		return nil
	}
	proposer := g.Player(offer.ProposerID)
	if proposer == nil {
		return violation("offer proposer %s is not a player", offer.ProposerID)
	}
	for _, id := range offer.Cards() {
		if !proposer.HasInHand(id) {
			return violation("offered card %s is not in the proposer's hand", id)
		}
	}
	return nil
}
