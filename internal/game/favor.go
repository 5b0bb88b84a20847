package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// Influence counts the allocated and secret cards player holds for a geisha.
func Influence(geishaID string, playerID uuid.UUID, cards []*models.GiftCard) int {
	n := 0
	for _, c := range cards {
		if c.GeishaID == geishaID && c.OwnerID == playerID && c.Influences() {
			n++
		}
	}
	return n
}

// ComputeFavor returns the player with strictly the most influence on a geisha, or
// uuid.Nil when nobody leads (including when nobody has any influence).
func ComputeFavor(geishaID string, cards []*models.GiftCard) uuid.UUID {
	counts := make(map[uuid.UUID]int)
	for _, c := range cards {
		if c.GeishaID == geishaID && c.Influences() && c.OwnerID != uuid.Nil {
			counts[c.OwnerID]++
		}
	}
	leader, best, tied := uuid.Nil, 0, false
	for pid, n := range counts {
		switch {
		case n > best:
			leader, best, tied = pid, n, false
		case n == best:
			tied = true
		}
	}
	if best == 0 || tied {
		return uuid.Nil
	}
	return leader
}

// refreshFavor recomputes every geisha's live favor projection.
func refreshFavor(g *models.Game) {
	for _, gs := range g.Geishas {
		gs.FavoredPlayer = ComputeFavor(gs.ID, g.Cards)
	}
}

// favorTotals sums favored geishas and their charm per player from a favor map.
func favorTotals(g *models.Game, favor map[string]uuid.UUID) (geishas, charm map[uuid.UUID]int) {
	geishas = make(map[uuid.UUID]int, len(g.Players))
	charm = make(map[uuid.UUID]int, len(g.Players))
	for _, p := range g.Players {
		geishas[p.ID] = 0
		charm[p.ID] = 0
	}
	for _, gs := range g.Geishas {
		pid, ok := favor[gs.ID]
		if !ok || pid == uuid.Nil {
			continue
		}
		geishas[pid]++
		charm[pid] += gs.CharmValue
	}
	return geishas, charm
}
