// internal/game/view.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// ViewCard is a card the viewer is allowed to see face up.
type ViewCard struct {
	ID               uuid.UUID               `json:"id"`
	GeishaID         string                  `json:"geisha_id"`
	ItemName         string                  `json:"item_name"`
	CharmValue       int                     `json:"charm_value"`
	Status           models.CardStatus       `json:"status"`
	AllocationMethod models.AllocationMethod `json:"allocation_method,omitempty"`
}

// ViewGeisha shows a geisha with the favor visible to the viewer and the favor record
// carried from earlier rounds.
type ViewGeisha struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CharmValue    int       `json:"charm_value"`
	GiftItemName  string    `json:"gift_item_name"`
	FavoredPlayer uuid.UUID `json:"favored_player"`
	RecordHolder  uuid.UUID `json:"record_holder"`
}

// ViewPlayer is one seat as seen by the viewer. Hand, secrets and discards are only
// filled in for the viewer's own seat; the opponent shows counts.
type ViewPlayer struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	IsViewer         bool                `json:"is_viewer"`
	IsCurrentTurn    bool                `json:"is_current_turn"`
	HandSize         int                 `json:"hand_size"`
	Hand             []ViewCard          `json:"hand,omitempty"`
	Allocated        []ViewCard          `json:"allocated"`
	SecretCount      int                 `json:"secret_count"`
	Secrets          []ViewCard          `json:"secrets,omitempty"`
	DiscardCount     int                 `json:"discard_count"`
	Discarded        []ViewCard          `json:"discarded,omitempty"`
	UsedActions      []models.ActionType `json:"used_actions"`
	AvailableActions []models.ActionType `json:"available_actions,omitempty"`
}

// ViewOffer is a pending Gift or Compete. Offered cards are public.
type ViewOffer struct {
	ProposerID     uuid.UUID         `json:"proposer_id"`
	ActionType     models.ActionType `json:"action_type"`
	GeishaID       string            `json:"geisha_id,omitempty"`
	Groups         [][]ViewCard      `json:"groups"`
	AwaitingChoice bool              `json:"awaiting_choice"`
	ProposedAt     time.Time         `json:"proposed_at"`
}

// ViewRecord is a log entry with hidden card ids stripped.
type ViewRecord struct {
	models.ActionRecord
	Redacted bool `json:"redacted,omitempty"`
}

// PublicView is everything one player may know about a game.
type PublicView struct {
	GameID           uuid.UUID            `json:"game_id"`
	ViewerID         uuid.UUID            `json:"viewer_id"`
	Status           models.GameStatus    `json:"status"`
	Round            int                  `json:"round"`
	CurrentPlayerID  uuid.UUID            `json:"current_player_id"`
	StartingPlayerID uuid.UUID            `json:"starting_player_id"`
	DeckSize         int                  `json:"deck_size"`
	NextDraw         *ViewCard            `json:"next_draw,omitempty"`
	Geishas          []ViewGeisha         `json:"geishas"`
	Players          []ViewPlayer         `json:"players"`
	PendingOffer     *ViewOffer           `json:"pending_offer,omitempty"`
	WinnerID         uuid.UUID            `json:"winner_id"`
	WinCondition     models.WinCondition  `json:"win_condition,omitempty"`
	Rules            models.HouseRules    `json:"rules"`
	Rounds           []models.RoundResult `json:"rounds"`
	Log              []ViewRecord         `json:"log"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// SnapshotFor builds the view of g for viewerID. It reads g without changing it and is
// computed fresh on every call.
func SnapshotFor(g *models.Game, viewerID uuid.UUID) (*PublicView, error) {
	viewer := g.Player(viewerID)
	if viewer == nil {
		return nil, reject(ReasonUnknownPlayer, "viewer %s is not in this game", viewerID)
	}

	v := &PublicView{
		GameID:       g.ID,
		ViewerID:     viewerID,
		Status:       g.Status,
		WinnerID:     g.WinnerID,
		WinCondition: g.WinCondition,
		Rules:        g.Rules,
		Rounds:       append([]models.RoundResult{}, g.Rounds...),
		UpdatedAt:    g.UpdatedAt,
	}

	secretsRevealed := false
	if r := g.Round; r != nil {
		v.Round = r.Number
		v.CurrentPlayerID = r.CurrentPlayerID
		v.StartingPlayerID = r.StartingPlayerID
		v.DeckSize = len(r.Deck)
		secretsRevealed = roundEnded(g, r.Number)

		if g.Status == models.GameInProgress && r.CurrentPlayerID == viewerID && r.PendingOffer == nil &&
			g.Rules.DrawEachTurn && !r.TurnDrawn && len(r.Deck) > 0 {
			vc := toViewCard(g.Card(r.Deck[0]))
			v.NextDraw = &vc
		}
		if o := r.PendingOffer; o != nil {
			vo := &ViewOffer{
				ProposerID:     o.ProposerID,
				ActionType:     o.ActionType,
				GeishaID:       o.GeishaID,
				Groups:         make([][]ViewCard, len(o.Groups)),
				AwaitingChoice: o.ProposerID != viewerID,
				ProposedAt:     o.ProposedAt,
			}
			for i, grp := range o.Groups {
				vo.Groups[i] = viewCards(g, grp)
			}
			v.PendingOffer = vo
		}
	}

	visible := make([]*models.GiftCard, 0, len(g.Cards))
	for _, p := range g.Players {
		self := p.ID == viewerID
		vp := ViewPlayer{
			ID:            p.ID,
			Name:          p.Name,
			IsViewer:      self,
			IsCurrentTurn: g.Round != nil && g.Round.CurrentPlayerID == p.ID,
			HandSize:      len(p.HandCards),
			Allocated:     viewCards(g, p.AllocatedCards),
			SecretCount:   len(p.SecretCards),
			UsedActions:   p.UsedActions(),
		}
		for _, id := range p.AllocatedCards {
			visible = append(visible, g.Card(id))
		}
		if self || secretsRevealed {
			vp.Secrets = viewCards(g, p.SecretCards)
			for _, id := range p.SecretCards {
				visible = append(visible, g.Card(id))
			}
		}
		discards := ownedDiscards(g, p.ID)
		vp.DiscardCount = len(discards)
		if self {
			vp.Hand = viewCards(g, p.HandCards)
			vp.Discarded = viewCards(g, discards)
			vp.AvailableActions = AvailableActions(g, p.ID)
		}
		v.Players = append(v.Players, vp)
	}

	for _, gs := range g.Geishas {
		v.Geishas = append(v.Geishas, ViewGeisha{
			ID:            gs.ID,
			Name:          gs.Name,
			CharmValue:    gs.CharmValue,
			GiftItemName:  gs.GiftItemName,
			FavoredPlayer: ComputeFavor(gs.ID, visible),
			RecordHolder:  g.FavorRecord[gs.ID],
		})
	}

	v.Log = make([]ViewRecord, 0, len(g.Log))
	for _, rec := range g.Log {
		v.Log = append(v.Log, redactRecord(g, rec, viewerID))
	}
	return v, nil
}

// redactRecord hides the card ids of another player's draws and discards, and of their
// secrets until that round has been scored.
func redactRecord(g *models.Game, rec models.ActionRecord, viewerID uuid.UUID) ViewRecord {
	out := ViewRecord{ActionRecord: rec}
	out.CardIDs = append([]uuid.UUID(nil), rec.CardIDs...)
	if rec.PlayerID == viewerID || rec.PlayerID == uuid.Nil {
		return out
	}
	hide := false
	switch {
	case rec.Type == models.RecordCardDrawn:
		hide = true
	case rec.Type == models.RecordActionResolved && rec.ActionType == models.ActionDiscard:
		hide = true
	case rec.Type == models.RecordActionResolved && rec.ActionType == models.ActionSecret:
		hide = !roundEnded(g, rec.Round)
	}
	if hide {
		out.CardIDs = nil
		out.Redacted = true
	}
	return out
}

func roundEnded(g *models.Game, number int) bool {
	for _, rr := range g.Rounds {
		if rr.Number == number {
			return true
		}
	}
	return false
}

func ownedDiscards(g *models.Game, playerID uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	if g.Round == nil {
		return out
	}
	for _, id := range g.Round.Discarded {
		if c := g.Card(id); c != nil && c.OwnerID == playerID {
			out = append(out, id)
		}
	}
	return out
}

func viewCards(g *models.Game, ids []uuid.UUID) []ViewCard {
	out := make([]ViewCard, 0, len(ids))
	for _, id := range ids {
		if c := g.Card(id); c != nil {
			out = append(out, toViewCard(c))
		}
	}
	return out
}

func toViewCard(c *models.GiftCard) ViewCard {
	return ViewCard{
		ID:               c.ID,
		GeishaID:         c.GeishaID,
		ItemName:         c.ItemName,
		CharmValue:       c.CharmValue,
		Status:           c.Status,
		AllocationMethod: c.AllocationMethod,
	}
}
