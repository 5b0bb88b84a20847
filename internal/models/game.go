// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle state of a game.
type GameStatus string

const (
	GameInitializing GameStatus = "INITIALIZING"
	GameInProgress   GameStatus = "IN_PROGRESS"
	GameFinished     GameStatus = "FINISHED"
)

// WinCondition names how a finished game was decided.
type WinCondition string

const (
	WinNone           WinCondition = ""
	WinGeishaMajority WinCondition = "GEISHA_MAJORITY"
	WinCharmMajority  WinCondition = "CHARM_MAJORITY"
	WinResignation    WinCondition = "RESIGNATION"
)

// Offer is a Gift or Compete waiting for the opponent to pick a group.
type Offer struct {
	ProposerID uuid.UUID     `json:"proposer_id"`
	ActionType ActionType    `json:"action_type"`
	GeishaID   string        `json:"geisha_id,omitempty"`
	Groups     [][]uuid.UUID `json:"groups"`
	ProposedAt time.Time     `json:"proposed_at"`
}

// Cards returns every offered card id, group by group.
func (o *Offer) Cards() []uuid.UUID {
	var ids []uuid.UUID
	for _, grp := range o.Groups {
		ids = append(ids, grp...)
	}
	return ids
}

// Round holds the per-round card flow and turn state.
type Round struct {
	Number           int         `json:"number"`
	Deck             []uuid.UUID `json:"deck"`
	RemovedCard      uuid.UUID   `json:"removed_card"`
	Discarded        []uuid.UUID `json:"discarded"`
	StartingPlayerID uuid.UUID   `json:"starting_player_id"`
	CurrentPlayerID  uuid.UUID   `json:"current_player_id"`
	TurnDrawn        bool        `json:"turn_drawn"`
	PendingOffer     *Offer      `json:"pending_offer,omitempty"`
}

// RoundResult is the scoring snapshot taken when a round ends.
type RoundResult struct {
	Number          int                  `json:"number"`
	Favor           map[string]uuid.UUID `json:"favor"`
	RevealedSecrets []uuid.UUID          `json:"revealed_secrets"`
	GeishaCounts    map[uuid.UUID]int    `json:"geisha_counts"`
	CharmTotals     map[uuid.UUID]int    `json:"charm_totals"`
	EndedAt         time.Time            `json:"ended_at"`
}

// Game is the complete state of one match.
type Game struct {
	ID       uuid.UUID   `json:"id"`
	Players  []*Player   `json:"players"`
	Geishas  []*Geisha   `json:"geishas"`
	Cards    []*GiftCard `json:"cards"`
	Status   GameStatus  `json:"status"`
	Round    *Round      `json:"round"`
	Rules    HouseRules  `json:"rules"`
	WinnerID uuid.UUID   `json:"winner_id"`

	WinCondition WinCondition `json:"win_condition,omitempty"`

	// FavorRecord is the favor carried between rounds, keyed by geisha id. It only
	// changes at round end.
	FavorRecord map[string]uuid.UUID `json:"favor_record"`

	Rounds    []RoundResult  `json:"rounds"`
	Log       []ActionRecord `json:"log"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Card looks a card up by id.
func (g *Game) Card(id uuid.UUID) *GiftCard {
	for _, c := range g.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Player looks a player up by id.
func (g *Game) Player(id uuid.UUID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Opponent returns the other seat, or nil if id is not a player of this game.
func (g *Game) Opponent(id uuid.UUID) *Player {
	if g.Player(id) == nil {
		return nil
	}
	for _, p := range g.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// Geisha looks a geisha up by id.
func (g *Game) Geisha(id string) *Geisha {
	for _, gs := range g.Geishas {
		if gs.ID == id {
			return gs
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	if g.Round == nil {
		return nil
	}
	return g.Player(g.Round.CurrentPlayerID)
}

// Clone returns a deep copy; transitions work on a clone so the input never changes.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = p.clone()
	}
	c.Geishas = make([]*Geisha, len(g.Geishas))
	for i, gs := range g.Geishas {
		cp := *gs
		c.Geishas[i] = &cp
	}
	c.Cards = make([]*GiftCard, len(g.Cards))
	for i, card := range g.Cards {
		cp := *card
		c.Cards[i] = &cp
	}
	c.Round = g.Round.clone()
	c.FavorRecord = make(map[string]uuid.UUID, len(g.FavorRecord))
	for k, v := range g.FavorRecord {
		c.FavorRecord[k] = v
	}
	c.Rounds = make([]RoundResult, len(g.Rounds))
	for i, rr := range g.Rounds {
		c.Rounds[i] = rr.clone()
	}
	c.Log = make([]ActionRecord, len(g.Log))
	for i, rec := range g.Log {
		c.Log[i] = rec.clone()
	}
	return &c
}

func (p *Player) clone() *Player {
	c := *p
	c.HandCards = copyIDs(p.HandCards)
	c.AllocatedCards = copyIDs(p.AllocatedCards)
	c.SecretCards = copyIDs(p.SecretCards)
	c.ActionMarkers = make([]ActionMarker, len(p.ActionMarkers))
	for i, m := range p.ActionMarkers {
		c.ActionMarkers[i] = m
		if m.UsedAt != nil {
			at := *m.UsedAt
			c.ActionMarkers[i].UsedAt = &at
		}
	}
	return &c
}

func (r *Round) clone() *Round {
	if r == nil {
		return nil
	}
	c := *r
	c.Deck = copyIDs(r.Deck)
	c.Discarded = copyIDs(r.Discarded)
	if r.PendingOffer != nil {
		o := *r.PendingOffer
		o.Groups = copyGroups(r.PendingOffer.Groups)
		c.PendingOffer = &o
	}
	return &c
}

func (rr RoundResult) clone() RoundResult {
	c := rr
	c.Favor = make(map[string]uuid.UUID, len(rr.Favor))
	for k, v := range rr.Favor {
		c.Favor[k] = v
	}
	c.RevealedSecrets = copyIDs(rr.RevealedSecrets)
	c.GeishaCounts = make(map[uuid.UUID]int, len(rr.GeishaCounts))
	for k, v := range rr.GeishaCounts {
		c.GeishaCounts[k] = v
	}
	c.CharmTotals = make(map[uuid.UUID]int, len(rr.CharmTotals))
	for k, v := range rr.CharmTotals {
		c.CharmTotals[k] = v
	}
	return c
}

func (rec ActionRecord) clone() ActionRecord {
	c := rec
	c.CardIDs = copyIDs(rec.CardIDs)
	c.Groups = copyGroups(rec.Groups)
	if rec.ChosenGroup != nil {
		v := *rec.ChosenGroup
		c.ChosenGroup = &v
	}
	return c
}

func copyIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func copyGroups(groups [][]uuid.UUID) [][]uuid.UUID {
	if groups == nil {
		return nil
	}
	out := make([][]uuid.UUID, len(groups))
	for i, grp := range groups {
		out[i] = copyIDs(grp)
	}
	return out
}
