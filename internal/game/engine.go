// internal/game/engine.go
package game

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/models"
	"github.com/sirupsen/logrus"
)

const maxPlayerNameLength = 50

// Engine runs games against one catalog and rule set. It holds no game state: every
// transition takes a game and returns a new one, leaving the input untouched.
type Engine struct {
	catalog *catalog.Catalog
	rules   models.HouseRules
	shuffle catalog.Shuffler
	now     func() time.Time
	log     *logrus.Entry
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffler sets the shuffle used to order the deck. Tests pass a fixed permutation.
func WithShuffler(s catalog.Shuffler) Option {
	return func(e *Engine) { e.shuffle = s }
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger transitions are reported to.
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) { e.log = l }
}

// WithRules replaces the default house rules for new games.
func WithRules(r models.HouseRules) Option {
	return func(e *Engine) { e.rules = r }
}

// NewEngine validates the catalog and rules and returns a ready engine.
func NewEngine(cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	if cat == nil {
		return nil, errors.New("engine requires a catalog")
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		catalog: cat,
		rules:   DefaultHouseRules(),
		shuffle: catalog.RandomShuffle,
		now:     time.Now,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := ValidateRules(e.rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Rules returns the rules new games are created with.
func (e *Engine) Rules() models.HouseRules {
	return e.rules
}

// CreateGame builds a game for two named players and deals the first round.
func (e *Engine) CreateGame(player1Name, player2Name string) (*models.Game, error) {
	names := []string{strings.TrimSpace(player1Name), strings.TrimSpace(player2Name)}
	for _, n := range names {
		if l := utf8.RuneCountInString(n); l == 0 || l > maxPlayerNameLength {
			return nil, reject(ReasonInvalidName, "player name must be 1-%d characters, got %q", maxPlayerNameLength, n)
		}
	}

	rules := e.rules
	if rules.CharmThreshold == 0 {
		rules.CharmThreshold = e.catalog.CharmThreshold()
	}

	now := e.now()
	g := &models.Game{
		ID:          uuid.New(),
		Players:     []*models.Player{models.NewPlayer(names[0]), models.NewPlayer(names[1])},
		Geishas:     e.catalog.NewGeishas(),
		Cards:       e.catalog.NewDeck(e.shuffle),
		Status:      models.GameInitializing,
		Rules:       rules,
		FavorRecord: make(map[string]uuid.UUID, catalog.GeishaCount),
		Rounds:      []models.RoundResult{},
		Log:         []models.ActionRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, gs := range g.Geishas {
		g.FavorRecord[gs.ID] = uuid.Nil
	}

	e.dealRound(g, 1, g.Players[0].ID, now)
	g.Status = models.GameInProgress
	if err := CheckInvariants(g); err != nil {
		return nil, err
	}

	e.gameLog(g).WithField("players", names).Info("game created")
	return g, nil
}

// ApplyAction validates and applies a player's action. Secret and Discard resolve at
// once; Gift and Compete leave an offer pending for the opponent. On error the
// returned game is nil and g is unchanged.
func (e *Engine) ApplyAction(g *models.Game, a models.Action) (*models.Game, error) {
	ng := g.Clone()
	now := e.now()

	if ng.Status == models.GameInProgress && ng.Round != nil && ng.Round.PendingOffer == nil &&
		ng.Round.CurrentPlayerID == a.PlayerID {
		e.draw(ng, a.PlayerID, now)
	}

	if err := Validate(ng, a); err != nil {
		return nil, err
	}
	actor := ng.Player(a.PlayerID)

	switch a.ActionType {
	case models.ActionSecret:
		if err := resolveSecret(ng, actor, a.CardIDs[0]); err != nil {
			return nil, err
		}
	case models.ActionDiscard:
		if err := resolveDiscard(ng, actor, a.CardIDs); err != nil {
			return nil, err
		}
	case models.ActionGift, models.ActionCompete:
		proposeOffer(ng, a, now)
		e.appendRecord(ng, models.ActionRecord{
			Type:       models.RecordOfferProposed,
			PlayerID:   a.PlayerID,
			ActionType: a.ActionType,
			CardIDs:    append([]uuid.UUID(nil), a.CardIDs...),
			GeishaID:   a.TargetGeishaID,
			Groups:     copyGroups(a.Groupings),
		}, now)
		e.actionLog(ng, a.PlayerID, a.ActionType).Debug("offer proposed")
		return e.commit(ng, now)
	}

	e.appendRecord(ng, models.ActionRecord{
		Type:       models.RecordActionResolved,
		PlayerID:   a.PlayerID,
		ActionType: a.ActionType,
		CardIDs:    append([]uuid.UUID(nil), a.CardIDs...),
	}, now)
	if err := e.finishTurn(ng, actor, a.ActionType, now); err != nil {
		return nil, err
	}
	e.actionLog(ng, a.PlayerID, a.ActionType).Debug("action resolved")
	return e.commit(ng, now)
}

// ChooseGroup resolves the pending Gift or Compete with the opponent's pick.
func (e *Engine) ChooseGroup(g *models.Game, c models.Choice) (*models.Game, error) {
	if g.Status != models.GameInProgress || g.Round == nil {
		return nil, reject(ReasonGameNotInProgress, "game is %s", g.Status)
	}
	offer := g.Round.PendingOffer
	if offer == nil {
		return nil, reject(ReasonNoPendingChoice, "no offer is waiting for a choice")
	}
	if g.Player(c.PlayerID) == nil {
		return nil, reject(ReasonUnknownPlayer, "player %s is not in this game", c.PlayerID)
	}
	if c.PlayerID == offer.ProposerID {
		return nil, reject(ReasonNotOpponent, "only the opponent of the proposer may choose")
	}
	if c.GroupIndex < 0 || c.GroupIndex >= len(offer.Groups) {
		return nil, reject(ReasonInvalidChoice, "group index %d out of range", c.GroupIndex)
	}

	ng := g.Clone()
	now := e.now()
	offer = ng.Round.PendingOffer
	proposer := ng.Player(offer.ProposerID)
	chooser := ng.Player(c.PlayerID)

	rec := models.ActionRecord{
		Type:        models.RecordActionResolved,
		PlayerID:    offer.ProposerID,
		ActionType:  offer.ActionType,
		CardIDs:     offer.Cards(),
		GeishaID:    offer.GeishaID,
		Groups:      copyGroups(offer.Groups),
		ChosenGroup: &c.GroupIndex,
	}
	actionType := offer.ActionType
	if err := resolveOffer(ng, chooser, c.GroupIndex); err != nil {
		return nil, err
	}
	e.appendRecord(ng, rec, now)
	if err := e.finishTurn(ng, proposer, actionType, now); err != nil {
		return nil, err
	}
	e.actionLog(ng, proposer.ID, actionType).WithField("chosen_group", c.GroupIndex).Debug("offer resolved")
	return e.commit(ng, now)
}

// Resign ends the game in the opponent's favor.
func (e *Engine) Resign(g *models.Game, playerID uuid.UUID) (*models.Game, error) {
	if g.Status != models.GameInProgress {
		return nil, reject(ReasonGameNotInProgress, "game is %s", g.Status)
	}
	opponent := g.Opponent(playerID)
	if opponent == nil {
		return nil, reject(ReasonUnknownPlayer, "player %s is not in this game", playerID)
	}

	ng := g.Clone()
	now := e.now()
	e.appendRecord(ng, models.ActionRecord{Type: models.RecordPlayerResigned, PlayerID: playerID}, now)
	e.finishGame(ng, opponent.ID, models.WinResignation, now)
	return e.commit(ng, now)
}

// draw moves the top deck card into the current player's hand once per turn.
func (e *Engine) draw(g *models.Game, playerID uuid.UUID, now time.Time) {
	r := g.Round
	if !g.Rules.DrawEachTurn || r.TurnDrawn || len(r.Deck) == 0 {
		return
	}
	player := g.Player(playerID)
	id := r.Deck[0]
	r.Deck = r.Deck[1:]
	card := g.Card(id)
	card.Status = models.CardInHand
	card.OwnerID = playerID
	player.HandCards = append(player.HandCards, id)
	r.TurnDrawn = true
	e.appendRecord(g, models.ActionRecord{
		Type:     models.RecordCardDrawn,
		PlayerID: playerID,
		CardIDs:  []uuid.UUID{id},
	}, now)
}

// finishTurn spends the actor's marker, refreshes favor and passes the turn. When both
// players are out of markers the round is scored.
func (e *Engine) finishTurn(g *models.Game, actor *models.Player, t models.ActionType, now time.Time) error {
	if !actor.UseMarker(t, now) {
		return violation("marker %s of %s already spent at resolution", t, actor.ID)
	}
	refreshFavor(g)

	opponent := g.Opponent(actor.ID)
	g.Round.CurrentPlayerID = opponent.ID
	g.Round.TurnDrawn = false

	for _, p := range g.Players {
		if !p.AllMarkersUsed() {
			return nil
		}
	}
	e.endRound(g, now)
	return nil
}

// endRound scores the round into the favor record, checks for a winner and otherwise
// deals the next round.
func (e *Engine) endRound(g *models.Game, now time.Time) {
	revealed := []uuid.UUID{}
	for _, p := range g.Players {
		revealed = append(revealed, p.SecretCards...)
	}

	for _, gs := range g.Geishas {
		switch leader := ComputeFavor(gs.ID, g.Cards); {
		case leader != uuid.Nil:
			g.FavorRecord[gs.ID] = leader
		case !g.Rules.RetainFavorOnTie:
			g.FavorRecord[gs.ID] = uuid.Nil
		}
	}

	favor := make(map[string]uuid.UUID, len(g.FavorRecord))
	for k, v := range g.FavorRecord {
		favor[k] = v
	}
	geishas, charm := favorTotals(g, favor)
	g.Rounds = append(g.Rounds, models.RoundResult{
		Number:          g.Round.Number,
		Favor:           favor,
		RevealedSecrets: revealed,
		GeishaCounts:    geishas,
		CharmTotals:     charm,
		EndedAt:         now,
	})
	e.appendRecord(g, models.ActionRecord{Type: models.RecordRoundEnd, CardIDs: revealed}, now)
	e.gameLog(g).WithFields(logrus.Fields{
		"round":  g.Round.Number,
		"charm":  charm,
		"geisha": geishas,
	}).Info("round ended")

	if winner, ok := e.leader(g, charm, g.Rules.CharmThreshold); ok {
		e.finishGame(g, winner, models.WinCharmMajority, now)
		return
	}
	if winner, ok := e.leader(g, geishas, g.Rules.GeishaMajority); ok {
		e.finishGame(g, winner, models.WinGeishaMajority, now)
		return
	}

	next := g.Round.Number + 1
	for _, c := range g.Cards {
		c.ResetToDeck()
	}
	if e.shuffle != nil {
		e.shuffle(len(g.Cards), func(i, j int) {
			g.Cards[i], g.Cards[j] = g.Cards[j], g.Cards[i]
		})
	}
	e.dealRound(g, next, g.Players[(next-1)%2].ID, now)
}

// leader returns the player reaching threshold on score, preferring the higher score.
// Equal qualifying scores decide nothing.
func (e *Engine) leader(g *models.Game, score map[uuid.UUID]int, threshold int) (uuid.UUID, bool) {
	best, bestScore, tied := uuid.Nil, -1, false
	for _, p := range g.Players {
		s := score[p.ID]
		if s < threshold {
			continue
		}
		switch {
		case s > bestScore:
			best, bestScore, tied = p.ID, s, false
		case s == bestScore:
			tied = true
		}
	}
	if best == uuid.Nil || tied {
		return uuid.Nil, false
	}
	return best, true
}

func (e *Engine) finishGame(g *models.Game, winner uuid.UUID, cond models.WinCondition, now time.Time) {
	g.Status = models.GameFinished
	g.WinnerID = winner
	g.WinCondition = cond
	if g.Round != nil {
		g.Round.PendingOffer = nil
	}
	e.appendRecord(g, models.ActionRecord{Type: models.RecordGameEnd, PlayerID: winner}, now)
	e.gameLog(g).WithFields(logrus.Fields{
		"winner":    winner,
		"condition": cond,
	}).Info("game finished")
}

// dealRound lays out a round from the current order of g.Cards: the last card is
// removed, the first HandSize cards go to the first seat, the next HandSize to the
// second, and the rest form the deck.
func (e *Engine) dealRound(g *models.Game, number int, starter uuid.UUID, now time.Time) {
	hand := g.Rules.HandSize
	n := len(g.Cards)

	removed := g.Cards[n-1]
	removed.Status = models.CardRemoved

	for seat, p := range g.Players {
		p.ClearCards()
		p.ResetMarkers()
		for _, c := range g.Cards[seat*hand : (seat+1)*hand] {
			c.Status = models.CardInHand
			c.OwnerID = p.ID
			p.HandCards = append(p.HandCards, c.ID)
		}
	}

	deck := make([]uuid.UUID, 0, n-1-2*hand)
	for _, c := range g.Cards[2*hand : n-1] {
		deck = append(deck, c.ID)
	}

	g.Round = &models.Round{
		Number:           number,
		Deck:             deck,
		RemovedCard:      removed.ID,
		Discarded:        []uuid.UUID{},
		StartingPlayerID: starter,
		CurrentPlayerID:  starter,
	}
	refreshFavor(g)
	e.appendRecord(g, models.ActionRecord{Type: models.RecordRoundStart, PlayerID: starter}, now)
}

func (e *Engine) appendRecord(g *models.Game, rec models.ActionRecord, now time.Time) {
	rec.Index = len(g.Log)
	if g.Round != nil {
		rec.Round = g.Round.Number
	}
	rec.Timestamp = now
	g.Log = append(g.Log, rec)
}

// commit stamps and checks the new state before handing it back.
func (e *Engine) commit(g *models.Game, now time.Time) (*models.Game, error) {
	g.UpdatedAt = now
	if err := CheckInvariants(g); err != nil {
		e.gameLog(g).WithError(err).Error("transition broke game invariants")
		return nil, err
	}
	return g, nil
}

func (e *Engine) gameLog(g *models.Game) *logrus.Entry {
	return e.log.WithField("game_id", g.ID)
}

func (e *Engine) actionLog(g *models.Game, playerID uuid.UUID, t models.ActionType) *logrus.Entry {
	fields := logrus.Fields{"player_id": playerID, "action": t}
	if g.Round != nil {
		fields["round"] = g.Round.Number
	}
	return e.gameLog(g).WithFields(fields)
}
