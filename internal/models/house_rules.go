// internal/models/house_rules.go
package models

// HouseRules captures the rule variant a game is played with. A game copies the
// engine's rules at creation so later config changes never affect running games.
type HouseRules struct {
	// HandSize is the number of cards dealt to each player at round start.
	HandSize int `json:"handSize"`

	// GeishaMajority is the number of favoring geishas that wins the game.
	GeishaMajority int `json:"geishaMajority"`

	// CharmThreshold is the combined charm that wins the game. Zero means strictly
	// more than half of the catalog's total charm.
	CharmThreshold int `json:"charmThreshold"`

	// SingleGeishaOffers requires every card of a Gift or Compete to belong to the
	// declared target geisha.
	SingleGeishaOffers bool `json:"singleGeishaOffers"`

	// DrawEachTurn makes the current player draw the top deck card at the start of
	// each turn.
	DrawEachTurn bool `json:"drawEachTurn"`

	// RetainFavorOnTie keeps a geisha with the previous round's holder when the
	// round ends in a tie on her.
	RetainFavorOnTie bool `json:"retainFavorOnTie"`
}
