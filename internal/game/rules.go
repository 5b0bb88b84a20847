// internal/game/rules.go
package game

import (
	"fmt"

	"github.com/jason-s-yu/hanamikoji/internal/models"
)

// DefaultHouseRules returns the standard rule set.
func DefaultHouseRules() models.HouseRules {
	return models.HouseRules{
		HandSize:           6,
		GeishaMajority:     4,
		CharmThreshold:     0,
		SingleGeishaOffers: true,
		DrawEachTurn:       true,
		RetainFavorOnTie:   true,
	}
}

// ValidateRules checks that a rule set can produce a playable game.
func ValidateRules(r models.HouseRules) error {
	if r.HandSize < 1 || r.HandSize > 10 {
		return fmt.Errorf("handSize must be between 1 and 10, got %d", r.HandSize)
	}
	if r.GeishaMajority < 1 || r.GeishaMajority > 7 {
		return fmt.Errorf("geishaMajority must be between 1 and 7, got %d", r.GeishaMajority)
	}
	if r.CharmThreshold < 0 {
		return fmt.Errorf("charmThreshold must be non-negative")
	}
	return nil
}

// UpdateRules applies the keys present in newRules onto rules. Missing keys keep
// their current value.
func UpdateRules(rules *models.HouseRules, newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			// JSON numbers decode as float64
			switch v := val.(type) {
			case float64:
				*field = int(v)
			case int:
				*field = v
			default:
				return fmt.Errorf("invalid type for %s", key)
			}
		}
		return nil
	}

	if err := assignInt(&rules.HandSize, "handSize"); err != nil {
		return err
	}
	if err := assignInt(&rules.GeishaMajority, "geishaMajority"); err != nil {
		return err
	}
	if err := assignInt(&rules.CharmThreshold, "charmThreshold"); err != nil {
		return err
	}
	if err := assignBool(&rules.SingleGeishaOffers, "singleGeishaOffers"); err != nil {
		return err
	}
	if err := assignBool(&rules.DrawEachTurn, "drawEachTurn"); err != nil {
		return err
	}
	if err := assignBool(&rules.RetainFavorOnTie, "retainFavorOnTie"); err != nil {
		return err
	}
	return ValidateRules(*rules)
}

// ParseRules returns current with the given overrides applied.
func ParseRules(rules map[string]interface{}, current models.HouseRules) (models.HouseRules, error) {
	houseRules := current
	err := UpdateRules(&houseRules, rules)
	return houseRules, err
}
