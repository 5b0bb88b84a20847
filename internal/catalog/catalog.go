// internal/catalog/catalog.go
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jason-s-yu/hanamikoji/internal/models"
)

const (
	// GeishaCount is the number of geishas every catalog must define.
	GeishaCount = 7
	// DeckSize is the number of gift cards every catalog must produce.
	DeckSize = 21
)

//go:embed data/catalog.json
var defaultCatalog []byte

// ErrConfiguration marks catalog data that breaks the 7 geisha / 21 card layout.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError describes why a catalog was rejected.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Detail)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Detail: fmt.Sprintf(format, args...)}
}

// GeishaTemplate is the static description of one geisha.
type GeishaTemplate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CharmValue int    `json:"charm_value"`
	GiftItem   string `json:"gift_item"`
}

// CardTemplate describes Count identical gift cards for one geisha.
type CardTemplate struct {
	GeishaID   string `json:"geisha_id"`
	Name       string `json:"name"`
	CharmValue int    `json:"charm_value"`
	Count      int    `json:"count"`
}

// Catalog is the validated set of geisha and card templates.
type Catalog struct {
	TotalCharm int              `json:"total_charm"`
	Geishas    []GeishaTemplate `json:"geishas"`
	Cards      []CardTemplate   `json:"cards"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog JSON.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, configErrorf("invalid catalog json: %v", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the 7 geisha / 21 card invariants and charm consistency.
func (c *Catalog) Validate() error {
	if len(c.Geishas) != GeishaCount {
		return configErrorf("expected %d geishas, got %d", GeishaCount, len(c.Geishas))
	}
	charm := make(map[string]int, len(c.Geishas))
	total := 0
	for _, g := range c.Geishas {
		if g.ID == "" {
			return configErrorf("geisha %q has no id", g.Name)
		}
		if _, dup := charm[g.ID]; dup {
			return configErrorf("duplicate geisha id %s", g.ID)
		}
		if g.CharmValue <= 0 {
			return configErrorf("geisha %s has non-positive charm %d", g.ID, g.CharmValue)
		}
		charm[g.ID] = g.CharmValue
		total += g.CharmValue
	}
	if c.TotalCharm <= 0 {
		return configErrorf("total_charm must be positive")
	}
	if total != c.TotalCharm {
		return configErrorf("geisha charm sums to %d, expected %d", total, c.TotalCharm)
	}

	cards := 0
	perGeisha := make(map[string]int)
	for _, t := range c.Cards {
		gc, ok := charm[t.GeishaID]
		if !ok {
			return configErrorf("card %q references unknown geisha %s", t.Name, t.GeishaID)
		}
		if t.CharmValue != gc {
			return configErrorf("card %q has charm %d but geisha %s has %d", t.Name, t.CharmValue, t.GeishaID, gc)
		}
		if t.Count <= 0 {
			return configErrorf("card %q has non-positive count %d", t.Name, t.Count)
		}
		perGeisha[t.GeishaID] += t.Count
		cards += t.Count
	}
	if cards != DeckSize {
		return configErrorf("card counts sum to %d, expected %d", cards, DeckSize)
	}
	if len(perGeisha) != GeishaCount {
		return configErrorf("cards cover %d geishas, expected %d", len(perGeisha), GeishaCount)
	}
	return nil
}

// CharmThreshold is the smallest charm total strictly greater than half the pool.
func (c *Catalog) CharmThreshold() int {
	return c.TotalCharm/2 + 1
}

// NewGeishas instantiates the seven geishas, all neutral.
func (c *Catalog) NewGeishas() []*models.Geisha {
	out := make([]*models.Geisha, 0, len(c.Geishas))
	for _, t := range c.Geishas {
		out = append(out, &models.Geisha{
			ID:           t.ID,
			Name:         t.Name,
			CharmValue:   t.CharmValue,
			GiftItemName: t.GiftItem,
		})
	}
	return out
}
