package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/shard-legends/squad-planner-service/internal/models"
)

// UnlockableHeroName is kept out of listings until the air meta unlocks it.
const UnlockableHeroName = "Nerzi"

// FilterAll disables category filtering.
const FilterAll = "All"

// rosterFile is the YAML layout: a top-level heroes list.
type rosterFile struct {
	Heroes []models.HeroDefinition `yaml:"heroes"`
}

// Catalog is the immutable hero roster, ordered by name.
type Catalog struct {
	heroes []models.HeroDefinition
	byID   map[string]int
}

// Filter narrows a roster listing.
type Filter struct {
	Category string
	Search   string
	Unlocked bool
}

// New builds a catalog from definitions, rejecting duplicate ids and unknown categories.
func New(heroes []models.HeroDefinition) (*Catalog, error) {
	sorted := make([]models.HeroDefinition, len(heroes))
	copy(sorted, heroes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	c := &Catalog{heroes: sorted, byID: make(map[string]int, len(sorted))}
	for i, h := range sorted {
		if h.ID == "" {
			return nil, fmt.Errorf("hero %q has no id", h.Name)
		}
		if !h.Category.Valid() {
			return nil, fmt.Errorf("hero %q has unknown category %q", h.ID, h.Category)
		}
		if _, dup := c.byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate hero id %q", h.ID)
		}
		c.byID[h.ID] = i
	}
	return c, nil
}

// Empty returns a catalog with no heroes.
func Empty() *Catalog {
	return &Catalog{byID: map[string]int{}}
}

// Load reads a roster file. ".yaml"/".yml" files hold a heroes list, anything else is a JSON array.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}

	var heroes []models.HeroDefinition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f rosterFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("yaml parse: %w", err)
		}
		heroes = f.Heroes
	default:
		if err := json.Unmarshal(data, &heroes); err != nil {
			return nil, fmt.Errorf("json parse: %w", err)
		}
	}

	return New(heroes)
}

// LoadOrEmpty degrades to an empty roster when the file is missing or malformed.
func LoadOrEmpty(path string, logger *zap.Logger) *Catalog {
	c, err := Load(path)
	if err != nil {
		logger.Error("Failed to load hero catalog, continuing with empty roster",
			zap.String("path", path),
			zap.Error(err))
		return Empty()
	}
	logger.Info("Hero catalog loaded", zap.String("path", path), zap.Int("heroes", c.Len()))
	return c
}

// Lookup returns the hero with id.
func (c *Catalog) Lookup(id string) (models.HeroDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.HeroDefinition{}, false
	}
	return c.heroes[i], true
}

func (c *Catalog) Len() int {
	return len(c.heroes)
}

// List returns heroes matching f in name order.
func (c *Catalog) List(f Filter) []models.HeroDefinition {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.HeroDefinition, 0, len(c.heroes))
	for _, h := range c.heroes {
		if f.Category != "" && f.Category != FilterAll && string(h.Category) != f.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(h.Name), search) {
			continue
		}
		if h.Name == UnlockableHeroName && !f.Unlocked {
			continue
		}
		out = append(out, h)
	}
	return out
}
