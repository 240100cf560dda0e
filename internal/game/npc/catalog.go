package npc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
)

// Spawn creates a full-HP enemy combatant from tmpl with a fresh uuid.
//
// Precondition: tmpl must be non-nil and valid.
func Spawn(tmpl *Template) *combat.Combatant {
	return combat.NewCombatant(uuid.NewString(), tmpl.Name, combat.KindEnemy, tmpl.MaxHP, tmpl.DiceCount())
}

// Catalog indexes templates by ID. All methods are safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCatalog indexes templates.
//
// Postcondition: Returns an error on a duplicate template ID.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate npc template id %q", t.ID)
		}
		c.templates[t.ID] = t
	}
	return c, nil
}

// Get returns the template with id.
func (c *Catalog) Get(id string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	return t, ok
}

// IDs returns the template IDs in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.templates))
	for id := range c.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SpawnGroup spawns one enemy per template ID in order. Repeated names are
// numbered ("Slime", "Slime 2") so players can tell them apart.
//
// Postcondition: Returns an error naming the first unknown template ID.
func (c *Catalog) SpawnGroup(ids []string) ([]*combat.Combatant, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("npc: empty enemy group")
	}
	seen := make(map[string]int)
	group := make([]*combat.Combatant, 0, len(ids))
	for _, id := range ids {
		tmpl, ok := c.Get(id)
		if !ok {
			return nil, fmt.Errorf("npc: unknown template %q", id)
		}
		enemy := Spawn(tmpl)
		seen[tmpl.Name]++
		if n := seen[tmpl.Name]; n > 1 {
			enemy.Name = fmt.Sprintf("%s %d", tmpl.Name, n)
		}
		group = append(group, enemy)
	}
	return group, nil
}
