// Package combat implements the turn-based dice encounter between a player
// and a group of enemies.
package combat

import "fmt"

// Kind distinguishes the player from enemy combatants.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
)

// String returns "player" or "enemy".
func (k Kind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "enemy"
}

// Outcome is the informational state of an encounter.
type Outcome int

const (
	Ongoing Outcome = iota
	Victory
	Defeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for _, o := range []Outcome{Ongoing, Victory, Defeat} {
		if o.String() == s {
			return o, nil
		}
	}
	return Ongoing, fmt.Errorf("combat: unknown outcome %q", s)
}

// Combatant is one participant in an encounter, the player or an enemy.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
type Combatant struct {
	ID        string
	Kind      Kind
	Name      string
	MaxHP     int
	CurrentHP int
	// BaseDice is the dice count at full HP.
	BaseDice int
}

// NewCombatant creates a combatant at full HP.
//
// Precondition: maxHP >= 1 and baseDice >= 1.
func NewCombatant(id, name string, kind Kind, maxHP, baseDice int) *Combatant {
	if maxHP < 1 || baseDice < 1 {
		panic("combat: NewCombatant precondition violated: maxHP and baseDice must be >= 1")
	}
	return &Combatant{ID: id, Kind: kind, Name: name, MaxHP: maxHP, CurrentHP: maxHP, BaseDice: baseDice}
}

// IsPlayer reports whether this combatant is the player.
func (c *Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// IsDead reports whether CurrentHP has reached zero.
func (c *Combatant) IsDead() bool { return c.CurrentHP <= 0 }

// TakeDamage reduces CurrentHP by amount, flooring at zero. Ignored once dead
// or for a non-positive amount.
//
// Postcondition: CurrentHP >= 0.
func (c *Combatant) TakeDamage(amount int) {
	if c.IsDead() || amount <= 0 {
		return
	}
	c.CurrentHP = max(0, c.CurrentHP-amount)
}

// Ratio returns CurrentHP/MaxHP in [0,1].
func (c *Combatant) Ratio() float64 {
	return float64(c.CurrentHP) / float64(c.MaxHP)
}

// DiceCount returns the HP-scaled dice count max(1, ceil(BaseDice*CurrentHP/MaxHP)).
// The player always rolls BaseDice.
func (c *Combatant) DiceCount() int {
	if c.IsPlayer() {
		return c.BaseDice
	}
	n := (c.BaseDice*c.CurrentHP + c.MaxHP - 1) / c.MaxHP
	return max(1, n)
}
