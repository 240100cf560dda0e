package combat

import (
	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/game/hand"
)

// Effect is the visual effect fired for one die.
type Effect int

const (
	Bullet Effect = iota
	Beam
)

// String returns "bullet" or "beam".
func (e Effect) String() string {
	if e == Beam {
		return "beam"
	}
	return "bullet"
}

// Shot is the effect a single die fires during the player's attack.
type Shot struct {
	DieIndex int
	// Element selects the effect's look; Fired dice use Fire.
	Element dice.ElementType
	Effect  Effect
}

// AttackPlan lists the shots of a player attack in die order.
type AttackPlan struct {
	Shots []Shot
}

// Count returns the number of shots using effect.
func (p AttackPlan) Count(effect Effect) int {
	n := 0
	for _, s := range p.Shots {
		if s.Effect == effect {
			n++
		}
	}
	return n
}

// PlanPlayerAttack picks one shot per die: a Beam when the synergy flag of
// the die's element is set, otherwise a Bullet.
func PlanPlayerAttack(ds []dice.Die, flags hand.SynergyFlags) AttackPlan {
	plan := AttackPlan{Shots: make([]Shot, 0, len(ds))}
	for _, d := range ds {
		shot := Shot{DieIndex: d.Index, Element: d.Type.Effect(), Effect: Bullet}
		if flags.For(d.Type) {
			shot.Effect = Beam
		}
		plan.Shots = append(plan.Shots, shot)
	}
	return plan
}

// EnemyProjectiles returns the projectile count of an enemy attack: one per pip.
func EnemyProjectiles(values []int) int {
	n := 0
	for _, v := range values {
		n += v
	}
	return n
}
