package combat

import (
	"cmp"
	"slices"
)

// sortByDiceDesc sorts enemies in place, most dice first. Equal counts keep
// their relative order.
func sortByDiceDesc(enemies []*Combatant) {
	slices.SortStableFunc(enemies, func(a, b *Combatant) int {
		return cmp.Compare(b.DiceCount(), a.DiceCount())
	})
}
