package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSortByDiceDesc_Stable(t *testing.T) {
	a := NewCombatant("a", "a", KindEnemy, 100, 2)
	b := NewCombatant("b", "b", KindEnemy, 100, 5)
	c := NewCombatant("c", "c", KindEnemy, 100, 2)
	d := NewCombatant("d", "d", KindEnemy, 100, 5)
	d.CurrentHP = 10 // one die left

	list := []*Combatant{a, b, c, d}
	sortByDiceDesc(list)
	assert.Equal(t, []*Combatant{b, a, c, d}, list)
}

func TestPropertySortByDiceDescOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(rt, "n")
		list := make([]*Combatant, n)
		for i := range list {
			list[i] = NewCombatant("e", "e", KindEnemy, 100, rapid.IntRange(1, 8).Draw(rt, "base"))
			list[i].CurrentHP = rapid.IntRange(1, 100).Draw(rt, "hp")
		}
		sortByDiceDesc(list)
		for i := 1; i < len(list); i++ {
			if list[i].DiceCount() > list[i-1].DiceCount() {
				rt.Fatalf("index %d has more dice than %d", i, i-1)
			}
		}
	})
}
