package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpperBonusThreshold(t *testing.T) {
	assert.Equal(t, 38, UpperBonusThreshold(3))
	assert.Equal(t, 63, UpperBonusThreshold(5))
	assert.Equal(t, 89, UpperBonusThreshold(7))
}

func TestUpperBonus_Boundary(t *testing.T) {
	c, ok := upperBonus(5, 63)
	assert.True(t, ok)
	assert.Equal(t, 98, c.score)
	assert.Equal(t, "Upper Bonus", c.name)

	_, ok = upperBonus(5, 62)
	assert.False(t, ok)
}

func TestPicker_TieBreakByPriority(t *testing.T) {
	p := newPicker()
	p.offer(candidate{score: 6, name: "Six", priority: PriorityUpper})
	p.offer(candidate{score: 6, name: "Two Pairs", priority: PriorityTwoPairs})
	p.offer(candidate{score: 6, name: "Upper", priority: PriorityUpper})
	assert.Equal(t, "Two Pairs", p.best.name)
}

func TestPerDie_RoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 2, perDie(25, 10))
	assert.Equal(t, 4, perDie(35, 10))
	assert.Equal(t, 10, perDie(48, 5))
	assert.Equal(t, 0, perDie(0, 3))
}
