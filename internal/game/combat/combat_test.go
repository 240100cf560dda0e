package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/game/hand"
)

func TestCombatant_TakeDamageClampsAtZero(t *testing.T) {
	c := combat.NewCombatant("e1", "Slime", combat.KindEnemy, 30, 3)
	c.TakeDamage(12)
	assert.Equal(t, 18, c.CurrentHP)
	c.TakeDamage(100)
	assert.Equal(t, 0, c.CurrentHP)
	assert.True(t, c.IsDead())
	c.TakeDamage(5)
	assert.Equal(t, 0, c.CurrentHP)
}

func TestCombatant_NegativeDamageIgnored(t *testing.T) {
	c := combat.NewCombatant("e1", "Slime", combat.KindEnemy, 30, 3)
	c.TakeDamage(-5)
	assert.Equal(t, 30, c.CurrentHP)
}

func TestCombatant_Ratio(t *testing.T) {
	c := combat.NewCombatant("e1", "Slime", combat.KindEnemy, 200, 3)
	c.TakeDamage(50)
	assert.InDelta(t, 0.75, c.Ratio(), 1e-9)
}

func TestCombatant_DiceCountScalesWithHP(t *testing.T) {
	c := combat.NewCombatant("e1", "Golem", combat.KindEnemy, 100, 5)
	assert.Equal(t, 5, c.DiceCount())
	c.CurrentHP = 50
	assert.Equal(t, 3, c.DiceCount(), "ceil(2.5)")
	c.CurrentHP = 1
	assert.Equal(t, 1, c.DiceCount())
	c.CurrentHP = 0
	assert.Equal(t, 1, c.DiceCount(), "never below one die")
}

func TestCombatant_PlayerDiceCountFixed(t *testing.T) {
	c := combat.NewCombatant("p", "Hero", combat.KindPlayer, 100, 5)
	c.TakeDamage(90)
	assert.Equal(t, 5, c.DiceCount())
}

func TestNewCombatant_Panics(t *testing.T) {
	assert.Panics(t, func() { combat.NewCombatant("x", "x", combat.KindEnemy, 0, 1) })
	assert.Panics(t, func() { combat.NewCombatant("x", "x", combat.KindEnemy, 1, 0) })
}

func TestPropertyDiceCountBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.IntRange(1, 12).Draw(rt, "base")
		maxHP := rapid.IntRange(1, 5000).Draw(rt, "max")
		c := combat.NewCombatant("e", "e", combat.KindEnemy, maxHP, base)
		c.CurrentHP = rapid.IntRange(0, maxHP).Draw(rt, "hp")
		n := c.DiceCount()
		if n < 1 || n > base {
			rt.Fatalf("dice count %d outside [1,%d]", n, base)
		}
	})
}

func TestRetryBudget_ConsumeSequence(t *testing.T) {
	b := combat.NewRetryBudget(2)
	assert.True(t, b.Consume())
	assert.True(t, b.Consume())
	assert.False(t, b.Consume())
	assert.Equal(t, 0, b.Remaining())
	assert.Equal(t, "Roll : 0 / 2", b.String())
	b.Reset()
	assert.Equal(t, 2, b.Remaining())
	assert.Equal(t, 2, b.Max())
}

func TestRetryBudget_ZeroAndNegative(t *testing.T) {
	assert.False(t, combat.NewRetryBudget(0).Consume())
	assert.Panics(t, func() { combat.NewRetryBudget(-1) })
}

func TestPropertyRetryBudgetNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(0, 10).Draw(rt, "max")
		b := combat.NewRetryBudget(limit)
		ok := 0
		calls := rapid.IntRange(0, 20).Draw(rt, "calls")
		for i := 0; i < calls; i++ {
			if b.Consume() {
				ok++
			}
		}
		if ok != min(calls, limit) || b.Remaining() != limit-ok {
			rt.Fatalf("consumed %d of %d with max %d, remaining %d", ok, calls, limit, b.Remaining())
		}
	})
}

func TestPlanPlayerAttack_BeamsFollowSynergy(t *testing.T) {
	ds := []dice.Die{
		{Index: 0, Value: 4, Type: dice.Fire},
		{Index: 1, Value: 3, Type: dice.Fired},
		{Index: 2, Value: 1, Type: dice.Water},
		{Index: 3, Value: 2, Type: dice.Standard},
	}
	plan := combat.PlanPlayerAttack(ds, hand.SynergyFlags{Fire: true})

	assert.Len(t, plan.Shots, 4)
	assert.Equal(t, combat.Shot{DieIndex: 0, Element: dice.Fire, Effect: combat.Beam}, plan.Shots[0])
	assert.Equal(t, combat.Shot{DieIndex: 1, Element: dice.Fire, Effect: combat.Beam}, plan.Shots[1])
	assert.Equal(t, combat.Shot{DieIndex: 2, Element: dice.Water, Effect: combat.Bullet}, plan.Shots[2])
	assert.Equal(t, combat.Shot{DieIndex: 3, Element: dice.Standard, Effect: combat.Bullet}, plan.Shots[3])
	assert.Equal(t, 2, plan.Count(combat.Beam))
	assert.Equal(t, "beam", combat.Beam.String())
}

func TestPlanPlayerAttack_NoSynergyAllBullets(t *testing.T) {
	ds := []dice.Die{{Index: 0, Value: 5, Type: dice.Earth}, {Index: 1, Value: 5, Type: dice.Wind}}
	plan := combat.PlanPlayerAttack(ds, hand.SynergyFlags{})
	assert.Equal(t, 2, plan.Count(combat.Bullet))
}

func TestEnemyProjectiles(t *testing.T) {
	assert.Equal(t, 12, combat.EnemyProjectiles([]int{6, 4, 2}))
	assert.Equal(t, 0, combat.EnemyProjectiles(nil))
}

func TestKindAndOutcomeStrings(t *testing.T) {
	assert.Equal(t, "player", combat.KindPlayer.String())
	assert.Equal(t, "enemy", combat.KindEnemy.String())
	assert.Equal(t, "victory", combat.Victory.String())
	assert.Equal(t, "defeat", combat.Defeat.String())
	assert.Equal(t, "ongoing", combat.Ongoing.String())
}

func TestParseOutcome_RoundTrip(t *testing.T) {
	for _, o := range []combat.Outcome{combat.Ongoing, combat.Victory, combat.Defeat} {
		got, err := combat.ParseOutcome(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	_, err := combat.ParseOutcome("draw")
	assert.Error(t, err)
}
