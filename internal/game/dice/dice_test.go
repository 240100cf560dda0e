package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// scriptedSource returns the scripted values in order, clamped to n-1.
type scriptedSource struct {
	vals []int
	pos  int
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.vals) == 0 {
		return 0
	}
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	if v >= n {
		return n - 1
	}
	return v
}

func newRoller(vals ...int) *dice.Roller {
	return dice.NewLoggedRoller(&scriptedSource{vals: vals}, zap.NewNop())
}

func TestElementType_Metadata(t *testing.T) {
	assert.Equal(t, "Fire", dice.Fire.String())
	assert.Equal(t, dice.Fire, dice.Fired.Effect(), "Fired shares Fire's effect")
	assert.Equal(t, dice.Water, dice.Water.Effect())
	assert.True(t, dice.Earth.Drawable())
	assert.False(t, dice.Fired.Drawable())
	assert.False(t, dice.Standard.Drawable())
	assert.Equal(t, "ElementType(42)", dice.ElementType(42).String())
}

func TestParseElementType(t *testing.T) {
	got, err := dice.ParseElementType("wInD")
	require.NoError(t, err)
	assert.Equal(t, dice.Wind, got)

	_, err = dice.ParseElementType("lightning")
	assert.Error(t, err)
}

func TestDie_String(t *testing.T) {
	assert.Equal(t, "4(Fire)*", dice.Die{Value: 4, Type: dice.Fire, Locked: true}.String())
	assert.Equal(t, "2", dice.Die{Value: 2}.String())
}

func TestNewSet_Initial(t *testing.T) {
	s := dice.NewSet(5, newRoller(0))
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, dice.Idle, s.State())
	assert.False(t, s.HasRolled())
	for i, d := range s.Dice() {
		assert.Equal(t, i, d.Index)
		assert.Equal(t, dice.Standard, d.Type)
	}
}

func TestNewSet_PanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { dice.NewSet(0, newRoller(0)) })
	assert.Panics(t, func() { dice.NewSet(3, nil) })
}

func TestSet_RollResolvesUnlockedDice(t *testing.T) {
	s := dice.NewSet(5, newRoller(5, 4, 3, 2, 1))
	require.NoError(t, s.Roll())
	assert.Equal(t, []int{6, 5, 4, 3, 2}, s.Values())
	assert.Equal(t, dice.Resolved, s.State())
	assert.True(t, s.HasRolled())
}

func TestSet_LockedDiceKeepValues(t *testing.T) {
	s := dice.NewSet(3, newRoller(5, 5, 5, 0, 0))
	require.NoError(t, s.Roll())
	assert.True(t, s.ToggleLock(1))
	require.NoError(t, s.Roll())
	assert.Equal(t, []int{1, 6, 1}, s.Values())
}

func TestSet_AllLockedResolvesWithoutDraws(t *testing.T) {
	src := &scriptedSource{vals: []int{2}}
	s := dice.NewSet(2, dice.NewLoggedRoller(src, zap.NewNop()))
	require.NoError(t, s.Roll())
	s.ToggleLock(0)
	s.ToggleLock(1)
	before := src.pos
	require.NoError(t, s.Roll())
	assert.Equal(t, before, src.pos)
	assert.Equal(t, dice.Resolved, s.State())
}

func TestSet_BeginRollRejectsWhileRolling(t *testing.T) {
	s := dice.NewSet(2, newRoller(0))
	require.NoError(t, s.BeginRoll())
	assert.ErrorIs(t, s.BeginRoll(), dice.ErrRollInProgress)
	assert.ErrorIs(t, s.Roll(), dice.ErrRollInProgress)
	assert.False(t, s.ToggleLock(0), "no locking while rolling")
	require.NoError(t, s.Resolve())
	assert.ErrorIs(t, s.Resolve(), dice.ErrNotRolling)
}

func TestSet_ToggleLockGuards(t *testing.T) {
	s := dice.NewSet(3, newRoller(0))
	assert.False(t, s.ToggleLock(0), "no locking before the first roll")
	require.NoError(t, s.Roll())
	assert.False(t, s.ToggleLock(-1))
	assert.False(t, s.ToggleLock(3))
	assert.False(t, s.IsLocked(99))
	assert.True(t, s.ToggleLock(2))
	assert.True(t, s.IsLocked(2))
	assert.False(t, s.ToggleLock(2))
	s.ToggleLock(0)
	s.UnlockAll()
	assert.False(t, s.IsLocked(0))
}

func TestSet_InvalidIndexDefaults(t *testing.T) {
	s := dice.NewSet(2, newRoller(0))
	assert.Equal(t, dice.Die{}, s.Die(7))
	s.SetType(7, dice.Fire)
	s.SetOverlay(-1, true)
	s.SetType(1, dice.Water)
	s.SetOverlay(1, true)
	assert.Equal(t, []dice.ElementType{dice.Standard, dice.Water}, s.Types())
	assert.True(t, s.Die(1).Overlay)
}

func TestSet_DiceIsSnapshot(t *testing.T) {
	s := dice.NewSet(2, newRoller(0))
	snap := s.Dice()
	snap[0].Value = 6
	assert.Equal(t, 1, s.Die(0).Value)
}

func TestRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(&scriptedSource{vals: []int{3}}, zap.New(core))
	s := dice.NewSet(4, r)
	require.NoError(t, s.Roll())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4d6", fields["expression"])
	assert.EqualValues(t, 16, fields["total"])
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, "2d6+3 -> [4 5] +3 = 12", r.String())
	assert.Panics(t, func() { _ = dice.RollResult{}.String() })
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(10000), b.Intn(10000))
	}
	assert.Panics(t, func() { a.Intn(-1) })
}

func TestPropertySetValuesInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		seed := rapid.Uint64().Draw(rt, "seed")
		s := dice.NewSet(n, dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop()))
		rolls := rapid.IntRange(1, 5).Draw(rt, "rolls")
		for i := 0; i < rolls; i++ {
			if err := s.Roll(); err != nil {
				rt.Fatalf("roll: %v", err)
			}
			for _, v := range s.Values() {
				if v < 1 || v > dice.Faces {
					rt.Fatalf("face %d out of range", v)
				}
			}
		}
	})
}

func TestPropertyLockedDiceNeverChange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "n")
		s := dice.NewSet(n, dice.NewLoggedRoller(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), zap.NewNop()))
		if err := s.Roll(); err != nil {
			rt.Fatal(err)
		}
		locks := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "locks")
		for i, l := range locks {
			if l {
				s.ToggleLock(i)
			}
		}
		before := s.Values()
		if err := s.Roll(); err != nil {
			rt.Fatal(err)
		}
		for i, l := range locks {
			if l && s.Die(i).Value != before[i] {
				rt.Fatalf("locked die %d changed %d -> %d", i, before[i], s.Die(i).Value)
			}
		}
	})
}
