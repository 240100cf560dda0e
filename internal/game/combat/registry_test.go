package combat_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
)

func newNamedEncounter(t *testing.T, id string) *combat.Encounter {
	t.Helper()
	cfg := sixesConfig(zap.NewNop())
	cfg.ID = id
	enc, err := combat.NewEncounter(cfg, newPlayer(100), []*combat.Combatant{combat.NewCombatant("e1", "Slime", combat.KindEnemy, 40, 3)})
	require.NoError(t, err)
	return enc
}

func TestRegistry_AddGetEnd(t *testing.T) {
	reg := combat.NewRegistry()
	enc := newNamedEncounter(t, "b")
	require.NoError(t, reg.Add(enc))
	require.NoError(t, reg.Add(newNamedEncounter(t, "a")))
	assert.Error(t, reg.Add(enc), "duplicate id")

	got, ok := reg.Get("b")
	require.True(t, ok)
	assert.Same(t, enc, got)
	assert.Equal(t, []string{"a", "b"}, reg.IDs())

	sum, ok := reg.End("b")
	require.True(t, ok)
	assert.Equal(t, "b", sum.ID)
	assert.Equal(t, 1, reg.Len())

	_, ok = reg.End("b")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAdd(t *testing.T) {
	reg := combat.NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			enc, err := combat.NewEncounter(func() combat.Config {
				cfg := sixesConfig(zap.NewNop())
				cfg.ID = ""
				return cfg
			}(), newPlayer(100), []*combat.Combatant{combat.NewCombatant("e1", "Slime", combat.KindEnemy, 40, 3)})
			if err == nil {
				_ = reg.Add(enc)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, reg.Len())
}

func TestStepTimer_Fires(t *testing.T) {
	var called atomic.Int32
	combat.NewStepTimer(10*time.Millisecond, func() { called.Add(1) })
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStepTimer_StopPreventsStep(t *testing.T) {
	var called atomic.Int32
	st := combat.NewStepTimer(50*time.Millisecond, func() { called.Add(1) })
	st.Stop()
	st.Stop()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), called.Load())
}

func TestStepTimer_ResetReplacesStep(t *testing.T) {
	var first, second atomic.Int32
	st := combat.NewStepTimer(30*time.Millisecond, func() { first.Add(1) })
	st.Reset(10*time.Millisecond, func() { second.Add(1) })
	assert.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
}

func TestAfter_RunsEnemyTurn(t *testing.T) {
	enc := newNamedEncounter(t, "paced")
	_, _ = enc.Reroll()
	require.NoError(t, enc.Select("e1"))
	// 50 damage against 40 HP ends the encounter; the enemy step still closes the phase.
	_, err := enc.Attack()
	require.NoError(t, err)

	var turnErr error
	_, done := combat.After(5*time.Millisecond, enc, func(e *combat.Encounter) {
		_, turnErr = e.RunEnemyTurn()
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enemy step never ran")
	}
	require.NoError(t, turnErr)
	assert.Equal(t, combat.PhasePlayerTurn, enc.Phase())
}
