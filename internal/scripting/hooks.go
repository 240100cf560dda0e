package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
	"github.com/cory-johannsen/dicefight/internal/game/hand"
)

// Global hook function names looked up in the scope VM.
const (
	HookPlayerRoll  = "on_player_roll"
	HookAttack      = "on_attack"
	HookEnemyAction = "on_enemy_action"
	HookPhase       = "on_phase"
)

// EncounterHooks forwards encounter events to Lua. Return values of the Lua
// functions are ignored.
type EncounterHooks struct {
	mgr   *Manager
	scope string
}

var _ combat.Hooks = (*EncounterHooks)(nil)

// EncounterHooks returns a combat.Hooks that calls into scope's VM, or into
// the global VM when scope has none.
func (m *Manager) EncounterHooks(scope string) *EncounterHooks {
	return &EncounterHooks{mgr: m, scope: scope}
}

func (h *EncounterHooks) call(hook string, args ...lua.LValue) {
	_, _ = h.mgr.CallHook(h.scope, hook, args...)
}

// OnPlayerRoll calls on_player_roll(hand, score).
func (h *EncounterHooks) OnPlayerRoll(r hand.Result) {
	h.call(HookPlayerRoll, lua.LString(r.Name), lua.LNumber(r.Score))
}

// OnAttack calls on_attack(target_id, damage).
func (h *EncounterHooks) OnAttack(targetID string, damage int) {
	h.call(HookAttack, lua.LString(targetID), lua.LNumber(damage))
}

// OnEnemyAction calls on_enemy_action(enemy_id, hand, damage).
func (h *EncounterHooks) OnEnemyAction(enemyID string, r hand.Result, damage int) {
	h.call(HookEnemyAction, lua.LString(enemyID), lua.LString(r.Name), lua.LNumber(damage))
}

// OnPhase calls on_phase(phase).
func (h *EncounterHooks) OnPhase(p combat.Phase) {
	h.call(HookPhase, lua.LString(string(p)))
}
