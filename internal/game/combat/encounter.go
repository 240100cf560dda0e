package combat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/game/element"
	"github.com/cory-johannsen/dicefight/internal/game/hand"
	"github.com/cory-johannsen/dicefight/internal/observability"
)

// Command rejections.
var (
	ErrNotPlayerTurn = errors.New("combat: not the player's turn")
	ErrNotEnemyTurn  = errors.New("combat: not the enemy's turn")
	ErrNoTarget      = errors.New("combat: no living target selected")
	ErrNoScore       = errors.New("combat: no scoring hand to attack with")
	ErrUnknownTarget = errors.New("combat: unknown target")
	ErrEncounterOver = errors.New("combat: encounter is over")
)

// Phase is the turn phase of an encounter.
type Phase string

const (
	PhasePlayerTurn Phase = "player_turn"
	PhaseEnemyTurn  Phase = "enemy_turn"
)

const (
	eventAttack    = "attack"
	eventEnemyDone = "enemy_done"
)

// Hooks observe encounter events. They run after the encounter lock is
// released, in event order, and cannot change engine state.
type Hooks interface {
	OnPlayerRoll(r hand.Result)
	OnAttack(targetID string, damage int)
	OnEnemyAction(enemyID string, r hand.Result, damage int)
	OnPhase(p Phase)
}

type noopHooks struct{}

func (noopHooks) OnPlayerRoll(hand.Result)               {}
func (noopHooks) OnAttack(string, int)                   {}
func (noopHooks) OnEnemyAction(string, hand.Result, int) {}
func (noopHooks) OnPhase(Phase)                          {}

// Config wires an Encounter to its collaborators.
type Config struct {
	// ID identifies the encounter; a uuid is generated when empty.
	ID         string
	MaxRetries int
	Roller     *dice.Roller
	Assigner   *element.Assigner
	Logger     *zap.Logger
	// Hooks is optional.
	Hooks Hooks
}

// AttackReport describes a completed player attack.
type AttackReport struct {
	TargetID   string
	TargetName string
	Hand       hand.Result
	Damage     int
	TargetHP   int
	Killed     bool
	Plan       AttackPlan
}

// EnemyAction describes one enemy's roll and damage.
type EnemyAction struct {
	EnemyID     string
	EnemyName   string
	Dice        []int
	Hand        hand.Result
	Damage      int
	Projectiles int
	PlayerHP    int
}

// EnemyTurnReport describes a completed enemy phase.
type EnemyTurnReport struct {
	Actions []EnemyAction
	// AutoRoll is the player's automatic roll at the start of the next turn;
	// nil when the encounter has ended.
	AutoRoll *hand.Result
}

// Summary is the persisted record of an encounter.
type Summary struct {
	ID              string
	Outcome         Outcome
	Turns           int
	BestHand        string
	BestScore       int
	PlayerHP        int
	EnemiesDefeated int
	Enemies         int
}

// Encounter is the turn controller of one player against a group of enemies.
// All methods are safe for concurrent use; each call runs to completion
// before the next is accepted.
type Encounter struct {
	mu sync.Mutex

	id     string
	phases *fsm.FSM
	logger *zap.Logger
	hooks  Hooks

	roller   *dice.Roller
	assigner *element.Assigner

	player    *Combatant
	playerSet *dice.Set
	playerCtx *hand.Context
	retries   *RetryBudget

	enemies   []*Combatant
	enemyCtx  map[string]*hand.Context
	enemySets map[string]*dice.Set

	selected       string
	last           hand.Result
	rolledThisTurn bool
	turns          int
	best           hand.Result

	pending []func(Hooks)
}

// NewEncounter creates an encounter in the player's turn with unrolled dice.
//
// Precondition: cfg.Roller, cfg.Assigner and cfg.Logger must be non-nil;
// player must be KindPlayer; enemies must be non-empty with unique IDs.
// Postcondition: Phase() == PhasePlayerTurn.
func NewEncounter(cfg Config, player *Combatant, enemies []*Combatant) (*Encounter, error) {
	if cfg.Roller == nil || cfg.Assigner == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("combat: roller, assigner and logger are required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("combat: max retries must be >= 0, got %d", cfg.MaxRetries)
	}
	if player == nil || !player.IsPlayer() {
		return nil, fmt.Errorf("combat: a player combatant is required")
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("combat: at least one enemy is required")
	}
	ctxs := make(map[string]*hand.Context, len(enemies))
	sets := make(map[string]*dice.Set, len(enemies))
	for _, e := range enemies {
		if e.IsPlayer() {
			return nil, fmt.Errorf("combat: enemy %q has player kind", e.ID)
		}
		if _, dup := ctxs[e.ID]; dup {
			return nil, fmt.Errorf("combat: duplicate enemy id %q", e.ID)
		}
		ctxs[e.ID] = hand.NewContext()
		sets[e.ID] = dice.NewSet(e.DiceCount(), cfg.Roller)
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	hooks := cfg.Hooks
	if hooks == nil {
		hooks = noopHooks{}
	}

	enc := &Encounter{
		id:        id,
		logger:    observability.ForEncounter(cfg.Logger, id),
		hooks:     hooks,
		roller:    cfg.Roller,
		assigner:  cfg.Assigner,
		player:    player,
		playerSet: dice.NewSet(player.BaseDice, cfg.Roller),
		playerCtx: hand.NewContext(),
		retries:   NewRetryBudget(cfg.MaxRetries),
		enemies:   append([]*Combatant(nil), enemies...),
		enemyCtx:  ctxs,
		enemySets: sets,
	}
	enc.phases = fsm.NewFSM(
		string(PhasePlayerTurn),
		fsm.Events{
			{Name: eventAttack, Src: []string{string(PhasePlayerTurn)}, Dst: string(PhaseEnemyTurn)},
			{Name: eventEnemyDone, Src: []string{string(PhaseEnemyTurn)}, Dst: string(PhasePlayerTurn)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				phase := Phase(ev.Dst)
				enc.logger.Info("phase change", zap.String("from", ev.Src), zap.String("to", ev.Dst))
				enc.queue(func(h Hooks) { h.OnPhase(phase) })
			},
		},
	)
	enc.logger.Info("encounter started",
		zap.String("player", player.Name),
		zap.Int("enemies", len(enemies)),
		zap.Int("player_dice", player.BaseDice),
	)
	return enc, nil
}

// ID returns the encounter identifier.
func (e *Encounter) ID() string { return e.id }

// queue defers a hook call until the encounter lock is released.
func (e *Encounter) queue(fn func(Hooks)) {
	e.pending = append(e.pending, fn)
}

// unlock releases the lock and then delivers queued hook calls.
func (e *Encounter) unlock() {
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, fn := range pending {
		fn(e.hooks)
	}
}

func (e *Encounter) phase() Phase { return Phase(e.phases.Current()) }

func (e *Encounter) fire(event string) error {
	if err := e.phases.Event(context.Background(), event); err != nil {
		return fmt.Errorf("combat: %s transition: %w", event, err)
	}
	return nil
}

func (e *Encounter) outcome() Outcome {
	if e.player.IsDead() {
		return Defeat
	}
	for _, en := range e.enemies {
		if !en.IsDead() {
			return Ongoing
		}
	}
	return Victory
}

// rollPlayer performs the atomic roll, propagate and score step.
func (e *Encounter) rollPlayer() (hand.Result, error) {
	report, err := e.assigner.Roll(e.playerSet)
	if err != nil {
		return hand.Result{}, err
	}
	if report.Corrections > 0 {
		e.logger.Info("earth overflow corrected", zap.Int("corrections", report.Corrections))
	}
	if len(report.Propagated) > 0 {
		e.logger.Debug("fire propagated", zap.Ints("fired", report.Propagated))
	}
	res := hand.Evaluate(e.playerCtx, e.playerSet.Dice())
	e.last = res
	e.rolledThisTurn = true
	if res.Score > e.best.Score {
		e.best = res
	}
	e.logger.Info("player roll",
		zap.Ints("dice", e.playerSet.Values()),
		zap.String("hand", res.Name),
		zap.Int("score", res.Score),
	)
	e.queue(func(h Hooks) { h.OnPlayerRoll(res) })
	return res, nil
}

// RequestRoll rolls the player's dice, applies element rules and scores the
// result. It does not touch the RetryBudget.
//
// Postcondition: Returns ErrNotPlayerTurn outside the player's turn and
// ErrEncounterOver once an outcome is decided.
func (e *Encounter) RequestRoll() (hand.Result, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn {
		return hand.Result{}, ErrNotPlayerTurn
	}
	if e.outcome() != Ongoing {
		return hand.Result{}, ErrEncounterOver
	}
	return e.rollPlayer()
}

// Reroll rolls the player's unlocked dice. The first roll of a turn is free;
// later rolls spend one retry.
//
// Postcondition: Returns false with no state change when the budget is
// exhausted, outside the player's turn, or after the encounter ended.
func (e *Encounter) Reroll() (hand.Result, bool) {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn || e.outcome() != Ongoing {
		return hand.Result{}, false
	}
	if e.rolledThisTurn && !e.retries.Consume() {
		return e.last, false
	}
	res, err := e.rollPlayer()
	if err != nil {
		return e.last, false
	}
	return res, true
}

// ConsumeRetry spends one retry.
//
// Postcondition: Returns false with no state change outside the player's
// turn or after the encounter ended.
func (e *Encounter) ConsumeRetry() bool {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn || e.outcome() != Ongoing {
		return false
	}
	return e.retries.Consume()
}

// RetriesRemaining returns the rerolls left this turn.
func (e *Encounter) RetriesRemaining() int {
	e.mu.Lock()
	defer e.unlock()
	return e.retries.Remaining()
}

// RetryLabel returns the budget display label.
func (e *Encounter) RetryLabel() string {
	e.mu.Lock()
	defer e.unlock()
	return e.retries.String()
}

// LockToggle flips the lock on player die i.
//
// Postcondition: Returns false with no change outside the player's turn,
// before the first roll, or for an invalid index.
func (e *Encounter) LockToggle(i int) bool {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn {
		return false
	}
	return e.playerSet.ToggleLock(i)
}

// IsLocked reports whether player die i is locked.
func (e *Encounter) IsLocked(i int) bool {
	e.mu.Lock()
	defer e.unlock()
	return e.playerSet.IsLocked(i)
}

// Contribution returns die i's share of the last score; 0 before the first
// roll or for an invalid index.
func (e *Encounter) Contribution(i int) int {
	e.mu.Lock()
	defer e.unlock()
	if !e.playerSet.HasRolled() || i < 0 || i >= len(e.last.Breakdown) {
		return 0
	}
	return e.last.Breakdown[i]
}

// Dice returns a snapshot of the player's dice.
func (e *Encounter) Dice() []dice.Die {
	e.mu.Lock()
	defer e.unlock()
	return e.playerSet.Dice()
}

// Select targets the living enemy with id.
func (e *Encounter) Select(id string) error {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn {
		return ErrNotPlayerTurn
	}
	en := e.enemy(id)
	if en == nil || en.IsDead() {
		return fmt.Errorf("target %q: %w", id, ErrUnknownTarget)
	}
	e.selected = id
	return nil
}

// Deselect clears the target.
func (e *Encounter) Deselect() {
	e.mu.Lock()
	defer e.unlock()
	e.selected = ""
}

// Selected returns the selected target ID, or "".
func (e *Encounter) Selected() string {
	e.mu.Lock()
	defer e.unlock()
	return e.selected
}

func (e *Encounter) enemy(id string) *Combatant {
	for _, en := range e.enemies {
		if en.ID == id {
			return en
		}
	}
	return nil
}

// Attack strikes the selected enemy with the last computed score and hands
// the turn to the enemies.
//
// Precondition: player's turn, a living target selected, last score > 0.
// Postcondition: on success Phase() == PhaseEnemyTurn, no target is selected,
// the RetryBudget is full and every die is unlocked.
func (e *Encounter) Attack() (AttackReport, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhasePlayerTurn {
		return AttackReport{}, ErrNotPlayerTurn
	}
	if e.outcome() != Ongoing {
		return AttackReport{}, ErrEncounterOver
	}
	target := e.enemy(e.selected)
	if target == nil || target.IsDead() {
		return AttackReport{}, ErrNoTarget
	}
	if !e.playerSet.HasRolled() || e.last.Score <= 0 {
		return AttackReport{}, ErrNoScore
	}

	damage := e.last.Score
	plan := PlanPlayerAttack(e.playerSet.Dice(), e.last.Synergy)
	target.TakeDamage(damage)
	report := AttackReport{
		TargetID:   target.ID,
		TargetName: target.Name,
		Hand:       e.last,
		Damage:     damage,
		TargetHP:   target.CurrentHP,
		Killed:     target.IsDead(),
		Plan:       plan,
	}
	e.turns++
	e.logger.Info("player attack",
		zap.String("target", target.ID),
		zap.String("hand", e.last.Name),
		zap.Int("damage", damage),
		zap.Int("target_hp", target.CurrentHP),
		zap.Int("beams", plan.Count(Beam)),
	)
	targetID := target.ID
	e.queue(func(h Hooks) { h.OnAttack(targetID, damage) })

	e.selected = ""
	e.retries.Reset()
	e.playerSet.UnlockAll()
	e.rolledThisTurn = false
	if err := e.fire(eventAttack); err != nil {
		return report, err
	}
	return report, nil
}

// RunEnemyTurn lets each living enemy act, most dice first, then returns the
// turn to the player with a fresh automatic roll.
//
// Postcondition: Returns ErrNotEnemyTurn outside the enemy phase; on success
// Phase() == PhasePlayerTurn.
func (e *Encounter) RunEnemyTurn() (EnemyTurnReport, error) {
	e.mu.Lock()
	defer e.unlock()
	if e.phase() != PhaseEnemyTurn {
		return EnemyTurnReport{}, ErrNotEnemyTurn
	}

	var report EnemyTurnReport
	order := e.livingEnemies()
	sortByDiceDesc(order)
	for _, en := range order {
		report.Actions = append(report.Actions, e.enemyAct(en))
	}

	if err := e.fire(eventEnemyDone); err != nil {
		return report, err
	}
	e.retries.Reset()
	e.playerSet.UnlockAll()
	if e.outcome() == Ongoing {
		res, err := e.rollPlayer()
		if err != nil {
			return report, err
		}
		report.AutoRoll = &res
	}
	return report, nil
}

// enemySet returns en's dice set, resized to its current HP-scaled count.
func (e *Encounter) enemySet(en *Combatant) *dice.Set {
	set := e.enemySets[en.ID]
	if n := en.DiceCount(); set.Len() != n {
		set = dice.NewSet(n, e.roller)
		e.enemySets[en.ID] = set
	}
	return set
}

func (e *Encounter) enemyAct(en *Combatant) EnemyAction {
	set := e.enemySet(en)
	if err := set.Roll(); err != nil {
		panic("combat: enemy dice set failed to roll: " + err.Error())
	}
	res := hand.EvaluateClassic(e.enemyCtx[en.ID], set.Dice())
	values := set.Values()
	e.player.TakeDamage(res.Score)
	action := EnemyAction{
		EnemyID:     en.ID,
		EnemyName:   en.Name,
		Dice:        values,
		Hand:        res,
		Damage:      res.Score,
		Projectiles: EnemyProjectiles(values),
		PlayerHP:    e.player.CurrentHP,
	}
	e.logger.Info("enemy attack",
		zap.String("enemy", en.ID),
		zap.Ints("dice", values),
		zap.String("hand", res.Name),
		zap.Int("damage", res.Score),
		zap.Int("player_hp", e.player.CurrentHP),
	)
	id, damage := en.ID, res.Score
	e.queue(func(h Hooks) { h.OnEnemyAction(id, res, damage) })
	return action
}

func (e *Encounter) livingEnemies() []*Combatant {
	var out []*Combatant
	for _, en := range e.enemies {
		if !en.IsDead() {
			out = append(out, en)
		}
	}
	return out
}

// Phase returns the current turn phase.
func (e *Encounter) Phase() Phase {
	e.mu.Lock()
	defer e.unlock()
	return e.phase()
}

// Outcome reports whether the player or the enemies have been defeated.
func (e *Encounter) Outcome() Outcome {
	e.mu.Lock()
	defer e.unlock()
	return e.outcome()
}

// LastResult returns the most recent player hand.
func (e *Encounter) LastResult() hand.Result {
	e.mu.Lock()
	defer e.unlock()
	return e.last
}

// Player returns a copy of the player combatant.
func (e *Encounter) Player() Combatant {
	e.mu.Lock()
	defer e.unlock()
	return *e.player
}

// Enemies returns copies of all enemies in encounter order.
func (e *Encounter) Enemies() []Combatant {
	e.mu.Lock()
	defer e.unlock()
	out := make([]Combatant, len(e.enemies))
	for i, en := range e.enemies {
		out[i] = *en
	}
	return out
}

// LivingEnemies returns copies of the enemies still standing.
func (e *Encounter) LivingEnemies() []Combatant {
	e.mu.Lock()
	defer e.unlock()
	var out []Combatant
	for _, en := range e.livingEnemies() {
		out = append(out, *en)
	}
	return out
}

// Summary returns the persisted record of the encounter so far.
func (e *Encounter) Summary() Summary {
	e.mu.Lock()
	defer e.unlock()
	defeated := 0
	for _, en := range e.enemies {
		if en.IsDead() {
			defeated++
		}
	}
	return Summary{
		ID:              e.id,
		Outcome:         e.outcome(),
		Turns:           e.turns,
		BestHand:        e.best.Name,
		BestScore:       e.best.Score,
		PlayerHP:        e.player.CurrentHP,
		EnemiesDefeated: defeated,
		Enemies:         len(e.enemies),
	}
}
