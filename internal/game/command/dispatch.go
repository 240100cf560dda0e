package command

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/game/hand"
)

var (
	// ErrUnknownCommand is returned for a word that resolves to no command.
	ErrUnknownCommand = errors.New("command: unknown command")
	// ErrUsage is returned when required arguments are missing or malformed.
	ErrUsage = errors.New("command: bad arguments")
	// ErrQuit is returned by the quit command; callers end their input loop.
	ErrQuit = errors.New("command: quit")
)

// Dispatcher turns text lines into encounter operations.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher creates a Dispatcher over reg.
//
// Precondition: reg must be non-nil.
func NewDispatcher(reg *Registry) *Dispatcher {
	if reg == nil {
		panic("command.NewDispatcher: registry must not be nil")
	}
	return &Dispatcher{reg: reg}
}

// Dispatch parses line and runs the resolved command against enc.
//
// Precondition: enc must be non-nil.
// Postcondition: Returns a human readable reply, or an error that Describe
// can render. A blank line returns ("", nil).
func (d *Dispatcher) Dispatch(enc *combat.Encounter, line string) (string, error) {
	parsed := Parse(line)
	if parsed.Command == "" {
		return "", nil
	}
	cmd, ok := d.reg.Resolve(parsed.Command)
	if !ok {
		return "", fmt.Errorf("%q: %w", parsed.Command, ErrUnknownCommand)
	}
	if len(parsed.Args) < cmd.MinArgs {
		return "", fmt.Errorf("usage: %s: %w", cmd.Usage, ErrUsage)
	}

	switch cmd.Handler {
	case HandlerRoll:
		return roll(enc), nil
	case HandlerLock:
		return lock(enc, parsed.Args[0])
	case HandlerSelect:
		return selectTarget(enc, parsed.RawArgs)
	case HandlerDeselect:
		enc.Deselect()
		return "Target cleared.", nil
	case HandlerAttack:
		return attack(enc)
	case HandlerEnemy:
		return enemyTurn(enc)
	case HandlerStatus:
		return Status(enc), nil
	case HandlerHelp:
		return "Commands:\n" + d.reg.Help(), nil
	case HandlerQuit:
		return "", ErrQuit
	default:
		return "", fmt.Errorf("%q has no handler %q: %w", cmd.Name, cmd.Handler, ErrUnknownCommand)
	}
}

// Describe renders a Dispatch error as a player-facing message.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownCommand):
		return "Unknown command. Type 'help' for a list."
	case errors.Is(err, ErrUsage):
		return "Usage: " + strings.TrimSuffix(strings.TrimPrefix(err.Error(), "usage: "), ": "+ErrUsage.Error())
	case errors.Is(err, combat.ErrNotPlayerTurn):
		return "It is not your turn."
	case errors.Is(err, combat.ErrNotEnemyTurn):
		return "The enemies are waiting for your attack."
	case errors.Is(err, combat.ErrNoTarget):
		return "Select a target first."
	case errors.Is(err, combat.ErrNoScore):
		return "Your hand scores nothing. Roll first."
	case errors.Is(err, combat.ErrUnknownTarget):
		return "No such enemy."
	case errors.Is(err, combat.ErrEncounterOver):
		return "The fight is over."
	default:
		return err.Error()
	}
}

func roll(enc *combat.Encounter) string {
	res, ok := enc.Reroll()
	if !ok {
		if enc.Phase() != combat.PhasePlayerTurn || enc.Outcome() != combat.Ongoing {
			return "You cannot roll now."
		}
		return "No rerolls left. " + enc.RetryLabel()
	}
	return fmt.Sprintf("%s -> %s  [%s]", FormatDice(enc.Dice()), res, enc.RetryLabel())
}

func lock(enc *combat.Encounter, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return "", fmt.Errorf("usage: lock <die>: %w", ErrUsage)
	}
	if !enc.LockToggle(n - 1) {
		return fmt.Sprintf("Die %d cannot be locked now.", n), nil
	}
	if enc.IsLocked(n - 1) {
		return fmt.Sprintf("Die %d locked.", n), nil
	}
	return fmt.Sprintf("Die %d unlocked.", n), nil
}

// selectTarget resolves arg as a 1-based index into the living enemies, an
// exact id, or a case-insensitive name.
func selectTarget(enc *combat.Encounter, arg string) (string, error) {
	living := enc.LivingEnemies()
	var target *combat.Combatant
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(living) {
		target = &living[n-1]
	}
	for i := 0; target == nil && i < len(living); i++ {
		if living[i].ID == arg || strings.EqualFold(living[i].Name, arg) {
			target = &living[i]
		}
	}
	if target == nil {
		return "", fmt.Errorf("target %q: %w", arg, combat.ErrUnknownTarget)
	}
	if err := enc.Select(target.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Targeting %s (%d/%d HP).", target.Name, target.CurrentHP, target.MaxHP), nil
}

func attack(enc *combat.Encounter) (string, error) {
	rep, err := enc.Attack()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s hits %s for %d", rep.Hand.Name, rep.TargetName, rep.Damage)
	if beams := rep.Plan.Count(combat.Beam); beams > 0 {
		fmt.Fprintf(&b, " (%d beams, %d bullets)", beams, rep.Plan.Count(combat.Bullet))
	}
	if rep.Killed {
		b.WriteString(". It is defeated!")
	} else {
		fmt.Fprintf(&b, ". %d HP left.", rep.TargetHP)
	}
	return b.String(), nil
}

func enemyTurn(enc *combat.Encounter) (string, error) {
	rep, err := enc.RunEnemyTurn()
	if err != nil {
		return "", err
	}
	var lines []string
	for _, a := range rep.Actions {
		lines = append(lines, fmt.Sprintf("%s rolls %v -> %s, you have %d HP.",
			a.EnemyName, a.Dice, describeHand(a.Hand), a.PlayerHP))
	}
	switch {
	case rep.AutoRoll != nil:
		lines = append(lines, fmt.Sprintf("Your turn: %s -> %s", FormatDice(enc.Dice()), *rep.AutoRoll))
	case enc.Outcome() == combat.Defeat:
		lines = append(lines, "You have been defeated.")
	}
	return strings.Join(lines, "\n"), nil
}

func describeHand(r hand.Result) string {
	if r.Name == "" {
		return "nothing"
	}
	return fmt.Sprintf("%s for %d", r.Name, r.Score)
}

// FormatDice renders dice as a numbered row, e.g. "1:6(Fire)* 2:3".
func FormatDice(ds []dice.Die) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%d:%s", i+1, d)
	}
	return strings.Join(parts, " ")
}

// Status renders the encounter state for display.
func Status(enc *combat.Encounter) string {
	var b strings.Builder
	p := enc.Player()
	fmt.Fprintf(&b, "Phase: %s  Outcome: %s\n", enc.Phase(), enc.Outcome())
	fmt.Fprintf(&b, "%s: %d/%d HP %s  %s\n", p.Name, p.CurrentHP, p.MaxHP, HPBar(p.Ratio()), enc.RetryLabel())
	fmt.Fprintf(&b, "Dice: %s\n", FormatDice(enc.Dice()))
	fmt.Fprintf(&b, "Hand: %s\n", enc.LastResult())
	selected := enc.Selected()
	for i, en := range enc.LivingEnemies() {
		marker := " "
		if en.ID == selected {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s%d. %s %d/%d HP (%d dice) %s\n", marker, i+1, en.Name, en.CurrentHP, en.MaxHP, en.DiceCount(), HPBar(en.Ratio()))
	}
	return strings.TrimRight(b.String(), "\n")
}

// hpBarWidth is the number of cells in an HP bar.
const hpBarWidth = 10

// HPBar renders ratio as a fixed-width bar such as "[#######---]". Any
// remaining HP shows at least one filled cell.
func HPBar(ratio float64) string {
	filled := int(math.Ceil(ratio * hpBarWidth))
	filled = min(hpBarWidth, max(0, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", hpBarWidth-filled) + "]"
}
