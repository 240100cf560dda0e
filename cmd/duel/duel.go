package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/game/combat"
	"github.com/cory-johannsen/dicefight/internal/game/command"
	"github.com/cory-johannsen/dicefight/internal/game/dice"
	"github.com/cory-johannsen/dicefight/internal/game/element"
)

// rig holds the random-driven components of one duel.
type rig struct {
	roller   *dice.Roller
	assigner *element.Assigner
	// scriptRoller serves engine.dice.roll. It draws from its own source so
	// hook rolls never shift the encounter's dice sequence.
	scriptRoller *dice.Roller
}

// newRig builds the duel's rollers. seed 0 selects crypto randomness;
// any other seed makes the encounter's dice reproducible whether or not
// hook scripts roll.
func newRig(seed uint64, table element.Table, overflowWarnAfter int, logger *zap.Logger) rig {
	var src, scriptSrc dice.Source = dice.NewCryptoSource(), dice.NewCryptoSource()
	if seed != 0 {
		src, scriptSrc = dice.NewSeededSource(seed), dice.NewSeededSource(seed+1)
	}
	return rig{
		roller:       dice.NewLoggedRoller(src, logger),
		assigner:     element.NewAssigner(table, src, logger, overflowWarnAfter),
		scriptRoller: dice.NewLoggedRoller(scriptSrc, logger.Named("lua")),
	}
}

// duel drives one encounter from a line source, printing replies to out.
type duel struct {
	enc        *combat.Encounter
	dispatcher *command.Dispatcher
	out        io.Writer
	logger     *zap.Logger
	// enemyDelay is the pause before the enemy phase runs after an attack.
	enemyDelay time.Duration
}

// autopilot yields the command sequence of a player who always rolls once,
// targets the first living enemy and attacks.
func autopilot() func() (string, bool) {
	turn := []string{"roll", "select 1", "attack"}
	i := 0
	return func() (string, bool) {
		line := turn[i%len(turn)]
		i++
		return line, true
	}
}

// lines yields the non-comment lines of r.
func lines(r io.Reader) func() (string, bool) {
	sc := bufio.NewScanner(r)
	return func() (string, bool) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}
}

// play runs commands from next until the encounter ends, the source runs
// dry, or a quit command arrives.
//
// Postcondition: the enemy phase has run after every attack that left the
// encounter undecided.
func (d *duel) play(next func() (string, bool)) error {
	d.printf("%s\n", command.Status(d.enc))
	for d.enc.Outcome() == combat.Ongoing {
		line, ok := next()
		if !ok {
			break
		}
		d.printf("> %s\n", line)
		reply, err := d.dispatcher.Dispatch(d.enc, line)
		switch {
		case errors.Is(err, command.ErrQuit):
			d.printf("You flee the fight.\n")
			return nil
		case err != nil:
			d.printf("%s\n", command.Describe(err))
		case reply != "":
			d.printf("%s\n", reply)
		}
		if d.enc.Phase() == combat.PhaseEnemyTurn && d.enc.Outcome() == combat.Ongoing {
			if err := d.enemyPhase(); err != nil {
				return err
			}
		}
	}
	d.printf("Outcome: %s\n", d.enc.Outcome())
	return nil
}

// enemyPhase runs the enemy turn after enemyDelay and waits for it.
func (d *duel) enemyPhase() error {
	var (
		reply string
		err   error
	)
	_, done := combat.After(d.enemyDelay, d.enc, func(enc *combat.Encounter) {
		reply, err = d.dispatcher.Dispatch(enc, "enemy")
	})
	<-done
	if err != nil {
		d.logger.Error("enemy phase failed", zap.Error(err))
		return fmt.Errorf("running enemy phase: %w", err)
	}
	d.printf("%s\n", reply)
	return nil
}

func (d *duel) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
