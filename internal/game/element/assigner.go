package element

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// DefaultOverflowWarnAfter is the number of Earth overflow corrections in one
// roll after which the assigner logs a warning.
const DefaultOverflowWarnAfter = 64

// EarthOverflowThreshold is the Earth count that forces a full reroll.
const EarthOverflowThreshold = 4

// FireSynergyMin is the Fire count required for propagation.
const FireSynergyMin = 2

// RollReport describes the corrections applied during one Assigner.Roll.
type RollReport struct {
	// Corrections is the number of Earth overflow rerolls performed.
	Corrections int
	// Propagated lists the indices converted to Fired.
	Propagated []int
	// Overlaid lists the Fire indices that received the overlay marker.
	Overlaid []int
}

// Assigner rolls a dice set and types the result.
type Assigner struct {
	table     Table
	src       dice.Source
	logger    *zap.Logger
	warnAfter int
}

// NewAssigner creates an Assigner drawing from table with src.
// warnAfter < 1 selects DefaultOverflowWarnAfter.
//
// Precondition: src and logger must be non-nil.
func NewAssigner(table Table, src dice.Source, logger *zap.Logger, warnAfter int) *Assigner {
	if src == nil || logger == nil {
		panic("element: NewAssigner precondition violated: src and logger must be non-nil")
	}
	if warnAfter < 1 {
		warnAfter = DefaultOverflowWarnAfter
	}
	return &Assigner{table: table, src: src, logger: logger, warnAfter: warnAfter}
}

// Table returns the assigner's draw table.
func (a *Assigner) Table() Table { return a.table }

// Roll performs one atomic roll of set: reset, roll, draw, Earth overflow
// correction to a fixed point, then Fire propagation.
//
// Precondition: set must be non-nil and not Rolling.
// Postcondition: EarthCount(set) < EarthOverflowThreshold.
// Termination holds because a Table never draws Earth with certainty.
func (a *Assigner) Roll(set *dice.Set) (RollReport, error) {
	var report RollReport
	for {
		for i := 0; i < set.Len(); i++ {
			if !set.IsLocked(i) {
				set.SetType(i, dice.Standard)
			}
			set.SetOverlay(i, false)
		}
		if err := set.Roll(); err != nil {
			return report, err
		}
		for i := 0; i < set.Len(); i++ {
			if !set.IsLocked(i) {
				set.SetType(i, a.table.Draw(a.src))
			}
		}

		earth := EarthCount(set)
		if earth < EarthOverflowThreshold {
			break
		}
		report.Corrections++
		if report.Corrections == a.warnAfter {
			a.logger.Warn("earth overflow persisting",
				zap.Int("corrections", report.Corrections),
				zap.Int("dice", set.Len()),
			)
		}
		a.logger.Debug("earth overflow",
			zap.Int("earth", earth),
			zap.Int("correction", report.Corrections),
		)
		for i := 0; i < set.Len(); i++ {
			if set.Die(i).Type == dice.Earth {
				set.SetType(i, dice.Standard)
			}
		}
		set.UnlockAll()
	}

	report.Propagated, report.Overlaid = Propagate(set)
	return report, nil
}

// EarthCount returns the number of Earth dice in set, locked ones included.
func EarthCount(set *dice.Set) int {
	n := 0
	for _, d := range set.Dice() {
		if d.Type == dice.Earth {
			n++
		}
	}
	return n
}

// Propagate applies Fire propagation: with at least two Fire dice all showing
// even values, each Fire die converts Standard neighbours to Fired and gains
// the overlay marker.
//
// Postcondition: only Standard dice change type; values are untouched.
func Propagate(set *dice.Set) (propagated, overlaid []int) {
	var fire []int
	for _, d := range set.Dice() {
		if d.Type != dice.Fire {
			continue
		}
		if d.Value%2 != 0 {
			return nil, nil
		}
		fire = append(fire, d.Index)
	}
	if len(fire) < FireSynergyMin {
		return nil, nil
	}
	for _, i := range fire {
		for _, j := range [2]int{i - 1, i + 1} {
			if j < 0 || j >= set.Len() {
				continue
			}
			if set.Die(j).Type == dice.Standard {
				set.SetType(j, dice.Fired)
				propagated = append(propagated, j)
			}
		}
		set.SetOverlay(i, true)
		overlaid = append(overlaid, i)
	}
	return propagated, overlaid
}
