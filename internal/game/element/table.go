// Package element assigns elemental types to rolled dice and applies the
// Earth overflow and Fire propagation rules.
package element

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/dicefight/internal/config"
	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// drawResolution is the number of draw buckets: [0,100) at 0.01 resolution.
const drawResolution = 10000

// maxRoll is the highest roll Draw can produce.
const maxRoll = float64(drawResolution-1) / 100.0

// Entry is one row of a probability table.
type Entry struct {
	Type        dice.ElementType
	Probability float64 // percent of the [0,100) draw range
}

// Table is an ordered weighted draw table. The remainder maps to Standard.
//
// Invariant: entry order is preserved exactly; it decides overlapping mass.
type Table struct {
	entries []Entry
}

// NewTable validates entries and builds a Table.
//
// Postcondition: Returns a Table or an error naming every invalid entry.
// A table on which every draw lands on Earth is rejected: the overflow
// correction could never reach a fixed point.
//
// Postcondition: Returns a Table or an error naming every invalid entry.
func NewTable(entries []Entry) (Table, error) {
	var errs []string
	seen := make(map[dice.ElementType]int, len(entries))
	for i, e := range entries {
		if !e.Type.Drawable() {
			errs = append(errs, fmt.Sprintf("entry %d: %s cannot be drawn", i, e.Type))
		}
		if e.Probability < 0 || e.Probability > 100 {
			errs = append(errs, fmt.Sprintf("entry %d: probability %g outside [0,100]", i, e.Probability))
		}
		if first, dup := seen[e.Type]; dup {
			errs = append(errs, fmt.Sprintf("entry %d: duplicate %s row (first at entry %d)", i, e.Type, first))
			continue
		}
		seen[e.Type] = i
	}
	if len(errs) > 0 {
		return Table{}, fmt.Errorf("element: invalid table: %s", strings.Join(errs, "; "))
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	t := Table{entries: out}
	if t.EarthCertain() {
		return Table{}, fmt.Errorf("element: invalid table: earth covers every draw")
	}
	return t, nil
}

// EarthCertain reports whether every draw from t yields Earth.
// Each type owns one contiguous draw range, so checking both ends suffices.
//
// Precondition: t has no duplicate rows.
func (t Table) EarthCertain() bool {
	return t.Pick(0) == dice.Earth && t.Pick(maxRoll) == dice.Earth
}

// DefaultTable returns Earth, Fire, Water and Wind at 15% each.
func DefaultTable() Table {
	return Table{entries: []Entry{
		{Type: dice.Earth, Probability: 15},
		{Type: dice.Fire, Probability: 15},
		{Type: dice.Water, Probability: 15},
		{Type: dice.Wind, Probability: 15},
	}}
}

// TableFromConfig converts the configured element_table into a Table.
func TableFromConfig(rows []config.ElementEntry) (Table, error) {
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		t, err := dice.ParseElementType(row.Type)
		if err != nil {
			return Table{}, fmt.Errorf("element: row %d: %w", i, err)
		}
		entries = append(entries, Entry{Type: t, Probability: row.Probability})
	}
	return NewTable(entries)
}

// Entries returns a copy of the table rows.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Pick returns the type for a roll in [0,100): the first entry whose
// cumulative bound exceeds roll, else Standard.
func (t Table) Pick(roll float64) dice.ElementType {
	cumulative := 0.0
	for _, e := range t.entries {
		cumulative += e.Probability
		if roll < cumulative {
			return e.Type
		}
	}
	return dice.Standard
}

// Draw samples a roll from src and picks its type.
//
// Precondition: src must be non-nil.
func (t Table) Draw(src dice.Source) dice.ElementType {
	return t.Pick(float64(src.Intn(drawResolution)) / 100.0)
}
