// Package hand converts a set of resolved dice into the best-scoring combat hand.
//
// Two tiers compete in one ordering: classic combinations (priority 0-9) and
// elemental combinations (priority 10-13). The winner has the strictly
// greatest score; on an exact tie the strictly greater priority wins.
package hand

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// Context is the scoring state owned by one combatant.
//
// Invariant: once AllOfAKind is set it is never cleared.
type Context struct {
	allOfAKind bool
}

// NewContext returns a fresh scoring context.
func NewContext() *Context { return &Context{} }

// AllOfAKind reports whether All of a Kind has ever been achieved in this context.
func (c *Context) AllOfAKind() bool { return c.allOfAKind }

// SynergyFlags report which elemental synergy won the evaluation.
type SynergyFlags struct {
	Fire  bool
	Water bool
	Wind  bool
	Earth bool
}

// For reports the flag governing dice of type t. Fired dice follow Fire.
func (f SynergyFlags) For(t dice.ElementType) bool {
	switch t.Effect() {
	case dice.Fire:
		return f.Fire
	case dice.Water:
		return f.Water
	case dice.Wind:
		return f.Wind
	case dice.Earth:
		return f.Earth
	default:
		return false
	}
}

// Any reports whether any synergy flag is set.
func (f SynergyFlags) Any() bool { return f.Fire || f.Water || f.Wind || f.Earth }

func flagsFor(t dice.ElementType) SynergyFlags {
	var f SynergyFlags
	switch t {
	case dice.Fire:
		f.Fire = true
	case dice.Water:
		f.Water = true
	case dice.Wind:
		f.Wind = true
	case dice.Earth:
		f.Earth = true
	}
	return f
}

// Result is the winning hand of an evaluation.
type Result struct {
	Score    int
	Name     string
	Priority int
	Synergy  SynergyFlags
	// Breakdown holds the approximate per-die share round(Score/n).
	Breakdown []int
}

// String renders the result as e.g. "Full House +25".
func (r Result) String() string {
	if r.Name == "" {
		return "-"
	}
	return fmt.Sprintf("%s +%d", r.Name, r.Score)
}

// candidate is one eligible hand during evaluation.
type candidate struct {
	score    int
	name     string
	priority int
	// synergy is the element whose synergy this candidate represents, or Standard.
	synergy dice.ElementType
}

// picker keeps the best candidate seen so far.
type picker struct {
	best candidate
}

func newPicker() *picker {
	return &picker{best: candidate{priority: -1}}
}

func (p *picker) offer(c candidate) {
	if c.score > p.best.score || (c.score == p.best.score && c.priority > p.best.priority) {
		p.best = c
	}
}

// Evaluate scores dice against both tiers and returns the winning hand.
// Achieving All of a Kind sets the context's sticky flag.
//
// Precondition: ctx must be non-nil.
// Postcondition: Score >= 0; empty input yields the zero Result.
func Evaluate(ctx *Context, ds []dice.Die) Result {
	return evaluate(ctx, ds, true, true)
}

// EvaluateClassic scores dice against classic combinations only; element
// types are ignored.
//
// Precondition: ctx must be non-nil.
func EvaluateClassic(ctx *Context, ds []dice.Die) Result {
	return evaluate(ctx, ds, false, true)
}

// Contribution returns the approximate share of die i in the winning score,
// round(score/n). It does not change the context.
//
// Postcondition: Returns 0 for empty input or an invalid index.
func Contribution(ctx *Context, ds []dice.Die, i int) int {
	if i < 0 || i >= len(ds) {
		return 0
	}
	return evaluate(ctx, ds, true, false).Breakdown[i]
}

func evaluate(ctx *Context, ds []dice.Die, elemental, commit bool) Result {
	if ctx == nil {
		panic("hand: evaluate precondition violated: ctx must be non-nil")
	}
	if len(ds) == 0 {
		return Result{}
	}
	p := newPicker()
	sticky := classicCandidates(ctx.allOfAKind, dice.Values(ds), p.offer)
	if elemental {
		elementalCandidates(ds, p.offer)
	}
	if sticky && commit {
		ctx.allOfAKind = true
	}

	share := perDie(p.best.score, len(ds))
	breakdown := make([]int, len(ds))
	for i := range breakdown {
		breakdown[i] = share
	}
	return Result{
		Score:     p.best.score,
		Name:      p.best.name,
		Priority:  p.best.priority,
		Synergy:   flagsFor(p.best.synergy),
		Breakdown: breakdown,
	}
}

// perDie divides score across n dice, rounding half to even.
func perDie(score, n int) int {
	return int(math.RoundToEven(float64(score) / float64(n)))
}
