package dice

import "errors"

// ErrRollInProgress is returned when a roll is requested while one is unresolved.
var ErrRollInProgress = errors.New("dice: roll already in progress")

// ErrNotRolling is returned by Resolve when no roll has begun.
var ErrNotRolling = errors.New("dice: no roll in progress")

// RollState is the lifecycle state of a Set.
type RollState int

const (
	Idle RollState = iota
	Rolling
	Resolved
)

// String returns the state name.
func (s RollState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rolling:
		return "rolling"
	case Resolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Set is the ordered, fixed-length collection of dice owned by one combatant.
//
// Invariant: the length never changes after NewSet.
// Invariant: once Resolved, values and types are stable until the next BeginRoll.
//
// Set is not safe for concurrent use; its owner serialises access.
type Set struct {
	dice      []Die
	state     RollState
	hasRolled bool
	roller    *Roller
}

// NewSet creates a set of n Standard dice showing 1.
//
// Precondition: n >= 1; roller must be non-nil.
// Postcondition: State() == Idle and HasRolled() == false.
func NewSet(n int, roller *Roller) *Set {
	if n < 1 {
		panic("dice: NewSet precondition violated: n must be >= 1")
	}
	if roller == nil {
		panic("dice: NewSet precondition violated: roller must be non-nil")
	}
	dice := make([]Die, n)
	for i := range dice {
		dice[i] = Die{Index: i, Value: 1, Type: Standard}
	}
	return &Set{dice: dice, roller: roller}
}

// Len returns the number of dice.
func (s *Set) Len() int { return len(s.dice) }

// State returns the current roll state.
func (s *Set) State() RollState { return s.state }

// HasRolled reports whether at least one roll has resolved.
func (s *Set) HasRolled() bool { return s.hasRolled }

func (s *Set) valid(i int) bool { return i >= 0 && i < len(s.dice) }

// Die returns the die at index i, or the zero Die for an invalid index.
func (s *Set) Die(i int) Die {
	if !s.valid(i) {
		return Die{}
	}
	return s.dice[i]
}

// Dice returns a snapshot copy of all dice.
func (s *Set) Dice() []Die {
	out := make([]Die, len(s.dice))
	copy(out, s.dice)
	return out
}

// Values returns the face values in order.
func (s *Set) Values() []int { return Values(s.dice) }

// Types returns the element types in order.
func (s *Set) Types() []ElementType {
	out := make([]ElementType, len(s.dice))
	for i, d := range s.dice {
		out[i] = d.Type
	}
	return out
}

// BeginRoll moves the set into the Rolling state.
//
// Postcondition: Returns ErrRollInProgress if already Rolling; otherwise State() == Rolling.
func (s *Set) BeginRoll() error {
	if s.state == Rolling {
		return ErrRollInProgress
	}
	s.state = Rolling
	return nil
}

// Resolve draws a new face for every unlocked die as one expression and
// transitions to Resolved. Locked dice keep their value.
//
// Postcondition: Returns ErrNotRolling unless State() was Rolling; otherwise
// State() == Resolved and HasRolled() == true.
func (s *Set) Resolve() error {
	if s.state != Rolling {
		return ErrNotRolling
	}
	var unlocked []int
	for i, d := range s.dice {
		if !d.Locked {
			unlocked = append(unlocked, i)
		}
	}
	if len(unlocked) > 0 {
		result := s.roller.Roll(PoolExpression(len(unlocked)))
		for k, i := range unlocked {
			s.dice[i].Value = result.Dice[k]
		}
	}
	s.state = Resolved
	s.hasRolled = true
	return nil
}

// Roll performs BeginRoll and Resolve as one synchronous transform.
func (s *Set) Roll() error {
	if err := s.BeginRoll(); err != nil {
		return err
	}
	return s.Resolve()
}

// ToggleLock flips the lock on die i.
//
// Postcondition: Returns false with no change for an invalid index, while
// Rolling, or before the first roll; otherwise the new lock state.
func (s *Set) ToggleLock(i int) bool {
	if !s.valid(i) || s.state == Rolling || !s.hasRolled {
		return false
	}
	s.dice[i].Locked = !s.dice[i].Locked
	return s.dice[i].Locked
}

// IsLocked reports whether die i is locked; false for an invalid index.
func (s *Set) IsLocked(i int) bool {
	return s.valid(i) && s.dice[i].Locked
}

// UnlockAll clears every lock.
func (s *Set) UnlockAll() {
	for i := range s.dice {
		s.dice[i].Locked = false
	}
}

// SetType overwrites the type of die i; invalid indices are ignored.
func (s *Set) SetType(i int, t ElementType) {
	if s.valid(i) {
		s.dice[i].Type = t
	}
}

// SetOverlay sets the presentation overlay of die i; invalid indices are ignored.
func (s *Set) SetOverlay(i int, on bool) {
	if s.valid(i) {
		s.dice[i].Overlay = on
	}
}
