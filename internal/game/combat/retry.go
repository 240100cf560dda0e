package combat

import "fmt"

// RetryBudget counts the rerolls left in the current player turn.
//
// Invariant: 0 <= Remaining() <= Max().
type RetryBudget struct {
	max       int
	remaining int
}

// NewRetryBudget creates a full budget of max rerolls.
//
// Precondition: max >= 0.
func NewRetryBudget(max int) *RetryBudget {
	if max < 0 {
		panic("combat: NewRetryBudget precondition violated: max must be >= 0")
	}
	return &RetryBudget{max: max, remaining: max}
}

// Consume spends one reroll.
//
// Postcondition: Returns false with no change when the budget is exhausted.
func (b *RetryBudget) Consume() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// Reset refills the budget to Max().
func (b *RetryBudget) Reset() { b.remaining = b.max }

// Remaining returns the rerolls left.
func (b *RetryBudget) Remaining() int { return b.remaining }

// Max returns the configured budget.
func (b *RetryBudget) Max() int { return b.max }

// String renders the budget as "Roll : remaining / max".
func (b *RetryBudget) String() string {
	return fmt.Sprintf("Roll : %d / %d", b.remaining, b.max)
}
