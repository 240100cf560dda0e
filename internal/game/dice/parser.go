package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCount is the largest die count an expression may roll.
const MaxCount = 100

// Expression is a parsed dice expression ready to be rolled.
//
// Invariant: 1 <= Count <= MaxCount and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// String returns the raw expression.
func (e Expression) String() string { return e.Raw }

// Parse parses a dice expression such as "d6", "5d6" or "3d6+2".
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns an Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
		if count > MaxCount {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be <= %d", raw, MaxCount)
		}
	}

	rest := s[dIdx+1:]
	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i > 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	modifier := 0
	if modStr != "" {
		modifier, err = strconv.Atoi(modStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}, nil
}

// ParsePool parses expr as a plain pool of engine dice: "Nd6" with no modifier.
//
// Postcondition: Returns the pool size N >= 1 or a non-nil error.
func ParsePool(expr string) (int, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	if e.Sides != Faces {
		return 0, fmt.Errorf("dice: pool %q must use d%d, got d%d", expr, Faces, e.Sides)
	}
	if e.Modifier != 0 {
		return 0, fmt.Errorf("dice: pool %q must not carry a modifier", expr)
	}
	return e.Count, nil
}

// MustParse parses expr and panics on error.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// PoolExpression returns the expression rolling n engine dice.
//
// Precondition: n >= 1.
func PoolExpression(n int) Expression {
	if n < 1 {
		panic("dice: PoolExpression precondition violated: n must be >= 1")
	}
	return Expression{Raw: fmt.Sprintf("%dd%d", n, Faces), Count: n, Sides: Faces}
}
