// Package dice provides the dice, the randomness abstraction and the roll
// lifecycle of a combatant's dice set.
package dice

import (
	"fmt"
	"strings"
)

// Faces is the number of faces on every die in the engine.
const Faces = 6

// ElementType is the elemental type carried by a die.
type ElementType int

const (
	// Standard is the untyped default.
	Standard ElementType = iota
	Earth
	Fire
	Water
	Wind
	// Fired is reachable only through Fire propagation, never by a table draw.
	Fired
)

// elementInfo is the per-type metadata of the ElementType variant.
type elementInfo struct {
	name     string
	drawable bool
	effect   ElementType
}

var elementInfos = [...]elementInfo{
	Standard: {name: "Standard", drawable: false, effect: Standard},
	Earth:    {name: "Earth", drawable: true, effect: Earth},
	Fire:     {name: "Fire", drawable: true, effect: Fire},
	Water:    {name: "Water", drawable: true, effect: Water},
	Wind:     {name: "Wind", drawable: true, effect: Wind},
	Fired:    {name: "Fired", drawable: false, effect: Fire},
}

func (t ElementType) info() elementInfo {
	if t < 0 || int(t) >= len(elementInfos) {
		return elementInfo{name: fmt.Sprintf("ElementType(%d)", int(t)), effect: Standard}
	}
	return elementInfos[t]
}

// String returns the display name of the element.
func (t ElementType) String() string { return t.info().name }

// Drawable reports whether the element may appear in a probability table.
func (t ElementType) Drawable() bool { return t.info().drawable }

// Effect returns the element whose visual effect a die of this type uses.
// Fired dice share Fire's effect.
func (t ElementType) Effect() ElementType { return t.info().effect }

// ElementTypes returns every element type in declaration order.
func ElementTypes() []ElementType {
	return []ElementType{Standard, Earth, Fire, Water, Wind, Fired}
}

// ParseElementType resolves a case-insensitive element name.
//
// Postcondition: Returns the matching ElementType or a non-nil error.
func ParseElementType(name string) (ElementType, error) {
	for _, t := range ElementTypes() {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return Standard, fmt.Errorf("dice: unknown element type %q", name)
}

// Die is a single face-valued, lockable, typed die within a Set.
//
// Invariant: 1 <= Value <= Faces.
type Die struct {
	// Index is the die's stable position within its Set.
	Index int
	Value int
	// Locked dice keep their value and type across rolls.
	Locked bool
	Type   ElementType
	// Overlay marks a Fire die whose propagation fired; presentation only.
	Overlay bool
}

// String renders the die as e.g. "4(Fire)" or "2*" when locked.
func (d Die) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", d.Value)
	if d.Type != Standard {
		fmt.Fprintf(&b, "(%s)", d.Type)
	}
	if d.Locked {
		b.WriteByte('*')
	}
	return b.String()
}

// Values returns the face values of dice in order.
func Values(dice []Die) []int {
	out := make([]int, len(dice))
	for i, d := range dice {
		out[i] = d.Value
	}
	return out
}
