package hand

import (
	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// Elemental combination priorities.
const (
	PriorityFire  = 10
	PriorityWater = 11
	PriorityWind  = 12
	PriorityEarth = 13
)

// elementRule scores one element. Adding an element means adding one rule.
type elementRule struct {
	element  dice.ElementType
	priority int
	// members selects the dice the rule looks at.
	members func(d dice.Die) bool
	// score returns the score, the hand name and whether synergy is active.
	score func(members []dice.Die) (int, string, bool)
}

var elementRules = []elementRule{
	{
		element:  dice.Fire,
		priority: PriorityFire,
		members:  func(d dice.Die) bool { return d.Type == dice.Fire || d.Type == dice.Fired },
		score:    scoreFire,
	},
	{
		element:  dice.Water,
		priority: PriorityWater,
		members:  ofType(dice.Water),
		score:    scoreWater,
	},
	{
		element:  dice.Wind,
		priority: PriorityWind,
		members:  ofType(dice.Wind),
		score:    scoreWind,
	},
	{
		element:  dice.Earth,
		priority: PriorityEarth,
		members:  ofType(dice.Earth),
		score:    scoreEarth,
	},
}

func ofType(t dice.ElementType) func(dice.Die) bool {
	return func(d dice.Die) bool { return d.Type == t }
}

// elementalCandidates offers one candidate per element present in ds.
func elementalCandidates(ds []dice.Die, offer func(candidate)) {
	for _, rule := range elementRules {
		var members []dice.Die
		for _, d := range ds {
			if rule.members(d) {
				members = append(members, d)
			}
		}
		if len(members) == 0 {
			continue
		}
		score, name, synergy := rule.score(members)
		c := candidate{score: score, name: name, priority: rule.priority}
		if synergy {
			c.synergy = rule.element
		}
		offer(c)
	}
}

func allValues(ds []dice.Die, pred func(v int) bool) bool {
	for _, d := range ds {
		if !pred(d.Value) {
			return false
		}
	}
	return true
}

func even(v int) bool { return v%2 == 0 }
func odd(v int) bool  { return v%2 != 0 }

func scoreFire(members []dice.Die) (int, string, bool) {
	var fire []dice.Die
	fireBase, firedBase, fireDouble := 0, 0, 0
	for _, d := range members {
		if d.Type == dice.Fire {
			fire = append(fire, d)
			fireBase += d.Value + 2
			fireDouble += d.Value * 2
		} else {
			firedBase += d.Value * 2
		}
	}
	if len(fire) >= 2 && allValues(fire, even) {
		return fireBase*2 + firedBase + fireDouble, "Fire Synergy", true
	}
	if len(fire) > 0 {
		return fireBase + firedBase, "Fire", false
	}
	return firedBase, "Fired", false
}

func scoreWater(members []dice.Die) (int, string, bool) {
	base := 0
	for _, d := range members {
		base += d.Value + 1
	}
	if len(members) >= 2 && allValues(members, odd) {
		return base * 2, "Water Synergy", true
	}
	return base, "Water", false
}

func scoreWind(members []dice.Die) (int, string, bool) {
	if len(members) < 2 {
		return 0, "Wind", false
	}
	sum := 0
	for _, d := range members {
		sum += d.Value
	}
	return sum, "Wind Synergy", true
}

func scoreEarth(members []dice.Die) (int, string, bool) {
	if len(members) >= 2 {
		return len(members) * 10, "Earth Synergy", true
	}
	return len(members) * 10, "Earth", false
}

// Labels returns every hand name Evaluate can produce.
func Labels() []string {
	return []string{
		"Ace", "Two", "Three", "Four", "Five", "Six",
		"Upper Bonus", "One Pair", "Two Pairs", "Three of a Kind", "Four of a Kind",
		"Full House", "Small Straight", "Large Straight", "All of a Kind", "All of a Kind+",
		"Fire Synergy", "Fire", "Fired",
		"Water Synergy", "Water",
		"Wind Synergy", "Wind",
		"Earth Synergy", "Earth",
	}
}
