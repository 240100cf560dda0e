package hand

import (
	"github.com/cory-johannsen/dicefight/internal/game/dice"
)

// Classic combination priorities.
const (
	PriorityUpper = iota
	PriorityUpperBonus
	PriorityOnePair
	PriorityTwoPairs
	PriorityThreeOfAKind
	PriorityFourOfAKind
	PriorityFullHouse
	PrioritySmallStraight
	PriorityLargeStraight
	PriorityAllOfAKind
)

// Classic combination payouts.
const (
	UpperBonus           = 35
	FullHouseScore       = 25
	SmallStraightScore   = 30
	LargeStraightScore   = 40
	allOfAKindPerDie     = 10
	allOfAKindPlusBase   = 50
	allOfAKindPlusPerDie = 20
)

var upperNames = [dice.Faces + 1]string{"", "Ace", "Two", "Three", "Four", "Five", "Six"}

// UpperBonusThreshold returns ceil(n * 12.6), the face sum that earns the bonus.
func UpperBonusThreshold(n int) int {
	return (n*126 + 9) / 10
}

// upperBonus returns the Upper Bonus candidate when faceSum reaches the
// threshold for n dice. Six-sided faces sum to at most 6n, below the
// threshold, so a single roll never earns it.
func upperBonus(n, faceSum int) (candidate, bool) {
	if n < 1 || faceSum < UpperBonusThreshold(n) {
		return candidate{}, false
	}
	return candidate{score: faceSum + UpperBonus, name: "Upper Bonus", priority: PriorityUpperBonus}, true
}

// classicCandidates offers every eligible classic combination for values.
// It reports whether All of a Kind was eligible.
func classicCandidates(sticky bool, values []int, offer func(candidate)) bool {
	n := len(values)
	var counts [dice.Faces + 1]int
	total := 0
	for _, v := range values {
		counts[v]++
		total += v
	}

	for face := 1; face <= dice.Faces; face++ {
		offer(candidate{score: face * counts[face], name: upperNames[face], priority: PriorityUpper})
	}

	if c, ok := upperBonus(n, total); ok {
		offer(c)
	}

	var pairs []int
	for face := dice.Faces; face >= 1; face-- {
		if counts[face] >= 2 {
			pairs = append(pairs, face)
		}
	}
	if n >= 2 && len(pairs) >= 1 {
		offer(candidate{score: pairs[0] * 2, name: "One Pair", priority: PriorityOnePair})
	}
	if n >= 4 && len(pairs) >= 2 {
		offer(candidate{score: pairs[0]*2 + pairs[1]*2, name: "Two Pairs", priority: PriorityTwoPairs})
	}

	maxCount, triple, double := 0, false, false
	for face := 1; face <= dice.Faces; face++ {
		maxCount = max(maxCount, counts[face])
		switch counts[face] {
		case 3:
			triple = true
		case 2:
			double = true
		}
	}
	if n >= 3 && maxCount >= 3 {
		offer(candidate{score: total, name: "Three of a Kind", priority: PriorityThreeOfAKind})
	}
	if n >= 4 && maxCount >= 4 {
		offer(candidate{score: total, name: "Four of a Kind", priority: PriorityFourOfAKind})
	}
	if n >= 5 && triple && double {
		offer(candidate{score: FullHouseScore, name: "Full House", priority: PriorityFullHouse})
	}
	if n >= 4 && run(counts, 4) {
		offer(candidate{score: SmallStraightScore, name: "Small Straight", priority: PrioritySmallStraight})
	}
	if n >= 5 && run(counts, 5) {
		offer(candidate{score: LargeStraightScore, name: "Large Straight", priority: PriorityLargeStraight})
	}

	if n >= 4 && maxCount == n {
		if sticky {
			offer(candidate{score: allOfAKindPlusBase + allOfAKindPlusPerDie*n, name: "All of a Kind+", priority: PriorityAllOfAKind})
		} else {
			offer(candidate{score: allOfAKindPerDie * n, name: "All of a Kind", priority: PriorityAllOfAKind})
		}
		return true
	}
	return false
}

// run reports whether length consecutive faces are all present.
func run(counts [dice.Faces + 1]int, length int) bool {
	streak := 0
	for face := 1; face <= dice.Faces; face++ {
		if counts[face] == 0 {
			streak = 0
			continue
		}
		streak++
		if streak >= length {
			return true
		}
	}
	return false
}
