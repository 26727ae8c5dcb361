// Package hypergeom implements the exact multivariate hypergeometric
// arithmetic underlying all of keeper's draw-odds math. Every tracked card
// type is a category of its own; whatever is left of the deck is an implicit
// "other" category that absorbs the remainder of the draw.
package hypergeom

import (
	"gonum.org/v1/gonum/stat/combin"
)

// choose is C(n, k) as a float64, with the out-of-range cases flattened to
// zero instead of the panics gonum reserves for them.
func choose(n, k int) float64 {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	return combin.GeneralizedBinomial(float64(n), float64(k))
}

// Prob returns the probability of drawing exactly typeDrawn[i] cards of each
// tracked type i in a draw of drawCount cards, without replacement, from a
// deck of deckSize cards with typeCounts[i] copies of each type. The rest of
// the draw is "other" cards. Structurally impossible requests (more cards of
// a type than exist, more typed cards than the draw holds, an overcommitted
// deck) return 0.
func Prob(deckSize int, typeCounts []int, drawCount int, typeDrawn []int) float64 {
	if deckSize <= 0 || drawCount < 0 || drawCount > deckSize {
		return 0
	}
	tracked := 0
	drawn := 0
	for i := range typeCounts {
		if typeDrawn[i] < 0 || typeDrawn[i] > typeCounts[i] {
			return 0
		}
		tracked += typeCounts[i]
		drawn += typeDrawn[i]
	}
	otherTotal := deckSize - tracked
	otherDrawn := drawCount - drawn
	if otherTotal < 0 || otherDrawn < 0 || otherDrawn > otherTotal {
		return 0
	}
	p := choose(otherTotal, otherDrawn)
	for i := range typeCounts {
		p *= choose(typeCounts[i], typeDrawn[i])
	}
	return p / choose(deckSize, drawCount)
}

// Cumulative returns the probability of drawing at least minDrawn[i] cards of
// every tracked type i in a single draw of drawCount cards. One to three
// tracked types go through the closed-form nested sums below; beyond that we
// fall back to enumerating every valid draw vector.
func Cumulative(deckSize int, typeCounts []int, drawCount int, minDrawn []int) float64 {
	switch len(typeCounts) {
	case 0:
		if deckSize <= 0 || drawCount < 0 || drawCount > deckSize {
			return 0
		}
		return 1
	case 1:
		return atLeast1(deckSize, typeCounts, drawCount, minDrawn)
	case 2:
		return atLeast2(deckSize, typeCounts, drawCount, minDrawn)
	case 3:
		return atLeast3(deckSize, typeCounts, drawCount, minDrawn)
	}
	drawn := make([]int, len(typeCounts))
	return cumulativeRec(deckSize, typeCounts, drawCount, minDrawn, drawn, 0)
}

// atLeast1 is the classic upper tail of a univariate hypergeometric.
func atLeast1(deckSize int, typeCounts []int, drawCount int, minDrawn []int) float64 {
	total := choose(deckSize, drawCount)
	if total == 0 {
		return 0
	}
	other := deckSize - typeCounts[0]
	sum := 0.0
	for x := max(minDrawn[0], 0); x <= min(typeCounts[0], drawCount); x++ {
		sum += choose(typeCounts[0], x) * choose(other, drawCount-x)
	}
	return sum / total
}

func atLeast2(deckSize int, typeCounts []int, drawCount int, minDrawn []int) float64 {
	total := choose(deckSize, drawCount)
	if total == 0 {
		return 0
	}
	other := deckSize - typeCounts[0] - typeCounts[1]
	sum := 0.0
	for x := max(minDrawn[0], 0); x <= min(typeCounts[0], drawCount); x++ {
		cx := choose(typeCounts[0], x)
		for y := max(minDrawn[1], 0); y <= min(typeCounts[1], drawCount-x); y++ {
			sum += cx * choose(typeCounts[1], y) * choose(other, drawCount-x-y)
		}
	}
	return sum / total
}

func atLeast3(deckSize int, typeCounts []int, drawCount int, minDrawn []int) float64 {
	total := choose(deckSize, drawCount)
	if total == 0 {
		return 0
	}
	other := deckSize - typeCounts[0] - typeCounts[1] - typeCounts[2]
	sum := 0.0
	for x := max(minDrawn[0], 0); x <= min(typeCounts[0], drawCount); x++ {
		cx := choose(typeCounts[0], x)
		for y := max(minDrawn[1], 0); y <= min(typeCounts[1], drawCount-x); y++ {
			cxy := cx * choose(typeCounts[1], y)
			for z := max(minDrawn[2], 0); z <= min(typeCounts[2], drawCount-x-y); z++ {
				sum += cxy * choose(typeCounts[2], z) * choose(other, drawCount-x-y-z)
			}
		}
	}
	return sum / total
}

func cumulativeRec(deckSize int, typeCounts []int, drawCount int, minDrawn, drawn []int, idx int) float64 {
	if idx == len(typeCounts) {
		return Prob(deckSize, typeCounts, drawCount, drawn)
	}
	used := 0
	for i := 0; i < idx; i++ {
		used += drawn[i]
	}
	sum := 0.0
	for x := max(minDrawn[idx], 0); x <= min(typeCounts[idx], drawCount-used); x++ {
		drawn[idx] = x
		sum += cumulativeRec(deckSize, typeCounts, drawCount, minDrawn, drawn, idx+1)
	}
	drawn[idx] = 0
	return sum
}
