package hypergeom

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

const epsilon = 1e-9

func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestProbSingleType(t *testing.T) {
	is := is.New(t)
	type tc struct {
		deckSize  int
		count     int
		drawCount int
		drawn     int
		expected  float64
	}
	cases := []tc{
		// Drawing the only copy in a 1-card draw from 10 cards.
		{10, 1, 1, 1, 0.1},
		// Missing it.
		{10, 1, 1, 0, 0.9},
		// C(4,2)*C(56,5)/C(60,7): two of four copies in an opening hand.
		{60, 4, 7, 2, 6.0 * 3819816.0 / 386206920.0},
		// Whole draw typed.
		{10, 10, 3, 3, 1},
	}
	for _, c := range cases {
		got := Prob(c.deckSize, []int{c.count}, c.drawCount, []int{c.drawn})
		is.True(fuzzyEqual(got, c.expected))
	}
}

func TestProbImpossible(t *testing.T) {
	is := is.New(t)
	// More drawn of a type than the deck holds.
	is.Equal(Prob(10, []int{1}, 3, []int{2}), 0.0)
	// More typed cards than the draw.
	is.Equal(Prob(10, []int{5, 5}, 2, []int{2, 1}), 0.0)
	// Other cards required but none exist.
	is.Equal(Prob(4, []int{4}, 2, []int{1}), 0.0)
	// Overcommitted deck: tracked populations exceed the deck.
	is.Equal(Prob(5, []int{4, 4}, 2, []int{1, 1}), 0.0)
	// Empty deck.
	is.Equal(Prob(0, []int{0}, 0, []int{0}), 0.0)
}

func TestProbConservation(t *testing.T) {
	is := is.New(t)
	// Summing Prob over every reachable draw vector must give exactly 1.
	deckSize := 30
	counts := []int{4, 3, 2}
	draw := 7
	sum := 0.0
	for a := 0; a <= 4; a++ {
		for b := 0; b <= 3; b++ {
			for c := 0; c <= 2; c++ {
				sum += Prob(deckSize, counts, draw, []int{a, b, c})
			}
		}
	}
	is.True(math.Abs(sum-1) < 1e-6)
}

func TestCumulativeClosedFormsAgree(t *testing.T) {
	is := is.New(t)
	// The 2- and 3-type closed forms must match brute-force enumeration.
	deckSize := 40
	counts := []int{8, 6, 4}
	mins := []int{1, 1, 0}

	got := Cumulative(deckSize, counts, 7, mins)
	want := 0.0
	for a := 0; a <= 7; a++ {
		for b := 0; b <= 6; b++ {
			for c := 0; c <= 4; c++ {
				if a >= mins[0] && b >= mins[1] && c >= mins[2] {
					want += Prob(deckSize, counts, 7, []int{a, b, c})
				}
			}
		}
	}
	is.True(fuzzyEqual(got, want))

	got2 := Cumulative(deckSize, counts[:2], 7, mins[:2])
	want2 := 0.0
	for a := 0; a <= 7; a++ {
		for b := 0; b <= 6; b++ {
			if a >= mins[0] && b >= mins[1] {
				want2 += Prob(deckSize, counts[:2], 7, []int{a, b})
			}
		}
	}
	is.True(fuzzyEqual(got2, want2))
}

func TestCumulativeRecursiveMatchesClosedForm(t *testing.T) {
	is := is.New(t)
	// Four types take the recursive path; padding the 3-type case with an
	// empty fourth type must not change the answer.
	deckSize := 40
	counts := []int{8, 6, 4}
	mins := []int{1, 1, 1}
	closed := Cumulative(deckSize, counts, 7, mins)
	recursive := Cumulative(deckSize, []int{8, 6, 4, 0}, 7, []int{1, 1, 1, 0})
	is.True(fuzzyEqual(closed, recursive))
}

func TestCumulativeSingleTypeExact(t *testing.T) {
	is := is.New(t)
	// At least one of a single copy in 7 of 10 is exactly 7/10.
	got := Cumulative(10, []int{1}, 7, []int{1})
	is.True(fuzzyEqual(got, 0.7))
	// No requirement at all is a certainty.
	is.True(fuzzyEqual(Cumulative(10, []int{3}, 7, []int{0}), 1))
}
