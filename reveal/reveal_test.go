package reveal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmarche/keeper/deadline"
	"github.com/pmarche/keeper/mulligan"
)

func analyzed(deck mulligan.Deck) (*Revealer, *mulligan.Result) {
	res := mulligan.Analyze(deck)
	return New(deck, res), res
}

func TestRevealAlwaysKeepableDeck(t *testing.T) {
	// Every hand of an all-tracked deck satisfies a 1-of turn-0 need, so
	// every game keeps at step 0 and succeeds.
	deck := mulligan.Deck{
		Size:       40,
		Types:      []deadline.Requirement{{Count: 40, Required: 1, ByTurn: 0}},
		Confidence: 0.5,
	}
	r, _ := analyzed(deck)
	games := r.Reveal(50)
	require.Len(t, games, 50)
	for _, g := range games {
		assert.True(t, g.Kept)
		assert.True(t, g.Success)
		assert.Equal(t, 0, g.Mulligans)
		assert.Equal(t, []int{mulligan.HandSize}, g.Hand)
	}
	mean, _, _ := r.ObservedSuccess(95)
	assert.Equal(t, 1.0, mean)
	assert.Equal(t, 50, r.Games())
}

func TestRevealImpossibleDeck(t *testing.T) {
	// Requiring three copies of a singleton can never be kept above a zero
	// threshold; every game mulligans out.
	deck := mulligan.Deck{
		Size:       40,
		Types:      []deadline.Requirement{{Count: 1, Required: 3, ByTurn: 2}},
		Confidence: 0.5,
	}
	r, _ := analyzed(deck)
	games := r.Reveal(10)
	for _, g := range games {
		assert.False(t, g.Kept)
		assert.False(t, g.Success)
		assert.Equal(t, mulligan.MaxSteps, g.Mulligans)
	}
	mean, _, _ := r.ObservedSuccess(95)
	assert.Equal(t, 0.0, mean)
}

func TestRevealObservedTracksExact(t *testing.T) {
	// With a zero threshold every hand is kept, so the observed rate should
	// land near the exact baseline.
	deck := mulligan.Deck{
		Size:       60,
		Types:      []deadline.Requirement{{Count: 20, Required: 1, ByTurn: 1}},
		Confidence: 0,
	}
	r, res := analyzed(deck)
	r.Reveal(4000)
	mean, _, _ := r.ObservedSuccess(95)
	assert.InDelta(t, res.BaselineSuccess, mean, 0.05)
}

func TestRevealMulliganCounts(t *testing.T) {
	deck := mulligan.Deck{
		Size:       60,
		Types:      []deadline.Requirement{{Count: 10, Required: 1, ByTurn: 0}},
		Confidence: 0.5,
	}
	r, _ := analyzed(deck)
	r.Reveal(200)
	counts := r.MulliganCounts()
	require.Len(t, counts, 200)
	for _, c := range counts {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, float64(mulligan.MaxSteps))
	}
}

func TestRevealBottomingShrinksHand(t *testing.T) {
	r := &Revealer{deck: mulligan.Deck{
		Types: []deadline.Requirement{
			{Count: 10, Required: 1, ByTurn: 1},
			{Count: 10, Required: 2, ByTurn: 2},
		},
	}}
	// All seven cards tracked: 4 of type 0, 3 of type 1; two mulligans owed.
	hand := []int{4, 3}
	r.bottom(hand, 2)
	// Type 0 has the bigger surplus (4-1 vs 3-2) and gives up both.
	assert.Equal(t, []int{2, 3}, hand)

	// With untracked cards in hand, they are shed first.
	hand = []int{1, 1}
	r.bottom(hand, 2)
	assert.Equal(t, []int{1, 1}, hand)
}

func TestRevealFreeMulliganKeepsSeven(t *testing.T) {
	r := &Revealer{deck: mulligan.Deck{
		FreeMulligan: true,
		Types:        []deadline.Requirement{{Count: 10, Required: 1, ByTurn: 1}},
	}}
	hand := []int{7}
	r.bottom(hand, 1)
	assert.Equal(t, []int{7}, hand)
}

func TestRevealLogStream(t *testing.T) {
	deck := mulligan.Deck{
		Size:       40,
		Types:      []deadline.Requirement{{Count: 40, Required: 1, ByTurn: 0}},
		Confidence: 0.5,
	}
	r, _ := analyzed(deck)
	var buf bytes.Buffer
	r.SetLogStream(&buf)
	r.Reveal(3)
	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "mulligans:"))
	assert.Contains(t, out, "success: true")
}
