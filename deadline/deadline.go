// Package deadline computes the probability that an opening hand goes on to
// meet every tracked type's requirement by its deadline turn, drawing one
// card per turn without replacement.
package deadline

import (
	"sort"

	"github.com/pmarche/keeper/hypergeom"
)

// HandSize is the number of cards in an un-mulliganed opening hand.
const HandSize = 7

// Requirement is one tracked card type: how many copies the deck runs, how
// many must be in hand, and the turn by which they must be there. ByTurn 0
// means the copies have to be in the opening hand itself.
type Requirement struct {
	Count    int `yaml:"count" json:"count"`
	Required int `yaml:"required" json:"required"`
	ByTurn   int `yaml:"by_turn" json:"byTurn"`
}

// maxPackedTypes is the widest count vector that still fits a packed uint64
// memo key (8 bits per type plus the step byte). Decks tracking more types
// than this run unmemoized; the hand space is intractable long before then.
const maxPackedTypes = 7

// solver carries the per-call state for one Success evaluation: the scratch
// buffers for the interval enumeration and the memo table. It is built fresh
// on every call and never shared, so distinct evaluations can run on
// independent goroutines.
type solver struct {
	deckSize  int
	reqs      []Requirement
	deadlines []int // distinct unmet deadlines, ascending
	counts    []int // cumulative copies in hand per type, mutated in place
	memo      map[uint64]float64
	packable  bool
}

// Success returns the probability of meeting every requirement by its
// deadline, starting from an opening hand holding hand[i] copies of each
// type. Already-satisfied configurations return 1; a turn-0 requirement not
// in hand returns 0.
func Success(deckSize int, reqs []Requirement, hand []int) float64 {
	unmetDeadlines := map[int]bool{}
	for i, r := range reqs {
		if hand[i] < r.Required {
			unmetDeadlines[r.ByTurn] = true
		}
	}
	if len(unmetDeadlines) == 0 {
		return 1
	}
	deadlines := make([]int, 0, len(unmetDeadlines))
	for t := range unmetDeadlines {
		deadlines = append(deadlines, t)
	}
	sort.Ints(deadlines)
	if deadlines[0] <= 0 {
		// A turn-0 requirement that the opening hand missed is unmeetable.
		return 0
	}

	s := &solver{
		deckSize:  deckSize,
		reqs:      reqs,
		deadlines: deadlines,
		counts:    append([]int(nil), hand...),
		memo:      map[uint64]float64{},
		packable:  len(reqs) <= maxPackedTypes,
	}
	return s.solve(0)
}

// key packs (deadline step, cumulative count vector) into a uint64. The same
// intermediate state is reachable through different draw orderings, so the
// memo hit rate matters in the hot path.
func (s *solver) key(step int) uint64 {
	k := uint64(step)
	for _, c := range s.counts {
		k = k<<8 | uint64(c&0xff)
	}
	return k
}

func (s *solver) solve(step int) float64 {
	if step == len(s.deadlines) {
		return 1
	}
	var k uint64
	if s.packable {
		k = s.key(step)
		if v, ok := s.memo[k]; ok {
			return v
		}
	}

	target := s.deadlines[step]
	prev := 0
	if step > 0 {
		prev = s.deadlines[step-1]
	}
	interval := target - prev
	if interval <= 0 {
		// Malformed deadline ordering; treat the branch as dead.
		return 0
	}

	// Deck state entering this interval: one card has left the library per
	// turn already played, on top of the opening hand.
	deckLeft := s.deckSize - HandSize - prev
	remaining := make([]int, len(s.reqs))
	for i, r := range s.reqs {
		remaining[i] = r.Count - s.counts[i]
	}

	drawn := make([]int, len(s.reqs))
	p := s.enumerate(step, target, interval, deckLeft, remaining, drawn, 0, 0)

	if s.packable {
		s.memo[k] = p
	}
	return p
}

// enumerate walks every way to split the interval's draws across the tracked
// types, weights each split by its exact draw probability, keeps only splits
// that satisfy every requirement due at this step's target turn, and recurses
// into the next deadline step.
func (s *solver) enumerate(step, target, interval, deckLeft int, remaining, drawn []int, idx, used int) float64 {
	if idx == len(s.reqs) {
		for i, r := range s.reqs {
			if r.ByTurn == target && s.counts[i]+drawn[i] < r.Required {
				return 0
			}
		}
		weight := hypergeom.Prob(deckLeft, remaining, interval, drawn)
		if weight == 0 {
			return 0
		}
		for i := range s.counts {
			s.counts[i] += drawn[i]
		}
		p := weight * s.solve(step+1)
		for i := range s.counts {
			s.counts[i] -= drawn[i]
		}
		return p
	}
	sum := 0.0
	for d := 0; d <= min(remaining[idx], interval-used); d++ {
		drawn[idx] = d
		sum += s.enumerate(step, target, interval, deckLeft, remaining, drawn, idx+1, used+d)
	}
	drawn[idx] = 0
	return sum
}
