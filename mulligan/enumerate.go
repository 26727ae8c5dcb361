package mulligan

import (
	"github.com/pmarche/keeper/deadline"
	"github.com/pmarche/keeper/hypergeom"
)

// Entry is one distinct opening-hand composition: the per-type counts, the
// probability of drawing exactly that composition in the first seven cards,
// the probability the hand goes on to meet every deadline, and the step-0
// keep recommendation filled in by the optimizer.
type Entry struct {
	Counts      []int   `json:"counts"`
	HandProb    float64 `json:"handProb"`
	SuccessProb float64 `json:"successProb"`
	Keep        bool    `json:"keep"`
}

// EnumerateHands generates every reachable opening-hand composition for the
// given populations, together with its exact draw probability and its
// deadline-success probability. Compositions that cannot be drawn are
// dropped. The enumeration is exhaustive; the caller is responsible for
// keeping the type populations small enough to be tractable.
func EnumerateHands(deckSize int, reqs []deadline.Requirement) []Entry {
	if deckSize <= 0 || len(reqs) == 0 {
		return nil
	}
	counts := make([]int, len(reqs))
	typeCounts := make([]int, len(reqs))
	for i, r := range reqs {
		typeCounts[i] = r.Count
	}
	var entries []Entry
	var walk func(idx, remaining int)
	walk = func(idx, remaining int) {
		if idx == len(reqs) {
			handProb := hypergeom.Prob(deckSize, typeCounts, HandSize, counts)
			if handProb == 0 {
				return
			}
			entries = append(entries, Entry{
				Counts:      append([]int(nil), counts...),
				HandProb:    handProb,
				SuccessProb: deadline.Success(deckSize, reqs, counts),
			})
			return
		}
		for c := 0; c <= min(typeCounts[idx], remaining); c++ {
			counts[idx] = c
			walk(idx+1, remaining-c)
		}
		counts[idx] = 0
	}
	walk(0, HandSize)
	return entries
}
