// Package mulligan enumerates the opening-hand space of a multi-type deck
// and solves the keep/mulligan decision problem over it: exhaustive exact
// probabilities per hand composition, then backward induction over the seven
// London-mulligan decision steps.
package mulligan

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/pmarche/keeper/deadline"
)

// HandSize is the London-mulligan fresh-hand size; every attempt draws this
// many cards before bottoming.
const HandSize = deadline.HandSize

// MaxSteps is the number of decision steps: the opening hand plus six
// mulligans. Step indexes run 0..MaxSteps-1.
const MaxSteps = 7

// Deck is the full context for one strategy computation. It is treated as
// immutable for the duration of a call; the engine never validates or
// repairs it (an overcommitted deck simply produces zero-probability draws).
type Deck struct {
	// Size includes the opening hand.
	Size  int                    `yaml:"size" json:"size"`
	Types []deadline.Requirement `yaml:"types" json:"types"`

	// Penalty is the fractional success-rate decay applied per mulligan,
	// modeling the cost of the smaller kept hand.
	Penalty float64 `yaml:"penalty" json:"penalty"`
	// FreeMulligan makes the first mulligan cost nothing.
	FreeMulligan bool `yaml:"free_mulligan" json:"freeMulligan"`
	// Confidence is the minimum penalized success probability a hand needs
	// to be kept.
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

// Hash returns a stable digest of every field that affects the strategy
// result. It exists for result caching only and plays no part in the math.
func (d Deck) Hash() uint64 {
	h := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	put(uint64(d.Size))
	put(math.Float64bits(d.Penalty))
	put(math.Float64bits(d.Confidence))
	if d.FreeMulligan {
		put(1)
	} else {
		put(0)
	}
	for _, t := range d.Types {
		put(uint64(t.Count))
		put(uint64(t.Required))
		put(uint64(t.ByTurn))
	}
	return h.Sum64()
}

// String renders a compact one-line summary, e.g.
// "60 cards, 3 types [4/1@1 2/1@3 24/3@4], penalty 0.20, confidence 0.65".
func (d Deck) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d cards, %d types [", d.Size, len(d.Types))
	for i, t := range d.Types {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d/%d@%d", t.Count, t.Required, t.ByTurn)
	}
	fmt.Fprintf(&sb, "], penalty %.2f, confidence %.2f", d.Penalty, d.Confidence)
	if d.FreeMulligan {
		sb.WriteString(", free mulligan")
	}
	return sb.String()
}

// Overcommitted reports whether the tracked populations exceed the deck.
// The engine still computes a mathematically consistent answer for such
// decks; callers use this to warn the user instead.
func (d Deck) Overcommitted() bool {
	total := 0
	for _, t := range d.Types {
		total += t.Count
	}
	return total > d.Size
}
