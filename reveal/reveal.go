// Package reveal implements the illustrative "sample reveal" feature: it
// replays shuffled decks against a computed strategy so a user can watch the
// keep/mulligan recommendations play out on concrete hands. The strategy
// result is treated strictly as a read-only oracle; nothing here feeds back
// into the exact engine.
package reveal

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"

	"github.com/pmarche/keeper/mulligan"
	"github.com/pmarche/keeper/stats"
)

// Game records one simulated game: how many mulligans were taken, the kept
// hand's per-type counts after bottoming, and whether every requirement was
// met on time. A game that mulligans through every step is never kept.
type Game struct {
	Mulligans int   `json:"mulligans" yaml:"mulligans"`
	Hand      []int `json:"hand" yaml:"hand,flow"`
	Kept      bool  `json:"kept" yaml:"kept"`
	Success   bool  `json:"success" yaml:"success"`
}

// Revealer simulates games against one deck and its strategy result.
type Revealer struct {
	sync.Mutex

	deck    mulligan.Deck
	success map[string]float64 // composition -> exact success probability

	rng *frand.RNG

	successStats stats.Sample
	mullCounts   []float64
	logStream    io.Writer
}

func New(deck mulligan.Deck, res *mulligan.Result) *Revealer {
	success := make(map[string]float64, len(res.Entries))
	for _, e := range res.Entries {
		success[compositionKey(e.Counts)] = e.SuccessProb
	}
	return &Revealer{
		deck:    deck,
		success: success,
		rng:     frand.New(),
	}
}

// SetLogStream directs a yaml record of every simulated game to w.
func (r *Revealer) SetLogStream(w io.Writer) {
	r.logStream = w
}

func compositionKey(counts []int) string {
	b := make([]byte, len(counts))
	for i, c := range counts {
		b[i] = byte(c)
	}
	return string(b)
}

// Reveal plays n games and returns their records. Aggregate statistics
// accumulate across calls.
func (r *Revealer) Reveal(n int) []Game {
	r.Lock()
	defer r.Unlock()

	games := make([]Game, 0, n)
	for i := 0; i < n; i++ {
		g := r.playGame()
		games = append(games, g)
		if g.Success {
			r.successStats.Push(1)
		} else {
			r.successStats.Push(0)
		}
		r.mullCounts = append(r.mullCounts, float64(g.Mulligans))
	}
	if r.logStream != nil {
		enc := yaml.NewEncoder(r.logStream)
		if err := enc.Encode(games); err != nil {
			log.Err(err).Msg("writing reveal log")
		}
		enc.Close()
	}
	return games
}

// ObservedSuccess returns the sample success rate with a two-sided normal
// confidence interval at the given percentage.
func (r *Revealer) ObservedSuccess(interval float64) (mean, lo, hi float64) {
	r.Lock()
	defer r.Unlock()
	mean = r.successStats.Mean()
	lo, hi = r.successStats.ConfidenceInterval(interval)
	return mean, lo, hi
}

// Games reports how many games have been simulated so far.
func (r *Revealer) Games() int {
	r.Lock()
	defer r.Unlock()
	return r.successStats.Iterations()
}

// MulliganCounts returns one mulligan count per simulated game, for
// histogramming.
func (r *Revealer) MulliganCounts() []float64 {
	r.Lock()
	defer r.Unlock()
	out := make([]float64, len(r.mullCounts))
	copy(out, r.mullCounts)
	return out
}

// playGame runs one full game: London mulligans until a hand is kept (or
// every decision step is exhausted), bottoming, then drawing out to the last
// deadline.
func (r *Revealer) playGame() Game {
	types := r.deck.Types
	for step := 0; step < mulligan.MaxSteps; step++ {
		library := r.shuffledLibrary()
		hand := make([]int, len(types))
		for i := 0; i < mulligan.HandSize && i < len(library); i++ {
			if t := library[i]; t >= 0 {
				hand[t]++
			}
		}

		if r.success[compositionKey(hand)] < r.deck.Confidence {
			continue
		}

		r.bottom(hand, step)
		rest := library[min(mulligan.HandSize, len(library)):]
		return Game{
			Mulligans: step,
			Hand:      hand,
			Kept:      true,
			Success:   r.playOut(hand, rest),
		}
	}
	return Game{Mulligans: mulligan.MaxSteps, Hand: make([]int, len(types))}
}

// shuffledLibrary builds the physical deck as type indexes (-1 for the
// untracked remainder) and shuffles it.
func (r *Revealer) shuffledLibrary() []int {
	library := make([]int, 0, r.deck.Size)
	for i, t := range r.deck.Types {
		for c := 0; c < t.Count; c++ {
			library = append(library, i)
		}
	}
	for len(library) < r.deck.Size {
		library = append(library, -1)
	}
	r.rng.Shuffle(len(library), func(i, j int) {
		library[i], library[j] = library[j], library[i]
	})
	return library
}

// bottom removes the cards a step-N keep owes to the bottom of the library,
// preferring untracked cards and then the type with the most surplus over
// its requirement. hand is mutated in place; untracked hand cards are
// implicit, so the hand gives up (HandSize - tracked) of them before
// touching tracked types.
func (r *Revealer) bottom(hand []int, step int) {
	owe := mulliganDebt(step, r.deck.FreeMulligan)
	tracked := 0
	for _, c := range hand {
		tracked += c
	}
	untracked := mulligan.HandSize - tracked
	for owe > 0 {
		if untracked > 0 {
			untracked--
			owe--
			continue
		}
		// All that's left is tracked cards; shed from the type with the
		// largest surplus over its requirement, falling back to the
		// largest holding.
		best := -1
		bestSurplus := -1 << 30
		for i, c := range hand {
			if c == 0 {
				continue
			}
			surplus := c - r.deck.Types[i].Required
			if surplus > bestSurplus {
				best = i
				bestSurplus = surplus
			}
		}
		if best < 0 {
			break
		}
		hand[best]--
		owe--
	}
}

func mulliganDebt(step int, freeMulligan bool) int {
	if step == 0 {
		return 0
	}
	if freeMulligan {
		return step - 1
	}
	return step
}

// playOut draws a card per turn up to the last deadline and checks every
// requirement at its deadline. counts is the kept hand after bottoming;
// library is the undrawn remainder in draw order (bottomed cards are out of
// reach for any realistic deadline, so they are simply omitted).
func (r *Revealer) playOut(counts []int, library []int) bool {
	maxTurn := 0
	for _, t := range r.deck.Types {
		if t.ByTurn > maxTurn {
			maxTurn = t.ByTurn
		}
	}
	held := append([]int(nil), counts...)
	for turn := 0; turn <= maxTurn; turn++ {
		if turn > 0 {
			if len(library) == 0 {
				return false
			}
			if t := library[0]; t >= 0 {
				held[t]++
			}
			library = library[1:]
		}
		for i, req := range r.deck.Types {
			if req.ByTurn == turn && held[i] < req.Required {
				return false
			}
		}
	}
	return true
}

// Summary renders a short human-readable aggregate.
func (r *Revealer) Summary() string {
	mean, lo, hi := r.ObservedSuccess(95)
	return fmt.Sprintf("%d games, observed success %.4f (95%% CI %.4f to %.4f)",
		r.Games(), mean, lo, hi)
}
