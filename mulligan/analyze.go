package mulligan

import (
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/pmarche/keeper/deadline"
)

// TypeBenefit is the marginal effect of running one more copy of a tracked
// type (holding deck size fixed, i.e. a one-card swap with the untracked
// remainder).
type TypeBenefit struct {
	Type          int     `json:"type"`
	ExpectedDelta float64 `json:"expectedDelta"`
	BaselineDelta float64 `json:"baselineDelta"`
}

// Result is the full output of one strategy computation.
type Result struct {
	Entries []Entry     `json:"entries"`
	Steps   []StepStats `json:"steps"`

	// ExpectedSuccess is the value of playing the optimal keep/mulligan
	// policy from the opening hand.
	ExpectedSuccess float64 `json:"expectedSuccess"`
	// KeepProb is the probability the opening hand is kept.
	KeepProb float64 `json:"keepProb"`
	// SuccessOnKeep is the average penalized success rate of kept opening
	// hands.
	SuccessOnKeep float64 `json:"successOnKeep"`

	// AvgMulligans treats the mulligan count as geometric in KeepProb.
	AvgMulligans float64 `json:"avgMulligans"`
	// ExpectedCards is the expected size of the eventually-kept hand.
	ExpectedCards float64 `json:"expectedCards"`
	// BaselineSuccess is the success rate of never mulliganing at all.
	BaselineSuccess float64 `json:"baselineSuccess"`
	// UnpenalizedSuccess is the policy value with the mulligan penalty
	// turned off: the theoretical ceiling.
	UnpenalizedSuccess float64 `json:"unpenalizedSuccess"`

	Marginal []TypeBenefit `json:"marginal"`
}

// Analyze runs the whole pipeline for one deck: enumerate the hand space,
// optimize the mulligan policy, and derive the summary statistics, including
// a full re-run per tracked type for the marginal card benefit. The re-runs
// are independent computations and execute concurrently.
func Analyze(deck Deck) *Result {
	res := analyzeOnce(deck)

	res.Marginal = make([]TypeBenefit, len(deck.Types))
	var g errgroup.Group
	for i := range deck.Types {
		g.Go(func() error {
			tweaked := deck
			tweaked.Types = append([]deadline.Requirement(nil), deck.Types...)
			tweaked.Types[i].Count++
			alt := analyzeOnce(tweaked)
			res.Marginal[i] = TypeBenefit{
				Type:          i,
				ExpectedDelta: alt.ExpectedSuccess - res.ExpectedSuccess,
				BaselineDelta: alt.BaselineSuccess - res.BaselineSuccess,
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}

// analyzeOnce is the single-deck pipeline without the marginal re-runs.
func analyzeOnce(deck Deck) *Result {
	entries := EnumerateHands(deck.Size, deck.Types)
	steps, ev := optimize(entries, deck.Penalty, deck.Confidence, deck.FreeMulligan)

	res := &Result{
		Entries:         entries,
		Steps:           steps,
		ExpectedSuccess: ev,
		BaselineSuccess: lo.SumBy(entries, func(e Entry) float64 {
			return e.HandProb * e.SuccessProb
		}),
	}
	if len(steps) > 0 {
		res.KeepProb = steps[0].KeepProb
		res.SuccessOnKeep = steps[0].SuccessIfKept
	}
	res.AvgMulligans = avgMulligans(res.KeepProb)
	res.ExpectedCards = expectedCards(steps, deck.FreeMulligan)

	if deck.Penalty > 0 {
		// Rerunning with the penalty off needs its own entry slice so the
		// step-0 Keep flags of the real run survive.
		ceiling := append([]Entry(nil), entries...)
		_, res.UnpenalizedSuccess = optimize(ceiling, 0, deck.Confidence, deck.FreeMulligan)
	} else {
		res.UnpenalizedSuccess = ev
	}
	return res
}

// avgMulligans is the mean of a geometric distribution with success
// probability keepProb: (1-p)/p failures before the first success.
func avgMulligans(keepProb float64) float64 {
	if keepProb <= 0 {
		return 0
	}
	return (1 - keepProb) / keepProb
}

// maxCardLayers caps the expected-kept-cards accumulation; the residual
// probability mass beyond ten mulligans is negligible for any keepable deck.
const maxCardLayers = 10

// expectedCards accumulates layerProb * cards-if-kept across mulligan
// layers, normalizing by the accumulated mass to correct for truncation.
// Layers past the last decision step reuse the final step's keep rate.
func expectedCards(steps []StepStats, freeMulligan bool) float64 {
	if len(steps) == 0 {
		return 0
	}
	reach := 1.0
	total := 0.0
	mass := 0.0
	for layer := 0; layer < maxCardLayers; layer++ {
		keep := steps[min(layer, len(steps)-1)].KeepProb
		kept := reach * keep
		cards := HandSize - penaltyFactor(layer, freeMulligan)
		if cards < 0 {
			cards = 0
		}
		total += kept * float64(cards)
		mass += kept
		reach *= 1 - keep
		if reach < 1e-4 {
			break
		}
	}
	if mass == 0 {
		return 0
	}
	return total / mass
}
