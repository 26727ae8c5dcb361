package mulligan

import "math"

// StepStats aggregates one decision step of the backward induction: how
// likely a freshly-drawn hand is to be kept at this step, the average
// penalized success rate among kept hands, and the step's expected value.
type StepStats struct {
	KeepProb      float64 `json:"keepProb"`
	SuccessIfKept float64 `json:"successIfKept"`
	EV            float64 `json:"ev"`
}

// penaltyFactor is the number of effective mulligans priced into step i.
// The opening hand is free; with a free first mulligan every later step is
// discounted by one.
func penaltyFactor(step int, freeMulligan bool) int {
	if step == 0 {
		return 0
	}
	if freeMulligan {
		return step - 1
	}
	return step
}

// optimize runs the backward induction over steps MaxSteps-1 down to 0.
// Mulliganing past the last step is worth nothing, so EV[MaxSteps] = 0.
// The Keep flag on each entry is set from the step-0 decision, which is the
// externally visible recommendation. Returns the per-step statistics in
// step order; both return values are empty/zero for an empty hand space.
func optimize(entries []Entry, penalty, confidence float64, freeMulligan bool) ([]StepStats, float64) {
	if len(entries) == 0 {
		return nil, 0
	}
	steps := make([]StepStats, MaxSteps)
	evNext := 0.0
	for i := MaxSteps - 1; i >= 0; i-- {
		k := math.Pow(1-penalty, float64(penaltyFactor(i, freeMulligan)))
		threshold := confidence * k

		var ev, keepProb, keptSuccess float64
		for idx := range entries {
			e := &entries[idx]
			handSuccess := e.SuccessProb * k
			if handSuccess >= threshold {
				ev += e.HandProb * handSuccess
				keepProb += e.HandProb
				keptSuccess += e.HandProb * handSuccess
				if i == 0 {
					e.Keep = true
				}
			} else {
				ev += e.HandProb * evNext
				if i == 0 {
					e.Keep = false
				}
			}
		}
		steps[i] = StepStats{
			KeepProb: keepProb,
			EV:       ev,
		}
		if keepProb > 0 {
			steps[i].SuccessIfKept = keptSuccess / keepProb
		}
		evNext = ev
	}
	return steps, steps[0].EV
}
