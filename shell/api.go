package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/pmarche/keeper/deadline"
	"github.com/pmarche/keeper/hypergeom"
	"github.com/pmarche/keeper/mulligan"
	"github.com/pmarche/keeper/reveal"
)

// maxEntryRows caps the strategy table; the long tail of sub-permille hands
// adds nothing to the display.
const maxEntryRows = 20

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (r *Response) Message() string {
	return r.message
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need a deck file path")
	}
	deck, err := loadDeckFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.setDeck(deck)
	out := "loaded: " + deck.String()
	if deck.Overcommitted() {
		out += "\nwarning: tracked counts exceed the deck size; results will not be game-accurate"
	}
	return msg(out), nil
}

// setDeck replaces the working deck and invalidates anything derived from
// the previous one.
func (sc *ShellController) setDeck(deck mulligan.Deck) {
	sc.deck = deck
	sc.haveDeck = true
	sc.last = nil
	sc.revealer = nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeck {
		return nil, errNoDeck
	}
	var sb strings.Builder
	sb.WriteString(sc.deck.String())
	sb.WriteString("\n")
	table := tablewriter.NewWriter(&sb)
	table.Header("#", "Count", "Required", "By turn")
	for i, t := range sc.deck.Types {
		table.Append(
			strconv.Itoa(i),
			strconv.Itoa(t.Count),
			strconv.Itoa(t.Required),
			strconv.Itoa(t.ByTurn),
		)
	}
	table.Render()
	return msg(sb.String()), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("set needs a field and a value")
	}
	deck := sc.deck
	field, value := cmd.args[0], cmd.args[1]
	switch field {
	case "size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		deck.Size = n
	case "penalty":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		deck.Penalty = f
	case "confidence":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		deck.Confidence = f
	case "freemulligan":
		switch value {
		case "on", "true":
			deck.FreeMulligan = true
		case "off", "false":
			deck.FreeMulligan = false
		default:
			return nil, errors.New("freemulligan takes on or off")
		}
	default:
		return nil, errors.New("unknown field: " + field)
	}
	sc.setDeck(deck)
	if deck.Overcommitted() {
		return msg(deck.String() + "\nwarning: tracked counts exceed the deck size"), nil
	}
	return msg(deck.String()), nil
}

func (sc *ShellController) typecmd(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("type needs a subcommand: add, rm, set")
	}
	deck := sc.deck
	deck.Types = append([]deadline.Requirement(nil), deck.Types...)
	switch cmd.args[0] {
	case "add":
		req, err := parseRequirement(cmd.args[1:])
		if err != nil {
			return nil, err
		}
		deck.Types = append(deck.Types, req)
	case "rm":
		if len(cmd.args) < 2 {
			return nil, errors.New("type rm needs an index")
		}
		idx, err := strconv.Atoi(cmd.args[1])
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(deck.Types) {
			return nil, errors.New("type index out of range")
		}
		deck.Types = append(deck.Types[:idx], deck.Types[idx+1:]...)
	case "set":
		if len(cmd.args) < 2 {
			return nil, errors.New("type set needs an index")
		}
		idx, err := strconv.Atoi(cmd.args[1])
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(deck.Types) {
			return nil, errors.New("type index out of range")
		}
		req, err := parseRequirement(cmd.args[2:])
		if err != nil {
			return nil, err
		}
		deck.Types[idx] = req
	default:
		return nil, errors.New("unknown type subcommand: " + cmd.args[0])
	}
	sc.setDeck(deck)
	if deck.Overcommitted() {
		return msg(deck.String() + "\nwarning: tracked counts exceed the deck size"), nil
	}
	return msg(deck.String()), nil
}

func parseRequirement(args []string) (deadline.Requirement, error) {
	var req deadline.Requirement
	if len(args) != 3 {
		return req, errors.New("expected: <count> <required> <byturn>")
	}
	vals := make([]int, 3)
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return req, err
		}
		if n < 0 {
			return req, errors.New("type values must be non-negative")
		}
		vals[i] = n
	}
	return deadline.Requirement{Count: vals[0], Required: vals[1], ByTurn: vals[2]}, nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeck {
		return nil, errNoDeck
	}
	res := sc.results.Analyze(sc.deck)
	sc.last = res
	sc.revealer = nil
	if sc.hist != nil {
		if err := sc.hist.Record(sc.deck, res); err != nil {
			log.Warn().Err(err).Msg("recording analysis history")
		}
	}
	return msg(renderResult(sc.deck, res)), nil
}

func (sc *ShellController) odds(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeck {
		return nil, errNoDeck
	}
	draw := mulligan.HandSize
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		draw = n
	}
	typeCounts := make([]int, len(sc.deck.Types))
	minDrawn := make([]int, len(sc.deck.Types))
	for i, t := range sc.deck.Types {
		typeCounts[i] = t.Count
		minDrawn[i] = t.Required
	}
	p := hypergeom.Cumulative(sc.deck.Size, typeCounts, draw, minDrawn)
	return msg(fmt.Sprintf(
		"P(at least the required count of every type in %d cards) = %.6f", draw, p)), nil
}

func (sc *ShellController) revealer4deck() (*reveal.Revealer, error) {
	if sc.last == nil {
		return nil, errNoResult
	}
	if sc.revealer == nil {
		sc.revealer = reveal.New(sc.deck, sc.last)
	}
	return sc.revealer, nil
}

func (sc *ShellController) reveal(cmd *shellcmd) (*Response, error) {
	r, err := sc.revealer4deck()
	if err != nil {
		return nil, err
	}
	n := sc.cfg.RevealGames()
	if len(cmd.args) > 0 {
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	games := r.Reveal(n)
	var sb strings.Builder
	for _, g := range games {
		if !g.Kept {
			fmt.Fprintf(&sb, "mulled out after %d attempts\n", g.Mulligans)
			continue
		}
		outcome := "missed a deadline"
		if g.Success {
			outcome = "hit every deadline"
		}
		fmt.Fprintf(&sb, "kept at %d mulligans, hand %v: %s\n", g.Mulligans, g.Hand, outcome)
	}
	sb.WriteString(r.Summary())
	return msg(sb.String()), nil
}

func (sc *ShellController) histogram(cmd *shellcmd) (*Response, error) {
	r, err := sc.revealer4deck()
	if err != nil {
		return nil, err
	}
	n := 500
	if len(cmd.args) > 0 {
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	r.Reveal(n)
	counts := r.MulliganCounts()
	if len(counts) == 0 {
		return msg("no games simulated yet"), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "mulligans taken across %d games:\n", len(counts))
	hist := histogram.Hist(mulligan.MaxSteps+1, counts)
	if err := histogram.Fprint(&sb, hist, histogram.Linear(40)); err != nil {
		return nil, err
	}
	sb.WriteString(r.Summary())
	return msg(sb.String()), nil
}

func (sc *ShellController) historycmd(cmd *shellcmd) (*Response, error) {
	if sc.hist == nil {
		return nil, errors.New("history is disabled for this session")
	}
	limit := 20
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		limit = n
	}
	rows, err := sc.hist.Recent(limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return msg("no stored analyses"), nil
	}
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.Header("When", "Deck", "E[success]", "Keep%", "Avg mulls")
	for _, r := range rows {
		table.Append(
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Deck,
			fmt.Sprintf("%.4f", r.ExpectedSuccess),
			fmt.Sprintf("%.1f%%", r.KeepProb*100),
			fmt.Sprintf("%.2f", r.AvgMulligans),
		)
	}
	table.Render()
	return msg(sb.String()), nil
}

// renderResult builds the full solve report: headline numbers, the per-step
// backward-induction table, the marginal card benefits, and the most likely
// opening hands with their keep recommendation.
func renderResult(deck mulligan.Deck, res *mulligan.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "expected success:    %.4f\n", res.ExpectedSuccess)
	fmt.Fprintf(&sb, "theoretical ceiling: %.4f (no mulligan penalty)\n", res.UnpenalizedSuccess)
	fmt.Fprintf(&sb, "baseline (no mull):  %.4f\n", res.BaselineSuccess)
	fmt.Fprintf(&sb, "keep opening hand:   %.1f%% of the time\n", res.KeepProb*100)
	fmt.Fprintf(&sb, "avg mulligans:       %.2f\n", res.AvgMulligans)
	fmt.Fprintf(&sb, "expected kept cards: %.2f\n\n", res.ExpectedCards)

	steps := tablewriter.NewWriter(&sb)
	steps.Header("Step", "Keep%", "Success if kept", "EV")
	for i, s := range res.Steps {
		steps.Append(
			strconv.Itoa(i),
			fmt.Sprintf("%.1f%%", s.KeepProb*100),
			fmt.Sprintf("%.4f", s.SuccessIfKept),
			fmt.Sprintf("%.4f", s.EV),
		)
	}
	steps.Render()

	if len(res.Marginal) > 0 {
		sb.WriteString("\nmarginal benefit of one more copy:\n")
		marg := tablewriter.NewWriter(&sb)
		marg.Header("Type", "ΔE[success]", "ΔBaseline")
		for _, m := range res.Marginal {
			marg.Append(
				strconv.Itoa(m.Type),
				fmt.Sprintf("%+.5f", m.ExpectedDelta),
				fmt.Sprintf("%+.5f", m.BaselineDelta),
			)
		}
		marg.Render()
	}

	entries := append([]mulligan.Entry(nil), res.Entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].HandProb > entries[j].HandProb
	})
	if len(entries) > maxEntryRows {
		entries = entries[:maxEntryRows]
	}
	fmt.Fprintf(&sb, "\nmost likely opening hands (%d of %d):\n", len(entries), len(res.Entries))
	hands := tablewriter.NewWriter(&sb)
	hands.Header("Hand", "P(hand)", "P(success)", "Keep?")
	for _, e := range entries {
		keep := "mulligan"
		if e.Keep {
			keep = "keep"
		}
		hands.Append(
			fmt.Sprintf("%v", e.Counts),
			fmt.Sprintf("%.4f", e.HandProb),
			fmt.Sprintf("%.4f", e.SuccessProb),
			keep,
		)
	}
	hands.Render()
	return sb.String()
}
