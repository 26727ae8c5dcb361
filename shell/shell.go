// Package shell is the interactive front end for the mulligan engine: it
// owns the current deck context, runs analyses through the bounded result
// cache, and renders strategy tables. The engine packages stay pure; every
// stateful concern (readline, history db, sample reveals) lives here.
package shell

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/pmarche/keeper/cache"
	"github.com/pmarche/keeper/config"
	"github.com/pmarche/keeper/history"
	"github.com/pmarche/keeper/mulligan"
	"github.com/pmarche/keeper/reveal"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong option syntax")
	errNoDeck            = errors.New("no deck loaded; use load or set")
	errNoResult          = errors.New("no strategy computed yet; run solve first")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields tokenizes a command line, honoring quoting, into the command
// word, positional args, and trailing -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	lastWasOption := false
	lastOption := ""
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "-") {
			lastWasOption = true
			lastOption = field[1:]
			continue
		}
		if lastWasOption {
			options[lastOption] = field
			lastWasOption = false
		} else {
			args = append(args, field)
		}
	}
	if lastWasOption {
		// An option without a value.
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	deck     mulligan.Deck
	haveDeck bool

	results  *cache.ResultCache
	last     *mulligan.Result
	revealer *reveal.Revealer

	hist *history.Store
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mkeeper>\033[0m ",
		HistoryFile:     "/tmp/readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := &ShellController{
		l:       l,
		cfg:     cfg,
		results: cache.New(cfg.CacheSize()),
	}
	hist, err := history.Open(cfg.HistoryPath())
	if err != nil {
		log.Warn().Err(err).Msg("history disabled for this session")
	} else {
		sc.hist = hist
	}
	return sc
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	showMessage("Error: "+err.Error(), sc.l.Stderr())
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// execute dispatches one parsed command.
func (sc *ShellController) execute(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "load":
		return sc.load(cmd)
	case "show":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "type":
		return sc.typecmd(cmd)
	case "solve":
		return sc.solve(cmd)
	case "odds":
		return sc.odds(cmd)
	case "reveal":
		return sc.reveal(cmd)
	case "hist":
		return sc.histogram(cmd)
	case "history":
		return sc.historycmd(cmd)
	case "script":
		return sc.script(cmd)
	case "help":
		return usage()
	default:
		return nil, errors.New("command not recognized: " + cmd.cmd)
	}
}

// Execute parses and runs one raw command line. It exists for the lua driver
// and for tests; the interactive loop goes through it too.
func (sc *ShellController) Execute(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	return sc.execute(cmd)
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- os.Interrupt
				break
			}
			continue
		} else if err == io.EOF {
			sig <- os.Interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			sig <- os.Interrupt
			break
		}
		resp, err := sc.Execute(line)
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
	if sc.hist != nil {
		sc.hist.Close()
	}
	log.Debug().Msg("exiting shell loop")
}
