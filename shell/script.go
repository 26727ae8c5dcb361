package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

// The lua environment gets one global per shell command plus the controller
// itself stashed as userdata. Scripts drive the same code paths as the
// interactive loop, so a parameter sweep is just a lua for-loop around
// keeper_set and keeper_solve.

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("keeper_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// luaCommand wraps one shell command line; the lua function's single string
// argument becomes the command's arguments.
func luaCommand(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		lv := L.ToString(1)
		sc := getShell(L)
		line := name
		if lv != "" {
			line += " " + lv
		}
		r, err := sc.Execute(line)
		if err != nil {
			log.Err(err).Str("cmd", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			return 0
		}
		L.Push(lua.LString(r.message))
		return 1
	}
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("keeper_shell", lsc)
	L.SetGlobal("keeper_load", L.NewFunction(luaCommand("load")))
	L.SetGlobal("keeper_set", L.NewFunction(luaCommand("set")))
	L.SetGlobal("keeper_type", L.NewFunction(luaCommand("type")))
	L.SetGlobal("keeper_solve", L.NewFunction(luaCommand("solve")))
	L.SetGlobal("keeper_odds", L.NewFunction(luaCommand("odds")))
	L.SetGlobal("keeper_reveal", L.NewFunction(luaCommand("reveal")))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return nil, nil
}
