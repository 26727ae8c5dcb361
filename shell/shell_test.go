package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmarche/keeper/cache"
	"github.com/pmarche/keeper/config"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"solve -log /path/to/log.txt",
			&shellcmd{"solve", nil, map[string]string{"log": "/path/to/log.txt"}},
			nil},
		{"type rm 2",
			&shellcmd{"type", []string{"rm", "2"}, map[string]string{}},
			nil},
		{"load 'my deck.yaml' -verbose on",
			&shellcmd{"load",
				[]string{"my deck.yaml"},
				map[string]string{"verbose": "on"}},
			nil,
		},
		{"solve quick -log",
			nil, errWrongOptionSyntax},
	}
	for _, tc := range cases {
		cmd, err := extractFields(tc.line)
		is.Equal(cmd, tc.expCmd)
		is.Equal(err, tc.expErr)
	}
}

func testController(t *testing.T) *ShellController {
	t.Helper()
	cfg := config.New()
	require.NoError(t, cfg.Load(nil))
	return &ShellController{
		cfg:     cfg,
		results: cache.New(8),
	}
}

func TestSetAndSolveFlow(t *testing.T) {
	sc := testController(t)

	_, err := sc.Execute("solve")
	assert.ErrorIs(t, err, errNoDeck)

	for _, line := range []string{
		"set size 60",
		"set penalty 0.2",
		"set confidence 0.4",
		"type add 8 1 1",
		"type add 24 2 0",
	} {
		_, err := sc.Execute(line)
		require.NoError(t, err, line)
	}

	resp, err := sc.Execute("solve")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "expected success")
	assert.Contains(t, resp.Message(), "most likely opening hands")
	require.NotNil(t, sc.last)

	// Solving again with an unchanged deck hits the cache.
	again, err := sc.Execute("solve")
	require.NoError(t, err)
	assert.Equal(t, resp.Message(), again.Message())
	assert.Equal(t, 1, sc.results.Len())
}

func TestTypeEditing(t *testing.T) {
	sc := testController(t)
	_, err := sc.Execute("set size 40")
	require.NoError(t, err)

	_, err = sc.Execute("type add 4 1 2")
	require.NoError(t, err)
	_, err = sc.Execute("type add 17 2 0")
	require.NoError(t, err)
	assert.Len(t, sc.deck.Types, 2)

	_, err = sc.Execute("type set 0 5 1 3")
	require.NoError(t, err)
	assert.Equal(t, 5, sc.deck.Types[0].Count)
	assert.Equal(t, 3, sc.deck.Types[0].ByTurn)

	_, err = sc.Execute("type rm 0")
	require.NoError(t, err)
	assert.Len(t, sc.deck.Types, 1)
	assert.Equal(t, 17, sc.deck.Types[0].Count)

	_, err = sc.Execute("type rm 5")
	assert.Error(t, err)
	_, err = sc.Execute("type add 4 1")
	assert.Error(t, err)
	_, err = sc.Execute("type add 4 -1 2")
	assert.Error(t, err)
}

func TestSetValidation(t *testing.T) {
	sc := testController(t)
	_, err := sc.Execute("set size sixty")
	assert.Error(t, err)
	_, err = sc.Execute("set freemulligan maybe")
	assert.Error(t, err)
	_, err = sc.Execute("set nonsense 3")
	assert.Error(t, err)
	_, err = sc.Execute("set penalty")
	assert.Error(t, err)
}

func TestOvercommittedWarning(t *testing.T) {
	sc := testController(t)
	_, err := sc.Execute("set size 10")
	require.NoError(t, err)
	resp, err := sc.Execute("type add 8 1 1")
	require.NoError(t, err)
	assert.NotContains(t, resp.Message(), "warning")
	resp, err = sc.Execute("type add 8 1 2")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "warning")

	resp, err = sc.Execute("set penalty 0.1")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "warning")
}

func TestOddsCommand(t *testing.T) {
	sc := testController(t)
	for _, line := range []string{"set size 10", "type add 1 1 0"} {
		_, err := sc.Execute(line)
		require.NoError(t, err)
	}
	resp, err := sc.Execute("odds")
	require.NoError(t, err)
	// At least one of a singleton in 7 of 10 cards: 0.7 exactly.
	assert.Contains(t, resp.Message(), "0.700000")

	resp, err = sc.Execute("odds 10")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "1.000000")
}

func TestRevealRequiresSolve(t *testing.T) {
	sc := testController(t)
	_, err := sc.Execute("set size 40")
	require.NoError(t, err)
	_, err = sc.Execute("type add 40 1 0")
	require.NoError(t, err)

	_, err = sc.Execute("reveal")
	assert.ErrorIs(t, err, errNoResult)

	_, err = sc.Execute("solve")
	require.NoError(t, err)
	resp, err := sc.Execute("reveal 5")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "5 games")
	assert.Contains(t, resp.Message(), "hit every deadline")
}

func TestLoadDeckFile(t *testing.T) {
	sc := testController(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
size: 60
penalty: 0.2
confidence: 0.5
types:
  - count: 8
    required: 1
    by_turn: 1
  - count: 24
    required: 2
    by_turn: 0
`), 0o644))

	resp, err := sc.Execute("load " + path)
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "60 cards")
	assert.Len(t, sc.deck.Types, 2)
	assert.Equal(t, 0.2, sc.deck.Penalty)

	_, err = sc.Execute("load " + filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("types: 12"), 0o644))
	_, err = sc.Execute("load " + bad)
	assert.Error(t, err)
}

func TestScriptSweep(t *testing.T) {
	sc := testController(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "sweep.lua")
	require.NoError(t, os.WriteFile(script, []byte(`
keeper_set("size 60")
keeper_type("add 20 1 1")
for _, c in ipairs({"0.2", "0.5"}) do
  keeper_set("confidence " .. c)
  keeper_solve("")
end
`), 0o644))

	_, err := sc.Execute("script " + script)
	require.NoError(t, err)
	assert.Equal(t, 0.5, sc.deck.Confidence)
	assert.Equal(t, 2, sc.results.Len())
}

func TestUnknownCommand(t *testing.T) {
	sc := testController(t)
	_, err := sc.Execute("frobnicate")
	assert.Error(t, err)
}

func TestHelp(t *testing.T) {
	sc := testController(t)
	resp, err := sc.Execute("help")
	require.NoError(t, err)
	assert.Contains(t, resp.Message(), "solve")
	assert.Contains(t, resp.Message(), "reveal")
}
