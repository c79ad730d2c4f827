package arena

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergev/wormscript/program"
	"github.com/sergev/wormscript/runtime"
)

func newTestGame(t *testing.T, cfg *Config, scripts ...string) *Game {
	t.Helper()
	w := NewWorld(cfg)
	names := []string{"a", "b", "c"}
	for i := range scripts {
		addWorm(t, w, names[i], names[i], float64(5+10*i), 0.5, 0)
	}
	g, err := NewGame(w)
	require.NoError(t, err)
	for i, src := range scripts {
		if src != "" {
			require.NoError(t, g.SetScript(w.Worms()[i], src))
		}
	}
	return g
}

func TestGameTurnOrder(t *testing.T) {
	g := newTestGame(t, NewConfig(), "move;", "move;")

	r, err := g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, "a", r.Worm)
	assert.Equal(t, 1, r.Actions)
	assert.Equal(t, program.Completed, r.State)
	assert.Equal(t, "b", g.Current().Name)

	r, err = g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, "b", r.Worm)
	assert.Equal(t, 1, r.Round)
	assert.Equal(t, "a", g.Current().Name)
	assert.Equal(t, 2, g.Round())
}

func TestGameProgramPersistsAcrossTurns(t *testing.T) {
	g := newTestGame(t, NewConfig(), "move; skip; move;", "")
	a := g.World().Worms()[0]

	r, err := g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Actions)
	assert.Equal(t, program.Running, r.State)
	assert.Equal(t, 99.0, r.Points)

	_, err = g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.ActionPoints, "points restored at the start of a turn")

	r, err = g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Actions)
	assert.Equal(t, program.Completed, r.State)
	assert.InDelta(t, 6.0, a.X, 1e-9)

	// A completed program starts over on the next turn.
	_, err = g.PlayTurn()
	require.NoError(t, err)
	r, err = g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Actions)
	assert.Equal(t, program.Running, r.State)
}

func TestGameFailingActionEndsTurn(t *testing.T) {
	g := newTestGame(t, NewConfig(), "while (true) { turn(1); }", "")

	r, err := g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, 10, r.Actions)
	assert.Equal(t, program.Failed, r.State)
	assert.ErrorIs(t, r.Err, runtime.ErrActionPoints)
	assert.Equal(t, "b", g.Current().Name)
}

func TestGameTruncatesEndlessTurns(t *testing.T) {
	cfg := NewConfig()
	cfg.Game.MaxActionsPerTurn = 5
	g := newTestGame(t, cfg, "while (true) { selectNextWeapon; }", "")

	r, err := g.PlayTurn()
	require.NoError(t, err)
	assert.True(t, r.Truncated)
	assert.Equal(t, 5, r.Actions)
	assert.Equal(t, program.Running, r.State)
	assert.Equal(t, "b", g.Current().Name)
}

func TestGameRunUntilWinner(t *testing.T) {
	g := newTestGame(t, NewConfig(), "while (true) { shoot(0); }", "")

	reports, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, program.Failed, reports[0].State)
	assert.False(t, g.World().Worms()[1].Alive())

	team, ok := g.Winner()
	assert.True(t, ok)
	assert.Equal(t, "a", team)
	assert.True(t, g.Over())

	_, err = g.PlayTurn()
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestGameRoundLimit(t *testing.T) {
	cfg := NewConfig()
	cfg.Game.MaxRounds = 2
	g := newTestGame(t, cfg, "", "")

	reports, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 4)
	assert.Equal(t, 3, g.Round())
	_, ok := g.Winner()
	assert.False(t, ok)
}

func TestGameRunHonorsContext(t *testing.T) {
	g := newTestGame(t, NewConfig(), "", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := g.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestGameOutputAndScripts(t *testing.T) {
	var out bytes.Buffer
	w := NewWorld(NewConfig())
	a := addWorm(t, w, "a", "", 5, 0.5, 0)
	addWorm(t, w, "b", "", 15, 0.5, 0)
	g, err := NewGame(w, WithGameOutput(&out))
	require.NoError(t, err)

	err = g.SetScript(a, "move(1, 2);")
	assert.ErrorContains(t, err, "move expects 0 arguments, got 2")

	require.NoError(t, g.SetScript(a, "print getx(self);"))
	_, err = g.PlayTurn()
	require.NoError(t, err)
	assert.Equal(t, "5\n", out.String())
	assert.True(t, g.Program(a).Done())
}

func TestGameSharesCompiledScripts(t *testing.T) {
	g := newTestGame(t, NewConfig(), "move;", "move;", "turn(1);")
	hits, misses := g.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
	assert.Equal(t, 2, g.Cache().Len())

	a, b := g.World().Worms()[0], g.World().Worms()[1]
	assert.Same(t, a.script.script, b.script.script)
}

func TestNewGameNeedsWorms(t *testing.T) {
	_, err := NewGame(NewWorld(NewConfig()))
	assert.Error(t, err)
}
