package arena

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergev/wormscript/program"
	"github.com/sergev/wormscript/runtime"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(NewConfig())
}

func addWorm(t *testing.T, w *World, name, team string, x, y, dir float64) *Worm {
	t.Helper()
	worm, err := w.AddWorm(name, team, x, y, dir)
	require.NoError(t, err)
	return worm
}

func TestHandlerMoveAndTurnCosts(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 5, 0.5, 0)
	h := NewHandler(w, worm, nil)

	require.NoError(t, h.Move())
	assert.InDelta(t, 5.5, worm.X, 1e-9)
	assert.Equal(t, 99.0, worm.ActionPoints)

	require.NoError(t, h.Turn(1))
	assert.Equal(t, 89.0, worm.ActionPoints)
	assert.InDelta(t, 1.0, worm.Direction, 1e-9)

	require.NoError(t, h.Move())
	assert.Equal(t, 85.0, worm.ActionPoints)
	assert.InDelta(t, 5.5+0.5*math.Cos(1), worm.X, 1e-9)
	assert.InDelta(t, 0.5+0.5*math.Sin(1), worm.Y, 1e-9)
}

func TestHandlerRejectsIllegalMoves(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 39.5, 0.5, 0)
	h := NewHandler(w, worm, nil)

	assert.False(t, h.CanMove())
	assert.ErrorIs(t, h.Move(), runtime.ErrIllegalPosition)
	assert.Equal(t, 100.0, worm.ActionPoints)

	worm.ActionPoints = 0
	assert.False(t, h.CanTurn(1))
	assert.ErrorIs(t, h.Turn(1), runtime.ErrActionPoints)
	assert.True(t, h.CanTurn(0))
}

func TestHandlerJumpAndFall(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 5, 0.5, 0)
	h := NewHandler(w, worm, nil)

	assert.False(t, h.CanFall())
	require.True(t, h.CanJump())
	require.NoError(t, h.Jump())
	assert.InDelta(t, 9.0, worm.X, 1e-9)
	assert.Equal(t, 0.0, worm.ActionPoints)
	assert.False(t, h.CanJump())
	assert.ErrorIs(t, h.Jump(), runtime.ErrActionPoints)

	high := addWorm(t, w, "b", "", 20, 5.5, 0)
	hb := NewHandler(w, high, nil)
	require.True(t, hb.CanFall())
	require.NoError(t, hb.Fall())
	assert.Equal(t, 0.5, high.Y)
	assert.Equal(t, 85.0, high.HitPoints)
	assert.ErrorIs(t, hb.Fall(), runtime.ErrIllegalPosition)
}

func TestHandlerShoot(t *testing.T) {
	w := newTestWorld(t)
	shooter := addWorm(t, w, "a", "red", 5, 0.5, 0)
	target := addWorm(t, w, "b", "blue", 10, 0.5, 0)
	h := NewHandler(w, shooter, nil)

	require.NoError(t, h.Shoot(0))
	assert.Equal(t, 80.0, target.HitPoints)
	assert.Equal(t, 90.0, shooter.ActionPoints)

	require.NoError(t, h.SelectNextWeapon())
	require.NoError(t, h.Shoot(50))
	assert.Equal(t, 40.0, target.HitPoints)
	assert.Equal(t, 40.0, shooter.ActionPoints)

	assert.ErrorIs(t, h.Shoot(50), runtime.ErrActionPoints)
	assert.Error(t, h.Shoot(101))

	require.NoError(t, h.SelectNextWeapon())
	assert.Equal(t, 0, shooter.weapon)
}

func TestHandlerQueries(t *testing.T) {
	w := newTestWorld(t)
	a := addWorm(t, w, "a", "red", 5, 0.5, 0)
	b := addWorm(t, w, "b", "red", 10, 0.5, 0)
	c := addWorm(t, w, "c", "blue", 12, 0.5, 0)
	food, err := w.AddFood(3, 0.5)
	require.NoError(t, err)
	h := NewHandler(w, a, nil)

	assert.Same(t, a, h.Self())
	assert.Equal(t, b, h.SearchObject(0))
	assert.Equal(t, food, h.SearchObject(math.Pi))
	assert.Nil(t, h.SearchObject(math.Pi/2))

	assert.True(t, h.SameTeam(b))
	assert.False(t, h.SameTeam(c))
	assert.False(t, h.SameTeam(food))
	assert.True(t, h.IsWorm(c))
	assert.False(t, h.IsFood(c))
	assert.True(t, h.IsFood(food))

	assert.Equal(t, 10.0, h.X(b))
	assert.Equal(t, 0.5, h.Y(b))
	assert.Equal(t, 0.2, h.Radius(food))
	assert.Equal(t, 100.0, h.HitPoints(c))
	assert.Equal(t, 100.0, h.MaxActionPoints(c))
	assert.Equal(t, 0.0, h.HitPoints(food))

	c.HitPoints = 0
	b.HitPoints = 0
	assert.Nil(t, h.SearchObject(0), "dead worms are invisible")
}

func TestHandlerEatsFood(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 5, 0.5, 0)
	worm.HitPoints = 50
	_, err := w.AddFood(5.5, 0.5)
	require.NoError(t, err)
	h := NewHandler(w, worm, nil)

	require.NoError(t, h.Move())
	assert.Equal(t, 60.0, worm.HitPoints)
	assert.Empty(t, w.Food())
}

func TestWorldPlacement(t *testing.T) {
	w := newTestWorld(t)
	_, err := w.AddWorm("a", "", 0.2, 0.5, 0)
	assert.ErrorIs(t, err, errOutside)
	_, err = w.AddFood(40, 10)
	assert.ErrorIs(t, err, errOutside)

	a := addWorm(t, w, "a", "", 1, 1, -math.Pi/2)
	assert.InDelta(t, 3*math.Pi/2, a.Direction, 1e-9)
	assert.NotEmpty(t, a.EntityID())

	found, ok := w.WormByName("a")
	assert.True(t, ok)
	assert.Same(t, a, found)
	_, ok = w.WormByName("zz")
	assert.False(t, ok)
}

func TestHandlerRejectsNonFiniteArguments(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 5, 0.5, 0)
	h := NewHandler(w, worm, nil)

	assert.ErrorIs(t, h.Turn(math.NaN()), runtime.ErrInvalidArgument)
	assert.ErrorIs(t, h.Turn(math.Inf(-1)), runtime.ErrInvalidArgument)
	assert.False(t, h.CanTurn(math.NaN()))
	assert.Nil(t, h.SearchObject(math.Inf(1)))
	assert.ErrorIs(t, h.Shoot(-1), runtime.ErrInvalidArgument)
	assert.Equal(t, 100.0, worm.ActionPoints)
	assert.Equal(t, 0.0, worm.Direction)
}

func TestNaNTurnLeavesWormUsable(t *testing.T) {
	w := newTestWorld(t)
	worm := addWorm(t, w, "a", "", 5, 0.5, 0)
	h := NewHandler(w, worm, nil)

	outcome := program.ParseProgram("double z\nturn z / z\nmove\n", h)
	require.True(t, outcome.IsSuccess(), "%v", outcome.Diagnostics())
	p := outcome.Program()
	err := p.NextExec()
	assert.ErrorIs(t, err, runtime.ErrInvalidArgument)
	assert.Equal(t, program.Failed, p.State())

	assert.Equal(t, 100.0, worm.ActionPoints)
	assert.Equal(t, 0.0, worm.Direction)
	assert.True(t, h.CanMove())
	require.NoError(t, h.Move())
	assert.InDelta(t, 5.5, worm.X, 1e-9)
}
