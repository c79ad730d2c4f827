package arena

import (
	"errors"
	"fmt"
	"math"

	"github.com/sergev/wormscript/internal/log"
	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/runtime"
)

var (
	errOutside      = errors.New("outside the world")
	errDead         = errors.New("worm is dead")
	errInvalidYield = fmt.Errorf("%w: yield must be between 0 and 100", runtime.ErrInvalidArgument)
	errBadAngle     = fmt.Errorf("%w: angle must be finite", runtime.ErrInvalidArgument)
)

// Handler performs the actions of one worm in its world. It implements
// runtime.Handler and runtime.Finisher.
type Handler struct {
	world *World
	worm  *Worm
	log   log.Logger

	// turnOver is set when the worm's turn must end: its program finished,
	// failed, or skipped.
	turnOver bool
	finished bool
	lastErr  error
}

// NewHandler returns the action handler of worm.
func NewHandler(world *World, worm *Worm, logger log.Logger) *Handler {
	if logger == nil {
		logger = log.Root()
	}
	return &Handler{world: world, worm: worm, log: logger.New("worm", worm.Name)}
}

// Worm returns the worm driven by h.
func (h *Handler) Worm() *Worm { return h.worm }

// TurnOver reports whether the current turn of the worm has ended.
func (h *Handler) TurnOver() bool { return h.turnOver }

// Finished reports whether the bound program reached a terminal state, and
// with which error.
func (h *Handler) Finished() (bool, error) { return h.finished, h.lastErr }

func (h *Handler) startTurn() {
	h.turnOver = false
}

func (h *Handler) resetProgram() {
	h.finished = false
	h.lastErr = nil
}

func (h *Handler) ProgramFinished(err error) {
	h.finished = true
	h.lastErr = err
	h.turnOver = true
	if err != nil {
		h.log.Warn("Program failed", "err", err)
	} else {
		h.log.Debug("Program completed")
	}
}

// spend deducts cost action points, failing when the worm cannot pay.
func (h *Handler) spend(cost float64) error {
	if !h.worm.Alive() {
		return errDead
	}
	if cost > h.worm.ActionPoints {
		return runtime.ErrActionPoints
	}
	h.worm.ActionPoints -= cost
	return nil
}

func (h *Handler) turnCost(angle float64) float64 {
	return math.Ceil(h.world.cfg.Costs.TurnFullCircle * math.Abs(angle) / (2 * math.Pi))
}

func (h *Handler) moveCost() float64 {
	c := h.world.cfg.Costs
	d := h.worm.Direction
	return math.Ceil(math.Abs(math.Cos(d))*c.MoveHorizontal + math.Abs(math.Sin(d))*c.MoveVertical)
}

func (h *Handler) moveTarget() (float64, float64) {
	d := h.worm.Direction
	return h.worm.X + h.worm.Radius*math.Cos(d), h.worm.Y + h.worm.Radius*math.Sin(d)
}

func (h *Handler) jumpTarget() (float64, float64) {
	dist := h.world.cfg.Worm.JumpDistance * h.worm.ActionPoints / h.worm.MaxActionPoints
	d := h.worm.Direction
	return h.worm.X + dist*math.Cos(d), h.worm.Y + dist*math.Sin(d)
}

func (h *Handler) Turn(angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return errBadAngle
	}
	if err := h.spend(h.turnCost(angle)); err != nil {
		return err
	}
	h.worm.Direction = normalizeAngle(h.worm.Direction + angle)
	h.log.Trace("Turned", "angle", angle, "direction", h.worm.Direction)
	return nil
}

func (h *Handler) Move() error {
	x, y := h.moveTarget()
	if !h.world.Inside(x, y, h.worm.Radius) {
		return runtime.ErrIllegalPosition
	}
	if err := h.spend(h.moveCost()); err != nil {
		return err
	}
	h.worm.X, h.worm.Y = x, y
	if n := h.world.eat(h.worm); n > 0 {
		h.log.Debug("Ate food", "count", n, "hp", h.worm.HitPoints)
	}
	h.log.Trace("Moved", "x", x, "y", y)
	return nil
}

func (h *Handler) Jump() error {
	if !h.CanJump() {
		if h.worm.ActionPoints <= 0 {
			return runtime.ErrActionPoints
		}
		return runtime.ErrIllegalPosition
	}
	x, y := h.jumpTarget()
	h.worm.X, h.worm.Y = x, y
	h.worm.ActionPoints = 0
	h.world.eat(h.worm)
	h.log.Debug("Jumped", "x", x, "y", y)
	return nil
}

func (h *Handler) Fall() error {
	if !h.CanFall() {
		return runtime.ErrIllegalPosition
	}
	dist := h.worm.Y - h.worm.Radius
	h.worm.Y = h.worm.Radius
	h.damage(h.worm, dist*h.world.cfg.Worm.FallDamage)
	h.world.eat(h.worm)
	h.log.Debug("Fell", "distance", dist, "hp", h.worm.HitPoints)
	return nil
}

func (h *Handler) Shoot(yield int) error {
	if yield < 0 || yield > 100 {
		return fmt.Errorf("%w: %d", errInvalidYield, yield)
	}
	weapon := h.world.cfg.Weapons[h.worm.weapon]
	if err := h.spend(weapon.Cost); err != nil {
		return err
	}
	target, _ := h.world.search(h.worm, h.worm.Direction, weapon.Range).(*Worm)
	if target == nil {
		h.log.Debug("Shot missed", "weapon", weapon.Name)
		return nil
	}
	dmg := weapon.Damage
	if weapon.Yield {
		dmg = dmg * float64(yield) / 100
	}
	h.damage(target, dmg)
	h.log.Info("Shot hit", "weapon", weapon.Name, "target", target.Name, "damage", dmg, "hp", target.HitPoints)
	return nil
}

func (h *Handler) damage(w *Worm, amount float64) {
	w.HitPoints = math.Max(0, w.HitPoints-amount)
	if !w.Alive() {
		h.log.Info("Worm died", "victim", w.Name)
	}
}

func (h *Handler) SelectNextWeapon() error {
	h.worm.weapon = (h.worm.weapon + 1) % len(h.world.cfg.Weapons)
	h.log.Trace("Selected weapon", "weapon", h.world.cfg.Weapons[h.worm.weapon].Name)
	return nil
}

// Skip ends the worm's turn; its program resumes there next turn.
func (h *Handler) Skip() error {
	h.turnOver = true
	return nil
}

func (h *Handler) Self() lang.Entity { return h.worm }

func (h *Handler) CanMove() bool {
	x, y := h.moveTarget()
	return h.worm.Alive() && h.moveCost() <= h.worm.ActionPoints && h.world.Inside(x, y, h.worm.Radius)
}

func (h *Handler) CanJump() bool {
	if !h.worm.Alive() || h.worm.ActionPoints <= 0 {
		return false
	}
	x, y := h.jumpTarget()
	return h.world.Inside(x, y, h.worm.Radius)
}

func (h *Handler) CanFall() bool {
	return h.worm.Alive() && h.worm.Y > h.worm.Radius
}

func (h *Handler) CanTurn(angle float64) bool {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return false
	}
	return h.worm.Alive() && h.turnCost(angle) <= h.worm.ActionPoints
}

func (h *Handler) X(e lang.Entity) float64 {
	x, _, _, _ := position(e)
	return x
}

func (h *Handler) Y(e lang.Entity) float64 {
	_, y, _, _ := position(e)
	return y
}

func (h *Handler) Radius(e lang.Entity) float64 {
	_, _, r, _ := position(e)
	return r
}

func (h *Handler) wormStat(e lang.Entity, stat func(*Worm) float64) float64 {
	if w, ok := e.(*Worm); ok {
		return stat(w)
	}
	return 0
}

func (h *Handler) Direction(e lang.Entity) float64 {
	return h.wormStat(e, func(w *Worm) float64 { return w.Direction })
}

func (h *Handler) ActionPoints(e lang.Entity) float64 {
	return h.wormStat(e, func(w *Worm) float64 { return w.ActionPoints })
}

func (h *Handler) MaxActionPoints(e lang.Entity) float64 {
	return h.wormStat(e, func(w *Worm) float64 { return w.MaxActionPoints })
}

func (h *Handler) HitPoints(e lang.Entity) float64 {
	return h.wormStat(e, func(w *Worm) float64 { return w.HitPoints })
}

func (h *Handler) MaxHitPoints(e lang.Entity) float64 {
	return h.wormStat(e, func(w *Worm) float64 { return w.MaxHitPoints })
}

func (h *Handler) SameTeam(e lang.Entity) bool {
	w, ok := e.(*Worm)
	return ok && h.worm.Team != "" && w.Team == h.worm.Team
}

func (h *Handler) IsWorm(e lang.Entity) bool {
	_, ok := e.(*Worm)
	return ok
}

func (h *Handler) IsFood(e lang.Entity) bool {
	_, ok := e.(*Food)
	return ok
}

func (h *Handler) SearchObject(angle float64) lang.Entity {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil
	}
	return h.world.search(h.worm, normalizeAngle(h.worm.Direction+angle), math.Inf(1))
}
