package arena

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sergev/wormscript/internal/log"
	"github.com/sergev/wormscript/program"
)

// ErrGameOver is returned when a turn is requested after the game ended.
var ErrGameOver = errors.New("game over")

// scriptRef binds a worm to its compiled script and the program running it.
// The program persists across turns until it completes or fails.
type scriptRef struct {
	source  string
	script  *program.Script
	program *program.Program
	handler *Handler
}

// TurnReport describes one played turn.
type TurnReport struct {
	Round     int
	Worm      string
	Actions   int
	State     program.State
	Err       error
	Truncated bool // the turn hit MaxActionsPerTurn
	HitPoints float64
	Points    float64
}

// Game schedules the turns of the worms in a world. It is safe for
// concurrent use.
type Game struct {
	mu      sync.Mutex
	world   *World
	cfg     *Config
	cache   *ScriptCache
	log     log.Logger
	out     io.Writer
	current int
	round   int
}

// GameOption configures a Game.
type GameOption func(*Game)

// WithGameLogger sets the logger of the game and its worms.
func WithGameLogger(l log.Logger) GameOption {
	return func(g *Game) { g.log = l }
}

// WithGameOutput sends the output of print statements to w.
func WithGameOutput(w io.Writer) GameOption {
	return func(g *Game) { g.out = w }
}

// WithScriptCache shares a compiled-script cache between games.
func WithScriptCache(c *ScriptCache) GameOption {
	return func(g *Game) { g.cache = c }
}

// NewGame starts a game in world. The first worm plays first.
func NewGame(world *World, opts ...GameOption) (*Game, error) {
	g := &Game{world: world, cfg: world.cfg, round: 1}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = log.New()
		g.log.SetHandler(log.DiscardHandler())
	}
	if g.out == nil {
		g.out = io.Discard
	}
	if g.cache == nil {
		cache, err := NewScriptCache(g.cfg.Game.ScriptCacheSize)
		if err != nil {
			return nil, err
		}
		g.cache = cache
	}
	if len(world.worms) == 0 {
		return nil, errors.New("world has no worms")
	}
	return g, nil
}

// World returns the world of the game.
func (g *Game) World() *World { return g.world }

// Cache returns the compiled-script cache of the game.
func (g *Game) Cache() *ScriptCache { return g.cache }

// SetScript compiles src and assigns it to worm. A running program of the
// worm is discarded. Compilation errors are returned as one error.
func (g *Game) SetScript(worm *Worm, src string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	script, diags := g.cache.Compile(src)
	if script == nil {
		return fmt.Errorf("script of %s: %w", worm.Name, diags.Err())
	}
	for _, w := range diags.Warnings() {
		g.log.Warn("Script warning", "worm", worm.Name, "warning", w)
	}
	worm.script = scriptRef{
		source:  src,
		script:  script,
		handler: NewHandler(g.world, worm, g.log),
	}
	return nil
}

// Program returns the program currently bound to worm, if any.
func (g *Game) Program(worm *Worm) *program.Program {
	g.mu.Lock()
	defer g.mu.Unlock()
	return worm.script.program
}

// Current returns the worm whose turn it is.
func (g *Game) Current() *Worm {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.world.worms[g.current]
}

// Round returns the current round, starting at 1.
func (g *Game) Round() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round
}

// Over reports whether at most one team is alive or the round limit passed.
func (g *Game) Over() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.over()
}

func (g *Game) over() bool {
	return len(g.world.Teams()) <= 1 || g.round > g.cfg.Game.MaxRounds
}

// Winner returns the surviving team, or false while several teams live.
func (g *Game) Winner() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	teams := g.world.Teams()
	if len(teams) != 1 {
		return "", false
	}
	return teams[0], true
}

// PlayTurn runs the program of the current worm until its turn ends, then
// passes the turn to the next living worm. A worm without a script passes.
func (g *Game) PlayTurn() (TurnReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over() {
		return TurnReport{}, ErrGameOver
	}
	worm := g.world.worms[g.current]
	report := TurnReport{Round: g.round, Worm: worm.Name, State: program.Completed}
	if ref := &worm.script; ref.script != nil {
		g.runProgram(worm, ref, &report)
	}
	report.HitPoints = worm.HitPoints
	report.Points = worm.ActionPoints
	g.log.Debug("Turn ended", "round", report.Round, "worm", worm.Name, "actions", report.Actions, "state", report.State)
	g.advance()
	return report, nil
}

func (g *Game) runProgram(worm *Worm, ref *scriptRef, report *TurnReport) {
	if ref.program == nil || ref.program.Done() {
		ref.handler.resetProgram()
		ref.program = ref.script.Bind(ref.handler,
			program.WithStepLimit(g.cfg.Game.StepLimit),
			program.WithOutput(g.out),
			program.WithLogger(g.log.New("worm", worm.Name)),
		)
	}
	ref.handler.startTurn()
	start := ref.program.Steps()
	for calls := 0; !ref.handler.TurnOver() && worm.Alive(); calls++ {
		if calls >= g.cfg.Game.MaxActionsPerTurn {
			report.Truncated = true
			g.log.Warn("Turn truncated", "worm", worm.Name, "actions", calls)
			break
		}
		ref.program.NextExec()
	}
	report.Actions = ref.program.Steps() - start
	report.State = ref.program.State()
	report.Err = ref.program.Err()
}

// advance passes the turn to the next living worm and refreshes its points.
func (g *Game) advance() {
	n := len(g.world.worms)
	start := g.current
	for i := 1; i <= n; i++ {
		if start+i == n {
			g.round++
		}
		next := (start + i) % n
		if w := g.world.worms[next]; w.Alive() {
			g.current = next
			w.ActionPoints = w.MaxActionPoints
			w.HitPoints = math.Min(w.MaxHitPoints, w.HitPoints+g.cfg.Worm.TurnHitPoints)
			g.log.Trace("Turn started", "round", g.round, "worm", w.Name)
			return
		}
	}
}

// Run plays turns until the game is over or ctx is done.
func (g *Game) Run(ctx context.Context) ([]TurnReport, error) {
	var reports []TurnReport
	for !g.Over() {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := g.PlayTurn()
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	if team, ok := g.Winner(); ok {
		g.log.Info("Game over", "winner", team, "round", g.Round())
	} else {
		g.log.Info("Game over", "round", g.Round())
	}
	return reports, nil
}
