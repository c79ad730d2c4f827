// Package arena is a small turn-based world in which worms driven by
// scripts move, eat and shoot. It hosts programs; it does not model terrain
// or ballistics.
package arena

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/sergev/wormscript/lang"
)

// Worm is a player-controlled or scripted worm.
type Worm struct {
	id        string
	Name      string
	Team      string
	X, Y      float64
	Direction float64
	Radius    float64

	ActionPoints    float64
	MaxActionPoints float64
	HitPoints       float64
	MaxHitPoints    float64

	weapon int
	script scriptRef
}

func (w *Worm) EntityID() string { return w.id }

// Alive reports whether the worm still has hit points.
func (w *Worm) Alive() bool { return w.HitPoints > 0 }

func (w *Worm) String() string { return w.Name }

// Food restores hit points to the worm that moves over it.
type Food struct {
	id     string
	X, Y   float64
	Radius float64
}

func (f *Food) EntityID() string { return f.id }

// World holds the worms and food of a rectangular arena whose origin is
// the bottom left corner.
type World struct {
	cfg   *Config
	worms []*Worm
	food  []*Food
}

// NewWorld creates an empty world with the given rules.
func NewWorld(cfg *Config) *World {
	return &World{cfg: cfg}
}

// Config returns the rules of the world.
func (w *World) Config() *Config { return w.cfg }

// AddWorm places a new worm with full action and hit points.
func (w *World) AddWorm(name, team string, x, y, direction float64) (*Worm, error) {
	r := w.cfg.Worm.Radius
	if !w.Inside(x, y, r) {
		return nil, fmt.Errorf("worm %s at (%v, %v): %w", name, x, y, errOutside)
	}
	worm := &Worm{
		id:              uuid.New().String(),
		Name:            name,
		Team:            team,
		X:               x,
		Y:               y,
		Direction:       normalizeAngle(direction),
		Radius:          r,
		ActionPoints:    w.cfg.Worm.MaxActionPoints,
		MaxActionPoints: w.cfg.Worm.MaxActionPoints,
		HitPoints:       w.cfg.Worm.MaxHitPoints,
		MaxHitPoints:    w.cfg.Worm.MaxHitPoints,
	}
	w.worms = append(w.worms, worm)
	return worm, nil
}

// AddFood places a food ration.
func (w *World) AddFood(x, y float64) (*Food, error) {
	r := w.cfg.Worm.FoodRadius
	if !w.Inside(x, y, r) {
		return nil, fmt.Errorf("food at (%v, %v): %w", x, y, errOutside)
	}
	food := &Food{id: uuid.New().String(), X: x, Y: y, Radius: r}
	w.food = append(w.food, food)
	return food, nil
}

// Worms returns every worm, dead or alive, in creation order.
func (w *World) Worms() []*Worm { return w.worms }

// Food returns the remaining food.
func (w *World) Food() []*Food { return w.food }

// WormByName finds a worm by name.
func (w *World) WormByName(name string) (*Worm, bool) {
	for _, worm := range w.worms {
		if worm.Name == name {
			return worm, true
		}
	}
	return nil, false
}

// Teams returns the distinct team names of the living worms. Worms without
// a team count as a team of their own.
func (w *World) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, worm := range w.worms {
		if !worm.Alive() {
			continue
		}
		key := worm.Team
		if key == "" {
			key = worm.Name
		}
		if !seen[key] {
			seen[key] = true
			teams = append(teams, key)
		}
	}
	return teams
}

// Inside reports whether a circle of radius r at (x, y) lies in the world.
func (w *World) Inside(x, y, r float64) bool {
	return x-r >= 0 && y-r >= 0 && x+r <= w.cfg.World.Width && y+r <= w.cfg.World.Height
}

// eat removes the food overlapping worm and heals it.
func (w *World) eat(worm *Worm) int {
	eaten := 0
	kept := w.food[:0]
	for _, f := range w.food {
		if math.Hypot(f.X-worm.X, f.Y-worm.Y) < f.Radius+worm.Radius {
			eaten++
			worm.HitPoints = math.Min(worm.MaxHitPoints, worm.HitPoints+w.cfg.Worm.FoodHeal)
			continue
		}
		kept = append(kept, f)
	}
	w.food = kept
	return eaten
}

// position returns the center and radius of a worm or food entity.
func position(e lang.Entity) (x, y, r float64, ok bool) {
	switch e := e.(type) {
	case *Worm:
		return e.X, e.Y, e.Radius, true
	case *Food:
		return e.X, e.Y, e.Radius, true
	}
	return 0, 0, 0, false
}

// search returns the nearest living worm or food other than from whose
// circle is crossed by the ray leaving from's center at the given absolute
// angle. It returns nil when the ray hits nothing.
func (w *World) search(from *Worm, angle float64, maxDist float64) lang.Entity {
	dx, dy := math.Cos(angle), math.Sin(angle)
	var best lang.Entity
	bestDist := math.Inf(1)
	consider := func(e lang.Entity, x, y, r float64) {
		along := (x-from.X)*dx + (y-from.Y)*dy
		if along <= 0 || along > maxDist {
			return
		}
		across := math.Abs((x-from.X)*dy - (y-from.Y)*dx)
		if across <= r && along < bestDist {
			best, bestDist = e, along
		}
	}
	for _, worm := range w.worms {
		if worm != from && worm.Alive() {
			consider(worm, worm.X, worm.Y, worm.Radius)
		}
	}
	for _, f := range w.food {
		consider(f, f.X, f.Y, f.Radius)
	}
	return best
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
