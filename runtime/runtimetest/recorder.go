// Package runtimetest provides a scripted action handler for tests.
package runtimetest

import (
	"github.com/sergev/wormscript/lang"
)

// Entity is a named test entity.
type Entity string

func (e Entity) EntityID() string { return string(e) }

// Call is one action performed through a Recorder.
type Call struct {
	Action string
	Arg    float64
}

// Recorder implements runtime.Handler and runtime.Finisher. Actions are
// recorded in Calls and fail with the error configured in Errors. Queries
// answer from Numbers and Bools, keyed by handler method name.
type Recorder struct {
	SelfEntity lang.Entity
	Found      lang.Entity
	Errors     map[string]error
	Numbers    map[string]float64
	Bools      map[string]bool

	Calls    []Call
	Queries  []string
	Finished []error
}

// NewRecorder returns a recorder whose self entity is "self".
func NewRecorder() *Recorder {
	return &Recorder{
		SelfEntity: Entity("self"),
		Errors:     make(map[string]error),
		Numbers:    make(map[string]float64),
		Bools:      make(map[string]bool),
	}
}

// Actions returns the names of the recorded actions in order.
func (r *Recorder) Actions() []string {
	names := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		names[i] = c.Action
	}
	return names
}

func (r *Recorder) act(name string, arg float64) error {
	r.Calls = append(r.Calls, Call{Action: name, Arg: arg})
	return r.Errors[name]
}

func (r *Recorder) number(name string) float64 {
	r.Queries = append(r.Queries, name)
	return r.Numbers[name]
}

func (r *Recorder) boolean(name string) bool {
	r.Queries = append(r.Queries, name)
	return r.Bools[name]
}

func (r *Recorder) Turn(angle float64) error { return r.act("turn", angle) }
func (r *Recorder) Move() error { return r.act("move", 0) }
func (r *Recorder) Jump() error { return r.act("jump", 0) }
func (r *Recorder) Fall() error { return r.act("fall", 0) }
func (r *Recorder) Shoot(yield int) error { return r.act("shoot", float64(yield)) }
func (r *Recorder) SelectNextWeapon() error { return r.act("selectNextWeapon", 0) }
func (r *Recorder) Skip() error { return r.act("skip", 0) }

func (r *Recorder) Self() lang.Entity {
	r.Queries = append(r.Queries, "Self")
	return r.SelfEntity
}

func (r *Recorder) CanMove() bool { return r.boolean("CanMove") }
func (r *Recorder) CanJump() bool { return r.boolean("CanJump") }
func (r *Recorder) CanFall() bool { return r.boolean("CanFall") }
func (r *Recorder) CanTurn(float64) bool { return r.boolean("CanTurn") }
func (r *Recorder) X(lang.Entity) float64 { return r.number("X") }
func (r *Recorder) Y(lang.Entity) float64 { return r.number("Y") }
func (r *Recorder) Radius(lang.Entity) float64 { return r.number("Radius") }
func (r *Recorder) Direction(lang.Entity) float64 { return r.number("Direction") }
func (r *Recorder) ActionPoints(lang.Entity) float64 { return r.number("ActionPoints") }
func (r *Recorder) MaxActionPoints(lang.Entity) float64 { return r.number("MaxActionPoints") }
func (r *Recorder) HitPoints(lang.Entity) float64 { return r.number("HitPoints") }
func (r *Recorder) MaxHitPoints(lang.Entity) float64 { return r.number("MaxHitPoints") }
func (r *Recorder) SameTeam(lang.Entity) bool { return r.boolean("SameTeam") }
func (r *Recorder) IsWorm(lang.Entity) bool { return r.boolean("IsWorm") }
func (r *Recorder) IsFood(lang.Entity) bool { return r.boolean("IsFood") }

func (r *Recorder) SearchObject(float64) lang.Entity {
	r.Queries = append(r.Queries, "SearchObject")
	return r.Found
}

func (r *Recorder) ProgramFinished(err error) {
	r.Finished = append(r.Finished, err)
}
