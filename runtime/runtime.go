package runtime

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sergev/wormscript/lang"
)

var (
	// ErrActionPoints is returned by a handler when the worm cannot pay for
	// an action.
	ErrActionPoints = errors.New("not enough action points")
	// ErrIllegalPosition is returned by a handler when an action would move
	// the worm to a position it may not occupy.
	ErrIllegalPosition = errors.New("illegal position")
	// ErrNullEntity is returned when a query receives the null entity.
	ErrNullEntity = errors.New("null entity reference")
	// ErrInvalidArgument is returned when an action receives a number that
	// is not finite or does not fit its parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Handler is the capability through which a program observes and acts on
// the game world. Actions may fail; queries never do.
type Handler interface {
	// Turn rotates the worm by angle radians. It fails with ErrActionPoints
	// or, for a non-finite angle, ErrInvalidArgument.
	Turn(angle float64) error
	// Move steps the worm forward, failing with ErrActionPoints or
	// ErrIllegalPosition.
	Move() error
	// Jump fails with ErrActionPoints or ErrIllegalPosition.
	Jump() error
	// Fall fails with ErrIllegalPosition when the worm cannot fall.
	Fall() error
	// Shoot fires the selected weapon. It fails with ErrActionPoints, or
	// ErrInvalidArgument for a yield outside 0..100.
	Shoot(yield int) error
	// SelectNextWeapon never fails in the reference arena.
	SelectNextWeapon() error
	// Skip ends the worm's turn.
	Skip() error

	// Self returns the worm executing the program.
	Self() lang.Entity
	CanMove() bool
	CanJump() bool
	CanFall() bool
	CanTurn(angle float64) bool
	X(e lang.Entity) float64
	Y(e lang.Entity) float64
	Radius(e lang.Entity) float64
	Direction(e lang.Entity) float64
	ActionPoints(e lang.Entity) float64
	MaxActionPoints(e lang.Entity) float64
	HitPoints(e lang.Entity) float64
	MaxHitPoints(e lang.Entity) float64
	SameTeam(e lang.Entity) bool
	IsWorm(e lang.Entity) bool
	IsFood(e lang.Entity) bool
	// SearchObject returns the nearest object in the given direction
	// relative to the worm's orientation, or nil when there is none.
	SearchObject(angle float64) lang.Entity
}

// Finisher is implemented by handlers that want to be told when the program
// they serve reaches a terminal state. err is nil on normal completion.
type Finisher interface {
	ProgramFinished(err error)
}

// Kind classifies the callable names known to the language.
type Kind int

const (
	KindAction Kind = iota
	KindQuery
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindQuery:
		return "query"
	case KindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Signature describes a callable name: its kind, parameter types and, for
// queries and builtins, its result type.
type Signature struct {
	Name    string
	Aliases []string
	Kind    Kind
	Params  []lang.Type
	Result  lang.Type
	impl    func(h Handler, args []lang.Value) (lang.Value, error)
}

func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if s.Kind != KindAction {
		b.WriteByte(' ')
		b.WriteString(s.Result.String())
	}
	return b.String()
}

func (s *Signature) apply(h Handler, args []lang.Value) (lang.Value, error) {
	if len(args) != len(s.Params) {
		return lang.Value{}, fmt.Errorf("%s expects %d arguments, got %d", s.Name, len(s.Params), len(args))
	}
	for i, param := range s.Params {
		if args[i].Type != param {
			return lang.Value{}, fmt.Errorf("%s argument %d: expected %s, got %s", s.Name, i+1, param, args[i].Type)
		}
	}
	if h == nil && s.Kind != KindBuiltin {
		return lang.Value{}, fmt.Errorf("%s: no action handler", s.Name)
	}
	return s.impl(h, args)
}

var signatures = make(map[string]*Signature)

func init() {
	installPrimitives(signatures)
}

// Lookup returns the signature bound to name or one of its aliases.
func Lookup(name string) (*Signature, bool) {
	sig, ok := signatures[name]
	return sig, ok
}

// Signatures lists every callable once, grouped by kind and sorted by name.
func Signatures() []*Signature {
	seen := make(map[*Signature]bool)
	var list []*Signature
	for _, sig := range signatures {
		if !seen[sig] {
			seen[sig] = true
			list = append(list, sig)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Kind != list[j].Kind {
			return list[i].Kind < list[j].Kind
		}
		return list[i].Name < list[j].Name
	})
	return list
}

// Invoke performs the named action through h.
func Invoke(h Handler, name string, args []lang.Value) error {
	sig, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown action %s", name)
	}
	if sig.Kind != KindAction {
		return fmt.Errorf("%s is a %s, not an action", name, sig.Kind)
	}
	_, err := sig.apply(h, args)
	return err
}

// Call evaluates the named query or builtin.
func Call(h Handler, name string, args []lang.Value) (lang.Value, error) {
	sig, ok := Lookup(name)
	if !ok {
		return lang.Value{}, fmt.Errorf("unknown function %s", name)
	}
	if sig.Kind == KindAction {
		return lang.Value{}, fmt.Errorf("%s is an action and cannot be used in an expression", name)
	}
	return sig.apply(h, args)
}
