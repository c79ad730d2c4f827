package runtime

import (
	"math"

	"github.com/sergev/wormscript/lang"
)

type impl = func(h Handler, args []lang.Value) (lang.Value, error)

var (
	none    = []lang.Type{}
	number  = []lang.Type{lang.TypeNumber}
	entity  = []lang.Type{lang.TypeEntity}
	noValue = lang.Value{}
)

func installPrimitives(table map[string]*Signature) {
	define := func(sig *Signature) {
		table[sig.Name] = sig
		for _, alias := range sig.Aliases {
			table[alias] = sig
		}
	}
	action := func(name string, params []lang.Type, fn impl, aliases ...string) {
		define(&Signature{Name: name, Aliases: aliases, Kind: KindAction, Params: params, impl: fn})
	}
	query := func(name string, params []lang.Type, result lang.Type, fn impl) {
		define(&Signature{Name: name, Kind: KindQuery, Params: params, Result: result, impl: fn})
	}
	builtin := func(name string, fn func(float64) float64) {
		define(&Signature{
			Name:   name,
			Kind:   KindBuiltin,
			Params: number,
			Result: lang.TypeNumber,
			impl: func(_ Handler, args []lang.Value) (lang.Value, error) {
				return lang.NumberValue(fn(args[0].Number())), nil
			},
		})
	}

	action("turn", number, primTurn)
	action("move", none, primMove)
	action("jump", none, primJump)
	action("fall", none, primFall)
	action("shoot", number, primShoot, "fire")
	action("selectNextWeapon", none, primSelectNextWeapon, "toggleweap")
	action("skip", none, primSkip)

	query("canmove", none, lang.TypeBoolean, primCanMove)
	query("canjump", none, lang.TypeBoolean, primCanJump)
	query("canfall", none, lang.TypeBoolean, primCanFall)
	query("canturn", number, lang.TypeBoolean, primCanTurn)
	query("getx", entity, lang.TypeNumber, entityNumber(Handler.X))
	query("gety", entity, lang.TypeNumber, entityNumber(Handler.Y))
	query("getradius", entity, lang.TypeNumber, entityNumber(Handler.Radius))
	query("getdir", entity, lang.TypeNumber, entityNumber(Handler.Direction))
	query("getap", entity, lang.TypeNumber, entityNumber(Handler.ActionPoints))
	query("getmaxap", entity, lang.TypeNumber, entityNumber(Handler.MaxActionPoints))
	query("gethp", entity, lang.TypeNumber, entityNumber(Handler.HitPoints))
	query("getmaxhp", entity, lang.TypeNumber, entityNumber(Handler.MaxHitPoints))
	query("sameteam", entity, lang.TypeBoolean, entityBool(Handler.SameTeam))
	query("isworm", entity, lang.TypeBoolean, entityBool(Handler.IsWorm))
	query("isfood", entity, lang.TypeBoolean, entityBool(Handler.IsFood))
	query("searchobj", number, lang.TypeEntity, primSearchObject)

	builtin("sqrt", math.Sqrt)
	builtin("sin", math.Sin)
	builtin("cos", math.Cos)
	builtin("abs", math.Abs)
}

func primTurn(h Handler, args []lang.Value) (lang.Value, error) {
	angle := args[0].Number()
	if !finite(angle) {
		return noValue, ErrInvalidArgument
	}
	return noValue, h.Turn(angle)
}

func primMove(h Handler, _ []lang.Value) (lang.Value, error) {
	return noValue, h.Move()
}

func primJump(h Handler, _ []lang.Value) (lang.Value, error) {
	return noValue, h.Jump()
}

func primFall(h Handler, _ []lang.Value) (lang.Value, error) {
	return noValue, h.Fall()
}

func primShoot(h Handler, args []lang.Value) (lang.Value, error) {
	yield := args[0].Number()
	if !finite(yield) || yield < math.MinInt32 || yield > math.MaxInt32 {
		return noValue, ErrInvalidArgument
	}
	return noValue, h.Shoot(int(yield))
}

func primSelectNextWeapon(h Handler, _ []lang.Value) (lang.Value, error) {
	return noValue, h.SelectNextWeapon()
}

func primSkip(h Handler, _ []lang.Value) (lang.Value, error) {
	return noValue, h.Skip()
}

func primCanMove(h Handler, _ []lang.Value) (lang.Value, error) {
	return lang.BoolValue(h.CanMove()), nil
}

func primCanJump(h Handler, _ []lang.Value) (lang.Value, error) {
	return lang.BoolValue(h.CanJump()), nil
}

func primCanFall(h Handler, _ []lang.Value) (lang.Value, error) {
	return lang.BoolValue(h.CanFall()), nil
}

func primCanTurn(h Handler, args []lang.Value) (lang.Value, error) {
	angle := args[0].Number()
	return lang.BoolValue(finite(angle) && h.CanTurn(angle)), nil
}

func primSearchObject(h Handler, args []lang.Value) (lang.Value, error) {
	angle := args[0].Number()
	if !finite(angle) {
		return lang.Null, nil
	}
	return lang.EntityValue(h.SearchObject(angle)), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func entityNumber(fn func(Handler, lang.Entity) float64) impl {
	return func(h Handler, args []lang.Value) (lang.Value, error) {
		e := args[0].Entity()
		if e == nil {
			return noValue, ErrNullEntity
		}
		return lang.NumberValue(fn(h, e)), nil
	}
}

func entityBool(fn func(Handler, lang.Entity) bool) impl {
	return func(h Handler, args []lang.Value) (lang.Value, error) {
		e := args[0].Entity()
		if e == nil {
			return noValue, ErrNullEntity
		}
		return lang.BoolValue(fn(h, e)), nil
	}
}
