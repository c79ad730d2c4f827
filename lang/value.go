package lang

import (
	"fmt"
	"reflect"
	"strconv"
)

// Type enumerates the static types of the script language.
type Type int

const (
	// TypeInvalid marks an expression whose type could not be determined.
	TypeInvalid Type = iota
	TypeNumber
	TypeBoolean
	TypeEntity
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeNumber:  "double",
	TypeBoolean: "bool",
	TypeEntity:  "entity",
}

func (t Type) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// TypeByName resolves a source-level type keyword.
func TypeByName(name string) (Type, bool) {
	switch name {
	case "double":
		return TypeNumber, true
	case "bool":
		return TypeBoolean, true
	case "entity":
		return TypeEntity, true
	}
	return TypeInvalid, false
}

// Entity is an opaque reference to a game object supplied by the action
// handler. Two references denote the same object when they compare equal.
type Entity interface {
	EntityID() string
}

// Value represents any runtime object in the interpreter.
type Value struct {
	Type    Type
	payload interface{}
}

// NumberValue constructs a numeric Value.
func NumberValue(f float64) Value {
	return Value{Type: TypeNumber, payload: f}
}

// BoolValue returns the boolean Value equivalent.
func BoolValue(b bool) Value {
	return Value{Type: TypeBoolean, payload: b}
}

// EntityValue wraps an entity reference; a nil entity, including a nil
// pointer of a concrete entity type, is the null reference.
func EntityValue(e Entity) Value {
	if isNilEntity(e) {
		return Null
	}
	return Value{Type: TypeEntity, payload: e}
}

func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	switch rv := reflect.ValueOf(e); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Null is the absent entity reference.
var Null = Value{Type: TypeEntity}

// Zero returns the default value of a declared variable of type t.
func Zero(t Type) Value {
	switch t {
	case TypeNumber:
		return NumberValue(0)
	case TypeBoolean:
		return BoolValue(false)
	case TypeEntity:
		return Null
	}
	return Value{}
}

func (v Value) Number() float64 {
	if f, ok := v.payload.(float64); ok {
		return f
	}
	return 0
}

func (v Value) Bool() bool {
	if b, ok := v.payload.(bool); ok {
		return b
	}
	return false
}

func (v Value) Entity() Entity {
	if e, ok := v.payload.(Entity); ok {
		return e
	}
	return nil
}

// IsNull reports whether v is an entity value referencing nothing.
func (v Value) IsNull() bool {
	return v.Type == TypeEntity && v.Entity() == nil
}

// Equal compares two values of the same type.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeNumber:
		return v.Number() == other.Number()
	case TypeBoolean:
		return v.Bool() == other.Bool()
	case TypeEntity:
		a, b := v.Entity(), other.Entity()
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return a.EntityID() == b.EntityID()
	}
	return false
}

func (v Value) String() string {
	switch v.Type {
	case TypeNumber:
		return strconv.FormatFloat(v.Number(), 'g', -1, 64)
	case TypeBoolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	case TypeEntity:
		if e := v.Entity(); e != nil {
			return "<" + e.EntityID() + ">"
		}
		return "null"
	default:
		return "<invalid>"
	}
}
