package lang

import (
	"fmt"
	"sort"
)

// Binding is a declared variable together with its current value.
type Binding struct {
	Type  Type
	Value Value
}

// Env maps variable names to their declared type and current value.
// Entries are created by Define and never removed.
type Env struct {
	values map[string]*Binding
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{
		values: make(map[string]*Binding),
	}
}

// Define binds name to the zero value of t, resetting any previous value.
func (e *Env) Define(name string, t Type) {
	if b, ok := e.values[name]; ok {
		b.Type = t
		b.Value = Zero(t)
		return
	}
	e.values[name] = &Binding{Type: t, Value: Zero(t)}
}

// Set updates an existing binding. The value must match the declared type.
func (e *Env) Set(name string, val Value) error {
	b, ok := e.values[name]
	if !ok {
		return fmt.Errorf("unbound variable: %s", name)
	}
	if val.Type != b.Type {
		return fmt.Errorf("cannot assign %s value to %s variable %s", val.Type, b.Type, name)
	}
	b.Value = val
	return nil
}

// Get retrieves the current value of a binding.
func (e *Env) Get(name string) (Value, error) {
	if b, ok := e.values[name]; ok {
		return b.Value, nil
	}
	return Value{}, fmt.Errorf("unbound variable: %s", name)
}

// Lookup returns the binding for name, if declared.
func (e *Env) Lookup(name string) (Binding, bool) {
	b, ok := e.values[name]
	if !ok {
		return Binding{}, false
	}
	return *b, true
}

// Names returns the declared names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of declared variables.
func (e *Env) Len() int {
	return len(e.values)
}
