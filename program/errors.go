package program

import (
	"errors"
	"fmt"

	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

var (
	// ErrNullEntity reports a query applied to the null entity.
	ErrNullEntity = runtime.ErrNullEntity
	// ErrStepLimit reports a NextExec call that evaluated more statements
	// and loop tests than the configured limit without reaching an action.
	ErrStepLimit = errors.New("step limit exceeded")

	errNoHandler = errors.New("no action handler")
)

// RuntimeError is a failure raised while executing a program. Action names
// the action or query whose call failed and is empty for failures detected
// by the interpreter itself.
type RuntimeError struct {
	Pos    parser.Position
	Action string
	Err    error
}

func (e *RuntimeError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%d:%d: %s: %v", e.Pos.Line, e.Pos.Column, e.Action, e.Err)
	}
	return fmt.Sprintf("%d:%d: %v", e.Pos.Line, e.Pos.Column, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

func runtimeError(node parser.Node, action string, err error) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return err
	}
	return &RuntimeError{Pos: node.Pos(), Action: action, Err: err}
}
