// Package vm is the stack-based execution engine: it loads a
// compiler.Program and runs its bytecode, one frame per active function
// call. The dispatch loop and frame/cell bookkeeping mirror the teacher
// machine package's Thread/Frame split, adapted to Cordy's flat per-function
// instruction arrays instead of a shared code segment.
package vm

import (
	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/value"
)

// frame records one active call: its function, the upvalue cells it closed
// over (nil for a plain, non-closure call), its own fixed-size local slots,
// and the program counter into fn.Code.
type frame struct {
	fn      *compiler.Funcode
	closure *value.Closure

	locals []value.Value
	// cells holds, for every index in fn.CellLocals, the *value.Cell that
	// aliases locals[idx]; nil for every other slot. Populated once at frame
	// entry so CloseLocal always finds the same Cell pointer for a given
	// local no matter how many nested functions capture it.
	cells []*value.Cell
	// pending accumulates cells gathered by CloseLocal/CloseUpValue ahead of
	// the Closure instruction that consumes them.
	pending []*value.Cell

	ip int
}

func newFrame(fn *compiler.Funcode, closure *value.Closure) *frame {
	locals := make([]value.Value, fn.NumLocals)
	for i := range locals {
		locals[i] = value.Nil
	}
	f := &frame{fn: fn, closure: closure, locals: locals}
	if len(fn.CellLocals) > 0 {
		f.cells = make([]*value.Cell, fn.NumLocals)
		for _, idx := range fn.CellLocals {
			f.cells[idx] = &value.Cell{Open: true, Stack: locals, Index: idx}
		}
	}
	return f
}

// closeCells freezes every cell this frame owns, detaching it from locals so
// the rest of the frame can be collected once only the captured value
// matters. Called once, when the frame returns.
func (f *frame) closeCells() {
	for _, idx := range f.fn.CellLocals {
		f.cells[idx].Close()
	}
}

// bindArgs places args into f.locals according to fn's parameter shape:
// mandatory and defaulted parameters occupy the leading slots directly,
// and - if fn is variadic - every argument beyond the non-variadic
// parameter count collects into a *value.List bound to the last slot.
// Missing defaulted parameters are left at value.Nil rather than evaluating
// their default expression (lang/compiler never emits one).
// The caller has already checked that len(args) meets fn's minimum arity.
func bindArgs(fn *compiler.Funcode, locals []value.Value, args []value.Value) error {
	plainParams := fn.NumParams
	if fn.Variadic {
		plainParams--
	}
	for i := 0; i < plainParams; i++ {
		if i < len(args) {
			locals[i] = args[i]
		}
	}
	if fn.Variadic {
		var rest []value.Value
		if len(args) > plainParams {
			rest = append(rest, args[plainParams:]...)
		}
		locals[fn.NumParams-1] = value.NewList(rest)
		return nil
	}
	if len(args) > fn.NumParams {
		return newRuntimeErrorInts(errIncorrectArgCount, int64(fn.NumParams), int64(len(args)))
	}
	return nil
}

// minArgs is the fewest arguments fn accepts before a call becomes a partial
// application: every parameter not covered by a default, including the
// variadic slot itself (a variadic function must still receive at least its
// declared parameter count; extra arguments beyond that bundle into the
// trailing list).
func minArgs(fn *compiler.Funcode) int {
	return fn.NumParams - fn.Defaults
}
