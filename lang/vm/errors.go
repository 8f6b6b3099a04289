package vm

import "github.com/cordy-lang/cordy/lang/cerr"

// errIncorrectArgCount distinguishes a user-function arity mismatch from a
// native's (which callNative builds directly, carrying the native's name).
const errIncorrectArgCount = cerr.IncorrectNumberOfFunctionArguments

func newRuntimeError(kind cerr.RuntimeErrorKind, repr ...string) error {
	return cerr.New(kind, repr...)
}

func newRuntimeErrorInts(kind cerr.RuntimeErrorKind, ints ...int64) error {
	return cerr.NewWithInts(kind, ints...)
}

// Traceback is one frame of a runtime error's call stack, innermost first,
// rendered by internal/reporting.
type Traceback struct {
	FuncName string
	Pos      string
}

// Error wraps a cerr.Runtime with the call stack active when it was raised.
type Error struct {
	Err   error
	Stack []Traceback
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
