// Package stdlib is Cordy's native-function registry: every name the
// parser's nativeNames set recognizes has exactly one Entry here, binding
// the arity/variadic contract carried by value.Native to a Go closure. The
// dispatch-table shape (name -> arity + closure, looked up by lang/vm at
// call time) mirrors the teacher's own built-in registration pattern; the
// Caller interface exists purely to let a native call back into a Cordy
// function (map/filter/sorted's key, a dict's default producer) without
// this package importing lang/vm.
package stdlib

import (
	"io"

	"github.com/cordy-lang/cordy/lang/value"
)

// Caller is the subset of *vm.VM a native needs: invoking a Cordy callable,
// and writing to the program's standard output.
type Caller interface {
	Call(fn value.Callable, args []value.Value) (value.Value, error)
	Stdout() io.Writer
}

// Fn is one native's implementation, receiving its already arity-checked
// argument list.
type Fn func(c Caller, args []value.Value) (value.Value, error)

// Entry pairs a native's first-class identity (pushed by PushNativeFunction
// and compared by `is function`-style checks) with its implementation.
type Entry struct {
	Spec *value.Native
	Fn   Fn
}

var registry = map[string]*Entry{}

func register(name string, minArity int, variadic bool, fn Fn) {
	registry[name] = &Entry{Spec: &value.Native{Name: name, MinArity: minArity, Variadic: variadic}, Fn: fn}
}

// Lookup resolves a native by name to its dispatch Entry.
func Lookup(name string) (*Entry, bool) {
	e, ok := registry[name]
	return e, ok
}

// Native returns the *value.Native identity PushNativeFunction pushes for
// name, falling back to an arity-less placeholder for a name the registry
// doesn't know (codegen/parser keep nativeNames and this registry in sync,
// so this path is unreached in practice).
func Native(name string) *value.Native {
	if e, ok := registry[name]; ok {
		return e.Spec
	}
	return &value.Native{Name: name}
}
