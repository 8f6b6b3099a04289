package vm

import (
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/stdlib"
	"github.com/cordy-lang/cordy/lang/value"
)

// call is the single entry point every call opcode (and any stdlib native
// that itself invokes a callback, e.g. Dict.GetOrDefault's producer, or
// sorted's key function) funnels through. It implements the six-case
// calling convention: native, partial-native, user function/closure,
// memoized, struct constructor, and field accessor - with partial
// application applying uniformly to any under-supplied callable.
func (m *VM) call(callee value.Value, args []value.Value) (value.Value, error) {
	switch c := callee.(type) {
	case *value.Native:
		return m.callNative(c, args)
	case *value.PartialNative:
		combined := append(append([]value.Value{}, c.Bound...), args...)
		return m.callNative(c.Fn, combined)
	case *value.Function:
		return m.callFunction(c, nil, args)
	case *value.Closure:
		return m.callFunction(c.Fn, c, args)
	case *value.PartialFunction:
		combined := append(append([]value.Value{}, c.Bound...), args...)
		return m.call(c.Fn, combined)
	case *value.Memoized:
		return m.callMemoized(c, args)
	case *value.ConstFunc:
		return c.V, nil
	case *value.StructType:
		if len(args) != len(c.Fields) {
			return nil, newRuntimeErrorInts(cerr.IncorrectNumberOfFunctionArguments, int64(len(c.Fields)), int64(len(args)))
		}
		return &value.Struct{TypeOf: c, Values: append([]value.Value{}, args...)}, nil
	case *fieldAccessor:
		if len(args) < 1 {
			return &value.PartialFunction{Fn: c, Bound: args}, nil
		}
		ha, ok := args[0].(value.HasAttrs)
		if !ok {
			return nil, newRuntimeError(cerr.ValueErrorNoSuchField, args[0].Repr())
		}
		return ha.GetField(c.id)
	default:
		return nil, newRuntimeError(cerr.ValueIsNotFunctionEvaluable, callee.Repr())
	}
}

func (m *VM) callNative(n *value.Native, args []value.Value) (value.Value, error) {
	if len(args) < n.MinArity {
		return &value.PartialNative{Fn: n, Bound: args}, nil
	}
	if !n.Variadic && len(args) > n.MinArity {
		return nil, &cerr.Runtime{Kind: cerr.IncorrectNumberOfArguments, Native: n.Name, Ints: []int64{int64(n.MinArity), int64(len(args))}}
	}
	entry, ok := stdlib.Lookup(n.Name)
	if !ok {
		return nil, newRuntimeError(cerr.ValueIsNotFunctionEvaluable, n.Repr())
	}
	return entry.Fn(m, args)
}

func (m *VM) callFunction(fn *value.Function, closure *value.Closure, args []value.Value) (value.Value, error) {
	fc := m.prog.Functions[fn.FuncIndex]
	if len(args) < minArgs(fc) {
		return &value.PartialFunction{Fn: calleeOf(fn, closure), Bound: args}, nil
	}
	f := newFrame(fc, closure)
	if err := bindArgs(fc, f.locals, args); err != nil {
		return nil, err
	}
	return m.runFrame(f)
}

// calleeOf returns the value a PartialFunction should remember as Fn: the
// closure if there is one (so further partial application still carries its
// captured cells), otherwise the bare function.
func calleeOf(fn *value.Function, closure *value.Closure) value.Callable {
	if closure != nil {
		return closure
	}
	return fn
}

func (m *VM) callMemoized(mz *value.Memoized, args []value.Value) (value.Value, error) {
	key := memoKey(args)
	if v, ok := mz.Lookup(key); ok {
		return v, nil
	}
	v, err := m.call(mz.Fn, args)
	if err != nil {
		return nil, err
	}
	mz.Store(key, v)
	return v, nil
}

// memoKey renders an argument tuple to a stable cache key. Repr() is
// deterministic over a value's structure, so concatenating each argument's
// Repr with a separator that cannot appear inside one (Repr never emits a
// raw unit-separator byte) gives distinct keys for distinct tuples without
// needing a second, general-purpose structural-hash code path.
func memoKey(args []value.Value) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(a.Repr())
	}
	return b.String()
}

// Call implements stdlib.Caller, letting native functions (map/filter/sort
// key functions, a dict's default producer, ...) invoke back into Cordy
// callables without lang/stdlib importing lang/vm.
func (m *VM) Call(fn value.Callable, args []value.Value) (value.Value, error) {
	return m.call(fn, args)
}
