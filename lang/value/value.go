// Package value implements Cordy's runtime value universe: the tagged union
// of scalars, native reference types and callables described in the design
// (see SPEC_FULL.md ss3.1), plus the polymorphic operators and collection
// primitives that opcodes dispatch to. The design mirrors the capability
// interfaces used by the teacher VM (Iterable, Indexable, HasSetIndex, ...)
// so that the execution loop in lang/vm can stay a thin dispatcher over
// these methods rather than a giant type switch.
package value

// Value is implemented by every runtime value.
type Value interface {
	String() string // human-readable rendering, used by print/str()
	Repr() string    // machine-ish rendering, used in error messages and REPL echo
	Type() string    // short type name, e.g. "int", "list", "function"
}

// Iterable values can produce an Iterator. Callers close an Iterator with
// Done once they are finished with it; the iterators in this package hold
// no resources, so their Done does nothing.
type Iterable interface {
	Value
	Iterate() Iterator
}

// Iterator produces a sequence of values. Next returns (value, true) while
// there are elements remaining, or (nil, false) once exhausted.
type Iterator interface {
	Next() (Value, bool)
	Done()
}

// Lenable values know their length without consuming an iterator.
type Lenable interface {
	Value
	Len() int
}

// Indexable values support `v[i]` / `v[i] = x`. Index implementations
// receive an already-normalized (non-negative, in-bounds) index; bounds and
// negative-index translation are handled by the indexing/slicing helpers in
// slicing.go so every indexable type doesn't need to repeat that logic.
type Indexable interface {
	Lenable
	GetIndex(i int) (Value, error)
}

// HasSetIndex is an Indexable that additionally supports assignment.
type HasSetIndex interface {
	Indexable
	SetIndex(i int, v Value) error
}

// Sliceable values can build a new value of the same kind from a sequence of
// indices (produced by the slicing helper in slicing.go).
type Sliceable interface {
	Indexable
	NewSlice(indices []int) (Value, error)
}

// Mapping is implemented by Dict.
type Mapping interface {
	Value
	Get(k Value) (Value, bool, error)
}

// HasSetKey is a Mapping that additionally supports assignment.
type HasSetKey interface {
	Mapping
	SetKey(k, v Value) error
}

// HasAttrs is implemented by struct instances for `x->field` access.
type HasAttrs interface {
	Value
	GetField(id int) (Value, error)
}

// HasSetField is a HasAttrs that additionally supports `x->field = v`.
type HasSetField interface {
	HasAttrs
	SetField(id int, v Value) error
}

// Callable values may appear as the target of a call opcode.
type Callable interface {
	Value
	// Arity returns the number of arguments this callable declares, and
	// whether it is "variadic at least N" (in which case more than N
	// arguments are accepted and Arity is the minimum N).
	Arity() (n int, variadic bool)
}

// Truth implements Cordy's truthiness rule: every value is truthy except
// Nil, False, the int 0, and the empty forms of collections/strings.
func Truth(v Value) bool {
	switch v := v.(type) {
	case NilType:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Str:
		return len(v) != 0
	case Lenable:
		return v.Len() != 0
	default:
		return true
	}
}

// TypeName is a convenience wrapper so callers that only have an interface{}
// of unknown provenance can still render a type name safely.
func TypeName(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type()
}
