package stdlib

import (
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/value"
)

func asInt(v value.Value) (int64, error) {
	i, ok := v.(value.Int)
	if !ok {
		return 0, cerr.New(cerr.TypeErrorArgMustBeInt, v.Repr())
	}
	return int64(i), nil
}

func asStr(v value.Value) (string, error) {
	s, ok := v.(value.Str)
	if !ok {
		return "", cerr.New(cerr.TypeErrorArgMustBeStr, v.Repr())
	}
	return string(s), nil
}

// materialize drains an Iterable (or Str, by rune) into a plain slice.
func materialize(v value.Value) ([]value.Value, error) {
	it, err := value.InitIterable(v)
	if err != nil {
		return nil, err
	}
	defer it.Done()
	var out []value.Value
	for {
		e, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

// enumerableValue lazily pairs an inner iterable's elements with their
// index, backing the `enumerate` native.
type enumerableValue struct{ inner value.Iterable }

func (e *enumerableValue) String() string      { return e.inner.String() }
func (e *enumerableValue) Repr() string        { return e.inner.Repr() }
func (*enumerableValue) Type() string          { return "iterable" }
func (e *enumerableValue) Iterate() value.Iterator {
	return value.NewEnumerate(e.inner.Iterate())
}

// zippedValue pairs up elements from two iterables positionally, stopping
// at the shorter one, backing the `zip` native.
type zippedValue struct{ a, b value.Iterable }

func (z *zippedValue) String() string { return "zip(...)" }
func (z *zippedValue) Repr() string   { return "zip(...)" }
func (*zippedValue) Type() string     { return "iterable" }
func (z *zippedValue) Iterate() value.Iterator {
	return &zipIterator{a: z.a.Iterate(), b: z.b.Iterate()}
}

type zipIterator struct{ a, b value.Iterator }

func (z *zipIterator) Next() (value.Value, bool) {
	av, aok := z.a.Next()
	bv, bok := z.b.Next()
	if !aok || !bok {
		return nil, false
	}
	return value.NewVector([]value.Value{av, bv}), true
}
func (z *zipIterator) Done() { z.a.Done(); z.b.Done() }

// asIterable returns v directly when it's already Iterable (so a lazy
// RangeValue stays lazy through enumerate/zip); anything else InitIterable
// accepts (notably Str, which iterates by rune but has no Iterate method of
// its own) is eagerly drained into a *value.List instead.
func asIterable(v value.Value) (value.Iterable, error) {
	if it, ok := v.(value.Iterable); ok {
		return it, nil
	}
	items, err := materialize(v)
	if err != nil {
		return nil, err
	}
	return value.NewList(items), nil
}
