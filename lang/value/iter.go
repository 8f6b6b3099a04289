package value

import (
	"strconv"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// InitIterable resolves the operand of a `for` loop (or `OpIndex`-adjacent
// iteration opcode) to an Iterator: Str iterates by rune, and anything
// Iterable uses its own Iterate.
func InitIterable(v Value) (Iterator, error) {
	switch v := v.(type) {
	case Str:
		runes := []rune(string(v))
		items := make([]Value, len(runes))
		for i, r := range runes {
			items[i] = Str(string(r))
		}
		return &sliceIterator{items: items}, nil
	case Iterable:
		return v.Iterate(), nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, v.Repr())
}

// RangeIterator implements the `range(...)` native: a lazily-stepped
// integer sequence so `range(10**18)` doesn't allocate.
type RangeIterator struct {
	cur, stop, step int64
	done            bool
}

func NewRange(start, stop, step int64) (*RangeIterator, error) {
	if step == 0 {
		return nil, cerr.New(cerr.ValueErrorStepCannotBeZero)
	}
	return &RangeIterator{cur: start, stop: stop, step: step}, nil
}

func (r *RangeIterator) Next() (Value, bool) {
	if r.done {
		return nil, false
	}
	if r.step > 0 && r.cur >= r.stop || r.step < 0 && r.cur <= r.stop {
		r.done = true
		return nil, false
	}
	v := Int(r.cur)
	r.cur += r.step
	return v, true
}
func (r *RangeIterator) Done() {}

// RangeValue is the first-class value produced by `range(...)`; it is
// Iterable but otherwise opaque (not indexable), matching the original's
// lazy range object.
type RangeValue struct {
	Start, Stop, Step int64
}

func (r RangeValue) String() string { return r.Repr() }
func (r RangeValue) Repr() string {
	return "range(" + strconv.FormatInt(r.Start, 10) + ", " + strconv.FormatInt(r.Stop, 10) + ", " + strconv.FormatInt(r.Step, 10) + ")"
}
func (RangeValue) Type() string { return "range" }
func (r RangeValue) Iterate() Iterator {
	it, _ := NewRange(r.Start, r.Stop, r.Step)
	return it
}

// EnumerateIterator pairs each element of an inner iterator with its index
// as a 2-element Vector, backing the `enumerate` native.
type EnumerateIterator struct {
	inner Iterator
	i     int
}

func NewEnumerate(inner Iterator) *EnumerateIterator { return &EnumerateIterator{inner: inner} }

func (e *EnumerateIterator) Next() (Value, bool) {
	v, ok := e.inner.Next()
	if !ok {
		return nil, false
	}
	pair := NewVector([]Value{Int(e.i), v})
	e.i++
	return pair, true
}
func (e *EnumerateIterator) Done() { e.inner.Done() }
