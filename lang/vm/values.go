package vm

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/value"
)

// The types in this file are internal operand-stack bookkeeping: they
// satisfy value.Value so they can sit on the shared stack between
// instructions, but no bytecode sequence the compiler emits ever lets one
// escape to a PushLocal/StoreGlobal/Return or otherwise reach Cordy code.

// spreadValues is what OpUnroll pushes in place of the iterable it
// consumed: a call-argument slot that expands into zero or more logical
// arguments when OpFuncEvalUnrolled flattens the argument list.
type spreadValues struct{ items []value.Value }

func (s *spreadValues) String() string { return "<spread>" }
func (s *spreadValues) Repr() string   { return "<spread>" }
func (*spreadValues) Type() string     { return "spread" }

// iterValue wraps a value.Iterator on the operand stack for the duration of
// a for-loop, so TestIterable can repeatedly peek it. close releases the
// iterator's resources when it is exhausted or when an error unwinds
// through the loop; a break pops it off the stack without calling close.
type iterValue struct {
	it     value.Iterator
	closed bool
}

func (i *iterValue) String() string { return "<iterator>" }
func (i *iterValue) Repr() string   { return "<iterator>" }
func (*iterValue) Type() string     { return "iterator" }

func (i *iterValue) close() {
	if !i.closed {
		i.it.Done()
		i.closed = true
	}
}

// literalBuilder accumulates the elements of a List/Vector/Set/Dict literal
// between LiteralBegin and LiteralEnd. For a dict, LiteralAcc calls arrive
// as alternating key/value pairs (each its own instruction sequence), so acc
// tracks a pending key across calls.
type literalBuilder struct {
	kind          ast.LiteralKind
	items         []value.Value
	pendingKey    value.Value
	hasPendingKey bool
}

func newLiteralBuilder(kind ast.LiteralKind) *literalBuilder {
	return &literalBuilder{kind: kind}
}

func (b *literalBuilder) String() string { return "<literal builder>" }
func (b *literalBuilder) Repr() string   { return "<literal builder>" }
func (*literalBuilder) Type() string     { return "literal builder" }

func (b *literalBuilder) acc(v value.Value) {
	if b.kind != ast.LiteralDict {
		b.items = append(b.items, v)
		return
	}
	if !b.hasPendingKey {
		b.pendingKey = v
		b.hasPendingKey = true
		return
	}
	b.items = append(b.items, b.pendingKey, v)
	b.hasPendingKey = false
}

func (b *literalBuilder) unroll(v value.Value) error {
	if b.kind == ast.LiteralDict {
		d, ok := v.(*value.Dict)
		if !ok {
			return cerr.New(cerr.TypeErrorArgMustBeDict, v.Repr())
		}
		for _, k := range d.Keys() {
			val, _, err := d.Get(k)
			if err != nil {
				return err
			}
			b.items = append(b.items, k, val)
		}
		return nil
	}
	it, err := value.InitIterable(v)
	if err != nil {
		return err
	}
	defer it.Done()
	for {
		elem, ok := it.Next()
		if !ok {
			break
		}
		b.items = append(b.items, elem)
	}
	return nil
}

func (b *literalBuilder) build() (value.Value, error) {
	switch b.kind {
	case ast.LiteralList:
		return value.NewList(append([]value.Value{}, b.items...)), nil
	case ast.LiteralVector:
		return value.NewVector(append([]value.Value{}, b.items...)), nil
	case ast.LiteralSet:
		return value.NewSet(append([]value.Value{}, b.items...))
	case ast.LiteralDict:
		pairs := make([][2]value.Value, 0, len(b.items)/2)
		for i := 0; i+1 < len(b.items); i += 2 {
			pairs = append(pairs, [2]value.Value{b.items[i], b.items[i+1]})
		}
		return value.NewDict(pairs)
	}
	return value.Nil, nil
}

// fieldAccessor is the first-class value produced by `->field` syntax
// (ast.GetFieldFunctionExpr / the GetFieldFunction opcode): a one-argument
// callable that reads FieldID off whatever it's applied to.
type fieldAccessor struct {
	id   int
	name string
}

func (f *fieldAccessor) String() string      { return "fn ->" + f.name }
func (f *fieldAccessor) Repr() string        { return "fn ->" + f.name }
func (*fieldAccessor) Type() string          { return "function" }
func (f *fieldAccessor) Arity() (int, bool)  { return 1, false }
