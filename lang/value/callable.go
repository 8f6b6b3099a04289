package value

import (
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// Native identifies one of the stdlib's built-in functions by name; the
// stdlib package holds the actual Go implementation and arity table, so
// this type only needs to carry enough to be pushed, compared and printed
// as a first-class value.
type Native struct {
	Name     string
	MinArity int
	Variadic bool
}

func (n *Native) String() string         { return n.Name }
func (n *Native) Repr() string           { return "fn " + n.Name }
func (*Native) Type() string             { return "native function" }
func (n *Native) Arity() (int, bool)     { return n.MinArity, n.Variadic }

// Function is a compiled user-defined function (by index into the
// program's Funcode table). A Function with no free variables is called
// directly; one with free variables must first be closed over via Closure.
type Function struct {
	Name      string
	FuncIndex int
	NumParams int
	Variadic  bool
	Defaults  int // number of trailing parameters with default expressions
}

func (f *Function) String() string { return "fn " + f.Name }
func (f *Function) Repr() string {
	if f.Name == "" {
		return "fn <anonymous>"
	}
	return "fn " + f.Name
}
func (*Function) Type() string { return "function" }
func (f *Function) Arity() (int, bool) {
	return f.NumParams - f.Defaults, f.Variadic
}

// Closure pairs a Function with the upvalue cells it captured at creation
// time.
type Closure struct {
	Fn    *Function
	Cells []*Cell
}

func (c *Closure) String() string             { return c.Fn.String() }
func (c *Closure) Repr() string                { return c.Fn.Repr() }
func (*Closure) Type() string                  { return "function" }
func (c *Closure) Arity() (int, bool)          { return c.Fn.Arity() }

// Cell is an upvalue box: open while it still aliases a slot on some
// frame's stack, closed once that frame returns and the value is copied in.
type Cell struct {
	Open  bool
	Stack []Value // shared backing array of the owning frame, while Open
	Index int     // index into Stack, while Open
	Value Value   // the closed-over value, once !Open
}

func (c *Cell) Get() Value {
	if c.Open {
		return c.Stack[c.Index]
	}
	return c.Value
}

func (c *Cell) Set(v Value) {
	if c.Open {
		c.Stack[c.Index] = v
		return
	}
	c.Value = v
}

func (c *Cell) Close() {
	if c.Open {
		c.Value = c.Stack[c.Index]
		c.Open = false
		c.Stack = nil
	}
}

// PartialNative is a native function with some leading arguments already
// bound, produced at run time by explicit user partial application
// (`f(1, 2)` where f needs 3 args). The optimizer does not merge partial
// calls, so it never produces one.
type PartialNative struct {
	Fn    *Native
	Bound []Value
}

func (p *PartialNative) String() string { return p.Fn.String() }
func (p *PartialNative) Repr() string   { return p.Fn.Repr() }
func (*PartialNative) Type() string     { return "function" }
func (p *PartialNative) Arity() (int, bool) {
	n, variadic := p.Fn.Arity()
	return n - len(p.Bound), variadic
}

// PartialFunction is the closure/user-function analogue of PartialNative.
type PartialFunction struct {
	Fn    Callable // *Function or *Closure
	Bound []Value
}

func (p *PartialFunction) String() string { return p.Fn.String() }
func (p *PartialFunction) Repr() string   { return p.Fn.Repr() }
func (*PartialFunction) Type() string     { return "function" }
func (p *PartialFunction) Arity() (int, bool) {
	n, variadic := p.Fn.Arity()
	return n - len(p.Bound), variadic
}

// StructType is the callable constructor produced by a `struct` decl; the
// call creates a Struct instance from positional arguments. FieldIDs are
// indices into the program-wide field-name table (compiler.Program.FieldNames),
// parallel to Fields, so GetField/SetField can resolve `x->foo` against any
// struct type by the global id assigned when the parser first saw `->foo`.
type StructType struct {
	Name     string
	Fields   []string
	FieldIDs []int
}

// fieldPos returns the position within Fields/Values that id refers to, or
// -1 if this struct type has no such field.
func (s *StructType) fieldPos(id int) int {
	for i, fid := range s.FieldIDs {
		if fid == id {
			return i
		}
	}
	return -1
}

func (s *StructType) String() string { return s.Name }
func (s *StructType) Repr() string   { return "struct " + s.Name }
func (*StructType) Type() string     { return "struct type" }
func (s *StructType) Arity() (int, bool) { return len(s.Fields), false }

// Struct is an instance of a StructType.
type Struct struct {
	TypeOf *StructType
	Values []Value
}

func (s *Struct) String() string { return s.render(false) }
func (s *Struct) Repr() string   { return s.render(true) }
func (*Struct) Type() string     { return "struct" }

func (s *Struct) render(repr bool) string {
	var b strings.Builder
	b.WriteString(s.TypeOf.Name)
	b.WriteByte('(')
	for i, v := range s.Values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.TypeOf.Fields[i])
		b.WriteString("=")
		if repr {
			b.WriteString(v.Repr())
		} else {
			b.WriteString(v.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (s *Struct) GetField(id int) (Value, error) {
	pos := s.TypeOf.fieldPos(id)
	if pos < 0 {
		return nil, cerr.New(cerr.ValueErrorNoSuchField, s.Repr())
	}
	return s.Values[pos], nil
}

func (s *Struct) SetField(id int, v Value) error {
	pos := s.TypeOf.fieldPos(id)
	if pos < 0 {
		return cerr.New(cerr.ValueErrorNoSuchField, s.Repr())
	}
	s.Values[pos] = v
	return nil
}

func (s *Struct) Equal(other Value, seen map[any]bool) (bool, error) {
	os, ok := other.(*Struct)
	if !ok || os.TypeOf != s.TypeOf {
		return false, nil
	}
	if err := enterGuard(seen, s); err != nil {
		return false, err
	}
	defer delete(seen, s)
	for i := range s.Values {
		eq, err := equalSeen(s.Values[i], os.Values[i], seen)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

// ConstFunc wraps a plain value as a 0-arg Callable, used by Dict.Default
// when dict_set_default's argument isn't itself callable: the producer is
// "invoked" by simply returning the wrapped value, regardless of args.
type ConstFunc struct{ V Value }

func (f *ConstFunc) String() string     { return f.V.String() }
func (f *ConstFunc) Repr() string       { return f.V.Repr() }
func (*ConstFunc) Type() string         { return "function" }
func (f *ConstFunc) Arity() (int, bool) { return 0, false }

// Memoized wraps a Callable whose results are cached by argument tuple,
// produced by the `memoize` native and dispatched by the VM's call path.
type Memoized struct {
	Fn    Callable
	cache map[string]Value
}

func NewMemoized(fn Callable) *Memoized { return &Memoized{Fn: fn, cache: map[string]Value{}} }

func (m *Memoized) String() string     { return m.Fn.String() }
func (m *Memoized) Repr() string       { return m.Fn.Repr() }
func (*Memoized) Type() string         { return "function" }
func (m *Memoized) Arity() (int, bool) { return m.Fn.Arity() }

func (m *Memoized) Lookup(key string) (Value, bool) {
	v, ok := m.cache[key]
	return v, ok
}

func (m *Memoized) Store(key string, v Value) { m.cache[key] = v }
