package vm

import (
	"io"

	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/stdlib"
	"github.com/cordy-lang/cordy/lang/value"
)

// VM runs a compiled Program. Each active call gets its own frame with its
// own fixed-size locals array; the operand stack used to evaluate
// expressions within a frame is shared across the whole VM (not per-frame),
// matching the teacher machine's single-Thread-wide value stack. Cordy's own
// call stack is backed directly by Go's: callFunction recurses into
// runFrame rather than pushing onto an explicit frame slice, which keeps the
// dispatch loop a single flat switch per function body.
type VM struct {
	prog     *compiler.Program
	consts   []value.Value
	globals  []value.Value
	stack    []value.Value
	stdout   io.Writer
	natives  []*value.Native
}

// Load builds a VM ready to run prog, writing any print() output to stdout.
func Load(prog *compiler.Program, stdout io.Writer) *VM {
	m := &VM{prog: prog, stdout: stdout}
	m.resync()
	return m
}

// Reload resyncs the VM against its Program after the REPL driver has
// grown it (a new entry's CompileModule call appends to the same
// Generator-owned Program rather than building a fresh one, so previously
// compiled functions/constants/natives keep their indices). Global slots
// already holding a value from a prior entry are left untouched; only the
// newly added slots are initialized to nil - this is what lets `let x = 1`
// in one REPL entry stay visible to `x + 1` in the next.
func (m *VM) Reload() {
	m.resync()
}

func (m *VM) resync() {
	prog := m.prog
	if grow := len(prog.Globals) - len(m.globals); grow > 0 {
		m.globals = append(m.globals, make([]value.Value, grow)...)
		for i := len(m.globals) - grow; i < len(m.globals); i++ {
			m.globals[i] = value.Nil
		}
	} else if m.globals == nil {
		m.globals = make([]value.Value, len(prog.Globals))
		for i := range m.globals {
			m.globals[i] = value.Nil
		}
	}

	m.consts = make([]value.Value, len(prog.Constants))
	for i, c := range prog.Constants {
		switch c.Kind {
		case compiler.ConstInt:
			m.consts[i] = value.Int(c.Int)
		case compiler.ConstStr:
			m.consts[i] = value.Str(c.Str)
		case compiler.ConstFunction:
			fn := prog.Functions[c.FuncIndex]
			m.consts[i] = &value.Function{
				Name:      fn.Name,
				FuncIndex: c.FuncIndex,
				NumParams: fn.NumParams,
				Variadic:  fn.Variadic,
				Defaults:  fn.Defaults,
			}
		case compiler.ConstStructType:
			def := prog.Structs[c.FuncIndex]
			m.consts[i] = &value.StructType{Name: def.Name, Fields: def.Fields, FieldIDs: def.FieldIDs}
		}
	}
	m.natives = make([]*value.Native, len(prog.NativeFunctions))
	for i, name := range prog.NativeFunctions {
		m.natives[i] = stdlib.Native(name)
	}
}

func (m *VM) Stdout() io.Writer { return m.stdout }

// SetGlobal assigns v to the global named name (e.g. the CLI's "args"
// binding for program arguments), reporting whether the program declares
// a global by that name at all.
func (m *VM) SetGlobal(name string, v value.Value) bool {
	for i, g := range m.prog.Globals {
		if g == name {
			m.globals[i] = v
			return true
		}
	}
	return false
}

// Run executes the program's entry function (the top-level script body)
// and returns its result - the value of the last expression statement, or
// nil, mirroring the REPL's expression-echo convention.
func (m *VM) Run() (value.Value, error) {
	entry := m.prog.Functions[m.prog.Entry]
	f := newFrame(entry, nil)
	return m.runFrame(f)
}

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() value.Value {
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *VM) popN(n int) []value.Value {
	out := append([]value.Value{}, m.stack[len(m.stack)-n:]...)
	m.stack = m.stack[:len(m.stack)-n]
	return out
}

func (m *VM) peek() value.Value { return m.stack[len(m.stack)-1] }

func (m *VM) peekAt(fromTop int) value.Value { return m.stack[len(m.stack)-1-fromTop] }

// runFrame executes f's bytecode to completion (a Return). When f exits
// with an error, it unwinds f's portion of the shared operand stack,
// closing any live iterator left on it.
func (m *VM) runFrame(f *frame) (value.Value, error) {
	base := len(m.stack)
	v, err := m.dispatch(f)
	if err != nil {
		m.unwindFrom(base)
		return nil, m.wrapError(f, err)
	}
	return v, nil
}

// unwindFrom closes any *iterValue left on the stack at or above base (a
// for-loop's iterator, abandoned mid-iteration by an error) and truncates
// the stack back to base.
func (m *VM) unwindFrom(base int) {
	for i := base; i < len(m.stack); i++ {
		if it, ok := m.stack[i].(*iterValue); ok {
			it.close()
		}
	}
	m.stack = m.stack[:base]
}

// wrapError attaches f's current position to err's traceback, building one
// up as the error unwinds back out through every enclosing runFrame call.
func (m *VM) wrapError(f *frame, err error) error {
	pos := "?"
	if f.ip-1 >= 0 && f.ip-1 < len(f.fn.Positions) {
		pos = f.fn.Positions[f.ip-1].String()
	}
	tb := Traceback{FuncName: f.fn.Name, Pos: pos}
	if e, ok := err.(*Error); ok {
		e.Stack = append(e.Stack, tb)
		return e
	}
	return &Error{Err: err, Stack: []Traceback{tb}}
}

func (m *VM) dispatch(f *frame) (value.Value, error) {
	var builders []*literalBuilder
	for {
		instr := f.fn.Code[f.ip]
		f.ip++
		op := instr.Op
		switch op {
		case compiler.Noop:

		case compiler.Jump:
			f.ip += int(instr.Operand)
		case compiler.JumpIfFalse:
			if !value.Truth(m.peek()) {
				f.ip += int(instr.Operand)
			}
		case compiler.JumpIfFalsePop:
			if !value.Truth(m.pop()) {
				f.ip += int(instr.Operand)
			}
		case compiler.JumpIfTrue:
			if value.Truth(m.peek()) {
				f.ip += int(instr.Operand)
			}
		case compiler.JumpIfTruePop:
			if value.Truth(m.pop()) {
				f.ip += int(instr.Operand)
			}

		case compiler.Return:
			v := m.pop()
			f.closeCells()
			return v, nil

		case compiler.Pop:
			m.pop()
		case compiler.PopN:
			m.popN(int(instr.Operand))
		case compiler.Dup:
			m.push(m.peek())
		case compiler.Swap:
			n := len(m.stack)
			m.stack[n-1], m.stack[n-2] = m.stack[n-2], m.stack[n-1]

		case compiler.PushLocal:
			m.push(f.locals[instr.Operand])
		case compiler.StoreLocal:
			f.locals[instr.Operand] = m.pop()
		case compiler.PushGlobal:
			m.push(m.globals[instr.Operand])
		case compiler.StoreGlobal:
			m.globals[instr.Operand] = m.pop()
		case compiler.PushUpValue:
			m.push(f.closure.Cells[instr.Operand].Get())
		case compiler.StoreUpValue:
			f.closure.Cells[instr.Operand].Set(m.pop())
		case compiler.StoreArray:
			rhs := m.pop()
			index := m.pop()
			target := m.pop()
			if err := m.storeIndexed(target, index, rhs); err != nil {
				return nil, err
			}
			m.push(rhs)
		case compiler.IncGlobalCount:
			// No-op for a whole-program run: globals is already sized to
			// len(prog.Globals) at load time. The REPL's incremental growth
			// is handled by reloading the program between lines instead.

		case compiler.Closure:
			n := int(instr.Operand)
			cells := make([]*value.Cell, n)
			copy(cells, f.pending[len(f.pending)-n:])
			f.pending = f.pending[:len(f.pending)-n]
			fnVal := m.pop().(*value.Function)
			m.push(&value.Closure{Fn: fnVal, Cells: cells})
		case compiler.CloseLocal:
			f.pending = append(f.pending, f.cells[instr.Operand])
		case compiler.CloseUpValue, compiler.LiftUpValue:
			f.pending = append(f.pending, f.closure.Cells[instr.Operand])

		case compiler.InitIterable:
			it, err := value.InitIterable(m.pop())
			if err != nil {
				return nil, err
			}
			m.push(&iterValue{it: it})
		case compiler.TestIterable:
			iv := m.peek().(*iterValue)
			elem, ok := iv.it.Next()
			if !ok {
				iv.close()
				m.push(value.Bool(false))
				continue
			}
			m.push(elem)
			m.push(value.Bool(true))

		case compiler.PushNil:
			m.push(value.Nil)
		case compiler.PushTrue:
			m.push(value.Bool(true))
		case compiler.PushFalse:
			m.push(value.Bool(false))
		case compiler.PushConstant:
			m.push(m.consts[instr.Operand])
		case compiler.PushNativeFunction:
			m.push(m.natives[instr.Operand])

		case compiler.LiteralBegin:
			builders = append(builders, newLiteralBuilder(ast.LiteralKind(instr.Operand)))
		case compiler.LiteralAcc:
			builders[len(builders)-1].acc(m.pop())
		case compiler.LiteralUnroll:
			if err := builders[len(builders)-1].unroll(m.pop()); err != nil {
				return nil, err
			}
		case compiler.LiteralEnd:
			b := builders[len(builders)-1]
			builders = builders[:len(builders)-1]
			v, err := b.build()
			if err != nil {
				return nil, err
			}
			m.push(v)

		case compiler.CheckLengthGreaterThan:
			l, ok := m.peek().(value.Lenable)
			if !ok {
				return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, m.peek().Repr())
			}
			if l.Len() <= int(instr.Operand) {
				return nil, cerr.NewWithInts(cerr.ValueErrorCannotUnpackLengthMustBeGreaterThan, int64(instr.Operand), int64(l.Len()))
			}
		case compiler.CheckLengthEqualTo:
			l, ok := m.peek().(value.Lenable)
			if !ok {
				return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, m.peek().Repr())
			}
			if l.Len() != int(instr.Operand) {
				return nil, cerr.NewWithInts(cerr.ValueErrorCannotUnpackLengthMustBeEqual, int64(instr.Operand), int64(l.Len()))
			}

		case compiler.OpFuncEval:
			n := int(instr.Operand)
			args := m.popN(n)
			callee := m.pop()
			v, err := m.call(callee, args)
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.OpFuncEvalUnrolled:
			n := int(instr.Operand)
			slots := m.popN(n)
			callee := m.pop()
			var args []value.Value
			for _, s := range slots {
				if sp, ok := s.(*spreadValues); ok {
					args = append(args, sp.items...)
				} else {
					args = append(args, s)
				}
			}
			v, err := m.call(callee, args)
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.OpUnroll:
			items, err := materializeValue(m.pop())
			if err != nil {
				return nil, err
			}
			m.push(&spreadValues{items: items})

		case compiler.OpIndex:
			index := m.pop()
			target := m.pop()
			v, err := m.index(target, index)
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.OpIndexPeek:
			index := m.peek()
			target := m.peekAt(1)
			v, err := m.index(target, index)
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.OpSlice:
			high := m.pop()
			low := m.pop()
			target := m.pop()
			v, err := m.slice(target, low, high, value.Nil, false)
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.OpSliceWithStep:
			step := m.pop()
			high := m.pop()
			low := m.pop()
			target := m.pop()
			v, err := m.slice(target, low, high, step, true)
			if err != nil {
				return nil, err
			}
			m.push(v)

		case compiler.GetField:
			target := m.pop()
			ha, ok := target.(value.HasAttrs)
			if !ok {
				return nil, cerr.New(cerr.ValueErrorNoSuchField, target.Repr())
			}
			v, err := ha.GetField(int(instr.Operand))
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.GetFieldPeek:
			target := m.peek()
			ha, ok := target.(value.HasAttrs)
			if !ok {
				return nil, cerr.New(cerr.ValueErrorNoSuchField, target.Repr())
			}
			v, err := ha.GetField(int(instr.Operand))
			if err != nil {
				return nil, err
			}
			m.push(v)
		case compiler.GetFieldFunction:
			m.push(&fieldAccessor{id: int(instr.Operand), name: m.prog.FieldNames[instr.Operand]})
		case compiler.SetField:
			rhs := m.pop()
			target := m.pop()
			hs, ok := target.(value.HasSetField)
			if !ok {
				return nil, cerr.New(cerr.ValueErrorNoSuchField, target.Repr())
			}
			if err := hs.SetField(int(instr.Operand), rhs); err != nil {
				return nil, err
			}
			m.push(rhs)

		case compiler.Unary:
			v := m.pop()
			r, err := m.unary(ast.UnOp(instr.Operand), v)
			if err != nil {
				return nil, err
			}
			m.push(r)
		case compiler.Binary:
			b := m.pop()
			a := m.pop()
			r, err := m.binary(ast.BinOp(instr.Operand), a, b)
			if err != nil {
				return nil, err
			}
			m.push(r)

		case compiler.Exit:
			return nil, cerr.New(cerr.RuntimeExit)
		case compiler.Yield:
			return nil, cerr.New(cerr.RuntimeYield)
		case compiler.AssertFailed:
			idx := int(instr.Operand)
			e := m.prog.RuntimeErrors[idx]
			return nil, &e

		default:
			return nil, cerr.New(cerr.ValueIsNotFunctionEvaluable, "Op("+op.String()+")")
		}
	}
}

func materializeValue(v value.Value) ([]value.Value, error) {
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

func (m *VM) index(target, index value.Value) (value.Value, error) {
	if d, ok := target.(*value.Dict); ok {
		return d.GetOrDefault(index, m.Call)
	}
	idx, ok := target.(value.Indexable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, target.Repr())
	}
	return value.GetIndexed(idx, index)
}

func (m *VM) storeIndexed(target, index, v value.Value) error {
	if d, ok := target.(*value.Dict); ok {
		return d.SetKey(index, v)
	}
	hs, ok := target.(value.HasSetIndex)
	if !ok {
		return cerr.New(cerr.TypeErrorArgMustBeIndexable, target.Repr())
	}
	return value.SetIndexed(hs, index, v)
}

func (m *VM) slice(target, low, high, step value.Value, hasStep bool) (value.Value, error) {
	s, ok := target.(value.Sliceable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeSliceable, target.Repr())
	}
	indices, err := value.Indices(s, low, high, step, true, true, hasStep)
	if err != nil {
		return nil, err
	}
	return s.NewSlice(indices)
}

func (m *VM) unary(op ast.UnOp, v value.Value) (value.Value, error) {
	switch op {
	case ast.UnarySub:
		return value.UnarySub(v)
	case ast.UnaryNot:
		return value.UnaryNot(v)
	case ast.UnaryBitwiseNot:
		return value.UnaryBitwiseNot(v)
	}
	return nil, cerr.New(cerr.TypeErrorUnaryOp, v.Repr())
}

type binFunc func(a, b value.Value) (value.Value, error)

var arithOps = map[ast.BinOp]binFunc{
	ast.OpAdd:         value.Add,
	ast.OpSub:         value.Sub,
	ast.OpMul:         value.Mul,
	ast.OpDiv:         value.Div,
	ast.OpMod:         value.Mod,
	ast.OpPow:         value.Pow,
	ast.OpLeftShift:   value.LeftShift,
	ast.OpRightShift:  value.RightShift,
	ast.OpBitwiseAnd:  value.BitwiseAnd,
	ast.OpBitwiseOr:   value.BitwiseOr,
}

func (m *VM) binary(op ast.BinOp, a, b value.Value) (value.Value, error) {
	if fn, ok := arithOps[op]; ok {
		av, aIsVec := a.(*value.Vector)
		bv, bIsVec := b.(*value.Vector)
		if aIsVec && bIsVec {
			return value.ElementwiseBinary(fn, av, bv)
		}
		return fn(a, b)
	}
	switch op {
	case ast.OpLessThan, ast.OpGreaterThan, ast.OpLessThanEqual, ast.OpGreaterThanEqual:
		c, err := value.Compare(a, b)
		if err != nil {
			return nil, err
		}
		switch op {
		case ast.OpLessThan:
			return value.Bool(c < 0), nil
		case ast.OpGreaterThan:
			return value.Bool(c > 0), nil
		case ast.OpLessThanEqual:
			return value.Bool(c <= 0), nil
		default:
			return value.Bool(c >= 0), nil
		}
	case ast.OpEqual, ast.OpNotEqual:
		eq, err := value.Equal(a, b)
		if err != nil {
			return nil, err
		}
		if op == ast.OpNotEqual {
			eq = !eq
		}
		return value.Bool(eq), nil
	case ast.OpIn:
		return value.In(a, b)
	case ast.OpIs:
		return m.is(a, b)
	}
	return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
}

// is implements `x is T`: T is either a native type tag (compared against
// a.Type()) or a struct constructor (compared by identity against a
// *value.Struct's own type).
func (m *VM) is(a, b value.Value) (value.Value, error) {
	switch t := b.(type) {
	case *value.Native:
		return value.Bool(a.Type() == t.Name), nil
	case *value.StructType:
		s, ok := a.(*value.Struct)
		return value.Bool(ok && s.TypeOf == t), nil
	}
	return nil, cerr.New(cerr.TypeErrorBinaryIs, a.Repr(), b.Repr())
}
