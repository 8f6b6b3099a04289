// Code generation walks the (optionally optimized) ast tree and emits
// bytecode, one Funcode per ast.FunctionDecl. The arm-per-ExprType
// structure mirrors the original implementation's codegen.rs; the main
// departure is that Go's lack of algebraic-union exhaustiveness checking
// means we rely on a final default case plus the parser/optimizer having
// already rejected anything codegen doesn't know how to lower (e.g. a bare
// SliceLiteralExpr outside of Compose).
package compiler

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
)

type loopCtx struct {
	breaks    []int
	continues []int
}

type funcGen struct {
	fn     *Funcode
	stack  int // current simulated stack depth
	loops  []*loopCtx
}

// Generator drives codegen across every function in a program.
type Generator struct {
	prog *Program
}

func NewGenerator() *Generator {
	return &Generator{prog: NewProgram()}
}

// InternFieldName exposes the program's global field-name table to the
// parser, which resolves `x.foo` / `x.foo = v` to a FieldID as soon as it
// parses the field name, before it knows which struct type `x` will hold.
func (g *Generator) InternFieldName(name string) int {
	return g.prog.InternFieldName(name)
}

// Compile lowers a top-level list of statements (the REPL/script body) into
// a fresh Program, for callers (tests, `-d` single-expression dumps) that
// have no nested function declarations to pre-register. Code with nested
// `fn` declarations should instead drive a single Generator directly:
// CompileFunctionDecl for each nested function as the parser finishes it,
// then CompileModule for the top-level body.
func Compile(decls []ast.Stmt, globals []string) (*Program, error) {
	g := NewGenerator()
	return g.CompileModule(decls, globals)
}

// CompileModule compiles the top-level script body into the generator's
// program (which may already contain Functions registered by prior
// CompileFunctionDecl calls) and returns the finished Program.
// CompileModule compiles decls into the generator's program, leaving the
// value of a trailing top-level expression statement (if any) as the
// module function's return value instead of discarding it like every
// other ExprStmt - this is what lets the REPL echo the result of the last
// line of an entry rather than always printing nil.
func (g *Generator) CompileModule(decls []ast.Stmt, globals []string) (*Program, error) {
	g.prog.Globals = globals
	entryFn := &Funcode{Name: "<module>"}
	fg := &funcGen{fn: entryFn}
	for i, s := range decls {
		if i == len(decls)-1 {
			if expr, ok := s.(*ast.ExprStmt); ok {
				if err := g.emitExpr(fg, expr.Expr); err != nil {
					return nil, err
				}
				fg.emit(Return, 0, expr.Pos())
				entryFn.Tail = len(entryFn.Code) - 1
				g.prog.Entry = g.prog.AddFunction(entryFn)
				return g.prog, nil
			}
		}
		if err := g.emitStmt(fg, s); err != nil {
			return nil, err
		}
	}
	fg.emit(PushNil, 0, token.Position{})
	fg.emit(Return, 0, token.Position{})
	entryFn.Tail = len(entryFn.Code) - 1
	g.prog.Entry = g.prog.AddFunction(entryFn)
	return g.prog, nil
}

// CompileFunctionDecl compiles fd's body into its own Funcode and appends it
// to the generator's program, returning its index. The parser calls this as
// soon as it finishes parsing a function body (it already knows the
// resolved local/cell/param counts from its symbol table), so nested
// functions are compiled bottom-up relative to the enclosing Compile call
// that eventually emits the FunctionExpr referencing this index.
func (g *Generator) CompileFunctionDecl(fd *ast.FunctionDecl) (int, error) {
	fn := &Funcode{
		Name:        fd.Name,
		NumParams:   len(fd.Params),
		Variadic:    fd.Variadic,
		NumLocals:   fd.NumLocals,
		CellLocals:  fd.CellLocals,
		NumUpValues: len(fd.FreeVars),
	}
	for _, p := range fd.Params {
		if p.Default != nil {
			fn.Defaults++
		}
	}
	fn.Head = 0
	fg := &funcGen{fn: fn}
	if fd.ExprBody != nil {
		if err := g.emitExpr(fg, fd.ExprBody); err != nil {
			return 0, err
		}
		fg.emit(Return, 0, fd.Pos())
	} else {
		if err := g.emitStmt(fg, fd.Body); err != nil {
			return 0, err
		}
		fg.emit(PushNil, 0, fd.Pos())
		fg.emit(Return, 0, fd.Pos())
	}
	if fn.MaxStack < 1 {
		fn.MaxStack = 1
	}
	fn.Tail = len(fn.Code) - 1
	return g.prog.AddFunction(fn), nil
}

func (fg *funcGen) emit(op Op, operand int32, pos token.Position) int {
	fg.fn.Code = append(fg.fn.Code, Instr{Op: op, Operand: operand})
	fg.fn.Positions = append(fg.fn.Positions, pos)
	fg.stack += fg.effect(op, operand)
	if fg.stack > fg.fn.MaxStack {
		fg.fn.MaxStack = fg.stack
	}
	return len(fg.fn.Code) - 1
}

func (fg *funcGen) effect(op Op, operand int32) int {
	switch op {
	case PopN:
		return -int(operand)
	case OpFuncEval, OpFuncEvalUnrolled:
		// Pops the callee plus each argument, pushes one result.
		return -int(operand)
	case LiteralBegin:
		return 1
	case LiteralAcc:
		return -1
	case LiteralUnroll:
		return -1
	case Closure:
		return 1
	case CheckLengthGreaterThan, CheckLengthEqualTo:
		return 0
	}
	return Instr{Op: op}.Effect()
}

func (fg *funcGen) patch(at int) {
	target := len(fg.fn.Code)
	fg.fn.Code[at].Operand = int32(target - at - 1)
}

func (g *Generator) emitStmt(fg *funcGen, s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.ExprStmt:
		if err := g.emitExpr(fg, s.Expr); err != nil {
			return err
		}
		fg.emit(Pop, 0, s.Pos())
		return nil
	case *ast.LetStmt:
		if s.Init != nil {
			if err := g.emitExpr(fg, s.Init); err != nil {
				return err
			}
		} else {
			fg.emit(PushNil, 0, s.Pos())
		}
		return g.emitStore(fg, s.Target, s.Pos())
	case *ast.BlockStmt:
		for _, st := range s.Stmts {
			if err := g.emitStmt(fg, st); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStmt:
		return g.emitIf(fg, s)
	case *ast.WhileStmt:
		return g.emitWhile(fg, s)
	case *ast.ForStmt:
		return g.emitFor(fg, s)
	case *ast.BreakStmt:
		if len(fg.loops) == 0 {
			return &cerr.ParseError{Kind: cerr.BreakOutsideOfLoop, Pos: s.Pos()}
		}
		l := fg.loops[len(fg.loops)-1]
		l.breaks = append(l.breaks, fg.emit(Jump, 0, s.Pos()))
		return nil
	case *ast.ContinueStmt:
		if len(fg.loops) == 0 {
			return &cerr.ParseError{Kind: cerr.ContinueOutsideOfLoop, Pos: s.Pos()}
		}
		l := fg.loops[len(fg.loops)-1]
		l.continues = append(l.continues, fg.emit(Jump, 0, s.Pos()))
		return nil
	case *ast.ReturnStmt:
		if s.Value != nil {
			if err := g.emitExpr(fg, s.Value); err != nil {
				return err
			}
		} else {
			fg.emit(PushNil, 0, s.Pos())
		}
		fg.emit(Return, 0, s.Pos())
		return nil
	case *ast.StructDecl:
		g.prog.InternStructType(s.Name, s.Fields)
		return nil
	}
	return nil
}

func (g *Generator) emitStore(fg *funcGen, t ast.LValueTarget, pos token.Position) error {
	switch t.Kind {
	case ast.LValueLocal:
		fg.emit(StoreLocal, int32(t.Index), pos)
	case ast.LValueGlobal:
		fg.emit(StoreGlobal, int32(t.Index), pos)
	case ast.LValueUpValue:
		fg.emit(StoreUpValue, int32(t.Index), pos)
	}
	return nil
}

func (g *Generator) emitIf(fg *funcGen, s *ast.IfStmt) error {
	if err := g.emitExpr(fg, s.Cond); err != nil {
		return err
	}
	jf := fg.emit(JumpIfFalsePop, 0, s.Pos())
	if err := g.emitStmt(fg, s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		jend := fg.emit(Jump, 0, s.Pos())
		fg.patch(jf)
		if err := g.emitStmt(fg, s.Else); err != nil {
			return err
		}
		fg.patch(jend)
	} else {
		fg.patch(jf)
	}
	return nil
}

func (g *Generator) emitWhile(fg *funcGen, s *ast.WhileStmt) error {
	top := len(fg.fn.Code)
	if err := g.emitExpr(fg, s.Cond); err != nil {
		return err
	}
	jf := fg.emit(JumpIfFalsePop, 0, s.Pos())
	fg.loops = append(fg.loops, &loopCtx{})
	if err := g.emitStmt(fg, s.Body); err != nil {
		return err
	}
	l := fg.loops[len(fg.loops)-1]
	fg.loops = fg.loops[:len(fg.loops)-1]
	contTarget := len(fg.fn.Code)
	fg.emit(Jump, int32(top-contTarget-1), s.Pos())
	fg.patch(jf)
	for _, b := range l.breaks {
		fg.patch(b)
	}
	for _, c := range l.continues {
		fg.fn.Code[c].Operand = int32(contTarget - c - 1)
	}
	return nil
}

func (g *Generator) emitFor(fg *funcGen, s *ast.ForStmt) error {
	if err := g.emitExpr(fg, s.Iterable); err != nil {
		return err
	}
	fg.emit(InitIterable, 0, s.Pos())
	top := len(fg.fn.Code)
	fg.emit(TestIterable, 0, s.Pos())
	jf := fg.emit(JumpIfFalsePop, 0, s.Pos())
	if err := g.emitStore(fg, s.Target, s.Pos()); err != nil {
		return err
	}
	fg.loops = append(fg.loops, &loopCtx{})
	if err := g.emitStmt(fg, s.Body); err != nil {
		return err
	}
	l := fg.loops[len(fg.loops)-1]
	fg.loops = fg.loops[:len(fg.loops)-1]
	contTarget := len(fg.fn.Code)
	fg.emit(Jump, int32(top-contTarget-1), s.Pos())
	fg.patch(jf)
	for _, b := range l.breaks {
		fg.patch(b)
	}
	fg.emit(Pop, 0, s.Pos()) // drop the iterator, exhausted or broken out of
	for _, c := range l.continues {
		fg.fn.Code[c].Operand = int32(contTarget - c - 1)
	}
	return nil
}

func (g *Generator) emitExpr(fg *funcGen, e ast.Expr) error {
	switch e := e.(type) {
	case *ast.NilExpr:
		fg.emit(PushNil, 0, e.Pos())
	case *ast.ExitExpr:
		fg.emit(Exit, 0, e.Pos())
	case *ast.BoolExpr:
		if e.Value {
			fg.emit(PushTrue, 0, e.Pos())
		} else {
			fg.emit(PushFalse, 0, e.Pos())
		}
	case *ast.IntExpr:
		fg.emit(PushConstant, int32(g.prog.InternInt(e.Value)), e.Pos())
	case *ast.StrExpr:
		fg.emit(PushConstant, int32(g.prog.InternStr(e.Value)), e.Pos())
	case *ast.LValueExpr:
		g.emitLoad(fg, e.Kind, e.Index, e.Pos())
	case *ast.NativeFunctionExpr:
		fg.emit(PushNativeFunction, int32(g.prog.InternNativeFunction(e.Name)), e.Pos())
	case *ast.FunctionExpr:
		fg.emit(PushConstant, int32(len(g.prog.Constants)), e.Pos())
		g.prog.Constants = append(g.prog.Constants, Constant{Kind: ConstFunction, FuncIndex: e.FuncIndex})
		for _, cl := range e.ClosedLocals {
			if cl.FromUpValue {
				fg.emit(CloseUpValue, int32(cl.Index), e.Pos())
			} else {
				fg.emit(CloseLocal, int32(cl.Index), e.Pos())
			}
		}
		fg.emit(Closure, int32(len(e.ClosedLocals)), e.Pos())
	case *ast.UnaryExpr:
		if err := g.emitExpr(fg, e.Arg); err != nil {
			return err
		}
		fg.emit(Unary, int32(e.Op), e.Pos())
	case *ast.BinaryExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(Binary, int32(e.Op), e.Pos())
	case *ast.LogicalAndExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		j := fg.emit(JumpIfFalse, 0, e.Pos())
		fg.emit(Pop, 0, e.Pos())
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.patch(j)
	case *ast.LogicalOrExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		j := fg.emit(JumpIfTrue, 0, e.Pos())
		fg.emit(Pop, 0, e.Pos())
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.patch(j)
	case *ast.IfThenElseExpr:
		if err := g.emitExpr(fg, e.Cond); err != nil {
			return err
		}
		jf := fg.emit(JumpIfFalsePop, 0, e.Pos())
		if err := g.emitExpr(fg, e.IfTrue); err != nil {
			return err
		}
		jend := fg.emit(Jump, 0, e.Pos())
		fg.patch(jf)
		if err := g.emitExpr(fg, e.IfFalse); err != nil {
			return err
		}
		fg.patch(jend)
	case *ast.LiteralExpr:
		fg.emit(LiteralBegin, int32(e.Kind), e.Pos())
		for _, a := range e.Args {
			if u, ok := a.(*ast.UnrollExpr); ok {
				if err := g.emitExpr(fg, u.Arg); err != nil {
					return err
				}
				fg.emit(LiteralUnroll, 0, e.Pos())
				continue
			}
			if err := g.emitExpr(fg, a); err != nil {
				return err
			}
			fg.emit(LiteralAcc, 0, e.Pos())
		}
		fg.emit(LiteralEnd, 0, e.Pos())
	case *ast.EvalExpr:
		if err := g.emitExpr(fg, e.Fn); err != nil {
			return err
		}
		for _, a := range e.Args {
			if u, ok := a.(*ast.UnrollExpr); ok {
				if err := g.emitExpr(fg, u.Arg); err != nil {
					return err
				}
				fg.emit(OpUnroll, boolOperand(u.First), e.Pos())
				continue
			}
			if err := g.emitExpr(fg, a); err != nil {
				return err
			}
		}
		if e.AnyUnroll {
			fg.emit(OpFuncEvalUnrolled, int32(len(e.Args)), e.Pos())
		} else {
			fg.emit(OpFuncEval, int32(len(e.Args)), e.Pos())
		}
	case *ast.ComposeExpr:
		// `arg . f` without an intervening optimizer pass lowers to a
		// straight call; the optimizer's compose-to-call rewrite (see
		// optimizer.go) is what normally eliminates this node before
		// codegen, but codegen still needs to handle it for `-O0`/`-d`.
		if err := g.emitExpr(fg, e.Fn); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Arg); err != nil {
			return err
		}
		fg.emit(OpFuncEval, 1, e.Pos())
	case *ast.IndexExpr:
		if err := g.emitExpr(fg, e.Target); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Index); err != nil {
			return err
		}
		fg.emit(OpIndex, 0, e.Pos())
	case *ast.SliceExpr:
		if err := g.emitExpr(fg, e.Target); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Low); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.High); err != nil {
			return err
		}
		fg.emit(OpSlice, 0, e.Pos())
	case *ast.SliceWithStepExpr:
		if err := g.emitExpr(fg, e.Target); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Low); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.High); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Step); err != nil {
			return err
		}
		fg.emit(OpSliceWithStep, 0, e.Pos())
	case *ast.GetFieldExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		fg.emit(GetField, int32(e.FieldID), e.Pos())
	case *ast.GetFieldFunctionExpr:
		fg.emit(GetFieldFunction, int32(e.FieldID), e.Pos())
	case *ast.SetFieldExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(SetField, int32(e.FieldID), e.Pos())
	case *ast.SwapFieldExpr:
		if err := g.emitExpr(fg, e.Lhs); err != nil {
			return err
		}
		fg.emit(GetFieldPeek, int32(e.FieldID), e.Pos())
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(Binary, int32(e.Op), e.Pos())
		fg.emit(SetField, int32(e.FieldID), e.Pos())
	case *ast.AssignmentExpr:
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(Dup, 0, e.Pos())
		if err := g.emitStore(fg, e.Target, e.Pos()); err != nil {
			return err
		}
	case *ast.ArrayAssignmentExpr:
		if err := g.emitExpr(fg, e.Array); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Index); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(StoreArray, 0, e.Pos())
	case *ast.ArrayOpAssignmentExpr:
		if err := g.emitExpr(fg, e.Array); err != nil {
			return err
		}
		if err := g.emitExpr(fg, e.Index); err != nil {
			return err
		}
		fg.emit(OpIndexPeek, 0, e.Pos())
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		if e.Op == ast.OpComposeAssign {
			fg.emit(OpFuncEval, 1, e.Pos())
		} else {
			fg.emit(Binary, int32(e.Op), e.Pos())
		}
		fg.emit(StoreArray, 0, e.Pos())
	case *ast.PatternAssignmentExpr:
		if err := g.emitExpr(fg, e.Rhs); err != nil {
			return err
		}
		fg.emit(Dup, 0, e.Pos())
		varArgIdx := -1
		for i, el := range e.Elements {
			if el.IsVarArg {
				varArgIdx = i
			}
		}
		if varArgIdx >= 0 {
			fg.emit(CheckLengthGreaterThan, int32(len(e.Elements)-1), e.Pos())
		} else {
			fg.emit(CheckLengthEqualTo, int32(len(e.Elements)), e.Pos())
		}
		for i, el := range e.Elements {
			fg.emit(Dup, 0, e.Pos())
			if el.IsVarArg {
				fg.emit(PushConstant, int32(g.prog.InternInt(int64(i))), e.Pos())
				rest := len(e.Elements) - i - 1
				if rest == 0 {
					fg.emit(PushNil, 0, e.Pos())
				} else {
					fg.emit(PushConstant, int32(g.prog.InternInt(int64(-rest))), e.Pos())
				}
				fg.emit(OpSlice, 0, e.Pos())
			} else {
				fg.emit(PushConstant, int32(g.prog.InternInt(int64(i))), e.Pos())
				fg.emit(OpIndex, 0, e.Pos())
			}
			if err := g.emitStore(fg, el.Target, e.Pos()); err != nil {
				return err
			}
		}
	case *ast.RuntimeErrorExpr:
		fg.emit(AssertFailed, int32(g.prog.InternRuntimeError(e.Err)), e.Pos())
	default:
		return &cerr.ParseError{Kind: cerr.InvalidAssignmentTarget, Pos: e.Pos()}
	}
	return nil
}

func (g *Generator) emitLoad(fg *funcGen, kind ast.LValueKind, index int, pos token.Position) {
	switch kind {
	case ast.LValueLocal:
		fg.emit(PushLocal, int32(index), pos)
	case ast.LValueGlobal:
		fg.emit(PushGlobal, int32(index), pos)
	case ast.LValueUpValue:
		fg.emit(PushUpValue, int32(index), pos)
	}
}

func boolOperand(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
