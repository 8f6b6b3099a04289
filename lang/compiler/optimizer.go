// The optimizer performs a best-effort, purity-aware rewrite pass over the
// ast tree before codegen: constant folding, dead-code elimination of
// statically-resolved `if` expressions, compose-to-call normalization
// (`x . f` becomes `f(x)`), and operator inlining (a direct two-argument
// call of a native binary-op function, e.g. `add(1, 2)`, folds into the
// Binary opcode instead of a function call). Grounded on the original implementation's
// src/compiler/parser/optimizer.rs; the purity lattice governs which
// rewrites are safe to reorder operand evaluation for.
package compiler

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
)

// Purity classifies how safe an expression is to reorder or duplicate
// during rewriting, matching the original's three-level lattice.
type Purity int

const (
	// PurityNone: may have side effects, may raise, must not be reordered
	// or duplicated (e.g. any function call).
	PurityNone Purity = iota
	// PurityWeak: cannot have side effects but may still raise at runtime
	// (e.g. `a / b`, indexing) - reorderable with other Weak/Strong terms
	// but only consumed once.
	PurityWeak
	// PurityStrong: pure and side-effect free, never raises (e.g. literal
	// constants, locals) - freely reorderable and duplicable.
	PurityStrong
)

// purity estimates the purity of e without fully evaluating it.
func purity(e ast.Expr) Purity {
	switch e := e.(type) {
	case *ast.NilExpr, *ast.BoolExpr, *ast.IntExpr, *ast.StrExpr, *ast.ComplexExpr:
		return PurityStrong
	case *ast.LValueExpr:
		return PurityStrong
	case *ast.UnaryExpr:
		return min(purity(e.Arg), PurityWeak)
	case *ast.BinaryExpr:
		return min3(purity(e.Lhs), purity(e.Rhs), PurityWeak)
	case *ast.IndexExpr:
		return min3(purity(e.Target), purity(e.Index), PurityWeak)
	}
	return PurityNone
}

func min(a, b Purity) Purity {
	if a < b {
		return a
	}
	return b
}
func min3(a, b, c Purity) Purity { return min(min(a, b), c) }

// canReorder reports whether two adjacent subexpressions may be evaluated
// out of their original order without observable difference - true only
// when both sides are at least Weak (no side effects), matching
// Purity::can_reorder in the original.
func canReorder(a, b Purity) bool {
	return a >= PurityWeak && b >= PurityWeak
}

// Optimize walks and rewrites stmts in place (returning the possibly-new
// slice), applying the rules in one bottom-up pass rather than iterating
// to a fixed point.
func Optimize(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = optimizeStmt(s)
	}
	return out
}

func optimizeStmt(s ast.Stmt) ast.Stmt {
	switch s := s.(type) {
	case *ast.ExprStmt:
		s.Expr = optimizeExpr(s.Expr)
		return s
	case *ast.LetStmt:
		if s.Init != nil {
			s.Init = optimizeExpr(s.Init)
		}
		return s
	case *ast.BlockStmt:
		s.Stmts = Optimize(s.Stmts)
		return s
	case *ast.IfStmt:
		s.Cond = optimizeExpr(s.Cond)
		s.Then = optimizeStmt(s.Then).(*ast.BlockStmt)
		if s.Else != nil {
			s.Else = optimizeStmt(s.Else)
		}
		return s
	case *ast.WhileStmt:
		s.Cond = optimizeExpr(s.Cond)
		s.Body = optimizeStmt(s.Body).(*ast.BlockStmt)
		return s
	case *ast.ForStmt:
		s.Iterable = optimizeExpr(s.Iterable)
		s.Body = optimizeStmt(s.Body).(*ast.BlockStmt)
		return s
	case *ast.ReturnStmt:
		if s.Value != nil {
			s.Value = optimizeExpr(s.Value)
		}
		return s
	}
	return s
}

// optimizeExpr rewrites e bottom-up: children are optimized first so that
// parent-level rules (constant folding, compose-to-call) see already
// simplified operands, matching a standard post-order tree rewrite.
func optimizeExpr(e ast.Expr) ast.Expr {
	switch e := e.(type) {
	case *ast.UnaryExpr:
		e.Arg = optimizeExpr(e.Arg)
		return foldUnary(e)
	case *ast.BinaryExpr:
		e.Lhs = optimizeExpr(e.Lhs)
		e.Rhs = optimizeExpr(e.Rhs)
		return foldBinary(e)
	case *ast.LogicalAndExpr:
		e.Lhs = optimizeExpr(e.Lhs)
		e.Rhs = optimizeExpr(e.Rhs)
		if b, ok := e.Lhs.(*ast.BoolExpr); ok {
			if !b.Value {
				return e.Lhs
			}
			return e.Rhs
		}
		return e
	case *ast.LogicalOrExpr:
		e.Lhs = optimizeExpr(e.Lhs)
		e.Rhs = optimizeExpr(e.Rhs)
		if b, ok := e.Lhs.(*ast.BoolExpr); ok {
			if b.Value {
				return e.Lhs
			}
			return e.Rhs
		}
		return e
	case *ast.IfThenElseExpr:
		e.Cond = optimizeExpr(e.Cond)
		e.IfTrue = optimizeExpr(e.IfTrue)
		e.IfFalse = optimizeExpr(e.IfFalse)
		// Dead-code elimination: a constant condition collapses to whichever
		// branch is taken, dropping the other entirely (it is never
		// evaluated, matching Expr::IfThenElse's optimizer case).
		if b, ok := e.Cond.(*ast.BoolExpr); ok {
			if b.Value {
				return e.IfTrue
			}
			return e.IfFalse
		}
		return e
	case *ast.ComposeExpr:
		e.Arg = optimizeExpr(e.Arg)
		e.Fn = optimizeExpr(e.Fn)
		return composeToCall(e)
	case *ast.EvalExpr:
		e.Fn = optimizeExpr(e.Fn)
		for i := range e.Args {
			e.Args[i] = optimizeExpr(e.Args[i])
		}
		return inlineOperator(e)
	case *ast.IndexExpr:
		e.Target = optimizeExpr(e.Target)
		e.Index = optimizeExpr(e.Index)
		return e
	case *ast.LiteralExpr:
		for i := range e.Args {
			e.Args[i] = optimizeExpr(e.Args[i])
		}
		return e
	}
	return e
}

// composeToCall rewrites `arg . f` into `f(arg)`. This is always safe: `.`
// is defined to mean exactly that, so the rewrite is a normalization rather
// than a speculative optimization - it exists so codegen only needs one
// code path (EvalExpr) for calls.
func composeToCall(e *ast.ComposeExpr) ast.Expr {
	return &ast.EvalExpr{Fn: e.Fn, Args: []ast.Expr{e.Arg}}
}

// operatorNatives maps a stdlib native function name to the BinOp it is
// defined identically to, so that a direct 2-argument call of it (`add(1, 2)`,
// including one produced by compose-to-call normalization) can skip the
// function-call machinery entirely. A native passed as a value, as in
// `map(add, xs)`, is not rewritten.
var operatorNatives = map[string]ast.BinOp{
	"add":          ast.OpAdd,
	"sub":          ast.OpSub,
	"mul":          ast.OpMul,
	"div":          ast.OpDiv,
	"mod":          ast.OpMod,
	"pow":          ast.OpPow,
	"left_shift":   ast.OpLeftShift,
	"right_shift":  ast.OpRightShift,
	"bitwise_and":  ast.OpBitwiseAnd,
	"bitwise_or":   ast.OpBitwiseOr,
}

func inlineOperator(e *ast.EvalExpr) ast.Expr {
	nf, ok := e.Fn.(*ast.NativeFunctionExpr)
	if !ok || len(e.Args) != 2 || e.AnyUnroll {
		return e
	}
	op, ok := operatorNatives[nf.Name]
	if !ok {
		return e
	}
	return &ast.BinaryExpr{Op: op, Lhs: e.Args[0], Rhs: e.Args[1]}
}

func asInt(e ast.Expr) (int64, bool) {
	i, ok := e.(*ast.IntExpr)
	if !ok {
		return 0, false
	}
	return i.Value, true
}

func asBool(e ast.Expr) (bool, bool) {
	b, ok := e.(*ast.BoolExpr)
	if !ok {
		return false, false
	}
	return b.Value, true
}

func foldUnary(e *ast.UnaryExpr) ast.Expr {
	pos := e.Pos()
	switch e.Op {
	case ast.UnarySub:
		if n, ok := asInt(e.Arg); ok {
			return ast.NewIntExpr(pos, -n)
		}
	case ast.UnaryNot:
		if b, ok := asBool(e.Arg); ok {
			return ast.NewBoolExpr(pos, !b)
		}
	case ast.UnaryBitwiseNot:
		if n, ok := asInt(e.Arg); ok {
			return ast.NewIntExpr(pos, ^n)
		}
	}
	return e
}

func foldBinary(e *ast.BinaryExpr) ast.Expr {
	li, lok := asInt(e.Lhs)
	ri, rok := asInt(e.Rhs)
	if !lok || !rok {
		return e
	}
	pos := e.Pos()
	switch e.Op {
	case ast.OpAdd:
		return ast.NewIntExpr(pos, li+ri)
	case ast.OpSub:
		return ast.NewIntExpr(pos, li-ri)
	case ast.OpMul:
		return ast.NewIntExpr(pos, li*ri)
	case ast.OpDiv:
		if ri == 0 {
			return ast.NewRuntimeErrorExpr(pos, *cerr.New(cerr.ValueErrorValueMustBeNonZero))
		}
		return ast.NewIntExpr(pos, euclidDivConst(li, ri))
	case ast.OpMod:
		if ri <= 0 {
			return ast.NewRuntimeErrorExpr(pos, *cerr.NewWithInts(cerr.ValueErrorValueMustBePositive, ri))
		}
		return ast.NewIntExpr(pos, euclidModConst(li, ri))
	case ast.OpBitwiseAnd:
		return ast.NewIntExpr(pos, li&ri)
	case ast.OpBitwiseOr:
		return ast.NewIntExpr(pos, li|ri)
	case ast.OpLessThan:
		return ast.NewBoolExpr(pos, li < ri)
	case ast.OpLessThanEqual:
		return ast.NewBoolExpr(pos, li <= ri)
	case ast.OpGreaterThan:
		return ast.NewBoolExpr(pos, li > ri)
	case ast.OpGreaterThanEqual:
		return ast.NewBoolExpr(pos, li >= ri)
	case ast.OpEqual:
		return ast.NewBoolExpr(pos, li == ri)
	case ast.OpNotEqual:
		return ast.NewBoolExpr(pos, li != ri)
	}
	return e
}

func euclidDivConst(a, b int64) int64 {
	if b < 0 {
		a, b = -a, -b
	}
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

func euclidModConst(a, b int64) int64 {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
