// Package ast defines the expression and statement trees produced by the
// parser, plus the symbol table used to resolve identifiers to locals,
// globals, upvalues or fields. The optimizer and codegen packages both walk
// this tree.
package ast

import (
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
)

// BinOp and UnOp mirror the dispatch tags used by the VM's Binary/Unary
// opcodes, so the codegen stage can carry them straight through without a
// second translation table.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpIs
	OpLeftShift
	OpRightShift
	OpLessThan
	OpGreaterThan
	OpLessThanEqual
	OpGreaterThanEqual
	OpEqual
	OpNotEqual
	OpBitwiseAnd
	OpBitwiseOr
	OpIn
	// OpComposeAssign is a sentinel used only by ArrayOpAssignment to mark an
	// `a[i] .= f` compound assignment (function-compose, not an operator).
	OpComposeAssign
)

type UnOp int

const (
	UnarySub UnOp = iota
	UnaryNot
	UnaryBitwiseNot
)

// LiteralKind identifies the kind of sequence literal being built.
type LiteralKind int

const (
	LiteralList LiteralKind = iota
	LiteralVector
	LiteralSet
	LiteralDict
)

// Expr is the interface implemented by every expression node.
type Expr interface {
	Pos() token.Position
}

// ExprBase is embedded by every Expr node to supply its source position.
// It is exported (unlike a typical unexported "base" field) specifically so
// that other packages in this module - the parser, which constructs nodes
// directly as it resolves identifiers inline, and the optimizer, which
// builds replacement nodes during rewriting - can use ordinary struct
// literals instead of needing a constructor function per node kind.
type ExprBase struct{ P token.Position }

func (e ExprBase) Pos() token.Position { return e.P }

// NewIntExpr, NewBoolExpr and NewRuntimeErrorExpr are convenience
// constructors for the optimizer's constant-folding rewrites.
func NewIntExpr(pos token.Position, v int64) *IntExpr  { return &IntExpr{ExprBase{pos}, v} }
func NewBoolExpr(pos token.Position, v bool) *BoolExpr { return &BoolExpr{ExprBase{pos}, v} }
func NewRuntimeErrorExpr(pos token.Position, err cerr.Runtime) *RuntimeErrorExpr {
	return &RuntimeErrorExpr{ExprBase{pos}, err}
}

type (
	NilExpr  struct{ ExprBase }
	ExitExpr struct{ ExprBase }
	BoolExpr struct {
		ExprBase
		Value bool
	}
	IntExpr struct {
		ExprBase
		Value int64
	}
	ComplexExpr struct {
		ExprBase
		Real, Imag int64
	}
	StrExpr struct {
		ExprBase
		Value string
	}

	// LValueKind distinguishes how an identifier resolves.
	LValueKind int
)

const (
	LValueLocal LValueKind = iota
	LValueGlobal
	LValueUpValue
)

// LValue references a resolved binding slot.
type LValueExpr struct {
	ExprBase
	Kind  LValueKind
	Index int
	Name  string
}

// NativeFunctionExpr pushes a built-in by its tag.
type NativeFunctionExpr struct {
	ExprBase
	Name string // resolved against the stdlib registry at codegen time
}

// FunctionExpr references a compiled function by its index in the program's
// function table, plus the list of closure-capture opcodes to emit
// (CloseLocal/CloseUpValue) if it has any free variables.
type FunctionExpr struct {
	ExprBase
	FuncIndex    int
	ClosedLocals []ClosedLocal
}

type ClosedLocal struct {
	FromUpValue bool // true: CloseUpValue, false: CloseLocal
	Index       int
}

type UnaryExpr struct {
	ExprBase
	Op  UnOp
	Arg Expr
}

type BinaryExpr struct {
	ExprBase
	Op       BinOp
	Lhs, Rhs Expr
}

// LiteralExpr builds a List/Vector/Set/Dict from its (possibly unrolled)
// elements. For Dict, elements come in key,value pairs unless unrolled.
type LiteralExpr struct {
	ExprBase
	Kind Kind
	Args []Expr
}

type Kind = LiteralKind

// SliceLiteralExpr is the node for a `[a:b]` / `[a:b:c]` operand of a
// compose expression. The parser never constructs it, and neither the
// optimizer nor codegen lowers it, so `arg . [a:b]` is not supported.
type SliceLiteralExpr struct {
	ExprBase
	Low, High Expr
	Step      Expr // nil if no step given
}

// UnrollExpr marks `...arg` in a call or literal argument list.
type UnrollExpr struct {
	ExprBase
	Arg   Expr
	First bool
}

// EvalExpr is a function call `f(args...)`.
type EvalExpr struct {
	ExprBase
	Fn        Expr
	Args      []Expr
	AnyUnroll bool
}

// ComposeExpr is `arg . f`.
type ComposeExpr struct {
	ExprBase
	Arg, Fn Expr
}

type LogicalAndExpr struct {
	ExprBase
	Lhs, Rhs Expr
}

type LogicalOrExpr struct {
	ExprBase
	Lhs, Rhs Expr
}

type IndexExpr struct {
	ExprBase
	Target, Index Expr
}

type SliceExpr struct {
	ExprBase
	Target, Low, High Expr
}

type SliceWithStepExpr struct {
	ExprBase
	Target, Low, High, Step Expr
}

type IfThenElseExpr struct {
	ExprBase
	Cond, IfTrue, IfFalse Expr
}

type GetFieldExpr struct {
	ExprBase
	Lhs        Expr
	FieldID    int
	FieldName  string
}

type SetFieldExpr struct {
	ExprBase
	Lhs       Expr
	FieldID   int
	FieldName string
	Rhs       Expr
}

// SwapFieldExpr is `x.f op= rhs`.
type SwapFieldExpr struct {
	ExprBase
	Lhs       Expr
	FieldID   int
	FieldName string
	Op        BinOp
	Rhs       Expr
}

type GetFieldFunctionExpr struct {
	ExprBase
	FieldID   int
	FieldName string
}

// LValueTarget describes an assignable location.
type LValueTarget struct {
	Kind LValueKind
	Index int
	Name string
}

type AssignmentExpr struct {
	ExprBase
	Target LValueTarget
	Rhs    Expr
}

type ArrayAssignmentExpr struct {
	ExprBase
	Array, Index, Rhs Expr
}

type ArrayOpAssignmentExpr struct {
	ExprBase
	Array, Index Expr
	Op           BinOp
	Rhs          Expr
}

// PatternElement is one binding slot in a destructuring pattern.
type PatternElement struct {
	Target   LValueTarget
	IsVarArg bool
}

type PatternAssignmentExpr struct {
	ExprBase
	Elements []PatternElement
	Rhs      Expr
}

// RuntimeErrorExpr is emitted by the optimizer in place of a constant-folded
// subtree that would unconditionally raise at runtime (e.g. `1 / 0`).
type RuntimeErrorExpr struct {
	ExprBase
	Err cerr.Runtime
}

// Stmt is the interface implemented by every statement node.
type Stmt interface {
	Pos() token.Position
}

type StmtBase struct{ P token.Position }

func (s StmtBase) Pos() token.Position { return s.P }

type ExprStmt struct {
	StmtBase
	Expr Expr
}

type LetStmt struct {
	StmtBase
	Target LValueTarget
	Init   Expr // nil: defaults to Nil
}

type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

type IfStmt struct {
	StmtBase
	Cond   Expr
	Then   *BlockStmt
	Else   Stmt // *BlockStmt or *IfStmt or nil
}

type WhileStmt struct {
	StmtBase
	Cond Expr
	Body *BlockStmt
}

type ForStmt struct {
	StmtBase
	Target   LValueTarget
	Iterable Expr
	Body     *BlockStmt
}

type BreakStmt struct{ StmtBase }
type ContinueStmt struct{ StmtBase }

type ReturnStmt struct {
	StmtBase
	Value Expr // nil: return nil
}

// FunctionDecl is a top-level function declaration (named or anonymous
// lambda); its body is compiled into its own Funcode.
type FunctionDecl struct {
	StmtBase
	Name       string
	Params     []Param
	Variadic   bool // true if the last parameter is `...name`
	Body       *BlockStmt
	ExprBody   Expr // non-nil for `fn(x) -> expr` style bodies
	FreeVars   []FreeVarDescriptor
	NumLocals  int
	CellLocals []int
}

type Param struct {
	Name    string
	Default Expr // nil if mandatory
}

// FreeVarDescriptor records how a function's free variable is to be
// resolved from the enclosing scope at closure-creation time.
type FreeVarDescriptor struct {
	Name        string
	FromUpValue bool // true: captured from the enclosing function's upvalues
	Index       int
}

type StructDecl struct {
	StmtBase
	Name   string
	Fields []string
}
