package compiler

import (
	"github.com/cordy-lang/cordy/lang/ast"
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/token"
)

// Constant is one entry in a Program's constant pool. Only the value kinds
// that can be known at compile time appear here; everything else is built
// by bytecode at runtime.
type Constant struct {
	Kind ConstKind
	Int  int64
	Str  string
	// FuncIndex is set when Kind == ConstFunction, naming the Funcode this
	// constant's disassembly should cross-reference.
	FuncIndex int
}

type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstStr
	ConstFunction
	ConstStructType
)

// Funcode is one compiled function: its bytecode, source-position table for
// error reporting, and the frame-layout metadata the VM needs to push a
// call (local/cell slot counts, parameter arity).
type Funcode struct {
	Name       string
	Code       []Instr
	Positions  []token.Position // parallel to Code, for stack traces
	NumParams  int
	Variadic   bool
	Defaults   int
	NumLocals  int
	CellLocals []int // indices, within locals, that are lifted into Cells
	NumUpValues int
	MaxStack   int
	// Head/Tail bound the instruction range this function owns inside its
	// own Code slice; kept for symmetry with the disassembler's notion of
	// "the function owning this ip" even though each Funcode has its own
	// Code array rather than sharing one flat array.
	Head, Tail int
}

// StructTypeDef is a top-level struct declaration. FieldIDs are indices into
// the program's global field-name table (shared with GetField/SetField's
// FieldID operand), parallel to Fields, so the VM can resolve `x.foo` against
// any struct type without knowing which one `x` holds at compile time.
type StructTypeDef struct {
	Name     string
	Fields   []string
	FieldIDs []int
}

// Program is the fully compiled unit produced by codegen (before or after
// optimization): the entry function plus every named/lambda function it (or
// the optimizer) reaches, the constant pool, and struct declarations.
type Program struct {
	Constants []Constant
	Functions []*Funcode
	Structs   []StructTypeDef
	// Entry is the index into Functions of the top-level script body.
	Entry int
	Globals []string // names, for REPL echo and disassembly
	// NativeFunctions holds the names referenced by PushNativeFunction,
	// interned in first-use order; the stdlib package resolves each by name
	// into its dispatch entry when a program is loaded.
	NativeFunctions []string
	// FieldNames is the global field-name table: GetField/SetField/SwapField
	// operands and StructTypeDef.FieldIDs both index into it, so field access
	// can be resolved by name against any struct type at runtime.
	FieldNames []string
	// RuntimeErrors holds statically-known errors raised by the optimizer's
	// constant-folding pass (e.g. `1 / 0`); AssertFailed's operand indexes
	// into this table.
	RuntimeErrors []cerr.Runtime
}

// InternRuntimeError records a statically-known runtime error and returns
// its index for use as an AssertFailed operand.
func (p *Program) InternRuntimeError(e cerr.Runtime) int {
	p.RuntimeErrors = append(p.RuntimeErrors, e)
	return len(p.RuntimeErrors) - 1
}

func NewProgram() *Program {
	return &Program{Functions: nil}
}

// AddFunction appends fn to the program and returns its index.
func (p *Program) AddFunction(fn *Funcode) int {
	p.Functions = append(p.Functions, fn)
	return len(p.Functions) - 1
}

// InternInt returns the constant-pool index for n, adding it if not
// already present.
func (p *Program) InternInt(n int64) int {
	for i, c := range p.Constants {
		if c.Kind == ConstInt && c.Int == n {
			return i
		}
	}
	p.Constants = append(p.Constants, Constant{Kind: ConstInt, Int: n})
	return len(p.Constants) - 1
}

func (p *Program) InternStr(s string) int {
	for i, c := range p.Constants {
		if c.Kind == ConstStr && c.Str == s {
			return i
		}
	}
	p.Constants = append(p.Constants, Constant{Kind: ConstStr, Str: s})
	return len(p.Constants) - 1
}

// InternNativeFunction returns the PushNativeFunction operand for name,
// adding it to the table if not already present.
func (p *Program) InternNativeFunction(name string) int {
	for i, n := range p.NativeFunctions {
		if n == name {
			return i
		}
	}
	p.NativeFunctions = append(p.NativeFunctions, name)
	return len(p.NativeFunctions) - 1
}

// InternFieldName returns the global field-name id for name, adding it if
// not already present.
func (p *Program) InternFieldName(name string) int {
	for i, n := range p.FieldNames {
		if n == name {
			return i
		}
	}
	p.FieldNames = append(p.FieldNames, name)
	return len(p.FieldNames) - 1
}

func (p *Program) InternStructType(name string, fields []string) int {
	ids := make([]int, len(fields))
	for i, f := range fields {
		ids[i] = p.InternFieldName(f)
	}
	idx := len(p.Structs)
	p.Structs = append(p.Structs, StructTypeDef{Name: name, Fields: fields, FieldIDs: ids})
	p.Constants = append(p.Constants, Constant{Kind: ConstStructType, FuncIndex: idx, Str: name})
	return len(p.Constants) - 1
}

// FindOwningFunction returns the Funcode whose instruction range contains
// ip, preferring the innermost (smallest Tail-Head span) match - mirroring
// the original stack-trace synthesis, which disambiguates nested lambdas
// sharing an outer function's textual range this way.
func (p *Program) FindOwningFunction(ip int) *Funcode {
	var best *Funcode
	bestSpan := -1
	for _, fn := range p.Functions {
		if ip < fn.Head || ip > fn.Tail {
			continue
		}
		span := fn.Tail - fn.Head
		if best == nil || span < bestSpan {
			best = fn
			bestSpan = span
		}
	}
	return best
}

// BinOpMnemonic and UnOpMnemonic render ast operator tags the way the
// disassembler and runtime type-error messages expect ("+", "is", "~").
func BinOpMnemonic(op ast.BinOp) string {
	if op >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return "?"
}

var binOpNames = [...]string{
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/",
	ast.OpMod: "%", ast.OpPow: "**", ast.OpIs: "is",
	ast.OpLeftShift: "<<", ast.OpRightShift: ">>",
	ast.OpLessThan: "<", ast.OpGreaterThan: ">",
	ast.OpLessThanEqual: "<=", ast.OpGreaterThanEqual: ">=",
	ast.OpEqual: "==", ast.OpNotEqual: "!=",
	ast.OpBitwiseAnd: "&", ast.OpBitwiseOr: "|", ast.OpIn: "in",
}

func UnOpMnemonic(op ast.UnOp) string {
	switch op {
	case ast.UnarySub:
		return "-"
	case ast.UnaryNot:
		return "!"
	case ast.UnaryBitwiseNot:
		return "~"
	}
	return "?"
}
