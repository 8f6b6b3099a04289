package compiler

import (
	"fmt"
	"strings"

	"github.com/cordy-lang/cordy/lang/ast"
)

// Disassemble renders fn's bytecode the way the original implementation's
// Opcode::disassembly does: jump operands resolve to the absolute target
// instruction index rather than the raw relative offset, Constant operands
// render the constant's value rather than its pool index, and Unary/Binary
// render the bare operator mnemonic.
func Disassemble(p *Program, fn *Funcode) string {
	var b strings.Builder
	for ip, instr := range fn.Code {
		fmt.Fprintf(&b, "%4d: %s\n", ip, disassembleOne(p, fn, ip, instr))
	}
	return b.String()
}

func disassembleOne(p *Program, fn *Funcode, ip int, instr Instr) string {
	switch instr.Op {
	case JumpIfFalse, JumpIfFalsePop, JumpIfTrue, JumpIfTruePop, Jump:
		target := ip + 1 + int(instr.Operand)
		return fmt.Sprintf("%s(%d)", instr.Op, target)
	case PushConstant:
		return fmt.Sprintf("Constant(%s)", renderConstant(p, int(instr.Operand)))
	case PushNativeFunction:
		if int(instr.Operand) < len(p.NativeFunctions) {
			return fmt.Sprintf("NativeFunction(%s)", p.NativeFunctions[instr.Operand])
		}
		return fmt.Sprintf("NativeFunction(%d)", instr.Operand)
	case Unary:
		return UnOpMnemonic(ast.UnOp(instr.Operand))
	case Binary:
		return BinOpMnemonic(ast.BinOp(instr.Operand))
	case OpFuncEval:
		return fmt.Sprintf("Call(%d)", instr.Operand)
	case OpFuncEvalUnrolled:
		return fmt.Sprintf("CallUnrolled(%d)", instr.Operand)
	case LiteralBegin:
		return fmt.Sprintf("LiteralBegin(%s)", literalKindName(LiteralType(instr.Operand)))
	}
	if instr.Operand == 0 {
		return instr.Op.String()
	}
	return fmt.Sprintf("%s(%d)", instr.Op, instr.Operand)
}

func renderConstant(p *Program, idx int) string {
	if idx < 0 || idx >= len(p.Constants) {
		return fmt.Sprintf("?%d", idx)
	}
	c := p.Constants[idx]
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("Int(%d)", c.Int)
	case ConstStr:
		return fmt.Sprintf("Str(%q)", c.Str)
	case ConstFunction:
		fn := p.Functions[c.FuncIndex]
		return fmt.Sprintf("Function(%s -> L[%d, %d])", fn.Name, fn.Head, fn.Tail)
	case ConstStructType:
		return fmt.Sprintf("StructType(%s)", c.Str)
	}
	return "?"
}

func literalKindName(k LiteralType) string {
	switch k {
	case ast.LiteralList:
		return "List"
	case ast.LiteralVector:
		return "Vector"
	case ast.LiteralSet:
		return "Set"
	case ast.LiteralDict:
		return "Dict"
	}
	return "?"
}
