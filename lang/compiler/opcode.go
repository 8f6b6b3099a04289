// Package compiler turns a resolved ast.FunctionDecl tree into bytecode: a
// flat []Instr per function, assembled into a Program. The opcode set,
// calling convention and disassembly format mirror the original
// implementation's src/vm/opcode.rs one-for-one so the optimizer's rewrite
// rules (see optimizer.go) have a direct target to reason about.
package compiler

import (
	"fmt"

	"github.com/cordy-lang/cordy/lang/ast"
)

// Op identifies one bytecode operation.
type Op uint8

const (
	Noop Op = iota

	// Control flow. Jump operands are relative to the instruction
	// immediately following the jump, matching the original's offset
	// convention; they stay relative in the assembled code.
	JumpIfFalse
	JumpIfFalsePop
	JumpIfTrue
	JumpIfTruePop
	Jump
	Return

	// Stack shuffling.
	Pop
	PopN
	Dup
	Swap

	// Variable access.
	PushLocal
	StoreLocal
	PushGlobal
	StoreGlobal
	PushUpValue
	StoreUpValue
	StoreArray
	IncGlobalCount

	// Closures.
	Closure
	CloseLocal
	CloseUpValue
	LiftUpValue

	// Iteration.
	InitIterable
	TestIterable

	// Constants and literals.
	PushNil
	PushTrue
	PushFalse
	PushConstant
	PushNativeFunction
	LiteralBegin
	LiteralAcc
	LiteralUnroll
	LiteralEnd

	// Length checks (pattern assignment).
	CheckLengthGreaterThan
	CheckLengthEqualTo

	// Calls.
	OpFuncEval
	OpFuncEvalUnrolled
	OpUnroll

	// Indexing, slicing, fields.
	OpIndex
	OpIndexPeek
	OpSlice
	OpSliceWithStep
	GetField
	GetFieldPeek
	GetFieldFunction
	SetField

	// Operators.
	Unary
	Binary

	// Misc.
	Exit
	Yield
	AssertFailed

	numOps
)

// LiteralType is the Kind operand carried by LiteralBegin.
type LiteralType = ast.LiteralKind

// Instr is one bytecode instruction: an opcode plus up to one operand. A
// handful of opcodes (Unary, Binary) reuse Operand to carry the ast.UnOp /
// ast.BinOp tag rather than an index, so the VM's dispatch switch can stay a
// flat array lookup instead of a second indirection.
type Instr struct {
	Op      Op
	Operand int32
	Pos     int32 // index into the owning Funcode's line table
}

// stackEffect reports instr's net effect on the operand stack, used by the
// codegen stage to track live stack depth (MaxStack) without a second pass.
// Opcodes whose effect depends on the operand (PopN, the call opcodes,
// literal accumulation) are handled by the caller, which already knows the
// relevant counts; this table only covers the fixed-effect majority.
var stackEffect = [numOps]int{
	Noop:               0,
	JumpIfFalse:        0,
	JumpIfFalsePop:     -1,
	JumpIfTrue:         0,
	JumpIfTruePop:      -1,
	Jump:               0,
	Return:             0,
	Pop:                -1,
	Dup:                1,
	Swap:               0,
	PushLocal:          1,
	StoreLocal:         -1,
	PushGlobal:         1,
	StoreGlobal:        -1,
	PushUpValue:        1,
	StoreUpValue:       -1,
	StoreArray:         -2,
	IncGlobalCount:     0,
	Closure:            0,
	CloseLocal:         0,
	CloseUpValue:       0,
	LiftUpValue:        0,
	InitIterable:       0,
	TestIterable:       1,
	PushNil:            1,
	PushTrue:           1,
	PushFalse:          1,
	PushConstant:       1,
	PushNativeFunction: 1,
	LiteralAcc:         -1,
	LiteralUnroll:      -1,
	LiteralEnd:         0,
	CheckLengthGreaterThan: 0,
	CheckLengthEqualTo:     0,
	OpIndex:            -1,
	OpIndexPeek:        0,
	OpSlice:            -2,
	OpSliceWithStep:    -3,
	GetField:           0,
	GetFieldPeek:       1,
	GetFieldFunction:   1,
	SetField:           -1,
	Unary:              0,
	Binary:             -1,
	Exit:               0,
	Yield:              0,
	AssertFailed:       0,
}

// Effect returns the stack delta for a fixed-effect opcode; callers holding
// a variable-effect opcode (PopN, OpFuncEval*, LiteralBegin/Unroll) must
// compute the delta themselves from the operand.
func (i Instr) Effect() int { return stackEffect[i.Op] }

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", op)
}

var opNames = map[Op]string{
	Noop:                   "Noop",
	JumpIfFalse:            "JumpIfFalse",
	JumpIfFalsePop:         "JumpIfFalsePop",
	JumpIfTrue:             "JumpIfTrue",
	JumpIfTruePop:          "JumpIfTruePop",
	Jump:                   "Jump",
	Return:                 "Return",
	Pop:                    "Pop",
	PopN:                   "PopN",
	Dup:                    "Dup",
	Swap:                   "Swap",
	PushLocal:              "PushLocal",
	StoreLocal:             "StoreLocal",
	PushGlobal:             "PushGlobal",
	StoreGlobal:            "StoreGlobal",
	PushUpValue:            "PushUpValue",
	StoreUpValue:           "StoreUpValue",
	StoreArray:             "StoreArray",
	IncGlobalCount:         "IncGlobalCount",
	Closure:                "Closure",
	CloseLocal:             "CloseLocal",
	CloseUpValue:           "CloseUpValue",
	LiftUpValue:            "LiftUpValue",
	InitIterable:           "InitIterable",
	TestIterable:           "TestIterable",
	PushNil:                "Nil",
	PushTrue:               "True",
	PushFalse:              "False",
	PushConstant:           "Constant",
	PushNativeFunction:     "NativeFunction",
	LiteralBegin:           "LiteralBegin",
	LiteralAcc:             "LiteralAcc",
	LiteralUnroll:          "LiteralUnroll",
	LiteralEnd:             "LiteralEnd",
	CheckLengthGreaterThan: "CheckLengthGreaterThan",
	CheckLengthEqualTo:     "CheckLengthEqualTo",
	OpFuncEval:             "Call",
	OpFuncEvalUnrolled:     "CallUnrolled",
	OpUnroll:               "Unroll",
	OpIndex:                "Index",
	OpIndexPeek:            "IndexPeek",
	OpSlice:                "Slice",
	OpSliceWithStep:        "SliceWithStep",
	GetField:               "GetField",
	GetFieldPeek:           "GetFieldPeek",
	GetFieldFunction:       "GetFieldFunction",
	SetField:               "SetField",
	Unary:                  "Unary",
	Binary:                 "Binary",
	Exit:                   "Exit",
	Yield:                  "Yield",
	AssertFailed:           "AssertFailed",
}
