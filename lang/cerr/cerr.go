// Package cerr defines the two error strata used throughout the pipeline:
// compile-time errors (scan/parse) and runtime errors (raised by operators,
// the stdlib, and the VM). Both are plain, comparable Go values so that the
// optimizer can fold a provably-failing constant expression into a
// RuntimeError node (see lang/ast) without needing to run the VM.
package cerr

import (
	"fmt"

	"github.com/cordy-lang/cordy/lang/token"
)

// ParseErrorKind enumerates the parser's structured error kinds.
type ParseErrorKind int

const (
	ExpectedToken ParseErrorKind = iota
	ExpectedExpressionTerminal
	UnexpectedTokenAfterEoF
	LocalVariableConflict
	UndeclaredIdentifier
	BreakOutsideOfLoop
	ContinueOutsideOfLoop
	InvalidAssignmentTarget
	StructNotInGlobalScope
	DuplicateFieldName
	MultipleVariadicTermsInPattern
	NonDefaultParameterAfterDefaultParameter
	ExpectedFieldNameAfterArrow
)

// ParseError is a structured compile error with a source location.
type ParseError struct {
	Kind     ParseErrorKind
	Pos      token.Position
	Expected string // human description of what was expected
	Got      token.Token
	GotText  string
	Name     string // identifier involved, when relevant
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ExpectedToken:
		return fmt.Sprintf("expected %s, got %s", e.Expected, e.gotDesc())
	case ExpectedExpressionTerminal:
		return fmt.Sprintf("expected expression terminal, got %s", e.gotDesc())
	case UnexpectedTokenAfterEoF:
		return "unexpected token after end of expression"
	case LocalVariableConflict:
		return fmt.Sprintf("local variable '%s' already declared in this scope", e.Name)
	case UndeclaredIdentifier:
		return fmt.Sprintf("'%s' is not declared", e.Name)
	case BreakOutsideOfLoop:
		return "'break' outside of loop"
	case ContinueOutsideOfLoop:
		return "'continue' outside of loop"
	case InvalidAssignmentTarget:
		return "invalid assignment target"
	case StructNotInGlobalScope:
		return "'struct' may only be declared at global scope"
	case DuplicateFieldName:
		return fmt.Sprintf("duplicate field name '%s'", e.Name)
	case MultipleVariadicTermsInPattern:
		return "a pattern may contain at most one variadic term"
	case NonDefaultParameterAfterDefaultParameter:
		return fmt.Sprintf("non-default parameter '%s' follows a default parameter", e.Name)
	case ExpectedFieldNameAfterArrow:
		return "expected a field name after '->'"
	default:
		return "parse error"
	}
}

func (e *ParseError) gotDesc() string {
	if e.Got == token.EOF {
		return "nothing"
	}
	if e.GotText != "" {
		return fmt.Sprintf("%s '%s'", e.Got, e.GotText)
	}
	return e.Got.String()
}

// IsEOF reports whether this error is of the "expected token, got nothing"
// shape, used by the REPL to decide whether to request a continuation line
// rather than reporting failure outright.
func (e *ParseError) IsEOF() bool {
	switch e.Kind {
	case ExpectedToken, ExpectedExpressionTerminal, ExpectedFieldNameAfterArrow:
		return e.Got == token.EOF
	}
	return false
}

// RuntimeErrorKind enumerates runtime (VM/stdlib) error kinds.
type RuntimeErrorKind int

const (
	RuntimeExit RuntimeErrorKind = iota
	RuntimeYield
	AssertFailed

	ValueIsNotFunctionEvaluable
	IncorrectNumberOfFunctionArguments
	IncorrectNumberOfArguments

	ValueErrorIndexOutOfBounds
	ValueErrorStepCannotBeZero
	ValueErrorVariableNotDeclaredYet
	ValueErrorValueMustBeNonNegative
	ValueErrorValueMustBePositive
	ValueErrorValueMustBeNonZero
	ValueErrorValueMustBeNonEmpty
	ValueErrorCannotUnpackLengthMustBeGreaterThan
	ValueErrorCannotUnpackLengthMustBeEqual
	ValueErrorKeyNotPresent
	ValueErrorInvalidCharacterOrdinal
	ValueErrorInvalidFormatCharacter
	ValueErrorNotAllArgumentsUsedInStringFormatting
	ValueErrorMissingRequiredArgumentInStringFormatting
	ValueErrorEvalListMustHaveUnitLength
	ValueErrorRecursiveHash
	ValueErrorNoSuchField
	ValueErrorCannotCompileRegex

	TypeErrorUnaryOp
	TypeErrorBinaryOp
	TypeErrorBinaryIs
	TypeErrorCannotConvertToInt
	TypeErrorCannotCompare

	TypeErrorArgMustBeInt
	TypeErrorArgMustBeStr
	TypeErrorArgMustBeChar
	TypeErrorArgMustBeIterable
	TypeErrorArgMustBeIndexable
	TypeErrorArgMustBeSliceable
	TypeErrorArgMustBeDict
	TypeErrorArgMustBeFunction
	TypeErrorArgMustBeCmpOrKeyFunction
	TypeErrorArgMustBeSet
)

// Runtime is a structured runtime error. Fields not relevant to Kind are
// left zero. Args holds the offending value(s) rendered to a display string
// by the caller (the value package knows how to format itself; cerr cannot
// import it without creating an import cycle, so callers pre-render).
type Runtime struct {
	Kind     RuntimeErrorKind
	Op       string // operator/opcode mnemonic, when relevant
	Native   string // native function name, when relevant
	Ints     []int64
	Strs     []string
	Repr     []string // pre-rendered value representations
}

func (e *Runtime) Error() string {
	switch e.Kind {
	case RuntimeExit:
		return "exit"
	case RuntimeYield:
		return "yield"
	case AssertFailed:
		if len(e.Strs) > 0 {
			return fmt.Sprintf("assertion failed: %s", e.Strs[0])
		}
		return "assertion failed"
	case ValueIsNotFunctionEvaluable:
		return fmt.Sprintf("'%s' is not a function, and cannot be evaluated", reprOr(e, "value"))
	case IncorrectNumberOfFunctionArguments:
		return fmt.Sprintf("function expected %d arguments, got %d", e.ints(0), e.ints(1))
	case IncorrectNumberOfArguments:
		return fmt.Sprintf("'%s' expected %d arguments, got %d", e.Native, e.ints(0), e.ints(1))
	case ValueErrorIndexOutOfBounds:
		return fmt.Sprintf("index %d out of bounds for length %d", e.ints(0), e.ints(1))
	case ValueErrorStepCannotBeZero:
		return "step cannot be zero"
	case ValueErrorVariableNotDeclaredYet:
		return fmt.Sprintf("variable '%s' referenced before declaration", e.strs(0))
	case ValueErrorValueMustBeNonNegative:
		return fmt.Sprintf("value must be non-negative, got %d", e.ints(0))
	case ValueErrorValueMustBePositive:
		return fmt.Sprintf("value must be positive, got %d", e.ints(0))
	case ValueErrorValueMustBeNonZero:
		return "value must be non-zero"
	case ValueErrorValueMustBeNonEmpty:
		return "value must be non-empty"
	case ValueErrorCannotUnpackLengthMustBeGreaterThan:
		return fmt.Sprintf("cannot unpack: expected length > %d, got %d", e.ints(0), e.ints(1))
	case ValueErrorCannotUnpackLengthMustBeEqual:
		return fmt.Sprintf("cannot unpack: expected length %d, got %d", e.ints(0), e.ints(1))
	case ValueErrorKeyNotPresent:
		return fmt.Sprintf("key '%s' not present in dict", reprOr(e, "?"))
	case ValueErrorInvalidCharacterOrdinal:
		return fmt.Sprintf("invalid character ordinal %d", e.ints(0))
	case ValueErrorInvalidFormatCharacter:
		if len(e.Strs) > 0 {
			return fmt.Sprintf("invalid format character '%s'", e.Strs[0])
		}
		return "invalid format character"
	case ValueErrorNotAllArgumentsUsedInStringFormatting:
		return "not all arguments consumed in string formatting"
	case ValueErrorMissingRequiredArgumentInStringFormatting:
		return "missing required argument in string formatting"
	case ValueErrorEvalListMustHaveUnitLength:
		return fmt.Sprintf("a compose-into-index literal must have exactly one element, got %d", e.ints(0))
	case ValueErrorRecursiveHash:
		return "recursive value detected during hash or equality check"
	case ValueErrorNoSuchField:
		return fmt.Sprintf("'%s' has no such field", reprOr(e, "value"))
	case ValueErrorCannotCompileRegex:
		return fmt.Sprintf("cannot compile regex '%s'", e.strs(0))
	case TypeErrorUnaryOp:
		return fmt.Sprintf("unary '%s' is not supported for type of %s", e.Op, reprOr(e, "value"))
	case TypeErrorBinaryOp:
		return fmt.Sprintf("binary '%s' is not supported for types of %s and %s", e.Op, e.repr(0), e.repr(1))
	case TypeErrorBinaryIs:
		return fmt.Sprintf("'is' is not supported for types of %s and %s", e.repr(0), e.repr(1))
	case TypeErrorCannotConvertToInt:
		return fmt.Sprintf("cannot convert %s to an int", reprOr(e, "value"))
	case TypeErrorCannotCompare:
		return fmt.Sprintf("cannot compare %s and %s", e.repr(0), e.repr(1))
	case TypeErrorArgMustBeInt:
		return fmt.Sprintf("expected an int, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeStr:
		return fmt.Sprintf("expected a str, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeChar:
		return fmt.Sprintf("expected a single character str, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeIterable:
		return fmt.Sprintf("expected an iterable, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeIndexable:
		return fmt.Sprintf("expected an indexable, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeSliceable:
		return fmt.Sprintf("expected a sliceable, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeDict:
		return fmt.Sprintf("expected a dict, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeFunction:
		return fmt.Sprintf("expected a function, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeCmpOrKeyFunction:
		return fmt.Sprintf("expected a comparator or key function, got %s", reprOr(e, "value"))
	case TypeErrorArgMustBeSet:
		return fmt.Sprintf("expected a set, got %s", reprOr(e, "value"))
	default:
		return "runtime error"
	}
}

func (e *Runtime) ints(i int) int64 {
	if i < len(e.Ints) {
		return e.Ints[i]
	}
	return 0
}
func (e *Runtime) strs(i int) string {
	if i < len(e.Strs) {
		return e.Strs[i]
	}
	return ""
}
func (e *Runtime) repr(i int) string {
	if i < len(e.Repr) {
		return e.Repr[i]
	}
	return "?"
}
func reprOr(e *Runtime, fallback string) string {
	if len(e.Repr) > 0 {
		return e.Repr[0]
	}
	return fallback
}

// New builds a Runtime error of the given kind with pre-rendered value
// representations (used for type errors carrying offending operands).
func New(kind RuntimeErrorKind, repr ...string) *Runtime {
	return &Runtime{Kind: kind, Repr: repr}
}

// NewWithInts builds a Runtime error carrying integer arguments (bounds,
// counts, etc).
func NewWithInts(kind RuntimeErrorKind, ints ...int64) *Runtime {
	return &Runtime{Kind: kind, Ints: ints}
}

// NewWithStrs builds a Runtime error carrying string arguments.
func NewWithStrs(kind RuntimeErrorKind, strs ...string) *Runtime {
	return &Runtime{Kind: kind, Strs: strs}
}
