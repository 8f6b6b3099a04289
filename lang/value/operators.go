// Operator semantics grounded on the original implementation's
// src/vm/operator.rs: Euclidean division/modulo, negative-shift symmetry,
// and the string/list coercions for `+`/`*`.
package value

import (
	"strconv"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// UnarySub implements `-x`.
func UnarySub(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return -v, nil
	case Complex:
		return Complex{Re: -v.Re, Im: -v.Im}, nil
	}
	return nil, cerr.New(cerr.TypeErrorUnaryOp, v.Repr())
}

// UnaryNot implements `not x` / `!x`.
func UnaryNot(v Value) (Value, error) {
	return Bool(!Truth(v)), nil
}

// UnaryBitwiseNot implements `~x`.
func UnaryBitwiseNot(v Value) (Value, error) {
	if i, ok := v.(Int); ok {
		return ^i, nil
	}
	return nil, cerr.New(cerr.TypeErrorUnaryOp, v.Repr())
}

func bothInt(a, b Value) (Int, Int, bool) {
	ai, aok := a.(Int)
	bi, bok := b.(Int)
	return ai, bi, aok && bok
}

// Add implements `+`: numeric addition, string concatenation/coercion (if
// either side is a Str, the other is stringified), and list concatenation.
func Add(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai + bi, nil
	}
	if ac, ok := a.(Complex); ok {
		bc := toComplex(b)
		return Complex{Re: ac.Re + bc.Re, Im: ac.Im + bc.Im}, nil
	}
	if bc, ok := b.(Complex); ok {
		ac := toComplex(a)
		return Complex{Re: ac.Re + bc.Re, Im: ac.Im + bc.Im}, nil
	}
	if _, ok := a.(Str); ok {
		return Str(a.String() + b.String()), nil
	}
	if _, ok := b.(Str); ok {
		return Str(a.String() + b.String()), nil
	}
	if al, ok := a.(*List); ok {
		if bl, ok := b.(*List); ok {
			out := make([]Value, 0, len(al.items)+len(bl.items))
			out = append(out, al.items...)
			out = append(out, bl.items...)
			return NewList(out), nil
		}
	}
	return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
}

func toComplex(v Value) Complex {
	switch v := v.(type) {
	case Complex:
		return v
	case Int:
		return Complex{Re: int64(v)}
	}
	return Complex{}
}

// Sub implements `-`.
func Sub(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai - bi, nil
	}
	if _, aok := a.(Complex); aok {
		ac, bc := toComplex(a), toComplex(b)
		return Complex{Re: ac.Re - bc.Re, Im: ac.Im - bc.Im}, nil
	}
	if _, bok := b.(Complex); bok {
		ac, bc := toComplex(a), toComplex(b)
		return Complex{Re: ac.Re - bc.Re, Im: ac.Im - bc.Im}, nil
	}
	return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
}

// Mul implements `*`: numeric multiplication, and string/list repetition
// (`"ab" * 3` or `3 * "ab"`).
func Mul(a, b Value) (Value, error) {
	if ai, bi, ok := bothInt(a, b); ok {
		return ai * bi, nil
	}
	if s, ok := a.(Str); ok {
		if n, ok := b.(Int); ok {
			return Str(strings.Repeat(string(s), max0(int(n)))), nil
		}
	}
	if s, ok := b.(Str); ok {
		if n, ok := a.(Int); ok {
			return Str(strings.Repeat(string(s), max0(int(n)))), nil
		}
	}
	if l, ok := a.(*List); ok {
		if n, ok := b.(Int); ok {
			return repeatList(l, int(n)), nil
		}
	}
	if l, ok := b.(*List); ok {
		if n, ok := a.(Int); ok {
			return repeatList(l, int(n)), nil
		}
	}
	return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func repeatList(l *List, n int) *List {
	n = max0(n)
	out := make([]Value, 0, len(l.items)*n)
	for i := 0; i < n; i++ {
		out = append(out, l.items...)
	}
	return NewList(out)
}

// Div implements `/` as floor division: the result always rounds toward
// negative infinity, which for the positive divisors Mod accepts keeps
// Mod's result non-negative.
func Div(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	if bi == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonZero)
	}
	i1, i2 := int64(ai), int64(bi)
	if i2 < 0 {
		return Int(-euclidDiv(-i1, i2)), nil
	}
	return Int(euclidDiv(i1, i2)), nil
}

func euclidDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		if b > 0 {
			q--
		} else {
			q++
		}
	}
	return q
}

func euclidMod(a, b int64) int64 {
	r := a % b
	if r < 0 {
		if b > 0 {
			r += b
		} else {
			r -= b
		}
	}
	return r
}

// Mod implements `%`, defined only for a positive divisor (rem_euclid).
func Mod(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	if bi <= 0 {
		return nil, cerr.NewWithInts(cerr.ValueErrorValueMustBePositive, int64(bi))
	}
	return Int(euclidMod(int64(ai), int64(bi))), nil
}

// Pow implements `**`, defined only for a non-negative exponent.
func Pow(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	if bi < 0 {
		return nil, cerr.NewWithInts(cerr.ValueErrorValueMustBeNonNegative, int64(bi))
	}
	result := int64(1)
	base := int64(ai)
	exp := int64(bi)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return Int(result), nil
}

// LeftShift implements `<<`. A negative shift amount is symmetric with `>>`
// by the same magnitude. When the left operand is a list, `<<` instead
// pushes the right operand onto the back (used as `list << x`).
func LeftShift(a, b Value) (Value, error) {
	if l, ok := a.(*List); ok {
		l.PushBack(b)
		return l, nil
	}
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	n := int64(bi)
	if n < 0 {
		return shiftRight(int64(ai), -n), nil
	}
	return shiftLeft(int64(ai), n), nil
}

// RightShift implements `>>`. When the right operand is a list, `x >> list`
// inserts x at the front of the list.
func RightShift(a, b Value) (Value, error) {
	if l, ok := b.(*List); ok {
		l.PushFront(a)
		return l, nil
	}
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	n := int64(bi)
	if n < 0 {
		return shiftLeft(int64(ai), -n), nil
	}
	return shiftRight(int64(ai), n), nil
}

func shiftLeft(a, n int64) Int {
	if n >= 64 {
		return 0
	}
	return Int(a << uint(n))
}

func shiftRight(a, n int64) Int {
	if n >= 64 {
		if a < 0 {
			return -1
		}
		return 0
	}
	return Int(a >> uint(n))
}

// BitwiseAnd implements `&`.
func BitwiseAnd(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	return ai & bi, nil
}

// BitwiseOr implements `|`.
func BitwiseOr(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	return ai | bi, nil
}

// BitwiseXor implements `^`, exposed only through the bitwise_xor native
// since the grammar has no infix token for it.
func BitwiseXor(a, b Value) (Value, error) {
	ai, bi, ok := bothInt(a, b)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorBinaryOp, a.Repr(), b.Repr())
	}
	return ai ^ bi, nil
}

// In implements the `in` operator: membership test against a string
// (substring), or any Lenable container that exposes Contains.
type Container interface {
	Value
	Contains(v Value) (bool, error)
}

func In(a, b Value) (Value, error) {
	switch bv := b.(type) {
	case Str:
		av, ok := a.(Str)
		if !ok {
			return nil, cerr.New(cerr.TypeErrorArgMustBeStr, a.Repr())
		}
		return Bool(strings.Contains(string(bv), string(av))), nil
	case Container:
		ok, err := bv.Contains(a)
		if err != nil {
			return nil, err
		}
		return Bool(ok), nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, b.Repr())
}

// FormatInt is a small shared helper used by the stdlib's to_hex/to_bin
// natives.
func FormatInt(n int64, base int) string {
	return strconv.FormatInt(n, base)
}
