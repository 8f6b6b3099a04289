package value

import (
	"strconv"
	"strings"
)

// NilType is the singleton nil value's type. Nil is the zero value.
type NilType struct{}

func (NilType) String() string { return "nil" }
func (NilType) Repr() string   { return "nil" }
func (NilType) Type() string   { return "nil" }

// Nil is the single nil value, safe to compare with ==.
var Nil = NilType{}

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Bool) Repr() string { return b.String() }
func (Bool) Type() string   { return "bool" }

// Int is Cordy's only integer type: a signed 64-bit value.
type Int int64

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Repr() string   { return i.String() }
func (Int) Type() string     { return "int" }

// Complex is an `a + bi` value with integer components, matching the
// original implementation's restriction to Gaussian integers.
type Complex struct {
	Re, Im int64
}

func (c Complex) String() string {
	var b strings.Builder
	if c.Re != 0 || c.Im == 0 {
		b.WriteString(strconv.FormatInt(c.Re, 10))
	}
	if c.Im != 0 {
		if c.Im >= 0 && b.Len() > 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.FormatInt(c.Im, 10))
		b.WriteByte('i')
	}
	return b.String()
}
func (c Complex) Repr() string { return c.String() }
func (Complex) Type() string   { return "complex" }

// Str is a UTF-8 string. Indexing and slicing operate on runes, not bytes,
// to match the language's "characters" model.
type Str string

func (s Str) String() string { return string(s) }
func (s Str) Repr() string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range string(s) {
		switch r {
		case '\'':
			b.WriteString("\\'")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
func (Str) Type() string { return "str" }

func (s Str) Len() int { return len([]rune(string(s))) }

func (s Str) GetIndex(i int) (Value, error) {
	runes := []rune(string(s))
	return Str(runes[i]), nil
}

func (s Str) NewSlice(indices []int) (Value, error) {
	runes := []rune(string(s))
	out := make([]rune, 0, len(indices))
	for _, i := range indices {
		out = append(out, runes[i])
	}
	return Str(string(out)), nil
}
