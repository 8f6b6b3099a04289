package value

import (
	"hash/maphash"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// Vector is a fixed-length sequence, distinguished from List by literal
// syntax `(a, b, c)` and by supporting elementwise arithmetic rather than
// push/pop mutation.
type Vector struct {
	items []Value
}

func NewVector(items []Value) *Vector {
	if items == nil {
		items = []Value{}
	}
	return &Vector{items: items}
}

func (v *Vector) String() string { return v.render(false) }
func (v *Vector) Repr() string   { return v.render(true) }
func (*Vector) Type() string     { return "vector" }

func (v *Vector) render(repr bool) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, e := range v.items {
		if i > 0 {
			b.WriteString(", ")
		}
		if repr {
			b.WriteString(e.Repr())
		} else {
			b.WriteString(e.String())
		}
	}
	if len(v.items) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

func (v *Vector) Len() int                       { return len(v.items) }
func (v *Vector) GetIndex(i int) (Value, error)  { return v.items[i], nil }
func (v *Vector) SetIndex(i int, x Value) error  { v.items[i] = x; return nil }
func (v *Vector) Iterate() Iterator              { return &sliceIterator{items: v.items} }
func (v *Vector) Items() []Value                 { return v.items }

func (v *Vector) NewSlice(indices []int) (Value, error) {
	out := make([]Value, 0, len(indices))
	for _, i := range indices {
		out = append(out, v.items[i])
	}
	return NewVector(out), nil
}

func (v *Vector) Contains(x Value) (bool, error) {
	for _, e := range v.items {
		eq, err := Equal(e, x)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func (v *Vector) Equal(other Value, seen map[any]bool) (bool, error) {
	ov, ok := other.(*Vector)
	if !ok || len(v.items) != len(ov.items) {
		return false, nil
	}
	if err := enterGuard(seen, v); err != nil {
		return false, err
	}
	defer delete(seen, v)
	for i := range v.items {
		eq, err := equalSeen(v.items[i], ov.items[i], seen)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

// Compare orders vectors lexicographically by element, shorter-is-less on
// a tie, exactly as List.Compare does.
func (v *Vector) Compare(other Value) (int, error) {
	ov, ok := other.(*Vector)
	if !ok {
		return 0, cerr.New(cerr.TypeErrorCannotCompare, v.Repr(), other.Repr())
	}
	return (&List{items: v.items}).Compare(&List{items: ov.items})
}

func (v *Vector) hashInto(h *maphash.Hash, seen map[any]bool) error {
	if err := enterGuard(seen, v); err != nil {
		return err
	}
	defer delete(seen, v)
	h.WriteByte(6)
	for _, e := range v.items {
		if err := hashValue(e, h, seen); err != nil {
			return err
		}
	}
	return nil
}

// ElementwiseBinary applies op to two equal-length vectors, position by
// position, matching the original implementation's vector arithmetic rule.
func ElementwiseBinary(op func(a, b Value) (Value, error), a, b *Vector) (Value, error) {
	if len(a.items) != len(b.items) {
		return nil, cerr.NewWithInts(cerr.ValueErrorCannotUnpackLengthMustBeEqual, int64(len(a.items)), int64(len(b.items)))
	}
	out := make([]Value, len(a.items))
	for i := range a.items {
		v, err := op(a.items[i], b.items[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return NewVector(out), nil
}
