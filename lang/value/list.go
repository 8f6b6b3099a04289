package value

import (
	"hash/maphash"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// List is Cordy's mutable, growable sequence type. It backs both literal
// `[...]` construction and the push/pop/insert stdlib functions; `<<`/`>>`
// use it as a deque (PushBack/PushFront).
type List struct {
	items []Value
}

func NewList(items []Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{items: items}
}

func (l *List) String() string { return l.render(false) }
func (l *List) Repr() string   { return l.render(true) }
func (*List) Type() string     { return "list" }

func (l *List) render(repr bool) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range l.items {
		if i > 0 {
			b.WriteString(", ")
		}
		if repr {
			b.WriteString(v.Repr())
		} else {
			b.WriteString(v.String())
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (l *List) Len() int { return len(l.items) }

func (l *List) GetIndex(i int) (Value, error) { return l.items[i], nil }

func (l *List) SetIndex(i int, v Value) error {
	l.items[i] = v
	return nil
}

func (l *List) NewSlice(indices []int) (Value, error) {
	out := make([]Value, 0, len(indices))
	for _, i := range indices {
		out = append(out, l.items[i])
	}
	return NewList(out), nil
}

func (l *List) Iterate() Iterator { return &sliceIterator{items: l.items} }

func (l *List) Contains(v Value) (bool, error) {
	for _, e := range l.items {
		eq, err := Equal(e, v)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
	}
	return false, nil
}

func (l *List) PushBack(v Value)  { l.items = append(l.items, v) }
func (l *List) PushFront(v Value) { l.items = append([]Value{v}, l.items...) }

func (l *List) PopBack() (Value, error) {
	if len(l.items) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	v := l.items[len(l.items)-1]
	l.items = l.items[:len(l.items)-1]
	return v, nil
}

func (l *List) PopFront() (Value, error) {
	if len(l.items) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	v := l.items[0]
	l.items = l.items[1:]
	return v, nil
}

func (l *List) InsertAt(i int, v Value) error {
	if i < 0 || i > len(l.items) {
		return cerr.NewWithInts(cerr.ValueErrorIndexOutOfBounds, int64(i), int64(len(l.items)))
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	return nil
}

func (l *List) RemoveAt(i int) (Value, error) {
	if i < 0 || i >= len(l.items) {
		return nil, cerr.NewWithInts(cerr.ValueErrorIndexOutOfBounds, int64(i), int64(len(l.items)))
	}
	v := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	return v, nil
}

func (l *List) Clear() { l.items = l.items[:0] }

// Items exposes the backing slice for stdlib functions that need bulk
// access (sort, map, filter, etc); callers must not retain it past the
// current opcode.
func (l *List) Items() []Value { return l.items }

func (l *List) Equal(other Value, seen map[any]bool) (bool, error) {
	ol, ok := other.(*List)
	if !ok {
		return false, nil
	}
	if len(l.items) != len(ol.items) {
		return false, nil
	}
	if err := enterGuard(seen, l); err != nil {
		return false, err
	}
	defer delete(seen, l)
	for i := range l.items {
		eq, err := equalSeen(l.items[i], ol.items[i], seen)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func (l *List) Compare(other Value) (int, error) {
	ol, ok := other.(*List)
	if !ok {
		return 0, cerr.New(cerr.TypeErrorCannotCompare, l.Repr(), other.Repr())
	}
	n := len(l.items)
	if len(ol.items) < n {
		n = len(ol.items)
	}
	for i := 0; i < n; i++ {
		c, err := Compare(l.items[i], ol.items[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(l.items) < len(ol.items):
		return -1, nil
	case len(l.items) > len(ol.items):
		return 1, nil
	}
	return 0, nil
}

func (l *List) hashInto(h *maphash.Hash, seen map[any]bool) error {
	if err := enterGuard(seen, l); err != nil {
		return err
	}
	defer delete(seen, l)
	h.WriteByte(5)
	for _, v := range l.items {
		if err := hashValue(v, h, seen); err != nil {
			return err
		}
	}
	return nil
}

type sliceIterator struct {
	items []Value
	pos   int
}

func (it *sliceIterator) Next() (Value, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}
func (it *sliceIterator) Done() {}
