package value

import (
	"hash/maphash"
	"strings"
)

// Set is an insertion-ordered collection of unique, structurally-hashed
// values. The empty literal `{}` parses as a Set (Dict needs at least one
// `key: value` pair to disambiguate), per the parser's literal grammar.
type Set struct {
	t *table
}

func NewSet(items []Value) (*Set, error) {
	s := &Set{t: newTable()}
	for _, v := range items {
		if _, err := s.t.set(v, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) String() string { return s.render(false) }
func (s *Set) Repr() string   { return s.render(true) }
func (*Set) Type() string     { return "set" }

func (s *Set) render(repr bool) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range s.t.liveEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		if repr {
			b.WriteString(e.key.Repr())
		} else {
			b.WriteString(e.key.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

func (s *Set) Len() int { return s.t.len() }

func (s *Set) Contains(v Value) (bool, error) {
	_, ok, err := s.t.get(v)
	return ok, err
}

func (s *Set) Add(v Value) (bool, error) { return s.t.set(v, v) }

func (s *Set) Remove(v Value) (bool, error) { return s.t.remove(v) }

func (s *Set) Clear() { s.t.clear() }

func (s *Set) Iterate() Iterator {
	entries := s.t.liveEntries()
	items := make([]Value, len(entries))
	for i, e := range entries {
		items[i] = e.key
	}
	return &sliceIterator{items: items}
}

func (s *Set) Items() []Value {
	entries := s.t.liveEntries()
	items := make([]Value, len(entries))
	for i, e := range entries {
		items[i] = e.key
	}
	return items
}

func (s *Set) Union(other *Set) (*Set, error) {
	out, err := NewSet(s.Items())
	if err != nil {
		return nil, err
	}
	for _, v := range other.Items() {
		if _, err := out.Add(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Set) Intersect(other *Set) (*Set, error) {
	out, err := NewSet(nil)
	if err != nil {
		return nil, err
	}
	for _, v := range s.Items() {
		ok, err := other.Contains(v)
		if err != nil {
			return nil, err
		}
		if ok {
			if _, err := out.Add(v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (s *Set) Difference(other *Set) (*Set, error) {
	out, err := NewSet(nil)
	if err != nil {
		return nil, err
	}
	for _, v := range s.Items() {
		ok, err := other.Contains(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			if _, err := out.Add(v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (s *Set) Equal(other Value, seen map[any]bool) (bool, error) {
	os, ok := other.(*Set)
	if !ok || s.Len() != os.Len() {
		return false, nil
	}
	if err := enterGuard(seen, s); err != nil {
		return false, err
	}
	defer delete(seen, s)
	for _, v := range s.Items() {
		ok, err := os.Contains(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Set) hashInto(h *maphash.Hash, seen map[any]bool) error {
	if err := enterGuard(seen, s); err != nil {
		return err
	}
	defer delete(seen, s)
	h.WriteByte(7)
	// Order-independent: XOR each element's hash so that set equality and
	// set hashing agree regardless of insertion order.
	var acc uint64
	for _, v := range s.Items() {
		var eh maphash.Hash
		eh.SetSeed(seed)
		if err := hashValue(v, &eh, seen); err != nil {
			return err
		}
		acc ^= eh.Sum64()
	}
	writeInt64(h, int64(acc))
	return nil
}
