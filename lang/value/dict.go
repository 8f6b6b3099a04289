package value

import (
	"hash/maphash"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// Dict is an insertion-ordered key/value map with optional default-value
// production: `dict()[k]` for a missing key calls Default (if set) and
// inserts its result, matching the original's entry-API re-entry so the
// producer is invoked at most once per missing key.
type Dict struct {
	t       *table
	Default Callable
}

func NewDict(pairs [][2]Value) (*Dict, error) {
	d := &Dict{t: newTable()}
	for _, p := range pairs {
		if _, err := d.t.set(p[0], p[1]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Dict) String() string { return d.render(false) }
func (d *Dict) Repr() string   { return d.render(true) }
func (*Dict) Type() string     { return "dict" }

func (d *Dict) render(repr bool) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := range d.t.liveEntries() {
		if i > 0 {
			b.WriteString(", ")
		}
		if repr {
			b.WriteString(e.key.Repr())
			b.WriteString(": ")
			b.WriteString(e.value.Repr())
		} else {
			b.WriteString(e.key.String())
			b.WriteString(": ")
			b.WriteString(e.value.String())
		}
	}
	b.WriteByte('}')
	return b.String()
}

func (d *Dict) Len() int { return d.t.len() }

// Get implements plain lookup without invoking Default; VM opcodes that
// need default-production call GetOrDefault explicitly (GetField-style
// indexing goes through GetOrDefault, `.get(k)`/`in` go through Get).
func (d *Dict) Get(k Value) (Value, bool, error) { return d.t.get(k) }

// GetOrDefault implements `dict[k]`: on a miss, if a default producer is
// set, call it with k and insert the result (so a subsequent lookup of the
// same key sees the same value without re-invoking the producer).
func (d *Dict) GetOrDefault(k Value, call func(Callable, []Value) (Value, error)) (Value, error) {
	if v, ok, err := d.t.get(k); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}
	if d.Default == nil {
		return nil, cerr.New(cerr.ValueErrorKeyNotPresent, k.Repr())
	}
	produced, err := call(d.Default, []Value{k})
	if err != nil {
		return nil, err
	}
	if _, err := d.t.set(k, produced); err != nil {
		return nil, err
	}
	return produced, nil
}

func (d *Dict) SetKey(k, v Value) error {
	_, err := d.t.set(k, v)
	return err
}

func (d *Dict) Remove(k Value) (bool, error) { return d.t.remove(k) }

func (d *Dict) Contains(k Value) (bool, error) {
	_, ok, err := d.t.get(k)
	return ok, err
}

func (d *Dict) Clear() { d.t.clear() }

// Iterate yields (key, value) pairs as 2-element Vectors, matching the
// language's `for k, v in dict` destructuring convention.
func (d *Dict) Iterate() Iterator {
	entries := d.t.liveEntries()
	items := make([]Value, len(entries))
	for i, e := range entries {
		items[i] = NewVector([]Value{e.key, e.value})
	}
	return &sliceIterator{items: items}
}

func (d *Dict) Keys() []Value {
	entries := d.t.liveEntries()
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}

func (d *Dict) Values() []Value {
	entries := d.t.liveEntries()
	out := make([]Value, len(entries))
	for i, e := range entries {
		out[i] = e.value
	}
	return out
}

func (d *Dict) Equal(other Value, seen map[any]bool) (bool, error) {
	od, ok := other.(*Dict)
	if !ok || d.Len() != od.Len() {
		return false, nil
	}
	if err := enterGuard(seen, d); err != nil {
		return false, err
	}
	defer delete(seen, d)
	for _, e := range d.t.liveEntries() {
		ov, ok, err := od.Get(e.key)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		eq, err := equalSeen(e.value, ov, seen)
		if err != nil || !eq {
			return eq, err
		}
	}
	return true, nil
}

func (d *Dict) hashInto(h *maphash.Hash, seen map[any]bool) error {
	if err := enterGuard(seen, d); err != nil {
		return err
	}
	defer delete(seen, d)
	h.WriteByte(8)
	var acc uint64
	for _, e := range d.t.liveEntries() {
		var eh maphash.Hash
		eh.SetSeed(seed)
		if err := hashValue(e.key, &eh, seen); err != nil {
			return err
		}
		if err := hashValue(e.value, &eh, seen); err != nil {
			return err
		}
		acc ^= eh.Sum64()
	}
	writeInt64(h, int64(acc))
	return nil
}
