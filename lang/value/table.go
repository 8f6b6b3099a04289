package value

import (
	"github.com/dolthub/swiss"
)

// table is the shared insertion-ordered hash table backing both Set and
// Dict. Structural equality means we cannot hand Value keys straight to a
// generic hash map (two different *List pointers with equal contents must
// collide); instead table buckets candidate entry indices by structural
// hash in a swiss.Map, and resolves collisions with Equal. A tombstone
// slice (rather than compaction on every removal) keeps iteration order
// stable and removal O(1) amortized.
type table struct {
	entries  []tableEntry
	index    *swiss.Map[uint64, []int]
	liveLen  int
}

type tableEntry struct {
	key   Value
	value Value // unused by Set
	live  bool
}

func newTable() *table {
	return &table{index: swiss.NewMap[uint64, []int](8)}
}

func (t *table) find(key Value) (int, uint64, error) {
	h, err := Hash(key)
	if err != nil {
		return -1, 0, err
	}
	if bucket, ok := t.index.Get(h); ok {
		for _, i := range bucket {
			e := t.entries[i]
			if !e.live {
				continue
			}
			eq, err := Equal(e.key, key)
			if err != nil {
				return -1, h, err
			}
			if eq {
				return i, h, nil
			}
		}
	}
	return -1, h, nil
}

// get returns the stored value (or the key itself for Set membership) and
// whether it was present.
func (t *table) get(key Value) (Value, bool, error) {
	i, _, err := t.find(key)
	if err != nil {
		return nil, false, err
	}
	if i < 0 {
		return nil, false, nil
	}
	return t.entries[i].value, true, nil
}

// set inserts or updates, returning whether the key was newly inserted.
func (t *table) set(key, val Value) (bool, error) {
	i, h, err := t.find(key)
	if err != nil {
		return false, err
	}
	if i >= 0 {
		t.entries[i].value = val
		return false, nil
	}
	idx := len(t.entries)
	t.entries = append(t.entries, tableEntry{key: key, value: val, live: true})
	t.liveLen++
	bucket, _ := t.index.Get(h)
	bucket = append(bucket, idx)
	t.index.Put(h, bucket)
	return true, nil
}

func (t *table) remove(key Value) (bool, error) {
	i, _, err := t.find(key)
	if err != nil {
		return false, err
	}
	if i < 0 {
		return false, nil
	}
	t.entries[i].live = false
	t.entries[i].key = nil
	t.entries[i].value = nil
	t.liveLen--
	return true, nil
}

func (t *table) len() int { return t.liveLen }

func (t *table) clear() {
	t.entries = nil
	t.liveLen = 0
	t.index = swiss.NewMap[uint64, []int](8)
}

// liveEntries returns entries in insertion order, skipping tombstones.
func (t *table) liveEntries() []tableEntry {
	out := make([]tableEntry, 0, t.liveLen)
	for _, e := range t.entries {
		if e.live {
			out = append(out, e)
		}
	}
	return out
}
