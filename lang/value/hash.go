package value

import (
	"fmt"
	"hash/maphash"

	"github.com/cordy-lang/cordy/lang/cerr"
)

// Hashable values know how to contribute to a structural hash. Scalars hash
// their own bit pattern; containers hash their elements in order, which
// means a container that (directly or indirectly) contains itself would
// recurse forever without the guard in Hash below.
type Hashable interface {
	Value
	hashInto(h *maphash.Hash, seen map[any]bool) error
}

var seed = maphash.MakeSeed()

// Hash computes a structural hash of v, guarding against cyclic containers
// (a list that contains itself, etc) by tracking the identity of every
// container currently being hashed on this call stack. Encountering a
// container already on the stack raises ValueErrorRecursiveHash, mirroring
// the original implementation's guard_recursive_hash.
func Hash(v Value) (uint64, error) {
	var h maphash.Hash
	h.SetSeed(seed)
	if err := hashValue(v, &h, map[any]bool{}); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func hashValue(v Value, h *maphash.Hash, seen map[any]bool) error {
	switch v := v.(type) {
	case NilType:
		h.WriteByte(0)
		return nil
	case Bool:
		h.WriteByte(1)
		if v {
			h.WriteByte(1)
		} else {
			h.WriteByte(0)
		}
		return nil
	case Int:
		h.WriteByte(2)
		writeInt64(h, int64(v))
		return nil
	case Complex:
		h.WriteByte(3)
		writeInt64(h, v.Re)
		writeInt64(h, v.Im)
		return nil
	case Str:
		h.WriteByte(4)
		h.WriteString(string(v))
		return nil
	case Hashable:
		return v.hashInto(h, seen)
	default:
		// Callables and other reference types not declared Hashable hash by
		// pointer identity, which is always safe (never recurses).
		h.WriteByte(9)
		h.WriteString(fmt.Sprintf("%p", v))
		return nil
	}
}

func writeInt64(h *maphash.Hash, n int64) {
	var buf [8]byte
	u := uint64(n)
	for i := 0; i < 8; i++ {
		buf[i] = byte(u >> (8 * i))
	}
	h.Write(buf[:])
}

func enterGuard(seen map[any]bool, key any) error {
	if seen[key] {
		return cerr.New(cerr.ValueErrorRecursiveHash)
	}
	seen[key] = true
	return nil
}
