// Indexing and slicing helpers shared by every Indexable/Sliceable type,
// grounded on the original implementation's core::collections get_index /
// get_slice (negative-index wraparound, Python-style slice clamping, and
// explicit step direction).
package value

import "github.com/cordy-lang/cordy/lang/cerr"

// ToIndex normalizes a possibly-negative index against a length, returning
// an error if still out of bounds after wraparound.
func ToIndex(length, i int) (int, error) {
	orig := i
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, cerr.NewWithInts(cerr.ValueErrorIndexOutOfBounds, int64(orig), int64(length))
	}
	return i, nil
}

// GetIndexed resolves `target[index]` against any Indexable, translating
// negative indices and checking bounds first.
func GetIndexed(target Indexable, index Value) (Value, error) {
	i, ok := index.(Int)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeInt, index.Repr())
	}
	idx, err := ToIndex(target.Len(), int(i))
	if err != nil {
		return nil, err
	}
	return target.GetIndex(idx)
}

// SetIndexed resolves `target[index] = value`.
func SetIndexed(target HasSetIndex, index, v Value) error {
	i, ok := index.(Int)
	if !ok {
		return cerr.New(cerr.TypeErrorArgMustBeInt, index.Repr())
	}
	idx, err := ToIndex(target.Len(), int(i))
	if err != nil {
		return err
	}
	return target.SetIndex(idx, v)
}

// sliceBound clamps an optional (nil-able via hasVal) slice endpoint into
// [0, length], applying negative-index wraparound first.
func sliceBound(length int, v Value, hasVal bool, def int) (int, error) {
	if !hasVal {
		return def, nil
	}
	if _, isNil := v.(NilType); isNil {
		return def, nil
	}
	i, ok := v.(Int)
	if !ok {
		return 0, cerr.New(cerr.TypeErrorArgMustBeInt, v.Repr())
	}
	n := int(i)
	if n < 0 {
		n += length
	}
	if n < 0 {
		n = 0
	}
	if n > length {
		n = length
	}
	return n, nil
}

// Indices computes the list of (already-normalized) element indices
// selected by target[low:high:step], matching the original's rev_range
// handling for negative steps.
func Indices(target Lenable, low, high, step Value, hasLow, hasHigh, hasStep bool) ([]int, error) {
	length := target.Len()
	st := int64(1)
	if hasStep {
		if _, isNil := step.(NilType); !isNil {
			si, ok := step.(Int)
			if !ok {
				return nil, cerr.New(cerr.TypeErrorArgMustBeInt, step.Repr())
			}
			if si == 0 {
				return nil, cerr.New(cerr.ValueErrorStepCannotBeZero)
			}
			st = int64(si)
		}
	}

	if st > 0 {
		lo, err := sliceBound(length, low, hasLow, 0)
		if err != nil {
			return nil, err
		}
		hi, err := sliceBound(length, high, hasHigh, length)
		if err != nil {
			return nil, err
		}
		var out []int
		for i := lo; i < hi; i += int(st) {
			out = append(out, i)
		}
		return out, nil
	}

	// Negative step: default bounds reverse (high defaults to the start,
	// low defaults to the end), matching Python's slice semantics.
	lo, err := sliceBound(length, low, hasLow, length-1)
	if err != nil {
		return nil, err
	}
	hi, err := sliceBound(length, high, hasHigh, -1)
	if err != nil {
		return nil, err
	}
	if hasHigh {
		if _, isNil := high.(NilType); !isNil {
			if hi == length {
				hi = -1
			} else if raw, ok := high.(Int); ok && int(raw) < 0 && hi == 0 {
				hi = -1
			}
		}
	}
	var out []int
	for i := lo; i > hi; i += int(st) {
		if i >= 0 && i < length {
			out = append(out, i)
		}
	}
	return out, nil
}
