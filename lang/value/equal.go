package value

import "github.com/cordy-lang/cordy/lang/cerr"

// HasEqual lets a type override structural equality (containers compare
// element-wise with cycle detection; everything else falls back to ==).
type HasEqual interface {
	Value
	Equal(other Value, seen map[any]bool) (bool, error)
}

// Equal implements Cordy's `==`. Scalars compare by value (with int/complex
// cross-comparison); containers compare structurally, guarding against
// self-referential cycles the same way Hash does.
func Equal(a, b Value) (bool, error) {
	return equalSeen(a, b, map[any]bool{})
}

func equalSeen(a, b Value, seen map[any]bool) (bool, error) {
	switch av := a.(type) {
	case NilType:
		_, ok := b.(NilType)
		return ok, nil
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv, nil
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv, nil
		case Complex:
			return bv.Im == 0 && int64(av) == bv.Re, nil
		}
		return false, nil
	case Complex:
		switch bv := b.(type) {
		case Complex:
			return av == bv, nil
		case Int:
			return av.Im == 0 && av.Re == int64(bv), nil
		}
		return false, nil
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv, nil
	case HasEqual:
		return av.Equal(b, seen)
	default:
		return a == b, nil
	}
}

// Ordered values support relative comparison (`<`, `<=`, `>`, `>=`).
type Ordered interface {
	Value
	// Compare returns -1, 0 or 1. Implementations may return an error if
	// `other` is not comparable to the receiver.
	Compare(other Value) (int, error)
}

// Compare implements Cordy's ordering: numbers compare numerically,
// strings lexicographically by rune, lists/vectors lexicographically by
// element, everything else is a TypeErrorCannotCompare.
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case Int:
		if bv, ok := b.(Int); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case Str:
		if bv, ok := b.(Str); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			default:
				return 0, nil
			}
		}
	case Ordered:
		return av.Compare(b)
	}
	return 0, cerr.New(cerr.TypeErrorCannotCompare, a.Repr(), b.Repr())
}
