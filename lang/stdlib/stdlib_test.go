package stdlib_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/stdlib"
	"github.com/cordy-lang/cordy/lang/value"
)

// fakeCaller is a minimal stdlib.Caller for natives that invoke a Cordy
// callable (map, filter, reduce, sorted's key) or write to stdout (print).
// It only ever calls value.Native callables, so it drives them directly
// rather than going through a VM.
type fakeCaller struct {
	out bytes.Buffer
}

func (f *fakeCaller) Stdout() io.Writer { return &f.out }

func (f *fakeCaller) Call(fn value.Callable, args []value.Value) (value.Value, error) {
	n, ok := fn.(*value.Native)
	if !ok {
		panic("fakeCaller.Call only supports native callables")
	}
	e, ok := stdlib.Lookup(n.Name)
	if !ok {
		panic("unknown native: " + n.Name)
	}
	return e.Fn(f, args)
}

func call(t *testing.T, c *fakeCaller, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	e, ok := stdlib.Lookup(name)
	require.True(t, ok, "native %q not registered", name)
	return e.Fn(c, args)
}

func TestLen(t *testing.T) {
	c := &fakeCaller{}
	got, err := call(t, c, "len", value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	require.NoError(t, err)
	require.Equal(t, value.Int(3), got)
}

func TestLenRejectsNonIterable(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "len", value.Int(1))
	require.Error(t, err)
}

func TestSumAndMinMax(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(3), value.Int(1), value.Int(2)})

	sum, err := call(t, c, "sum", list)
	require.NoError(t, err)
	require.Equal(t, value.Int(6), sum)

	min, err := call(t, c, "min", list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), min)

	max, err := call(t, c, "max", list)
	require.NoError(t, err)
	require.Equal(t, value.Int(3), max)
}

func TestMinOfEmptyIsError(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "min", value.NewList(nil))
	require.Error(t, err)
}

func TestMapFilterReduce(t *testing.T) {
	c := &fakeCaller{}
	abs, _ := stdlib.Lookup("abs")
	boolFn, _ := stdlib.Lookup("bool")
	push, _ := stdlib.Lookup("push")

	negatives := value.NewList([]value.Value{value.Int(-1), value.Int(-2), value.Int(3)})
	mapped, err := call(t, c, "map", abs.Spec, negatives)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", mapped.Repr())

	truthiness := value.NewList([]value.Value{value.Int(0), value.Int(1), value.Int(0), value.Int(2)})
	filtered, err := call(t, c, "filter", boolFn.Spec, truthiness)
	require.NoError(t, err)
	require.Equal(t, "[1, 2]", filtered.Repr())

	items := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	reduced, err := call(t, c, "reduce", push.Spec, items, value.NewList(nil))
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", reduced.Repr())
}

func TestSortedWithoutKey(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(3), value.Int(1), value.Int(2)})
	got, err := call(t, c, "sorted", list)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", got.Repr())
}

func TestUniqueAndFlatten(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(1), value.Int(2)})
	unique, err := call(t, c, "unique", list)
	require.NoError(t, err)
	require.Equal(t, "[1, 2]", unique.Repr())

	nested := value.NewList([]value.Value{
		value.NewList([]value.Value{value.Int(1), value.Int(2)}),
		value.NewList([]value.Value{value.Int(3)}),
	})
	flat, err := call(t, c, "flatten", nested)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", flat.Repr())
}

func TestStringNatives(t *testing.T) {
	c := &fakeCaller{}

	split, err := call(t, c, "split", value.Str("a,b,c"), value.Str(","))
	require.NoError(t, err)
	require.Equal(t, "['a', 'b', 'c']", split.Repr())

	joined, err := call(t, c, "join", value.Str("-"), value.NewList([]value.Value{value.Str("a"), value.Str("b")}))
	require.NoError(t, err)
	require.Equal(t, value.Str("a-b"), joined)

	replaced, err := call(t, c, "replace", value.Str("hello"), value.Str("l"), value.Str("L"))
	require.NoError(t, err)
	require.Equal(t, value.Str("heLLo"), replaced)

	upper, err := call(t, c, "upper", value.Str("abc"))
	require.NoError(t, err)
	require.Equal(t, value.Str("ABC"), upper)
}

func TestFormat(t *testing.T) {
	c := &fakeCaller{}
	got, err := call(t, c, "format", value.Str("%s is %d"), value.Str("x"), value.Int(3))
	require.NoError(t, err)
	require.Equal(t, value.Str("x is 3"), got)
}

func TestFormatMissingArgumentIsError(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "format", value.Str("%d"))
	require.Error(t, err)
}

func TestFormatTooManyArgumentsIsError(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "format", value.Str("no placeholders"), value.Int(1))
	require.Error(t, err)
}

func TestAssertFailureCarriesMessage(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "assert", value.Bool(false), value.Str("x must be positive"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "x must be positive")
}

func TestPrintWritesJoinedArgsToCallerStdout(t *testing.T) {
	c := &fakeCaller{}
	_, err := call(t, c, "print", value.Str("a"), value.Int(1))
	require.NoError(t, err)
	require.Equal(t, "a 1\n", c.out.String())
}

func TestIntConversion(t *testing.T) {
	c := &fakeCaller{}
	got, err := call(t, c, "int", value.Str(" 42 "))
	require.NoError(t, err)
	require.Equal(t, value.Int(42), got)

	_, err = call(t, c, "int", value.Str("not a number"))
	require.Error(t, err)
}

func TestNativeIdentityIsStableAcrossLookups(t *testing.T) {
	a := stdlib.Native("len")
	b := stdlib.Native("len")
	require.Same(t, a, b)
}

func TestMinByMaxByWithKeyFunction(t *testing.T) {
	c := &fakeCaller{}
	abs, _ := stdlib.Lookup("abs")
	list := value.NewList([]value.Value{value.Int(-3), value.Int(1), value.Int(-2)})

	got, err := call(t, c, "min_by", abs.Spec, list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), got)

	got, err = call(t, c, "max_by", abs.Spec, list)
	require.NoError(t, err)
	require.Equal(t, value.Int(-3), got)
}

func TestSortByWithComparator(t *testing.T) {
	c := &fakeCaller{}
	sub, _ := stdlib.Lookup("sub")
	list := value.NewList([]value.Value{value.Int(3), value.Int(1), value.Int(2)})

	got, err := call(t, c, "sort_by", sub.Spec, list)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", got.Repr())
}

func TestMinByRejectsWrongArityFunction(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1)})
	print, _ := stdlib.Lookup("print")
	_, err := call(t, c, "min_by", print.Spec, list)
	require.Error(t, err)
}

func TestGroupByFixedSize(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3), value.Int(4), value.Int(5)})
	got, err := call(t, c, "group_by", value.Int(2), list)
	require.NoError(t, err)
	require.Equal(t, "[[1, 2], [3, 4], [5]]", got.Repr())
}

func TestGroupByKeyFunction(t *testing.T) {
	c := &fakeCaller{}
	abs, _ := stdlib.Lookup("abs")
	list := value.NewList([]value.Value{value.Int(-1), value.Int(1), value.Int(-2), value.Int(2)})
	got, err := call(t, c, "group_by", abs.Spec, list)
	require.NoError(t, err)
	d, ok := got.(*value.Dict)
	require.True(t, ok)
	v, found, err := d.Get(value.Int(1))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "[-1, 1]", v.Repr())
}

func TestPermutationsAndCombinations(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})

	perms, err := call(t, c, "permutations", value.Int(2), list)
	require.NoError(t, err)
	require.Equal(t, 6, perms.(value.Lenable).Len())

	combos, err := call(t, c, "combinations", value.Int(2), list)
	require.NoError(t, err)
	require.Equal(t, 3, combos.(value.Lenable).Len())
	require.Equal(t, "[1, 2]", combos.(*value.List).Items()[0].Repr())
}

func TestFlatMapWithAndWithoutMapper(t *testing.T) {
	c := &fakeCaller{}
	nested := value.NewList([]value.Value{
		value.NewList([]value.Value{value.Int(1), value.Int(2)}),
		value.NewList([]value.Value{value.Int(3)}),
	})
	got, err := call(t, c, "flat_map", nested)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", got.Repr())

	rangeFn, _ := stdlib.Lookup("range")
	list := value.NewList([]value.Value{value.Int(1), value.Int(2)})
	got, err = call(t, c, "flat_map", rangeFn.Spec, list)
	require.NoError(t, err)
	require.Equal(t, "[0, 0, 1]", got.Repr())
}

func TestPopFrontPushFront(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(3)})

	front, err := call(t, c, "pop_front", list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), front)
	require.Equal(t, "[2, 3]", list.Repr())

	_, err = call(t, c, "push_front", value.Int(0), list)
	require.NoError(t, err)
	require.Equal(t, "[0, 2, 3]", list.Repr())
}

func TestInsertRemoveClearPeekOnList(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(3)})

	_, err := call(t, c, "insert", value.Int(1), value.Int(2), list)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]", list.Repr())

	peeked, err := call(t, c, "peek", list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), peeked)

	removed, err := call(t, c, "remove", value.Int(0), list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), removed)
	require.Equal(t, "[2, 3]", list.Repr())

	_, err = call(t, c, "clear", list)
	require.NoError(t, err)
	require.Equal(t, 0, list.Len())
}

func TestSetUnionIntersectDifference(t *testing.T) {
	c := &fakeCaller{}
	a, err := value.NewSet([]value.Value{value.Int(1), value.Int(2)})
	require.NoError(t, err)
	other := value.NewList([]value.Value{value.Int(2), value.Int(3)})

	_, err = call(t, c, "set_union", other, a)
	require.NoError(t, err)
	require.Equal(t, 3, a.Len())

	b, err := value.NewSet([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	require.NoError(t, err)
	_, err = call(t, c, "set_intersect", value.NewList([]value.Value{value.Int(2), value.Int(3)}), b)
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())

	d, err := value.NewSet([]value.Value{value.Int(1), value.Int(2)})
	require.NoError(t, err)
	_, err = call(t, c, "set_difference", value.NewList([]value.Value{value.Int(1)}), d)
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
}

func TestDictSetDefault(t *testing.T) {
	c := &fakeCaller{}
	d, err := value.NewDict(nil)
	require.NoError(t, err)

	_, err = call(t, c, "dict_set_default", value.Int(0), d)
	require.NoError(t, err)
	require.NotNil(t, d.Default)
	cf, ok := d.Default.(*value.ConstFunc)
	require.True(t, ok)
	require.Equal(t, value.Int(0), cf.V)
}

func TestLeftFindRightFind(t *testing.T) {
	c := &fakeCaller{}
	list := value.NewList([]value.Value{value.Int(1), value.Int(2), value.Int(1)})

	left, err := call(t, c, "left_find", value.Int(1), list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), left)

	right, err := call(t, c, "right_find", value.Int(1), list)
	require.NoError(t, err)
	require.Equal(t, value.Int(1), right)

	miss, err := call(t, c, "left_find", value.Int(9), list)
	require.NoError(t, err)
	require.Equal(t, value.Nil, miss)
}

func TestBitwiseXorNative(t *testing.T) {
	c := &fakeCaller{}
	got, err := call(t, c, "bitwise_xor", value.Int(6), value.Int(3))
	require.NoError(t, err)
	require.Equal(t, value.Int(5), got)
}

func TestRegexSplitReplaceSearch(t *testing.T) {
	c := &fakeCaller{}

	split, err := call(t, c, "split", value.Str("a1b22c"), value.Str(`\d+`))
	require.NoError(t, err)
	require.Equal(t, "['a', 'b', 'c']", split.Repr())

	replaced, err := call(t, c, "replace", value.Str("a1b22c"), value.Str(`\d+`), value.Str("-"))
	require.NoError(t, err)
	require.Equal(t, value.Str("a-b-c"), replaced)

	found, err := call(t, c, "search", value.Str("a1b22c"), value.Str(`\d+`))
	require.NoError(t, err)
	list, ok := found.(*value.List)
	require.True(t, ok)
	require.Equal(t, 2, list.Len())
}

func TestReplaceWithCallableReplacer(t *testing.T) {
	c := &fakeCaller{}
	str, _ := stdlib.Lookup("str")
	got, err := call(t, c, "replace", value.Str("ab ab"), value.Str("ab"), str.Spec)
	require.NoError(t, err)
	require.Equal(t, value.Str("(ab,) (ab,)"), got)
}

func TestToHexAndToBin(t *testing.T) {
	c := &fakeCaller{}
	hex, err := call(t, c, "to_hex", value.Int(255))
	require.NoError(t, err)
	require.Equal(t, value.Str("ff"), hex)

	bin, err := call(t, c, "to_bin", value.Int(5))
	require.NoError(t, err)
	require.Equal(t, value.Str("101"), bin)
}

func TestFormatWithWidthAndPadding(t *testing.T) {
	c := &fakeCaller{}

	got, err := call(t, c, "format", value.Str("%05d"), value.Int(42))
	require.NoError(t, err)
	require.Equal(t, value.Str("00042"), got)

	got, err = call(t, c, "format", value.Str("%x %b"), value.Int(255), value.Int(5))
	require.NoError(t, err)
	require.Equal(t, value.Str("ff 101"), got)

	_, err = call(t, c, "format", value.Str("%00d"), value.Int(1))
	require.Error(t, err)
}
