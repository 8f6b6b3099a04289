package stdlib

import (
	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/value"
)

func init() {
	register("len", 1, false, nativeLen)
	register("range", 1, true, nativeRange)
	register("enumerate", 1, false, nativeEnumerate)
	register("zip", 2, false, nativeZip)
	register("reversed", 1, false, nativeReversed)
	register("sorted", 1, true, nativeSorted)
	register("sum", 1, false, nativeSum)
	register("min", 1, false, nativeMin)
	register("max", 1, false, nativeMax)
	register("abs", 1, false, nativeAbs)
	register("map", 2, false, nativeMap)
	register("filter", 2, false, nativeFilter)
	register("reduce", 2, true, nativeReduce)
	register("all", 1, false, nativeAll)
	register("any", 1, false, nativeAny)
	register("list", 1, false, nativeList)
	register("vector", 1, false, nativeVector)
	register("set", 1, false, nativeSet)
	register("dict", 1, false, nativeDict)
	register("heap", 1, false, nativeHeap)
	register("push", 2, false, nativePush)
	register("pop", 1, false, nativePop)
	register("last", 1, false, nativeLast)
	register("head", 1, false, nativeHead)
	register("tail", 1, false, nativeTail)
	register("init", 1, false, nativeInit)
	register("concat", 0, true, nativeConcat)
	register("sort", 1, false, nativeSort)
	register("unique", 1, false, nativeUnique)
	register("flatten", 1, false, nativeFlatten)
	register("index_of", 2, false, nativeIndexOf)
	register("min_by", 2, false, nativeMinBy)
	register("max_by", 2, false, nativeMaxBy)
	register("sort_by", 2, false, nativeSortBy)
	register("group_by", 2, false, nativeGroupBy)
	register("permutations", 2, false, nativePermutations)
	register("combinations", 2, false, nativeCombinations)
	register("flat_map", 1, true, nativeFlatMap)
	register("pop_front", 1, false, nativePopFront)
	register("push_front", 2, false, nativePushFront)
	register("insert", 3, false, nativeInsert)
	register("remove", 2, false, nativeRemove)
	register("clear", 1, false, nativeClear)
	register("peek", 1, false, nativePeek)
	register("set_union", 2, false, nativeSetUnion)
	register("set_intersect", 2, false, nativeSetIntersect)
	register("set_difference", 2, false, nativeSetDifference)
	register("dict_set_default", 2, false, nativeDictSetDefault)
	register("left_find", 2, false, nativeLeftFind)
	register("right_find", 2, false, nativeRightFind)
}

func nativeLen(c Caller, args []value.Value) (value.Value, error) {
	l, ok := args[0].(value.Lenable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, args[0].Repr())
	}
	return value.Int(l.Len()), nil
}

func nativeRange(c Caller, args []value.Value) (value.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		stop = n
	case 2:
		a, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asInt(args[1])
		if err != nil {
			return nil, err
		}
		start, stop = a, b
	case 3:
		a, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asInt(args[1])
		if err != nil {
			return nil, err
		}
		s, err := asInt(args[2])
		if err != nil {
			return nil, err
		}
		start, stop, step = a, b, s
	default:
		return nil, &cerr.Runtime{Kind: cerr.IncorrectNumberOfArguments, Native: "range", Ints: []int64{1, int64(len(args))}}
	}
	if step == 0 {
		return nil, cerr.New(cerr.ValueErrorStepCannotBeZero)
	}
	return value.RangeValue{Start: start, Stop: stop, Step: step}, nil
}

func nativeEnumerate(c Caller, args []value.Value) (value.Value, error) {
	it, err := asIterable(args[0])
	if err != nil {
		return nil, err
	}
	return &enumerableValue{inner: it}, nil
}

func nativeZip(c Caller, args []value.Value) (value.Value, error) {
	a, err := asIterable(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asIterable(args[1])
	if err != nil {
		return nil, err
	}
	return &zippedValue{a: a, b: b}, nil
}

func nativeReversed(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return value.NewList(out), nil
}

func nativeSorted(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	var key value.Callable
	if len(args) > 1 {
		var ok bool
		key, ok = args[1].(value.Callable)
		if !ok {
			return nil, cerr.New(cerr.TypeErrorArgMustBeCmpOrKeyFunction, args[1].Repr())
		}
	}
	out := append([]value.Value{}, items...)
	if err := sortValues(c, out, key); err != nil {
		return nil, err
	}
	return value.NewList(out), nil
}

func sortValues(c Caller, items []value.Value, key value.Callable) error {
	keyOf := func(v value.Value) (value.Value, error) {
		if key == nil {
			return v, nil
		}
		return c.Call(key, []value.Value{v})
	}
	var sortErr error
	keys := make([]value.Value, len(items))
	for i, v := range items {
		k, err := keyOf(v)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	// Simple insertion sort: the arity is small enough in practice that the
	// comparator's error path matters more than asymptotic speed here.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			cmp, err := value.Compare(keys[j-1], keys[j])
			if err != nil {
				sortErr = err
				break
			}
			if cmp <= 0 {
				break
			}
			keys[j-1], keys[j] = keys[j], keys[j-1]
			items[j-1], items[j] = items[j], items[j-1]
		}
		if sortErr != nil {
			return sortErr
		}
	}
	return nil
}

func nativeSum(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	acc := value.Value(value.Int(0))
	for _, v := range items {
		acc, err = value.Add(acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func nativeMin(c Caller, args []value.Value) (value.Value, error) {
	return reduceExtreme(args[0], -1)
}

func nativeMax(c Caller, args []value.Value) (value.Value, error) {
	return reduceExtreme(args[0], 1)
}

func reduceExtreme(v value.Value, want int) (value.Value, error) {
	items, err := materialize(v)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	best := items[0]
	for _, v := range items[1:] {
		cmp, err := value.Compare(v, best)
		if err != nil {
			return nil, err
		}
		if (want < 0 && cmp < 0) || (want > 0 && cmp > 0) {
			best = v
		}
	}
	return best, nil
}

func nativeAbs(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = -n
	}
	return value.Int(n), nil
}

func nativeMap(c Caller, args []value.Value) (value.Value, error) {
	fn, ok := args[0].(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(items))
	for i, v := range items {
		r, err := c.Call(fn, []value.Value{v})
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return value.NewList(out), nil
}

func nativeFilter(c Caller, args []value.Value) (value.Value, error) {
	fn, ok := args[0].(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, v := range items {
		r, err := c.Call(fn, []value.Value{v})
		if err != nil {
			return nil, err
		}
		if value.Truth(r) {
			out = append(out, v)
		}
	}
	return value.NewList(out), nil
}

func nativeReduce(c Caller, args []value.Value) (value.Value, error) {
	fn, ok := args[0].(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	var acc value.Value
	if len(args) > 2 {
		acc = args[2]
	} else {
		if len(items) == 0 {
			return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
		}
		acc = items[0]
		items = items[1:]
	}
	for _, v := range items {
		acc, err = c.Call(fn, []value.Value{acc, v})
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func nativeAll(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if !value.Truth(v) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func nativeAny(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		if value.Truth(v) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func nativeList(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewList(items), nil
}

func nativeVector(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewVector(items), nil
}

func nativeSet(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewSet(items)
}

func nativeDict(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	pairs := make([][2]value.Value, len(items))
	for i, v := range items {
		idx, ok := v.(value.Indexable)
		if !ok {
			return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, v.Repr())
		}
		if idx.Len() != 2 {
			return nil, cerr.NewWithInts(cerr.ValueErrorCannotUnpackLengthMustBeEqual, int64(2), int64(idx.Len()))
		}
		k, err := idx.GetIndex(0)
		if err != nil {
			return nil, err
		}
		val, err := idx.GetIndex(1)
		if err != nil {
			return nil, err
		}
		pairs[i] = [2]value.Value{k, val}
	}
	return value.NewDict(pairs)
}

func nativeHeap(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewHeap(items)
}

func nativePush(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[0].(type) {
	case *value.List:
		t.PushBack(args[1])
		return t, nil
	case *value.Set:
		if _, err := t.Add(args[1]); err != nil {
			return nil, err
		}
		return t, nil
	case *value.Heap:
		if err := t.Push(args[1]); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
}

func nativePop(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[0].(type) {
	case *value.List:
		return t.PopBack()
	case *value.Heap:
		return t.Pop()
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
}

func nativeLast(c Caller, args []value.Value) (value.Value, error) {
	idx, ok := args[0].(value.Indexable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
	}
	if idx.Len() == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	return idx.GetIndex(idx.Len() - 1)
}

func nativeHead(c Caller, args []value.Value) (value.Value, error) {
	idx, ok := args[0].(value.Indexable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
	}
	if idx.Len() == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	return idx.GetIndex(0)
}

func nativeTail(c Caller, args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.Sliceable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeSliceable, args[0].Repr())
	}
	n := s.Len()
	indices := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		indices = append(indices, i)
	}
	return s.NewSlice(indices)
}

func nativeInit(c Caller, args []value.Value) (value.Value, error) {
	s, ok := args[0].(value.Sliceable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeSliceable, args[0].Repr())
	}
	n := s.Len()
	if n == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	indices := make([]int, 0, n-1)
	for i := 0; i < n-1; i++ {
		indices = append(indices, i)
	}
	return s.NewSlice(indices)
}

func nativeConcat(c Caller, args []value.Value) (value.Value, error) {
	var out []value.Value
	for _, a := range args {
		items, err := materialize(a)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return value.NewList(out), nil
}

func nativeSort(c Caller, args []value.Value) (value.Value, error) {
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
	}
	items := l.Items()
	if err := sortValues(c, items, nil); err != nil {
		return nil, err
	}
	return l, nil
}

func nativeUnique(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, v := range items {
		dup := false
		for _, o := range out {
			eq, err := value.Equal(v, o)
			if err != nil {
				return nil, err
			}
			if eq {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return value.NewList(out), nil
}

func nativeFlatten(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, v := range items {
		inner, err := materialize(v)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return value.NewList(out), nil
}

func nativeIndexOf(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for i, v := range items {
		eq, err := value.Equal(v, args[1])
		if err != nil {
			return nil, err
		}
		if eq {
			return value.Int(i), nil
		}
	}
	return value.Int(-1), nil
}

// byComparator turns the `by` argument of min_by/max_by/sort_by
// into a 2-element comparator, dispatching on its declared arity: a 2-arg
// callable is invoked as cmp(a, b) and its sign taken directly, a 1-arg
// callable is treated as a key extractor and the keys are compared.
func byComparator(by value.Value) (func(c Caller, a, b value.Value) (int, error), error) {
	fn, ok := by.(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, by.Repr())
	}
	n, _ := fn.Arity()
	switch n {
	case 2:
		return func(c Caller, a, b value.Value) (int, error) {
			r, err := c.Call(fn, []value.Value{a, b})
			if err != nil {
				return 0, err
			}
			ri, err := asInt(r)
			if err != nil {
				return 0, err
			}
			switch {
			case ri < 0:
				return -1, nil
			case ri > 0:
				return 1, nil
			default:
				return 0, nil
			}
		}, nil
	case 1:
		return func(c Caller, a, b value.Value) (int, error) {
			ka, err := c.Call(fn, []value.Value{a})
			if err != nil {
				return 0, err
			}
			kb, err := c.Call(fn, []value.Value{b})
			if err != nil {
				return 0, err
			}
			return value.Compare(ka, kb)
		}, nil
	default:
		return nil, cerr.New(cerr.TypeErrorArgMustBeCmpOrKeyFunction, by.Repr())
	}
}

func extremeBy(c Caller, by, iterable value.Value, want int) (value.Value, error) {
	items, err := materialize(iterable)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
	}
	cmp, err := byComparator(by)
	if err != nil {
		return nil, err
	}
	best := items[0]
	for _, v := range items[1:] {
		cv, err := cmp(c, v, best)
		if err != nil {
			return nil, err
		}
		if (want < 0 && cv < 0) || (want > 0 && cv > 0) {
			best = v
		}
	}
	return best, nil
}

func nativeMinBy(c Caller, args []value.Value) (value.Value, error) {
	return extremeBy(c, args[0], args[1], -1)
}

func nativeMaxBy(c Caller, args []value.Value) (value.Value, error) {
	return extremeBy(c, args[0], args[1], 1)
}

func sortByComparator(c Caller, items []value.Value, cmp func(Caller, value.Value, value.Value) (int, error)) error {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0; j-- {
			cv, err := cmp(c, items[j-1], items[j])
			if err != nil {
				return err
			}
			if cv <= 0 {
				break
			}
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
	return nil
}

func nativeSortBy(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	cmp, err := byComparator(args[0])
	if err != nil {
		return nil, err
	}
	out := append([]value.Value{}, items...)
	if err := sortByComparator(c, out, cmp); err != nil {
		return nil, err
	}
	return value.NewList(out), nil
}

// nativeGroupBy implements `group_by(n, iter)` (fixed-size chunking, last
// group may be short) and `group_by(key, iter)` (an insertion-ordered dict
// from key to the list of elements that produced it).
func nativeGroupBy(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	if n, ok := args[0].(value.Int); ok {
		if n <= 0 {
			return nil, cerr.NewWithInts(cerr.ValueErrorValueMustBePositive, int64(n))
		}
		size := int(n)
		var groups []value.Value
		var group []value.Value
		for _, v := range items {
			group = append(group, v)
			if len(group) == size {
				groups = append(groups, value.NewList(group))
				group = nil
			}
		}
		if len(group) > 0 {
			groups = append(groups, value.NewList(group))
		}
		return value.NewList(groups), nil
	}
	fn, ok := args[0].(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
	}
	groups, err := value.NewDict(nil)
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		key, err := c.Call(fn, []value.Value{v})
		if err != nil {
			return nil, err
		}
		existing, ok, err := groups.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			existing.(*value.List).PushBack(v)
			continue
		}
		if err := groups.SetKey(key, value.NewList([]value.Value{v})); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

func nativePermutations(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, cerr.NewWithInts(cerr.ValueErrorValueMustBePositive, n)
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	if int(n) > len(items) {
		return value.NewList(nil), nil
	}
	var out []value.Value
	used := make([]bool, len(items))
	cur := make([]value.Value, 0, n)
	var rec func()
	rec = func() {
		if len(cur) == int(n) {
			out = append(out, value.NewList(append([]value.Value{}, cur...)))
			return
		}
		for i, v := range items {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, v)
			rec()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	rec()
	return value.NewList(out), nil
}

func nativeCombinations(c Caller, args []value.Value) (value.Value, error) {
	n, err := asInt(args[0])
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, cerr.NewWithInts(cerr.ValueErrorValueMustBePositive, n)
	}
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	if int(n) > len(items) {
		return value.NewList(nil), nil
	}
	var out []value.Value
	cur := make([]value.Value, 0, n)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == int(n) {
			out = append(out, value.NewList(append([]value.Value{}, cur...)))
			return
		}
		for i := start; i < len(items); i++ {
			cur = append(cur, items[i])
			rec(i + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0)
	return value.NewList(out), nil
}

// nativeFlatMap implements `flat_map(iter)` (identity mapper) and
// `flat_map(f, iter)`: apply f (if given) to each element, then flatten the
// result's own iteration into the accumulator.
func nativeFlatMap(c Caller, args []value.Value) (value.Value, error) {
	var fn value.Callable
	target := args[0]
	if len(args) > 1 {
		var ok bool
		fn, ok = args[0].(value.Callable)
		if !ok {
			return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
		}
		target = args[1]
	}
	items, err := materialize(target)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for _, v := range items {
		elem := v
		if fn != nil {
			elem, err = c.Call(fn, []value.Value{v})
			if err != nil {
				return nil, err
			}
		}
		inner, err := materialize(elem)
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return value.NewList(out), nil
}

func nativePopFront(c Caller, args []value.Value) (value.Value, error) {
	l, ok := args[0].(*value.List)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[0].Repr())
	}
	return l.PopFront()
}

func nativePushFront(c Caller, args []value.Value) (value.Value, error) {
	l, ok := args[1].(*value.List)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[1].Repr())
	}
	l.PushFront(args[0])
	return l, nil
}

// nativeInsert implements `insert(index, value, target)` for lists (shifting
// elements right, or appending when index == len) and `insert(key, value,
// target)` for dicts (an unconditional SetKey).
func nativeInsert(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[2].(type) {
	case *value.List:
		idx, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		if int64(idx) == int64(t.Len()) {
			t.PushBack(args[1])
			return t, nil
		}
		if err := t.InsertAt(int(idx), args[1]); err != nil {
			return nil, err
		}
		return t, nil
	case *value.Dict:
		if err := t.SetKey(args[0], args[1]); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIndexable, args[2].Repr())
}

// nativeRemove implements `remove(needle, target)`: an index for a list, a
// value for a set, a key for a dict.
func nativeRemove(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[1].(type) {
	case *value.List:
		idx, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		return t.RemoveAt(int(idx))
	case *value.Set:
		ok, err := t.Remove(args[0])
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	case *value.Dict:
		ok, err := t.Remove(args[0])
		if err != nil {
			return nil, err
		}
		return value.Bool(ok), nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, args[1].Repr())
}

func nativeClear(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[0].(type) {
	case *value.List:
		t.Clear()
		return t, nil
	case *value.Set:
		t.Clear()
		return t, nil
	case *value.Dict:
		t.Clear()
		return t, nil
	case *value.Heap:
		*t = value.Heap{}
		return t, nil
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, args[0].Repr())
}

func nativePeek(c Caller, args []value.Value) (value.Value, error) {
	switch t := args[0].(type) {
	case *value.List:
		if t.Len() == 0 {
			return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
		}
		return t.GetIndex(0)
	case *value.Vector:
		if t.Len() == 0 {
			return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
		}
		return t.GetIndex(0)
	case *value.Set:
		items := t.Items()
		if len(items) == 0 {
			return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
		}
		return items[0], nil
	case *value.Dict:
		keys := t.Keys()
		if len(keys) == 0 {
			return nil, cerr.New(cerr.ValueErrorValueMustBeNonEmpty)
		}
		v, _, err := t.Get(keys[0])
		if err != nil {
			return nil, err
		}
		return value.NewVector([]value.Value{keys[0], v}), nil
	case *value.Heap:
		return t.Peek()
	}
	return nil, cerr.New(cerr.TypeErrorArgMustBeIterable, args[0].Repr())
}

func asSet(v value.Value) (*value.Set, error) {
	s, ok := v.(*value.Set)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeSet, v.Repr())
	}
	return s, nil
}

// nativeSetUnion/nativeSetIntersect/nativeSetDifference implement
// `set_union(other, this)` etc, mutating this in place and returning it.
func nativeSetUnion(c Caller, args []value.Value) (value.Value, error) {
	this, err := asSet(args[1])
	if err != nil {
		return nil, err
	}
	other, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range other {
		if _, err := this.Add(v); err != nil {
			return nil, err
		}
	}
	return this, nil
}

func nativeSetIntersect(c Caller, args []value.Value) (value.Value, error) {
	this, err := asSet(args[1])
	if err != nil {
		return nil, err
	}
	other, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	keep, err := value.NewSet(other)
	if err != nil {
		return nil, err
	}
	for _, v := range this.Items() {
		ok, err := keep.Contains(v)
		if err != nil {
			return nil, err
		}
		if !ok {
			if _, err := this.Remove(v); err != nil {
				return nil, err
			}
		}
	}
	return this, nil
}

func nativeSetDifference(c Caller, args []value.Value) (value.Value, error) {
	this, err := asSet(args[1])
	if err != nil {
		return nil, err
	}
	other, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range other {
		if _, err := this.Remove(v); err != nil {
			return nil, err
		}
	}
	return this, nil
}

// nativeDictSetDefault implements `dict_set_default(def, target)`: def is
// invoked lazily per missing key if callable, otherwise treated as a
// constant returned (and cached) as-is on every miss.
func nativeDictSetDefault(c Caller, args []value.Value) (value.Value, error) {
	d, ok := args[1].(*value.Dict)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeDict, args[1].Repr())
	}
	def := args[0]
	if fn, ok := def.(value.Callable); ok {
		d.Default = fn
	} else {
		d.Default = &value.ConstFunc{V: def}
	}
	return d, nil
}

// finderMatch builds the per-element test used by left_find/right_find: a
// callable finder is invoked as a predicate, anything else is compared by
// equality against the candidate.
func finderMatch(c Caller, finder value.Value) (func(value.Value) (bool, error), error) {
	if fn, ok := finder.(value.Callable); ok {
		return func(v value.Value) (bool, error) {
			r, err := c.Call(fn, []value.Value{v})
			if err != nil {
				return false, err
			}
			return value.Truth(r), nil
		}, nil
	}
	return func(v value.Value) (bool, error) {
		return value.Equal(v, finder)
	}, nil
}

// nativeLeftFind implements `left_find(finder, target)`: the first matching
// element scanning forward, or nil if none matches.
func nativeLeftFind(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	match, err := finderMatch(c, args[0])
	if err != nil {
		return nil, err
	}
	for _, v := range items {
		ok, err := match(v)
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
	}
	return value.Nil, nil
}

// nativeRightFind implements `right_find(finder, target)`: the mirror of
// left_find, scanning backward from the end.
func nativeRightFind(c Caller, args []value.Value) (value.Value, error) {
	items, err := materialize(args[1])
	if err != nil {
		return nil, err
	}
	match, err := finderMatch(c, args[0])
	if err != nil {
		return nil, err
	}
	for i := len(items) - 1; i >= 0; i-- {
		ok, err := match(items[i])
		if err != nil {
			return nil, err
		}
		if ok {
			return items[i], nil
		}
	}
	return value.Nil, nil
}
