package stdlib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cordy-lang/cordy/lang/cerr"
	"github.com/cordy-lang/cordy/lang/value"
)

func init() {
	register("print", 0, true, nativePrint)
	register("repr", 1, false, nativeRepr)
	register("str", 1, false, nativeStr)
	register("int", 1, false, nativeInt)
	register("bool", 1, false, nativeBool)
	register("assert", 1, true, nativeAssert)
	register("memoize", 1, false, nativeMemoize)
}

func nativePrint(c Caller, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(c.Stdout(), strings.Join(parts, " "))
	return value.Nil, nil
}

func nativeRepr(c Caller, args []value.Value) (value.Value, error) {
	return value.Str(args[0].Repr()), nil
}

func nativeStr(c Caller, args []value.Value) (value.Value, error) {
	return value.Str(args[0].String()), nil
}

func nativeInt(c Caller, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Int:
		return v, nil
	case value.Bool:
		if v {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.Str:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return nil, cerr.New(cerr.TypeErrorCannotConvertToInt, v.Repr())
		}
		return value.Int(n), nil
	}
	return nil, cerr.New(cerr.TypeErrorCannotConvertToInt, args[0].Repr())
}

func nativeBool(c Caller, args []value.Value) (value.Value, error) {
	return value.Bool(value.Truth(args[0])), nil
}

func nativeAssert(c Caller, args []value.Value) (value.Value, error) {
	if !value.Truth(args[0]) {
		msg := "assertion failed"
		if len(args) > 1 {
			if s, ok := args[1].(value.Str); ok {
				msg = string(s)
			} else {
				msg = args[1].String()
			}
		}
		return nil, cerr.NewWithStrs(cerr.AssertFailed, msg)
	}
	return value.Nil, nil
}

func nativeMemoize(c Caller, args []value.Value) (value.Value, error) {
	fn, ok := args[0].(value.Callable)
	if !ok {
		return nil, cerr.New(cerr.TypeErrorArgMustBeFunction, args[0].Repr())
	}
	return value.NewMemoized(fn), nil
}
