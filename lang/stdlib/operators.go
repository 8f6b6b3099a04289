package stdlib

import "github.com/cordy-lang/cordy/lang/value"

// These natives exist so the binary operators are callable as first-class
// values (`map(add, xs)`, `reduce(mul, xs)`); the optimizer inlines any
// direct 2-argument call back into the equivalent BinaryExpr, so this
// registration only matters when one escapes as a value.
func init() {
	register("add", 2, false, binNative(value.Add))
	register("sub", 2, false, binNative(value.Sub))
	register("mul", 2, false, binNative(value.Mul))
	register("div", 2, false, binNative(value.Div))
	register("mod", 2, false, binNative(value.Mod))
	register("pow", 2, false, binNative(value.Pow))
	register("left_shift", 2, false, binNative(value.LeftShift))
	register("right_shift", 2, false, binNative(value.RightShift))
	register("bitwise_and", 2, false, binNative(value.BitwiseAnd))
	register("bitwise_or", 2, false, binNative(value.BitwiseOr))
	register("bitwise_xor", 2, false, binNative(value.BitwiseXor))
}

func binNative(op func(a, b value.Value) (value.Value, error)) Fn {
	return func(c Caller, args []value.Value) (value.Value, error) {
		return op(args[0], args[1])
	}
}
