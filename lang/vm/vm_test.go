package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/parser"
	"github.com/cordy-lang/cordy/lang/scanner"
	"github.com/cordy-lang/cordy/lang/value"
	"github.com/cordy-lang/cordy/lang/vm"
)

func run(t *testing.T, src string) (value.Value, string, error) {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	require.NoError(t, err)
	var out bytes.Buffer
	m := vm.Load(prog, &out)
	result, err := m.Run()
	return result, out.String(), err
}

func TestTrailingExpressionIsModuleResult(t *testing.T) {
	// Regression test: CompileModule used to Pop every top-level ExprStmt
	// unconditionally and then emit a bare Return, which both discarded the
	// last expression's value and tried to Return from an empty stack.
	result, _, err := run(t, `1 + 2`)
	require.NoError(t, err)
	require.Equal(t, value.Int(3), result)
}

func TestNonExpressionModuleReturnsNil(t *testing.T) {
	result, _, err := run(t, `let x = 1`)
	require.NoError(t, err)
	require.Equal(t, value.Nil, result)
}

func TestEmptyModuleReturnsNil(t *testing.T) {
	result, _, err := run(t, ``)
	require.NoError(t, err)
	require.Equal(t, value.Nil, result)
}

func TestGlobalsAndControlFlow(t *testing.T) {
	src := `
let total = 0
let i = 0
while i < 5 {
	total = total + i
	i = i + 1
}
total
`
	result, _, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, value.Int(10), result)
}

func TestFunctionCall(t *testing.T) {
	src := `
let double = fn(x) -> x * 2
double(21)
`
	result, _, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, value.Int(42), result)
}

func TestRecursiveFunctionCall(t *testing.T) {
	src := `
let fact = fn(n) -> if n <= 1 then 1 else n * fact(n - 1)
fact(5)
`
	result, _, err := run(t, src)
	require.NoError(t, err)
	require.Equal(t, value.Int(120), result)
}

func TestPrintWritesToStdout(t *testing.T) {
	_, out, err := run(t, `print("hello", 1)`)
	require.NoError(t, err)
	require.Equal(t, "hello 1\n", out)
}

func TestRuntimeErrorHasTraceback(t *testing.T) {
	src := `
let boom = fn() -> 1 / 0
let wrapper = fn() -> boom()
wrapper()
`
	_, _, err := run(t, src)
	require.Error(t, err)
	verr, ok := err.(*vm.Error)
	require.True(t, ok)
	require.NotEmpty(t, verr.Stack)
}

func TestExitEndsExecutionWithRuntimeExitError(t *testing.T) {
	_, _, err := run(t, `exit`)
	require.Error(t, err)
}

func TestSetGlobalBindsProgramArguments(t *testing.T) {
	prog, err := parser.CompileSource(`len(args)`, []string{"args"}, false)
	require.NoError(t, err)

	var out bytes.Buffer
	m := vm.Load(prog, &out)
	ok := m.SetGlobal("args", value.NewList([]value.Value{value.Str("a"), value.Str("b")}))
	require.True(t, ok)

	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, value.Int(2), result)
}

func TestSetGlobalUnknownNameReportsFalse(t *testing.T) {
	prog, err := parser.ParseProgram(`1`)
	require.NoError(t, err)
	m := vm.Load(prog, &bytes.Buffer{})
	require.False(t, m.SetGlobal("does_not_exist", value.Int(1)))
}

// TestReloadGrowsGlobalsWithoutResettingThem exercises the REPL's persistent
// VM/growing Program mechanism directly: a second CompileModule call against
// the same Generator appends a new module function and (possibly) new
// globals to the same Program, and Reload must zero-fill only the newly
// added slots, leaving previously assigned ones untouched.
func TestReloadGrowsGlobalsWithoutResettingThem(t *testing.T) {
	gen := compiler.NewGenerator()
	p := parser.New(nil, gen)

	toks1, err := scanner.ScanAll("let x = 41\n")
	require.NoError(t, err)
	stmts1, err := p.ParseStmts(toks1)
	require.NoError(t, err)
	prog, err := gen.CompileModule(stmts1, p.Globals())
	require.NoError(t, err)

	m := vm.Load(prog, &bytes.Buffer{})
	_, err = m.Run()
	require.NoError(t, err)

	toks2, err := scanner.ScanAll("x + 1\n")
	require.NoError(t, err)
	stmts2, err := p.ParseStmts(toks2)
	require.NoError(t, err)
	prog2, err := gen.CompileModule(stmts2, p.Globals())
	require.NoError(t, err)
	require.Same(t, prog, prog2)

	m.Reload()
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, value.Int(42), result)
}
