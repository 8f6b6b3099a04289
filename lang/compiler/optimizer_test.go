package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cordy-lang/cordy/lang/compiler"
	"github.com/cordy-lang/cordy/lang/parser"
	"github.com/cordy-lang/cordy/lang/scanner"
)

func compileStmts(t *testing.T, src string, optimize bool) *compiler.Program {
	t.Helper()
	toks, err := scanner.ScanAll(src)
	require.NoError(t, err)
	gen := compiler.NewGenerator()
	p := parser.New(toks, gen)
	stmts, err := p.ParseStmts(toks)
	require.NoError(t, err)
	if optimize {
		stmts = compiler.Optimize(stmts)
	}
	prog, err := gen.CompileModule(stmts, p.Globals())
	require.NoError(t, err)
	return prog
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	plain := compileStmts(t, "1 + 2 * 3", false)
	folded := compileStmts(t, "1 + 2 * 3", true)

	fn := folded.Functions[folded.Entry]
	require.Less(t, len(fn.Code), len(plain.Functions[plain.Entry].Code))

	disasm := compiler.Disassemble(folded, fn)
	require.Contains(t, disasm, "7")
}

func TestOptimizeLeavesNonConstantExpressionAlone(t *testing.T) {
	prog := compileStmts(t, "let x = 1\nx + 2", true)
	fn := prog.Functions[prog.Entry]
	disasm := compiler.Disassemble(prog, fn)
	require.Contains(t, disasm, "+")
}

func TestOptimizeFoldsConstantComparison(t *testing.T) {
	prog := compileStmts(t, "(if 1 < 2 then 10 else 20)", true)
	disasm := compiler.Disassemble(prog, prog.Functions[prog.Entry])
	require.Contains(t, disasm, "10")
}

func TestCompileModuleTrailingExpressionReturnsValueWithoutPop(t *testing.T) {
	prog := compileStmts(t, "let x = 1\nx + 1", false)
	fn := prog.Functions[prog.Entry]
	require.Equal(t, compiler.Return, fn.Code[len(fn.Code)-1].Op)
	require.NotEqual(t, compiler.Pop, fn.Code[len(fn.Code)-2].Op)
}

func TestCompileModuleNonExpressionTailPushesNilBeforeReturn(t *testing.T) {
	prog := compileStmts(t, "let x = 1", false)
	fn := prog.Functions[prog.Entry]
	require.Equal(t, compiler.PushNil, fn.Code[len(fn.Code)-2].Op)
	require.Equal(t, compiler.Return, fn.Code[len(fn.Code)-1].Op)
}
